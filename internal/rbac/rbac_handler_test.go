package rbac

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/response"
)

func setupRouter(t *testing.T, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(newTestService(t))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("role", role)
		c.Next()
	})
	RegisterRoutes(router.Group("/api/v1"), handler)
	return router
}

func TestHandler_Enforce(t *testing.T) {
	router := setupRouter(t, domain.RoleStaff)

	body, _ := json.Marshal(map[string]string{"resource": "shift", "action": "read"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rbac/enforce", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Ok   bool            `json:"ok"`
		Data EnforceResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Ok)
	assert.True(t, env.Data.Allowed)
}

func TestHandler_Enforce_Validation(t *testing.T) {
	router := setupRouter(t, domain.RoleStaff)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rbac/enforce", bytes.NewBufferString(`{"resource":"shift"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var env response.ApiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Ok)
}

func TestHandler_MyPermissions(t *testing.T) {
	router := setupRouter(t, domain.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rbac/permissions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data RolePermissionsResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, domain.RoleAdmin, env.Data.Role)
	assert.NotEmpty(t, env.Data.Permissions)
}
