package notification_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/middleware"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/notification"
	notificationerrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/notification/errors"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/response"
)

type fakeService struct {
	notification.Service
	markReadErr error
	updateFn    func(userID string, req notification.UpdatePreferencesRequest) ([]notification.PreferenceItem, error)
}

func (f *fakeService) UnreadCount(context.Context, string) (int64, error) { return 5, nil }

func (f *fakeService) MarkRead(context.Context, string, string) error { return f.markReadErr }

func (f *fakeService) UpdatePreferences(_ context.Context, userID string, req notification.UpdatePreferencesRequest) ([]notification.PreferenceItem, error) {
	return f.updateFn(userID, req)
}

type allowAll struct{}

func (allowAll) Enforce(domain.EnforceRequest) (bool, error) { return true, nil }

func newRouter(svc notification.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		middleware.SetIdentity(c, middleware.Identity{UserID: "user-1", StoreID: "store-1", Role: domain.RoleStaff})
		c.Next()
	})
	h := notification.NewHandler(svc, notification.NewHub(zap.NewNop()), nil, zap.NewNop())
	notification.RegisterRoutes(api, h, allowAll{})
	return r
}

func TestNotificationHandler(t *testing.T) {
	t.Run("unread count", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(&fakeService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/unread-count", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var env struct {
			Ok   bool                             `json:"ok"`
			Data notification.UnreadCountResponse `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, int64(5), env.Data.Count)
	})

	t.Run("mark read missing is 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		svc := &fakeService{markReadErr: notificationerrors.ErrNotificationNotFound}
		newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/v1/notifications/abc/read", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("update preferences requires list", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(&fakeService{}).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/notifications/preferences", bytes.NewBufferString(`{}`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update preferences for caller", func(t *testing.T) {
		svc := &fakeService{updateFn: func(userID string, req notification.UpdatePreferencesRequest) ([]notification.PreferenceItem, error) {
			assert.Equal(t, "user-1", userID)
			assert.Len(t, req.Preferences, 1)
			return []notification.PreferenceItem{{Type: notification.TypeSystem}}, nil
		}}
		w := httptest.NewRecorder()
		body := `{"preferences":[{"type":"SYSTEM","email":false,"push":true,"in_app":true}]}`
		newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/notifications/preferences", bytes.NewBufferString(body)))

		assert.Equal(t, http.StatusOK, w.Code)
		var env response.ApiEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Ok)
	})

	t.Run("websocket rejects plain request", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(&fakeService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/ws", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
