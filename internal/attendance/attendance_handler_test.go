package attendance_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/attendance"
	attendanceerrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/attendance/errors"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/middleware"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/response"
)

type fakeService struct {
	attendance.Service
	clockInFn func(ctx context.Context, actor domain.Actor, req attendance.ClockRequest) (attendance.AttendanceResponse, error)
	listFn    func(ctx context.Context, actor domain.Actor, filter attendance.ListFilter, page, pageSize int) ([]attendance.AttendanceResponse, int64, error)
	summaryFn func(ctx context.Context, actor domain.Actor, filter attendance.SummaryFilter) (attendance.SummaryResponse, error)
}

func (f *fakeService) ClockIn(ctx context.Context, actor domain.Actor, req attendance.ClockRequest) (attendance.AttendanceResponse, error) {
	return f.clockInFn(ctx, actor, req)
}

func (f *fakeService) List(ctx context.Context, actor domain.Actor, filter attendance.ListFilter, page, pageSize int) ([]attendance.AttendanceResponse, int64, error) {
	return f.listFn(ctx, actor, filter, page, pageSize)
}

func (f *fakeService) Summary(ctx context.Context, actor domain.Actor, filter attendance.SummaryFilter) (attendance.SummaryResponse, error) {
	return f.summaryFn(ctx, actor, filter)
}

type allowAll struct{}

func (allowAll) Enforce(domain.EnforceRequest) (bool, error) { return true, nil }

func newRouter(svc attendance.Service, id middleware.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		middleware.SetIdentity(c, id)
		c.Next()
	})
	attendance.RegisterRoutes(api, attendance.NewHandler(svc), allowAll{})
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.ApiEnvelope {
	t.Helper()
	var env response.ApiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHandler_ClockIn(t *testing.T) {
	staff := middleware.Identity{UserID: uuid.NewString(), StoreID: uuid.NewString(), Role: domain.RoleStaff}
	shiftID := uuid.NewString()

	t.Run("created", func(t *testing.T) {
		svc := &fakeService{
			clockInFn: func(_ context.Context, actor domain.Actor, req attendance.ClockRequest) (attendance.AttendanceResponse, error) {
				assert.Equal(t, staff.UserID, actor.UserID)
				assert.False(t, actor.IsAdmin)
				assert.Equal(t, shiftID, req.ShiftID)
				return attendance.AttendanceResponse{ID: "a-1", Status: attendance.StatusLate}, nil
			},
		}

		w := httptest.NewRecorder()
		newRouter(svc, staff).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/attendances/clock-in",
			strings.NewReader(`{"shift_id":"`+shiftID+`"}`)))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decode(t, w).Ok)
	})

	t.Run("missing shift id", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(&fakeService{}, staff).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/attendances/clock-in",
			strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate is 409", func(t *testing.T) {
		svc := &fakeService{
			clockInFn: func(context.Context, domain.Actor, attendance.ClockRequest) (attendance.AttendanceResponse, error) {
				return attendance.AttendanceResponse{}, attendanceerrors.ErrAlreadyClockedIn
			},
		}

		w := httptest.NewRecorder()
		newRouter(svc, staff).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/attendances/clock-in",
			strings.NewReader(`{"shift_id":"`+shiftID+`"}`)))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandler_ListAndSummary(t *testing.T) {
	admin := middleware.Identity{UserID: uuid.NewString(), StoreID: uuid.NewString(), Role: domain.RoleAdmin}

	svc := &fakeService{
		listFn: func(_ context.Context, actor domain.Actor, filter attendance.ListFilter, page, pageSize int) ([]attendance.AttendanceResponse, int64, error) {
			assert.True(t, actor.IsAdmin)
			assert.Equal(t, "2024-04-01", filter.From)
			assert.Equal(t, 1, page)
			return []attendance.AttendanceResponse{{ID: "a-1"}}, 1, nil
		},
		summaryFn: func(_ context.Context, _ domain.Actor, filter attendance.SummaryFilter) (attendance.SummaryResponse, error) {
			assert.Equal(t, "2024-04", filter.Month)
			return attendance.SummaryResponse{Month: "2024-04"}, nil
		},
	}
	r := newRouter(svc, admin)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/attendances?from=2024-04-01", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode(t, w).Meta.Total)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/attendances/summary?month=2024-04", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/attendances/summary", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CorrectRequiresAdmin(t *testing.T) {
	staff := middleware.Identity{UserID: uuid.NewString(), StoreID: uuid.NewString(), Role: domain.RoleStaff}

	w := httptest.NewRecorder()
	newRouter(&fakeService{}, staff).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/attendances/"+uuid.NewString(),
		strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
