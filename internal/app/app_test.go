package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/config"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/staff"
	staffMock "github.com/coffeebean-kenobi/shifteditor-sub001/internal/staff/mock"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/store"
	storeMock "github.com/coffeebean-kenobi/shifteditor-sub001/internal/store/mock"
)

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		checks []pingFunc
		status int
	}{
		{"all up", []pingFunc{ok, ok}, http.StatusOK},
		{"redis down", []pingFunc{ok, down}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/healthz", healthHandler(tt.checks...))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestStaffDirectory_EmailOf(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := staffMock.NewMockRepository(ctrl)

	repo.EXPECT().FindByID(gomock.Any(), "s1", "u1").Return(&staff.User{Email: "aiko@example.com"}, nil)
	email, err := staffDirectory{repo: repo}.EmailOf(context.Background(), "s1", "u1")
	assert.NoError(t, err)
	assert.Equal(t, "aiko@example.com", email)

	repo.EXPECT().FindByID(gomock.Any(), "s1", "u2").Return(nil, gorm.ErrRecordNotFound)
	_, err = staffDirectory{repo: repo}.EmailOf(context.Background(), "s1", "u2")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSeedSuperAdmin(t *testing.T) {
	cfg := config.SuperAdminConfig{
		Email:     " Ops@Example.com ",
		Password:  "change-me-now",
		Name:      "Operator",
		StoreName: "Head Office",
	}

	t.Run("creates store and grants flag", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := staffMock.NewMockRepository(ctrl)
		stores := storeMock.NewMockService(ctrl)

		created := &staff.User{ID: uuid.New(), StoreID: uuid.New(), Email: "ops@example.com"}
		gomock.InOrder(
			repo.EXPECT().FindByEmail(gomock.Any(), "ops@example.com").Return(nil, gorm.ErrRecordNotFound),
			stores.EXPECT().CreateStore(gomock.Any(), "", gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, req store.CreateStoreRequest) (store.CreateStoreResponse, error) {
					assert.Equal(t, "Head Office", req.Name)
					assert.Equal(t, "ops@example.com", req.AdminEmail)
					return store.CreateStoreResponse{}, nil
				}),
			repo.EXPECT().FindByEmail(gomock.Any(), "ops@example.com").Return(created, nil),
			repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *staff.User) error {
				assert.True(t, u.IsSuperAdmin)
				return nil
			}),
		)

		assert.NoError(t, SeedSuperAdmin(context.Background(), repo, stores, cfg))
	})

	t.Run("existing super admin is left alone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := staffMock.NewMockRepository(ctrl)
		stores := storeMock.NewMockService(ctrl)

		repo.EXPECT().FindByEmail(gomock.Any(), "ops@example.com").
			Return(&staff.User{ID: uuid.New(), IsSuperAdmin: true}, nil)

		assert.NoError(t, SeedSuperAdmin(context.Background(), repo, stores, cfg))
	})

	t.Run("lookup failure aborts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := staffMock.NewMockRepository(ctrl)
		stores := storeMock.NewMockService(ctrl)

		boom := errors.New("db down")
		repo.EXPECT().FindByEmail(gomock.Any(), "ops@example.com").Return(nil, boom)

		assert.ErrorIs(t, SeedSuperAdmin(context.Background(), repo, stores, cfg), boom)
	})
}
