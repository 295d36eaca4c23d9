package store

import (
	"github.com/gin-gonic/gin"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService) {
	settings := r.Group("/settings")
	{
		settings.GET("",
			middleware.RBACAuthorize(rbacService, domain.ResourceSettings, domain.ActionRead),
			handler.GetSettings,
		)
		settings.PUT("",
			middleware.RequireAdmin(),
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, domain.ResourceSettings, domain.ActionUpdate),
			handler.UpdateSettings,
		)
	}

	stores := r.Group("/stores")
	stores.Use(middleware.RequireSuperAdmin())
	{
		stores.GET("", handler.ListStores)
		stores.POST("", middleware.RateLimitByUser(0.2, 3), handler.CreateStore)
	}
}
