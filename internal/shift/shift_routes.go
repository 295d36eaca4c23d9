package shift

import (
	"github.com/gin-gonic/gin"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService) {
	shifts := r.Group("/shifts")
	{
		shifts.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceShift, domain.ActionRead), handler.List)
		shifts.GET("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceShift, domain.ActionRead), handler.GetByID)

		admin := shifts.Group("")
		admin.Use(middleware.RequireAdmin(), middleware.RateLimitByUser(2, 10))

		admin.POST("",
			middleware.RBACAuthorize(rbacService, domain.ResourceShift, domain.ActionCreate),
			handler.Create,
		)
		admin.PUT("/:id",
			middleware.RBACAuthorize(rbacService, domain.ResourceShift, domain.ActionUpdate),
			handler.Update,
		)
		admin.POST("/:id/confirm",
			middleware.RBACAuthorize(rbacService, domain.ResourceShift, domain.ActionUpdate),
			handler.Confirm,
		)
		admin.POST("/:id/cancel",
			middleware.RBACAuthorize(rbacService, domain.ResourceShift, domain.ActionUpdate),
			handler.Cancel,
		)
		admin.DELETE("/:id",
			middleware.RBACAuthorize(rbacService, domain.ResourceShift, domain.ActionDelete),
			handler.Delete,
		)
	}
}
