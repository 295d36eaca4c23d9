package staff

import (
	"github.com/gin-gonic/gin"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService) {
	staff := r.Group("/staff")
	{
		staff.GET("/:id", handler.GetByID)

		admin := staff.Group("")
		admin.Use(middleware.RequireAdmin())

		admin.GET("",
			middleware.RBACAuthorize(rbacService, domain.ResourceStaff, domain.ActionRead),
			handler.List,
		)
		admin.POST("/invite",
			middleware.RateLimitByUser(0.2, 5),
			middleware.RBACAuthorize(rbacService, domain.ResourceStaff, domain.ActionCreate),
			handler.Invite,
		)
		admin.PUT("/:id",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, domain.ResourceStaff, domain.ActionUpdate),
			handler.Update,
		)
		admin.DELETE("/:id",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, domain.ResourceStaff, domain.ActionDelete),
			handler.Delete,
		)
	}
}
