package shiftrequest

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService, rdb *redis.Client) {
	requests := r.Group("/shift-requests")
	{
		requests.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceShiftRequest, domain.ActionRead), handler.List)
		requests.GET("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceShiftRequest, domain.ActionRead), handler.GetByID)

		create := []gin.HandlerFunc{
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, domain.ResourceShiftRequest, domain.ActionCreate),
		}
		if rdb != nil {
			create = append(create, middleware.Idempotency(rdb))
		}
		requests.POST("", append(create, handler.Create)...)

		requests.DELETE("/:id",
			middleware.RBACAuthorize(rbacService, domain.ResourceShiftRequest, domain.ActionDelete),
			handler.Delete,
		)

		admin := requests.Group("")
		admin.Use(middleware.RequireAdmin())
		admin.POST("/:id/approve",
			middleware.RBACAuthorize(rbacService, domain.ResourceShiftRequest, domain.ActionUpdate),
			handler.Approve,
		)
		admin.POST("/:id/reject",
			middleware.RBACAuthorize(rbacService, domain.ResourceShiftRequest, domain.ActionUpdate),
			handler.Reject,
		)
	}
}
