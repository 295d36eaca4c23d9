package attendance

import (
	"github.com/gin-gonic/gin"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService middleware.RBACService) {
	attendances := r.Group("/attendances")
	{
		attendances.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionRead), h.List)
		attendances.GET("/summary", middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionRead), h.Summary)
		attendances.POST("/clock-in",
			middleware.RateLimitByUser(1, 3),
			middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionCreate),
			h.ClockIn,
		)
		attendances.POST("/clock-out",
			middleware.RateLimitByUser(1, 3),
			middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionCreate),
			h.ClockOut,
		)
		attendances.PUT("/:id",
			middleware.RequireAdmin(),
			middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionUpdate),
			h.Correct,
		)
	}
}
