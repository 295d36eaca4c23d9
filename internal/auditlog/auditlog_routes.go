package auditlog

import (
	"github.com/gin-gonic/gin"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService) {
	logs := r.Group("/audit-logs")
	logs.Use(middleware.RequireAdmin())
	{
		logs.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceAuditLog, domain.ActionRead), handler.List)
	}
}
