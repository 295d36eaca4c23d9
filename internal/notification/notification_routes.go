package notification

import (
	"github.com/gin-gonic/gin"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService) {
	n := r.Group("/notifications")
	read := middleware.RBACAuthorize(rbacService, domain.ResourceNotification, domain.ActionRead)
	update := middleware.RBACAuthorize(rbacService, domain.ResourceNotification, domain.ActionUpdate)
	{
		n.GET("", read, handler.List)
		n.GET("/unread-count", read, handler.UnreadCount)
		n.GET("/preferences", read, handler.GetPreferences)
		n.GET("/ws", read, handler.WebSocket)
		n.PATCH("/:id/read", update, handler.MarkRead)
		n.POST("/read-all", update, handler.MarkAllRead)
		n.PUT("/preferences", update, handler.UpdatePreferences)
	}
}
