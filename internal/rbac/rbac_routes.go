package rbac

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the RBAC endpoints on an already authenticated group.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	group := r.Group("/rbac")
	{
		group.POST("/enforce", handler.Enforce)
		group.GET("/permissions", handler.MyPermissions)
	}
}
