package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, tokens middleware.TokenParser) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimitByIP(0.2, 5), handler.Login)
		auth.POST("/refresh", middleware.CSRF(), middleware.RateLimitByIP(1, 10), handler.Refresh)
		auth.POST("/logout", middleware.CSRF(), handler.Logout)
		auth.GET("/csrf", handler.CSRF)
		auth.POST("/invitations/accept", middleware.RateLimitByIP(0.2, 5), handler.AcceptInvite)

		session := auth.Group("")
		session.Use(middleware.AuthMiddleware(tokens))
		session.GET("/me", middleware.RateLimitByUser(2, 10), handler.Me)
		session.PUT("/password",
			middleware.CSRF(),
			middleware.RateLimitByUser(0.2, 3),
			handler.ChangePassword,
		)
	}
}
