package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/response"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/token"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	ctxUserID        = "user_id"
	ctxStoreID       = "store_id"
	ctxRole          = "role"
	ctxIsSuperAdmin  = "is_super_admin"
	ctxAuthViaCookie = "auth_via_cookie"
)

// TokenParser is satisfied by *token.Manager.
type TokenParser interface {
	Parse(tokenString, wantType string) (*token.Claims, error)
}

// AuthMiddleware accepts a Bearer header or the access_token cookie.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		viaCookie := false
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
				tokenString = cookie
				viaCookie = true
			}
		}

		if tokenString == "" {
			response.Abort(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Token not found")
			return
		}

		claims, err := tokens.Parse(tokenString, token.TypeAccess)
		if err != nil {
			if errors.Is(err, token.ErrExpired) {
				response.Abort(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired")
				return
			}
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxStoreID, claims.StoreID)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxIsSuperAdmin, claims.IsSuperAdmin)
		c.Set(ctxAuthViaCookie, viaCookie)

		c.Next()
	}
}

// RequireAdmin lets store admins and super admins through. Everyone else is
// treated as not authenticated for the admin surface and gets 401.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok || !id.IsAdmin() {
			response.Abort(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Admin privileges required")
			return
		}
		c.Next()
	}
}

func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Authentication is required")
			return
		}
		if !id.IsSuperAdmin {
			response.Abort(c, apperror.ErrForbidden.HTTPStatus, apperror.ErrForbidden.Code, apperror.ErrForbidden.Message)
			return
		}
		c.Next()
	}
}
