package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
)

// Identity is the authenticated caller as set by AuthMiddleware.
type Identity struct {
	UserID       string
	StoreID      string
	Role         string
	IsSuperAdmin bool
}

func (i Identity) IsAdmin() bool {
	return i.IsSuperAdmin || i.Role == domain.RoleAdmin
}

// GetIdentity reads the caller from the gin context.
func GetIdentity(c *gin.Context) (Identity, bool) {
	userID := c.GetString(ctxUserID)
	if userID == "" {
		return Identity{}, false
	}
	return Identity{
		UserID:       userID,
		StoreID:      c.GetString(ctxStoreID),
		Role:         c.GetString(ctxRole),
		IsSuperAdmin: c.GetBool(ctxIsSuperAdmin),
	}, true
}

// SetIdentity is used by tests and by the websocket upgrade path.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(ctxUserID, id.UserID)
	c.Set(ctxStoreID, id.StoreID)
	c.Set(ctxRole, id.Role)
	c.Set(ctxIsSuperAdmin, id.IsSuperAdmin)
}
