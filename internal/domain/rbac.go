package domain

// Roles a store member can hold.
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

// Resources guarded by RBAC.
const (
	ResourceStaff        = "staff"
	ResourceShift        = "shift"
	ResourceShiftRequest = "shift_request"
	ResourceAttendance   = "attendance"
	ResourceSettings     = "settings"
	ResourceAuditLog     = "audit_log"
	ResourceNotification = "notification"
)

// Actions on a resource.
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionManage = "manage"
)

type EnforceRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}

// Actor is the caller a service acts on behalf of.
type Actor struct {
	UserID  string
	StoreID string
	IsAdmin bool
}
