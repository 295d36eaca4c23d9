package rbac

import "github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"

type EnforceRequest = domain.EnforceRequest

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}

type PermissionResponse struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

type RolePermissionsResponse struct {
	Role        string               `json:"role"`
	Permissions []PermissionResponse `json:"permissions"`
}
