package staff

type InviteStaffRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=ADMIN STAFF"`
}

type UpdateStaffRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=255"`
	Role     *string `json:"role" binding:"omitempty,oneof=ADMIN STAFF"`
	IsActive *bool   `json:"is_active"`
}

type ListStaffFilter struct {
	Role   string `form:"role" binding:"omitempty,oneof=ADMIN STAFF"`
	Active *bool  `form:"active"`
	Query  string `form:"q"`
}

type StaffResponse struct {
	ID           string  `json:"id"`
	StoreID      string  `json:"store_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	IsSuperAdmin bool    `json:"is_super_admin"`
	IsActive     bool    `json:"is_active"`
	StaffNumber  string  `json:"staff_number"`
	LastLoginAt  *string `json:"last_login_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

type InviteResponse struct {
	Staff       StaffResponse `json:"staff"`
	InviteToken string        `json:"invite_token"`
	InviteURL   string        `json:"invite_url"`
	ExpiresAt   string        `json:"expires_at"`
}
