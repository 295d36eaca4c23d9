package auth

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

type AcceptInviteRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type AuthResponse struct {
	ID           string `json:"id"`
	StoreID      string `json:"store_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	StaffNumber  string `json:"staff_number"`
}

// Session is a freshly issued token pair with the user it belongs to.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         AuthResponse
}

type SessionResponse struct {
	User         AuthResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

type CSRFResponse struct {
	CSRFToken string `json:"csrf_token"`
}
