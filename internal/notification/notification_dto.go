package notification

// NotifyInput is a message addressed to one user. Channels are chosen from
// the user's preferences for Type.
type NotifyInput struct {
	StoreID string
	UserID  string
	Type    string
	Title   string
	Message string
}

type ListFilter struct {
	Unread bool `form:"unread"`
}

type NotificationResponse struct {
	ID        string  `json:"id,omitempty"`
	UserID    string  `json:"user_id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	IsRead    bool    `json:"is_read"`
	ReadAt    *string `json:"read_at,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

type PreferenceItem struct {
	Type  string `json:"type" binding:"required"`
	Email bool   `json:"email"`
	Push  bool   `json:"push"`
	InApp bool   `json:"in_app"`
}

type UpdatePreferencesRequest struct {
	Preferences []PreferenceItem `json:"preferences" binding:"required,dive"`
}
