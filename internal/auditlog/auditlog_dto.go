package auditlog

import "encoding/json"

// Entry is what feature services hand to the Recorder.
type Entry struct {
	StoreID    string
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	Meta       map[string]any
}

type ListFilter struct {
	Action  string `form:"action"`
	ActorID string `form:"actor_id" binding:"omitempty,uuid"`
}

type AuditLogResponse struct {
	ID         string          `json:"id"`
	StoreID    string          `json:"store_id,omitempty"`
	ActorID    string          `json:"actor_id,omitempty"`
	Action     string          `json:"action"`
	TargetType string          `json:"target_type,omitempty"`
	TargetID   string          `json:"target_id,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
	Meta       json.RawMessage `json:"meta,omitempty"`
	CreatedAt  string          `json:"created_at"`
}
