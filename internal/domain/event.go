package domain

import "time"

// Activity event types published after successful writes.
const (
	EventUserRegistered = "user.registered"
	EventPlantSaved     = "plant.saved"
)

// Event is a fire-and-forget notification about user activity.
type Event struct {
	Type       string            `json:"type"`
	Subject    string            `json:"subject"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
