package realtime

import "time"

// EventType mirrors store change kinds.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Priority orders best-effort delivery preferences for notification
// publishes. It never affects correctness, only which side channels
// (e.g. email) a publish additionally reaches.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Event is a store change delivered to live subscribers. No ordering or
// redelivery guarantee beyond "usually arrives while connected".
type Event struct {
	Type     EventType   `json:"type"`
	Table    string      `json:"table"`
	Priority Priority    `json:"priority,omitempty"`
	Payload  interface{} `json:"payload"`
	At       time.Time   `json:"at"`
}

// Channel names. Conversation channels carry message traffic; user
// channels carry cross-cutting events (notifications, membership,
// presence).

func ConversationChannel(ref string) string {
	return "conversation:" + ref
}

func UserChannel(userID string) string {
	return "user:" + userID
}
