package dto

import (
	"time"

	"campustalk_backend/internal/models/chat"
)

// DeletedContentMarker is what clients render in place of soft-deleted
// content. The stored row keeps content cleared plus the deleted flag; the
// marker exists only at the presentation boundary.
const DeletedContentMarker = "[message deleted]"

// SendMessageRequest addresses exactly one of ReceiverID or GroupID.
type SendMessageRequest struct {
	ReceiverID *string          `json:"receiver_id"`
	GroupID    *string          `json:"group_id"`
	Type       chat.MessageType `json:"type" binding:"required"`
	Content    string           `json:"content" binding:"required,max=4000"`
}

type MessageResponse struct {
	ID              string           `json:"id"`
	ConversationRef string           `json:"conversation_ref"`
	SenderID        string           `json:"sender_id"`
	ReceiverID      *string          `json:"receiver_id,omitempty"`
	GroupID         *string          `json:"group_id,omitempty"`
	Type            chat.MessageType `json:"type"`
	Content         string           `json:"content"`
	IsRead          bool             `json:"is_read"`
	Deleted         bool             `json:"deleted"`
	CreatedAt       time.Time        `json:"created_at"`
	ReadBy          []string         `json:"read_by,omitempty"`
}

type MessageListResponse struct {
	Messages []*MessageResponse `json:"messages"`
	Total    int64              `json:"total"`
	HasMore  bool               `json:"has_more"`
}

type DeleteMessagesRequest struct {
	MessageIDs []string `json:"message_ids" binding:"required,min=1"`
}

// DeleteResult is the structured per-id outcome: callers continue past
// failed ids instead of aborting the batch.
type DeleteResult struct {
	MessageID string `json:"message_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// MarkAsReadRequest scopes a read marking. With MessageIDs empty, all
// currently-unread state in the conversation is marked.
type MarkAsReadRequest struct {
	PeerID     *string  `json:"peer_id"`
	GroupID    *string  `json:"group_id"`
	MessageIDs []string `json:"message_ids"`
}

// UnreadSummary is the aggregator's full answer for one user.
type UnreadSummary struct {
	Private int64            `json:"private"`
	Groups  map[string]int64 `json:"groups"`
	Total   int64            `json:"total"`
}
