package apperrors

import (
	"net/http"
)

// Factories for wrapping repository errors into transport-ready AppErrors.

// ErrNotFound converts a repository miss (e.g. gorm.ErrRecordNotFound)
// into a 404 AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrConflict is the generic 409 factory. Duplicate likes and duplicate
// friend requests are surfaced through this code and treated as
// idempotent success by their services.
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation is the factory for operations the domain forbids (400).
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// --- Predefined chat domain errors ---

// ErrNotConversationMember: the actor does not belong to the target conversation.
var ErrNotConversationMember = New(
	CodeForbidden,
	"chat",
	"User is not a member of this conversation",
	http.StatusForbidden,
)

// ErrFriendshipRequired: private messages require an accepted friendship.
var ErrFriendshipRequired = New(
	CodeForbidden,
	"chat",
	"Users must be friends to exchange private messages",
	http.StatusForbidden,
)

// ErrInvalidMessageType: type is outside the message type enum.
var ErrInvalidMessageType = New(
	CodeValidationFailed,
	"chat",
	"Invalid message type",
	http.StatusBadRequest,
)

// ErrCannotDeleteMessage: actor is neither the sender nor a group admin.
var ErrCannotDeleteMessage = New(
	CodeForbidden,
	"chat",
	"Insufficient permissions to delete this message",
	http.StatusForbidden,
)

// ErrDeleteWindowExpired: the sender's self-delete grace window has passed.
var ErrDeleteWindowExpired = New(
	CodeWindowExpired,
	"chat",
	"Message can no longer be deleted",
	http.StatusForbidden,
)

// ErrGroupNotFound / ErrConversationNotFound style statics.
var ErrConversationNotFound = New(
	CodeNotFound,
	"chat",
	"Conversation not found",
	http.StatusNotFound,
)

var ErrNoActiveSession = New(
	CodeUnauthorized,
	"auth",
	"No active session",
	http.StatusUnauthorized,
)
