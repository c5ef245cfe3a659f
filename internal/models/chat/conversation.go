package chat

import "fmt"

// ConversationRef identifies a thread: an unordered user pair (private) or
// a group id. Refs double as realtime channel names and cache key scopes.

// PrivateRef builds the ref for a user pair; order of arguments does not
// matter.
func PrivateRef(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("private:%s:%s", userA, userB)
}

// GroupRef builds the ref for a group conversation.
func GroupRef(groupID string) string {
	return "group:" + groupID
}

// Ref returns the conversation ref a message belongs to.
func (m *Message) Ref() string {
	if m.GroupID != nil {
		return GroupRef(*m.GroupID)
	}
	if m.ReceiverID != nil {
		return PrivateRef(m.SenderID, *m.ReceiverID)
	}
	return ""
}
