package cache

import "fmt"

// Key builders. Prefix helpers exist for every key family that is
// pattern-invalidated; mutation paths clear whole prefixes.

func UnreadPrefix(userID string) string {
	return fmt.Sprintf("unread:%s:", userID)
}

func UnreadTotalKey(userID string) string {
	return UnreadPrefix(userID) + "total"
}

func UnreadPrivateKey(userID string) string {
	return UnreadPrefix(userID) + "private"
}

func UnreadGroupKey(userID, groupID string) string {
	return fmt.Sprintf("%sgroup:%s", UnreadPrefix(userID), groupID)
}

func ConfessionPrefix(confessionID string) string {
	return fmt.Sprintf("confession:%s:", confessionID)
}

func ConfessionDetailKey(confessionID string) string {
	return ConfessionPrefix(confessionID) + "detail"
}

func ConfessionLikesKey(confessionID string) string {
	return ConfessionPrefix(confessionID) + "likes"
}

const ConfessionListPrefix = "confessions:list:"

func ConfessionListKey(page, pageSize int) string {
	return fmt.Sprintf("%s%d:%d", ConfessionListPrefix, page, pageSize)
}

func MessagesPrefix(conversationRef string) string {
	return fmt.Sprintf("messages:%s:", conversationRef)
}
