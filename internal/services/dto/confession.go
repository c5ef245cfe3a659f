package dto

import "time"

type ConfessionResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	LikeCount int64     `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
}

type ConfessionListResponse struct {
	Confessions []*ConfessionResponse `json:"confessions"`
	Total       int64                 `json:"total"`
}

// ToggleLikeResponse is the authoritative state after a toggle; clients
// reconcile their optimistic state against it.
type ToggleLikeResponse struct {
	ConfessionID string `json:"confession_id"`
	Liked        bool   `json:"liked"`
	LikeCount    int64  `json:"like_count"`
}
