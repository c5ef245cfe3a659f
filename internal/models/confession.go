package models

type Confession struct {
	BaseModel
	AuthorID string `gorm:"not null;index"`
	Content  string `gorm:"type:text;not null"`

	Likes []ConfessionLike `gorm:"foreignKey:ConfessionID"`
}

// ConfessionLike existence means liked. The uniqueness constraint is the
// backstop for the lock-free toggle: a racing duplicate insert is rejected
// by the store, not prevented by the application.
type ConfessionLike struct {
	BaseModel
	ConfessionID string `gorm:"not null;index;uniqueIndex:idx_confession_like"`
	UserID       string `gorm:"not null;index;uniqueIndex:idx_confession_like"`
}
