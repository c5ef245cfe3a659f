package models

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
)

// Friendship is directional: Requester sent the request to Addressee.
// The unique index prevents duplicate requests in the same direction;
// the service layer checks both directions before creating.
type Friendship struct {
	BaseModel
	RequesterID string           `gorm:"not null;index;uniqueIndex:idx_friendship_pair"`
	AddresseeID string           `gorm:"not null;index;uniqueIndex:idx_friendship_pair"`
	Status      FriendshipStatus `gorm:"type:varchar(20);default:'pending'"`
}
