package domain

import "time"

// ItemType discriminates what a like points at.
type ItemType string

const (
	ItemTypeQuestion ItemType = "question"
	ItemTypeComment  ItemType = "comment"
)

// Valid reports whether the item type is one of the two supported kinds.
func (t ItemType) Valid() bool {
	return t == ItemTypeQuestion || t == ItemTypeComment
}

// Like records that a user liked an item. At most one row exists per
// (UserID, ItemID, ItemType); the constraint is enforced by the store.
type Like struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ItemID    string    `json:"itemId"`
	ItemType  ItemType  `json:"itemType"`
	CreatedAt time.Time `json:"createdAt"`
}
