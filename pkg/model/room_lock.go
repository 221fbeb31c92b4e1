package model

import "time"

// RoomTypeLock is an advisory lock document serializing check-and-commit for
// one room type across processes. The unique _id makes acquisition a single
// insert; ExpiresAt backs a TTL index so a crashed holder cannot wedge the
// room type.
type RoomTypeLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
