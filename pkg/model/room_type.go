package model

import "time"

// RoomType is a category of interchangeable rooms at a hotel (e.g. "Deluxe
// Double"). Its unit count is fixed at provisioning time; resizing is an
// administrative operation outside the reservation engine.
type RoomType struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HotelID   string    `json:"hotel_id" bson:"hotel_id" validate:"required,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	UnitCount int       `json:"unit_count" bson:"unit_count" validate:"required,min=1,max=500"`
	MaxGuests int       `json:"max_guests" bson:"max_guests" validate:"required,min=1,max=20"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
