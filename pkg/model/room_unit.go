package model

import (
	"time"

	"hostly/pkg/daterange"
)

// BookedInterval is one committed date range on a unit's ledger, tagged with
// the reservation that owns it.
type BookedInterval struct {
	Range         daterange.DateRange `json:"range" bson:"range"`
	ReservationID string              `json:"reservation_id" bson:"reservation_id"`
}

// RoomUnit is one physical, individually bookable instance of a RoomType.
// UnitNo is stable and unique within the room type; units are created when
// the room type is provisioned and only removed when it is decommissioned.
//
// Bookings is the unit's ledger: kept sorted by check-in date, with no two
// intervals overlapping.
type RoomUnit struct {
	ID         string           `json:"id,omitempty" bson:"_id,omitempty"`
	RoomTypeID string           `json:"room_type_id" bson:"room_type_id"`
	UnitNo     int              `json:"unit_no" bson:"unit_no"`
	Bookings   []BookedInterval `json:"bookings" bson:"bookings"`
	CreatedAt  time.Time        `json:"created_at" bson:"created_at"`
}
