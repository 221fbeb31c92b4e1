package model

import (
	"time"

	"hostly/pkg/daterange"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation is a confirmed claim on one or more room units for a date
// range. Each confirmed reservation corresponds to exactly one booked
// interval per reserved unit, tagged with the reservation ID. A cancelled
// reservation is kept as a historical record but holds no intervals.
type Reservation struct {
	ID             string              `json:"id" bson:"_id" validate:"omitempty,uuid4"`
	HotelID        string              `json:"hotel_id" bson:"hotel_id" validate:"required,mongodb"`
	RoomTypeID     string              `json:"room_type_id" bson:"room_type_id" validate:"required,mongodb"`
	UnitIDs        []string            `json:"unit_ids" bson:"unit_ids" validate:"omitempty,dive,mongodb"`
	Range          daterange.DateRange `json:"range" bson:"range"`
	Quantity       int                 `json:"quantity" bson:"quantity" validate:"required,min=1"`
	GuestName      string              `json:"guest_name" bson:"guest_name" validate:"required,min=2,max=100"`
	GuestEmail     string              `json:"guest_email" bson:"guest_email" validate:"required,email"`
	Status         ReservationStatus   `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	IdempotencyKey string              `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty" validate:"omitempty,min=8,max=128"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at" validate:"omitempty"`
	CancelledAt    *time.Time          `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
}

// ReservationRequest is the inbound booking request. CheckIn/CheckOut are
// raw timestamps; the coordinator normalizes them into a DateRange.
type ReservationRequest struct {
	HotelID        string    `json:"hotel_id" validate:"required,mongodb"`
	RoomTypeID     string    `json:"room_type_id" validate:"required,mongodb"`
	CheckIn        time.Time `json:"check_in" validate:"required"`
	CheckOut       time.Time `json:"check_out" validate:"required"`
	Quantity       int       `json:"quantity" validate:"required,min=1"`
	GuestName      string    `json:"guest_name" validate:"required,min=2,max=100"`
	GuestEmail     string    `json:"guest_email" validate:"required,email"`
	IdempotencyKey string    `json:"idempotency_key,omitempty" validate:"omitempty,min=8,max=128"`
}

// Fingerprint captures the parameters that must match when an idempotency
// key is replayed. Guest fields are included: a retry must be byte-for-byte
// the same request.
func (r *ReservationRequest) Fingerprint() ReservationFingerprint {
	return ReservationFingerprint{
		HotelID:    r.HotelID,
		RoomTypeID: r.RoomTypeID,
		CheckIn:    daterange.Day(r.CheckIn),
		CheckOut:   daterange.Day(r.CheckOut),
		Quantity:   r.Quantity,
		GuestName:  r.GuestName,
		GuestEmail: r.GuestEmail,
	}
}

type ReservationFingerprint struct {
	HotelID    string
	RoomTypeID string
	CheckIn    time.Time
	CheckOut   time.Time
	Quantity   int
	GuestName  string
	GuestEmail string
}

// Matches reports whether a stored reservation was created from a request
// with this fingerprint.
func (f ReservationFingerprint) Matches(res *Reservation) bool {
	return f.HotelID == res.HotelID &&
		f.RoomTypeID == res.RoomTypeID &&
		f.CheckIn.Equal(res.Range.CheckIn) &&
		f.CheckOut.Equal(res.Range.CheckOut) &&
		f.Quantity == res.Quantity &&
		f.GuestName == res.GuestName &&
		f.GuestEmail == res.GuestEmail
}
