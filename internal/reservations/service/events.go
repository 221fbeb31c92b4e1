package service

import (
	"context"
	"time"

	"hostly/pkg/kafka"
	"hostly/pkg/model"
)

const (
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
)

// EventPublisher is the slice of the Kafka producer the service needs.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type reservationEvent struct {
	ReservationID string    `json:"reservation_id"`
	HotelID       string    `json:"hotel_id"`
	RoomTypeID    string    `json:"room_type_id"`
	UnitIDs       []string  `json:"unit_ids"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	Quantity      int       `json:"quantity"`
	Status        string    `json:"status"`
}

// publishEvent emits a reservation lifecycle event. Delivery is best-effort:
// the reservation is already committed, so a publish failure is logged and
// swallowed rather than failing the request.
func (s *reservationService) publishEvent(ctx context.Context, eventType string, res *model.Reservation) {
	if s.events == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(res.RoomTypeID).
		WithEventType(eventType).
		WithSource("reservations").
		WithSchemaVersion("1").
		WithValue(reservationEvent{
			ReservationID: res.ID,
			HotelID:       res.HotelID,
			RoomTypeID:    res.RoomTypeID,
			UnitIDs:       res.UnitIDs,
			CheckIn:       res.Range.CheckIn,
			CheckOut:      res.Range.CheckOut,
			Quantity:      res.Quantity,
			Status:        string(res.Status),
		}).
		Build()

	if err := s.events.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish reservation event",
			"event_type", eventType,
			"reservation_id", res.ID,
			"error", err,
		)
	}
}
