package repository

import (
	"context"
	"fmt"
	"time"

	reservationserrors "hostly/internal/reservations/errors"
	"hostly/pkg/config"
	"hostly/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UnitCollectionName = "Room_units"
)

// RoomUnitRepository is the reservation side's view of the unit store:
// load a room type's units and commit or release booked intervals.
type RoomUnitRepository interface {
	FindByRoomType(ctx context.Context, roomTypeID string) ([]*model.RoomUnit, error)
	PushInterval(ctx context.Context, unitID string, interval model.BookedInterval) error
	PullIntervals(ctx context.Context, reservationID string, unitIDs []string) error
}

type mongoRoomUnitRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoomUnitRepository(cfg *config.Config) RoomUnitRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomUnitRepository{
		cfg:        cfg,
		collection: db.Collection(UnitCollectionName),
	}
}

func (r *mongoRoomUnitRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRoomUnitRepository) FindByRoomType(ctx context.Context, roomTypeID string) ([]*model.RoomUnit, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(roomTypeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrRoomTypeNotFound, roomTypeID)
	}

	opts := options.Find().SetSort(bson.D{{Key: "unit_no", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"room_type_id": objectID.Hex()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find room units: %w", err)
	}
	defer cursor.Close(ctx)

	var units []*model.RoomUnit
	if err = cursor.All(ctx, &units); err != nil {
		return nil, fmt.Errorf("failed to decode room units: %w", err)
	}

	return units, nil
}

// PushInterval appends a booked interval to one unit's ledger. The filter
// re-asserts at the store that no committed interval overlaps the new one;
// if the unit was booked since the in-memory check, no document matches and
// ErrUnitConflict is returned so the surrounding transaction aborts.
func (r *mongoRoomUnitRepository) PushInterval(ctx context.Context, unitID string, interval model.BookedInterval) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id": unitID,
		"bookings": bson.M{
			"$not": bson.M{
				"$elemMatch": bson.M{
					"range.check_in":  bson.M{"$lt": interval.Range.CheckOut},
					"range.check_out": bson.M{"$gt": interval.Range.CheckIn},
				},
			},
		},
	}

	update := bson.M{
		"$push": bson.M{
			"bookings": bson.M{
				"$each": []model.BookedInterval{interval},
				"$sort": bson.M{"range.check_in": 1},
			},
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to push booked interval: %w", err)
	}

	if result.MatchedCount == 0 {
		return reservationserrors.ErrUnitConflict
	}

	return nil
}

// PullIntervals removes the reservation's intervals from the given units.
// Pulling an absent interval matches zero array elements, so repeats are
// harmless.
func (r *mongoRoomUnitRepository) PullIntervals(ctx context.Context, reservationID string, unitIDs []string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": bson.M{"$in": unitIDs}}
	update := bson.M{
		"$pull": bson.M{
			"bookings": bson.M{"reservation_id": reservationID},
		},
	}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to pull booked intervals: %w", err)
	}

	return nil
}
