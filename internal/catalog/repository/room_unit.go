package repository

import (
	"context"
	"fmt"
	"time"

	"hostly/pkg/config"
	"hostly/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	UnitCollectionName = "Room_units"
)

// RoomUnitRepository is the catalog side's view of the unit store:
// provisioning, teardown, and the booking-activity check that guards
// decommissioning.
type RoomUnitRepository interface {
	InsertMany(ctx context.Context, units []*model.RoomUnit) error
	CountWithBookings(ctx context.Context, roomTypeID string) (int64, error)
	DeleteByRoomType(ctx context.Context, roomTypeID string) (int64, error)
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

func (r *mongoRoomUnitRepository) InsertMany(ctx context.Context, units []*model.RoomUnit) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]interface{}, len(units))
	for i, u := range units {
		u.CreatedAt = now
		docs[i] = u
	}

	_, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to insert room units: %w", err)
	}

	return nil
}

func (r *mongoRoomUnitRepository) CountWithBookings(ctx context.Context, roomTypeID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"room_type_id": roomTypeID,
		"bookings":     bson.M{"$exists": true, "$not": bson.M{"$size": 0}},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count units with bookings: %w", err)
	}

	return count, nil
}

func (r *mongoRoomUnitRepository) DeleteByRoomType(ctx context.Context, roomTypeID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"room_type_id": roomTypeID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete room units: %w", err)
	}

	return result.DeletedCount, nil
}
