package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	catalogerrors "hostly/internal/catalog/errors"
	"hostly/internal/catalog/repository"
	"hostly/internal/catalog/validator"
	"hostly/pkg/config"
	apperrors "hostly/pkg/errors"
	"hostly/pkg/model"
	"hostly/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type RoomTypeService interface {
	Create(ctx context.Context, roomType *model.RoomType) error
	GetByID(ctx context.Context, id string) (*model.RoomType, error)
	ListByHotel(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.RoomType, int64, error)
	Decommission(ctx context.Context, id string) error
}

type roomTypeService struct {
	repo      repository.RoomTypeRepository
	unitRepo  repository.RoomUnitRepository
	validator *validator.RoomTypeValidator
	cfg       *config.Config
}

func NewRoomTypeService(
	repo repository.RoomTypeRepository,
	unitRepo repository.RoomUnitRepository,
	validator *validator.RoomTypeValidator,
	cfg *config.Config,
) RoomTypeService {
	return &roomTypeService{
		repo:      repo,
		unitRepo:  unitRepo,
		validator: validator,
		cfg:       cfg,
	}
}

// Create provisions a room type together with its fixed unit collection,
// numbered 1..UnitCount, in one transaction. Unit IDs derive from the room
// type ID and unit number so re-provisioning the same room type cannot
// silently duplicate units.
func (s *roomTypeService) Create(ctx context.Context, roomType *model.RoomType) error {
	s.sanitize(roomType)
	if err := s.validator.Validate(roomType); err != nil {
		s.cfg.Log.Warn("Room type validation failed", "error", err)
		return apperrors.Validation("Room type validation failed", map[string]any{"error": err.Error()})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, roomType); err != nil {
			return apperrors.Internal("Failed to create room type", err)
		}

		units := make([]*model.RoomUnit, roomType.UnitCount)
		for i := range units {
			unitNo := i + 1
			units[i] = &model.RoomUnit{
				ID:         fmt.Sprintf("%s_%d", roomType.ID, unitNo),
				RoomTypeID: roomType.ID,
				UnitNo:     unitNo,
				Bookings:   []model.BookedInterval{},
			}
		}

		if err := s.unitRepo.InsertMany(sessCtx, units); err != nil {
			return apperrors.Internal("Failed to provision room units", err)
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to provision room type", "error", err)
		return err
	}

	s.cfg.Log.Info("Room type provisioned",
		"id", roomType.ID,
		"hotel_id", roomType.HotelID,
		"name", roomType.Name,
		"unit_count", roomType.UnitCount,
	)
	return nil
}

func (s *roomTypeService) GetByID(ctx context.Context, id string) (*model.RoomType, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room type ID cannot be empty")
	}

	roomType, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room type", id)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room type ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve room type", err)
	}

	return roomType, nil
}

func (s *roomTypeService) ListByHotel(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.RoomType, int64, error) {
	if hotelID == "" {
		return nil, 0, apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	var count int64
	var roomTypes []*model.RoomType
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByHotel(ctx, hotelID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count room types", "hotel_id", hotelID, "error", errCount)
			errCount = apperrors.Internal("Failed to count room types", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		roomTypes, errFind = s.repo.FindByHotel(ctx, hotelID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list room types", "hotel_id", hotelID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve room types", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return roomTypes, count, nil
}

// Decommission removes a room type and its units. Refused while any unit
// still holds a committed interval; reservations must be cancelled first.
func (s *roomTypeService) Decommission(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Room type ID cannot be empty")
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		active, err := s.unitRepo.CountWithBookings(sessCtx, id)
		if err != nil {
			return apperrors.Internal("Failed to check unit activity", err)
		}
		if active > 0 {
			return apperrors.Conflict(fmt.Sprintf(
				"Room type has %d unit(s) with committed bookings; cancel the reservations before decommissioning",
				active,
			))
		}

		if _, err := s.unitRepo.DeleteByRoomType(sessCtx, id); err != nil {
			return apperrors.Internal("Failed to delete room units", err)
		}

		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, catalogerrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Room type", id)
			}
			if errors.Is(err, catalogerrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid room type ID format")
			}
			return apperrors.Internal("Failed to delete room type", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Room type decommissioned", "id", id)
	return nil
}

func (s *roomTypeService) sanitize(roomType *model.RoomType) {
	roomType.Name = sanitizer.TrimAndNormalize(roomType.Name)
}
