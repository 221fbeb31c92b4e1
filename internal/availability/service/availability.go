package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"hostly/internal/inventory"
	"hostly/pkg/config"
	"hostly/pkg/daterange"
	apperrors "hostly/pkg/errors"
	"hostly/pkg/model"
)

// RoomTypeReader and RoomUnitReader are the read-only slices of the catalog
// and unit stores the search path needs. The search path never takes the
// reservation lock: it reads whatever snapshot the store returns, and a
// subsequent reserve re-validates under lock anyway.
type RoomTypeReader interface {
	FindByHotel(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.RoomType, error)
}

type RoomUnitReader interface {
	FindByRoomType(ctx context.Context, roomTypeID string) ([]*model.RoomUnit, error)
}

type AvailabilityService interface {
	Search(ctx context.Context, hotelID string, checkIn, checkOut time.Time, quantity int) ([]model.RoomTypeAvailability, error)
	FreeWindows(ctx context.Context, roomTypeID string, from time.Time, days int) ([]model.UnitFreeWindows, error)
}

type availabilityService struct {
	roomTypes RoomTypeReader
	units     RoomUnitReader
	cfg       *config.Config
}

func NewAvailabilityService(roomTypes RoomTypeReader, units RoomUnitReader, cfg *config.Config) AvailabilityService {
	return &availabilityService{
		roomTypes: roomTypes,
		units:     units,
		cfg:       cfg,
	}
}

// Search reports the hotel's room types with at least quantity units free
// over the range. Room types are counted concurrently; results come back in
// room type ID order so responses are stable.
func (s *availabilityService) Search(ctx context.Context, hotelID string, checkIn, checkOut time.Time, quantity int) ([]model.RoomTypeAvailability, error) {
	if hotelID == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}
	if quantity < 1 {
		return nil, apperrors.InvalidInput("Quantity must be at least 1")
	}

	stay, err := daterange.New(checkIn, checkOut)
	if err != nil {
		return nil, apperrors.InvalidInput("check_out must be after check_in")
	}

	roomTypes, err := s.loadAllRoomTypes(ctx, hotelID)
	if err != nil {
		s.cfg.Log.Error("Failed to load room types for search", "hotel_id", hotelID, "error", err)
		return nil, apperrors.Internal("Failed to load room types", err)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error
	results := make([]model.RoomTypeAvailability, 0, len(roomTypes))

	for _, rt := range roomTypes {
		wg.Add(1)
		go func(rt *model.RoomType) {
			defer wg.Done()

			units, unitErr := s.units.FindByRoomType(ctx, rt.ID)
			if unitErr != nil {
				s.cfg.Log.Error("Failed to load units for search",
					"room_type_id", rt.ID,
					"error", unitErr,
				)
				mu.Lock()
				if firstErr == nil {
					firstErr = apperrors.Internal("Failed to load room units", unitErr)
				}
				mu.Unlock()
				return
			}

			free := inventory.NewIndex(units).CountFree(stay)
			if free < quantity {
				return
			}

			mu.Lock()
			results = append(results, model.RoomTypeAvailability{
				RoomTypeID: rt.ID,
				Name:       rt.Name,
				FreeCount:  free,
			})
			mu.Unlock()
		}(rt)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].RoomTypeID < results[j].RoomTypeID
	})

	s.cfg.Log.Debug("Availability search completed",
		"hotel_id", hotelID,
		"range", stay.String(),
		"quantity", quantity,
		"matches", len(results),
	)
	return results, nil
}

// loadAllRoomTypes pages through the hotel's room types; search must see
// every room type, not just the first page.
func (s *availabilityService) loadAllRoomTypes(ctx context.Context, hotelID string) ([]*model.RoomType, error) {
	var roomTypes []*model.RoomType
	for offset := int64(0); ; offset += int64(config.DefaultPaginationLimit) {
		batch, err := s.roomTypes.FindByHotel(ctx, hotelID, config.DefaultPaginationLimit, offset)
		if err != nil {
			return nil, err
		}
		roomTypes = append(roomTypes, batch...)
		if len(batch) < config.DefaultPaginationLimit {
			return roomTypes, nil
		}
	}
}

// FreeWindows reports each unit's open ranges within the horizon starting
// at from. A non-positive days falls back to the configured search horizon.
func (s *availabilityService) FreeWindows(ctx context.Context, roomTypeID string, from time.Time, days int) ([]model.UnitFreeWindows, error) {
	if roomTypeID == "" {
		return nil, apperrors.InvalidInput("Room type ID cannot be empty")
	}
	if days <= 0 {
		days = s.cfg.SearchHorizonDays
	}

	start := daterange.Day(from)
	horizon, err := daterange.New(start, start.AddDate(0, 0, days))
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid search horizon")
	}

	units, err := s.units.FindByRoomType(ctx, roomTypeID)
	if err != nil {
		s.cfg.Log.Error("Failed to load units for free windows", "room_type_id", roomTypeID, "error", err)
		return nil, apperrors.Internal("Failed to load room units", err)
	}
	if len(units) == 0 {
		return nil, apperrors.NotFoundWithID("Room type", roomTypeID)
	}

	index := inventory.NewIndex(units)
	out := make([]model.UnitFreeWindows, 0, len(units))
	for _, u := range index.Units() {
		windows := []daterange.DateRange{}
		for r := range index.Ledger(u.ID).FreeRangesWithin(horizon) {
			windows = append(windows, r)
		}
		out = append(out, model.UnitFreeWindows{
			UnitID:      u.ID,
			UnitNo:      u.UnitNo,
			FreeWindows: windows,
		})
	}

	return out, nil
}
