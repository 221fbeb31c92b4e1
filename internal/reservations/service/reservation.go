package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hostly/internal/inventory"
	reservationserrors "hostly/internal/reservations/errors"
	"hostly/internal/reservations/repository"
	"hostly/internal/reservations/validator"
	"hostly/pkg/config"
	apperrors "hostly/pkg/errors"
	"hostly/pkg/model"
	"hostly/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReservationService interface {
	Reserve(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error)
	Cancel(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	unitRepo  repository.RoomUnitRepository
	lockRepo  repository.RoomLockRepository
	validator *validator.ReservationValidator
	events    EventPublisher
	cfg       *config.Config
	registry  lockRegistry
}

func NewReservationService(
	repo repository.ReservationRepository,
	unitRepo repository.RoomUnitRepository,
	lockRepo repository.RoomLockRepository,
	validator *validator.ReservationValidator,
	events EventPublisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		unitRepo:  unitRepo,
		lockRepo:  lockRepo,
		validator: validator,
		events:    events,
		cfg:       cfg,
	}
}

// Reserve turns a booking request into a confirmed reservation. The
// check-and-commit sequence is serialized per room type: an in-process
// mutex covers goroutines in this process, and an advisory lock document
// covers other processes. The store re-asserts the no-overlap invariant on
// every interval push, so even a lost lock cannot double-book a unit.
func (s *reservationService) Reserve(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error) {
	s.sanitize(req)

	stay, err := s.validator.Validate(req)
	if err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}

	// Fast-path idempotency check before any locking
	if req.IdempotencyKey != "" {
		if existing, err := s.replayByKey(ctx, req); existing != nil || err != nil {
			return existing, err
		}
	}

	mu := s.registry.get(req.RoomTypeID)
	mu.Lock()
	defer mu.Unlock()

	lockID, err := s.acquireRoomTypeLock(ctx, req.RoomTypeID)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Release even when the caller's context is already gone, so an
		// abandoned request does not hold the room type until TTL reaping.
		if releaseErr := s.releaseRoomTypeLock(context.WithoutCancel(ctx), lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room type lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	units, err := s.unitRepo.FindByRoomType(ctx, req.RoomTypeID)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrRoomTypeNotFound) {
			return nil, apperrors.NotFoundWithID("Room type", req.RoomTypeID)
		}
		return nil, apperrors.Internal("Failed to load room units", err)
	}
	if len(units) == 0 {
		return nil, apperrors.NotFoundWithID("Room type", req.RoomTypeID)
	}

	index := inventory.NewIndex(units)

	selected, err := index.SelectUnits(stay, req.Quantity)
	if err != nil {
		return nil, apperrors.InsufficientInventory(
			"Not enough rooms of this type are free for the requested dates",
			map[string]any{
				"room_type_id": req.RoomTypeID,
				"requested":    req.Quantity,
				"free":         index.CountFree(stay),
			},
		)
	}

	reservation := &model.Reservation{
		ID:             uuid.New().String(),
		HotelID:        req.HotelID,
		RoomTypeID:     req.RoomTypeID,
		UnitIDs:        selected,
		Range:          stay,
		Quantity:       req.Quantity,
		GuestName:      req.GuestName,
		GuestEmail:     req.GuestEmail,
		Status:         model.ReservationPending,
		IdempotencyKey: req.IdempotencyKey,
	}

	// Selection already verified freedom under the lock, so a conflict here
	// is a bug signal. Booked ledgers are rolled back before failing.
	for i, unitID := range selected {
		if bookErr := index.Book(unitID, stay, reservation.ID); bookErr != nil {
			for _, booked := range selected[:i] {
				index.Ledger(booked).Release(reservation.ID)
			}
			s.cfg.Log.Error("Selected unit rejected its booking",
				"unit_id", unitID,
				"room_type_id", req.RoomTypeID,
				"error", bookErr,
			)
			return nil, apperrors.Conflict("Reservation commit observed an unexpected unit conflict")
		}
	}

	interval := model.BookedInterval{Range: stay, ReservationID: reservation.ID}
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		for _, unitID := range selected {
			if pushErr := s.unitRepo.PushInterval(sessCtx, unitID, interval); pushErr != nil {
				if errors.Is(pushErr, reservationserrors.ErrUnitConflict) {
					return apperrors.Conflict(fmt.Sprintf("Unit %s was booked concurrently for an overlapping range", unitID))
				}
				return apperrors.Internal("Failed to commit booked interval", pushErr)
			}
		}

		reservation.Status = model.ReservationConfirmed
		if createErr := s.repo.Create(sessCtx, reservation); createErr != nil {
			if mongo.IsDuplicateKeyError(createErr) {
				// Another retry with the same idempotency key won the race.
				return errIdempotencyRace
			}
			return apperrors.Internal("Failed to create reservation", createErr)
		}

		return nil
	})
	if errors.Is(err, errIdempotencyRace) {
		// The transaction aborted, so nothing was booked here. Resolve the
		// retry against the winner's reservation: identical parameters
		// replay it, different parameters are the client's error.
		return s.resolveIdempotencyRace(ctx, req)
	}
	if err != nil {
		reservation.Status = model.ReservationPending
		s.cfg.Log.Error("Failed to commit reservation",
			"room_type_id", req.RoomTypeID,
			"range", stay.String(),
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Reservation confirmed",
		"id", reservation.ID,
		"hotel_id", reservation.HotelID,
		"room_type_id", reservation.RoomTypeID,
		"unit_ids", reservation.UnitIDs,
		"range", stay.String(),
	)

	s.publishEvent(ctx, EventReservationConfirmed, reservation)
	return reservation, nil
}

// Cancel releases the reservation's intervals and marks it cancelled.
// Cancelling an already-cancelled reservation is a no-op success so client
// retries stay safe.
func (s *reservationService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Reservation", id)
		}
		return apperrors.Internal("Failed to retrieve reservation", err)
	}

	if reservation.Status == model.ReservationCancelled {
		s.cfg.Log.Debug("Reservation already cancelled", "id", id)
		return nil
	}

	mu := s.registry.get(reservation.RoomTypeID)
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UTC().Truncate(time.Millisecond)
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if pullErr := s.unitRepo.PullIntervals(sessCtx, reservation.ID, reservation.UnitIDs); pullErr != nil {
			return apperrors.Internal("Failed to release booked intervals", pullErr)
		}
		if markErr := s.repo.MarkCancelled(sessCtx, id, now); markErr != nil {
			if errors.Is(markErr, reservationserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Reservation", id)
			}
			return apperrors.Internal("Failed to mark reservation cancelled", markErr)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel reservation", "id", id, "error", err)
		return err
	}

	reservation.Status = model.ReservationCancelled
	reservation.CancelledAt = &now

	s.cfg.Log.Info("Reservation cancelled", "id", id, "room_type_id", reservation.RoomTypeID)

	s.publishEvent(ctx, EventReservationCancelled, reservation)
	return nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}

	return reservation, nil
}

func (s *reservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

// --- Helpers ---

func (s *reservationService) sanitize(req *model.ReservationRequest) {
	req.GuestName = sanitizer.NormalizeGuestName(req.GuestName)
	req.GuestEmail = sanitizer.NormalizeEmail(req.GuestEmail)
}

// errIdempotencyRace marks a commit that lost the unique-index race on the
// idempotency key to a concurrent retry.
var errIdempotencyRace = errors.New("idempotency key inserted concurrently")

// resolveIdempotencyRace handles a retry that slipped past the pre-lock fast
// path and hit the unique index at insert time.
func (s *reservationService) resolveIdempotencyRace(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error) {
	existing, err := s.replayByKey(ctx, req)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		// The winner vanished between the insert conflict and the lookup.
		return nil, apperrors.IdempotencyConflict("A reservation with this idempotency key already exists")
	}
	return existing, nil
}

// replayByKey resolves a request that carries a previously seen idempotency
// key. Identical parameters return the stored reservation; different
// parameters are a client error. Returns (nil, nil) when the key is unseen.
func (s *reservationService) replayByKey(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error) {
	existing, err := s.repo.FindByIdempotencyKey(ctx, req.IdempotencyKey)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.Internal("Failed to look up idempotency key", err)
	}

	if !req.Fingerprint().Matches(existing) {
		return nil, apperrors.IdempotencyConflict("Idempotency key was already used with different request parameters")
	}

	s.cfg.Log.Info("Replayed reservation for idempotency key",
		"id", existing.ID,
		"idempotency_key", req.IdempotencyKey,
	)
	return existing, nil
}

// acquireRoomTypeLock creates an advisory lock to prevent concurrent
// check-and-commit across processes. Returns the lock ID if successful, or
// conflict error if lock already exists.
func (s *reservationService) acquireRoomTypeLock(ctx context.Context, roomTypeID string) (string, error) {
	lockID := fmt.Sprintf("room_lock_%s", roomTypeID)

	lock := &model.RoomTypeLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.RoomLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This room type is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire room type lock", err)
	}

	return lockID, nil
}

// releaseRoomTypeLock removes the advisory lock
func (s *reservationService) releaseRoomTypeLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
