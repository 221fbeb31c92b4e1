package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	reservationserrors "hostly/internal/reservations/errors"
	"hostly/internal/reservations/validator"
	"hostly/pkg/config"
	mongotx "hostly/pkg/db/mongo"
	"hostly/pkg/daterange"
	apperrors "hostly/pkg/errors"
	"hostly/pkg/kafka"
	"hostly/pkg/logger"
	"hostly/pkg/model"
)

const (
	testHotelID    = "507f1f77bcf86cd799439011"
	testRoomTypeID = "507f1f77bcf86cd799439012"
)

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		RoomLockTTL:        10 * time.Second,
		MaxStayNights:      30,
		MaxUnitsPerRequest: 10,
	}
}

func date(day int) time.Time {
	return time.Date(2026, time.January, day, 0, 0, 0, 0, time.UTC)
}

func testRequest(checkInDay, checkOutDay, quantity int) *model.ReservationRequest {
	return &model.ReservationRequest{
		HotelID:    testHotelID,
		RoomTypeID: testRoomTypeID,
		CheckIn:    date(checkInDay),
		CheckOut:   date(checkOutDay),
		Quantity:   quantity,
		GuestName:  "Ada Lovelace",
		GuestEmail: "ada@example.com",
	}
}

func duplicateKeyError() error {
	return mongo.CommandError{Code: 11000, Message: "E11000 duplicate key error"}
}

// ────────────────────────────────────────────────
// In-memory stores
//
// The unit and reservation stores below behave like their Mongo
// counterparts at the operation level: each call is individually atomic
// and PushInterval re-checks the no-overlap guard. Coordination across
// calls is the service's job, which is exactly what these tests probe.
// ────────────────────────────────────────────────

type fakeUnitStore struct {
	mu    sync.Mutex
	units map[string]*model.RoomUnit
}

func newFakeUnitStore(unitCount int) *fakeUnitStore {
	s := &fakeUnitStore{units: make(map[string]*model.RoomUnit)}
	for n := 1; n <= unitCount; n++ {
		id := fmt.Sprintf("%s_%d", testRoomTypeID, n)
		s.units[id] = &model.RoomUnit{
			ID:         id,
			RoomTypeID: testRoomTypeID,
			UnitNo:     n,
			Bookings:   []model.BookedInterval{},
		}
	}
	return s
}

func (s *fakeUnitStore) FindByRoomType(ctx context.Context, roomTypeID string) ([]*model.RoomUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.RoomUnit
	for _, u := range s.units {
		if u.RoomTypeID != roomTypeID {
			continue
		}
		cp := *u
		cp.Bookings = append([]model.BookedInterval(nil), u.Bookings...)
		out = append(out, &cp)
	}
	if len(out) == 0 {
		return nil, reservationserrors.ErrRoomTypeNotFound
	}
	return out, nil
}

func (s *fakeUnitStore) PushInterval(ctx context.Context, unitID string, interval model.BookedInterval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.units[unitID]
	if !ok {
		return reservationserrors.ErrUnitConflict
	}
	for _, b := range u.Bookings {
		if b.Range.Overlaps(interval.Range) {
			return reservationserrors.ErrUnitConflict
		}
	}
	u.Bookings = append(u.Bookings, interval)
	return nil
}

func (s *fakeUnitStore) PullIntervals(ctx context.Context, reservationID string, unitIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range unitIDs {
		u, ok := s.units[id]
		if !ok {
			continue
		}
		kept := u.Bookings[:0]
		for _, b := range u.Bookings {
			if b.ReservationID != reservationID {
				kept = append(kept, b)
			}
		}
		u.Bookings = kept
	}
	return nil
}

func (s *fakeUnitStore) snapshot() map[string][]model.BookedInterval {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := make(map[string][]model.BookedInterval, len(s.units))
	for id, u := range s.units {
		snap[id] = append([]model.BookedInterval(nil), u.Bookings...)
	}
	return snap
}

func (s *fakeUnitStore) restore(snap map[string][]model.BookedInterval) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, bookings := range snap {
		s.units[id].Bookings = bookings
	}
}

func (s *fakeUnitStore) intervalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, u := range s.units {
		total += len(u.Bookings)
	}
	return total
}

func (s *fakeUnitStore) hasOverlap() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.units {
		for i := range u.Bookings {
			for j := i + 1; j < len(u.Bookings); j++ {
				if u.Bookings[i].Range.Overlaps(u.Bookings[j].Range) {
					return true
				}
			}
		}
	}
	return false
}

type fakeReservationStore struct {
	mu           sync.Mutex
	units        *fakeUnitStore
	reservations map[string]*model.Reservation
	byKey        map[string]string

	// missKeyLookups makes FindByIdempotencyKey report not-found that many
	// times, mimicking a retry that races past the pre-lock lookup before the
	// winner's insert is visible.
	missKeyLookups int
}

func newFakeReservationStore(units *fakeUnitStore) *fakeReservationStore {
	return &fakeReservationStore{
		units:        units,
		reservations: make(map[string]*model.Reservation),
		byKey:        make(map[string]string),
	}
}

func (s *fakeReservationStore) Create(ctx context.Context, reservation *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reservation.IdempotencyKey != "" {
		if _, exists := s.byKey[reservation.IdempotencyKey]; exists {
			return duplicateKeyError()
		}
		s.byKey[reservation.IdempotencyKey] = reservation.ID
	}
	cp := *reservation
	cp.CreatedAt = time.Now().UTC()
	s.reservations[reservation.ID] = &cp
	return nil
}

func (s *fakeReservationStore) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.reservations[id]
	if !ok {
		return nil, reservationserrors.ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (s *fakeReservationStore) FindByIdempotencyKey(ctx context.Context, key string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.missKeyLookups > 0 {
		s.missKeyLookups--
		return nil, reservationserrors.ErrNotFound
	}

	id, ok := s.byKey[key]
	if !ok {
		return nil, reservationserrors.ErrNotFound
	}
	cp := *s.reservations[id]
	return &cp, nil
}

func (s *fakeReservationStore) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Reservation
	for _, res := range s.reservations {
		cp := *res
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeReservationStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.reservations)), nil
}

func (s *fakeReservationStore) MarkCancelled(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.reservations[id]
	if !ok {
		return reservationserrors.ErrNotFound
	}
	res.Status = model.ReservationCancelled
	res.CancelledAt = &at
	return nil
}

// ExecuteTransaction mimics the all-or-nothing property: unit writes made
// by a failing callback are rolled back.
func (s *fakeReservationStore) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	snap := s.units.snapshot()
	if err := fn(mongo.NewSessionContext(ctx, nil)); err != nil {
		s.units.restore(snap)
		return err
	}
	return nil
}

// fakeLockStore enforces the advisory-lock contract: a second Create for a
// held lock ID fails with a duplicate-key error.
type fakeLockStore struct {
	mu            sync.Mutex
	held          map[string]bool
	lastDeleteErr error
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{held: make(map[string]bool)}
}

func (s *fakeLockStore) Create(ctx context.Context, lock *model.RoomTypeLock) (*model.RoomTypeLock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.held[lock.ID] {
		return nil, duplicateKeyError()
	}
	s.held[lock.ID] = true
	return lock, nil
}

func (s *fakeLockStore) Delete(ctx context.Context, lockID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDeleteErr = ctx.Err()
	delete(s.held, lockID)
	return nil
}

func (s *fakeLockStore) heldCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.held)
}

type capturedEvents struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func (c *capturedEvents) Publish(ctx context.Context, msg kafka.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return nil
}

func (c *capturedEvents) eventTypes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var types []string
	for _, msg := range c.messages {
		types = append(types, msg.Headers[kafka.HeaderEventType])
	}
	return types
}

type testFixture struct {
	service ReservationService
	units   *fakeUnitStore
	store   *fakeReservationStore
	locks   *fakeLockStore
	events  *capturedEvents
}

func newFixture(t *testing.T, unitCount int) *testFixture {
	t.Helper()

	cfg := testConfig()
	units := newFakeUnitStore(unitCount)
	f := &testFixture{
		units:  units,
		store:  newFakeReservationStore(units),
		locks:  newFakeLockStore(),
		events: &capturedEvents{},
	}
	f.service = NewReservationService(
		f.store,
		f.units,
		f.locks,
		validator.NewReservationValidator(cfg),
		f.events,
		cfg,
	)
	return f
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError with code %s, got %T: %v", code, err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
}

// ────────────────────────────────────────────────
// Reserve
// ────────────────────────────────────────────────

func TestReserve_ConfirmsLowestNumberedUnits(t *testing.T) {
	f := newFixture(t, 3)

	res, err := f.service.Reserve(context.Background(), testRequest(10, 12, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Status != model.ReservationConfirmed {
		t.Errorf("expected status confirmed, got %s", res.Status)
	}
	if len(res.UnitIDs) != 2 {
		t.Fatalf("expected 2 units, got %d", len(res.UnitIDs))
	}
	want := []string{testRoomTypeID + "_1", testRoomTypeID + "_2"}
	for i, id := range want {
		if res.UnitIDs[i] != id {
			t.Errorf("unit %d: expected %s, got %s", i, id, res.UnitIDs[i])
		}
	}
	if got := f.units.intervalCount(); got != 2 {
		t.Errorf("expected 2 committed intervals, got %d", got)
	}

	stored, err := f.store.FindByID(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("reservation not persisted: %v", err)
	}
	if stored.Status != model.ReservationConfirmed {
		t.Errorf("persisted status: expected confirmed, got %s", stored.Status)
	}

	types := f.events.eventTypes()
	if len(types) != 1 || types[0] != EventReservationConfirmed {
		t.Errorf("expected one %s event, got %v", EventReservationConfirmed, types)
	}
}

func TestReserve_InsufficientInventory(t *testing.T) {
	f := newFixture(t, 2)

	if _, err := f.service.Reserve(context.Background(), testRequest(10, 12, 1)); err != nil {
		t.Fatalf("setup reservation failed: %v", err)
	}

	_, err := f.service.Reserve(context.Background(), testRequest(11, 13, 2))
	assertAppErrorCode(t, err, apperrors.CodeInsufficientInventory)

	appErr := apperrors.AsAppError(err)
	if appErr.Details["free"] != 1 {
		t.Errorf("expected free=1 in details, got %v", appErr.Details["free"])
	}
	if got := f.units.intervalCount(); got != 1 {
		t.Errorf("failed reservation must not commit intervals, got %d", got)
	}
}

func TestReserve_BackToBackStaysShareAUnit(t *testing.T) {
	f := newFixture(t, 1)

	first, err := f.service.Reserve(context.Background(), testRequest(10, 12, 1))
	if err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}

	second, err := f.service.Reserve(context.Background(), testRequest(12, 14, 1))
	if err != nil {
		t.Fatalf("checkout-day check-in should be accepted: %v", err)
	}
	if first.UnitIDs[0] != second.UnitIDs[0] {
		t.Errorf("expected both stays on the single unit, got %s and %s", first.UnitIDs[0], second.UnitIDs[0])
	}
}

func TestReserve_IdempotentReplayReturnsSameReservation(t *testing.T) {
	f := newFixture(t, 2)

	req := testRequest(10, 12, 1)
	req.IdempotencyKey = "retry-key-001"

	first, err := f.service.Reserve(context.Background(), req)
	if err != nil {
		t.Fatalf("first attempt failed: %v", err)
	}

	retry := testRequest(10, 12, 1)
	retry.IdempotencyKey = "retry-key-001"
	second, err := f.service.Reserve(context.Background(), retry)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("replay must return the original reservation: %s vs %s", second.ID, first.ID)
	}
	if got := f.units.intervalCount(); got != 1 {
		t.Errorf("replay must not book again: expected 1 interval, got %d", got)
	}
}

// A retry can pass the pre-lock key lookup before the winner's insert is
// visible and then hit the unique index inside the transaction. Identical
// parameters must still replay the stored reservation.
func TestReserve_RetryRacingPastFastPathReplays(t *testing.T) {
	f := newFixture(t, 2)

	req := testRequest(10, 12, 1)
	req.IdempotencyKey = "race-window-001"
	first, err := f.service.Reserve(context.Background(), req)
	if err != nil {
		t.Fatalf("first attempt failed: %v", err)
	}

	f.store.mu.Lock()
	f.store.missKeyLookups = 1
	f.store.mu.Unlock()

	retry := testRequest(10, 12, 1)
	retry.IdempotencyKey = "race-window-001"
	second, err := f.service.Reserve(context.Background(), retry)
	if err != nil {
		t.Fatalf("identical retry must replay, got: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("retry must return the original reservation: %s vs %s", second.ID, first.ID)
	}
	if got := f.units.intervalCount(); got != 1 {
		t.Errorf("retry must not book again: expected 1 interval, got %d", got)
	}
}

func TestReserve_RetryRacingPastFastPathWithDifferentParams(t *testing.T) {
	f := newFixture(t, 2)

	req := testRequest(10, 12, 1)
	req.IdempotencyKey = "race-window-002"
	if _, err := f.service.Reserve(context.Background(), req); err != nil {
		t.Fatalf("first attempt failed: %v", err)
	}

	f.store.mu.Lock()
	f.store.missKeyLookups = 1
	f.store.mu.Unlock()

	reuse := testRequest(20, 22, 1)
	reuse.IdempotencyKey = "race-window-002"
	_, err := f.service.Reserve(context.Background(), reuse)
	assertAppErrorCode(t, err, apperrors.CodeIdempotencyConflict)

	if got := f.units.intervalCount(); got != 1 {
		t.Errorf("conflicting retry must leave the store untouched, got %d intervals", got)
	}
}

func TestReserve_IdempotencyKeyReuseWithDifferentParams(t *testing.T) {
	f := newFixture(t, 2)

	req := testRequest(10, 12, 1)
	req.IdempotencyKey = "retry-key-002"
	if _, err := f.service.Reserve(context.Background(), req); err != nil {
		t.Fatalf("first attempt failed: %v", err)
	}

	reuse := testRequest(15, 17, 1)
	reuse.IdempotencyKey = "retry-key-002"
	_, err := f.service.Reserve(context.Background(), reuse)
	assertAppErrorCode(t, err, apperrors.CodeIdempotencyConflict)
}

func TestReserve_IdempotencyKeyReuseWithDifferentGuest(t *testing.T) {
	f := newFixture(t, 2)

	req := testRequest(10, 12, 1)
	req.IdempotencyKey = "retry-key-003"
	if _, err := f.service.Reserve(context.Background(), req); err != nil {
		t.Fatalf("first attempt failed: %v", err)
	}

	reuse := testRequest(10, 12, 1)
	reuse.GuestName = "Grace Hopper"
	reuse.IdempotencyKey = "retry-key-003"
	_, err := f.service.Reserve(context.Background(), reuse)
	assertAppErrorCode(t, err, apperrors.CodeIdempotencyConflict)
}

func TestReserve_ReleasesLockWhenCallerGone(t *testing.T) {
	f := newFixture(t, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.service.Reserve(ctx, testRequest(10, 12, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := f.locks.heldCount(); got != 0 {
		t.Errorf("expected the advisory lock to be released, %d held", got)
	}
	f.locks.mu.Lock()
	deleteErr := f.locks.lastDeleteErr
	f.locks.mu.Unlock()
	if deleteErr != nil {
		t.Errorf("lock release must not inherit the caller's cancellation: %v", deleteErr)
	}
}

func TestReserve_ValidationRejectsZeroNightStay(t *testing.T) {
	f := newFixture(t, 2)

	_, err := f.service.Reserve(context.Background(), testRequest(10, 10, 1))
	assertAppErrorCode(t, err, apperrors.CodeValidation)
}

func TestReserve_UnknownRoomType(t *testing.T) {
	f := newFixture(t, 2)

	req := testRequest(10, 12, 1)
	req.RoomTypeID = "507f1f77bcf86cd799439099"
	_, err := f.service.Reserve(context.Background(), req)
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestReserve_RoomTypeLockHeld(t *testing.T) {
	f := newFixture(t, 2)

	lock := &model.RoomTypeLock{ID: "room_lock_" + testRoomTypeID, ExpiresAt: time.Now().Add(time.Minute)}
	if _, err := f.locks.Create(context.Background(), lock); err != nil {
		t.Fatalf("failed to pre-acquire lock: %v", err)
	}

	_, err := f.service.Reserve(context.Background(), testRequest(10, 12, 1))
	assertAppErrorCode(t, err, apperrors.CodeConflict)
}

func TestReserve_ReleasesLockAfterCommit(t *testing.T) {
	f := newFixture(t, 2)

	if _, err := f.service.Reserve(context.Background(), testRequest(10, 12, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.service.Reserve(context.Background(), testRequest(20, 22, 1)); err != nil {
		t.Fatalf("lock was not released after first reservation: %v", err)
	}
}

// A conflict surfacing inside the transaction means the advisory lock was
// bypassed somehow; the commit must abort without a stored reservation.
func TestReserve_StoreConflictAbortsCommit(t *testing.T) {
	f := newFixture(t, 1)

	f.units.mu.Lock()
	unitID := testRoomTypeID + "_1"
	f.units.units[unitID].Bookings = append(f.units.units[unitID].Bookings, model.BookedInterval{
		Range:         mustRange(t, 10, 12),
		ReservationID: "phantom",
	})
	f.units.mu.Unlock()

	// The index is built from a stale snapshot to force the push-side guard
	// to fire.
	stale := &staleUnitStore{inner: f.units}
	cfg := testConfig()
	svc := NewReservationService(f.store, stale, f.locks, validator.NewReservationValidator(cfg), nil, cfg)

	_, err := svc.Reserve(context.Background(), testRequest(10, 12, 1))
	assertAppErrorCode(t, err, apperrors.CodeConflict)

	count, _ := f.store.Count(context.Background())
	if count != 0 {
		t.Errorf("aborted commit must not persist a reservation, found %d", count)
	}
}

// staleUnitStore reports every unit as empty while delegating writes, so the
// store-level no-overlap guard is the only line of defense.
type staleUnitStore struct {
	inner *fakeUnitStore
}

func (s *staleUnitStore) FindByRoomType(ctx context.Context, roomTypeID string) ([]*model.RoomUnit, error) {
	units, err := s.inner.FindByRoomType(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		u.Bookings = []model.BookedInterval{}
	}
	return units, nil
}

func (s *staleUnitStore) PushInterval(ctx context.Context, unitID string, interval model.BookedInterval) error {
	return s.inner.PushInterval(ctx, unitID, interval)
}

func (s *staleUnitStore) PullIntervals(ctx context.Context, reservationID string, unitIDs []string) error {
	return s.inner.PullIntervals(ctx, reservationID, unitIDs)
}

func mustRange(t *testing.T, checkInDay, checkOutDay int) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(date(checkInDay), date(checkOutDay))
	if err != nil {
		t.Fatalf("invalid range %d-%d: %v", checkInDay, checkOutDay, err)
	}
	return dr
}

// ────────────────────────────────────────────────
// Cancel
// ────────────────────────────────────────────────

func TestCancel_ReleasesUnitsAndIsIdempotent(t *testing.T) {
	f := newFixture(t, 2)

	res, err := f.service.Reserve(context.Background(), testRequest(10, 12, 2))
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	if err := f.service.Cancel(context.Background(), res.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if got := f.units.intervalCount(); got != 0 {
		t.Errorf("cancel must release all intervals, %d remain", got)
	}

	stored, err := f.store.FindByID(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("cancelled reservation must remain queryable: %v", err)
	}
	if stored.Status != model.ReservationCancelled {
		t.Errorf("expected status cancelled, got %s", stored.Status)
	}
	if stored.CancelledAt == nil {
		t.Error("expected cancelled_at to be set")
	}

	// Second cancel is a no-op success.
	if err := f.service.Cancel(context.Background(), res.ID); err != nil {
		t.Fatalf("repeated cancel must succeed: %v", err)
	}

	types := f.events.eventTypes()
	if len(types) != 2 || types[1] != EventReservationCancelled {
		t.Errorf("expected exactly one cancelled event after the confirm, got %v", types)
	}
}

func TestCancel_NotFound(t *testing.T) {
	f := newFixture(t, 2)

	err := f.service.Cancel(context.Background(), "ffffffff-ffff-4fff-8fff-ffffffffffff")
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestCancel_FreesCapacityForNewReservations(t *testing.T) {
	f := newFixture(t, 1)

	first, err := f.service.Reserve(context.Background(), testRequest(10, 12, 1))
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	if _, err := f.service.Reserve(context.Background(), testRequest(10, 12, 1)); err == nil {
		t.Fatal("expected the single unit to be taken")
	}

	if err := f.service.Cancel(context.Background(), first.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	second, err := f.service.Reserve(context.Background(), testRequest(10, 12, 1))
	if err != nil {
		t.Fatalf("unit must be reservable after cancel: %v", err)
	}
	if second.UnitIDs[0] != first.UnitIDs[0] {
		t.Errorf("expected the released unit to be reused, got %s", second.UnitIDs[0])
	}
}

// ────────────────────────────────────────────────
// Concurrency
// ────────────────────────────────────────────────

func TestReserve_ConcurrentRequestsNeverOversell(t *testing.T) {
	const (
		capacity = 3
		callers  = 10
	)
	f := newFixture(t, capacity)

	var wg sync.WaitGroup
	results := make([]error, callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.service.Reserve(context.Background(), testRequest(10, 12, 1))
		}(i)
	}
	wg.Wait()

	confirmed := 0
	for i, err := range results {
		if err == nil {
			confirmed++
			continue
		}
		appErr := apperrors.AsAppError(err)
		if appErr == nil || appErr.Code != apperrors.CodeInsufficientInventory {
			t.Errorf("caller %d: unexpected error: %v", i, err)
		}
	}

	if confirmed != capacity {
		t.Errorf("expected exactly %d confirmations, got %d", capacity, confirmed)
	}
	if got := f.units.intervalCount(); got != capacity {
		t.Errorf("expected %d committed intervals, got %d", capacity, got)
	}
	if f.units.hasOverlap() {
		t.Error("overlapping intervals found on a unit")
	}
}

func TestReserve_ConcurrentRetriesWithSameKeyBookOnce(t *testing.T) {
	const callers = 5
	f := newFixture(t, 2)

	var wg sync.WaitGroup
	ids := make([]string, callers)
	errs := make([]error, callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			req := testRequest(10, 12, 1)
			req.IdempotencyKey = "race-key-001"
			res, err := f.service.Reserve(context.Background(), req)
			if res != nil {
				ids[i] = res.ID
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()

	// Every retry of an identical request resolves to the winner's
	// reservation, whether through the fast path or the insert-race path.
	for i := range ids {
		if errs[i] != nil {
			t.Errorf("caller %d: identical retry must replay, got: %v", i, errs[i])
			continue
		}
		if ids[i] != ids[0] {
			t.Errorf("two distinct reservations for one idempotency key: %s and %s", ids[0], ids[i])
		}
	}

	if got := f.units.intervalCount(); got != 1 {
		t.Errorf("expected a single committed interval, got %d", got)
	}
}

// ────────────────────────────────────────────────
// GetAll
// ────────────────────────────────────────────────

func TestGetAll_ReturnsCountAndPage(t *testing.T) {
	f := newFixture(t, 5)

	for day := 10; day < 13; day++ {
		if _, err := f.service.Reserve(context.Background(), testRequest(day, day+2, 1)); err != nil {
			t.Fatalf("setup reservation failed: %v", err)
		}
	}

	reservations, count, err := f.service.GetAll(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
	if len(reservations) != 3 {
		t.Errorf("expected 3 reservations, got %d", len(reservations))
	}
}
