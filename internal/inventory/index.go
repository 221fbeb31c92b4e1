package inventory

import (
	"sort"

	"hostly/pkg/daterange"
	"hostly/pkg/model"
)

// Index aggregates availability across one room type's units. Units are
// ordered by unit number so selection is deterministic. Like Ledger, an
// Index is single-writer; readers on the search path build their own
// throwaway index from a store snapshot.
type Index struct {
	units   []*model.RoomUnit
	ledgers map[string]*Ledger
}

// NewIndex builds an index over a room type's provisioned units.
func NewIndex(units []*model.RoomUnit) *Index {
	sorted := make([]*model.RoomUnit, len(units))
	copy(sorted, units)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].UnitNo < sorted[j].UnitNo
	})

	ledgers := make(map[string]*Ledger, len(sorted))
	for _, u := range sorted {
		ledgers[u.ID] = NewLedger(u.Bookings)
	}

	return &Index{units: sorted, ledgers: ledgers}
}

// CountFree returns the number of units free over the whole range.
func (ix *Index) CountFree(r daterange.DateRange) int {
	count := 0
	for _, u := range ix.units {
		if ix.ledgers[u.ID].IsFree(r) {
			count++
		}
	}
	return count
}

// SelectUnits picks the quantity lowest-numbered units free over the range.
// Selection does not mutate any ledger; callers commit through Book.
// Returns ErrInsufficientInventory when fewer than quantity units are free.
func (ix *Index) SelectUnits(r daterange.DateRange, quantity int) ([]string, error) {
	selected := make([]string, 0, quantity)
	for _, u := range ix.units {
		if ix.ledgers[u.ID].IsFree(r) {
			selected = append(selected, u.ID)
			if len(selected) == quantity {
				return selected, nil
			}
		}
	}
	return nil, ErrInsufficientInventory
}

// Book commits an interval on one unit's ledger.
func (ix *Index) Book(unitID string, r daterange.DateRange, reservationID string) error {
	ledger, ok := ix.ledgers[unitID]
	if !ok {
		return ErrUnknownUnit
	}
	return ledger.Book(r, reservationID)
}

// Release removes the reservation's intervals from every ledger holding
// them. Idempotent. Returns the IDs of units that held an interval.
func (ix *Index) Release(reservationID string) []string {
	var touched []string
	for _, u := range ix.units {
		if ix.ledgers[u.ID].Release(reservationID) > 0 {
			touched = append(touched, u.ID)
		}
	}
	return touched
}

// Ledger returns the ledger for a unit, or nil if the unit is not indexed.
func (ix *Index) Ledger(unitID string) *Ledger {
	return ix.ledgers[unitID]
}

// Units returns the units in unit-number order.
func (ix *Index) Units() []*model.RoomUnit {
	return ix.units
}

// Snapshot returns each indexed unit with its ledger's current intervals,
// in unit-number order. Used to persist the post-commit state.
func (ix *Index) Snapshot() []*model.RoomUnit {
	out := make([]*model.RoomUnit, len(ix.units))
	for i, u := range ix.units {
		copied := *u
		copied.Bookings = ix.ledgers[u.ID].Intervals()
		out[i] = &copied
	}
	return out
}
