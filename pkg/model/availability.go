package model

import "hostly/pkg/daterange"

// RoomTypeAvailability is one row of a search result: how many units of a
// room type are free over the requested range.
type RoomTypeAvailability struct {
	RoomTypeID string `json:"room_type_id"`
	Name       string `json:"name"`
	FreeCount  int    `json:"free_count"`
}

// UnitFreeWindows lists the open date ranges on one unit within a search
// horizon.
type UnitFreeWindows struct {
	UnitID      string                `json:"unit_id"`
	UnitNo      int                   `json:"unit_no"`
	FreeWindows []daterange.DateRange `json:"free_windows"`
}
