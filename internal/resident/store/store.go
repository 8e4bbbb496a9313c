// Package store persists resident records. InMemory backs the demo
// environment and tests; Postgres is used when DATABASE_URL is set.
package store

import (
	"carehub/contracts/resident"
	"carehub/internal/sentinel"
	"carehub/pkg/domain"
)

// ErrNotFound is returned when a resident is not found.
var ErrNotFound = sentinel.ErrNotFound

// ErrRoomTaken is returned when another non-discharged resident occupies the room.
var ErrRoomTaken = sentinel.ErrAlreadyUsed

// FirstID is the first identifier handed out. It sits above 2^53 so every
// client path is exercised with ids a float64 cannot hold.
const FirstID = "9007199254740993"

// ListFilter selects a page of residents ordered by id.
type ListFilter struct {
	After  domain.ID // exclusive; zero starts from the beginning
	Limit  int
	Status resident.Status
}

// Page is one slice of the id-ordered feed.
type Page struct {
	Items   []resident.Resident
	HasMore bool
}

// occupies reports whether r blocks its room for other residents.
func occupies(r *resident.Resident) bool {
	return r.RoomNumber != nil && *r.RoomNumber != "" && r.Status != resident.StatusDischarged
}
