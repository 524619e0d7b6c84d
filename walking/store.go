/*
store.go - Persistence interfaces for records and users

PURPOSE:
  Defines the boundary between the walk ledger and the database. Only raw
  records and users are persisted; computed statistics never are.

KEY INTERFACES:
  RecordStore: create-or-replace by (owner, day), delete by (owner, day),
               inclusive range reads
  UserStore:   the owners of records

ONE RECORD PER DAY:
  ReplaceDay removes every existing record of (owner, day) before inserting,
  in one atomic step. Stores that can hold duplicates from older data still
  return them from LoadRange; the aggregator merges them.

IMPLEMENTATIONS:
  - store/sqlite: SQLite with versioned migrations
  - walking/store: in-memory, for tests and ephemeral runs
*/
package walking

import (
	"context"

	"github.com/warp/walk-ledger/calendar"
)

// RecordStore handles persistence of raw activity records.
type RecordStore interface {
	// LoadRange returns the owner's records with from <= Day <= to,
	// ordered by day then creation time.
	LoadRange(ctx context.Context, ownerID OwnerID, from, to calendar.Day) ([]Record, error)

	// ReplaceDay atomically deletes the owner's records on rec.Day and
	// stores rec.
	ReplaceDay(ctx context.Context, rec Record) error

	// DeleteDay removes the owner's records on day and reports how many
	// were removed. Deleting an empty day is not an error.
	DeleteDay(ctx context.Context, ownerID OwnerID, day calendar.Day) (int, error)
}

// UserStore handles persistence of users.
type UserStore interface {
	// FirstUser returns the oldest user, or nil if there is none.
	FirstUser(ctx context.Context) (*User, error)

	// GetUser returns the user with id, or nil if there is none.
	GetUser(ctx context.Context, id OwnerID) (*User, error)

	// SaveUser inserts or updates a user.
	SaveUser(ctx context.Context, u User) error
}
