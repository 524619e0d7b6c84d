// Package store provides in-memory walking.RecordStore and
// walking.UserStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/walk-ledger/calendar"
	"github.com/warp/walk-ledger/walking"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records map[walking.OwnerID][]walking.Record
	users   []walking.User
}

var (
	_ walking.RecordStore = (*Memory)(nil)
	_ walking.UserStore   = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		records: make(map[walking.OwnerID][]walking.Record),
	}
}

// Seed appends records without the one-per-day replacement, the way older
// data may hold several entries for a day.
func (m *Memory) Seed(recs ...walking.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range recs {
		m.insertLocked(rec)
	}
}

// ReplaceDay removes the owner's records on rec.Day, then stores rec.
func (m *Memory) ReplaceDay(_ context.Context, rec walking.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteLocked(rec.OwnerID, rec.Day)
	m.insertLocked(rec)
	return nil
}

func (m *Memory) DeleteDay(_ context.Context, ownerID walking.OwnerID, day calendar.Day) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLocked(ownerID, day), nil
}

func (m *Memory) LoadRange(_ context.Context, ownerID walking.OwnerID, from, to calendar.Day) ([]walking.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []walking.Record
	for _, rec := range m.records[ownerID] {
		if from.BeforeOrEqual(rec.Day) && rec.Day.BeforeOrEqual(to) {
			result = append(result, rec)
		}
	}
	return result, nil
}

// insertLocked keeps each owner's records ordered by day; records on the
// same day stay in insertion order.
func (m *Memory) insertLocked(rec walking.Record) {
	recs := m.records[rec.OwnerID]

	i := sort.Search(len(recs), func(i int) bool {
		return recs[i].Day.After(rec.Day)
	})

	recs = append(recs, walking.Record{})
	copy(recs[i+1:], recs[i:])
	recs[i] = rec
	m.records[rec.OwnerID] = recs
}

func (m *Memory) deleteLocked(ownerID walking.OwnerID, day calendar.Day) int {
	recs := m.records[ownerID]
	kept := recs[:0]
	for _, rec := range recs {
		if rec.Day != day {
			kept = append(kept, rec)
		}
	}
	removed := len(recs) - len(kept)
	m.records[ownerID] = kept
	return removed
}

// =============================================================================
// USERS
// =============================================================================

// FirstUser returns the oldest user, or nil.
func (m *Memory) FirstUser(_ context.Context) (*walking.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.users) == 0 {
		return nil, nil
	}
	first := m.users[0]
	for _, u := range m.users[1:] {
		if u.CreatedAt.Before(first.CreatedAt) {
			first = u
		}
	}
	return &first, nil
}

func (m *Memory) GetUser(_ context.Context, id walking.OwnerID) (*walking.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *Memory) SaveUser(_ context.Context, u walking.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.users {
		if m.users[i].ID == u.ID {
			m.users[i] = u
			return nil
		}
	}
	m.users = append(m.users, u)
	return nil
}

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[walking.OwnerID][]walking.Record)
	m.users = nil
	return nil
}
