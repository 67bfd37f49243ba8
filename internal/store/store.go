// Package store owns the in-memory ordered record set and its write-through
// persistence. All mutation of application state goes through the CRUD
// contract here; handlers never touch the slice directly.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"pm-dashboard-api/internal/localstore"
	"pm-dashboard-api/internal/models"
)

// ErrMissingID rejects a save with no primary key. Surfaced to the caller
// synchronously; no partial state change happens.
var ErrMissingID = errors.New("record id is required")

// ErrNotFound reports an update against an id that does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDeviceChanged rejects a save that tries to move an existing record to a
// different device category. The category is fixed at creation.
var ErrDeviceChanged = errors.New("device category is fixed at creation")

// PushHook receives the changed record after a successful create or update.
// It must not block: the store fires it and moves on.
type PushHook func(rec models.PMRecord)

// RecordStore is the single source of truth for the record set. The slice is
// ordered; create appends, update replaces in place, wholesale replacement
// discards everything. Every mutation writes the full serialized set through
// to durable storage.
type RecordStore struct {
	mu      sync.RWMutex
	records []models.PMRecord
	kv      localstore.KV
	push    PushHook
}

func New(kv localstore.KV) *RecordStore {
	return &RecordStore{kv: kv}
}

// SetPushHook installs the best-effort remote push for create/update.
func (s *RecordStore) SetPushHook(h PushHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.push = h
}

// Hydrate loads the persisted record set. A missing or malformed entry
// recovers silently to the seed data, mirroring how the dashboard treats
// unreadable local storage.
func (s *RecordStore) Hydrate(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, localstore.KeyRecords)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		s.records = models.SeedRecords()
		return nil
	}
	var records []models.PMRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.records = models.SeedRecords()
		return nil
	}
	s.records = dropMalformed(records)
	return nil
}

// Snapshot returns a copy of the current record set in order.
func (s *RecordStore) Snapshot() []models.PMRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PMRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the record with the given id.
func (s *RecordStore) Get(id string) (models.PMRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.records {
		if s.records[i].ID == id {
			return s.records[i], true
		}
	}
	return models.PMRecord{}, false
}

// Len reports the number of records.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Create saves a record: append when the id is new, replace in place when it
// already exists (last write wins). The next service date is recomputed at
// this moment for completed records. The changed record is handed to the
// push hook after the local mutation succeeds.
func (s *RecordStore) Create(ctx context.Context, rec models.PMRecord) error {
	if rec.ID == "" {
		return ErrMissingID
	}
	rec.ScheduleNext()

	s.mu.Lock()
	replaced := false
	for i := range s.records {
		if s.records[i].ID == rec.ID {
			if s.records[i].Device != rec.Device {
				s.mu.Unlock()
				return ErrDeviceChanged
			}
			s.records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		s.records = append(s.records, rec)
	}
	push := s.push
	s.mu.Unlock()

	s.persist(ctx)
	if push != nil {
		push(rec)
	}
	return nil
}

// Update replaces the record with a matching id, preserving its position in
// the ordered set. Unlike Create it refuses to append.
func (s *RecordStore) Update(ctx context.Context, rec models.PMRecord) error {
	if rec.ID == "" {
		return ErrMissingID
	}
	rec.ScheduleNext()

	s.mu.Lock()
	found := false
	for i := range s.records {
		if s.records[i].ID == rec.ID {
			if s.records[i].Device != rec.Device {
				s.mu.Unlock()
				return ErrDeviceChanged
			}
			s.records[i] = rec
			found = true
			break
		}
	}
	push := s.push
	s.mu.Unlock()

	if !found {
		return ErrNotFound
	}
	s.persist(ctx)
	if push != nil {
		push(rec)
	}
	return nil
}

// Delete removes the record with the given id; deleting an unknown id is a
// no-op, not an error. Deletes are local-only and never pushed.
func (s *RecordStore) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	kept := s.records[:0]
	for _, rec := range s.records {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	s.records = kept
	s.mu.Unlock()

	s.persist(ctx)
}

// ReplaceAll swaps in a record set from an external source, discarding all
// prior local state. Malformed entries are dropped silently. Service dates
// are not recomputed: replacement is hydration, not a save.
func (s *RecordStore) ReplaceAll(ctx context.Context, records []models.PMRecord) {
	cleaned := dropMalformed(records)

	s.mu.Lock()
	s.records = cleaned
	s.mu.Unlock()

	s.persist(ctx)
}

// persist writes the full set through to durable storage. Local state is the
// source of truth, so a failed write is logged, never rolled back.
func (s *RecordStore) persist(ctx context.Context) {
	raw, err := json.Marshal(s.Snapshot())
	if err != nil {
		log.Printf("store: serialize records: %v", err)
		return
	}
	if err := s.kv.Set(ctx, localstore.KeyRecords, string(raw)); err != nil {
		log.Printf("store: persist records: %v", err)
	}
}

func dropMalformed(records []models.PMRecord) []models.PMRecord {
	out := make([]models.PMRecord, 0, len(records))
	for i := range records {
		if records[i].WellFormed() {
			out = append(out, records[i])
		}
	}
	return out
}
