// Package records owns the authoritative list of contact records and mirrors
// it to a key-value slot on every change.
package records

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smileynet/otakublog/internal/contact"
	"github.com/smileynet/otakublog/internal/kv"
)

// SlotKey is the slot holding the JSON array of records.
const SlotKey = "contacts"

// maxIDAttempts bounds identifier regeneration on collision.
const maxIDAttempts = 8

// Store is the in-memory record list backed by a slot. The in-memory list is
// authoritative: persistence failures are logged and kept in PersistErr but
// never roll back a mutation.
type Store struct {
	mu         sync.RWMutex
	slots      kv.Store
	key        string
	records    []contact.Record
	log        *zap.Logger
	now        func() time.Time
	newID      func() string
	batchDepth int
	dirty      bool
	persistErr error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the time source used for date fallbacks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithSlotKey overrides the slot key. Defaults to SlotKey.
func WithSlotKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// New creates an empty Store over slots. Call Load to read persisted records.
func New(slots kv.Store, opts ...Option) *Store {
	s := &Store{
		slots: slots,
		key:   SlotKey,
		log:   zap.NewNop(),
		now:   time.Now,
		newID: newTimeOrderedID,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// newTimeOrderedID returns a UUIDv7, whose leading bits are a millisecond
// timestamp with a monotonic sequence.
func newTimeOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Load replaces the in-memory list with the persisted one. An unset slot
// yields an empty list. Malformed content is discarded, the slot is reset to
// an empty list and the problem is logged; Load never fails.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	data, ok, err := s.slots.Get(s.key)
	if err != nil {
		s.log.Error("reading records slot", zap.String("slot", s.key), zap.Error(err))
		s.persistErr = err
		return
	}
	if !ok {
		return
	}

	recs, dateErrs, err := contact.DecodeList(data, s.now())
	if err != nil {
		s.log.Warn("discarding malformed records slot", zap.String("slot", s.key), zap.Error(err))
		s.persistLocked()
		return
	}
	for _, de := range dateErrs {
		s.log.Warn("record date unparseable, using current time", zap.Error(de))
	}
	s.records = dedupe(recs, s.log)

	repaired := false
	for i := range s.records {
		if s.records[i].ID == "" {
			s.records[i].ID = s.uniqueIDLocked()
			repaired = true
		}
	}
	if repaired || len(s.records) != len(recs) {
		s.persistLocked()
	}
}

// dedupe drops records whose identifier was already seen, keeping the first.
func dedupe(recs []contact.Record, log *zap.Logger) []contact.Record {
	seen := make(map[string]bool, len(recs))
	out := recs[:0]
	for _, r := range recs {
		if r.ID != "" {
			if seen[r.ID] {
				log.Warn("dropping record with duplicate id", zap.String("id", r.ID))
				continue
			}
			seen[r.ID] = true
		}
		out = append(out, r)
	}
	return out
}

// List returns copies of all records in insertion order.
func (s *Store) List() []contact.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]contact.Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get returns a copy of the record with id.
func (s *Store) Get(id string) (contact.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return contact.Record{}, false
	}
	return s.records[i].Clone(), true
}

// Add assigns a fresh identifier to draft, appends it and persists.
// Any identifier already on draft is ignored.
func (s *Store) Add(draft contact.Record) contact.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := draft.Clone()
	rec.ID = s.uniqueIDLocked()
	s.records = append(s.records, rec)
	s.persistLocked()
	return rec.Clone()
}

func (s *Store) uniqueIDLocked() string {
	for range maxIDAttempts {
		id := s.newID()
		if id != "" && s.indexLocked(id) < 0 {
			return id
		}
	}
	// The injected generator keeps colliding; fall back to a random UUID.
	return uuid.NewString()
}

// Update fully replaces the record with id by patch, keeping id.
// It is a no-op returning false when id is not found.
func (s *Store) Update(id string, patch contact.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	rec := patch.Clone()
	rec.ID = id
	s.records[i] = rec
	s.persistLocked()
	return true
}

// Remove deletes the record with id. It is a no-op returning false when id
// is not found.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.records = slices.Delete(s.records, i, i+1)
	s.persistLocked()
	return true
}

// Batch runs fn and writes the slot once afterwards instead of after every
// mutation fn performs. fn must use the Store's own methods.
func (s *Store) Batch(fn func()) {
	s.mu.Lock()
	s.batchDepth++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.batchDepth--
		if s.batchDepth == 0 && s.dirty {
			s.persistLocked()
		}
	}()
	fn()
}

// PersistErr returns the most recent persistence failure, or nil if the last
// write succeeded.
func (s *Store) PersistErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistErr
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.records, func(r contact.Record) bool { return r.ID == id })
}

// persistLocked serializes the whole list to the slot. Inside a batch it only
// marks the list dirty.
func (s *Store) persistLocked() {
	if s.batchDepth > 0 {
		s.dirty = true
		return
	}
	s.dirty = false

	data, err := contact.EncodeList(s.records)
	if err == nil {
		err = s.slots.Set(s.key, data)
	}
	if err != nil {
		if errors.Is(err, kv.ErrQuotaExceeded) {
			s.log.Warn("records slot over quota, keeping changes in memory only", zap.Error(err))
		} else {
			s.log.Error("persisting records", zap.String("slot", s.key), zap.Error(err))
		}
		s.persistErr = err
		return
	}
	s.persistErr = nil
}
