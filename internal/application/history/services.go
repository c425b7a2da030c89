package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/safeweb/internal/application"
	"github.com/bryanwahyu/safeweb/internal/domain/analysis"
	domain "github.com/bryanwahyu/safeweb/internal/domain/history"
	"github.com/bryanwahyu/safeweb/pkg/logger"
)

// TimestampLayout is fixed width so that lexical order equals time order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store keeps the history log in memory, newest first, and mirrors every
// mutation to the durable slot. The in-memory view is authoritative for the
// running process; a failed durable write is logged and does not roll back.
// Store is safe for concurrent use: mutations, including their slot write,
// are serialised.
type Store struct {
	mu       sync.RWMutex
	slot     domain.Slot
	clock    application.Clock
	log      *logger.Logger
	items    []domain.Item
	last     time.Time
	degraded bool
}

func NewStore(slot domain.Slot, clock application.Clock, log *logger.Logger) *Store {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		slot:  slot,
		clock: clock,
		log:   log.WithComponent("history"),
	}
}

// Load hydrates the store from the slot. It never fails: a missing value
// yields an empty history, and an unreadable or corrupt value is logged and
// replaced by an empty history.
func (s *Store) Load(ctx context.Context) []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.last = time.Time{}

	raw, err := s.slot.Read(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSlotEmpty) {
			s.log.Error().Err(err).Str("key", domain.Key).Msg("failed to read history, starting empty")
		}
		return []domain.Item{}
	}

	items, newest, err := decode(raw)
	if err != nil {
		s.log.Error().Err(err).Str("key", domain.Key).Msg("stored history is corrupt, starting empty")
		return []domain.Item{}
	}

	s.items = items
	s.last = newest
	s.log.Info().Int("items", len(items)).Msg("history loaded")
	return cloneItems(s.items)
}

// Append records a completed analysis and returns the created item. Text
// inputs longer than MaxInputRunes are truncated and marked. A failed durable
// write does not make Append fail.
func (s *Store) Append(ctx context.Context, typ domain.Type, input string, result analysis.Result) (domain.Item, error) {
	if !typ.Valid() {
		return domain.Item{}, fmt.Errorf("%w: history type %q", analysis.ErrInvalidInput, typ)
	}
	if !result.RiskLevel.Valid() {
		return domain.Item{}, fmt.Errorf("%w: risk level %q", analysis.ErrInvalidResponseShape, result.RiskLevel)
	}
	if typ == domain.TypeText {
		input = TruncateInput(input)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Nanosecond)
	}
	s.last = now

	item := domain.Item{
		ID:        domain.ItemID(uuid.New().String()),
		Timestamp: now.Format(TimestampLayout),
		Type:      typ,
		Input:     input,
		Result:    result.Clone(),
	}

	next := make([]domain.Item, 0, len(s.items)+1)
	next = append(next, item)
	next = append(next, s.items...)
	s.items = next

	s.persist(ctx)
	return cloneItem(item), nil
}

// Clear removes every item and persists the empty history.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persist(ctx)
	s.log.Info().Msg("history cleared")
}

// Items returns a copy of the history, newest first.
func (s *Store) Items() []domain.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Get looks up a single item by id.
func (s *Store) Get(id domain.ItemID) (domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return cloneItem(it), nil
		}
	}
	return domain.Item{}, domain.ErrNotFound
}

// Stats aggregates the current history.
func (s *Store) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ComputeStats(s.items)
}

// Degraded reports whether the most recent durable write failed.
func (s *Store) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context) {
	items := s.items
	if items == nil {
		items = []domain.Item{}
	}
	data, err := json.Marshal(items)
	if err == nil {
		err = s.slot.Write(ctx, data)
	}
	if err != nil {
		s.degraded = true
		s.log.Error().Err(fmt.Errorf("%w: %v", analysis.ErrPersistenceDegraded, err)).
			Str("key", domain.Key).
			Int("items", len(items)).
			Msg("failed to persist history, keeping in-memory state")
		return
	}
	s.degraded = false
}

// TruncateInput keeps the first MaxInputRunes runes of a text submission.
func TruncateInput(s string) string {
	count := 0
	for i := range s {
		if count == domain.MaxInputRunes {
			return s[:i] + domain.TruncationMarker
		}
		count++
	}
	return s
}

// decode parses the stored value fully or not at all. Every item must have
// an id, a parseable timestamp, a known type and a valid result.
func decode(raw []byte) ([]domain.Item, time.Time, error) {
	var items []domain.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, time.Time{}, err
	}

	type stamped struct {
		item domain.Item
		at   time.Time
	}
	entries := make([]stamped, 0, len(items))
	var newest time.Time
	for i, it := range items {
		if it.ID == "" {
			return nil, time.Time{}, fmt.Errorf("item %d has no id", i)
		}
		ts, err := time.Parse(time.RFC3339Nano, it.Timestamp)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("item %s: %w", it.ID, err)
		}
		if !it.Type.Valid() {
			return nil, time.Time{}, fmt.Errorf("item %s: unknown type %q", it.ID, it.Type)
		}
		if !it.Result.RiskLevel.Valid() || it.Result.Details == nil {
			return nil, time.Time{}, fmt.Errorf("item %s: invalid result", it.ID)
		}
		entries = append(entries, stamped{item: it, at: ts})
		if ts.After(newest) {
			newest = ts
		}
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].at.After(entries[b].at)
	})
	out := make([]domain.Item, len(entries))
	for i, e := range entries {
		out[i] = e.item
	}
	return out, newest, nil
}

func cloneItem(it domain.Item) domain.Item {
	it.Result = it.Result.Clone()
	return it
}

func cloneItems(items []domain.Item) []domain.Item {
	out := make([]domain.Item, len(items))
	for i, it := range items {
		out[i] = cloneItem(it)
	}
	return out
}
