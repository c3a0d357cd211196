// Package history keeps the most recent successful prompts per owner.
package history

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"imgprompt/internal/domain"
)

// DefaultLimit is the number of entries kept per owner.
const DefaultLimit = 10

var ErrOwnerRequired = errors.New("history: owner is required")

// Store persists history entries. List returns newest first.
type Store interface {
	Add(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error)
	List(ctx context.Context, owner string) ([]domain.HistoryEntry, error)
	Clear(ctx context.Context, owner string) error
}

// NewEntry builds an entry for a successful resolution.
func NewEntry(owner string, ref domain.ImageReference, res domain.Result, now time.Time) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:        uuid.NewString(),
		Owner:     owner,
		Timestamp: now.UTC(),
		ImageRef:  ref.DisplayRef(),
		Prompt:    res.Prompt,
		Backend:   res.Backend,
	}
}

func prepare(entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	entry.Owner = strings.TrimSpace(entry.Owner)
	if entry.Owner == "" {
		return entry, ErrOwnerRequired
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	return entry, nil
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.Mutex
	limit   int
	entries map[string][]domain.HistoryEntry
}

func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &MemoryStore{limit: limit, entries: make(map[string][]domain.HistoryEntry)}
}

func (s *MemoryStore) Add(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return domain.HistoryEntry{}, err
	}
	entry, err := prepare(entry)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append([]domain.HistoryEntry{entry}, s.entries[entry.Owner]...)
	if len(list) > s.limit {
		list = list[:s.limit]
	}
	s.entries[entry.Owner] = list
	return entry, nil
}

func (s *MemoryStore) List(ctx context.Context, owner string) ([]domain.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.entries[strings.TrimSpace(owner)]
	out := make([]domain.HistoryEntry, len(list))
	copy(out, list)
	return out, nil
}

func (s *MemoryStore) Clear(ctx context.Context, owner string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.entries, strings.TrimSpace(owner))
	s.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)
