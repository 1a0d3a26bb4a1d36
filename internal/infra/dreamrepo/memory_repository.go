package dreamrepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yanqian/dreamvision/internal/domain/dream"
)

// MemoryRepository keeps entries in process memory for tests/dev.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]dream.Entry
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[uuid.UUID]dream.Entry)}
}

// CreateEntry stores a copy of the entry.
func (r *MemoryRepository) CreateEntry(_ context.Context, entry dream.Entry) (dream.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[entry.ID]; exists {
		return dream.Entry{}, ErrDuplicateEntry
	}
	r.entries[entry.ID] = entry.Clone()
	return entry.Clone(), nil
}

// GetEntry returns the entry when it belongs to userID.
func (r *MemoryRepository) GetEntry(_ context.Context, userID int64, id uuid.UUID) (dream.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return dream.Entry{}, false, nil
	}
	return entry.Clone(), true, nil
}

// ListEntries returns one filtered page plus the filtered total.
func (r *MemoryRepository) ListEntries(_ context.Context, userID int64, filter dream.ListFilter) ([]dream.Entry, int, error) {
	r.mu.RLock()
	matched := make([]dream.Entry, 0)
	for _, entry := range r.entries {
		if entry.UserID == userID && matches(entry, filter) {
			matched = append(matched, entry.Clone())
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(matched)
	total := len(matched)
	start := min(filter.Offset(), total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return matched[start:end], total, nil
}

// AllEntries returns every entry the user owns, newest first.
func (r *MemoryRepository) AllEntries(_ context.Context, userID int64) ([]dream.Entry, error) {
	r.mu.RLock()
	out := make([]dream.Entry, 0)
	for _, entry := range r.entries {
		if entry.UserID == userID {
			out = append(out, entry.Clone())
		}
	}
	r.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

// UpdateEntry replaces a stored entry owned by the same user.
func (r *MemoryRepository) UpdateEntry(_ context.Context, entry dream.Entry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.entries[entry.ID]
	if !ok || current.UserID != entry.UserID {
		return false, nil
	}
	r.entries[entry.ID] = entry.Clone()
	return true, nil
}

// DeleteEntry removes the entry and its interpretation.
func (r *MemoryRepository) DeleteEntry(_ context.Context, userID int64, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return false, nil
	}
	delete(r.entries, id)
	return true, nil
}

func matches(entry dream.Entry, filter dream.ListFilter) bool {
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(entry.Title), needle) &&
			!strings.Contains(strings.ToLower(entry.Content), needle) {
			return false
		}
	}
	if filter.Tag != "" {
		for _, tag := range entry.Tags {
			if tag == filter.Tag {
				return true
			}
		}
		return false
	}
	return true
}

func sortNewestFirst(entries []dream.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].OccurredAt.Equal(entries[j].OccurredAt) {
			return entries[i].OccurredAt.After(entries[j].OccurredAt)
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

var _ dream.EntryRepository = (*MemoryRepository)(nil)
