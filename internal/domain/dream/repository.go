package dream

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows a page of entries.
type ListFilter struct {
	Page   int
	Limit  int
	Search string
	Tag    string
}

// Offset returns the number of entries preceding the page.
func (f ListFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// EntryRepository persists dream entries and their attached interpretations.
// Lists are ordered by occurrence date, newest first.
type EntryRepository interface {
	CreateEntry(ctx context.Context, entry Entry) (Entry, error)
	GetEntry(ctx context.Context, userID int64, id uuid.UUID) (Entry, bool, error)
	ListEntries(ctx context.Context, userID int64, filter ListFilter) ([]Entry, int, error)
	AllEntries(ctx context.Context, userID int64) ([]Entry, error)
	UpdateEntry(ctx context.Context, entry Entry) (bool, error)
	DeleteEntry(ctx context.Context, userID int64, id uuid.UUID) (bool, error)
}

// ProfileRepository exposes the profile fields the gate reads and writes.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID int64) (Profile, bool, error)
	// UpdateUsage sets the counter to `to` only if it still equals `from`.
	UpdateUsage(ctx context.Context, userID int64, from, to int) (bool, error)
	UpdatePlan(ctx context.Context, userID int64, plan PlanTier) error
}

// StatsCache memoizes aggregate statistics per user and calendar day.
// Invalidate advances the user's generation; a snapshot stored under an older
// generation is never served, so a recompute that raced a write cannot
// resurrect the pre-write aggregate.
type StatsCache interface {
	GetStats(ctx context.Context, userID int64, day string) (CachedStats, error)
	SetStats(ctx context.Context, userID int64, day string, generation int64, stats AggregateStats) error
	Invalidate(ctx context.Context, userID int64) error
}

// CachedStats is the outcome of a cache lookup. Generation is the user's
// current generation and is set on misses too.
type CachedStats struct {
	Stats      AggregateStats
	Generation int64
	Hit        bool
}

// ExportStore keeps export archives. An empty URL means the store cannot
// serve downloads and the caller should return the payload inline.
type ExportStore interface {
	SaveExport(ctx context.Context, key string, payload []byte) (string, error)
}
