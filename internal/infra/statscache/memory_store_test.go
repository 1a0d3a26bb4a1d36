package statscache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/dreamvision/internal/domain/dream"
)

func TestMemoryStore_DayScopedAndExpiring(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 8, 15, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	stats := dream.AggregateStats{TotalEntries: 2, TopThemes: []string{"Freedom"}}
	require.NoError(t, store.SetStats(ctx, 1, "2024-08-15", 0, stats))

	got, err := store.GetStats(ctx, 1, "2024-08-15")
	require.NoError(t, err)
	require.True(t, got.Hit)
	require.Equal(t, 2, got.Stats.TotalEntries)
	got.Stats.TopThemes[0] = "mutated"

	again, err := store.GetStats(ctx, 1, "2024-08-15")
	require.NoError(t, err)
	require.True(t, again.Hit)
	require.Equal(t, "Freedom", again.Stats.TopThemes[0])

	otherDay, err := store.GetStats(ctx, 1, "2024-08-16")
	require.NoError(t, err)
	require.False(t, otherDay.Hit)

	now = now.Add(2 * time.Minute)
	expired, err := store.GetStats(ctx, 1, "2024-08-15")
	require.NoError(t, err)
	require.False(t, expired.Hit)
}

func TestMemoryStore_Invalidate(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, store.SetStats(ctx, 1, "2024-08-15", 0, dream.AggregateStats{TotalEntries: 1}))
	require.NoError(t, store.Invalidate(ctx, 1))

	got, err := store.GetStats(ctx, 1, "2024-08-15")
	require.NoError(t, err)
	require.False(t, got.Hit)
	require.Equal(t, int64(1), got.Generation)
}

func TestMemoryStore_DropsSnapshotFromInvalidatedGeneration(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	miss, err := store.GetStats(ctx, 1, "2024-08-15")
	require.NoError(t, err)
	require.False(t, miss.Hit)

	// A write lands while the aggregate is being computed.
	require.NoError(t, store.Invalidate(ctx, 1))
	require.NoError(t, store.SetStats(ctx, 1, "2024-08-15", miss.Generation, dream.AggregateStats{TotalEntries: 0}))

	got, err := store.GetStats(ctx, 1, "2024-08-15")
	require.NoError(t, err)
	require.False(t, got.Hit)

	require.NoError(t, store.SetStats(ctx, 1, "2024-08-15", got.Generation, dream.AggregateStats{TotalEntries: 1}))
	fresh, err := store.GetStats(ctx, 1, "2024-08-15")
	require.NoError(t, err)
	require.True(t, fresh.Hit)
	require.Equal(t, 1, fresh.Stats.TotalEntries)
}

func TestMemoryStore_GenerationsArePerUser(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, store.SetStats(ctx, 2, "2024-08-15", 0, dream.AggregateStats{TotalEntries: 3}))
	require.NoError(t, store.Invalidate(ctx, 1))

	got, err := store.GetStats(ctx, 2, "2024-08-15")
	require.NoError(t, err)
	require.True(t, got.Hit)
	require.Equal(t, 3, got.Stats.TotalEntries)
}
