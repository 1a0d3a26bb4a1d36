package dream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil, time.Now())
	require.Equal(t, AggregateStats{
		TopThemes:  []string{},
		TopSymbols: []string{},
	}, stats)
}

func TestAggregateAveragesAndHistogram(t *testing.T) {
	now := time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Mood: 5, Lucidity: 1, OccurredAt: time.Date(2023, time.March, 2, 0, 0, 0, 0, time.UTC)},
		{Mood: 2, Lucidity: 4, OccurredAt: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{Mood: 2, Lucidity: 4, OccurredAt: time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)},
	}
	stats := Aggregate(entries, now)
	require.Equal(t, 3, stats.TotalEntries)
	require.InDelta(t, 3.0, stats.AverageMood, 1e-9)
	require.InDelta(t, 3.0, stats.AverageLucidity, 1e-9)
	require.Equal(t, 2, stats.MonthlyEntries[2])
	require.Equal(t, 1, stats.MonthlyEntries[0])
	require.Equal(t, 0, stats.Streak)
}

func TestAggregateTopThemesTieBreakByFirstSeen(t *testing.T) {
	entries := make([]Entry, 10)
	entries[0].Themes = []string{"A"}
	entries[2].Themes = []string{"B", "A"}
	entries[4].Themes = []string{"C"}
	entries[6].Themes = []string{"C"}
	entries[9].Themes = []string{"C"}

	stats := Aggregate(entries, time.Now())
	require.Equal(t, []string{"C", "A", "B"}, stats.TopThemes)

	tied := []Entry{
		{Symbols: []string{"fire", "car"}},
		{Symbols: []string{"water", "car", "fire"}},
		{Symbols: []string{"water"}},
	}
	require.Equal(t, []string{"fire", "car", "water"}, Aggregate(tied, time.Now()).TopSymbols)
}

func TestAggregateTopListCappedAtFive(t *testing.T) {
	entries := []Entry{{Symbols: []string{"a", "b", "c", "d", "e", "f", "g"}}}
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, Aggregate(entries, time.Now()).TopSymbols)
}

func TestStreak(t *testing.T) {
	now := time.Date(2024, time.May, 10, 18, 30, 0, 0, time.UTC)
	day := func(offset int) Entry {
		return Entry{OccurredAt: time.Date(2024, time.May, 10+offset, 7, 0, 0, 0, time.UTC)}
	}

	tests := []struct {
		name    string
		entries []Entry
		want    int
	}{
		{"empty", nil, 0},
		{"gap after yesterday", []Entry{day(-3), day(0), day(-1)}, 2},
		{"duplicates tolerated", []Entry{day(0), day(0), day(-1), day(-2)}, 3},
		{"future entry skipped", []Entry{day(2), day(0), day(-1)}, 2},
		{"nothing today", []Entry{day(-1), day(-2)}, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Streak(tt.entries, now))
		})
	}
}
