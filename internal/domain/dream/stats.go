package dream

import (
	"sort"
	"time"

	"github.com/yanqian/dreamvision/pkg/util"
)

const topN = 5

// Aggregate derives journal statistics from entries. Calendar days and months
// are taken in now's location.
func Aggregate(entries []Entry, now time.Time) AggregateStats {
	stats := AggregateStats{
		TotalEntries: len(entries),
		TopThemes:    []string{},
		TopSymbols:   []string{},
	}
	if len(entries) == 0 {
		return stats
	}

	loc := now.Location()
	var moodSum, luciditySum int
	themes := newTally()
	symbols := newTally()
	for _, e := range entries {
		moodSum += e.Mood
		luciditySum += e.Lucidity
		for _, theme := range e.Themes {
			themes.add(theme)
		}
		for _, symbol := range e.Symbols {
			symbols.add(symbol)
		}
		stats.MonthlyEntries[e.OccurredAt.In(loc).Month()-1]++
	}

	count := float64(len(entries))
	stats.AverageMood = float64(moodSum) / count
	stats.AverageLucidity = float64(luciditySum) / count
	stats.TopThemes = themes.top(topN)
	stats.TopSymbols = symbols.top(topN)
	stats.Streak = Streak(entries, now)
	return stats
}

// Streak counts consecutive days ending today with at least one entry.
// Entries dated after the cursor day are skipped rather than breaking the run.
func Streak(entries []Entry, now time.Time) int {
	if len(entries) == 0 {
		return 0
	}
	loc := now.Location()
	days := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		days = append(days, util.StartOfDay(e.OccurredAt.In(loc)))
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].After(days[j]) })

	cursor := util.StartOfDay(now)
	streak := 0
	for _, day := range days {
		if day.Equal(cursor) {
			streak++
			cursor = cursor.AddDate(0, 0, -1)
			continue
		}
		if day.Before(cursor) {
			break
		}
	}
	return streak
}

// tally counts labels and remembers the order each was first seen in.
type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(label string) {
	if _, seen := t.counts[label]; !seen {
		t.order = append(t.order, label)
	}
	t.counts[label]++
}

func (t *tally) top(n int) []string {
	ranked := append([]string{}, t.order...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return t.counts[ranked[i]] > t.counts[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
