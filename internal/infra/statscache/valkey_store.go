package statscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/dreamvision/internal/domain/dream"
)

// ValkeyStore caches aggregate statistics in a Valkey-compatible database.
// Each user has a generation counter next to the snapshot; a snapshot only
// counts as a hit while its recorded generation matches the counter, which
// holds across every instance sharing the database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

type statsRecord struct {
	Day        string               `json:"day"`
	Generation int64                `json:"generation"`
	Stats      dream.AggregateStats `json:"stats"`
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string, ttl time.Duration) *ValkeyStore {
	if prefix == "" {
		prefix = "dreamvision"
	}
	return &ValkeyStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *ValkeyStore) GetStats(ctx context.Context, userID int64, day string) (dream.CachedStats, error) {
	cmd := s.client.B().Mget().Key(s.statsKey(userID), s.generationKey(userID)).Build()
	values, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return dream.CachedStats{}, err
	}
	if len(values) != 2 {
		return dream.CachedStats{}, fmt.Errorf("mget returned %d values", len(values))
	}

	generation, err := values[1].AsInt64()
	if err != nil && !valkey.IsValkeyNil(err) {
		return dream.CachedStats{}, err
	}
	miss := dream.CachedStats{Generation: generation}

	payload, err := values[0].ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return miss, nil
		}
		return dream.CachedStats{}, err
	}
	record, err := decodeRecord(payload)
	if err != nil {
		return dream.CachedStats{}, err
	}
	if !record.current(day, generation) {
		return miss, nil
	}
	return dream.CachedStats{Stats: record.Stats, Generation: generation, Hit: true}, nil
}

func (s *ValkeyStore) SetStats(ctx context.Context, userID int64, day string, generation int64, stats dream.AggregateStats) error {
	payload, err := json.Marshal(statsRecord{Day: day, Generation: generation, Stats: stats})
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.statsKey(userID)).Value(string(payload))
	var cmd valkey.Completed
	if ttl := s.ttl; ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

// Invalidate bumps the generation first so a concurrent SetStats of an older
// computation is never served, then drops the snapshot.
func (s *ValkeyStore) Invalidate(ctx context.Context, userID int64) error {
	results := s.client.DoMulti(ctx,
		s.client.B().Incr().Key(s.generationKey(userID)).Build(),
		s.client.B().Del().Key(s.statsKey(userID)).Build(),
	)
	for _, res := range results {
		if err := res.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ValkeyStore) statsKey(userID int64) string {
	return fmt.Sprintf("%s:stats:%d", s.prefix, userID)
}

func (s *ValkeyStore) generationKey(userID int64) string {
	return fmt.Sprintf("%s:stats:%d:gen", s.prefix, userID)
}

func decodeRecord(payload string) (statsRecord, error) {
	var record statsRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return statsRecord{}, err
	}
	return record, nil
}

func (r statsRecord) current(day string, generation int64) bool {
	return r.Day == day && r.Generation == generation
}

var _ dream.StatsCache = (*ValkeyStore)(nil)
