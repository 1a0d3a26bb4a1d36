package dream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/yanqian/dreamvision/pkg/errors"
	"github.com/yanqian/dreamvision/pkg/metrics"
	"github.com/yanqian/dreamvision/pkg/util"
)

// ExportFilename is the attachment name used for inline exports.
const ExportFilename = "dreamvision-export.json"

const (
	maxUsageCommitAttempts = 5
	statsComputeTimeout    = 30 * time.Second
)

var errUsageConflict = errors.New("interpretation counter kept changing")

// Service exposes the dream journal workflows.
type Service interface {
	CreateEntry(ctx context.Context, userID int64, req CreateEntryRequest) (EntryResult, error)
	GetEntry(ctx context.Context, userID int64, id uuid.UUID) (Entry, error)
	ListEntries(ctx context.Context, userID int64, filter ListFilter) (EntryPage, error)
	UpdateEntry(ctx context.Context, userID int64, id uuid.UUID, req UpdateEntryRequest) (EntryResult, error)
	DeleteEntry(ctx context.Context, userID int64, id uuid.UUID) error
	RequestInterpretation(ctx context.Context, userID int64, id uuid.UUID) (EntryResult, error)
	GetInterpretation(ctx context.Context, userID int64, id uuid.UUID) (Interpretation, error)
	Entitlement(ctx context.Context, userID int64) (Decision, error)
	Upgrade(ctx context.Context, userID int64) (Decision, error)
	Stats(ctx context.Context, userID int64) (AggregateStats, error)
	Visualize(ctx context.Context, userID int64, id uuid.UUID, style string) (string, error)
	Visualization(ctx context.Context, userID int64, id uuid.UUID) (string, error)
	Export(ctx context.Context, userID int64) (ExportResult, error)
}

// EntryResult reports an entry together with the entitlement outcome of any
// interpretation attempted while handling the request.
type EntryResult struct {
	Entry       Entry     `json:"dream"`
	Interpreted bool      `json:"interpreted"`
	Entitlement *Decision `json:"entitlement,omitempty"`
}

// EntryPage is one page of a filtered listing.
type EntryPage struct {
	Entries    []Entry `json:"dreams"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}

// ExportDocument is the archived account snapshot.
type ExportDocument struct {
	User       Profile   `json:"user"`
	Dreams     []Entry   `json:"dreams"`
	ExportDate time.Time `json:"exportDate"`
}

// ExportResult carries either a download URL or the inline payload.
type ExportResult struct {
	URL      string
	Filename string
	Payload  []byte
}

type service struct {
	cfg      Config
	entries  EntryRepository
	profiles ProfileRepository
	engine   Interpreter
	gate     Gate
	cache    StatsCache
	exports  ExportStore
	logger   *slog.Logger
	now      func() time.Time

	users      *keyedSlots[int64]
	entryLocks *keyedSlots[string]
	statsGroup singleflight.Group
}

// NewService wires the journal around its storage ports and the engine.
// cache and exports may be nil.
func NewService(
	cfg Config,
	entries EntryRepository,
	profiles ProfileRepository,
	engine Interpreter,
	cache StatsCache,
	exports ExportStore,
	logger *slog.Logger,
) Service {
	return &service{
		cfg:        cfg.withDefaults(),
		entries:    entries,
		profiles:   profiles,
		engine:     engine,
		cache:      cache,
		exports:    exports,
		logger:     logger.With("component", "dream.service"),
		now:        util.NowUTC,
		users:      newKeyedSlots[int64](),
		entryLocks: newKeyedSlots[string](),
	}
}

func (s *service) CreateEntry(ctx context.Context, userID int64, req CreateEntryRequest) (EntryResult, error) {
	now := s.now()
	input, err := validateEntry(req.EntryInput, now)
	if err != nil {
		return EntryResult{}, err
	}
	entry := Entry{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      input.Title,
		Content:    input.Content,
		OccurredAt: input.OccurredAt,
		Mood:       input.Mood,
		Lucidity:   input.Lucidity,
		Tags:       input.Tags,
		Symbols:    []string{},
		Themes:     []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	created, err := s.entries.CreateEntry(ctx, entry)
	if err != nil {
		return EntryResult{}, storageError("failed to save dream", err)
	}
	s.invalidateStats(ctx, userID)
	s.logger.Info("dream created", "user_id", userID, "entry_id", created.ID)

	if !req.RequestInterpretation {
		return EntryResult{Entry: created}, nil
	}

	// The entry is already stored. An abandoned interpretation leaves it
	// uninterpreted rather than failing the create.
	unlock, err := s.lockEntry(ctx, userID, created.ID)
	if err != nil {
		s.logger.Info("interpretation skipped for new dream", "user_id", userID, "entry_id", created.ID, "error", err)
		return EntryResult{Entry: created}, nil
	}
	defer unlock()

	outcome, err := s.interpretLocked(ctx, created)
	if apperrors.IsCode(err, CodeCancelled) {
		return EntryResult{Entry: created}, nil
	}
	if err != nil {
		return EntryResult{}, err
	}
	return outcome.result(), nil
}

func (s *service) GetEntry(ctx context.Context, userID int64, id uuid.UUID) (Entry, error) {
	return s.loadEntry(ctx, userID, id)
}

func (s *service) ListEntries(ctx context.Context, userID int64, filter ListFilter) (EntryPage, error) {
	filter = s.normalizeFilter(filter)
	entries, total, err := s.entries.ListEntries(ctx, userID, filter)
	if err != nil {
		return EntryPage{}, apperrors.Wrap(CodeDreamError, "failed to list dreams", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	pages := 0
	if total > 0 {
		pages = (total + filter.Limit - 1) / filter.Limit
	}
	return EntryPage{
		Entries:    entries,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: pages,
	}, nil
}

func (s *service) UpdateEntry(ctx context.Context, userID int64, id uuid.UUID, req UpdateEntryRequest) (EntryResult, error) {
	unlock, err := s.lockEntry(ctx, userID, id)
	if err != nil {
		return EntryResult{}, err
	}
	defer unlock()

	entry, err := s.loadEntry(ctx, userID, id)
	if err != nil {
		return EntryResult{}, err
	}
	input, err := validateEntry(req.EntryInput, entry.OccurredAt)
	if err != nil {
		return EntryResult{}, err
	}

	reinterpret := entry.HasInterpretation()
	entry.Title = input.Title
	entry.Content = input.Content
	entry.OccurredAt = input.OccurredAt
	entry.Mood = input.Mood
	entry.Lucidity = input.Lucidity
	entry.Tags = input.Tags
	entry.UpdatedAt = s.now()

	if !reinterpret {
		if err := s.saveEntry(ctx, entry); err != nil {
			return EntryResult{}, err
		}
		s.invalidateStats(ctx, userID)
		return EntryResult{Entry: entry}, nil
	}

	// The old interpretation describes content that no longer exists. The edit
	// is written together with its replacement, or detached when the gate
	// denies; an abandoned request writes nothing.
	entry.Detach()
	outcome, err := s.interpretLocked(ctx, entry)
	if err != nil {
		return EntryResult{}, err
	}
	if !outcome.interpreted {
		if err := s.saveEntry(ctx, outcome.entry); err != nil {
			return EntryResult{}, err
		}
		s.invalidateStats(ctx, userID)
	}
	return outcome.result(), nil
}

func (s *service) DeleteEntry(ctx context.Context, userID int64, id uuid.UUID) error {
	unlock, err := s.lockEntry(ctx, userID, id)
	if err != nil {
		return err
	}
	defer unlock()

	deleted, err := s.entries.DeleteEntry(ctx, userID, id)
	if err != nil {
		return apperrors.Wrap(CodeDreamError, "failed to delete dream", err)
	}
	if !deleted {
		return apperrors.Wrap(CodeNotFound, "dream not found", nil)
	}
	s.invalidateStats(ctx, userID)
	s.logger.Info("dream deleted", "user_id", userID, "entry_id", id)
	return nil
}

func (s *service) RequestInterpretation(ctx context.Context, userID int64, id uuid.UUID) (EntryResult, error) {
	unlock, err := s.lockEntry(ctx, userID, id)
	if err != nil {
		return EntryResult{}, err
	}
	defer unlock()

	entry, err := s.loadEntry(ctx, userID, id)
	if err != nil {
		return EntryResult{}, err
	}
	if entry.HasInterpretation() {
		return EntryResult{}, apperrors.Wrap(CodeAlreadyInterpreted, "dream already has an interpretation", nil)
	}
	outcome, err := s.interpretLocked(ctx, entry)
	if err != nil {
		return EntryResult{}, err
	}
	if !outcome.interpreted {
		return EntryResult{}, apperrors.Wrap(CodeEntitlementDenied, "trial limit reached, upgrade to premium for more interpretations", nil)
	}
	return outcome.result(), nil
}

func (s *service) GetInterpretation(ctx context.Context, userID int64, id uuid.UUID) (Interpretation, error) {
	entry, err := s.loadEntry(ctx, userID, id)
	if err != nil {
		return Interpretation{}, err
	}
	if !entry.HasInterpretation() {
		return Interpretation{}, apperrors.Wrap(CodeNotFound, "interpretation not found", nil)
	}
	return entry.Interpretation.Clone(), nil
}

func (s *service) Entitlement(ctx context.Context, userID int64) (Decision, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return Decision{}, err
	}
	return s.gate.Check(profile), nil
}

func (s *service) Upgrade(ctx context.Context, userID int64) (Decision, error) {
	slot := s.users.acquire(userID)
	defer s.users.release(userID, slot)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return Decision{}, err
	}
	if profile.IsPremium() {
		return s.gate.Check(profile), nil
	}
	upgraded := s.gate.Upgrade(profile)
	if err := s.profiles.UpdatePlan(ctx, userID, upgraded.Plan); err != nil {
		return Decision{}, apperrors.Wrap(CodeDreamError, "failed to upgrade plan", err)
	}
	s.logger.Info("user upgraded to premium", "user_id", userID)
	return s.gate.Check(upgraded), nil
}

func (s *service) Stats(ctx context.Context, userID int64) (AggregateStats, error) {
	now := s.now()
	day := util.DayKey(now)
	generation := int64(-1)
	if s.cache != nil {
		cached, err := s.cache.GetStats(ctx, userID, day)
		switch {
		case err != nil:
			s.logger.Warn("stats cache read failed", "user_id", userID, "error", err)
		case cached.Hit:
			return cached.Stats, nil
		default:
			generation = cached.Generation
		}
	}

	// Callers of one generation share a single computation. It runs detached
	// from any one caller so a departing client cannot fail the others.
	key := fmt.Sprintf("%d:%s:%d", userID, day, generation)
	ch := s.statsGroup.DoChan(key, func() (any, error) {
		computeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statsComputeTimeout)
		defer cancel()
		entries, err := s.entries.AllEntries(computeCtx, userID)
		if err != nil {
			return nil, err
		}
		stats := Aggregate(entries, now)
		if s.cache != nil && generation >= 0 {
			if err := s.cache.SetStats(computeCtx, userID, day, generation, stats); err != nil {
				s.logger.Warn("stats cache write failed", "user_id", userID, "error", err)
			}
		}
		return stats, nil
	})

	select {
	case <-ctx.Done():
		return AggregateStats{}, cancelled(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return AggregateStats{}, apperrors.Wrap(CodeDreamError, "failed to compute statistics", res.Err)
		}
		return res.Val.(AggregateStats), nil
	}
}

func (s *service) Visualize(ctx context.Context, userID int64, id uuid.UUID, style string) (string, error) {
	unlock, err := s.lockEntry(ctx, userID, id)
	if err != nil {
		return "", err
	}
	defer unlock()

	entry, err := s.loadEntry(ctx, userID, id)
	if err != nil {
		return "", err
	}
	entry.VisualizationURL = VisualizationURL(entry.Content, style)
	entry.UpdatedAt = s.now()
	if err := s.saveEntry(ctx, entry); err != nil {
		return "", err
	}
	return entry.VisualizationURL, nil
}

func (s *service) Visualization(ctx context.Context, userID int64, id uuid.UUID) (string, error) {
	entry, err := s.loadEntry(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if entry.VisualizationURL == "" {
		return "", apperrors.Wrap(CodeNotFound, "no visualization found for this dream", nil)
	}
	return entry.VisualizationURL, nil
}

func (s *service) Export(ctx context.Context, userID int64) (ExportResult, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return ExportResult{}, err
	}
	entries, err := s.entries.AllEntries(ctx, userID)
	if err != nil {
		return ExportResult{}, apperrors.Wrap(CodeDreamError, "failed to load dreams", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	payload, err := json.MarshalIndent(ExportDocument{
		User:       profile,
		Dreams:     entries,
		ExportDate: s.now(),
	}, "", "  ")
	if err != nil {
		return ExportResult{}, apperrors.Wrap(CodeDreamError, "failed to encode export", err)
	}

	result := ExportResult{Filename: ExportFilename, Payload: payload}
	if s.exports == nil {
		return result, nil
	}
	key := fmt.Sprintf("%s/%d/%s.json", strings.Trim(s.cfg.ExportPrefix, "/"), userID, uuid.NewString())
	url, err := s.exports.SaveExport(ctx, key, payload)
	if err != nil {
		return ExportResult{}, apperrors.Wrap(CodeDreamError, "failed to store export", err)
	}
	result.URL = url
	s.logger.Info("export stored", "user_id", userID, "key", key, "bytes", len(payload))
	return result, nil
}

type interpretOutcome struct {
	entry       Entry
	decision    Decision
	interpreted bool
}

func (o interpretOutcome) result() EntryResult {
	decision := o.decision
	return EntryResult{Entry: o.entry, Interpreted: o.interpreted, Entitlement: &decision}
}

// interpretLocked runs check, interpret and commit for an entry whose lock the
// caller holds. The user slot is held only around the counter sections; the
// engine call runs with a reservation instead so concurrent requests from the
// same user cannot overspend the allowance.
func (s *service) interpretLocked(ctx context.Context, entry Entry) (interpretOutcome, error) {
	userID := entry.UserID
	slot := s.users.acquire(userID)
	defer s.users.release(userID, slot)

	slot.mu.Lock()
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		slot.mu.Unlock()
		return interpretOutcome{}, err
	}
	pending := profile
	pending.InterpretationsUsed += slot.reserved
	decision := s.gate.Check(pending)
	if !decision.Allowed {
		slot.mu.Unlock()
		metrics.ObserveEntitlementDenial()
		s.logger.Info("interpretation denied", "user_id", userID, "entry_id", entry.ID,
			"used", profile.InterpretationsUsed, "reserved", slot.reserved, "allowed", profile.InterpretationsAllowed)
		return interpretOutcome{entry: entry, decision: s.gate.Check(profile)}, nil
	}
	reserved := !profile.IsPremium()
	if reserved {
		slot.reserved++
	}
	slot.mu.Unlock()
	defer func() {
		if reserved {
			slot.mu.Lock()
			slot.reserved--
			slot.mu.Unlock()
		}
	}()

	interp, err := s.engine.Interpret(ctx, entry, profile)
	if err != nil {
		s.logger.Info("interpretation abandoned", "user_id", userID, "entry_id", entry.ID, "error", err)
		return interpretOutcome{}, cancelled(err)
	}

	// From here on the work is committed as a unit even if the caller leaves.
	commitCtx := context.WithoutCancel(ctx)
	entry.Attach(interp)
	entry.UpdatedAt = s.now()
	if err := s.saveEntry(commitCtx, entry); err != nil {
		return interpretOutcome{}, err
	}
	s.invalidateStats(commitCtx, userID)

	slot.mu.Lock()
	decision, err = s.commitUsage(commitCtx, userID)
	if reserved {
		slot.reserved--
		reserved = false
	}
	slot.mu.Unlock()
	if err != nil {
		s.logger.Error("failed to record interpretation usage", "user_id", userID, "entry_id", entry.ID, "error", err)
		return interpretOutcome{}, err
	}

	s.logger.Info("dream interpreted", "user_id", userID, "entry_id", entry.ID,
		"source", string(interp.Source), "used", decision.Used, "allowed", decision.Limit)
	return interpretOutcome{entry: entry, decision: decision, interpreted: true}, nil
}

// commitUsage routes the counter increment through the gate and writes it
// with compare-and-set, retrying against a fresh profile on conflict.
func (s *service) commitUsage(ctx context.Context, userID int64) (Decision, error) {
	for attempt := 1; attempt <= maxUsageCommitAttempts; attempt++ {
		current, err := s.loadProfile(ctx, userID)
		if err != nil {
			return Decision{}, err
		}
		next := s.gate.RecordUsage(current)
		if next.InterpretationsUsed == current.InterpretationsUsed {
			return s.gate.Check(next), nil
		}
		swapped, err := s.profiles.UpdateUsage(ctx, userID, current.InterpretationsUsed, next.InterpretationsUsed)
		if err != nil {
			return Decision{}, apperrors.Wrap(CodeDreamError, "failed to record interpretation usage", err)
		}
		if swapped {
			return s.gate.Check(next), nil
		}
		s.logger.Warn("interpretation counter changed concurrently", "user_id", userID, "attempt", attempt)
	}
	return Decision{}, apperrors.Wrap(CodeDreamError, "failed to record interpretation usage", errUsageConflict)
}

func (s *service) lockEntry(ctx context.Context, userID int64, id uuid.UUID) (func(), error) {
	key := strconv.FormatInt(userID, 10) + ":" + id.String()
	slot := s.entryLocks.acquire(key)
	if err := slot.lock(ctx); err != nil {
		s.entryLocks.release(key, slot)
		return nil, cancelled(err)
	}
	return func() {
		slot.unlock()
		s.entryLocks.release(key, slot)
	}, nil
}

func (s *service) loadEntry(ctx context.Context, userID int64, id uuid.UUID) (Entry, error) {
	entry, found, err := s.entries.GetEntry(ctx, userID, id)
	if err != nil {
		return Entry{}, storageError("failed to load dream", err)
	}
	if !found {
		return Entry{}, apperrors.Wrap(CodeNotFound, "dream not found", nil)
	}
	return entry, nil
}

func (s *service) saveEntry(ctx context.Context, entry Entry) error {
	updated, err := s.entries.UpdateEntry(ctx, entry)
	if err != nil {
		return storageError("failed to save dream", err)
	}
	if !updated {
		return apperrors.Wrap(CodeNotFound, "dream not found", nil)
	}
	return nil
}

func (s *service) loadProfile(ctx context.Context, userID int64) (Profile, error) {
	profile, found, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return Profile{}, storageError("failed to load profile", err)
	}
	if !found {
		return Profile{}, apperrors.Wrap(CodeNotFound, "user not found", nil)
	}
	return profile, nil
}

// invalidateStats runs after a write has landed, so it ignores cancellation
// of the request that made the write.
func (s *service) invalidateStats(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), userID); err != nil {
		s.logger.Warn("stats cache invalidation failed", "user_id", userID, "error", err)
	}
}

func cancelled(err error) error {
	return apperrors.Wrap(CodeCancelled, "request cancelled", err)
}

func storageError(msg string, err error) error {
	if errors.Is(err, context.Canceled) {
		return cancelled(err)
	}
	return apperrors.Wrap(CodeDreamError, msg, err)
}

func (s *service) normalizeFilter(filter ListFilter) ListFilter {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = s.cfg.DefaultListLimit
	}
	if filter.Limit > s.cfg.MaxListLimit {
		filter.Limit = s.cfg.MaxListLimit
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Tag = strings.TrimSpace(filter.Tag)
	return filter
}
