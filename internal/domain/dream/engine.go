package dream

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/dreamvision/pkg/metrics"
	"github.com/yanqian/dreamvision/pkg/util"
)

// FailureReason classifies why a remote generation attempt was not used.
type FailureReason string

const (
	FailureNone              FailureReason = ""
	FailureDisabled          FailureReason = "disabled"
	FailureTransport         FailureReason = "transport"
	FailureUpstreamStatus    FailureReason = "upstream_status"
	FailureTimeout           FailureReason = "timeout"
	FailureMalformedResponse FailureReason = "malformed_response"
)

// RemoteRequest is the structured payload handed to a remote generator.
type RemoteRequest struct {
	Title    string
	Content  string
	Mood     int
	Lucidity int
	Age      int
	Sex      Sex
	Sign     string
}

// RemoteResult carries either an interpretation or the reason there is none.
type RemoteResult struct {
	Interpretation Interpretation
	Usage          metrics.TokenUsage
	Failure        FailureReason
	Err            error
}

// OK reports whether the result carries a usable interpretation.
func (r RemoteResult) OK() bool {
	return r.Failure == FailureNone
}

// RemoteSuccess wraps a decoded interpretation.
func RemoteSuccess(interp Interpretation, usage metrics.TokenUsage) RemoteResult {
	return RemoteResult{Interpretation: interp, Usage: usage}
}

// RemoteFailure records a failed attempt.
func RemoteFailure(reason FailureReason, err error) RemoteResult {
	return RemoteResult{Failure: reason, Err: err}
}

// RemoteGenerator produces interpretations with an external text service.
// Implementations report every problem through the result, never by panicking.
type RemoteGenerator interface {
	Generate(ctx context.Context, req RemoteRequest) RemoteResult
}

// Interpreter produces an interpretation for an entry owned by profile.
type Interpreter interface {
	Interpret(ctx context.Context, entry Entry, profile Profile) (Interpretation, error)
}

// Engine tries the remote generator first and falls back to local composition.
type Engine struct {
	remote  RemoteGenerator
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

var _ Interpreter = (*Engine)(nil)

// NewEngine builds an engine. A nil remote disables the remote path.
func NewEngine(cfg Config, remote RemoteGenerator, logger *slog.Logger) *Engine {
	return &Engine{
		remote:  remote,
		timeout: cfg.RemoteTimeout,
		logger:  logger.With("component", "dream.engine"),
		now:     util.NowUTC,
	}
}

// Interpret always yields an interpretation unless ctx itself is done, in
// which case the caller has gone away and the result would be discarded.
func (e *Engine) Interpret(ctx context.Context, entry Entry, profile Profile) (Interpretation, error) {
	if err := ctx.Err(); err != nil {
		return Interpretation{}, err
	}

	result := e.attemptRemote(ctx, entry, profile)
	if err := ctx.Err(); err != nil {
		return Interpretation{}, err
	}

	var interp Interpretation
	if result.OK() {
		interp = result.Interpretation
		interp.Source = SourceRemote
		metrics.ObserveTokenUsage(result.Usage)
	} else {
		if result.Failure != FailureDisabled {
			e.logger.Warn("remote interpretation failed, using local composition",
				"entry_id", entry.ID, "reason", string(result.Failure), "error", result.Err)
			metrics.ObserveRemoteFailure(string(result.Failure))
		}
		interp = Compose(Extract(entry.Content), profile, entry)
	}
	interp.CreatedAt = e.now()
	metrics.ObserveInterpretation(string(interp.Source))
	return interp, nil
}

func (e *Engine) attemptRemote(ctx context.Context, entry Entry, profile Profile) RemoteResult {
	if e.remote == nil {
		return RemoteFailure(FailureDisabled, nil)
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	result := e.remote.Generate(callCtx, RemoteRequest{
		Title:    entry.Title,
		Content:  entry.Content,
		Mood:     entry.Mood,
		Lucidity: entry.Lucidity,
		Age:      profile.Age,
		Sex:      profile.Sex,
		Sign:     profile.Sign,
	})
	if !result.OK() {
		if result.Failure == FailureTransport && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			result.Failure = FailureTimeout
		}
		return result
	}
	if strings.TrimSpace(result.Interpretation.Overview) == "" {
		return RemoteFailure(FailureMalformedResponse, errors.New("remote interpretation has no overview"))
	}
	return result
}
