package dream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/dreamvision/pkg/metrics"
)

type stubRemote struct {
	result  RemoteResult
	block   bool
	calls   int
	lastReq RemoteRequest
}

func (s *stubRemote) Generate(ctx context.Context, req RemoteRequest) RemoteResult {
	s.calls++
	s.lastReq = req
	if s.block {
		<-ctx.Done()
		return RemoteFailure(FailureTransport, ctx.Err())
	}
	return s.result
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEntry() Entry {
	return Entry{
		Title:    "Sky",
		Content:  "I was flying above the house and felt happy",
		Mood:     4,
		Lucidity: 2,
	}
}

func TestEngineUsesRemoteResultAsIs(t *testing.T) {
	remote := &stubRemote{result: RemoteSuccess(Interpretation{
		Overview: "remote overview",
		Themes:   []string{"Sky"},
	}, metrics.TokenUsage{PromptTokens: 10, TotalTokens: 10})}
	engine := NewEngine(Config{RemoteTimeout: time.Second}, remote, newTestLogger())

	profile := Profile{Age: 33, Sex: SexMale, Sign: "Aries"}
	interp, err := engine.Interpret(context.Background(), testEntry(), profile)
	require.NoError(t, err)
	require.Equal(t, "remote overview", interp.Overview)
	require.Equal(t, []string{"Sky"}, interp.Themes)
	require.Equal(t, SourceRemote, interp.Source)
	require.False(t, interp.CreatedAt.IsZero())
	require.Equal(t, RemoteRequest{
		Title: "Sky", Content: testEntry().Content, Mood: 4, Lucidity: 2, Age: 33, Sex: SexMale, Sign: "Aries",
	}, remote.lastReq)
}

func TestEngineFallsBackOnEveryFailure(t *testing.T) {
	failures := []RemoteResult{
		RemoteFailure(FailureTransport, errors.New("dial tcp: refused")),
		RemoteFailure(FailureUpstreamStatus, errors.New("503")),
		RemoteFailure(FailureMalformedResponse, errors.New("not json")),
		RemoteSuccess(Interpretation{Overview: "   "}, metrics.TokenUsage{}),
	}
	profile := Profile{Age: 25, Sex: SexFemale, Sign: "Leo"}
	want := Compose(Extract(testEntry().Content), profile, testEntry())

	for _, failure := range failures {
		engine := NewEngine(Config{}, &stubRemote{result: failure}, newTestLogger())
		interp, err := engine.Interpret(context.Background(), testEntry(), profile)
		require.NoError(t, err)
		require.Equal(t, SourceLocal, interp.Source)
		require.Equal(t, want.Overview, interp.Overview)
		require.Equal(t, want.Symbols, interp.Symbols)
		require.Equal(t, want.PersonalizedInsights, interp.PersonalizedInsights)
	}
}

func TestEngineWithoutRemoteComposesLocally(t *testing.T) {
	engine := NewEngine(Config{}, nil, newTestLogger())
	interp, err := engine.Interpret(context.Background(), testEntry(), Profile{Sign: "Taurus", Age: 50})
	require.NoError(t, err)
	require.Equal(t, SourceLocal, interp.Source)
	require.Equal(t, []string{SymbolFlying, SymbolHouse}, symbolNames(interp.Symbols))
	require.Equal(t, []string{EmotionJoy}, interp.Emotions)
}

func TestEngineBoundsRemoteCall(t *testing.T) {
	remote := &stubRemote{block: true}
	engine := NewEngine(Config{RemoteTimeout: 20 * time.Millisecond}, remote, newTestLogger())

	started := time.Now()
	interp, err := engine.Interpret(context.Background(), testEntry(), Profile{Sign: "Pisces"})
	require.NoError(t, err)
	require.Equal(t, SourceLocal, interp.Source)
	require.Less(t, time.Since(started), 2*time.Second)

	result := engine.attemptRemote(context.Background(), testEntry(), Profile{})
	require.Equal(t, FailureTimeout, result.Failure)
}

func TestEngineReturnsErrorWhenCallerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	remote := &stubRemote{}
	engine := NewEngine(Config{}, remote, newTestLogger())

	_, err := engine.Interpret(ctx, testEntry(), Profile{})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, remote.calls)
}

func symbolNames(symbols []SymbolInterpretation) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, s.Symbol)
	}
	return out
}
