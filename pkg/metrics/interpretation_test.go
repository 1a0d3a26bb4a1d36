package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveInterpretationIncrementsBySource(t *testing.T) {
	before := testutil.ToFloat64(interpretationsTotal.WithLabelValues("local"))
	ObserveInterpretation("local")
	ObserveInterpretation("local")
	require.Equal(t, before+2, testutil.ToFloat64(interpretationsTotal.WithLabelValues("local")))
}

func TestObserveTokenUsageSkipsZero(t *testing.T) {
	before := testutil.ToFloat64(remoteTokensTotal.WithLabelValues("prompt"))
	ObserveTokenUsage(TokenUsage{})
	require.Equal(t, before, testutil.ToFloat64(remoteTokensTotal.WithLabelValues("prompt")))

	ObserveTokenUsage(TokenUsage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15})
	require.Equal(t, before+12, testutil.ToFloat64(remoteTokensTotal.WithLabelValues("prompt")))
}
