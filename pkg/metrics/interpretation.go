package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	interpretationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dreamvision_interpretations_total",
		Help: "Interpretations produced, by source (remote or local)",
	}, []string{"source"})

	remoteFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dreamvision_remote_failures_total",
		Help: "Remote generator attempts that fell back to local composition",
	}, []string{"reason"})

	entitlementDenialsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dreamvision_entitlement_denials_total",
		Help: "Interpretation requests denied by the entitlement gate",
	})

	remoteTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dreamvision_remote_tokens_total",
		Help: "Tokens consumed by the remote generator",
	}, []string{"kind"})
)

// ObserveInterpretation counts a produced interpretation.
func ObserveInterpretation(source string) {
	interpretationsTotal.WithLabelValues(source).Inc()
}

// ObserveRemoteFailure counts a remote attempt that was absorbed by the fallback.
func ObserveRemoteFailure(reason string) {
	remoteFailuresTotal.WithLabelValues(reason).Inc()
}

// ObserveEntitlementDenial counts a gate denial.
func ObserveEntitlementDenial() {
	entitlementDenialsTotal.Inc()
}

// ObserveTokenUsage records remote token consumption.
func ObserveTokenUsage(u TokenUsage) {
	if u.IsZero() {
		return
	}
	remoteTokensTotal.WithLabelValues("prompt").Add(float64(u.PromptTokens))
	remoteTokensTotal.WithLabelValues("completion").Add(float64(u.CompletionTokens))
}
