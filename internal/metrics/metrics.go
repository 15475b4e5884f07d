package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "seventvbot_provider_requests_total",
	Help: "Number of provider queries by outcome",
}, []string{"outcome"})

var ProviderLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "seventvbot_provider_request_duration_seconds",
	Help:    "Provider query round trip time",
	Buckets: prometheus.DefBuckets,
})

var TriageActions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "seventvbot_triage_actions_total",
	Help: "Number of inbound messages by triage branch",
}, []string{"action"})

var BestEffortFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "seventvbot_best_effort_failures_total",
	Help: "Number of failed side effects in triage bundles",
}, []string{"step"})

var CommandInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "seventvbot_command_invocations_total",
	Help: "Number of administrative commands by result",
}, []string{"result"})

var RegistrySize = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "seventvbot_registry_emotes",
	Help: "Number of triggers in the emote registry",
})

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("metrics.Serve", slog.String("addr", addr), slog.Any("err", err))
	}
}
