package monitor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Config for the monitoring endpoint
type Config struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

var (
	// RejectedSignals counts attribution signals dropped before resolution,
	// labelled by source and reason. Feeds fraud analytics
	RejectedSignals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attribution_rejected_signals_total",
		Help: "Referral signals rejected during extraction or verification",
	}, []string{"source", "reason"})

	// ResolvedAttributions counts bound signups by winning method, with
	// "organic" for signups that resolved no referrer
	ResolvedAttributions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attribution_resolved_total",
		Help: "Signups bound, by winning resolution method",
	}, []string{"method"})

	// FraudFlags counts advisory fraud guard hits
	FraudFlags = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attribution_fraud_flags_total",
		Help: "Fraud guard checks that flagged a request",
	}, []string{"check"})

	// LedgerTransitions counts commission event status moves
	LedgerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commission_ledger_transitions_total",
		Help: "Commission event status transitions",
	}, []string{"from", "to"})

	// PayoutInstructions counts instructions emitted to the payments collaborator
	PayoutInstructions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commission_payout_instructions_total",
		Help: "Payout instructions emitted to the payments queue",
	}, []string{})
)

var metricsServer *http.Server

// LoopProfilingServer starts the metrics listener and restarts it if it ever
// stops. Runs until ShutdownServer is called
func LoopProfilingServer(cfg Config) {
	if !cfg.Enabled {
		return
	}
	for {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler: mux,
		}
		err := metricsServer.ListenAndServe()
		if err == http.ErrServerClosed {
			return
		}
		log.Error().Err(err).Str("section", "monitor").Msg("Metrics server stopped, restarting")
		time.Sleep(5 * time.Second)
	}
}

// ShutdownServer godoc
func ShutdownServer() {
	if metricsServer == nil {
		return
	}
	if err := metricsServer.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Str("section", "monitor").Msg("Unable to shutdown metrics server")
	}
}
