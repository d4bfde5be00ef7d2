package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"gitlab.com/agentlink-marketplace/attribution_api/actions"
	"gitlab.com/agentlink-marketplace/attribution_api/config"
	"gitlab.com/agentlink-marketplace/attribution_api/crons"
	"gitlab.com/agentlink-marketplace/attribution_api/monitor"
	"gitlab.com/agentlink-marketplace/attribution_api/queries"
	"gitlab.com/agentlink-marketplace/attribution_api/service"
	"gitlab.com/agentlink-marketplace/attribution_api/service/payments"
)

// Server interface
type Server interface {
	Listen()
}

type server struct {
	config  config.Config
	actions *actions.Actions
	service *service.Service
	payouts *payments.Dispatcher
	ctx     context.Context
	close   context.CancelFunc
	HTTP    *http.Server
}

// NewServer constructor
func NewServer(cfg config.Config) Server {
	ctx, close := context.WithCancel(context.Background())

	repo := queries.InitRepo(cfg.DatabaseCluster)
	payouts := payments.NewDispatcher(cfg.Kafka)
	engine := service.NewService(ctx, cfg, repo, payouts)
	engineActions := actions.NewActions(cfg, engine, ctx)

	return &server{
		config:  cfg,
		service: engine,
		actions: engineActions,
		payouts: payouts,
		ctx:     ctx,
		close:   close,
	}
}

// Listen starts the HTTP API, the metrics endpoint and the ledger sweeps,
// then blocks until a termination signal arrives
func (srv *server) Listen() {
	go srv.ListenToRequests()
	go monitor.LoopProfilingServer(srv.config.Server.Monitoring)

	crons.Start(srv.config.Crons, srv.service)

	srv.stopOnSignal()
}

func (srv *server) stopOnSignal() {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc

	log.Info().Str("section", "server").Str("app_event", "terminate").Str("signal", sig.String()).Msg("Shutting down services")
	srv.closeApp(5 * time.Second)
}

func (srv *server) closeApp(timeout time.Duration) {
	// force the shutdown if the graceful path does not finish in time
	timeoutFunc := time.AfterFunc(timeout, func() {
		log.Printf("timeout %d ms has been elapsed, force exit", timeout.Milliseconds())
		os.Exit(0)
	})
	defer timeoutFunc.Stop()

	monitor.ShutdownServer()
	if err := srv.HTTP.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Str("section", "server").Str("action", "terminate").Msg("Unable to shutdown HTTP server")
	}

	crons.Close()

	if err := srv.payouts.Close(); err != nil {
		log.Error().Err(err).Str("section", "server").Str("action", "terminate").Msg("Unable to close payout dispatcher")
	}

	srv.close()
	queries.Close()

	log.Info().Str("section", "server").Str("app_event", "terminate").Str("state", "complete").Msg("All workers terminated")
}
