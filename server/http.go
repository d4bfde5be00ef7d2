package server

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"gitlab.com/agentlink-marketplace/attribution_api/actions"
	"gitlab.com/agentlink-marketplace/attribution_api/logger"
)

func (srv *server) ListenToRequests() {
	log.Info().Str("worker", "http_listen_to_requests").Str("action", "start").Msg("HTTP Listen to requests - started")
	defer log.Info().Str("worker", "http_listen_to_requests").Str("action", "stop").Msg("HTTP Listen to requests - stopped")

	a := srv.actions

	r := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "X-Requested-With", "Content-Length", "Content-Type", "Accept", "X-Api-Key", "Authorization"}
	corsConfig.AllowMethods = []string{"GET", "PUT", "POST", "DELETE", "PATCH", "OPTIONS"}

	r.Use(cors.New(corsConfig)) // Allow requests from anywhere
	r.Use(gin.Recovery())       // Recovery middleware recovers from any panics and writes a 500 if there was one.

	r.Use(logger.SetLogger())

	r.GET("/ping", actions.Ping)

	// referral link tracking and attribution
	{
		r.GET("/r/:code", a.TrackReferralClick)
		r.POST("/signups", a.Signup)
		r.PUT("/profiles/:profile_id/referrer", a.RebindReferrer)
		r.DELETE("/profiles/:profile_id", a.AnonymizeProfile)
	}

	// commission routing and the payout ledger
	{
		r.POST("/transactions", a.RouteTransaction)
		r.POST("/transactions/:transaction_id/reverse", a.ReverseTransaction)
		r.POST("/payouts/:event_id/confirm", a.ConfirmPayout)
	}

	// delegation management
	{
		r.PUT("/listings/:listing_id/delegation", a.SetDelegation)
		r.GET("/listings/:listing_id/delegation", a.GetDelegation)
	}

	// agent read surface
	agents := r.Group("/agents")
	{
		agents.GET("/top", a.GetTopAgents)
		agents.GET("/:agent_id/referrals", a.GetReferralAttempts)
		agents.GET("/:agent_id/earnings", a.GetAgentEarnings)
	}

	srv.HTTP = &http.Server{
		Addr:    fmt.Sprintf(":%d", srv.config.Server.API.Port),
		Handler: r,
	}

	srv.HTTP.SetKeepAlivesEnabled(srv.config.Server.API.KeepAlive)

	port := srv.config.Server.API.Port
	httpServer := srv.HTTP
	if err := httpServer.ListenAndServe(); err != nil {
		if err != http.ErrServerClosed {
			log.Error().Err(err).Str("section", "server").Str("action", "ListenToRequests").Msgf("Unable to listen %d port", port)
		}
	}
}
