package crons

import (
	"github.com/rs/zerolog/log"

	"gitlab.com/agentlink-marketplace/attribution_api/service"
)

// CronReleaseHeldCommissions godoc
func CronReleaseHeldCommissions(srv *service.Service) {
	if _, err := srv.ReleaseHeldCommissions(); err != nil {
		log.Error().Err(err).Str("cron", "release_held_commissions").Msg("Unable to release held commissions")
	}
}
