package crons

import (
	"github.com/rs/zerolog/log"

	"gitlab.com/agentlink-marketplace/attribution_api/service"
)

// CronSchedulePayouts godoc
func CronSchedulePayouts(srv *service.Service) {
	if _, err := srv.SchedulePayouts(); err != nil {
		log.Error().Err(err).Str("cron", "schedule_payouts").Msg("Unable to run the payout sweep")
	}
}
