package crons

import (
	"github.com/rs/zerolog/log"

	"gitlab.com/agentlink-marketplace/attribution_api/service"
)

// CronExpireReferralAttempts godoc
func CronExpireReferralAttempts(srv *service.Service) {
	if _, err := srv.ExpireReferralAttempts(); err != nil {
		log.Error().Err(err).Str("cron", "expire_referral_attempts").Msg("Unable to expire stale referral attempts")
	}
}
