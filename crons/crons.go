package crons

import (
	"github.com/robfig/cron"

	"gitlab.com/agentlink-marketplace/attribution_api/config"
	"gitlab.com/agentlink-marketplace/attribution_api/service"
)

var cronService *cron.Cron

// Start Initiate the crons based on the given configuration file
func Start(crons config.Crons, srv *service.Service) {
	cronService = cron.New()
	for id, schedule := range crons {
		callback := GetCronByID(id, srv)
		_ = cronService.AddFunc(schedule, callback)
	}
	cronService.Start()
}

// GetCronByID get a function to execute based on the id
func GetCronByID(id string, srv *service.Service) func() {
	switch id {
	case "release_held_commissions":
		return func() {
			CronReleaseHeldCommissions(srv)
		}
	case "schedule_payouts":
		return func() {
			CronSchedulePayouts(srv)
		}
	case "expire_referral_attempts":
		return func() {
			CronExpireReferralAttempts(srv)
		}
	}
	return (func() {})
}

// Close godoc
func Close() {
	cronService.Stop()
}
