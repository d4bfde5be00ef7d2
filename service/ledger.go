package service

import (
	"time"

	"github.com/rs/zerolog/log"

	"gitlab.com/agentlink-marketplace/attribution_api/conv"
	"gitlab.com/agentlink-marketplace/attribution_api/model"
	"gitlab.com/agentlink-marketplace/attribution_api/monitor"
)

// ReleaseHeldCommissions moves every pending ledger row whose hold period has
// elapsed into available. Safe to run concurrently, the move is a conditional
// update and a row is only counted by the instance that won it
func (service *Service) ReleaseHeldCommissions() (int64, error) {
	released, err := service.repo.ReleaseHeldCommissions(time.Now())
	if err != nil {
		return 0, err
	}
	if released > 0 {
		monitor.LedgerTransitions.WithLabelValues("pending", "available").Add(float64(released))
		log.Info().Str("section", "ledger").Str("action", "release").
			Int64("count", released).Msg("Released held commissions")
	}
	return released, nil
}

// SchedulePayouts claims a batch of available rows and emits one payout
// instruction per row. A row whose instruction cannot be emitted is bounced
// straight back through the retry path instead of staying stuck in scheduled
func (service *Service) SchedulePayouts() (int, error) {
	events, err := service.repo.SchedulePayouts(time.Now(), service.cfg.Commission.PayoutBatchSize)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for i := range events {
		event := events[i]
		monitor.LedgerTransitions.WithLabelValues("available", "scheduled").Inc()
		amount := conv.NewMoney()
		if event.Amount != nil && event.Amount.V != nil {
			amount = conv.CloneToMoney(event.Amount.V)
		}
		err := service.payouts.Dispatch(service.ctx, model.PayoutInstruction{
			RecipientProfileID: *event.RecipientProfileID,
			Amount:             amount.String(),
			IdempotencyKey:     event.ID,
		})
		if err != nil {
			log.Error().Err(err).Str("section", "ledger").Str("action", "schedule").
				Uint64("commission_event_id", event.ID).Msg("Unable to emit payout instruction")
			if _, confirmErr := service.ConfirmPayout(event.ID, false); confirmErr != nil {
				log.Error().Err(confirmErr).Str("section", "ledger").
					Uint64("commission_event_id", event.ID).Msg("Unable to bounce undispatched payout")
			}
			continue
		}
		monitor.PayoutInstructions.WithLabelValues().Inc()
		dispatched++
	}
	if len(events) > 0 {
		log.Info().Str("section", "ledger").Str("action", "schedule").
			Int("claimed", len(events)).Int("dispatched", dispatched).Msg("Payout sweep completed")
	}
	return dispatched, nil
}

// ConfirmPayout applies the payments collaborator's result to a scheduled
// row. Success is terminal. Failure returns the row to available until the
// attempt budget is exhausted, then parks it in failed for manual review
func (service *Service) ConfirmPayout(eventID uint64, success bool) (*model.CommissionEvent, error) {
	event, changed, err := service.repo.ConfirmPayout(eventID, success, service.cfg.Commission.PayoutMaxAttempts, time.Now())
	if err != nil {
		return nil, err
	}
	if !changed {
		// replayed callback on an already finalized row
		return event, nil
	}
	monitor.LedgerTransitions.WithLabelValues("scheduled", event.Status.String()).Inc()
	if event.Status == model.CommissionEventStatusFailed {
		log.Error().Str("section", "ledger").Str("action", "confirm").
			Uint64("commission_event_id", event.ID).Int("attempts", event.Attempts).
			Msg("Payout attempts exhausted, needs manual review")
	}
	return event, nil
}

// ExpireReferralAttempts deactivates referred attempts older than the
// configured window that never reached a signup
func (service *Service) ExpireReferralAttempts() (int64, error) {
	cutoff := time.Now().Add(-time.Duration(service.cfg.Attribution.AttemptTTLDays) * 24 * time.Hour)
	expired, err := service.repo.ExpireReferralAttempts(cutoff)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		log.Info().Str("section", "ledger").Str("action", "expire").
			Int64("count", expired).Msg("Expired stale referral attempts")
	}
	return expired, nil
}
