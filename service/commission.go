package service

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ericlagergren/decimal"
	"github.com/ericlagergren/decimal/sql/postgres"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"gitlab.com/agentlink-marketplace/attribution_api/conv"
	"gitlab.com/agentlink-marketplace/attribution_api/model"
	"gitlab.com/agentlink-marketplace/attribution_api/monitor"
)

// commissionPlan is the routing outcome before it is written to the ledger
type commissionPlan struct {
	PlatformFee       *decimal.Big
	ProviderPayout    *decimal.Big
	CommissionAmount  *decimal.Big
	RecipientID       *uint64
	DelegationApplied bool
}

// computeCommissionPlan implements the payout decision tree. The platform
// fee is always retained first. With no delegation configured the provider's
// own immutable referrer earns the commission. With a delegation configured
// the override only applies when the provider themselves is the consumer's
// direct referrer; otherwise the consumer's actual referrer is protected.
// The condition compares the consumer's referrer against the provider's own
// identity, never against the provider's referrer. Exactly one of
// {no commission, delegated partner, original referrer} is chosen
func computeCommissionPlan(
	gross, platformRate, agentRate *decimal.Big,
	providerProfileID uint64,
	providerReferrer, consumerReferrer, delegate *uint64,
) commissionPlan {
	plan := commissionPlan{}

	plan.PlatformFee = conv.RoundToMoney(new(decimal.Big).Mul(gross, platformRate))
	providerShare := new(decimal.Big).Sub(gross, plan.PlatformFee)

	if delegate == nil {
		plan.RecipientID = providerReferrer
	} else if consumerReferrer != nil && *consumerReferrer == providerProfileID {
		plan.RecipientID = delegate
		plan.DelegationApplied = true
	} else {
		plan.RecipientID = consumerReferrer
	}

	plan.CommissionAmount = conv.NewMoney()
	if plan.RecipientID != nil {
		plan.CommissionAmount = conv.RoundToMoney(new(decimal.Big).Mul(providerShare, agentRate))
	}
	plan.ProviderPayout = conv.RoundToMoney(new(decimal.Big).Sub(providerShare, plan.CommissionAmount))
	return plan
}

// RouteCommission is invoked once per completed revenue event. It computes
// the commission decision under a serializable transaction so a concurrent
// delegation change cannot be observed mid decision, writes the ledger rows
// as a side effect and marks the consumer's referral attempt converted on
// their first completed transaction. Idempotent on the transaction id
func (service *Service) RouteCommission(request *model.TransactionRequest) (*model.CommissionDecision, error) {
	gross, ok := conv.MoneyFromString(request.GrossAmount)
	if !ok {
		return nil, ErrInvalidAmount
	}

	var decision *model.CommissionDecision
	err := service.repo.ConnWriter.Transaction(func(tx *gorm.DB) error {
		existing, err := service.repo.GetEventsByTransaction(tx, request.TransactionID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			decision, err = decisionFromEvents(existing)
			return err
		}

		providerReferrer, err := service.repo.GetReferrerOf(tx, request.ProviderProfileID)
		if err != nil {
			return err
		}
		consumerReferrer, err := service.repo.GetReferrerOf(tx, request.ConsumerProfileID)
		if err != nil {
			return err
		}

		var delegate *uint64
		delegation, err := service.repo.GetDelegationByListing(tx, request.ListingID)
		if err == nil {
			delegate = delegation.DelegateToProfileID
			if delegate != nil && service.RejectsSelfDelegation(delegation.ServiceProviderProfileID, *delegate) {
				// the store rejects this at write time; a row that slipped
				// through is ignored rather than paid
				delegate = nil
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		plan := computeCommissionPlan(gross,
			service.cfg.Commission.GetPlatformRate(), service.cfg.Commission.GetAgentRate(),
			request.ProviderProfileID, providerReferrer, consumerReferrer, delegate)

		// a recipient that no longer resolves to a live profile safely
		// defaults to no commission owed rather than failing the settlement
		if plan.RecipientID != nil {
			recipient, err := service.repo.GetProfileByID(tx, *plan.RecipientID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err != nil || recipient.IsAnonymized() {
				log.Warn().Str("section", "commission").Uint64("transaction_id", request.TransactionID).
					Uint64("recipient_id", *plan.RecipientID).Msg("Commission recipient not live, no commission owed")
				plan = computeCommissionPlan(gross,
					service.cfg.Commission.GetPlatformRate(), service.cfg.Commission.GetAgentRate(),
					request.ProviderProfileID, nil, nil, nil)
			}
		}

		now := time.Now()
		availableAt := now.Add(time.Duration(service.cfg.Commission.HoldPeriodDays) * 24 * time.Hour)
		events := buildLedgerRows(request, plan, availableAt)
		if err := assertSingleCommissionRow(events); err != nil {
			log.Error().Err(err).Str("section", "commission").Uint64("transaction_id", request.TransactionID).
				Msg("Commission routing produced an ambiguous recipient")
			return err
		}
		if err := service.repo.CreateCommissionEvents(tx, events); err != nil {
			return err
		}

		if consumerReferrer != nil {
			if err := service.repo.MarkAttemptConverted(tx, *consumerReferrer, request.ConsumerProfileID, now); err != nil {
				return err
			}
		}

		decision = &model.CommissionDecision{
			PlatformFee:           plan.PlatformFee.String(),
			ProviderPayout:        plan.ProviderPayout.String(),
			CommissionAmount:      plan.CommissionAmount.String(),
			CommissionRecipientID: plan.RecipientID,
			DelegationApplied:     plan.DelegationApplied,
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		// a concurrent duplicate of the same transaction lost the unique
		// race; re-read the winner's rows
		if isUniqueViolation(err, "commission_events") {
			return service.reloadDecision(request.TransactionID)
		}
		return nil, err
	}
	return decision, nil
}

// ReverseTransaction handles a refund or chargeback: every row of the
// transaction still inside the hold window is cancelled. Rows that already
// reached scheduled or paid_out cannot be clawed back here and are logged
// for manual reconciliation
func (service *Service) ReverseTransaction(transactionID uint64) (int64, error) {
	cancelled, unreachable, err := service.repo.CancelEventsForTransaction(transactionID)
	if err != nil {
		return 0, err
	}
	monitor.LedgerTransitions.WithLabelValues("pending", "cancelled").Add(float64(cancelled))
	for _, event := range unreachable {
		log.Warn().Str("section", "ledger").Uint64("transaction_id", transactionID).
			Uint64("commission_event_id", event.ID).Str("status", event.Status.String()).
			Msg("Reversal reached a row past the hold window")
	}
	return cancelled, nil
}

// SetDelegation validates and persists the per listing commission override
func (service *Service) SetDelegation(request *model.SetDelegationRequest) (*model.DelegationConfig, error) {
	if request.DelegateToProfileID != nil &&
		service.RejectsSelfDelegation(request.ServiceProviderProfileID, *request.DelegateToProfileID) {
		return nil, ErrSelfDelegationRejected
	}
	cfg := &model.DelegationConfig{
		ListingID:                request.ListingID,
		ServiceProviderProfileID: request.ServiceProviderProfileID,
		DelegateToProfileID:      request.DelegateToProfileID,
	}
	if err := service.repo.UpsertDelegation(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildLedgerRows(request *model.TransactionRequest, plan commissionPlan, availableAt time.Time) []*model.CommissionEvent {
	provider := request.ProviderProfileID
	events := []*model.CommissionEvent{
		{
			RefID:         xid.New().String(),
			TransactionID: request.TransactionID,
			Type:          model.CommissionEventTypePlatformFee,
			Amount:        &postgres.Decimal{V: plan.PlatformFee},
			Status:        model.CommissionEventStatusPending,
			AvailableAt:   &availableAt,
		},
		{
			RefID:              xid.New().String(),
			TransactionID:      request.TransactionID,
			RecipientProfileID: &provider,
			Type:               model.CommissionEventTypeProviderPayout,
			Amount:             &postgres.Decimal{V: plan.ProviderPayout},
			Status:             model.CommissionEventStatusPending,
			AvailableAt:        &availableAt,
		},
	}
	if plan.RecipientID != nil {
		events = append(events, &model.CommissionEvent{
			RefID:              xid.New().String(),
			TransactionID:      request.TransactionID,
			RecipientProfileID: plan.RecipientID,
			Type:               model.CommissionEventTypeAgentCommission,
			Amount:             &postgres.Decimal{V: plan.CommissionAmount},
			Status:             model.CommissionEventStatusPending,
			DelegationApplied:  plan.DelegationApplied,
			AvailableAt:        &availableAt,
		})
	}
	return events
}

// assertSingleCommissionRow guards the single final recipient rule. The
// algorithm makes a second row structurally impossible; observing one is a
// fatal invariant violation, never silently resolved
func assertSingleCommissionRow(events []*model.CommissionEvent) error {
	count := 0
	for _, event := range events {
		if event.Type == model.CommissionEventTypeAgentCommission {
			count++
		}
	}
	if count > 1 {
		return ErrCommissionRecipientAmbiguous
	}
	return nil
}

// decisionFromEvents reconstructs the original routing decision from the
// ledger rows of an already settled transaction
func decisionFromEvents(events []model.CommissionEvent) (*model.CommissionDecision, error) {
	decision := &model.CommissionDecision{
		PlatformFee:      conv.NewMoney().String(),
		ProviderPayout:   conv.NewMoney().String(),
		CommissionAmount: conv.NewMoney().String(),
	}
	seenCommission := false
	for i := range events {
		event := events[i]
		amount := conv.NewMoney()
		if event.Amount != nil && event.Amount.V != nil {
			amount = conv.CloneToMoney(event.Amount.V)
		}
		switch event.Type {
		case model.CommissionEventTypePlatformFee:
			decision.PlatformFee = amount.String()
		case model.CommissionEventTypeProviderPayout:
			decision.ProviderPayout = amount.String()
		case model.CommissionEventTypeAgentCommission:
			if seenCommission {
				return nil, ErrCommissionRecipientAmbiguous
			}
			seenCommission = true
			decision.CommissionAmount = amount.String()
			decision.CommissionRecipientID = event.RecipientProfileID
			decision.DelegationApplied = event.DelegationApplied
		}
	}
	return decision, nil
}

func (service *Service) reloadDecision(transactionID uint64) (*model.CommissionDecision, error) {
	events, err := service.repo.GetEventsByTransaction(service.repo.ConnWriter, transactionID)
	if err != nil {
		return nil, err
	}
	return decisionFromEvents(events)
}
