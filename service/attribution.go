package service

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"gitlab.com/agentlink-marketplace/attribution_api/model"
	"gitlab.com/agentlink-marketplace/attribution_api/monitor"
)

// ResolveAndBindAttribution is invoked once per successful account creation.
// It extracts and verifies the attribution signals, resolves at most one
// referrer by strict source priority, creates the profile with a fresh
// unique referral code and performs the one time referrer binding, all in a
// single store transaction. A signup always succeeds with or without a
// resolved referrer; retried signups with the same signup_ref return the
// already bound state instead of raising an immutability error
func (service *Service) ResolveAndBindAttribution(request *model.SignupRequest) (*model.AttributionResult, error) {
	signals := service.VerifySignals(service.ExtractSignals(request), time.Now())

	var result *model.AttributionResult
	err := service.repo.ConnWriter.Transaction(func(tx *gorm.DB) error {
		// idempotency on the host's signup reference
		if existing, err := service.repo.GetProfileBySignupRef(tx, request.SignupRef); err == nil {
			bound, err := service.boundState(tx, existing)
			if err != nil {
				return err
			}
			result = bound
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		referrer, method := service.resolveReferrer(tx, signals, 0)

		profile, err := service.createProfileWithCode(tx, request)
		if err != nil {
			return err
		}

		if referrer == nil {
			monitor.ResolvedAttributions.WithLabelValues("organic").Inc()
			result = &model.AttributionResult{ProfileID: profile.ID}
			return nil
		}

		// the only mutation path for referred_by_profile_id
		if err := service.repo.BindReferrer(tx, profile.ID, referrer.ID); err != nil {
			return err
		}
		if err := service.recordSignup(tx, referrer.ID, profile.ID, *method, request.SourceIdentifier); err != nil {
			return err
		}

		monitor.ResolvedAttributions.WithLabelValues(method.String()).Inc()
		methodName := method.String()
		referrerID := referrer.ID
		result = &model.AttributionResult{
			ProfileID:  profile.ID,
			ReferrerID: &referrerID,
			Method:     &methodName,
		}
		return nil
	})
	if err != nil {
		// a concurrent duplicate of the same signup lost the unique race on
		// signup_ref; return the winner's bound state
		if isUniqueViolation(err, "signup_ref") {
			return service.reloadBoundState(request.SignupRef)
		}
		return nil, err
	}
	return result, nil
}

// resolveReferrer walks the verified signals in priority order and returns
// the first one whose code resolves to a live profile other than the profile
// being attributed. Lower priority signals are never consulted once a higher
// priority one resolves. No referrer found is the normal organic outcome,
// not an error
func (service *Service) resolveReferrer(tx *gorm.DB, signals []model.ReferralSignal, newProfileID uint64) (*model.Profile, *model.SignalSource) {
	for _, signal := range signals {
		owner, err := service.repo.GetLiveProfileByReferralCode(tx, signal.RawCode)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Error().Err(err).Str("section", "attribution").Str("source", signal.Source.String()).
					Msg("Unable to resolve referral code")
			}
			// unresolvable or anonymized owner: fall through to the next signal
			continue
		}
		if service.RejectsSelfReferral(newProfileID, owner.ID) {
			monitor.RejectedSignals.WithLabelValues(signal.Source.String(), "self_referral").Inc()
			continue
		}
		source := signal.Source
		return owner, &source
	}
	return nil, nil
}

// createProfileWithCode inserts the profile, regenerating the referral code
// on collision. The code space is large but not infinite, so the retry
// budget is bounded and exhaustion is a retryable service failure
func (service *Service) createProfileWithCode(tx *gorm.DB, request *model.SignupRequest) (*model.Profile, error) {
	roles := make(model.RoleList, 0, len(request.Roles))
	for _, role := range request.Roles {
		roles = append(roles, model.Role(role))
	}

	for attempt := 0; attempt < service.cfg.Attribution.CodeMaxRetries; attempt++ {
		profile := model.NewProfile(request.SignupRef, request.Email, request.DisplayName, roles, service.cfg.Attribution.CodeLength)
		err := service.repo.CreateProfile(tx, profile)
		if err == nil {
			return profile, nil
		}
		if isUniqueViolation(err, "referral_code") {
			continue
		}
		return nil, err
	}
	return nil, ErrCodeGenerationExhausted
}

// recordSignup advances the agent's most recent pending click to signed up,
// or creates the attempt directly in signed up state when the click was
// never tracked (e.g. a manually shared code)
func (service *Service) recordSignup(tx *gorm.DB, agentProfileID, referredProfileID uint64, source model.SignalSource, sourceIdentifier string) error {
	pending, err := service.repo.FindPendingAttempt(tx, agentProfileID)
	if err == nil {
		return service.repo.MarkAttemptSignedUp(tx, pending.ID, referredProfileID, source)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	referred := referredProfileID
	return service.repo.CreateReferralAttempt(tx, &model.ReferralAttempt{
		AgentProfileID:    agentProfileID,
		ReferredProfileID: &referred,
		Status:            model.ReferralAttemptStatusSignedUp,
		Source:            source,
		SourceIdentifier:  sourceIdentifier,
	})
}

// boundState reconstructs the attribution result of an already created
// profile
func (service *Service) boundState(tx *gorm.DB, profile *model.Profile) (*model.AttributionResult, error) {
	result := &model.AttributionResult{ProfileID: profile.ID, ReferrerID: profile.ReferredByProfileID}
	if profile.ReferredByProfileID == nil {
		return result, nil
	}
	attempt, err := service.repo.GetAttemptByReferredProfile(tx, profile.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, nil
		}
		return nil, err
	}
	method := attempt.Source.String()
	result.Method = &method
	return result, nil
}

func (service *Service) reloadBoundState(signupRef string) (*model.AttributionResult, error) {
	var result *model.AttributionResult
	err := service.repo.ConnWriter.Transaction(func(tx *gorm.DB) error {
		profile, err := service.repo.GetProfileBySignupRef(tx, signupRef)
		if err != nil {
			return err
		}
		result, err = service.boundState(tx, profile)
		return err
	})
	return result, err
}

// RebindAttribution is the centralized write guard for every post creation
// mutation attempt on referred_by_profile_id. Attribution is decided exactly
// once at signup: a bound profile may never change referrer and an organic
// profile may never gain one retroactively, so this always rejects. The
// rejection is surfaced loudly because it indicates either a bug or an
// active attribution hijack attempt
func (service *Service) RebindAttribution(profileID, referrerID uint64) error {
	profile, err := service.repo.GetProfileByID(service.repo.ConnReader, profileID)
	if err != nil {
		return err
	}
	log.Warn().Str("section", "attribution").Str("action", "rebind").
		Uint64("profile_id", profile.ID).Uint64("referrer_id", referrerID).
		Msg("Rejected attempt to mutate referrer binding")
	return ErrImmutabilityViolation
}

// AnonymizeProfile models deletion: PII is cleared, the referral linkage and
// code are retained for ledger integrity, and the agent's unconverted clicks
// go inactive so the code stops resolving immediately
func (service *Service) AnonymizeProfile(profileID uint64) error {
	return service.repo.ConnWriter.Transaction(func(tx *gorm.DB) error {
		if err := service.repo.AnonymizeProfile(tx, profileID); err != nil {
			return err
		}
		return service.repo.DeactivateAttemptsForAgent(tx, profileID)
	})
}

// TrackReferralClick records one click of a referral link and mints the
// signed cookie token the visitor carries to signup. The velocity check is
// advisory: a flagged click is still recorded, it just gets surfaced for
// review
func (service *Service) TrackReferralClick(code, sourceIdentifier string) (string, bool, error) {
	owner, err := service.repo.GetLiveProfileByReferralCode(service.repo.ConnReader, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, ErrUnresolvableCode
		}
		return "", false, err
	}

	flagged, err := service.ExceedsVelocity(sourceIdentifier,
		service.cfg.Fraud.VelocityWindowSeconds, service.cfg.Fraud.VelocityMaxCount)
	if err != nil {
		return "", false, err
	}
	if flagged {
		log.Warn().Str("section", "fraud").Str("check", "velocity").
			Str("source_identifier", sourceIdentifier).Uint64("agent_id", owner.ID).
			Msg("Referral click velocity exceeded, flagged for review")
	}

	// every click records its own pending attempt; the pair uniqueness rule
	// only bites once an attempt is tied to a signed up profile
	err = service.repo.CreateReferralAttempt(service.repo.ConnWriter, &model.ReferralAttempt{
		AgentProfileID:   owner.ID,
		Status:           model.ReferralAttemptStatusReferred,
		Source:           model.SignalSourceURL,
		SourceIdentifier: sourceIdentifier,
	})
	if err != nil {
		return "", false, err
	}

	token, err := MintReferralToken(owner.ReferralCode, service.cfg.Attribution.CookieSecret, time.Now())
	if err != nil {
		return "", false, err
	}
	return token, flagged, nil
}

func isUniqueViolation(err error, constraintHint string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") && strings.Contains(msg, constraintHint)
}
