package service

import (
	"time"

	"gitlab.com/agentlink-marketplace/attribution_api/monitor"
)

// The fraud guard is a set of synchronous, side effect free predicates.
// Callers decide what a true result means: the resolver drops the candidate,
// the click tracker flags the attempt for review but never blocks it

// RejectsSelfReferral reports whether the resolved referrer is the profile
// being attributed
func (service *Service) RejectsSelfReferral(newProfileID, resolvedReferrerID uint64) bool {
	if newProfileID == 0 {
		return false
	}
	if newProfileID == resolvedReferrerID {
		monitor.FraudFlags.WithLabelValues("self_referral").Inc()
		return true
	}
	return false
}

// RejectsSelfDelegation reports whether a provider is delegating commission
// to themselves
func (service *Service) RejectsSelfDelegation(serviceProviderID, delegateID uint64) bool {
	if serviceProviderID == delegateID {
		monitor.FraudFlags.WithLabelValues("self_delegation").Inc()
		return true
	}
	return false
}

// ExceedsVelocity reports whether more than maxCount referral attempts from
// the same originating identifier landed inside the window. Advisory only:
// shared networks make false positives common, so callers flag for review
// instead of blocking
func (service *Service) ExceedsVelocity(sourceIdentifier string, windowSeconds, maxCount int64) (bool, error) {
	if sourceIdentifier == "" {
		return false, nil
	}
	since := time.Now().Add(-time.Duration(windowSeconds) * time.Second)
	count, err := service.repo.CountAttemptsFromSource(sourceIdentifier, since)
	if err != nil {
		return false, err
	}
	if count > maxCount {
		monitor.FraudFlags.WithLabelValues("velocity").Inc()
		return true, nil
	}
	return false, nil
}
