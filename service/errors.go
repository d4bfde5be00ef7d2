package service

import "errors"

// Engine error taxonomy. Signal level failures are recovered locally by
// dropping the candidate and never fail a signup; the binder and delegation
// store errors are hard and surfaced to the caller
var (
	// ErrInvalidSignalFormat - malformed code length or charset, signal dropped
	ErrInvalidSignalFormat = errors.New("invalid signal format")
	// ErrSignatureVerificationFailed - tampered or malformed cookie token, treated as absent
	ErrSignatureVerificationFailed = errors.New("signature verification failed")
	// ErrTokenExpired - correctly signed cookie token past the maximum age, treated as absent
	ErrTokenExpired = errors.New("signed token expired")
	// ErrUnresolvableCode - code matches no live profile, treated as absent
	ErrUnresolvableCode = errors.New("unresolvable referral code")
	// ErrSelfReferralRejected - candidate resolves to the profile being created
	ErrSelfReferralRejected = errors.New("self referral rejected")
	// ErrImmutabilityViolation - attempt to rebind an already created profile.
	// Never swallowed: it is either a bug or an attribution hijack attempt
	ErrImmutabilityViolation = errors.New("referrer binding is immutable")
	// ErrSelfDelegationRejected - provider tried to delegate commission to themselves
	ErrSelfDelegationRejected = errors.New("self delegation rejected")
	// ErrCodeGenerationExhausted - no unique referral code found within the retry budget
	ErrCodeGenerationExhausted = errors.New("referral code generation exhausted")
	// ErrCommissionRecipientAmbiguous - structurally impossible; fatal invariant violation if observed
	ErrCommissionRecipientAmbiguous = errors.New("commission recipient ambiguous")
	// ErrInvalidAmount - transaction gross amount failed to parse as currency
	ErrInvalidAmount = errors.New("invalid gross amount")
)
