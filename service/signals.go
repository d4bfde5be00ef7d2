package service

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"gitlab.com/agentlink-marketplace/attribution_api/model"
	"gitlab.com/agentlink-marketplace/attribution_api/monitor"
)

// ExtractSignals turns the raw signup payload into the ordered candidate
// list: URL parameter first, then cookie, then manual entry. Only presence
// and shape are checked here; integrity checks happen in VerifySignals.
// No side effects
func (service *Service) ExtractSignals(request *model.SignupRequest) []model.ReferralSignal {
	signals := make([]model.ReferralSignal, 0, 3)
	for _, source := range model.SignalPriority {
		var raw string
		switch source {
		case model.SignalSourceURL:
			raw = strings.TrimSpace(request.URLCode)
		case model.SignalSourceCookie:
			raw = strings.TrimSpace(request.CookieToken)
		case model.SignalSourceManual:
			raw = strings.TrimSpace(request.ManualCode)
		}
		if raw == "" {
			continue
		}
		if source != model.SignalSourceCookie && len(raw) > service.cfg.Attribution.CodeLength {
			monitor.RejectedSignals.WithLabelValues(source.String(), "shape").Inc()
			continue
		}
		signals = append(signals, model.ReferralSignal{Source: source, RawCode: raw})
	}
	return signals
}

// VerifySignals applies integrity checks to the extracted candidates,
// keeping the priority order. Cookie tokens are HMAC verified and unwrapped
// into their embedded agent code; URL and manual codes are charset checked.
// Rejections are dropped and recorded for fraud analytics, never raised
func (service *Service) VerifySignals(signals []model.ReferralSignal, now time.Time) []model.ReferralSignal {
	maxAge := time.Duration(service.cfg.Attribution.CookieMaxAgeDays) * 24 * time.Hour
	verified := make([]model.ReferralSignal, 0, len(signals))
	for _, signal := range signals {
		if signal.Source == model.SignalSourceCookie {
			code, err := VerifyReferralToken(signal.RawCode, service.cfg.Attribution.CookieSecret, maxAge, now)
			if err != nil {
				reason := "signature"
				if err == ErrTokenExpired {
					reason = "expired"
				}
				monitor.RejectedSignals.WithLabelValues(signal.Source.String(), reason).Inc()
				log.Debug().Str("section", "attribution").Str("source", signal.Source.String()).
					Str("reason", reason).Msg("Referral signal rejected")
				continue
			}
			signal.RawCode = code
		}
		if err := validateCodeShape(signal.RawCode, service.cfg.Attribution.CodeLength); err != nil {
			monitor.RejectedSignals.WithLabelValues(signal.Source.String(), "format").Inc()
			continue
		}
		verified = append(verified, signal)
	}
	return verified
}

func validateCodeShape(code string, maxLength int) error {
	if code == "" || len(code) > maxLength {
		return ErrInvalidSignalFormat
	}
	for _, r := range code {
		if !strings.ContainsRune(model.ReferralCodeAlphabet, r) {
			return ErrInvalidSignalFormat
		}
	}
	return nil
}
