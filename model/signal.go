package model

// SignalSource identifies where a raw referral signal was extracted from
type SignalSource string

const (
	SignalSourceURL    SignalSource = "url"
	SignalSourceCookie SignalSource = "cookie"
	SignalSourceManual SignalSource = "manual"
)

func (s SignalSource) String() string {
	return string(s)
}

// SignalPriority is the canonical resolution ordering. The first source in
// this list that resolves to a live profile wins; lower priority signals are
// never consulted afterwards. Product decision: a later revision moved manual
// entry behind the cookie fallback, rewarding earlier touch signals
var SignalPriority = []SignalSource{
	SignalSourceURL,
	SignalSourceCookie,
	SignalSourceManual,
}

// ReferralSignal is a request scoped attribution candidate. It is never
// persisted; only the resolution outcome is
type ReferralSignal struct {
	Source  SignalSource
	RawCode string
}

// SignupRequest is the raw attribution payload supplied by the host
// application at account creation time. Header, query and form values are
// passed explicitly rather than read from an ambient request context
type SignupRequest struct {
	SignupRef        string   `json:"signup_ref" form:"signup_ref" binding:"required"`
	Email            string   `json:"email" form:"email"`
	DisplayName      string   `json:"display_name" form:"display_name"`
	Roles            []string `json:"roles" form:"roles"`
	URLCode          string   `json:"url_code" form:"url_code"`
	CookieToken      string   `json:"cookie_token" form:"cookie_token"`
	ManualCode       string   `json:"manual_code" form:"manual_code"`
	SourceIdentifier string   `json:"source_identifier" form:"source_identifier"`
}

// AttributionResult is the outcome of resolving and binding a signup
type AttributionResult struct {
	ProfileID  uint64  `json:"profile_id"`
	ReferrerID *uint64 `json:"referrer_id"`
	Method     *string `json:"method"`
}
