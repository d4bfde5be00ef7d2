package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// referralTokenPayload is the signed cookie payload shared with the cookie
// issuing HTTP layer. Wire format of the full token:
// base64(payload) + "." + hex(hmacSha256(payload, secret))
type referralTokenPayload struct {
	AgentCode string `json:"agent_code"`
	Timestamp int64  `json:"timestamp"`
}

// MintReferralToken issues a signed referral cookie token for the given
// code. Exposed so the click endpoint can set the cookie with the exact
// payload shape the verifier expects; external layers holding the same
// secret may mint identical tokens
func MintReferralToken(agentCode, secret string, now time.Time) (string, error) {
	payload, err := json.Marshal(referralTokenPayload{
		AgentCode: agentCode,
		Timestamp: now.Unix(),
	})
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(payload) + "." + hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifyReferralToken validates a cookie token and returns the embedded
// agent code. Fails closed: a malformed token, a bad signature, a missing
// secret or an expired timestamp all reject the token. Comparison of the
// signatures is constant time
func VerifyReferralToken(token, secret string, maxAge time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", ErrSignatureVerificationFailed
	}
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return "", ErrSignatureVerificationFailed
	}
	payload, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrSignatureVerificationFailed
	}
	claimed, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", ErrSignatureVerificationFailed
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), claimed) {
		return "", ErrSignatureVerificationFailed
	}

	decoded := referralTokenPayload{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", ErrSignatureVerificationFailed
	}
	issuedAt := time.Unix(decoded.Timestamp, 0)
	if now.Sub(issuedAt) > maxAge {
		// an expired but correctly signed token is absent, not an attack
		return "", ErrTokenExpired
	}
	return decoded.AgentCode, nil
}
