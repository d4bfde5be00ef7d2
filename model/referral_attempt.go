package model

import "time"

// ReferralAttemptStatus defined the lifecycle of one click/scan event
type ReferralAttemptStatus string

const (
	// ReferralAttemptStatusReferred when the link was visited but no account exists yet
	ReferralAttemptStatusReferred ReferralAttemptStatus = "referred"
	// ReferralAttemptStatusSignedUp when the visitor completed account creation
	ReferralAttemptStatusSignedUp ReferralAttemptStatus = "signed_up"
	// ReferralAttemptStatusConverted when the referred profile completed its first revenue event
	ReferralAttemptStatusConverted ReferralAttemptStatus = "converted"
	// ReferralAttemptStatusInactive when the owning profile was deleted or the click expired unconverted
	ReferralAttemptStatusInactive ReferralAttemptStatus = "inactive"
)

func (s ReferralAttemptStatus) String() string {
	return string(s)
}

// ReferralAttempt represents one click/scan of an agent's referral link,
// independent of whether it ever converts. At most one non inactive attempt
// may exist per (agent, referred) pair, enforced by a partial unique index
type ReferralAttempt struct {
	ID                uint64                `gorm:"column:id;primaryKey" json:"id"`
	AgentProfileID    uint64                `gorm:"column:agent_profile_id" json:"agent_profile_id"`
	ReferredProfileID *uint64               `gorm:"column:referred_profile_id" json:"referred_profile_id"`
	Status            ReferralAttemptStatus `gorm:"column:status" json:"status"`
	Source            SignalSource          `gorm:"column:source" json:"source"`
	SourceIdentifier  string                `gorm:"column:source_identifier" json:"-"`
	CreatedAt         time.Time             `gorm:"column:created_at" json:"created_at"`
	ConvertedAt       *time.Time            `gorm:"column:converted_at" json:"converted_at"`
}

// TableName godoc
func (ReferralAttempt) TableName() string {
	return "referral_attempts"
}

// ReferralAttemptsResponse godoc
type ReferralAttemptsResponse struct {
	Data []ReferralAttempt `json:"data"`
	Meta PagingMeta        `json:"meta"`
}

// TopAgent is one row of the converted-referrals leaderboard
type TopAgent struct {
	AgentProfileID uint64 `gorm:"column:agent_profile_id" json:"agent_profile_id"`
	ReferralCode   string `gorm:"column:referral_code" json:"referral_code"`
	Converted      int64  `gorm:"column:converted" json:"converted"`
}
