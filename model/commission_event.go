package model

import (
	"time"

	"github.com/ericlagergren/decimal/sql/postgres"
)

// CommissionEventType defined the kinds of money movement recorded per transaction
type CommissionEventType string

const (
	CommissionEventTypePlatformFee     CommissionEventType = "platform_fee"
	CommissionEventTypeProviderPayout  CommissionEventType = "provider_payout"
	CommissionEventTypeAgentCommission CommissionEventType = "agent_commission"
)

func (t CommissionEventType) String() string {
	return string(t)
}

// CommissionEventStatus defined the ledger lifecycle of one money movement
type CommissionEventStatus string

const (
	// CommissionEventStatusPending while the hold period absorbs refund/chargeback risk
	CommissionEventStatusPending CommissionEventStatus = "pending"
	// CommissionEventStatusAvailable once the hold period elapsed
	CommissionEventStatusAvailable CommissionEventStatus = "available"
	// CommissionEventStatusScheduled once a payout sweep picked the row up
	CommissionEventStatusScheduled CommissionEventStatus = "scheduled"
	// CommissionEventStatusPaidOut after the payments collaborator confirmed execution
	CommissionEventStatusPaidOut CommissionEventStatus = "paid_out"
	// CommissionEventStatusFailed after payout attempts were exhausted, terminal
	CommissionEventStatusFailed CommissionEventStatus = "failed"
	// CommissionEventStatusCancelled when the underlying transaction was reversed, terminal
	CommissionEventStatusCancelled CommissionEventStatus = "cancelled"
)

func (s CommissionEventStatus) String() string {
	return string(s)
}

// commissionTransitions lists the forward moves of the ledger state machine.
// scheduled -> available is the payout retry path
var commissionTransitions = map[CommissionEventStatus][]CommissionEventStatus{
	CommissionEventStatusPending:   {CommissionEventStatusAvailable, CommissionEventStatusCancelled},
	CommissionEventStatusAvailable: {CommissionEventStatusScheduled, CommissionEventStatusCancelled},
	CommissionEventStatusScheduled: {CommissionEventStatusPaidOut, CommissionEventStatusAvailable, CommissionEventStatusFailed},
}

// CanTransition reports whether the ledger allows moving a row between the
// two statuses. Terminal statuses allow nothing
func (s CommissionEventStatus) CanTransition(to CommissionEventStatus) bool {
	for _, allowed := range commissionTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal godoc
func (s CommissionEventStatus) IsTerminal() bool {
	return s == CommissionEventStatusPaidOut || s == CommissionEventStatusFailed || s == CommissionEventStatusCancelled
}

// CommissionEvent is one append only ledger row tied to a revenue
// transaction. For a given transaction at most one row of type
// agent_commission may exist, enforced by a partial unique index
type CommissionEvent struct {
	ID                 uint64                `gorm:"column:id;primaryKey" json:"id"`
	RefID              string                `gorm:"column:ref_id" json:"ref_id"`
	TransactionID      uint64                `gorm:"column:transaction_id" json:"transaction_id"`
	RecipientProfileID *uint64               `gorm:"column:recipient_profile_id" json:"recipient_profile_id"`
	Type               CommissionEventType   `gorm:"column:type" json:"type"`
	Amount             *postgres.Decimal     `gorm:"column:amount" sql:"type:decimal(36,2)" json:"amount"`
	Status             CommissionEventStatus `gorm:"column:status" json:"status"`
	DelegationApplied  bool                  `gorm:"column:delegation_applied" json:"delegation_applied"`
	Attempts           int                   `gorm:"column:attempts" json:"attempts"`
	CreatedAt          time.Time             `gorm:"column:created_at" json:"created_at"`
	AvailableAt        *time.Time            `gorm:"column:available_at" json:"available_at"`
	ScheduledAt        *time.Time            `gorm:"column:scheduled_at" json:"scheduled_at"`
	PaidOutAt          *time.Time            `gorm:"column:paid_out_at" json:"paid_out_at"`
}

// TableName godoc
func (CommissionEvent) TableName() string {
	return "commission_events"
}

// TransactionRequest is a completed revenue event as reported by the host
type TransactionRequest struct {
	TransactionID     uint64 `json:"transaction_id" form:"transaction_id" binding:"required"`
	ProviderProfileID uint64 `json:"provider_profile_id" form:"provider_profile_id" binding:"required"`
	ConsumerProfileID uint64 `json:"consumer_profile_id" form:"consumer_profile_id" binding:"required"`
	ListingID         uint64 `json:"listing_id" form:"listing_id" binding:"required"`
	GrossAmount       string `json:"gross_amount" form:"gross_amount" binding:"required"`
}

// CommissionDecision is the routing outcome returned to the host
type CommissionDecision struct {
	PlatformFee           string  `json:"platform_fee"`
	ProviderPayout        string  `json:"provider_payout"`
	CommissionAmount      string  `json:"commission_amount"`
	CommissionRecipientID *uint64 `json:"commission_recipient_id"`
	DelegationApplied     bool    `json:"delegation_applied"`
}

// PayoutInstruction is what gets emitted to the payments collaborator when a
// row moves to scheduled. The commission event id doubles as idempotency key
type PayoutInstruction struct {
	RecipientProfileID uint64 `json:"recipient_profile_id"`
	Amount             string `json:"amount"`
	IdempotencyKey     uint64 `json:"idempotency_key"`
}
