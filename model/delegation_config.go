package model

import "time"

// DelegationConfig is a per listing override that redirects the provider's
// own referral commission to a third party partner. The override only
// activates when the provider is the consumer's direct referrer; see the
// commission router. Self delegation is rejected at write time and by a
// check constraint on the table
type DelegationConfig struct {
	ListingID                uint64    `gorm:"column:listing_id;primaryKey" json:"listing_id"`
	ServiceProviderProfileID uint64    `gorm:"column:service_provider_profile_id" json:"service_provider_profile_id"`
	DelegateToProfileID      *uint64   `gorm:"column:delegate_to_profile_id" json:"delegate_to_profile_id"`
	CreatedAt                time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt                time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName godoc
func (DelegationConfig) TableName() string {
	return "delegation_configs"
}

// SetDelegationRequest godoc
type SetDelegationRequest struct {
	ListingID                uint64  `json:"listing_id" form:"listing_id"`
	ServiceProviderProfileID uint64  `json:"service_provider_profile_id" form:"service_provider_profile_id" binding:"required"`
	DelegateToProfileID      *uint64 `json:"delegate_to_profile_id" form:"delegate_to_profile_id"`
}
