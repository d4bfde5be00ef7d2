package queries

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitlab.com/agentlink-marketplace/attribution_api/model"
)

// GetDelegationByListing returns the delegation override for a listing, if
// any was configured. Runs inside the caller's transaction so the commission
// router observes a stable config for the whole decision
func (repo *Repo) GetDelegationByListing(tx *gorm.DB, listingID uint64) (*model.DelegationConfig, error) {
	cfg := model.DelegationConfig{}
	db := tx.First(&cfg, "listing_id = ?", listingID)
	if db.Error != nil {
		return nil, db.Error
	}
	return &cfg, nil
}

// UpsertDelegation writes the per listing override. Self delegation is
// rejected before this call and again by the table's check constraint
func (repo *Repo) UpsertDelegation(cfg *model.DelegationConfig) error {
	return repo.ConnWriter.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "listing_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"service_provider_profile_id",
			"delegate_to_profile_id",
			"updated_at",
		}),
	}).Create(cfg).Error
}
