package queries

import (
	"errors"

	"gorm.io/gorm"

	"gitlab.com/agentlink-marketplace/attribution_api/model"
)

// ErrReferrerAlreadyBound is returned by BindReferrer when the profile
// already carries a referrer. Callers surface this as an immutability
// violation unless they are handling an idempotent retry
var ErrReferrerAlreadyBound = errors.New("referrer already bound")

// GetProfileByID runs on the caller's connection so transactional callers
// observe their own snapshot
func (repo *Repo) GetProfileByID(tx *gorm.DB, id uint64) (*model.Profile, error) {
	profile := model.Profile{}
	db := tx.First(&profile, "id = ?", id)
	if db.Error != nil {
		return nil, db.Error
	}
	return &profile, nil
}

// GetProfileBySignupRef looks a profile up by the host's account creation
// reference, used to make attribution binding idempotent on retried signups
func (repo *Repo) GetProfileBySignupRef(tx *gorm.DB, signupRef string) (*model.Profile, error) {
	profile := model.Profile{}
	db := tx.First(&profile, "signup_ref = ?", signupRef)
	if db.Error != nil {
		return nil, db.Error
	}
	return &profile, nil
}

// GetLiveProfileByReferralCode resolves a referral code to its owning
// profile. Anonymized profiles do not resolve; their codes fall through to
// the next signal during attribution
func (repo *Repo) GetLiveProfileByReferralCode(tx *gorm.DB, code string) (*model.Profile, error) {
	profile := model.Profile{}
	db := tx.First(&profile, "referral_code = ? AND status = ?", code, model.ProfileStatusActive)
	if db.Error != nil {
		return nil, db.Error
	}
	return &profile, nil
}

// CreateProfile inserts the profile row. A duplicate referral code surfaces
// as a unique constraint error which the binder retries with a fresh code
func (repo *Repo) CreateProfile(tx *gorm.DB, profile *model.Profile) error {
	return tx.Create(profile).Error
}

// BindReferrer is the single permitted mutation path for
// referred_by_profile_id. The conditional update only succeeds while the
// column is still null, which keeps the write-once rule race safe without
// application level locking
func (repo *Repo) BindReferrer(tx *gorm.DB, profileID, referrerID uint64) error {
	db := tx.Model(&model.Profile{}).
		Where("id = ? AND referred_by_profile_id IS NULL", profileID).
		Update("referred_by_profile_id", referrerID)
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected == 0 {
		return ErrReferrerAlreadyBound
	}
	return nil
}

// GetReferrerOf returns the immutable referrer of the given profile, nil for
// organic profiles
func (repo *Repo) GetReferrerOf(tx *gorm.DB, profileID uint64) (*uint64, error) {
	profile := model.Profile{}
	db := tx.Select("referred_by_profile_id").First(&profile, "id = ?", profileID)
	if db.Error != nil {
		return nil, db.Error
	}
	return profile.ReferredByProfileID, nil
}

// AnonymizeProfile clears the PII columns while leaving the referral code and
// referrer linkage untouched. Updates go through an explicit column list so
// referred_by_profile_id can never be touched from this path
func (repo *Repo) AnonymizeProfile(tx *gorm.DB, profileID uint64) error {
	db := tx.Model(&model.Profile{}).
		Where("id = ? AND status = ?", profileID, model.ProfileStatusActive).
		Updates(map[string]interface{}{
			"email":        "",
			"display_name": "",
			"status":       model.ProfileStatusDeleted,
		})
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
