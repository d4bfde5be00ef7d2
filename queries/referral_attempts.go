package queries

import (
	"time"

	"gorm.io/gorm"

	"gitlab.com/agentlink-marketplace/attribution_api/model"
)

// CreateReferralAttempt godoc
func (repo *Repo) CreateReferralAttempt(tx *gorm.DB, attempt *model.ReferralAttempt) error {
	return tx.Create(attempt).Error
}

// FindPendingAttempt returns the most recent unconverted click for the given
// agent that has not been tied to a profile yet
func (repo *Repo) FindPendingAttempt(tx *gorm.DB, agentProfileID uint64) (*model.ReferralAttempt, error) {
	attempt := model.ReferralAttempt{}
	db := tx.
		Where("agent_profile_id = ? AND referred_profile_id IS NULL AND status = ?",
			agentProfileID, model.ReferralAttemptStatusReferred).
		Order("created_at DESC").
		First(&attempt)
	if db.Error != nil {
		return nil, db.Error
	}
	return &attempt, nil
}

// MarkAttemptSignedUp attaches the newly created profile to a pending attempt
// and records the winning resolution method
func (repo *Repo) MarkAttemptSignedUp(tx *gorm.DB, attemptID, referredProfileID uint64, source model.SignalSource) error {
	return tx.Model(&model.ReferralAttempt{}).
		Where("id = ? AND status = ?", attemptID, model.ReferralAttemptStatusReferred).
		Updates(map[string]interface{}{
			"referred_profile_id": referredProfileID,
			"status":              model.ReferralAttemptStatusSignedUp,
			"source":              source,
		}).Error
}

// MarkAttemptConverted advances the (agent, referred) attempt on the referred
// profile's first completed revenue event. The conditional update makes
// repeated transactions a no-op
func (repo *Repo) MarkAttemptConverted(tx *gorm.DB, agentProfileID, referredProfileID uint64, at time.Time) error {
	return tx.Model(&model.ReferralAttempt{}).
		Where("agent_profile_id = ? AND referred_profile_id = ? AND status = ?",
			agentProfileID, referredProfileID, model.ReferralAttemptStatusSignedUp).
		Updates(map[string]interface{}{
			"status":       model.ReferralAttemptStatusConverted,
			"converted_at": at,
		}).Error
}

// DeactivateAttemptsForAgent marks every unconverted click of a deleted
// agent inactive
func (repo *Repo) DeactivateAttemptsForAgent(tx *gorm.DB, agentProfileID uint64) error {
	return tx.Model(&model.ReferralAttempt{}).
		Where("agent_profile_id = ? AND status = ?", agentProfileID, model.ReferralAttemptStatusReferred).
		Update("status", model.ReferralAttemptStatusInactive).Error
}

// ExpireReferralAttempts marks clicks older than the TTL that never signed up
// inactive. Safe to run concurrently with itself and with new signups
func (repo *Repo) ExpireReferralAttempts(cutoff time.Time) (int64, error) {
	db := repo.ConnWriter.Model(&model.ReferralAttempt{}).
		Where("status = ? AND created_at <= ?", model.ReferralAttemptStatusReferred, cutoff).
		Update("status", model.ReferralAttemptStatusInactive)
	return db.RowsAffected, db.Error
}

// CountAttemptsFromSource counts clicks from one originating identifier
// inside the velocity window
func (repo *Repo) CountAttemptsFromSource(sourceIdentifier string, since time.Time) (int64, error) {
	var count int64
	db := repo.ConnReader.Model(&model.ReferralAttempt{}).
		Where("source_identifier = ? AND created_at >= ?", sourceIdentifier, since).
		Count(&count)
	return count, db.Error
}

// GetAttemptsByAgent lists an agent's referral attempts with paging
func (repo *Repo) GetAttemptsByAgent(agentProfileID uint64, limit, page int) (*model.ReferralAttemptsResponse, error) {
	attempts := make([]model.ReferralAttempt, 0)
	var rowCount int64 = 0

	q := repo.ConnReader.Model(&model.ReferralAttempt{}).
		Where("agent_profile_id = ?", agentProfileID)
	if err := q.Count(&rowCount).Error; err != nil {
		return nil, err
	}
	db := q.Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&attempts)
	if db.Error != nil {
		return nil, db.Error
	}

	return &model.ReferralAttemptsResponse{
		Data: attempts,
		Meta: model.PagingMeta{
			Page:   page,
			Count:  rowCount,
			Limit:  limit,
			Filter: make(map[string]interface{}),
		},
	}, nil
}

// GetTopAgents returns the agents with the most converted referrals
func (repo *Repo) GetTopAgents(limit int) ([]model.TopAgent, error) {
	agents := make([]model.TopAgent, 0)
	db := repo.ConnReader.
		Table("referral_attempts").
		Select("referral_attempts.agent_profile_id, profiles.referral_code, count(*) as converted").
		Joins("inner join profiles on profiles.id = referral_attempts.agent_profile_id").
		Where("referral_attempts.status = ?", model.ReferralAttemptStatusConverted).
		Group("referral_attempts.agent_profile_id, profiles.referral_code").
		Order("converted DESC").
		Limit(limit).
		Find(&agents)
	if db.Error != nil {
		return nil, db.Error
	}
	return agents, nil
}

// GetAttemptByReferredProfile returns the attempt tied to a signed up or
// converted profile, used to recover the winning method on idempotent
// signup retries
func (repo *Repo) GetAttemptByReferredProfile(tx *gorm.DB, referredProfileID uint64) (*model.ReferralAttempt, error) {
	attempt := model.ReferralAttempt{}
	db := tx.
		Where("referred_profile_id = ? AND status IN ?", referredProfileID,
			[]model.ReferralAttemptStatus{model.ReferralAttemptStatusSignedUp, model.ReferralAttemptStatusConverted}).
		Order("created_at DESC").
		First(&attempt)
	if db.Error != nil {
		return nil, db.Error
	}
	return &attempt, nil
}
