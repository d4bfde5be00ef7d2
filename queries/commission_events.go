package queries

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitlab.com/agentlink-marketplace/attribution_api/model"
)

// GetEventsByTransaction godoc
func (repo *Repo) GetEventsByTransaction(tx *gorm.DB, transactionID uint64) ([]model.CommissionEvent, error) {
	events := make([]model.CommissionEvent, 0)
	db := tx.Where("transaction_id = ?", transactionID).Order("id ASC").Find(&events)
	if db.Error != nil {
		return nil, db.Error
	}
	return events, nil
}

// CreateCommissionEvents appends the ledger rows for one routed transaction
func (repo *Repo) CreateCommissionEvents(tx *gorm.DB, events []*model.CommissionEvent) error {
	for _, event := range events {
		if err := tx.Create(event).Error; err != nil {
			return err
		}
	}
	return nil
}

// ReleaseHeldCommissions moves rows whose hold period elapsed from pending to
// available. The conditional update is idempotent, so overlapping sweep runs
// and early invocations are harmless
func (repo *Repo) ReleaseHeldCommissions(now time.Time) (int64, error) {
	db := repo.ConnWriter.Model(&model.CommissionEvent{}).
		Where("status = ? AND available_at <= ?", model.CommissionEventStatusPending, now).
		Update("status", model.CommissionEventStatusAvailable)
	return db.RowsAffected, db.Error
}

// SchedulePayouts picks a batch of available rows that carry a recipient and
// marks them scheduled, returning the rows for instruction emission.
// Platform fee rows have no recipient and are retained, never scheduled.
// SKIP LOCKED keeps concurrent sweep runs from double-picking a row
func (repo *Repo) SchedulePayouts(now time.Time, batchSize int) ([]model.CommissionEvent, error) {
	picked := make([]model.CommissionEvent, 0)
	err := repo.ConnWriter.Transaction(func(tx *gorm.DB) error {
		db := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND recipient_profile_id IS NOT NULL", model.CommissionEventStatusAvailable).
			Order("id ASC").
			Limit(batchSize).
			Find(&picked)
		if db.Error != nil {
			return db.Error
		}
		for i := range picked {
			update := tx.Model(&model.CommissionEvent{}).
				Where("id = ? AND status = ?", picked[i].ID, model.CommissionEventStatusAvailable).
				Updates(map[string]interface{}{
					"status":       model.CommissionEventStatusScheduled,
					"scheduled_at": now,
				})
			if update.Error != nil {
				return update.Error
			}
			picked[i].Status = model.CommissionEventStatusScheduled
			picked[i].ScheduledAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return picked, nil
}

// ConfirmPayout finalizes a scheduled row from the payments collaborator's
// callback. On success the row is paid out; on failure it re-enters
// available for another sweep until maxAttempts is reached, then fails
// terminally. Rows not in scheduled state are left untouched and reported
// as unchanged so replayed callbacks are not counted twice
func (repo *Repo) ConfirmPayout(eventID uint64, success bool, maxAttempts int, now time.Time) (*model.CommissionEvent, bool, error) {
	event := model.CommissionEvent{}
	changed := false
	err := repo.ConnWriter.Transaction(func(tx *gorm.DB) error {
		db := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event, "id = ?", eventID)
		if db.Error != nil {
			return db.Error
		}
		if event.Status != model.CommissionEventStatusScheduled {
			return nil
		}
		changed = true
		if success {
			event.Status = model.CommissionEventStatusPaidOut
			event.PaidOutAt = &now
			return tx.Model(&model.CommissionEvent{}).
				Where("id = ?", event.ID).
				Updates(map[string]interface{}{
					"status":      model.CommissionEventStatusPaidOut,
					"paid_out_at": now,
				}).Error
		}
		event.Attempts++
		event.Status = model.CommissionEventStatusAvailable
		if event.Attempts >= maxAttempts {
			event.Status = model.CommissionEventStatusFailed
		}
		return tx.Model(&model.CommissionEvent{}).
			Where("id = ?", event.ID).
			Updates(map[string]interface{}{
				"status":   event.Status,
				"attempts": event.Attempts,
			}).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &event, changed, nil
}

// CancelEventsForTransaction cancels every still-held row of a reversed
// transaction. Rows already scheduled or paid out are returned so callers can
// log them for manual reconciliation
func (repo *Repo) CancelEventsForTransaction(transactionID uint64) (int64, []model.CommissionEvent, error) {
	unreachable := make([]model.CommissionEvent, 0)
	var cancelled int64 = 0
	err := repo.ConnWriter.Transaction(func(tx *gorm.DB) error {
		db := tx.Model(&model.CommissionEvent{}).
			Where("transaction_id = ? AND status IN ?", transactionID,
				[]model.CommissionEventStatus{model.CommissionEventStatusPending, model.CommissionEventStatusAvailable}).
			Update("status", model.CommissionEventStatusCancelled)
		if db.Error != nil {
			return db.Error
		}
		cancelled = db.RowsAffected
		return tx.
			Where("transaction_id = ? AND status IN ?", transactionID,
				[]model.CommissionEventStatus{model.CommissionEventStatusScheduled, model.CommissionEventStatusPaidOut}).
			Find(&unreachable).Error
	})
	if err != nil {
		return 0, nil, err
	}
	return cancelled, unreachable, nil
}

// GetAgentEarningsTotal sums an agent's commission rows that were not
// cancelled or failed
func (repo *Repo) GetAgentEarningsTotal(agentProfileID uint64) (*model.JSONDecimal, error) {
	data := &struct{ Balance model.JSONDecimal }{Balance: model.JSONDecimal{Decimal: *model.ZeroDecimal()}}
	db := repo.ConnReader.
		Table("commission_events").
		Select("coalesce(sum(amount), 0) as balance").
		Where("recipient_profile_id = ? AND type = ? AND status NOT IN ?",
			agentProfileID, model.CommissionEventTypeAgentCommission,
			[]model.CommissionEventStatus{model.CommissionEventStatusCancelled, model.CommissionEventStatusFailed}).
		Scan(data)
	if db.Error != nil {
		return nil, db.Error
	}
	return &data.Balance, nil
}
