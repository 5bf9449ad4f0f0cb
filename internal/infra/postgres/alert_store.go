package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"trial-catalog-service/internal/domain"
)

// AlertStore implements domain.AlertStore using PostgreSQL. Every
// mutation is scoped by owner id; an alert owned by someone else is
// indistinguishable from a nonexistent one.
type AlertStore struct {
	db *gorm.DB
}

// NewAlertStore creates a new alert subscription store.
func NewAlertStore(db *gorm.DB) *AlertStore {
	return &AlertStore{db: db}
}

// Create stores a new subscription. The filter criteria bag is
// persisted verbatim as jsonb; frequency defaults to weekly.
func (s *AlertStore) Create(ctx context.Context, ownerID string, alert *domain.AlertSubscription) (*domain.AlertSubscription, error) {
	frequency := alert.Frequency
	if frequency == "" {
		frequency = domain.AlertFrequencyWeekly
	}

	criteria := JSONMap(alert.FilterCriteria)
	if criteria == nil {
		criteria = JSONMap{}
	}

	var trialID *string
	if alert.TrialID != "" {
		v := alert.TrialID
		trialID = &v
	}

	model := &TrialAlertModel{
		UserID:         ownerID,
		TrialID:        trialID,
		DiseaseArea:    alert.DiseaseArea,
		Location:       alert.Location,
		Phase:          alert.Phase,
		FilterCriteria: criteria,
		Frequency:      string(frequency),
		IsActive:       true,
	}

	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, fmt.Errorf("creating alert: %w", err)
	}

	return model.ToDomain(), nil
}

// List returns the owner's subscriptions, newest first.
func (s *AlertStore) List(ctx context.Context, ownerID string) ([]domain.AlertSubscription, error) {
	var models []TrialAlertModel

	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}

	alerts := make([]domain.AlertSubscription, len(models))
	for i, m := range models {
		alerts[i] = *m.ToDomain()
	}

	return alerts, nil
}

// Update applies a partial update to the owner's alert. Nil fields
// stay untouched; a present FilterCriteria replaces the stored bag
// wholesale. A successful update always refreshes updated_at.
func (s *AlertStore) Update(ctx context.Context, ownerID, alertID string, upd domain.AlertUpdate) (*domain.AlertSubscription, error) {
	if upd.IsEmpty() {
		return nil, domain.ErrEmptyUpdate
	}

	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if upd.DiseaseArea != nil {
		updates["disease_area"] = *upd.DiseaseArea
	}
	if upd.Location != nil {
		updates["location"] = *upd.Location
	}
	if upd.Phase != nil {
		updates["phase"] = *upd.Phase
	}
	if upd.FilterCriteria != nil {
		updates["filter_criteria"] = JSONMap(upd.FilterCriteria)
	}
	if upd.Frequency != nil {
		updates["frequency"] = string(*upd.Frequency)
	}
	if upd.IsActive != nil {
		updates["is_active"] = *upd.IsActive
	}
	if upd.TrialID != nil {
		if *upd.TrialID == "" {
			updates["trial_id"] = nil
		} else {
			updates["trial_id"] = *upd.TrialID
		}
	}

	result := s.db.WithContext(ctx).
		Model(&TrialAlertModel{}).
		Where("id = ? AND user_id = ?", alertID, ownerID).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("updating alert: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}

	var model TrialAlertModel
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", alertID, ownerID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}

		return nil, fmt.Errorf("reloading alert: %w", err)
	}

	return model.ToDomain(), nil
}

// Delete removes the alert if the owner matches, reporting whether a
// row was deleted.
func (s *AlertStore) Delete(ctx context.Context, ownerID, alertID string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", alertID, ownerID).
		Delete(&TrialAlertModel{})

	if result.Error != nil {
		return false, fmt.Errorf("deleting alert: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}
