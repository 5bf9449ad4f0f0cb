package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trial-catalog-service/internal/domain"
)

// SavedStore implements domain.SavedTrialStore using PostgreSQL.
type SavedStore struct {
	db *gorm.DB
}

// NewSavedStore creates a new saved-trial store.
func NewSavedStore(db *gorm.DB) *SavedStore {
	return &SavedStore{db: db}
}

// Save bookmarks a trial for the viewer. The insert is a no-op when
// the (viewer, trial) pair already exists; the caller maps the false
// return to a conflict. A nonexistent trial id fails the foreign key
// and surfaces as a storage error, not a clean not-found.
func (s *SavedStore) Save(ctx context.Context, viewerID, trialID, notes string) (bool, error) {
	model := &TrialSaveModel{
		UserID:  viewerID,
		TrialID: trialID,
		Notes:   notes,
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "trial_id"}},
		DoNothing: true,
	}).Create(model)

	if result.Error != nil {
		return false, fmt.Errorf("saving trial: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// Unsave removes the bookmark, reporting whether a row was deleted.
func (s *SavedStore) Unsave(ctx context.Context, viewerID, trialID string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND trial_id = ?", viewerID, trialID).
		Delete(&TrialSaveModel{})

	if result.Error != nil {
		return false, fmt.Errorf("unsaving trial: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// savedTrialRow is the scan target for the saved-list projection.
type savedTrialRow struct {
	trialSummaryRow
	Notes   string
	SavedAt time.Time
}

// ListSaved returns the viewer's bookmarks, newest-saved first, each
// carrying its save timestamp and note.
func (s *SavedStore) ListSaved(ctx context.Context, viewerID string) ([]domain.SavedTrialItem, error) {
	var rows []savedTrialRow

	err := s.db.WithContext(ctx).
		Table("trial_saves").
		Select(`trials.id, trials.title, trials.phase, trials.status, `+
			siteLocationExpr+` AS location, trials.enrollment_current AS enrollment,
			TRUE AS is_saved, 0::float8 AS rank, trial_saves.notes, trial_saves.saved_at`).
		Joins("JOIN trials ON trials.id = trial_saves.trial_id").
		Where("trial_saves.user_id = ?", viewerID).
		Order("trial_saves.saved_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing saved trials: %w", err)
	}

	items := make([]domain.SavedTrialItem, len(rows))
	for i, row := range rows {
		items[i] = domain.SavedTrialItem{
			TrialSummary: row.toDomain(),
			Notes:        row.Notes,
			SavedAt:      row.SavedAt,
		}
	}

	return items, nil
}
