package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trial-catalog-service/internal/domain"
)

// siteLocationExpr aggregates a trial's distinct "city, country" pairs
// for display. Shared by search and saved-list projections.
const siteLocationExpr = `(SELECT string_agg(DISTINCT ts.city || ', ' || ts.country, '; ')
	FROM trial_sites ts WHERE ts.trial_id = trials.id)`

// Repository implements domain.TrialRepository using PostgreSQL.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new PostgreSQL trial repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// trialSummaryRow is the scan target for the search projection.
type trialSummaryRow struct {
	ID         string
	Title      string
	Phase      string
	Status     string
	Location   *string
	Enrollment *int
	IsSaved    bool
	Rank       float64
}

func (r trialSummaryRow) toDomain() domain.TrialSummary {
	location := ""
	if r.Location != nil {
		location = *r.Location
	}

	return domain.TrialSummary{
		ID:         r.ID,
		Title:      r.Title,
		Phase:      r.Phase,
		Status:     r.Status,
		Location:   location,
		Enrollment: r.Enrollment,
		IsSaved:    r.IsSaved,
		Rank:       r.Rank,
	}
}

// Search executes the page query and the count query built from the
// same predicates. The two run as independent round-trips; the small
// total/items drift possible under concurrent writes is accepted.
func (r *Repository) Search(ctx context.Context, filter domain.SearchFilter, viewerID string) (*domain.SearchResult, error) {
	filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	// Count query: unbounded, same predicates.
	var total int64
	if err := r.buildTrialQuery(filter).WithContext(ctx).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting trials: %w", err)
	}

	// Page query: bounded, projected with rank and saved flag.
	pageQuery := r.buildTrialQuery(filter).WithContext(ctx)
	pageQuery = r.selectSummary(pageQuery, filter, viewerID)
	pageQuery = r.applyOrdering(pageQuery, filter)

	var rows []trialSummaryRow
	err := pageQuery.
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("searching trials: %w", err)
	}

	items := make([]domain.TrialSummary, len(rows))
	for i, row := range rows {
		items[i] = row.toDomain()
	}

	return domain.NewSearchResult(items, total, filter), nil
}

// GetByID retrieves a full trial with its sites. Returns nil when not
// found. The saved flag is evaluated for the viewer, constant false
// for anonymous access.
func (r *Repository) GetByID(ctx context.Context, id, viewerID string) (*domain.Trial, error) {
	var model TrialModel
	err := r.db.WithContext(ctx).
		Preload("Sites").
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found
		}

		return nil, fmt.Errorf("getting trial by id: %w", err)
	}

	trial := model.ToDomain()

	if viewerID != "" {
		var saved int64
		err := r.db.WithContext(ctx).
			Model(&TrialSaveModel{}).
			Where("user_id = ? AND trial_id = ?", viewerID, id).
			Count(&saved).Error
		if err != nil {
			return nil, fmt.Errorf("checking saved flag: %w", err)
		}
		trial.IsSaved = saved > 0
	}

	return trial, nil
}

// GetByNCTID retrieves a trial by its registry identifier.
func (r *Repository) GetByNCTID(ctx context.Context, nctID string) (*domain.Trial, error) {
	var model TrialModel
	err := r.db.WithContext(ctx).
		Where("nct_id = ?", nctID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found
		}

		return nil, fmt.Errorf("getting trial by nct id: %w", err)
	}

	return model.ToDomain(), nil
}

// BulkUpsert creates or updates trials in batches, keyed by nct_id.
func (r *Repository) BulkUpsert(ctx context.Context, trials []*domain.Trial) error {
	if len(trials) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := FromDomainSlice(trials)
	for _, m := range models {
		m.UpdatedAt = now
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "nct_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "summary", "description", "disease_area", "conditions", "phase", "status",
			"sponsor", "eligibility", "enrollment_target", "enrollment_current",
			"start_date", "completion_date", "metadata", "updated_at",
		}),
	}).CreateInBatches(models, 100).Error

	if err != nil {
		return fmt.Errorf("bulk upserting trials: %w", err)
	}

	for i, m := range models {
		trials[i].ID = m.ID
		trials[i].CreatedAt = m.CreatedAt
		trials[i].UpdatedAt = m.UpdatedAt
	}

	return nil
}

// ExpressInterest records the viewer's interest and bumps the trial's
// interest counter in one transaction. A nonexistent trial id fails
// the foreign key, surfacing as a storage error.
func (r *Repository) ExpressInterest(ctx context.Context, viewerID, trialID, message string) (*domain.TrialInterest, error) {
	model := &TrialInterestModel{
		UserID:  viewerID,
		TrialID: trialID,
		Message: message,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}

		return tx.Exec(
			`UPDATE trials SET metadata = jsonb_set(
				COALESCE(metadata, '{}'),
				'{interest_count}',
				(COALESCE(metadata->>'interest_count', '0')::int + 1)::text::jsonb
			) WHERE id = ?`,
			trialID,
		).Error
	})
	if err != nil {
		return nil, fmt.Errorf("recording trial interest: %w", err)
	}

	return &domain.TrialInterest{
		ID:        model.ID,
		UserID:    model.UserID,
		TrialID:   model.TrialID,
		Message:   model.Message,
		CreatedAt: model.CreatedAt,
	}, nil
}

// Count returns the number of trials matching the filter.
func (r *Repository) Count(ctx context.Context, filter domain.SearchFilter) (int64, error) {
	filter.Normalize()

	var count int64
	if err := r.buildTrialQuery(filter).WithContext(ctx).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting trials: %w", err)
	}

	return count, nil
}

// buildTrialQuery folds the present filters into one WHERE clause.
// Both the page query and the count query are built from this method
// so their predicate semantics can never diverge. Every caller value
// is a bound parameter; nothing is interpolated into the query text.
func (r *Repository) buildTrialQuery(filter domain.SearchFilter) *gorm.DB {
	query := r.db.Model(&TrialModel{})

	// Full-text search over the weighted title+summary vector.
	// plainto_tsquery treats the keyword as plain words ANDed together.
	if filter.HasKeyword() {
		query = query.Where(
			"search_vector @@ plainto_tsquery('english', ?)",
			filter.Keyword,
		)
	}

	// Set-membership filters: OR within each set, AND across sets.
	if len(filter.DiseaseAreas) > 0 {
		query = query.Where("disease_area IN ?", filter.DiseaseAreas)
	}
	if len(filter.Phases) > 0 {
		query = query.Where("phase IN ?", filter.Phases)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}

	// Location matches any associated site's country or city.
	if filter.Location != "" {
		pattern := "%" + filter.Location + "%"
		query = query.Where(
			`EXISTS (SELECT 1 FROM trial_sites ts
				WHERE ts.trial_id = trials.id
				AND (ts.country ILIKE ? OR ts.city ILIKE ?))`,
			pattern, pattern,
		)
	}

	if filter.Sponsor != "" {
		query = query.Where("sponsor ILIKE ?", "%"+filter.Sponsor+"%")
	}

	return query
}

// selectSummary adds the search projection: summary columns, the
// aggregated site location, the relevance rank and the saved flag.
// The rank uses the same vector and query function as the keyword
// predicate, so a row is never included without a computable score.
func (r *Repository) selectSummary(query *gorm.DB, filter domain.SearchFilter, viewerID string) *gorm.DB {
	sel := `trials.id, trials.title, trials.phase, trials.status, ` +
		siteLocationExpr + ` AS location, trials.enrollment_current AS enrollment`
	args := make([]interface{}, 0, 2)

	if filter.HasKeyword() {
		sel += ", ts_rank(search_vector, plainto_tsquery('english', ?)) AS rank"
		args = append(args, filter.Keyword)
	} else {
		sel += ", 0::float8 AS rank"
	}

	if viewerID != "" {
		sel += ", EXISTS (SELECT 1 FROM trial_saves s WHERE s.trial_id = trials.id AND s.user_id = ?) AS is_saved"
		args = append(args, viewerID)
	} else {
		sel += ", FALSE AS is_saved"
	}

	return query.Select(sel, args...)
}

// applyOrdering adds the ORDER BY chain for the page query.
//
// relevance + keyword: rank desc, then creation time as tie-break.
// newest: creation time desc. enrollment: current enrollment desc,
// nulls last. Relevance without a keyword already degraded to newest
// in EffectiveSort.
func (r *Repository) applyOrdering(query *gorm.DB, filter domain.SearchFilter) *gorm.DB {
	switch filter.EffectiveSort() {
	case domain.SortRelevance:
		expr := gorm.Expr(
			"ts_rank(search_vector, plainto_tsquery('english', ?)) DESC, created_at DESC",
			filter.Keyword,
		)

		return query.Clauses(clause.OrderBy{Expression: expr})

	case domain.SortEnrollment:
		return query.Order("enrollment_current DESC NULLS LAST")

	default:
		return query.Order("created_at DESC")
	}
}
