package service

import (
	"context"

	"go.uber.org/zap"

	"trial-catalog-service/internal/domain"
)

// SavedTrialService handles viewer bookmarks. It shares the search
// cache with TrialService: cached search pages carry the viewer's
// saved flags, so every successful bookmark write drops that viewer's
// cached pages.
type SavedTrialService struct {
	store  domain.SavedTrialStore
	cache  domain.Cache
	logger *zap.Logger
}

// NewSavedTrialService creates a new SavedTrialService. cache may be
// nil when result caching is disabled.
func NewSavedTrialService(store domain.SavedTrialStore, cache domain.Cache, logger *zap.Logger) *SavedTrialService {
	return &SavedTrialService{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Save bookmarks a trial for the viewer. Returns ErrAlreadySaved when
// the pair already exists; the insert was a no-op in that case.
func (s *SavedTrialService) Save(ctx context.Context, viewerID, trialID, notes string) error {
	inserted, err := s.store.Save(ctx, viewerID, trialID, notes)
	if err != nil {
		s.logger.Error("save trial failed",
			zap.String("trial_id", trialID),
			zap.Error(err),
		)
		return err
	}
	if !inserted {
		return domain.ErrAlreadySaved
	}

	s.invalidateSearches(ctx, viewerID)

	return nil
}

// Unsave removes a bookmark. Returns ErrNotFound when there was none.
func (s *SavedTrialService) Unsave(ctx context.Context, viewerID, trialID string) error {
	deleted, err := s.store.Unsave(ctx, viewerID, trialID)
	if err != nil {
		s.logger.Error("unsave trial failed",
			zap.String("trial_id", trialID),
			zap.Error(err),
		)
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.invalidateSearches(ctx, viewerID)

	return nil
}

// ListSaved returns the viewer's bookmarks, newest-saved first.
func (s *SavedTrialService) ListSaved(ctx context.Context, viewerID string) ([]domain.SavedTrialItem, error) {
	items, err := s.store.ListSaved(ctx, viewerID)
	if err != nil {
		s.logger.Error("list saved trials failed", zap.Error(err))
		return nil, err
	}

	return items, nil
}

// invalidateSearches drops the viewer's cached search pages after a
// bookmark write. The bookmark row is already committed, so a failed
// invalidation is logged and the pages expire by TTL instead.
func (s *SavedTrialService) invalidateSearches(ctx context.Context, viewerID string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.DeletePrefix(ctx, searchKeyPrefix(viewerID)); err != nil {
		s.logger.Warn("search cache invalidation failed",
			zap.String("viewer_id", viewerID),
			zap.Error(err),
		)
	}
}
