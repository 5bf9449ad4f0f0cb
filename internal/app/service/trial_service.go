// Package service provides application use cases.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"trial-catalog-service/internal/domain"
)

// TrialService handles trial search, detail and interest operations.
type TrialService struct {
	repo     domain.TrialRepository
	cache    domain.Cache
	cacheTTL time.Duration
	notifier domain.Notifier
	logger   *zap.Logger
}

// NewTrialService creates a new TrialService. cache and notifier may be
// nil, disabling result caching and interest notifications respectively.
func NewTrialService(
	repo domain.TrialRepository,
	cache domain.Cache,
	cacheTTL time.Duration,
	notifier domain.Notifier,
	logger *zap.Logger,
) *TrialService {
	return &TrialService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		notifier: notifier,
		logger:   logger,
	}
}

// Search validates the filter and runs the paged catalog query. The
// cache key includes the viewer id so personalized saved flags never
// leak between viewers.
func (s *TrialService) Search(ctx context.Context, filter domain.SearchFilter, viewerID string) (*domain.SearchResult, error) {
	filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	key := searchCacheKey(filter, viewerID)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil && data != nil {
			var cached domain.SearchResult
			if err := json.Unmarshal(data, &cached); err == nil {
				s.logger.Debug("search cache hit", zap.String("key", key))
				return &cached, nil
			}
		}
	}

	s.logger.Debug("searching trials",
		zap.String("keyword", filter.Keyword),
		zap.Strings("phases", filter.Phases),
		zap.Strings("statuses", filter.Statuses),
		zap.Int("page", filter.Page),
		zap.Int("limit", filter.Limit),
		zap.String("sort_by", string(filter.SortBy)),
	)

	result, err := s.repo.Search(ctx, filter, viewerID)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
				s.logger.Warn("search cache store failed", zap.Error(err))
			}
		}
	}

	return result, nil
}

// GetByID retrieves a full trial with sites and the viewer's saved
// flag. Returns nil when the trial does not exist.
func (s *TrialService) GetByID(ctx context.Context, id, viewerID string) (*domain.Trial, error) {
	trial, err := s.repo.GetByID(ctx, id, viewerID)
	if err != nil {
		s.logger.Error("get trial failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return trial, nil
}

// ExpressInterest records the viewer's interest in a trial and notifies
// the recruiting site coordinators. Notification failures are logged,
// never surfaced: the interest row is already committed.
func (s *TrialService) ExpressInterest(ctx context.Context, viewerID, trialID, message string) (*domain.TrialInterest, error) {
	interest, err := s.repo.ExpressInterest(ctx, viewerID, trialID, message)
	if err != nil {
		s.logger.Error("express interest failed",
			zap.String("trial_id", trialID),
			zap.Error(err),
		)
		return nil, err
	}

	if s.notifier != nil {
		s.notifySites(ctx, trialID, message)
	}

	return interest, nil
}

// Count returns the total number of trials in the catalog.
func (s *TrialService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, domain.SearchFilter{})
}

func (s *TrialService) notifySites(ctx context.Context, trialID, message string) {
	trial, err := s.repo.GetByID(ctx, trialID, "")
	if err != nil || trial == nil {
		s.logger.Warn("skipping interest notification, trial lookup failed",
			zap.String("trial_id", trialID),
			zap.Error(err),
		)
		return
	}

	subject := fmt.Sprintf("New participant interest: %s", trial.Title)
	for _, site := range trial.Sites {
		if site.ContactEmail == "" {
			continue
		}
		if err := s.notifier.Send(ctx, site.ContactEmail, subject, message); err != nil {
			s.logger.Warn("interest notification failed",
				zap.String("site", site.SiteName),
				zap.Error(err),
			)
		}
	}
}

// searchCacheKey derives a stable cache key from the filter, scoped
// under the viewer's prefix.
func searchCacheKey(filter domain.SearchFilter, viewerID string) string {
	payload, _ := json.Marshal(filter)
	sum := sha256.Sum256(payload)

	return searchKeyPrefix(viewerID) + hex.EncodeToString(sum[:16])
}

// searchKeyPrefix groups one viewer's cached search pages so a
// bookmark write can invalidate exactly that viewer's entries. Cached
// pages embed the viewer's saved flags, so they must not outlive a
// save or unsave.
func searchKeyPrefix(viewerID string) string {
	if viewerID == "" {
		return "search:anon:"
	}

	sum := sha256.Sum256([]byte(viewerID))

	return "search:" + hex.EncodeToString(sum[:8]) + ":"
}
