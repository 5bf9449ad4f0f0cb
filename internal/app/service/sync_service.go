package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"trial-catalog-service/internal/domain"
)

// SyncService ingests trials from external registries into the catalog.
type SyncService struct {
	repo       domain.TrialRepository
	registries []domain.RegistryProvider
	logger     *zap.Logger
}

// NewSyncService creates a new SyncService.
func NewSyncService(repo domain.TrialRepository, registries []domain.RegistryProvider, logger *zap.Logger) *SyncService {
	return &SyncService{
		repo:       repo,
		registries: registries,
		logger:     logger,
	}
}

// SyncResult holds the outcome of one registry ingestion.
type SyncResult struct {
	Registry string
	Count    int
	Duration time.Duration
	Error    error
}

// SyncAll ingests from all registries concurrently. Partial failures
// are allowed; each registry reports its own result.
func (s *SyncService) SyncAll(ctx context.Context) []SyncResult {
	results := make([]SyncResult, len(s.registries))
	var wg sync.WaitGroup

	s.logger.Info("starting registry sync",
		zap.Int("registry_count", len(s.registries)),
	)

	for i, registry := range s.registries {
		wg.Add(1)
		go func(idx int, reg domain.RegistryProvider) {
			defer wg.Done()
			results[idx] = s.syncRegistry(ctx, reg)
		}(i, registry)
	}

	wg.Wait()

	totalSynced := 0
	totalErrors := 0
	for _, r := range results {
		if r.Error != nil {
			totalErrors++
		} else {
			totalSynced += r.Count
		}
	}

	s.logger.Info("registry sync completed",
		zap.Int("total_synced", totalSynced),
		zap.Int("registries_failed", totalErrors),
	)

	return results
}

// syncRegistry fetches and upserts trials from a single registry.
func (s *SyncService) syncRegistry(ctx context.Context, registry domain.RegistryProvider) SyncResult {
	start := time.Now()
	result := SyncResult{
		Registry: registry.Name(),
	}

	s.logger.Debug("syncing registry", zap.String("registry", registry.Name()))

	trials, err := registry.Fetch(ctx)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		s.logger.Warn("registry fetch failed",
			zap.String("registry", registry.Name()),
			zap.Error(err),
		)
		return result
	}

	if len(trials) > 0 {
		if err := s.repo.BulkUpsert(ctx, trials); err != nil {
			result.Error = err
			result.Duration = time.Since(start)
			s.logger.Error("bulk upsert failed",
				zap.String("registry", registry.Name()),
				zap.Error(err),
			)
			return result
		}
	}

	result.Count = len(trials)
	result.Duration = time.Since(start)

	s.logger.Info("registry sync completed",
		zap.String("registry", registry.Name()),
		zap.Int("count", result.Count),
		zap.Duration("duration", result.Duration),
	)

	return result
}

// SyncRegistry ingests from a single registry by name. Returns nil
// when no registry matches.
func (s *SyncService) SyncRegistry(ctx context.Context, name string) (*SyncResult, error) {
	for _, reg := range s.registries {
		if reg.Name() == name {
			result := s.syncRegistry(ctx, reg)
			return &result, result.Error
		}
	}
	return nil, nil // Registry not found
}

// GetRegistryNames returns the names of all configured registries.
func (s *SyncService) GetRegistryNames() []string {
	names := make([]string, len(s.registries))
	for i, reg := range s.registries {
		names[i] = reg.Name()
	}
	return names
}
