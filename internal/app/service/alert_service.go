package service

import (
	"context"

	"go.uber.org/zap"

	"trial-catalog-service/internal/domain"
)

// AlertService handles alert subscription CRUD. Every operation is
// scoped by the owner; foreign-owned alerts are reported as not found.
type AlertService struct {
	store  domain.AlertStore
	logger *zap.Logger
}

// NewAlertService creates a new AlertService.
func NewAlertService(store domain.AlertStore, logger *zap.Logger) *AlertService {
	return &AlertService{
		store:  store,
		logger: logger,
	}
}

// Create stores a new subscription for the owner.
func (s *AlertService) Create(ctx context.Context, ownerID string, alert *domain.AlertSubscription) (*domain.AlertSubscription, error) {
	created, err := s.store.Create(ctx, ownerID, alert)
	if err != nil {
		s.logger.Error("create alert failed", zap.Error(err))
		return nil, err
	}

	s.logger.Debug("alert created",
		zap.String("alert_id", created.ID),
		zap.String("frequency", string(created.Frequency)),
	)

	return created, nil
}

// List returns the owner's subscriptions, newest first.
func (s *AlertService) List(ctx context.Context, ownerID string) ([]domain.AlertSubscription, error) {
	alerts, err := s.store.List(ctx, ownerID)
	if err != nil {
		s.logger.Error("list alerts failed", zap.Error(err))
		return nil, err
	}

	return alerts, nil
}

// Update applies a partial update to the owner's alert.
func (s *AlertService) Update(ctx context.Context, ownerID, alertID string, upd domain.AlertUpdate) (*domain.AlertSubscription, error) {
	updated, err := s.store.Update(ctx, ownerID, alertID, upd)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes the owner's alert. Returns ErrNotFound for alerts
// that do not exist or belong to someone else.
func (s *AlertService) Delete(ctx context.Context, ownerID, alertID string) error {
	deleted, err := s.store.Delete(ctx, ownerID, alertID)
	if err != nil {
		s.logger.Error("delete alert failed",
			zap.String("alert_id", alertID),
			zap.Error(err),
		)
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}

	return nil
}
