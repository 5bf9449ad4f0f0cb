// Package ctgov implements the public clinical-trials registry client.
package ctgov

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"trial-catalog-service/internal/domain"
	"trial-catalog-service/internal/infra/registry"
)

// Endpoint is the API path for the study listing.
const Endpoint = "/api/v2/studies"

// Client implements domain.RegistryProvider for the public registry.
type Client struct {
	name   string
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a new registry client.
func New(cfg registry.ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		name:   "ctgov",
		client: registry.NewRestyClient(cfg),
		cb:     registry.NewCircuitBreaker[*resty.Response]("ctgov", cfg.CB),
		logger: logger,
	}
}

// Name returns the registry identifier.
func (c *Client) Name() string {
	return c.name
}

// Fetch retrieves currently published studies from the registry.
func (c *Client) Fetch(ctx context.Context) ([]*domain.Trial, error) {
	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		var result Response
		r, err := c.client.R().
			SetContext(ctx).
			SetResult(&result).
			Get(Endpoint)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("registry returned status %d", r.StatusCode())
		}

		return r, nil
	})

	if err != nil {
		c.logger.Warn("registry fetch failed",
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return nil, fmt.Errorf("fetching from ctgov: %w", err)
	}

	result := resp.Result().(*Response)
	trials := make([]*domain.Trial, 0, len(result.Studies))

	for _, study := range result.Studies {
		if study.NCTID == "" {
			// Unidentified studies cannot be upserted by registry id
			continue
		}
		trials = append(trials, study.ToDomain())
	}

	c.logger.Info("registry fetch completed",
		zap.Int("count", len(trials)),
	)

	return trials, nil
}

// HealthCheck verifies the registry is accessible.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return nil
}
