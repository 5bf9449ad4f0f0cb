package domain

import (
	"context"
	"time"
)

// TrialRepository defines persistence operations over the trial catalog.
// Implementations: internal/infra/postgres/repository.go
type TrialRepository interface {
	// Search runs the paged query and the unbounded count query built
	// from the same filter predicates. viewerID annotates each row with
	// its saved flag; pass "" for anonymous access.
	Search(ctx context.Context, filter SearchFilter, viewerID string) (*SearchResult, error)

	// GetByID retrieves a full trial with its sites, annotated with the
	// viewer's saved flag. Returns nil when the trial does not exist.
	GetByID(ctx context.Context, id, viewerID string) (*Trial, error)

	// GetByNCTID retrieves a trial by its registry identifier.
	GetByNCTID(ctx context.Context, nctID string) (*Trial, error)

	// BulkUpsert creates or updates trials keyed by nct_id.
	BulkUpsert(ctx context.Context, trials []*Trial) error

	// ExpressInterest records a viewer's interest in a trial and bumps
	// the trial's interest counter in one transaction.
	ExpressInterest(ctx context.Context, viewerID, trialID, message string) (*TrialInterest, error)

	// Count returns the number of trials matching the filter.
	Count(ctx context.Context, filter SearchFilter) (int64, error)
}

// SavedTrialStore defines the viewer bookmark operations.
// Implementations: internal/infra/postgres/saved_store.go
type SavedTrialStore interface {
	// Save bookmarks a trial. Returns false when the (viewer, trial)
	// pair already exists; the insert is a no-op in that case.
	Save(ctx context.Context, viewerID, trialID, notes string) (bool, error)

	// Unsave removes a bookmark, reporting whether a row was deleted.
	Unsave(ctx context.Context, viewerID, trialID string) (bool, error)

	// ListSaved returns the viewer's bookmarks, newest-saved first.
	ListSaved(ctx context.Context, viewerID string) ([]SavedTrialItem, error)
}

// AlertStore defines CRUD over alert subscriptions, always scoped by owner.
// Implementations: internal/infra/postgres/alert_store.go
type AlertStore interface {
	// Create stores a new subscription for the owner. The filter
	// criteria bag is persisted verbatim.
	Create(ctx context.Context, ownerID string, alert *AlertSubscription) (*AlertSubscription, error)

	// List returns the owner's subscriptions, newest first.
	List(ctx context.Context, ownerID string) ([]AlertSubscription, error)

	// Update applies a partial update. Returns ErrEmptyUpdate when upd
	// carries no fields and ErrNotFound when the alert does not exist
	// or belongs to someone else.
	Update(ctx context.Context, ownerID, alertID string, upd AlertUpdate) (*AlertSubscription, error)

	// Delete removes the alert if the owner matches. A foreign-owned
	// alert behaves exactly like a nonexistent one.
	Delete(ctx context.Context, ownerID, alertID string) (bool, error)
}

// RegistryProvider defines the interface for external trial registries
// feeding the catalog.
// Implementations: internal/infra/registry/
type RegistryProvider interface {
	// Name returns the unique identifier for this registry.
	Name() string

	// Fetch retrieves currently published trials from the registry.
	Fetch(ctx context.Context) ([]*Trial, error)

	// HealthCheck verifies the registry is accessible.
	HealthCheck(ctx context.Context) error
}

// AlertMatcher decides which active subscriptions a trial satisfies.
// The evaluation trigger (write events vs. frequency cadence) is owned
// by the collaborator providing the implementation; this service only
// persists subscriptions.
type AlertMatcher interface {
	Match(trial *Trial, subscriptions []AlertSubscription) []AlertSubscription
}

// Notifier delivers outbound messages to trial site coordinators.
// Implementations: internal/infra/notifier/
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Cache defines the interface for caching operations.
// Implementations: internal/infra/redis/cache.go
type Cache interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every cached value whose key starts with
	// prefix. Used to drop a viewer's search pages when a bookmark
	// changes.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all cached values.
	Clear(ctx context.Context) error
}
