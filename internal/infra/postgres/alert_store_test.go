package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trial-catalog-service/internal/domain"
)

func TestAlertCreate_Defaults(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ownerID := uuid.NewString()
	store := NewAlertStore(db)

	created, err := store.Create(context.Background(), ownerID, &domain.AlertSubscription{
		DiseaseArea: "Oncology",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, ownerID, created.UserID)
	assert.Equal(t, domain.AlertFrequencyWeekly, created.Frequency, "frequency defaults to weekly")
	assert.True(t, created.IsActive, "new alerts start active")
	assert.NotNil(t, created.FilterCriteria)
	assert.Empty(t, created.FilterCriteria)
	assert.Empty(t, created.TrialID)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestAlertCreate_CriteriaRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ownerID := uuid.NewString()
	store := NewAlertStore(db)
	ctx := context.Background()

	criteria := domain.FilterCriteria{
		"min_age":  float64(18),
		"gender":   "any",
		"keywords": []interface{}{"immunotherapy", "checkpoint"},
		"nested":   map[string]interface{}{"country": "Germany"},
	}

	created, err := store.Create(ctx, ownerID, &domain.AlertSubscription{
		Frequency:      domain.AlertFrequencyDaily,
		FilterCriteria: criteria,
	})
	require.NoError(t, err)

	alerts, err := store.List(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	// The bag comes back exactly as stored (jsonb numbers as float64).
	assert.Equal(t, criteria, alerts[0].FilterCriteria)
	assert.Equal(t, created.ID, alerts[0].ID)
	assert.Equal(t, domain.AlertFrequencyDaily, alerts[0].Frequency)
}

func TestAlertList_OwnerScoped(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ownerA := uuid.NewString()
	ownerB := uuid.NewString()
	store := NewAlertStore(db)
	ctx := context.Background()

	_, err := store.Create(ctx, ownerA, &domain.AlertSubscription{DiseaseArea: "Oncology"})
	require.NoError(t, err)
	_, err = store.Create(ctx, ownerA, &domain.AlertSubscription{DiseaseArea: "Neurology"})
	require.NoError(t, err)
	_, err = store.Create(ctx, ownerB, &domain.AlertSubscription{DiseaseArea: "Cardiology"})
	require.NoError(t, err)

	alertsA, err := store.List(ctx, ownerA)
	require.NoError(t, err)
	assert.Len(t, alertsA, 2)

	alertsB, err := store.List(ctx, ownerB)
	require.NoError(t, err)
	require.Len(t, alertsB, 1)
	assert.Equal(t, "Cardiology", alertsB[0].DiseaseArea)
}

func TestAlertUpdate_Partial(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ownerID := uuid.NewString()
	store := NewAlertStore(db)
	ctx := context.Background()

	created, err := store.Create(ctx, ownerID, &domain.AlertSubscription{
		DiseaseArea:    "Oncology",
		Location:       "Berlin",
		FilterCriteria: domain.FilterCriteria{"min_age": float64(18)},
	})
	require.NoError(t, err)

	freq := domain.AlertFrequencyInstant
	inactive := false
	updated, err := store.Update(ctx, ownerID, created.ID, domain.AlertUpdate{
		Frequency: &freq,
		IsActive:  &inactive,
	})
	require.NoError(t, err)

	// Updated fields changed, everything else untouched.
	assert.Equal(t, domain.AlertFrequencyInstant, updated.Frequency)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Oncology", updated.DiseaseArea)
	assert.Equal(t, "Berlin", updated.Location)
	assert.Equal(t, domain.FilterCriteria{"min_age": float64(18)}, updated.FilterCriteria)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "updated_at refreshed")
}

func TestAlertUpdate_CriteriaReplacedWholesale(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ownerID := uuid.NewString()
	store := NewAlertStore(db)
	ctx := context.Background()

	created, err := store.Create(ctx, ownerID, &domain.AlertSubscription{
		FilterCriteria: domain.FilterCriteria{"min_age": float64(18), "gender": "any"},
	})
	require.NoError(t, err)

	// A present criteria bag replaces, never merges.
	updated, err := store.Update(ctx, ownerID, created.ID, domain.AlertUpdate{
		FilterCriteria: domain.FilterCriteria{"max_age": float64(65)},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FilterCriteria{"max_age": float64(65)}, updated.FilterCriteria)

	// An empty-but-present bag clears it.
	updated, err = store.Update(ctx, ownerID, created.ID, domain.AlertUpdate{
		FilterCriteria: domain.FilterCriteria{},
	})
	require.NoError(t, err)
	assert.Empty(t, updated.FilterCriteria)
}

func TestAlertUpdate_Empty(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ownerID := uuid.NewString()
	store := NewAlertStore(db)
	ctx := context.Background()

	created, err := store.Create(ctx, ownerID, &domain.AlertSubscription{})
	require.NoError(t, err)

	_, err = store.Update(ctx, ownerID, created.ID, domain.AlertUpdate{})
	assert.ErrorIs(t, err, domain.ErrEmptyUpdate)
}

func TestAlertOwnership_NeverLeaks(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ownerID := uuid.NewString()
	intruderID := uuid.NewString()
	store := NewAlertStore(db)
	ctx := context.Background()

	created, err := store.Create(ctx, ownerID, &domain.AlertSubscription{DiseaseArea: "Oncology"})
	require.NoError(t, err)

	// Updating someone else's alert reports not found, exactly like a
	// nonexistent id.
	area := "Cardiology"
	_, err = store.Update(ctx, intruderID, created.ID, domain.AlertUpdate{DiseaseArea: &area})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.Update(ctx, ownerID, uuid.NewString(), domain.AlertUpdate{DiseaseArea: &area})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Same for delete.
	deleted, err := store.Delete(ctx, intruderID, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	// The alert is still intact for its owner.
	alerts, err := store.List(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Oncology", alerts[0].DiseaseArea)
}

func TestAlertDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ownerID := uuid.NewString()
	store := NewAlertStore(db)
	ctx := context.Background()

	created, err := store.Create(ctx, ownerID, &domain.AlertSubscription{})
	require.NoError(t, err)

	deleted, err := store.Delete(ctx, ownerID, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(ctx, ownerID, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	alerts, err := store.List(ctx, ownerID)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAlertCreate_PinnedTrial(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	oncID, _ := seedCatalog(t, db)
	ownerID := uuid.NewString()
	store := NewAlertStore(db)
	ctx := context.Background()

	created, err := store.Create(ctx, ownerID, &domain.AlertSubscription{TrialID: oncID})
	require.NoError(t, err)
	assert.Equal(t, oncID, created.TrialID)

	// Unpinning via update stores NULL, returned as empty string.
	empty := ""
	updated, err := store.Update(ctx, ownerID, created.ID, domain.AlertUpdate{TrialID: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.TrialID)
}
