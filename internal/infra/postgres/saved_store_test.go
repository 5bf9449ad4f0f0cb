package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave_Idempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	oncID, _ := seedCatalog(t, db)
	viewerID := uuid.NewString()

	store := NewSavedStore(db)
	ctx := context.Background()

	inserted, err := store.Save(ctx, viewerID, oncID, "promising")
	require.NoError(t, err)
	assert.True(t, inserted)

	// The second save hits the composite primary key and is a no-op.
	inserted, err = store.Save(ctx, viewerID, oncID, "different note")
	require.NoError(t, err)
	assert.False(t, inserted)

	// The original note survives the no-op.
	var model TrialSaveModel
	require.NoError(t, db.Where("user_id = ? AND trial_id = ?", viewerID, oncID).First(&model).Error)
	assert.Equal(t, "promising", model.Notes)
}

func TestSave_UnknownTrial(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSavedStore(db)

	// Saving against a trial that does not exist fails the foreign key.
	_, err := store.Save(context.Background(), uuid.NewString(), uuid.NewString(), "")
	assert.Error(t, err)
}

func TestUnsave(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	oncID, _ := seedCatalog(t, db)
	viewerID := uuid.NewString()

	store := NewSavedStore(db)
	ctx := context.Background()

	_, err := store.Save(ctx, viewerID, oncID, "")
	require.NoError(t, err)

	deleted, err := store.Unsave(ctx, viewerID, oncID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Already removed: no row to delete.
	deleted, err = store.Unsave(ctx, viewerID, oncID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestUnsave_DoesNotTouchOtherViewers(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	oncID, _ := seedCatalog(t, db)
	viewerA := uuid.NewString()
	viewerB := uuid.NewString()

	store := NewSavedStore(db)
	ctx := context.Background()

	_, err := store.Save(ctx, viewerA, oncID, "")
	require.NoError(t, err)
	_, err = store.Save(ctx, viewerB, oncID, "")
	require.NoError(t, err)

	deleted, err := store.Unsave(ctx, viewerA, oncID)
	require.NoError(t, err)
	assert.True(t, deleted)

	items, err := store.ListSaved(ctx, viewerB)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestListSaved(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	oncID, cardioID := seedCatalog(t, db)
	viewerID := uuid.NewString()

	store := NewSavedStore(db)
	ctx := context.Background()

	// Insert with explicit timestamps so the order is deterministic.
	require.NoError(t, db.Create(&TrialSaveModel{
		UserID: viewerID, TrialID: oncID, Notes: "first", SavedAt: tsAt(0),
	}).Error)
	require.NoError(t, db.Create(&TrialSaveModel{
		UserID: viewerID, TrialID: cardioID, Notes: "second", SavedAt: tsAt(1),
	}).Error)

	items, err := store.ListSaved(ctx, viewerID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Newest-saved first.
	assert.Equal(t, cardioID, items[0].ID)
	assert.Equal(t, "second", items[0].Notes)
	assert.Equal(t, oncID, items[1].ID)
	assert.Equal(t, "first", items[1].Notes)

	for _, item := range items {
		assert.True(t, item.IsSaved)
		assert.False(t, item.SavedAt.IsZero())
	}
	assert.Equal(t, "Boston, USA", items[0].Location)

	// Another viewer has an empty list, never someone else's.
	items, err = store.ListSaved(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, items)
}
