package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"trial-catalog-service/internal/domain"
	"trial-catalog-service/internal/infra/postgres/migrations"
)

// setupTestDB creates a PostgreSQL testcontainer and returns a connected GORM DB
//
// Prerequisites:
//   - Docker must be running
//   - Run: docker-compose up postgres
//
// OR
//   - Skip tests with: go test -short
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	pgContainer, err := postgresContainer.Run(ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("testdb"),
		postgresContainer.WithUsername("testuser"),
		postgresContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf(`Failed to start PostgreSQL container: %v

Docker Prerequisites:
1. Ensure Docker is running
2. OR use existing postgres: docker-compose up postgres
3. OR skip integration tests: go test -short

`, err)
	}

	// Get connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	// Connect to database
	db, err := gorm.Open(postgresDriver.Open(connStr), &gorm.Config{
		Logger: nil, // Silent logger for tests
	})
	require.NoError(t, err, "Failed to connect to test database")

	// Run the real migrations: the FTS column, index and trigger are
	// not expressible via AutoMigrate.
	err = migrations.Run(db)
	require.NoError(t, err, "Failed to run migrations")

	// Cleanup function
	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

// seedTrial inserts a trial directly and returns its generated id.
func seedTrial(t *testing.T, db *gorm.DB, model *TrialModel) string {
	t.Helper()

	require.NoError(t, db.Create(model).Error)

	return model.ID
}

// seedSite attaches a site to a trial.
func seedSite(t *testing.T, db *gorm.DB, trialID, siteName, country, city, email string) {
	t.Helper()

	require.NoError(t, db.Create(&TrialSiteModel{
		TrialID:      trialID,
		SiteName:     siteName,
		Country:      country,
		City:         city,
		ContactEmail: email,
		IsRecruiting: true,
	}).Error)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func tsAt(d int) time.Time    { return time.Date(2026, 1, 1+d, 12, 0, 0, 0, time.UTC) }

// seedCatalog inserts the two-trial fixture used by most search tests:
// an oncology safety study recruiting in Berlin and a completed
// cardiology efficacy study in Boston. Returns (oncologyID, cardioID).
func seedCatalog(t *testing.T, db *gorm.DB) (string, string) {
	t.Helper()

	oncID := seedTrial(t, db, &TrialModel{
		NCTID:             strPtr("NCT00000001"),
		Title:             "Safety Study of Drug X in Advanced Tumors",
		Summary:           "A phase 3 safety and tolerability study of Drug X.",
		DiseaseArea:       "Oncology",
		Phase:             "Phase 3",
		Status:            "Recruiting",
		Sponsor:           "Helios Research Group",
		EnrollmentTarget:  200,
		EnrollmentCurrent: intPtr(120),
		CreatedAt:         tsAt(0),
	})
	seedSite(t, db, oncID, "Charite Berlin", "Germany", "Berlin", "onc@charite.example")

	cardioID := seedTrial(t, db, &TrialModel{
		NCTID:             strPtr("NCT00000002"),
		Title:             "Efficacy of Drug Y After Myocardial Infarction",
		Summary:           "Randomized efficacy study of Drug Y in cardiac patients.",
		DiseaseArea:       "Cardiology",
		Phase:             "Phase 2",
		Status:            "Completed",
		Sponsor:           "Beacon Heart Institute",
		EnrollmentTarget:  80,
		EnrollmentCurrent: intPtr(80),
		CreatedAt:         tsAt(1),
	})
	seedSite(t, db, cardioID, "Mass General", "USA", "Boston", "cardio@mgh.example")

	return oncID, cardioID
}

func TestSearch_NoFilters(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	seedCatalog(t, db)

	repo := NewRepository(db)
	result, err := repo.Search(context.Background(), domain.SearchFilter{}, "")
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.Total)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, domain.DefaultLimit, result.Limit)
	assert.Equal(t, 1, result.Pages)
}

func TestSearch_Keyword(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	oncID, _ := seedCatalog(t, db)

	repo := NewRepository(db)
	result, err := repo.Search(context.Background(), domain.SearchFilter{Keyword: "safety"}, "")
	require.NoError(t, err)

	require.Equal(t, int64(1), result.Total)
	require.Len(t, result.Items, 1)
	assert.Equal(t, oncID, result.Items[0].ID)
	assert.Greater(t, result.Items[0].Rank, 0.0, "matched rows carry a computable rank")
}

func TestSearch_KeywordNoMatch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	seedCatalog(t, db)

	repo := NewRepository(db)
	result, err := repo.Search(context.Background(), domain.SearchFilter{Keyword: "xylophone"}, "")
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.Total)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.Pages)
}

func TestSearch_FilterConjunction(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	oncID, _ := seedCatalog(t, db)

	repo := NewRepository(db)
	ctx := context.Background()

	// Phase alone matches the oncology trial.
	result, err := repo.Search(ctx, domain.SearchFilter{Phases: []string{"Phase 3"}}, "")
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Total)
	assert.Equal(t, oncID, result.Items[0].ID)

	// Adding a non-matching disease area ANDs to zero.
	result, err = repo.Search(ctx, domain.SearchFilter{
		Phases:       []string{"Phase 3"},
		DiseaseAreas: []string{"Cardiology"},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Total)

	// Multiple values within one filter OR together.
	result, err = repo.Search(ctx, domain.SearchFilter{
		Phases: []string{"Phase 2", "Phase 3"},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
}

func TestSearch_LocationAndSponsor(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	oncID, cardioID := seedCatalog(t, db)

	repo := NewRepository(db)
	ctx := context.Background()

	result, err := repo.Search(ctx, domain.SearchFilter{Location: "germany"}, "")
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Total)
	assert.Equal(t, oncID, result.Items[0].ID)
	assert.Equal(t, "Berlin, Germany", result.Items[0].Location)

	result, err = repo.Search(ctx, domain.SearchFilter{Sponsor: "beacon"}, "")
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Total)
	assert.Equal(t, cardioID, result.Items[0].ID)
}

func TestSearch_Pagination(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	for i := 0; i < 5; i++ {
		seedTrial(t, db, &TrialModel{
			Title:     "Observational Cohort " + string(rune('A'+i)),
			Phase:     "Phase 1",
			Status:    "Recruiting",
			CreatedAt: tsAt(i),
		})
	}

	repo := NewRepository(db)
	ctx := context.Background()

	result, err := repo.Search(ctx, domain.SearchFilter{Page: 3, Limit: 2}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Total)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, 3, result.Pages)

	// Out-of-range page is an empty result, not an error.
	result, err = repo.Search(ctx, domain.SearchFilter{Page: 10, Limit: 2}, "")
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, int64(5), result.Total)
}

func TestSearch_InvalidFilter(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Search(ctx, domain.SearchFilter{Page: -1}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)

	_, err = repo.Search(ctx, domain.SearchFilter{Limit: 101}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)

	_, err = repo.Search(ctx, domain.SearchFilter{SortBy: "popularity"}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)
}

func TestSearch_Ordering(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	oldID := seedTrial(t, db, &TrialModel{
		Title:             "Old Study",
		EnrollmentCurrent: intPtr(500),
		CreatedAt:         tsAt(0),
	})
	newID := seedTrial(t, db, &TrialModel{
		Title:     "New Study",
		CreatedAt: tsAt(5), // enrollment unknown
	})
	midID := seedTrial(t, db, &TrialModel{
		Title:             "Mid Study",
		EnrollmentCurrent: intPtr(50),
		CreatedAt:         tsAt(2),
	})

	repo := NewRepository(db)
	ctx := context.Background()

	// newest: created_at descending.
	result, err := repo.Search(ctx, domain.SearchFilter{SortBy: domain.SortNewest}, "")
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.Equal(t, []string{newID, midID, oldID},
		[]string{result.Items[0].ID, result.Items[1].ID, result.Items[2].ID})

	// enrollment: current enrollment descending, unknown last.
	result, err = repo.Search(ctx, domain.SearchFilter{SortBy: domain.SortEnrollment}, "")
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.Equal(t, []string{oldID, midID, newID},
		[]string{result.Items[0].ID, result.Items[1].ID, result.Items[2].ID})

	// relevance without a keyword degrades to newest.
	result, err = repo.Search(ctx, domain.SearchFilter{SortBy: domain.SortRelevance}, "")
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.Equal(t, newID, result.Items[0].ID)
}

func TestSearch_SavedAnnotation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	oncID, cardioID := seedCatalog(t, db)
	viewerID := uuid.NewString()
	otherID := uuid.NewString()

	require.NoError(t, db.Create(&TrialSaveModel{UserID: viewerID, TrialID: oncID}).Error)

	repo := NewRepository(db)
	ctx := context.Background()

	result, err := repo.Search(ctx, domain.SearchFilter{}, viewerID)
	require.NoError(t, err)
	require.Len(t, result.Items, 2)

	flags := map[string]bool{}
	for _, item := range result.Items {
		flags[item.ID] = item.IsSaved
	}
	assert.True(t, flags[oncID])
	assert.False(t, flags[cardioID])

	// A different viewer sees nothing saved.
	result, err = repo.Search(ctx, domain.SearchFilter{}, otherID)
	require.NoError(t, err)
	for _, item := range result.Items {
		assert.False(t, item.IsSaved)
	}

	// Anonymous access is constant false.
	result, err = repo.Search(ctx, domain.SearchFilter{}, "")
	require.NoError(t, err)
	for _, item := range result.Items {
		assert.False(t, item.IsSaved)
	}
}

func TestGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	oncID, _ := seedCatalog(t, db)
	viewerID := uuid.NewString()

	repo := NewRepository(db)
	ctx := context.Background()

	trial, err := repo.GetByID(ctx, oncID, "")
	require.NoError(t, err)
	require.NotNil(t, trial)
	assert.Equal(t, "NCT00000001", trial.NCTID)
	require.Len(t, trial.Sites, 1)
	assert.Equal(t, "Charite Berlin", trial.Sites[0].SiteName)
	assert.False(t, trial.IsSaved)

	// Saved flag for an authenticated viewer.
	require.NoError(t, db.Create(&TrialSaveModel{UserID: viewerID, TrialID: oncID}).Error)
	trial, err = repo.GetByID(ctx, oncID, viewerID)
	require.NoError(t, err)
	require.NotNil(t, trial)
	assert.True(t, trial.IsSaved)

	// Unknown id is nil, not an error.
	trial, err = repo.GetByID(ctx, uuid.NewString(), "")
	require.NoError(t, err)
	assert.Nil(t, trial)
}

func TestBulkUpsert(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	trials := []*domain.Trial{
		domain.NewTrial("NCT11111111", "First Ingested Study"),
		domain.NewTrial("NCT22222222", "Second Ingested Study"),
	}
	trials[0].Conditions = []string{"Melanoma", "Solid Tumor"}
	require.NoError(t, repo.BulkUpsert(ctx, trials))

	var count int64
	require.NoError(t, db.Model(&TrialModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	// Re-ingesting the same registry ids updates in place.
	trials[0].Title = "First Ingested Study (amended)"
	trials[0].Status = "Recruiting"
	trials[0].Conditions = []string{"Melanoma"}
	require.NoError(t, repo.BulkUpsert(ctx, trials))

	require.NoError(t, db.Model(&TrialModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	reloaded, err := repo.GetByNCTID(ctx, "NCT11111111")
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, "First Ingested Study (amended)", reloaded.Title)
	assert.Equal(t, "Recruiting", reloaded.Status)
	assert.Equal(t, []string{"Melanoma"}, reloaded.Conditions)
}

func TestExpressInterest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	oncID, _ := seedCatalog(t, db)
	viewerID := uuid.NewString()

	repo := NewRepository(db)
	ctx := context.Background()

	interest, err := repo.ExpressInterest(ctx, viewerID, oncID, "I match the criteria")
	require.NoError(t, err)
	assert.NotEmpty(t, interest.ID)
	assert.Equal(t, oncID, interest.TrialID)

	_, err = repo.ExpressInterest(ctx, uuid.NewString(), oncID, "")
	require.NoError(t, err)

	trial, err := repo.GetByID(ctx, oncID, "")
	require.NoError(t, err)
	require.NotNil(t, trial)
	assert.EqualValues(t, 2, trial.Metadata["interest_count"])

	// Unknown trial fails the foreign key.
	_, err = repo.ExpressInterest(ctx, viewerID, uuid.NewString(), "")
	assert.Error(t, err)
}

func TestCount(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	seedCatalog(t, db)

	repo := NewRepository(db)
	ctx := context.Background()

	total, err := repo.Count(ctx, domain.SearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	total, err = repo.Count(ctx, domain.SearchFilter{Statuses: []string{"Recruiting"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
