package ctgov

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trial-catalog-service/internal/infra/registry"
)

const testEndpoint = "https://registry.example.com/api/v2/studies"

func newTestClient() *Client {
	cfg := registry.ClientConfig{
		BaseURL: "https://registry.example.com",
		Timeout: 5 * time.Second,
		Retry: registry.RetryConfig{
			MaxAttempts: 3,
			WaitTime:    100 * time.Millisecond,
			MaxWaitTime: 500 * time.Millisecond,
		},
		CB: registry.CBConfig{
			MaxRequests:  5,
			Interval:     60 * time.Second,
			Timeout:      15 * time.Second,
			FailureRatio: 0.6,
		},
	}
	client := New(cfg, zap.NewNop())

	// Activate httpmock for this client's HTTP transport
	httpmock.ActivateNonDefault(client.client.GetClient())

	return client
}

func mockListingResponse() Response {
	actual := 120
	return Response{
		Studies: []Study{
			{
				NCTID:          "NCT01000001",
				Title:          "Safety Study of X",
				Summary:        "A first-in-human safety study.",
				Condition:      "HIV",
				Conditions:     []string{"HIV", "AIDS"},
				Phase:          "Phase 1",
				Status:         "Recruiting",
				Sponsor:        "Pharma Inc",
				Enrollment:     Enrollment{Target: 100, Actual: &actual},
				StartDate:      "2024-03-01",
				CompletionDate: "2026-09-30",
			},
			{
				NCTID:     "NCT01000002",
				Title:     "Efficacy Study of Y",
				Summary:   "A confirmatory efficacy study.",
				Condition: "Malaria",
				Phase:     "Phase 3",
				Status:    "Completed",
				Sponsor:   "Health Org",
			},
		},
		Pagination: Pagination{Total: 2, Page: 1, PerPage: 10},
	}
}

func TestFetch_Success(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testEndpoint,
		httpmock.NewJsonResponderOrPanic(200, mockListingResponse()))

	client := newTestClient()
	trials, err := client.Fetch(context.Background())

	require.NoError(t, err)
	assert.Len(t, trials, 2)

	assert.Equal(t, "NCT01000001", trials[0].NCTID)
	assert.Equal(t, "Safety Study of X", trials[0].Title)
	assert.Equal(t, "HIV", trials[0].DiseaseArea)
	assert.Equal(t, []string{"HIV", "AIDS"}, trials[0].Conditions)
	assert.Equal(t, "Phase 1", trials[0].Phase)
	assert.Equal(t, "Recruiting", trials[0].Status)
	assert.Equal(t, 100, trials[0].EnrollmentTarget)
	require.NotNil(t, trials[0].EnrollmentCurrent)
	assert.Equal(t, 120, *trials[0].EnrollmentCurrent)
	require.NotNil(t, trials[0].StartDate)
	assert.Equal(t, "2024-03-01", trials[0].StartDate.Format("2006-01-02"))

	assert.Equal(t, "NCT01000002", trials[1].NCTID)
	assert.Nil(t, trials[1].EnrollmentCurrent)
	assert.Nil(t, trials[1].StartDate)
}

func TestFetch_SkipsStudiesWithoutRegistryID(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	resp := Response{
		Studies: []Study{
			{NCTID: "", Title: "Unidentified Study"},
			{NCTID: "NCT01000003", Title: "Identified Study"},
		},
	}
	httpmock.RegisterResponder("GET", testEndpoint,
		httpmock.NewJsonResponderOrPanic(200, resp))

	client := newTestClient()
	trials, err := client.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, trials, 1)
	assert.Equal(t, "NCT01000003", trials[0].NCTID)
}

func TestFetch_ServerError(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testEndpoint,
		httpmock.NewStringResponder(http.StatusInternalServerError, "upstream down"))

	client := newTestClient()
	trials, err := client.Fetch(context.Background())

	require.Error(t, err)
	assert.Nil(t, trials)
}

func TestHealthCheck(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://registry.example.com/health",
		httpmock.NewStringResponder(200, "ok"))

	client := newTestClient()
	assert.NoError(t, client.HealthCheck(context.Background()))
}
