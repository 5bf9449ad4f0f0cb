package dto

import (
	"time"

	"trial-catalog-service/internal/app/service"
	"trial-catalog-service/internal/domain"
)

// TrialSummaryResponse is a single row in search and saved listings.
type TrialSummaryResponse struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Phase      string  `json:"phase,omitempty"`
	Status     string  `json:"status,omitempty"`
	Location   string  `json:"location,omitempty"`
	Enrollment *int    `json:"enrollment,omitempty"`
	IsSaved    bool    `json:"is_saved"`
	Rank       float64 `json:"rank"`
}

// FromTrialSummary converts domain.TrialSummary to TrialSummaryResponse.
func FromTrialSummary(s domain.TrialSummary) TrialSummaryResponse {
	return TrialSummaryResponse{
		ID:         s.ID,
		Title:      s.Title,
		Phase:      s.Phase,
		Status:     s.Status,
		Location:   s.Location,
		Enrollment: s.Enrollment,
		IsSaved:    s.IsSaved,
		Rank:       s.Rank,
	}
}

// SearchResponse is the pagination envelope for trial searches.
type SearchResponse struct {
	Items []TrialSummaryResponse `json:"items"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
	Pages int                    `json:"pages"`
}

// FromSearchResult converts domain.SearchResult to SearchResponse.
func FromSearchResult(result *domain.SearchResult) SearchResponse {
	items := make([]TrialSummaryResponse, len(result.Items))
	for i, s := range result.Items {
		items[i] = FromTrialSummary(s)
	}

	return SearchResponse{
		Items: items,
		Total: result.Total,
		Page:  result.Page,
		Limit: result.Limit,
		Pages: result.Pages,
	}
}

// TrialSiteResponse is one location of a trial.
type TrialSiteResponse struct {
	ID           string `json:"id"`
	SiteName     string `json:"site_name"`
	Country      string `json:"country"`
	City         string `json:"city"`
	Address      string `json:"address,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	IsRecruiting bool   `json:"is_recruiting"`
}

// TrialDetailResponse is the full trial record.
type TrialDetailResponse struct {
	ID                string                 `json:"id"`
	NCTID             string                 `json:"nct_id,omitempty"`
	Title             string                 `json:"title"`
	Summary           string                 `json:"summary,omitempty"`
	Description       string                 `json:"description,omitempty"`
	DiseaseArea       string                 `json:"disease_area,omitempty"`
	Conditions        []string               `json:"conditions,omitempty"`
	Phase             string                 `json:"phase,omitempty"`
	Status            string                 `json:"status,omitempty"`
	Sponsor           string                 `json:"sponsor,omitempty"`
	Eligibility       string                 `json:"eligibility,omitempty"`
	EnrollmentTarget  int                    `json:"enrollment_target,omitempty"`
	EnrollmentCurrent *int                   `json:"enrollment_current,omitempty"`
	StartDate         string                 `json:"start_date,omitempty"`
	CompletionDate    string                 `json:"completion_date,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
	Sites             []TrialSiteResponse    `json:"sites"`
	IsSaved           bool                   `json:"is_saved"`
	CreatedAt         string                 `json:"created_at"`
	UpdatedAt         string                 `json:"updated_at"`
}

// FromDomainTrial converts domain.Trial to TrialDetailResponse.
func FromDomainTrial(t *domain.Trial) TrialDetailResponse {
	sites := make([]TrialSiteResponse, len(t.Sites))
	for i, s := range t.Sites {
		sites[i] = TrialSiteResponse{
			ID:           s.ID,
			SiteName:     s.SiteName,
			Country:      s.Country,
			City:         s.City,
			Address:      s.Address,
			ContactEmail: s.ContactEmail,
			ContactPhone: s.ContactPhone,
			IsRecruiting: s.IsRecruiting,
		}
	}

	resp := TrialDetailResponse{
		ID:                t.ID,
		NCTID:             t.NCTID,
		Title:             t.Title,
		Summary:           t.Summary,
		Description:       t.Description,
		DiseaseArea:       t.DiseaseArea,
		Conditions:        t.Conditions,
		Phase:             t.Phase,
		Status:            t.Status,
		Sponsor:           t.Sponsor,
		Eligibility:       t.Eligibility,
		EnrollmentTarget:  t.EnrollmentTarget,
		EnrollmentCurrent: t.EnrollmentCurrent,
		Metadata:          t.Metadata,
		Sites:             sites,
		IsSaved:           t.IsSaved,
		CreatedAt:         t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         t.UpdatedAt.Format(time.RFC3339),
	}
	if t.StartDate != nil {
		resp.StartDate = t.StartDate.Format("2006-01-02")
	}
	if t.CompletionDate != nil {
		resp.CompletionDate = t.CompletionDate.Format("2006-01-02")
	}

	return resp
}

// SavedTrialResponse is one entry in a viewer's saved list.
type SavedTrialResponse struct {
	TrialSummaryResponse
	Notes   string `json:"notes,omitempty"`
	SavedAt string `json:"saved_at"`
}

// SavedTrialsResponse is the envelope for the saved list.
type SavedTrialsResponse struct {
	Items []SavedTrialResponse `json:"items"`
	Total int                  `json:"total"`
}

// FromSavedItems converts a slice of domain.SavedTrialItem.
func FromSavedItems(items []domain.SavedTrialItem) SavedTrialsResponse {
	resp := SavedTrialsResponse{
		Items: make([]SavedTrialResponse, len(items)),
		Total: len(items),
	}
	for i, it := range items {
		resp.Items[i] = SavedTrialResponse{
			TrialSummaryResponse: FromTrialSummary(it.TrialSummary),
			Notes:                it.Notes,
			SavedAt:              it.SavedAt.Format(time.RFC3339),
		}
	}

	return resp
}

// AlertResponse is a single alert subscription.
type AlertResponse struct {
	AlertID        string                 `json:"alert_id"`
	DiseaseArea    string                 `json:"disease_area,omitempty"`
	Location       string                 `json:"location,omitempty"`
	Phase          string                 `json:"phase,omitempty"`
	FilterCriteria map[string]interface{} `json:"filter_criteria"`
	Frequency      string                 `json:"alert_frequency"`
	IsActive       bool                   `json:"is_active"`
	TrialID        string                 `json:"trial_id,omitempty"`
	CreatedAt      string                 `json:"created_at"`
	UpdatedAt      string                 `json:"updated_at"`
}

// FromAlert converts domain.AlertSubscription to AlertResponse.
func FromAlert(a *domain.AlertSubscription) AlertResponse {
	return AlertResponse{
		AlertID:        a.ID,
		DiseaseArea:    a.DiseaseArea,
		Location:       a.Location,
		Phase:          a.Phase,
		FilterCriteria: a.FilterCriteria,
		Frequency:      string(a.Frequency),
		IsActive:       a.IsActive,
		TrialID:        a.TrialID,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      a.UpdatedAt.Format(time.RFC3339),
	}
}

// AlertsResponse is the envelope for the alert list.
type AlertsResponse struct {
	Items []AlertResponse `json:"items"`
	Total int             `json:"total"`
}

// FromAlerts converts a slice of domain.AlertSubscription.
func FromAlerts(alerts []domain.AlertSubscription) AlertsResponse {
	resp := AlertsResponse{
		Items: make([]AlertResponse, len(alerts)),
		Total: len(alerts),
	}
	for i := range alerts {
		resp.Items[i] = FromAlert(&alerts[i])
	}

	return resp
}

// InterestResponse confirms a recorded participation interest.
type InterestResponse struct {
	ID        string `json:"id"`
	TrialID   string `json:"trial_id"`
	Message   string `json:"message,omitempty"`
	CreatedAt string `json:"created_at"`
}

// FromInterest converts domain.TrialInterest to InterestResponse.
func FromInterest(i *domain.TrialInterest) InterestResponse {
	return InterestResponse{
		ID:        i.ID,
		TrialID:   i.TrialID,
		Message:   i.Message,
		CreatedAt: i.CreatedAt.Format(time.RFC3339),
	}
}

// SyncResultResponse represents the response for one registry ingestion.
type SyncResultResponse struct {
	Registry string `json:"registry"`
	Count    int    `json:"count"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// SyncResponse represents the response for a full ingestion run.
type SyncResponse struct {
	Results []SyncResultResponse `json:"results"`
	Summary SyncSummary          `json:"summary"`
}

// SyncSummary holds the aggregate outcome of an ingestion run.
type SyncSummary struct {
	TotalSynced    int `json:"total_synced"`
	RegistriesOK   int `json:"registries_ok"`
	RegistriesFail int `json:"registries_fail"`
}

// FromSyncResults converts service.SyncResult slice to SyncResponse.
func FromSyncResults(results []service.SyncResult) SyncResponse {
	resp := SyncResponse{
		Results: make([]SyncResultResponse, len(results)),
	}

	for i, r := range results {
		errMsg := ""
		if r.Error != nil {
			errMsg = r.Error.Error()
			resp.Summary.RegistriesFail++
		} else {
			resp.Summary.TotalSynced += r.Count
			resp.Summary.RegistriesOK++
		}

		resp.Results[i] = SyncResultResponse{
			Registry: r.Registry,
			Count:    r.Count,
			Duration: r.Duration.String(),
			Error:    errMsg,
		}
	}

	return resp
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
