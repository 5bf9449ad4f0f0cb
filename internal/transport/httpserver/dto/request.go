// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import "trial-catalog-service/internal/domain"

// SearchRequest represents the query parameters for browsing trials.
type SearchRequest struct {
	Keyword      string   `query:"keyword" validate:"max=200"`
	DiseaseAreas []string `query:"disease_areas"`
	Phases       []string `query:"phases"`
	Statuses     []string `query:"statuses"`
	Location     string   `query:"location" validate:"max=120"`
	Sponsor      string   `query:"sponsor" validate:"max=120"`
	Page         int      `query:"page" validate:"omitempty,min=1"`
	Limit        int      `query:"limit" validate:"omitempty,min=1,max=100"`
	SortBy       string   `query:"sort_by" validate:"omitempty,oneof=relevance newest enrollment"`
}

// ToSearchFilter converts SearchRequest to domain.SearchFilter. Unset
// pagination and sort fields are filled by the domain defaults.
func (r *SearchRequest) ToSearchFilter() domain.SearchFilter {
	return domain.SearchFilter{
		Keyword:      r.Keyword,
		DiseaseAreas: r.DiseaseAreas,
		Phases:       r.Phases,
		Statuses:     r.Statuses,
		Location:     r.Location,
		Sponsor:      r.Sponsor,
		Page:         r.Page,
		Limit:        r.Limit,
		SortBy:       domain.SortField(r.SortBy),
	}
}

// SaveTrialRequest is the optional body for bookmarking a trial.
type SaveTrialRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

// InterestRequest is the optional body for expressing interest in a trial.
type InterestRequest struct {
	Message string `json:"message" validate:"max=1000"`
}

// CreateAlertRequest is the body for creating an alert subscription.
type CreateAlertRequest struct {
	DiseaseArea    string                 `json:"disease_area" validate:"max=120"`
	Location       string                 `json:"location" validate:"max=120"`
	Phase          string                 `json:"phase" validate:"max=40"`
	FilterCriteria map[string]interface{} `json:"filter_criteria"`
	Frequency      string                 `json:"alert_frequency" validate:"omitempty,oneof=instant daily weekly"`
	TrialID        string                 `json:"trial_id" validate:"omitempty,uuid"`
}

// ToDomain converts CreateAlertRequest to a domain.AlertSubscription.
func (r *CreateAlertRequest) ToDomain() *domain.AlertSubscription {
	return &domain.AlertSubscription{
		DiseaseArea:    r.DiseaseArea,
		Location:       r.Location,
		Phase:          r.Phase,
		FilterCriteria: domain.FilterCriteria(r.FilterCriteria),
		Frequency:      domain.AlertFrequency(r.Frequency),
		TrialID:        r.TrialID,
	}
}

// UpdateAlertRequest is the body for partially updating an alert.
// Absent fields are left untouched; filter_criteria is replaced
// wholesale when present.
type UpdateAlertRequest struct {
	DiseaseArea    *string                `json:"disease_area"`
	Location       *string                `json:"location"`
	Phase          *string                `json:"phase"`
	FilterCriteria map[string]interface{} `json:"filter_criteria"`
	Frequency      *string                `json:"alert_frequency" validate:"omitempty,oneof=instant daily weekly"`
	IsActive       *bool                  `json:"is_active"`
	TrialID        *string                `json:"trial_id" validate:"omitempty,uuid"`
}

// ToUpdate converts UpdateAlertRequest to a domain.AlertUpdate.
func (r *UpdateAlertRequest) ToUpdate() domain.AlertUpdate {
	upd := domain.AlertUpdate{
		DiseaseArea: r.DiseaseArea,
		Location:    r.Location,
		Phase:       r.Phase,
		IsActive:    r.IsActive,
		TrialID:     r.TrialID,
	}
	if r.FilterCriteria != nil {
		upd.FilterCriteria = domain.FilterCriteria(r.FilterCriteria)
	}
	if r.Frequency != nil {
		f := domain.AlertFrequency(*r.Frequency)
		upd.Frequency = &f
	}

	return upd
}
