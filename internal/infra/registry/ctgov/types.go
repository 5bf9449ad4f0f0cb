package ctgov

import (
	"time"

	"trial-catalog-service/internal/domain"
)

// Response represents the study listing payload from the registry.
type Response struct {
	Studies    []Study    `json:"studies"`
	Pagination Pagination `json:"pagination"`
}

// Study represents a single registered study.
type Study struct {
	NCTID          string     `json:"nct_id"`
	Title          string     `json:"brief_title"`
	Summary        string     `json:"brief_summary"`
	Description    string     `json:"detailed_description"`
	Condition      string     `json:"condition"`
	Conditions     []string   `json:"conditions"`
	Phase          string     `json:"phase"`
	Status         string     `json:"overall_status"`
	Sponsor        string     `json:"lead_sponsor"`
	Eligibility    string     `json:"eligibility_criteria"`
	Enrollment     Enrollment `json:"enrollment"`
	StartDate      string     `json:"start_date"`
	CompletionDate string     `json:"completion_date"`
}

// Enrollment holds the study's enrollment figures. Actual may be
// absent when the registry has no reported count yet.
type Enrollment struct {
	Target int  `json:"target"`
	Actual *int `json:"actual"`
}

// Pagination holds paging info for the listing.
type Pagination struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// ToDomain converts a Study to a domain.Trial.
func (s *Study) ToDomain() *domain.Trial {
	trial := domain.NewTrial(s.NCTID, s.Title)
	trial.Summary = s.Summary
	trial.Description = s.Description
	trial.DiseaseArea = s.Condition
	trial.Conditions = s.Conditions
	trial.Phase = s.Phase
	trial.Status = s.Status
	trial.Sponsor = s.Sponsor
	trial.Eligibility = s.Eligibility
	trial.EnrollmentTarget = s.Enrollment.Target
	trial.EnrollmentCurrent = s.Enrollment.Actual

	if t, err := time.Parse("2006-01-02", s.StartDate); err == nil {
		trial.StartDate = &t
	}
	if t, err := time.Parse("2006-01-02", s.CompletionDate); err == nil {
		trial.CompletionDate = &t
	}

	return trial
}
