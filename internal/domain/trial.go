// Package domain contains the core business logic and entities.
// This package has no external dependencies (only stdlib).
package domain

import (
	"time"
)

// TrialStatus represents the recruitment status of a trial.
type TrialStatus string

const (
	TrialStatusRecruiting TrialStatus = "Recruiting"
	TrialStatusActive     TrialStatus = "Active"
	TrialStatusCompleted  TrialStatus = "Completed"
	TrialStatusSuspended  TrialStatus = "Suspended"
)

// Trial represents a clinical study in the catalog.
// Trials are created by registry ingestion and never hard-deleted here.
type Trial struct {
	// Primary identifiers
	ID    string `json:"id"`               // Internal UUID
	NCTID string `json:"nct_id,omitempty"` // Registry identifier (unique when present)

	// Descriptive fields
	Title       string   `json:"title"`
	Summary     string   `json:"summary,omitempty"`     // Brief description, indexed for search
	Description string   `json:"description,omitempty"` // Detailed description
	DiseaseArea string   `json:"disease_area,omitempty"`
	Conditions  []string `json:"conditions,omitempty"` // Registry-reported condition terms
	Phase       string   `json:"phase,omitempty"`      // e.g. "Phase 1" .. "Phase 4"
	Status      string   `json:"status,omitempty"`     // e.g. "Recruiting", "Completed"
	Sponsor     string   `json:"sponsor,omitempty"`
	Eligibility string   `json:"eligibility,omitempty"`

	// Enrollment
	EnrollmentTarget  int  `json:"enrollment_target,omitempty"`
	EnrollmentCurrent *int `json:"enrollment_current,omitempty"` // nil when the registry reported nothing

	// Schedule
	StartDate      *time.Time `json:"start_date,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"` // Estimated

	// Open metadata bag (interest counters, registry extras)
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// Associations
	Sites []TrialSite `json:"sites,omitempty"`

	// Viewer annotation, never persisted. False for anonymous viewers.
	IsSaved bool `json:"is_saved"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTrial creates a Trial with initialized timestamps.
func NewTrial(nctID, title string) *Trial {
	now := time.Now().UTC()
	return &Trial{
		NCTID:     nctID,
		Title:     title,
		Metadata:  map[string]interface{}{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsRecruiting reports whether the trial is currently enrolling.
func (t *Trial) IsRecruiting() bool {
	return TrialStatus(t.Status) == TrialStatusRecruiting
}

// TrialSite is a location where a trial runs. Sites are owned by their
// trial and carry the coordinator contact details.
type TrialSite struct {
	ID           string `json:"id"`
	TrialID      string `json:"trial_id"`
	SiteName     string `json:"site_name"`
	Country      string `json:"country"`
	City         string `json:"city"`
	Address      string `json:"address,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	IsRecruiting bool   `json:"is_recruiting"`
}

// TrialSummary is the lightweight row shape returned by search and
// saved-trial listings. Location is the distinct "city, country" pairs
// of the trial's sites joined with "; ".
type TrialSummary struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Phase      string  `json:"phase,omitempty"`
	Status     string  `json:"status,omitempty"`
	Location   string  `json:"location,omitempty"`
	Enrollment *int    `json:"enrollment,omitempty"`
	IsSaved    bool    `json:"is_saved"`
	Rank       float64 `json:"rank"` // Relevance score; zero when no keyword was given
}

// SavedTrialItem is a trial in a viewer's saved list.
type SavedTrialItem struct {
	TrialSummary
	Notes   string    `json:"notes,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

// TrialInterest records that a viewer asked to be contacted about a trial.
type TrialInterest struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TrialID   string    `json:"trial_id"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
