package domain

import (
	"time"
)

// AlertFrequency is how often a subscription expects to be evaluated.
type AlertFrequency string

const (
	AlertFrequencyInstant AlertFrequency = "instant"
	AlertFrequencyDaily   AlertFrequency = "daily"
	AlertFrequencyWeekly  AlertFrequency = "weekly"
)

// IsValid reports whether the frequency is a known value.
func (f AlertFrequency) IsValid() bool {
	switch f {
	case AlertFrequencyInstant, AlertFrequencyDaily, AlertFrequencyWeekly:
		return true
	}
	return false
}

// FilterCriteria is the schema-less filter bag attached to an alert.
// It round-trips through storage verbatim; keys are not interpreted here.
type FilterCriteria map[string]interface{}

// AlertSubscription is a viewer-owned standing filter intended for
// future matching against catalog changes. Only its owner may read,
// update or delete it.
type AlertSubscription struct {
	ID     string `json:"alert_id"`
	UserID string `json:"-"`

	DiseaseArea string `json:"disease_area,omitempty"`
	Location    string `json:"location,omitempty"`
	Phase       string `json:"phase,omitempty"`

	FilterCriteria FilterCriteria `json:"filter_criteria"`
	Frequency      AlertFrequency `json:"alert_frequency"`
	IsActive       bool           `json:"is_active"`
	TrialID        string         `json:"trial_id,omitempty"` // Pinned trial, optional

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AlertUpdate carries a partial update of an alert subscription.
// Nil fields are left untouched; FilterCriteria is replaced wholesale.
type AlertUpdate struct {
	DiseaseArea    *string
	Location       *string
	Phase          *string
	FilterCriteria FilterCriteria
	Frequency      *AlertFrequency
	IsActive       *bool
	TrialID        *string
}

// IsEmpty reports whether the update carries no fields at all.
func (u AlertUpdate) IsEmpty() bool {
	return u.DiseaseArea == nil &&
		u.Location == nil &&
		u.Phase == nil &&
		u.FilterCriteria == nil &&
		u.Frequency == nil &&
		u.IsActive == nil &&
		u.TrialID == nil
}
