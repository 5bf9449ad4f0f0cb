package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"trial-catalog-service/internal/domain"
)

// JSONMap stores a schema-less document in a jsonb column. The value
// round-trips verbatim; this layer never interprets its keys.
type JSONMap map[string]interface{}

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scanning jsonb: unsupported type %T", src)
	}

	return json.Unmarshal(data, m)
}

// TrialModel is the GORM model for the trials table.
type TrialModel struct {
	ID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NCTID *string `gorm:"column:nct_id;type:varchar(20);uniqueIndex:uq_trials_nct_id"`

	Title       string         `gorm:"type:varchar(500);not null"`
	Summary     string         `gorm:"type:text"`
	Description string         `gorm:"type:text"`
	DiseaseArea string         `gorm:"type:varchar(100);index"`
	Conditions  pq.StringArray `gorm:"type:text[]"`
	Phase       string         `gorm:"type:varchar(20);index"`
	Status      string         `gorm:"type:varchar(30);index"`
	Sponsor     string         `gorm:"type:varchar(200)"`
	Eligibility string         `gorm:"type:text"`

	EnrollmentTarget  int  `gorm:"default:0"`
	EnrollmentCurrent *int `gorm:"index"`

	StartDate      *time.Time `gorm:"type:date"`
	CompletionDate *time.Time `gorm:"type:date"`

	Metadata JSONMap `gorm:"type:jsonb;not null;default:'{}'"`

	Sites []TrialSiteModel `gorm:"foreignKey:TrialID"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for TrialModel.
func (TrialModel) TableName() string {
	return "trials"
}

// ToDomain converts TrialModel to domain.Trial.
func (m *TrialModel) ToDomain() *domain.Trial {
	nctID := ""
	if m.NCTID != nil {
		nctID = *m.NCTID
	}

	sites := make([]domain.TrialSite, len(m.Sites))
	for i, s := range m.Sites {
		sites[i] = s.ToDomain()
	}

	return &domain.Trial{
		ID:                m.ID,
		NCTID:             nctID,
		Title:             m.Title,
		Summary:           m.Summary,
		Description:       m.Description,
		DiseaseArea:       m.DiseaseArea,
		Conditions:        m.Conditions,
		Phase:             m.Phase,
		Status:            m.Status,
		Sponsor:           m.Sponsor,
		Eligibility:       m.Eligibility,
		EnrollmentTarget:  m.EnrollmentTarget,
		EnrollmentCurrent: m.EnrollmentCurrent,
		StartDate:         m.StartDate,
		CompletionDate:    m.CompletionDate,
		Metadata:          m.Metadata,
		Sites:             sites,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromDomain creates a TrialModel from domain.Trial.
func FromDomain(t *domain.Trial) *TrialModel {
	var nctID *string
	if t.NCTID != "" {
		v := t.NCTID
		nctID = &v
	}

	return &TrialModel{
		ID:                t.ID,
		NCTID:             nctID,
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
		StartDate:         t.StartDate,
		CompletionDate:    t.CompletionDate,
		Metadata:          JSONMap(t.Metadata),
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// FromDomainSlice converts a slice of domain.Trial to TrialModels.
func FromDomainSlice(trials []*domain.Trial) []*TrialModel {
	models := make([]*TrialModel, len(trials))
	for i, t := range trials {
		models[i] = FromDomain(t)
	}

	return models
}

// TrialSiteModel is the GORM model for the trial_sites table.
type TrialSiteModel struct {
	ID           string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TrialID      string `gorm:"type:uuid;not null;index"`
	SiteName     string `gorm:"type:varchar(300);not null"`
	Country      string `gorm:"type:varchar(100);not null"`
	City         string `gorm:"type:varchar(100);not null"`
	Address      string `gorm:"type:text"`
	ContactEmail string `gorm:"type:varchar(255)"`
	ContactPhone string `gorm:"type:varchar(50)"`
	IsRecruiting bool   `gorm:"default:false"`
}

// TableName returns the table name for TrialSiteModel.
func (TrialSiteModel) TableName() string {
	return "trial_sites"
}

// ToDomain converts TrialSiteModel to domain.TrialSite.
func (m *TrialSiteModel) ToDomain() domain.TrialSite {
	return domain.TrialSite{
		ID:           m.ID,
		TrialID:      m.TrialID,
		SiteName:     m.SiteName,
		Country:      m.Country,
		City:         m.City,
		Address:      m.Address,
		ContactEmail: m.ContactEmail,
		ContactPhone: m.ContactPhone,
		IsRecruiting: m.IsRecruiting,
	}
}

// TrialSaveModel is the GORM model for the trial_saves join table.
// The composite primary key is the uniqueness constraint that makes
// saves idempotent; duplicates are rejected by the database, not by an
// application-level existence check.
type TrialSaveModel struct {
	UserID  string    `gorm:"type:uuid;primaryKey"`
	TrialID string    `gorm:"type:uuid;primaryKey"`
	Notes   string    `gorm:"type:text"`
	SavedAt time.Time `gorm:"autoCreateTime;index"`
}

// TableName returns the table name for TrialSaveModel.
func (TrialSaveModel) TableName() string {
	return "trial_saves"
}

// TrialAlertModel is the GORM model for the trial_alerts table.
type TrialAlertModel struct {
	ID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID string `gorm:"type:uuid;not null;index"`

	TrialID     *string `gorm:"type:uuid"`
	DiseaseArea string  `gorm:"type:varchar(100)"`
	Location    string  `gorm:"type:varchar(200)"`
	Phase       string  `gorm:"type:varchar(20)"`

	FilterCriteria JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	Frequency      string  `gorm:"type:varchar(10);not null;default:'weekly'"`
	IsActive       bool    `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for TrialAlertModel.
func (TrialAlertModel) TableName() string {
	return "trial_alerts"
}

// ToDomain converts TrialAlertModel to domain.AlertSubscription.
func (m *TrialAlertModel) ToDomain() *domain.AlertSubscription {
	trialID := ""
	if m.TrialID != nil {
		trialID = *m.TrialID
	}

	criteria := domain.FilterCriteria(m.FilterCriteria)
	if criteria == nil {
		criteria = domain.FilterCriteria{}
	}

	return &domain.AlertSubscription{
		ID:             m.ID,
		UserID:         m.UserID,
		DiseaseArea:    m.DiseaseArea,
		Location:       m.Location,
		Phase:          m.Phase,
		FilterCriteria: criteria,
		Frequency:      domain.AlertFrequency(m.Frequency),
		IsActive:       m.IsActive,
		TrialID:        trialID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// TrialInterestModel is the GORM model for the trial_interests table.
type TrialInterestModel struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    string    `gorm:"type:uuid;not null;index"`
	TrialID   string    `gorm:"type:uuid;not null;index"`
	Message   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for TrialInterestModel.
func (TrialInterestModel) TableName() string {
	return "trial_interests"
}
