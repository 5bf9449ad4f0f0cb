package domain

import (
	"fmt"
	"strings"
)

// SortField represents the order of search results.
type SortField string

const (
	SortRelevance  SortField = "relevance"  // ts_rank over title+summary, needs a keyword
	SortNewest     SortField = "newest"     // created_at descending
	SortEnrollment SortField = "enrollment" // enrollment_current descending, nulls last
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// SearchFilter holds the filters, sort and pagination for a trial search.
// All filters are optional; multi-valued filters OR within the set and
// AND across filter kinds. Building a SearchFilter never touches storage.
type SearchFilter struct {
	Keyword      string
	DiseaseAreas []string
	Phases       []string
	Statuses     []string
	Location     string // Substring match against site country/city
	Sponsor      string // Substring match against sponsor name

	Page   int
	Limit  int
	SortBy SortField
}

// Normalize trims the keyword and fills defaults for unset pagination
// and sort fields. It never rejects input; see Validate.
func (f *SearchFilter) Normalize() {
	f.Keyword = strings.TrimSpace(f.Keyword)
	if f.Page == 0 {
		f.Page = DefaultPage
	}
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if f.SortBy == "" {
		f.SortBy = SortRelevance
	}
}

// Validate rejects out-of-range pagination and unknown sort keys.
// Relevance without a keyword is allowed; ordering falls back to newest.
func (f *SearchFilter) Validate() error {
	if f.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidFilter, f.Page)
	}
	if f.Limit < 1 || f.Limit > MaxLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d, got %d", ErrInvalidFilter, MaxLimit, f.Limit)
	}
	switch f.SortBy {
	case SortRelevance, SortNewest, SortEnrollment:
		return nil
	default:
		return fmt.Errorf("%w: unknown sort key %q", ErrInvalidFilter, f.SortBy)
	}
}

// HasKeyword reports whether a non-blank keyword is present.
func (f *SearchFilter) HasKeyword() bool {
	return strings.TrimSpace(f.Keyword) != ""
}

// EffectiveSort resolves the ordering actually applied: relevance
// requested without a keyword degrades to newest-first rather than
// erroring, so callers never see meaningless rank ordering.
func (f *SearchFilter) EffectiveSort() SortField {
	if f.SortBy == SortRelevance && !f.HasKeyword() {
		return SortNewest
	}
	return f.SortBy
}

// Offset calculates the database offset for pagination.
func (f *SearchFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// SearchResult is the standard pagination envelope.
type SearchResult struct {
	Items []TrialSummary `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Pages int            `json:"pages"`
}

// NewSearchResult assembles the envelope from a page of rows and the
// independently counted total. Pages is ceil(total/limit); zero only
// when total is zero since limit >= 1 is enforced upstream.
func NewSearchResult(items []TrialSummary, total int64, filter SearchFilter) *SearchResult {
	if items == nil {
		items = []TrialSummary{}
	}
	pages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))

	return &SearchResult{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
		Pages: pages,
	}
}
