package services

import (
	"sort"
	"strings"

	"github.com/rebooked/campus-service/internal/models"
)

const (
	// HighlyCompetitiveAPS is the requirement at or above which a programme counts as highly competitive.
	HighlyCompetitiveAPS = 35
	DefaultDisplayLimit  = 50
)

type DegreeSortKey string

const (
	SortByAPS        DegreeSortKey = "aps"
	SortByName       DegreeSortKey = "name"
	SortByUniversity DegreeSortKey = "university"
)

// DegreeFilter narrows and orders a matched result set. Zero values disable a criterion.
type DegreeFilter struct {
	Search            string        `form:"search" json:"search"`
	MinAPS            *int          `form:"min_aps" json:"min_aps" validate:"omitempty,gte=0,lte=60"`
	MaxAPS            *int          `form:"max_aps" json:"max_aps" validate:"omitempty,gte=0,lte=60"`
	Faculty           string        `form:"faculty" json:"faculty"`
	University        string        `form:"university" json:"university"`
	Level             string        `form:"level" json:"level" validate:"omitempty,oneof=bachelor diploma higher_certificate"`
	EligibleOnly      bool          `form:"eligible_only" json:"eligible_only"`
	HighlyCompetitive bool          `form:"highly_competitive" json:"highly_competitive"`
	SortBy            DegreeSortKey `form:"sort_by" json:"sort_by" validate:"omitempty,degree_sort"`
	SortOrder         string        `form:"sort_order" json:"sort_order" validate:"omitempty,oneof=asc desc"`
	Limit             int           `form:"limit" json:"limit" validate:"omitempty,min=1,max=500"`
}

// FilterDegrees applies the filter to a copy of results, sorts it stably when a sort key is
// set and truncates it to the display limit.
func FilterDegrees(results []models.EligibleDegree, filter DegreeFilter) []models.EligibleDegree {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]models.EligibleDegree, 0, len(results))
	for _, r := range results {
		if filter.EligibleOnly && !r.MeetsRequirement {
			continue
		}
		if filter.HighlyCompetitive && r.Degree.APSRequirement < HighlyCompetitiveAPS {
			continue
		}
		if filter.MinAPS != nil && r.Degree.APSRequirement < *filter.MinAPS {
			continue
		}
		if filter.MaxAPS != nil && r.Degree.APSRequirement > *filter.MaxAPS {
			continue
		}
		if filter.Faculty != "" && !strings.EqualFold(r.Degree.Faculty, filter.Faculty) {
			continue
		}
		if filter.University != "" && !matchesUniversity(r.University, filter.University) {
			continue
		}
		if filter.Level != "" && !strings.EqualFold(string(r.Degree.QualificationLevel()), filter.Level) {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		out = append(out, r)
	}

	SortDegrees(out, filter.SortBy, filter.SortOrder == "desc")

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultDisplayLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SortDegrees orders results in place. Equal keys keep their relative order.
func SortDegrees(results []models.EligibleDegree, key DegreeSortKey, descending bool) {
	var less func(a, b models.EligibleDegree) bool
	switch key {
	case SortByAPS:
		less = func(a, b models.EligibleDegree) bool { return a.Degree.APSRequirement < b.Degree.APSRequirement }
	case SortByName:
		less = func(a, b models.EligibleDegree) bool { return strings.ToLower(a.Degree.Name) < strings.ToLower(b.Degree.Name) }
	case SortByUniversity:
		less = func(a, b models.EligibleDegree) bool {
			return strings.ToLower(a.University.Name) < strings.ToLower(b.University.Name)
		}
	default:
		return
	}

	sort.SliceStable(results, func(i, j int) bool {
		if descending {
			return less(results[j], results[i])
		}
		return less(results[i], results[j])
	})
}

func matchesUniversity(u models.UniversityRef, query string) bool {
	return strings.EqualFold(u.ID, query) ||
		strings.EqualFold(u.Name, query) ||
		strings.EqualFold(u.Abbreviation, query)
}

func matchesSearch(r models.EligibleDegree, search string) bool {
	fields := []string{r.Degree.Name, r.Degree.Description, r.Degree.Faculty, r.University.Name, r.University.Abbreviation}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}
