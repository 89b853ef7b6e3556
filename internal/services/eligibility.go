package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rebooked/campus-service/internal/models"
)

const (
	MaxAPSRequirement = 60
	MinSubjectLevel   = 1
	MaxSubjectLevel   = 7

	genericEvaluationReason = "Programme requirements could not be evaluated"
)

// subjectAliases lists the names a student may use for a commonly required subject.
var subjectAliases = map[string][]string{
	"mathematics":       {"maths", "math", "pure mathematics", "core mathematics"},
	"english":           {"english home language", "english first additional language", "english hl", "english fal"},
	"physical sciences": {"physical science", "physics", "physical sciences and chemistry"},
	"life sciences":     {"life science", "biology"},
	"accounting":        {"accountancy"},
}

// MatchResult holds the matched degrees of a catalog scan plus the records that were skipped.
type MatchResult struct {
	Degrees     []models.EligibleDegree `json:"degrees"`
	Diagnostics []Diagnostic            `json:"diagnostics,omitempty"`
}

// EvaluateDegree matches one degree against a student's score and subjects.
// A malformed degree is returned as ineligible with a generic reason, together with the error.
func EvaluateDegree(totalScore int, subjects []models.Subject, degree models.Degree, university models.UniversityRef) (models.EligibleDegree, error) {
	result := models.EligibleDegree{Degree: degree, University: university}

	if err := validateDegreeRecord(degree); err != nil {
		result.Reasons = []string{genericEvaluationReason}
		return result, err
	}

	var reasons []string
	if totalScore < degree.APSRequirement {
		gap := degree.APSRequirement - totalScore
		result.APSGap = &gap
		reasons = append(reasons, fmt.Sprintf("APS of %d is below the required %d", totalScore, degree.APSRequirement))
	}

	for _, req := range degree.Subjects {
		if !req.IsRequired {
			continue
		}
		subject, ok := findSubject(subjects, req.Name)
		if !ok {
			reasons = append(reasons, fmt.Sprintf("%s is required", req.Name))
			continue
		}
		if level := LevelForMark(subject.Marks); level < req.Level {
			reasons = append(reasons, fmt.Sprintf("%s requires level %d (you have level %d)", req.Name, req.Level, level))
		}
	}

	result.MeetsRequirement = len(reasons) == 0
	result.Reasons = reasons
	return result, nil
}

// EvaluateScoreOnly compares a bare APS against a degree, ignoring subject requirements.
func EvaluateScoreOnly(totalScore int, degree models.Degree, university models.UniversityRef) models.EligibleDegree {
	result := models.EligibleDegree{
		Degree:           degree,
		University:       university,
		MeetsRequirement: totalScore >= degree.APSRequirement,
	}
	if !result.MeetsRequirement {
		gap := degree.APSRequirement - totalScore
		result.APSGap = &gap
	}
	return result
}

// MatchCatalog evaluates every degree in the catalog. Records that cannot be evaluated are
// left out of the result and reported as diagnostics; they never abort the scan.
func MatchCatalog(totalScore int, subjects []models.Subject, universities []models.University) MatchResult {
	var result MatchResult
	result.Degrees = make([]models.EligibleDegree, 0)

	for _, university := range universities {
		if strings.TrimSpace(university.ID) == "" || strings.TrimSpace(university.Name) == "" {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Scope:    ScopeUniversity,
				RecordID: university.ID,
				Message:  "university is missing an id or name",
			})
			continue
		}
		ref := university.Ref()
		for _, faculty := range university.Faculties {
			for _, degree := range faculty.Degrees {
				if degree.Faculty == "" {
					degree.Faculty = faculty.Name
				}
				eligible, err := EvaluateDegree(totalScore, subjects, degree, ref)
				if err != nil {
					result.Diagnostics = append(result.Diagnostics, Diagnostic{
						Scope:    ScopeDegree,
						RecordID: university.ID + "/" + degree.ID,
						Message:  err.Error(),
					})
					continue
				}
				result.Degrees = append(result.Degrees, eligible)
			}
		}
	}

	return result
}

// NearMisses returns the ineligible degrees whose only shortfall is an APS gap of at most
// maxGap points, closest first.
func NearMisses(results []models.EligibleDegree, maxGap int) []models.EligibleDegree {
	var out []models.EligibleDegree
	for _, r := range results {
		if r.MeetsRequirement || r.APSGap == nil || *r.APSGap > maxGap {
			continue
		}
		if len(r.Reasons) != 1 {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].APSGap < *out[j].APSGap
	})
	return out
}

func validateDegreeRecord(degree models.Degree) error {
	if strings.TrimSpace(degree.Name) == "" {
		return fmt.Errorf("degree %q has no name", degree.ID)
	}
	if degree.APSRequirement < 0 || degree.APSRequirement > MaxAPSRequirement {
		return fmt.Errorf("degree %q has APS requirement %d outside 0-%d", degree.Name, degree.APSRequirement, MaxAPSRequirement)
	}
	for _, req := range degree.Subjects {
		if strings.TrimSpace(req.Name) == "" {
			return fmt.Errorf("degree %q has a subject requirement without a name", degree.Name)
		}
		if req.Level < MinSubjectLevel || req.Level > MaxSubjectLevel {
			return fmt.Errorf("degree %q requires %s at level %d outside %d-%d", degree.Name, req.Name, req.Level, MinSubjectLevel, MaxSubjectLevel)
		}
	}
	return nil
}

func findSubject(subjects []models.Subject, required string) (models.Subject, bool) {
	for _, s := range subjects {
		if subjectMatches(s.Name, required) {
			return s, true
		}
	}
	return models.Subject{}, false
}

// subjectMatches compares names case-insensitively. A student's subject also matches when it
// is an alias of the required subject or extends it with a qualifier ("English Home Language").
func subjectMatches(studentName, required string) bool {
	s := normalizeSubjectName(studentName)
	r := normalizeSubjectName(required)
	if s == "" || r == "" {
		return false
	}
	if s == r || strings.HasPrefix(s, r+" ") {
		return true
	}
	for _, alias := range subjectAliases[r] {
		if s == alias || strings.HasPrefix(s, alias+" ") {
			return true
		}
	}
	return false
}

func normalizeSubjectName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
