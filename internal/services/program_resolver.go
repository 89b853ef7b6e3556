package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rebooked/campus-service/internal/models"
)

const (
	MinGeneratedAPS = 20
	MaxGeneratedAPS = 42
)

// AdjustAPS derives a university's APS requirement from a programme's base APS.
// Traditional universities add 3 for competitive programmes and 1 otherwise, universities of
// technology subtract 2, comprehensive universities keep the base. The result is clamped.
func AdjustAPS(base int, universityType models.UniversityType, competitive bool) int {
	adjusted := base
	switch universityType {
	case models.UniversityTraditional:
		if competitive {
			adjusted += 3
		} else {
			adjusted++
		}
	case models.UniversityOfTechnology:
		adjusted -= 2
	}
	return clampAPS(adjusted)
}

func clampAPS(aps int) int {
	if aps < MinGeneratedAPS {
		return MinGeneratedAPS
	}
	if aps > MaxGeneratedAPS {
		return MaxGeneratedAPS
	}
	return aps
}

// Slug lowercases name and joins its alphanumeric runs with hyphens.
func Slug(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// ResolvePrograms generates the degrees a university offers from the rule table.
// Ids take the form {universityID}-{slug(name)}-{index} where index is the rule's position.
// exclusions names programmes this university never offers, matched case-insensitively.
func ResolvePrograms(universityID string, universityType models.UniversityType, rules []models.ProgramRule, exclusions []string) []models.Degree {
	excluded := make(map[string]struct{}, len(exclusions))
	for _, name := range exclusions {
		excluded[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}

	degrees := make([]models.Degree, 0, len(rules))
	for i, rule := range rules {
		if !rule.Allocation.Includes(universityID) {
			continue
		}
		if _, skip := excluded[strings.ToLower(strings.TrimSpace(rule.Name))]; skip {
			continue
		}
		degrees = append(degrees, models.Degree{
			ID:              fmt.Sprintf("%s-%s-%d", universityID, Slug(rule.Name), i),
			Name:            rule.Name,
			Faculty:         rule.Faculty,
			Duration:        rule.Duration,
			APSRequirement:  AdjustAPS(rule.BaseAPS, universityType, rule.Competitive),
			Description:     rule.Description,
			Subjects:        append([]models.SubjectRequirement(nil), rule.Subjects...),
			CareerProspects: append([]string(nil), rule.CareerProspects...),
		})
	}
	return degrees
}

// ValidateProgramRules rejects a rule table that cannot be generated from.
func ValidateProgramRules(rules []models.ProgramRule) error {
	seen := make(map[string]int, len(rules))
	for i, rule := range rules {
		if strings.TrimSpace(rule.Name) == "" {
			return fmt.Errorf("program rule %d has no name", i)
		}
		if strings.TrimSpace(rule.Faculty) == "" {
			return fmt.Errorf("program rule %q has no faculty", rule.Name)
		}
		if rule.BaseAPS <= 0 {
			return fmt.Errorf("program rule %q has base APS %d", rule.Name, rule.BaseAPS)
		}
		slug := Slug(rule.Name)
		if prev, dup := seen[slug]; dup {
			return fmt.Errorf("program rules %d and %d share the name %q", prev, i, rule.Name)
		}
		seen[slug] = i
	}
	return nil
}
