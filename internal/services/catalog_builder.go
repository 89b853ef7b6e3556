package services

import (
	"fmt"
	"strings"

	"github.com/rebooked/campus-service/internal/models"
)

const (
	ScopeCatalog    = "catalog"
	ScopeUniversity = "university"
	ScopeFaculty    = "faculty"
	ScopeDegree     = "degree"
)

// Diagnostic describes a record that was skipped or a build step that fell back.
type Diagnostic struct {
	Scope    string `json:"scope"`
	RecordID string `json:"record_id,omitempty"`
	Message  string `json:"message"`
}

// Catalog is the materialised university catalog every other component reads from.
// It is built once by the composition root and never mutated afterwards.
type Catalog struct {
	Universities      []models.University `json:"universities"`
	Diagnostics       []Diagnostic        `json:"diagnostics,omitempty"`
	GeneratedPrograms int                 `json:"generated_programs"`
}

// BuildCatalog augments the base universities with the programmes the rule table assigns to
// them. Static degrees win over generated ones with the same name. If the rule table is
// invalid the base list is returned unchanged with a diagnostic. base is never modified.
func BuildCatalog(base []models.University, rules []models.ProgramRule, exclusions map[string][]string) Catalog {
	catalog := Catalog{Universities: cloneUniversities(base)}

	if err := ValidateProgramRules(rules); err != nil {
		catalog.Diagnostics = append(catalog.Diagnostics, Diagnostic{
			Scope:   ScopeCatalog,
			Message: fmt.Sprintf("program generation skipped: %v", err),
		})
		return catalog
	}

	excluded := normalizeExclusions(exclusions)
	for i := range catalog.Universities {
		university := &catalog.Universities[i]
		if university.ID == "" {
			catalog.Diagnostics = append(catalog.Diagnostics, Diagnostic{
				Scope:   ScopeUniversity,
				Message: fmt.Sprintf("university %q has no id, programmes not generated", university.Name),
			})
			continue
		}
		universityType, ok := models.ParseUniversityType(string(university.Type))
		if !ok {
			catalog.Diagnostics = append(catalog.Diagnostics, Diagnostic{
				Scope:    ScopeUniversity,
				RecordID: university.ID,
				Message:  fmt.Sprintf("unknown university type %q, programmes not generated", university.Type),
			})
			continue
		}

		generated := ResolvePrograms(university.ID, universityType, rules, excluded[strings.ToLower(strings.TrimSpace(university.ID))])
		catalog.GeneratedPrograms += mergeDegrees(university, generated)
	}

	return catalog
}

// normalizeExclusions keys the exclusion map by lowercased university id, merging keys that
// differ only in case.
func normalizeExclusions(exclusions map[string][]string) map[string][]string {
	out := make(map[string][]string, len(exclusions))
	for id, names := range exclusions {
		key := strings.ToLower(strings.TrimSpace(id))
		out[key] = append(out[key], names...)
	}
	return out
}

// University returns the university with the given id.
func (c Catalog) University(id string) (models.University, bool) {
	for _, u := range c.Universities {
		if strings.EqualFold(u.ID, id) {
			return u, true
		}
	}
	return models.University{}, false
}

// DegreeCount counts every degree across the catalog.
func (c Catalog) DegreeCount() int {
	total := 0
	for _, u := range c.Universities {
		total += u.DegreeCount()
	}
	return total
}

// Flatten lists every (university, degree) pair without evaluating eligibility.
func (c Catalog) Flatten() []models.EligibleDegree {
	out := make([]models.EligibleDegree, 0, c.DegreeCount())
	for _, u := range c.Universities {
		ref := u.Ref()
		for _, f := range u.Faculties {
			for _, d := range f.Degrees {
				if d.Faculty == "" {
					d.Faculty = f.Name
				}
				out = append(out, models.EligibleDegree{Degree: d, University: ref})
			}
		}
	}
	return out
}

func mergeDegrees(university *models.University, generated []models.Degree) int {
	existing := make(map[string]struct{})
	for _, f := range university.Faculties {
		for _, d := range f.Degrees {
			existing[strings.ToLower(d.Name)] = struct{}{}
		}
	}

	added := 0
	for _, degree := range generated {
		if _, dup := existing[strings.ToLower(degree.Name)]; dup {
			continue
		}
		idx := facultyIndex(university.Faculties, degree.Faculty)
		if idx < 0 {
			university.Faculties = append(university.Faculties, models.Faculty{
				ID:   university.ID + "-" + Slug(degree.Faculty),
				Name: degree.Faculty,
			})
			idx = len(university.Faculties) - 1
		}
		university.Faculties[idx].Degrees = append(university.Faculties[idx].Degrees, degree)
		existing[strings.ToLower(degree.Name)] = struct{}{}
		added++
	}
	return added
}

func facultyIndex(faculties []models.Faculty, name string) int {
	for i, f := range faculties {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

func cloneUniversities(base []models.University) []models.University {
	out := make([]models.University, len(base))
	for i, u := range base {
		out[i] = u
		out[i].Faculties = make([]models.Faculty, len(u.Faculties))
		for j, f := range u.Faculties {
			out[i].Faculties[j] = f
			out[i].Faculties[j].Degrees = append([]models.Degree(nil), f.Degrees...)
		}
	}
	return out
}
