package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rebooked/campus-service/internal/models"
)

func mathematics(level int) models.SubjectRequirement {
	return models.SubjectRequirement{Name: "Mathematics", Level: level, IsRequired: true}
}

func english(level int) models.SubjectRequirement {
	return models.SubjectRequirement{Name: "English", Level: level, IsRequired: true}
}

func physicalSciences(level int) models.SubjectRequirement {
	return models.SubjectRequirement{Name: "Physical Sciences", Level: level, IsRequired: true}
}

func lifeSciences(level int) models.SubjectRequirement {
	return models.SubjectRequirement{Name: "Life Sciences", Level: level, IsRequired: true}
}

// DefaultProgramRules is the programme table generated across the catalog.
// Rule order is part of every generated degree id; append new rules at the end.
func DefaultProgramRules() []models.ProgramRule {
	return []models.ProgramRule{
		{
			Name:            "Bachelor of Medicine and Bachelor of Surgery",
			Faculty:         "Health Sciences",
			BaseAPS:         40,
			Competitive:     true,
			Allocation:      models.AllocateOnly("uct", "wits", "up"),
			Duration:        "6 years",
			Description:     "Professional medical degree leading to registration as a doctor.",
			Subjects:        []models.SubjectRequirement{mathematics(6), physicalSciences(6), lifeSciences(6), english(5)},
			CareerProspects: []string{"Medical Doctor", "Surgeon", "Researcher"},
		},
		{
			Name:            "Bachelor of Laws",
			Faculty:         "Law",
			BaseAPS:         34,
			Competitive:     true,
			Allocation:      models.AllocateExcept("tut", "cput"),
			Duration:        "4 years",
			Description:     "Undergraduate law degree for admission as an attorney or advocate.",
			Subjects:        []models.SubjectRequirement{english(6)},
			CareerProspects: []string{"Attorney", "Advocate", "Legal Advisor"},
		},
		{
			Name:            "Bachelor of Commerce in Economics",
			Faculty:         "Economic & Management Sciences",
			BaseAPS:         30,
			Allocation:      models.AllocateAll(),
			Duration:        "3 years",
			Description:     "Micro and macroeconomics with quantitative methods.",
			Subjects:        []models.SubjectRequirement{mathematics(4), english(4)},
			CareerProspects: []string{"Economist", "Financial Analyst"},
		},
		{
			Name:            "Bachelor of Science in Information Technology",
			Faculty:         "Information Technology",
			BaseAPS:         32,
			Allocation:      models.AllocateExcept("unisa"),
			Duration:        "3 years",
			Description:     "Programming, networks and information systems.",
			Subjects:        []models.SubjectRequirement{mathematics(5), english(4)},
			CareerProspects: []string{"Software Developer", "Network Engineer", "Systems Analyst"},
		},
		{
			Name:            "Bachelor of Education in Senior Phase Teaching",
			Faculty:         "Education",
			BaseAPS:         26,
			Allocation:      models.AllocateAll(),
			Duration:        "4 years",
			Description:     "Teacher training for Grades 7 to 9.",
			Subjects:        []models.SubjectRequirement{english(4)},
			CareerProspects: []string{"Teacher", "Education Specialist"},
		},
		{
			Name:            "Bachelor of Nursing",
			Faculty:         "Health Sciences",
			BaseAPS:         30,
			Competitive:     true,
			Allocation:      models.AllocateExcept("unisa", "cput"),
			Duration:        "4 years",
			Description:     "Comprehensive nursing and midwifery.",
			Subjects:        []models.SubjectRequirement{lifeSciences(4), english(4)},
			CareerProspects: []string{"Professional Nurse", "Midwife"},
		},
		{
			Name:            "Diploma in Information Technology",
			Faculty:         "Information & Communication Technology",
			BaseAPS:         26,
			Allocation:      models.AllocateOnly("tut", "cput", "uj"),
			Duration:        "3 years",
			Description:     "Applied IT support, development and networking.",
			Subjects:        []models.SubjectRequirement{mathematics(3), english(4)},
			CareerProspects: []string{"IT Technician", "Junior Developer"},
		},
		{
			Name:            "Diploma in Civil Engineering",
			Faculty:         "Engineering & the Built Environment",
			BaseAPS:         28,
			Allocation:      models.AllocateOnly("tut", "cput", "uj"),
			Duration:        "3 years",
			Description:     "Construction, surveying and structural technology.",
			Subjects:        []models.SubjectRequirement{mathematics(4), physicalSciences(4)},
			CareerProspects: []string{"Civil Engineering Technician", "Site Agent"},
		},
		{
			Name:            "Bachelor of Social Work",
			Faculty:         "Humanities",
			BaseAPS:         28,
			Allocation:      models.AllocateExcept("tut", "cput"),
			Duration:        "4 years",
			Description:     "Professional social work practice and community development.",
			Subjects:        []models.SubjectRequirement{english(4)},
			CareerProspects: []string{"Social Worker", "Community Developer"},
		},
		{
			Name:            "Higher Certificate in Accounting",
			Faculty:         "Economic & Management Sciences",
			BaseAPS:         20,
			Allocation:      models.AllocateOnly("unisa", "tut", "uj"),
			Duration:        "1 year",
			Description:     "Bookkeeping and financial administration.",
			Subjects:        []models.SubjectRequirement{{Name: "Mathematics", Level: 3, IsRequired: false}},
			CareerProspects: []string{"Bookkeeper", "Accounts Clerk"},
		},
	}
}

// DefaultExclusions lists programmes a university never offers even when its allocation allows it.
func DefaultExclusions() map[string][]string {
	return map[string][]string{
		"unisa": {"Bachelor of Social Work"},
		"uct":   {"Bachelor of Education in Senior Phase Teaching"},
	}
}

// RuleSet is the on-disk form of a programme table.
type RuleSet struct {
	Rules      []models.ProgramRule `json:"rules"`
	Exclusions map[string][]string  `json:"exclusions,omitempty"`
}

// LoadRuleSet reads a programme table from JSON. An empty path returns the built-in table.
func LoadRuleSet(path string) (RuleSet, error) {
	if path == "" {
		return RuleSet{Rules: DefaultProgramRules(), Exclusions: DefaultExclusions()}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("failed to read program rules %s: %w", path, err)
	}

	var set RuleSet
	if err := json.Unmarshal(data, &set); err != nil {
		return RuleSet{}, fmt.Errorf("failed to decode program rules %s: %w", path, err)
	}
	return set, nil
}
