package models

import "strings"

// Subject is a single final-year subject result entered by a student.
// Level and Points are derived from Marks and are recomputed on every calculation.
type Subject struct {
	Name   string  `json:"name" validate:"required,min=2,max=100"`
	Marks  float64 `json:"marks" validate:"subject_marks"`
	Level  int     `json:"level"`
	Points int     `json:"points"`
}

// SubjectRequirement is a subject a degree asks for, at a minimum NSC achievement level.
type SubjectRequirement struct {
	Name       string `json:"name"`
	Level      int    `json:"level"`
	IsRequired bool   `json:"is_required"`
}

// SubjectExclusion decides which subjects do not contribute to the APS total.
// Matching is a case-insensitive substring match on the subject name.
type SubjectExclusion struct {
	pattern string
}

// LifeOrientationExclusion is the exclusion applied by every calculator in this service.
var LifeOrientationExclusion = NewSubjectExclusion("life orientation")

func NewSubjectExclusion(pattern string) SubjectExclusion {
	return SubjectExclusion{pattern: strings.ToLower(strings.TrimSpace(pattern))}
}

// Excludes reports whether the named subject is left out of the total.
func (e SubjectExclusion) Excludes(name string) bool {
	if e.pattern == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), e.pattern)
}
