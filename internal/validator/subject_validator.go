package validator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/rebooked/campus-service/internal/errors"
	"github.com/rebooked/campus-service/internal/models"
)

// MinimumSubjectCount is the fewest contributing subjects an APS may be computed from.
const MinimumSubjectCount = 4

// SubjectSet is implemented by requests that carry a student's subject list.
type SubjectSet interface {
	SubjectList() []models.Subject
}

// BusinessValidator checks the rules struct tags cannot express.
type BusinessValidator struct {
	exclusion models.SubjectExclusion
}

func NewBusinessValidator(exclusion models.SubjectExclusion) *BusinessValidator {
	return &BusinessValidator{exclusion: exclusion}
}

// Validate dispatches on the request type; unknown types have no business rules.
func (v *BusinessValidator) Validate(s interface{}) ValidationErrors {
	switch req := s.(type) {
	case SubjectSet:
		return v.ValidateSubjects(req.SubjectList())
	case []models.Subject:
		return v.ValidateSubjects(req)
	}
	return nil
}

// ValidateSubjects enforces the calculator rules: at least four contributing subjects,
// an English and a Mathematics subject, numeric marks and no repeated subject.
// Marks outside 0-100 are accepted; PointsForMark clamps them.
func (v *BusinessValidator) ValidateSubjects(subjects []models.Subject) ValidationErrors {
	var errs ValidationErrors

	seen := make(map[string]struct{}, len(subjects))
	contributing := 0
	hasEnglish, hasMathematics := false, false

	for i, subject := range subjects {
		name := strings.ToLower(strings.TrimSpace(subject.Name))
		if name == "" {
			errs = append(errs, *apperrors.NewRuleViolation(fmt.Sprintf("subjects[%d].name", i), "required", "", subject.Name))
			continue
		}
		if math.IsNaN(subject.Marks) {
			errs = append(errs, *apperrors.NewRuleViolation(fmt.Sprintf("subjects[%d].marks", i), "subject_marks", "", subject.Marks))
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, *apperrors.NewRuleViolation(fmt.Sprintf("subjects[%d].name", i), "unique_subject", "", subject.Name))
			continue
		}
		seen[name] = struct{}{}

		if v.exclusion.Excludes(name) {
			continue
		}
		contributing++
		if strings.Contains(name, "english") {
			hasEnglish = true
		}
		if strings.Contains(name, "mathemat") || name == "maths" {
			hasMathematics = true
		}
	}

	if contributing < MinimumSubjectCount {
		errs = append(errs, *apperrors.NewRuleViolation("subjects", "min_subjects", strconv.Itoa(MinimumSubjectCount), contributing))
	}
	if !hasEnglish {
		errs = append(errs, *apperrors.NewRuleViolation("subjects", "required_subject", "English", nil))
	}
	if !hasMathematics {
		errs = append(errs, *apperrors.NewRuleViolation("subjects", "required_subject", "Mathematics", nil))
	}

	return errs
}
