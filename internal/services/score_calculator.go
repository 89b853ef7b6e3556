package services

import (
	"math"

	"github.com/rebooked/campus-service/internal/models"
)

const MaxMark = 100

// pointBreakpoints maps the lower bound of each NSC mark band to its APS points.
var pointBreakpoints = []struct {
	min    float64
	points int
}{
	{80, 7},
	{70, 6},
	{60, 5},
	{50, 4},
	{40, 3},
	{30, 2},
	{0, 1},
}

// PointsForMark converts a percentage mark to APS points.
// NaN and negative marks score 0; marks above 100 are treated as 100.
func PointsForMark(mark float64) int {
	if math.IsNaN(mark) || mark < 0 {
		return 0
	}
	if mark > MaxMark {
		mark = MaxMark
	}
	for _, bp := range pointBreakpoints {
		if mark >= bp.min {
			return bp.points
		}
	}
	return 0
}

// LevelForMark returns the NSC achievement level (1-7) for a mark.
// The level bands coincide with the APS point bands.
func LevelForMark(mark float64) int {
	return PointsForMark(mark)
}

func NewSubject(name string, marks float64) models.Subject {
	return models.Subject{
		Name:   name,
		Marks:  marks,
		Level:  LevelForMark(marks),
		Points: PointsForMark(marks),
	}
}

// DeriveSubjects returns a copy of subjects with level and points recomputed from marks.
func DeriveSubjects(subjects []models.Subject) []models.Subject {
	derived := make([]models.Subject, len(subjects))
	for i, s := range subjects {
		derived[i] = NewSubject(s.Name, s.Marks)
	}
	return derived
}

// ContributingSubjects drops the subjects matched by the exclusion.
func ContributingSubjects(subjects []models.Subject, exclusion models.SubjectExclusion) []models.Subject {
	out := make([]models.Subject, 0, len(subjects))
	for _, s := range subjects {
		if !exclusion.Excludes(s.Name) {
			out = append(out, s)
		}
	}
	return out
}

// TotalScore sums the points of every contributing subject.
func TotalScore(subjects []models.Subject, exclusion models.SubjectExclusion) int {
	total := 0
	for _, s := range ContributingSubjects(subjects, exclusion) {
		total += PointsForMark(s.Marks)
	}
	return total
}
