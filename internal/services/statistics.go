package services

import (
	"math"

	"github.com/rebooked/campus-service/internal/models"
)

type Statistics struct {
	TotalPrograms           int            `json:"total_programs"`
	EligiblePrograms        int            `json:"eligible_programs"`
	EligibilityRate         int            `json:"eligibility_rate"`
	UniversityCount         int            `json:"university_count"`
	FacultyCount            int            `json:"faculty_count"`
	EligibleUniversityCount int            `json:"eligible_university_count"`
	EligibleFacultyCount    int            `json:"eligible_faculty_count"`
	AverageAPS              float64        `json:"average_aps"`
	HighlyCompetitive       int            `json:"highly_competitive"`
	EligibleByUniversity    map[string]int `json:"eligible_by_university"`
	EligibleByFaculty       map[string]int `json:"eligible_by_faculty"`
}

// ComputeStatistics summarises a result set in a single pass.
// EligibilityRate is a rounded percentage; AverageAPS is the mean requirement over all programmes.
func ComputeStatistics(results []models.EligibleDegree) Statistics {
	stats := Statistics{
		TotalPrograms:        len(results),
		EligibleByUniversity: make(map[string]int),
		EligibleByFaculty:    make(map[string]int),
	}

	universities := make(map[string]struct{})
	faculties := make(map[string]struct{})
	apsSum := 0

	for _, r := range results {
		universities[r.University.ID] = struct{}{}
		faculties[r.Degree.Faculty] = struct{}{}
		apsSum += r.Degree.APSRequirement
		if r.Degree.APSRequirement >= HighlyCompetitiveAPS {
			stats.HighlyCompetitive++
		}
		if r.MeetsRequirement {
			stats.EligiblePrograms++
			stats.EligibleByUniversity[r.University.Name]++
			stats.EligibleByFaculty[r.Degree.Faculty]++
		}
	}

	stats.UniversityCount = len(universities)
	stats.FacultyCount = len(faculties)
	stats.EligibleUniversityCount = len(stats.EligibleByUniversity)
	stats.EligibleFacultyCount = len(stats.EligibleByFaculty)

	if stats.TotalPrograms > 0 {
		stats.EligibilityRate = int(math.Round(float64(stats.EligiblePrograms) * 100 / float64(stats.TotalPrograms)))
		stats.AverageAPS = float64(apsSum) / float64(stats.TotalPrograms)
	}

	return stats
}
