package models

import "time"

// EligibleDegree is the outcome of matching one degree against a student's results.
// APSGap is set only when the score falls short of the requirement.
type EligibleDegree struct {
	Degree           Degree        `json:"degree"`
	University       UniversityRef `json:"university"`
	MeetsRequirement bool          `json:"meets_requirement"`
	APSGap           *int          `json:"aps_gap,omitempty"`
	Reasons          []string      `json:"reasons,omitempty"`
}

type APSCalculation struct {
	Subjects        []Subject        `json:"subjects"`
	TotalScore      int              `json:"total_score"`
	EligibleDegrees []EligibleDegree `json:"eligible_degrees"`
	CalculatedAt    time.Time        `json:"calculated_at"`
}

// SavedCalculation is the snapshot a student keeps between sessions.
type SavedCalculation struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Subjects   []Subject `json:"subjects"`
	TotalScore int       `json:"total_score"`
	CreatedAt  time.Time `json:"created_at"`
}
