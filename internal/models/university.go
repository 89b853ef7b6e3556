package models

import "strings"

type UniversityType string

const (
	UniversityTraditional   UniversityType = "traditional"
	UniversityComprehensive UniversityType = "comprehensive"
	UniversityOfTechnology  UniversityType = "university_of_technology"
)

// ParseUniversityType accepts both the stored form and the display names used in the catalog.
func ParseUniversityType(value string) (UniversityType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "traditional", "traditional university":
		return UniversityTraditional, true
	case "comprehensive", "comprehensive university":
		return UniversityComprehensive, true
	case "university_of_technology", "university of technology", "uot":
		return UniversityOfTechnology, true
	}
	return "", false
}

type DegreeLevel string

const (
	DegreeLevelBachelor          DegreeLevel = "bachelor"
	DegreeLevelDiploma           DegreeLevel = "diploma"
	DegreeLevelHigherCertificate DegreeLevel = "higher_certificate"
)

type Degree struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Faculty         string               `json:"faculty"`
	Duration        string               `json:"duration"`
	APSRequirement  int                  `json:"aps_requirement"`
	Description     string               `json:"description"`
	Subjects        []SubjectRequirement `json:"subjects,omitempty"`
	CareerProspects []string             `json:"career_prospects,omitempty"`
	Level           DegreeLevel          `json:"level,omitempty"`
}

// QualificationLevel returns the declared level, falling back to the name of the programme.
func (d Degree) QualificationLevel() DegreeLevel {
	if d.Level != "" {
		return d.Level
	}
	name := strings.ToLower(d.Name)
	switch {
	case strings.Contains(name, "higher certificate"):
		return DegreeLevelHigherCertificate
	case strings.Contains(name, "diploma"):
		return DegreeLevelDiploma
	default:
		return DegreeLevelBachelor
	}
}

type Faculty struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Degrees     []Degree `json:"degrees"`
}

type ApplicationInfo struct {
	IsOpen         bool   `json:"is_open"`
	OpeningDate    string `json:"opening_date,omitempty"`
	ClosingDate    string `json:"closing_date,omitempty"`
	ApplicationFee string `json:"application_fee,omitempty"`
	ApplicationURL string `json:"application_url,omitempty"`
}

type University struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Abbreviation      string          `json:"abbreviation"`
	Province          string          `json:"province"`
	Location          string          `json:"location"`
	Type              UniversityType  `json:"type"`
	Faculties         []Faculty       `json:"faculties"`
	StudentPopulation int             `json:"student_population,omitempty"`
	EstablishedYear   int             `json:"established_year,omitempty"`
	ApplicationInfo   ApplicationInfo `json:"application_info"`
}

// UniversityRef is the slice of a university carried alongside each matched degree.
type UniversityRef struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Abbreviation string         `json:"abbreviation"`
	Province     string         `json:"province"`
	Type         UniversityType `json:"type"`
}

func (u University) Ref() UniversityRef {
	return UniversityRef{
		ID:           u.ID,
		Name:         u.Name,
		Abbreviation: u.Abbreviation,
		Province:     u.Province,
		Type:         u.Type,
	}
}

func (u University) DegreeCount() int {
	count := 0
	for _, f := range u.Faculties {
		count += len(f.Degrees)
	}
	return count
}
