package services

import (
	"context"

	"github.com/rebooked/campus-service/internal/models"
)

// ===== SERVICE INTERFACES =====

type APSService interface {
	Calculate(ctx context.Context, req *CalculateRequest) (*CalculationResponse, error)
	PointsFor(marks float64) (*PointsResponse, error)
}

type CatalogService interface {
	ListUniversities(ctx context.Context, query *UniversityQuery) ([]UniversitySummary, error)
	GetUniversity(ctx context.Context, id string) (*models.University, error)
	GetDegree(ctx context.Context, id string) (*models.EligibleDegree, error)
	ListDegrees(ctx context.Context, query *DegreeQuery) (*DegreeListResponse, error)
	DegreeStatistics(ctx context.Context, query *DegreeQuery) (*Statistics, error)
	Diagnostics() []Diagnostic
	Catalog() Catalog
}

type SavedCalculationService interface {
	Save(ctx context.Context, owner string, req *SaveCalculationRequest) (*models.SavedCalculation, error)
	List(ctx context.Context, owner string) ([]models.SavedCalculation, error)
	Get(ctx context.Context, owner, id string) (*models.SavedCalculation, error)
	Delete(ctx context.Context, owner, id string) error
}

type ExportService interface {
	ExportCalculation(ctx context.Context, owner, id, format string) (*ExportFile, error)
}

// ===== REQUEST / RESPONSE TYPES =====

type SubjectInput struct {
	Name  string  `json:"name" validate:"required,min=2,max=100"`
	Marks float64 `json:"marks" validate:"subject_marks"`
}

type CalculateRequest struct {
	Subjects []SubjectInput `json:"subjects" validate:"required,max=15,dive"`
	Filter   DegreeFilter   `json:"filter"`
}

// SubjectList converts the request rows to subjects for the business validator.
func (r *CalculateRequest) SubjectList() []models.Subject {
	return subjectsFromInput(r.Subjects)
}

type CalculationResponse struct {
	Calculation models.APSCalculation   `json:"calculation"`
	Statistics  Statistics              `json:"statistics"`
	NearMisses  []models.EligibleDegree `json:"near_misses"`
	Diagnostics []Diagnostic            `json:"diagnostics,omitempty"`
}

type PointsResponse struct {
	Marks  float64 `json:"marks"`
	Points int     `json:"points"`
	Level  int     `json:"level"`
}

type UniversityQuery struct {
	Province string `form:"province" json:"province"`
	Type     string `form:"type" json:"type" validate:"omitempty,university_type"`
	Search   string `form:"search" json:"search"`
	OpenOnly bool   `form:"open_only" json:"open_only"`
}

type UniversitySummary struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Abbreviation    string                 `json:"abbreviation"`
	Province        string                 `json:"province"`
	Location        string                 `json:"location"`
	Type            models.UniversityType  `json:"type"`
	FacultyCount    int                    `json:"faculty_count"`
	DegreeCount     int                    `json:"degree_count"`
	ApplicationInfo models.ApplicationInfo `json:"application_info"`
}

// DegreeQuery is a browse request. APS, when present, scores every programme against it.
type DegreeQuery struct {
	DegreeFilter
	APS *int `form:"aps" json:"aps" validate:"omitempty,gte=0,lte=60"`
}

type DegreeListResponse struct {
	Degrees []models.EligibleDegree `json:"degrees"`
	Total   int                     `json:"total"`
	Shown   int                     `json:"shown"`
}

type SaveCalculationRequest struct {
	Name     string         `json:"name" validate:"max=100"`
	Subjects []SubjectInput `json:"subjects" validate:"required,max=15,dive"`
}

func (r *SaveCalculationRequest) SubjectList() []models.Subject {
	return subjectsFromInput(r.Subjects)
}

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

func subjectsFromInput(inputs []SubjectInput) []models.Subject {
	subjects := make([]models.Subject, len(inputs))
	for i, in := range inputs {
		subjects[i] = models.Subject{Name: in.Name, Marks: in.Marks}
	}
	return subjects
}
