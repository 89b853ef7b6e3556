package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rebooked/campus-service/internal/models"
	"github.com/rebooked/campus-service/internal/validator"
)

type catalogService struct {
	catalog   Catalog
	browse    []models.EligibleDegree
	validator *validator.Validator
	logger    *slog.Logger
}

// NewCatalogService serves a catalog built once at startup. The catalog is never mutated afterwards.
func NewCatalogService(catalog Catalog, validator *validator.Validator, logger *slog.Logger) CatalogService {
	browse := make([]models.EligibleDegree, 0, catalog.DegreeCount())
	for _, entry := range catalog.Flatten() {
		if err := validateDegreeRecord(entry.Degree); err != nil {
			logger.Warn("Skipping malformed degree", "university_id", entry.University.ID, "degree_id", entry.Degree.ID, "error", err)
			continue
		}
		browse = append(browse, entry)
	}

	return &catalogService{
		catalog:   catalog,
		browse:    browse,
		validator: validator,
		logger:    logger,
	}
}

func (s *catalogService) Catalog() Catalog {
	return s.catalog
}

func (s *catalogService) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), s.catalog.Diagnostics...)
}

func (s *catalogService) ListUniversities(ctx context.Context, query *UniversityQuery) ([]UniversitySummary, error) {
	if query == nil {
		query = &UniversityQuery{}
	}
	if err := s.validator.Validate(query); err != nil {
		return nil, err
	}

	var universityType models.UniversityType
	if query.Type != "" {
		universityType, _ = models.ParseUniversityType(query.Type)
	}
	search := strings.ToLower(strings.TrimSpace(query.Search))

	summaries := make([]UniversitySummary, 0, len(s.catalog.Universities))
	for _, u := range s.catalog.Universities {
		if query.Province != "" && !strings.EqualFold(u.Province, query.Province) {
			continue
		}
		if universityType != "" && u.Type != universityType {
			continue
		}
		if query.OpenOnly && !u.ApplicationInfo.IsOpen {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Abbreviation), search) &&
			!strings.Contains(strings.ToLower(u.Location), search) {
			continue
		}
		summaries = append(summaries, UniversitySummary{
			ID:              u.ID,
			Name:            u.Name,
			Abbreviation:    u.Abbreviation,
			Province:        u.Province,
			Location:        u.Location,
			Type:            u.Type,
			FacultyCount:    len(u.Faculties),
			DegreeCount:     u.DegreeCount(),
			ApplicationInfo: u.ApplicationInfo,
		})
	}

	s.logger.Debug("Listed universities", "count", len(summaries))
	return summaries, nil
}

func (s *catalogService) GetUniversity(ctx context.Context, id string) (*models.University, error) {
	university, ok := s.catalog.University(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUniversityNotFound, id)
	}
	return &university, nil
}

// GetDegree returns one browsable degree with its university. Malformed degrees are not served.
func (s *catalogService) GetDegree(ctx context.Context, id string) (*models.EligibleDegree, error) {
	id = strings.TrimSpace(id)
	for i := range s.browse {
		if strings.EqualFold(s.browse[i].Degree.ID, id) {
			entry := s.browse[i]
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDegreeNotFound, id)
}

func (s *catalogService) ListDegrees(ctx context.Context, query *DegreeQuery) (*DegreeListResponse, error) {
	if query == nil {
		query = &DegreeQuery{}
	}
	results, err := s.scored(query)
	if err != nil {
		return nil, err
	}

	unlimited := query.DegreeFilter
	unlimited.Limit = len(results) + 1
	matched := FilterDegrees(results, unlimited)

	shown := FilterDegrees(matched, DegreeFilter{Limit: query.Limit})
	return &DegreeListResponse{
		Degrees: shown,
		Total:   len(matched),
		Shown:   len(shown),
	}, nil
}

func (s *catalogService) DegreeStatistics(ctx context.Context, query *DegreeQuery) (*Statistics, error) {
	if query == nil {
		query = &DegreeQuery{}
	}
	results, err := s.scored(query)
	if err != nil {
		return nil, err
	}

	filter := query.DegreeFilter
	filter.Limit = len(results) + 1
	stats := ComputeStatistics(FilterDegrees(results, filter))
	return &stats, nil
}

// scored validates the query and returns the browse list, evaluated against query.APS when set.
func (s *catalogService) scored(query *DegreeQuery) ([]models.EligibleDegree, error) {
	if err := s.validator.Validate(query); err != nil {
		return nil, err
	}
	if query.MinAPS != nil && query.MaxAPS != nil && *query.MinAPS > *query.MaxAPS {
		return nil, NewBusinessRuleError("aps_range", "min_aps must not be greater than max_aps", map[string]interface{}{
			"min_aps": *query.MinAPS,
			"max_aps": *query.MaxAPS,
		})
	}

	if query.APS == nil {
		return s.browse, nil
	}

	scored := make([]models.EligibleDegree, len(s.browse))
	for i, entry := range s.browse {
		scored[i] = EvaluateScoreOnly(*query.APS, entry.Degree, entry.University)
	}
	return scored, nil
}
