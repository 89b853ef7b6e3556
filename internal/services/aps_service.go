package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rebooked/campus-service/internal/events"
	"github.com/rebooked/campus-service/internal/models"
	"github.com/rebooked/campus-service/internal/validator"
)

// DefaultNearMissGap is how far below a requirement a score may fall and still be listed as a near miss.
const DefaultNearMissGap = 3

type apsService struct {
	catalog     CatalogService
	publisher   events.EventPublisher
	validator   *validator.Validator
	exclusion   models.SubjectExclusion
	nearMissGap int
	logger      *slog.Logger
	opLogger    *ServiceLogger
	now         func() time.Time
}

func NewAPSService(catalog CatalogService, publisher events.EventPublisher, validator *validator.Validator, nearMissGap int, logger *slog.Logger) APSService {
	if nearMissGap <= 0 {
		nearMissGap = DefaultNearMissGap
	}
	return &apsService{
		catalog:     catalog,
		publisher:   publisher,
		validator:   validator,
		exclusion:   models.LifeOrientationExclusion,
		nearMissGap: nearMissGap,
		logger:      logger,
		opLogger:    NewServiceLogger(logger, LogConfig{Service: "aps", Component: "calculator"}),
		now:         time.Now,
	}
}

func (s *apsService) Calculate(ctx context.Context, req *CalculateRequest) (*CalculationResponse, error) {
	op := s.opLogger.WithOperation(ctx, "calculate", "")

	if err := s.validator.Validate(req); err != nil {
		var errs ValidationErrors
		if errors.As(err, &errs) {
			s.opLogger.LogValidationError(ctx, "calculate", errs)
		}
		op.LogResult("", "calculation", err)
		return nil, err
	}

	subjects := DeriveSubjects(req.SubjectList())
	total := TotalScore(subjects, s.exclusion)

	match := MatchCatalog(total, subjects, s.catalog.Catalog().Universities)
	if len(match.Diagnostics) > 0 {
		s.opLogger.LogDiagnostics(ctx, "calculate", match.Diagnostics)
	}

	// Without an explicit order the display cap keeps the most attainable programmes.
	filter := req.Filter
	if filter.SortBy == "" {
		filter.SortBy = SortByAPS
	}

	stats := ComputeStatistics(match.Degrees)
	response := &CalculationResponse{
		Calculation: models.APSCalculation{
			Subjects:        subjects,
			TotalScore:      total,
			EligibleDegrees: FilterDegrees(match.Degrees, filter),
			CalculatedAt:    s.now().UTC(),
		},
		Statistics:  stats,
		NearMisses:  NearMisses(match.Degrees, s.nearMissGap),
		Diagnostics: match.Diagnostics,
	}
	if response.NearMisses == nil {
		response.NearMisses = []models.EligibleDegree{}
	}

	event := events.NewCalculationCompletedEvent(total, len(subjects), stats.TotalPrograms, stats.EligiblePrograms)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish calculation event", "event_id", event.ID, "error", err)
	}

	op.LogResult("", "calculation", nil)
	return response, nil
}

func (s *apsService) PointsFor(marks float64) (*PointsResponse, error) {
	if err := s.validator.ValidateStruct(SubjectInput{Name: "marks", Marks: marks}); err != nil {
		return nil, ValidationErrors{*NewValidationError("marks", "must be a numeric mark", marks)}
	}
	return &PointsResponse{
		Marks:  marks,
		Points: PointsForMark(marks),
		Level:  LevelForMark(marks),
	}, nil
}
