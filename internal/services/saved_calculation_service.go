package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rebooked/campus-service/internal/events"
	"github.com/rebooked/campus-service/internal/models"
	"github.com/rebooked/campus-service/internal/repositories"
	"github.com/rebooked/campus-service/internal/validator"
)

type savedCalculationService struct {
	store     *repositories.CalculationStore
	publisher events.EventPublisher
	validator *validator.Validator
	exclusion models.SubjectExclusion
	logger    *slog.Logger
	opLogger  *ServiceLogger
	now       func() time.Time
}

func NewSavedCalculationService(store *repositories.CalculationStore, publisher events.EventPublisher, validator *validator.Validator, logger *slog.Logger) SavedCalculationService {
	return &savedCalculationService{
		store:     store,
		publisher: publisher,
		validator: validator,
		exclusion: models.LifeOrientationExclusion,
		logger:    logger,
		opLogger:  NewServiceLogger(logger, LogConfig{Service: "aps", Component: "saved_calculations"}),
		now:       time.Now,
	}
}

// Save snapshots the subjects and their score. A persistence failure is returned wrapped in
// ErrPersistenceFailed; the snapshot itself is still valid and is returned alongside it.
func (s *savedCalculationService) Save(ctx context.Context, owner string, req *SaveCalculationRequest) (*models.SavedCalculation, error) {
	op := s.opLogger.WithOperation(ctx, "save_calculation", owner)

	if strings.TrimSpace(owner) == "" {
		op.LogResult("", "saved_calculation", ErrMissingOwner)
		return nil, ErrMissingOwner
	}
	if err := s.validator.Validate(req); err != nil {
		op.LogResult("", "saved_calculation", err)
		return nil, err
	}

	subjects := DeriveSubjects(req.SubjectList())
	createdAt := s.now().UTC()
	snapshot := models.SavedCalculation{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(req.Name),
		Subjects:   subjects,
		TotalScore: TotalScore(subjects, s.exclusion),
		CreatedAt:  createdAt,
	}
	if snapshot.Name == "" {
		snapshot.Name = fmt.Sprintf("Calculation %s", createdAt.Format("2006-01-02 15:04"))
	}

	if err := s.store.Save(ctx, owner, snapshot); err != nil {
		err = fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
		op.LogResult(snapshot.ID, "saved_calculation", err)
		return &snapshot, err
	}

	s.publish(ctx, events.NewCalculationSavedEvent(snapshot.ID, owner, snapshot.Name, snapshot.TotalScore))
	op.LogResult(snapshot.ID, "saved_calculation", nil)
	return &snapshot, nil
}

func (s *savedCalculationService) List(ctx context.Context, owner string) ([]models.SavedCalculation, error) {
	op := s.opLogger.WithReadOperation(ctx, "list_calculations", owner)

	if strings.TrimSpace(owner) == "" {
		op.LogResult("", "saved_calculation", ErrMissingOwner)
		return nil, ErrMissingOwner
	}

	saved, err := s.store.Load(ctx, owner)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
		op.LogResult("", "saved_calculation", err)
		return nil, err
	}
	op.LogResult("", "saved_calculation", nil)
	return saved, nil
}

func (s *savedCalculationService) Get(ctx context.Context, owner, id string) (*models.SavedCalculation, error) {
	saved, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range saved {
		if saved[i].ID == id {
			return &saved[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCalculationNotFound, id)
}

func (s *savedCalculationService) Delete(ctx context.Context, owner, id string) error {
	op := s.opLogger.WithOperation(ctx, "delete_calculation", owner)

	if strings.TrimSpace(owner) == "" {
		op.LogResult(id, "saved_calculation", ErrMissingOwner)
		return ErrMissingOwner
	}

	err := s.store.Delete(ctx, owner, id)
	switch {
	case errors.Is(err, repositories.ErrKeyNotFound):
		err = fmt.Errorf("%w: %s", ErrCalculationNotFound, id)
	case err != nil:
		err = fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	default:
		s.publish(ctx, events.NewCalculationDeletedEvent(id, owner))
	}

	op.LogResult(id, "saved_calculation", err)
	return err
}

func (s *savedCalculationService) publish(ctx context.Context, event *events.CalculationEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish calculation event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
	}
}
