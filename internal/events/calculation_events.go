package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of events this service publishes
type EventType string

const (
	EventCalculationCompleted EventType = "calculation.completed"
	EventCalculationSaved     EventType = "calculation.saved"
	EventCalculationDeleted   EventType = "calculation.deleted"
)

const (
	eventSource  = "campus-service"
	eventVersion = "1.0"
)

// CalculationEvent is the envelope for every published event
type CalculationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type CalculationCompletedEvent struct {
	TotalScore       int `json:"total_score"`
	SubjectCount     int `json:"subject_count"`
	TotalPrograms    int `json:"total_programs"`
	EligiblePrograms int `json:"eligible_programs"`
}

type CalculationSavedEvent struct {
	CalculationID string `json:"calculation_id"`
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	TotalScore    int    `json:"total_score"`
}

type CalculationDeletedEvent struct {
	CalculationID string `json:"calculation_id"`
	Owner         string `json:"owner"`
}

func NewCalculationCompletedEvent(totalScore, subjectCount, totalPrograms, eligiblePrograms int) *CalculationEvent {
	return newEvent(EventCalculationCompleted, CalculationCompletedEvent{
		TotalScore:       totalScore,
		SubjectCount:     subjectCount,
		TotalPrograms:    totalPrograms,
		EligiblePrograms: eligiblePrograms,
	})
}

func NewCalculationSavedEvent(calculationID, owner, name string, totalScore int) *CalculationEvent {
	return newEvent(EventCalculationSaved, CalculationSavedEvent{
		CalculationID: calculationID,
		Owner:         owner,
		Name:          name,
		TotalScore:    totalScore,
	})
}

func NewCalculationDeletedEvent(calculationID, owner string) *CalculationEvent {
	return newEvent(EventCalculationDeleted, CalculationDeletedEvent{
		CalculationID: calculationID,
		Owner:         owner,
	})
}

func newEvent(eventType EventType, data interface{}) *CalculationEvent {
	return &CalculationEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// GenerateEventID returns a random event id
func GenerateEventID() string {
	return uuid.NewString()
}
