package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventPublisher(t *testing.T) {
	publisher := NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	require.NoError(t, publisher.Publish(ctx, NewCalculationCompletedEvent(32, 7, 120, 45)))
	require.NoError(t, publisher.Publish(ctx, NewCalculationSavedEvent("calc-1", "guest-1", "Grade 12 prelims", 32)))

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, EventCalculationCompleted, published[0].Type)
	assert.Equal(t, EventCalculationSaved, published[1].Type)

	saved, ok := published[1].Data.(CalculationSavedEvent)
	require.True(t, ok)
	assert.Equal(t, "calc-1", saved.CalculationID)
	assert.Equal(t, 32, saved.TotalScore)

	publisher.ClearEvents()
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestCalculationEvent_Envelope(t *testing.T) {
	event := NewCalculationDeletedEvent("calc-9", "user-3")

	assert.NotEmpty(t, event.ID)
	assert.NotEqual(t, event.ID, NewCalculationDeletedEvent("calc-9", "user-3").ID)
	assert.Equal(t, "campus-service", event.Source)
	assert.Equal(t, "1.0", event.Version)

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "calculation.deleted", decoded["type"])
	assert.Equal(t, "calc-9", decoded["data"].(map[string]interface{})["calculation_id"])
}

func TestMockEventPublisher_BoundedHistory(t *testing.T) {
	publisher := NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	for i := 0; i < mockEventHistory+5; i++ {
		require.NoError(t, publisher.Publish(ctx, NewCalculationCompletedEvent(i, 7, 10, 1)))
	}

	published := publisher.GetPublishedEvents()
	require.Len(t, published, mockEventHistory)
	first, ok := published[0].Data.(CalculationCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, 5, first.TotalScore)
}
