package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rebooked/campus-service/internal/events"
	"github.com/rebooked/campus-service/internal/repositories"
	"github.com/rebooked/campus-service/internal/validator"
)

type MockKeyValueStore struct {
	mock.Mock
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockKeyValueStore) Set(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockKeyValueStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func newTestSavedService(kv repositories.KeyValueStore) (SavedCalculationService, *events.MockEventPublisher) {
	publisher := events.NewMockEventPublisher(discardLogger())
	store := repositories.NewCalculationStore(kv, 3)
	return NewSavedCalculationService(store, publisher, validator.New(), discardLogger()), publisher
}

func TestSavedCalculationService_Lifecycle(t *testing.T) {
	service, publisher := newTestSavedService(repositories.NewInMemoryStore())
	ctx := context.Background()

	clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	service.(*savedCalculationService).now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	var ids []string
	for i := 0; i < 4; i++ {
		saved, err := service.Save(ctx, "guest:abc", &SaveCalculationRequest{Subjects: scenarioSubjects()})
		require.NoError(t, err)
		assert.Equal(t, 24, saved.TotalScore)
		assert.NotEmpty(t, saved.ID)
		assert.Contains(t, saved.Name, "Calculation 2026-03-01")
		ids = append(ids, saved.ID)
	}

	list, err := service.List(ctx, "guest:abc")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[3], list[0].ID)
	assert.Equal(t, ids[1], list[2].ID)

	other, err := service.List(ctx, "guest:xyz")
	require.NoError(t, err)
	assert.Empty(t, other)

	got, err := service.Get(ctx, "guest:abc", ids[2])
	require.NoError(t, err)
	assert.Equal(t, ids[2], got.ID)

	_, err = service.Get(ctx, "guest:abc", ids[0])
	assert.True(t, IsNotFound(err))

	require.NoError(t, service.Delete(ctx, "guest:abc", ids[3]))
	err = service.Delete(ctx, "guest:abc", ids[3])
	assert.ErrorIs(t, err, ErrCalculationNotFound)

	var saved, deleted int
	for _, e := range publisher.GetPublishedEvents() {
		switch e.Type {
		case events.EventCalculationSaved:
			saved++
		case events.EventCalculationDeleted:
			deleted++
		}
	}
	assert.Equal(t, 4, saved)
	assert.Equal(t, 1, deleted)
}

func TestSavedCalculationService_RequiresOwner(t *testing.T) {
	service, _ := newTestSavedService(repositories.NewInMemoryStore())
	ctx := context.Background()

	_, err := service.Save(ctx, " ", &SaveCalculationRequest{Subjects: scenarioSubjects()})
	assert.ErrorIs(t, err, ErrMissingOwner)

	_, err = service.List(ctx, "")
	assert.ErrorIs(t, err, ErrMissingOwner)

	assert.ErrorIs(t, service.Delete(ctx, "", "id"), ErrMissingOwner)
}

func TestSavedCalculationService_InvalidSubjects(t *testing.T) {
	service, publisher := newTestSavedService(repositories.NewInMemoryStore())

	_, err := service.Save(context.Background(), "guest:abc", &SaveCalculationRequest{
		Subjects: []SubjectInput{{Name: "English", Marks: 60}},
	})
	assert.True(t, IsValidation(err))
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestSavedCalculationService_PersistenceFailure(t *testing.T) {
	kv := new(MockKeyValueStore)
	kv.On("Get", mock.Anything, "saved_calculations:guest:abc", mock.Anything).Return(repositories.ErrKeyNotFound)
	kv.On("Set", mock.Anything, "saved_calculations:guest:abc", mock.Anything).Return(errors.New("connection refused"))

	service, publisher := newTestSavedService(kv)

	saved, err := service.Save(context.Background(), "guest:abc", &SaveCalculationRequest{Name: "Finals", Subjects: scenarioSubjects()})
	require.Error(t, err)
	assert.True(t, IsPersistence(err))
	require.NotNil(t, saved)
	assert.Equal(t, 24, saved.TotalScore)
	assert.Equal(t, "Finals", saved.Name)
	assert.Empty(t, publisher.GetPublishedEvents())

	kv.AssertExpectations(t)
}

func TestSavedCalculationService_LoadFailure(t *testing.T) {
	kv := new(MockKeyValueStore)
	kv.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("timeout"))

	service, _ := newTestSavedService(kv)

	_, err := service.List(context.Background(), "user:1")
	assert.True(t, IsPersistence(err))

	err = service.Delete(context.Background(), "user:1", "id")
	assert.True(t, IsPersistence(err))
}

func TestExportService(t *testing.T) {
	v := validator.New()
	catalog := NewCatalogService(testCatalog(), v, discardLogger())
	saved, _ := newTestSavedService(repositories.NewInMemoryStore())
	export := NewExportService(saved, catalog, discardLogger())
	ctx := context.Background()

	snapshot, err := saved.Save(ctx, "guest:abc", &SaveCalculationRequest{Name: "Mid Year", Subjects: scenarioSubjects()})
	require.NoError(t, err)

	file, err := export.ExportCalculation(ctx, "guest:abc", snapshot.ID, "csv")
	require.NoError(t, err)
	assert.Equal(t, "aps-mid-year.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	rows, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, resultHeaders, rows[0])
	assert.Equal(t, "no", rows[1][4])

	file, err = export.ExportCalculation(ctx, "guest:abc", snapshot.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "aps-mid-year.xlsx", file.Filename)

	workbook, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer workbook.Close()

	results, err := workbook.GetRows(resultsSheet)
	require.NoError(t, err)
	assert.Len(t, results, 4)

	subjects, err := workbook.GetRows(subjectsSheet)
	require.NoError(t, err)
	assert.Equal(t, subjectHeaders, subjects[0])
	total, err := workbook.GetCellValue(subjectsSheet, "D8")
	require.NoError(t, err)
	assert.Equal(t, "24", total)

	_, err = export.ExportCalculation(ctx, "guest:abc", snapshot.ID, "pdf")
	assert.ErrorIs(t, err, ErrUnsupportedExportFormat)

	_, err = export.ExportCalculation(ctx, "guest:abc", "missing", "csv")
	assert.True(t, IsNotFound(err))
}
