package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebooked/campus-service/internal/catalog"
	"github.com/rebooked/campus-service/internal/events"
	"github.com/rebooked/campus-service/internal/models"
	"github.com/rebooked/campus-service/internal/repositories"
	"github.com/rebooked/campus-service/internal/services"
	"github.com/rebooked/campus-service/internal/utils"
	"github.com/rebooked/campus-service/internal/validator"
)

const strongSubjects = `{"subjects": [
	{"name": "English Home Language", "marks": 82},
	{"name": "Mathematics", "marks": 91},
	{"name": "Physical Sciences", "marks": 85},
	{"name": "Life Sciences", "marks": 78},
	{"name": "Accounting", "marks": 74},
	{"name": "Geography", "marks": 69},
	{"name": "Life Orientation", "marks": 95}
]}`

func newTestRouter(t *testing.T, parser TokenParser) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base, err := catalog.NewEmbeddedProvider(logger).Universities(context.Background())
	require.NoError(t, err)

	manager := services.NewServiceManager(services.ServiceOptions{
		Catalog:    services.BuildCatalog(base, catalog.DefaultProgramRules(), catalog.DefaultExclusions()),
		Store:      repositories.NewInMemoryStore(),
		StoreLimit: 20,
		Publisher:  events.NewMockEventPublisher(logger),
		Validator:  validator.New(),
		Logger:     logger,
	})

	router := gin.New()
	router.Use(utils.RequestID())
	NewHandlerManager(manager, parser, utils.NewSlogLogger(logger)).SetupRoutes(router)
	return router
}

func perform(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, nil)
	w := perform(router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestCalculate(t *testing.T) {
	router := newTestRouter(t, nil)

	w := perform(router, http.MethodPost, "/api/v1/aps/calculate", strongSubjects, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp services.CalculationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// 7 + 7 + 7 + 6 + 6 + 5, Life Orientation excluded
	assert.Equal(t, 38, resp.Calculation.TotalScore)
	assert.Len(t, resp.Calculation.Subjects, 7)
	assert.Greater(t, resp.Statistics.TotalPrograms, 0)
	assert.Greater(t, resp.Statistics.EligiblePrograms, 0)
	assert.NotEmpty(t, resp.Calculation.EligibleDegrees)
}

func TestCalculate_TooFewSubjects(t *testing.T) {
	router := newTestRouter(t, nil)

	body := `{"subjects": [
		{"name": "English", "marks": 70},
		{"name": "Mathematics", "marks": 70},
		{"name": "Life Orientation", "marks": 90}
	]}`
	w := perform(router, http.MethodPost, "/api/v1/aps/calculate", body, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp.Message)
	assert.Contains(t, w.Body.String(), "min_subjects")
}

func TestCalculate_OutOfRangeMarks(t *testing.T) {
	router := newTestRouter(t, nil)

	body := `{"subjects": [
		{"name": "English", "marks": 75},
		{"name": "Mathematics", "marks": 105},
		{"name": "Physical Sciences", "marks": 70},
		{"name": "Life Sciences", "marks": 65},
		{"name": "Geography", "marks": -5}
	]}`
	w := perform(router, http.MethodPost, "/api/v1/aps/calculate", body, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp services.CalculationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// 6 + 7 + 6 + 5 + 0
	assert.Equal(t, 24, resp.Calculation.TotalScore)
}

func TestCalculate_MalformedBody(t *testing.T) {
	router := newTestRouter(t, nil)
	w := perform(router, http.MethodPost, "/api/v1/aps/calculate", `{"subjects": "lots"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPoints(t *testing.T) {
	router := newTestRouter(t, nil)

	w := perform(router, http.MethodPost, "/api/v1/aps/points", `{"marks": 80}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp services.PointsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Points)
	assert.Equal(t, 7, resp.Level)

	w = perform(router, http.MethodPost, "/api/v1/aps/points", `{"marks": 120}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Points)

	w = perform(router, http.MethodPost, "/api/v1/aps/points", `{"marks": -5}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Points)

	w = perform(router, http.MethodPost, "/api/v1/aps/points", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUniversities(t *testing.T) {
	router := newTestRouter(t, nil)

	w := perform(router, http.MethodGet, "/api/v1/universities?type=university_of_technology", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Universities []services.UniversitySummary `json:"universities"`
		Total        int                          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Total)

	w = perform(router, http.MethodGet, "/api/v1/universities?type=college", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodGet, "/api/v1/universities/wits", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var wits models.University
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wits))
	assert.Equal(t, "University of the Witwatersrand", wits.Name)

	w = perform(router, http.MethodGet, "/api/v1/universities/hogwarts", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDegrees(t *testing.T) {
	router := newTestRouter(t, nil)

	w := perform(router, http.MethodGet, "/api/v1/degrees?aps=30&eligible_only=true&sort_by=aps&sort_order=desc&limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp services.DegreeListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Degrees)
	assert.LessOrEqual(t, len(resp.Degrees), 5)
	assert.GreaterOrEqual(t, resp.Total, resp.Shown)
	for i, d := range resp.Degrees {
		assert.True(t, d.MeetsRequirement)
		assert.LessOrEqual(t, d.Degree.APSRequirement, 30)
		if i > 0 {
			assert.LessOrEqual(t, d.Degree.APSRequirement, resp.Degrees[i-1].Degree.APSRequirement)
		}
	}

	w = perform(router, http.MethodGet, "/api/v1/degrees?min_aps=40&max_aps=30", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "aps_range")

	w = perform(router, http.MethodGet, "/api/v1/degrees/uct-bsc-eng-mechanical", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var degree models.EligibleDegree
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &degree))
	assert.Equal(t, 42, degree.Degree.APSRequirement)
	assert.Equal(t, "uct", degree.University.ID)

	w = perform(router, http.MethodGet, "/api/v1/degrees/no-such-degree", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(router, http.MethodGet, "/api/v1/degrees?sort_by=popularity", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodGet, "/api/v1/degrees/stats?aps=30", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats services.Statistics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, resp.Total, stats.EligiblePrograms)
}

func TestCalculations_Lifecycle(t *testing.T) {
	router := newTestRouter(t, nil)
	guest := map[string]string{GuestIDHeader: "guest-123"}

	w := perform(router, http.MethodGet, "/api/v1/calculations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	body := `{"name": "Prelims", ` + strongSubjects[1:]
	w = perform(router, http.MethodPost, "/api/v1/calculations", body, guest)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data models.SavedCalculation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Prelims", created.Data.Name)
	assert.Equal(t, 38, created.Data.TotalScore)
	id := created.Data.ID

	w = perform(router, http.MethodGet, "/api/v1/calculations", "", guest)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)

	w = perform(router, http.MethodGet, "/api/v1/calculations", "", map[string]string{GuestIDHeader: "someone-else"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), id)

	w = perform(router, http.MethodGet, "/api/v1/calculations/"+id+"/export?format=csv", "", guest)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "aps-prelims.csv")
	assert.Contains(t, w.Body.String(), "University,Faculty,Degree")

	w = perform(router, http.MethodGet, "/api/v1/calculations/"+id+"/export?format=pdf", "", guest)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodDelete, "/api/v1/calculations/"+id, "", guest)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = perform(router, http.MethodDelete, "/api/v1/calculations/"+id, "", guest)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalculations_BearerToken(t *testing.T) {
	parser := func(token string) (string, error) {
		if token == "good-token" {
			return "user-7", nil
		}
		return "", errors.New("bad signature")
	}
	router := newTestRouter(t, parser)

	w := perform(router, http.MethodGet, "/api/v1/calculations", "", map[string]string{"Authorization": "Bearer good-token"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(router, http.MethodGet, "/api/v1/calculations", "", map[string]string{"Authorization": "Bearer forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(router, http.MethodGet, "/api/v1/calculations", "", map[string]string{"Authorization": "Basic abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCatalogDiagnostics(t *testing.T) {
	router := newTestRouter(t, nil)
	w := perform(router, http.MethodGet, "/api/v1/catalog/diagnostics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "generated_programs")
}
