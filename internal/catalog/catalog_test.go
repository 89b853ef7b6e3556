package catalog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rebooked/campus-service/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEmbeddedProvider(t *testing.T) {
	universities, err := NewEmbeddedProvider(discardLogger()).Universities(context.Background())
	require.NoError(t, err)
	require.Len(t, universities, 7)

	ids := make(map[string]models.UniversityType)
	for _, u := range universities {
		ids[u.ID] = u.Type
		assert.NotEmpty(t, u.Faculties, u.ID)
		for _, f := range u.Faculties {
			for _, d := range f.Degrees {
				assert.Equal(t, f.Name, d.Faculty, d.ID)
			}
		}
	}
	assert.Equal(t, models.UniversityTraditional, ids["uct"])
	assert.Equal(t, models.UniversityComprehensive, ids["unisa"])
	assert.Equal(t, models.UniversityOfTechnology, ids["cput"])
}

func TestJSONFileProvider_SkipsIncompleteRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	content := `[
		{"id": "", "name": "Nameless", "type": "traditional"},
		{"id": "nwu", "name": "North-West University", "type": "Comprehensive University",
		 "faculties": [{"id": "nwu-law", "name": "Law", "degrees": [
			{"id": "nwu-llb", "name": "LLB", "aps_requirement": 30},
			{"id": "", "name": "Broken", "aps_requirement": 20}
		 ]}]},
		{"id": "mystery", "name": "Mystery College", "type": "college"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	universities, err := NewJSONFileProvider(path, discardLogger()).Universities(context.Background())
	require.NoError(t, err)
	require.Len(t, universities, 1)

	nwu := universities[0]
	assert.Equal(t, models.UniversityComprehensive, nwu.Type)
	require.Len(t, nwu.Faculties[0].Degrees, 1)
	assert.Equal(t, "Law", nwu.Faculties[0].Degrees[0].Faculty)
}

func TestJSONFileProvider_Errors(t *testing.T) {
	_, err := NewJSONFileProvider(filepath.Join(t.TempDir(), "missing.json"), discardLogger()).Universities(context.Background())
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = NewJSONFileProvider(path, discardLogger()).Universities(context.Background())
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider("", discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &JSONProvider{}, provider)

	provider, err = NewProvider("catalog.XLSX", discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &ExcelProvider{}, provider)

	_, err = NewProvider("catalog.csv", discardLogger())
	assert.Error(t, err)
}

func TestWorkbookRoundTrip(t *testing.T) {
	seed, err := NewEmbeddedProvider(discardLogger()).Universities(context.Background())
	require.NoError(t, err)

	buf, err := WriteWorkbook(seed)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	loaded, err := NewExcelProvider(path, discardLogger()).Universities(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, len(seed))

	for i := range seed {
		assert.Equal(t, seed[i].ID, loaded[i].ID)
		assert.Equal(t, seed[i].Type, loaded[i].Type)
		assert.Equal(t, seed[i].ApplicationInfo, loaded[i].ApplicationInfo)
		assert.Equal(t, seed[i].DegreeCount(), loaded[i].DegreeCount())
	}

	uct := loaded[0]
	degree := uct.Faculties[0].Degrees[0]
	assert.Equal(t, 42, degree.APSRequirement)
	assert.Equal(t, seed[0].Faculties[0].Degrees[0].Subjects, degree.Subjects)
	assert.Equal(t, []string{"Mechanical Engineer", "Design Engineer"}, degree.CareerProspects)
}

func TestReadWorkbook_SkipsInvalidRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet(UniversitiesSheet)
	require.NoError(t, err)
	_, err = f.NewSheet(DegreesSheet)
	require.NoError(t, err)

	writeRow(f, UniversitiesSheet, 1, []interface{}{"ID", "Name", "Type"})
	writeRow(f, UniversitiesSheet, 2, []interface{}{"ru", "Rhodes University", "traditional"})
	writeRow(f, UniversitiesSheet, 3, []interface{}{"xx", "Unknown", "polytechnic"})

	writeRow(f, DegreesSheet, 1, toCells(degreeHeaders))
	writeRow(f, DegreesSheet, 2, []interface{}{"ru", "Pharmacy", "ru-bpharm", "BPharm", "4 years", 35, "", "", "Mathematics:5; Life Sciences:5?", ""})
	writeRow(f, DegreesSheet, 3, []interface{}{"ru", "Pharmacy", "ru-bad", "Broken", "4 years", "n/a"})
	writeRow(f, DegreesSheet, 4, []interface{}{"xx", "Science", "xx-bsc", "BSc", "3 years", 30})

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	universities, err := ReadWorkbook(buf, discardLogger())
	require.NoError(t, err)
	require.Len(t, universities, 1)
	require.Len(t, universities[0].Faculties, 1)
	degrees := universities[0].Faculties[0].Degrees
	require.Len(t, degrees, 1)
	assert.Equal(t, []models.SubjectRequirement{
		{Name: "Mathematics", Level: 5, IsRequired: true},
		{Name: "Life Sciences", Level: 5, IsRequired: false},
	}, degrees[0].Subjects)
}

func TestParseRequirements_Invalid(t *testing.T) {
	_, err := parseRequirements("Mathematics")
	assert.Error(t, err)

	_, err = parseRequirements("Mathematics:high")
	assert.Error(t, err)
}

func TestLoadRuleSet(t *testing.T) {
	set, err := LoadRuleSet("")
	require.NoError(t, err)
	assert.Len(t, set.Rules, 10)
	assert.Contains(t, set.Exclusions, "unisa")

	path := filepath.Join(t.TempDir(), "rules.json")
	content := `{"rules": [{"name": "BSc Actuarial Science", "faculty": "Science", "base_aps": 38,
		"competitive": true, "allocation": {"include": ["uct", "wits"]}}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	set, err = LoadRuleSet(path)
	require.NoError(t, err)
	require.Len(t, set.Rules, 1)
	assert.True(t, set.Rules[0].Allocation.Includes("WITS"))
	assert.False(t, set.Rules[0].Allocation.Includes("tut"))
}
