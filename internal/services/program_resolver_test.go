package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebooked/campus-service/internal/models"
)

func TestAdjustAPS(t *testing.T) {
	tests := []struct {
		name        string
		base        int
		uniType     models.UniversityType
		competitive bool
		expected    int
	}{
		{"uot subtracts two", 35, models.UniversityOfTechnology, false, 33},
		{"traditional competitive", 35, models.UniversityTraditional, true, 38},
		{"traditional standard", 35, models.UniversityTraditional, false, 36},
		{"comprehensive unchanged", 35, models.UniversityComprehensive, true, 35},
		{"clamped high", 41, models.UniversityTraditional, true, MaxGeneratedAPS},
		{"clamped low", 18, models.UniversityOfTechnology, false, MinGeneratedAPS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AdjustAPS(tt.base, tt.uniType, tt.competitive))
		})
	}
}

func TestAdjustAPS_DisplayNameType(t *testing.T) {
	uniType, ok := models.ParseUniversityType("University of Technology")
	require.True(t, ok)
	assert.Equal(t, 33, AdjustAPS(35, uniType, false))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "bachelor-of-laws", Slug("Bachelor of Laws"))
	assert.Equal(t, "bcom-accounting-sciences", Slug("  BCom (Accounting) Sciences!"))
	assert.Equal(t, "", Slug("---"))
}

func testRules() []models.ProgramRule {
	return []models.ProgramRule{
		{Name: "Bachelor of Laws", Faculty: "Law", BaseAPS: 34, Competitive: true, Allocation: models.AllocateExcept("uct")},
		{Name: "Diploma in IT", Faculty: "ICT", BaseAPS: 26, Allocation: models.AllocateOnly("tut")},
		{Name: "BCom Economics", Faculty: "Commerce", BaseAPS: 30, Allocation: models.AllocateAll(),
			Subjects: []models.SubjectRequirement{{Name: "Mathematics", Level: 4, IsRequired: true}}},
	}
}

func TestResolvePrograms(t *testing.T) {
	rules := testRules()

	uct := ResolvePrograms("uct", models.UniversityTraditional, rules, nil)
	require.Len(t, uct, 1)
	assert.Equal(t, "uct-bcom-economics-2", uct[0].ID)
	assert.Equal(t, 31, uct[0].APSRequirement)

	tut := ResolvePrograms("tut", models.UniversityOfTechnology, rules, nil)
	require.Len(t, tut, 3)
	assert.Equal(t, "tut-bachelor-of-laws-0", tut[0].ID)
	assert.Equal(t, 32, tut[0].APSRequirement)
	assert.Equal(t, "tut-diploma-in-it-1", tut[1].ID)
	assert.Equal(t, 24, tut[1].APSRequirement)

	excluded := ResolvePrograms("tut", models.UniversityOfTechnology, rules, []string{"bachelor of laws"})
	require.Len(t, excluded, 2)
	assert.Equal(t, "tut-diploma-in-it-1", excluded[0].ID)

	tut[2].Subjects[0].Level = 7
	assert.Equal(t, 4, rules[2].Subjects[0].Level)
}

func TestValidateProgramRules(t *testing.T) {
	assert.NoError(t, ValidateProgramRules(testRules()))

	bad := [][]models.ProgramRule{
		{{Name: "", Faculty: "Law", BaseAPS: 30}},
		{{Name: "LLB", Faculty: "", BaseAPS: 30}},
		{{Name: "LLB", Faculty: "Law", BaseAPS: 0}},
		{{Name: "LLB", Faculty: "Law", BaseAPS: 30}, {Name: "llb", Faculty: "Law", BaseAPS: 31}},
	}
	for _, rules := range bad {
		assert.Error(t, ValidateProgramRules(rules))
	}
}

func baseUniversities() []models.University {
	return []models.University{
		{
			ID: "uct", Name: "University of Cape Town", Type: models.UniversityTraditional,
			Faculties: []models.Faculty{{
				ID: "uct-law", Name: "Law",
				Degrees: []models.Degree{{ID: "uct-llb", Name: "Bachelor of Laws", Faculty: "Law", APSRequirement: 40}},
			}},
		},
		{ID: "tut", Name: "Tshwane University of Technology", Type: "University of Technology"},
		{ID: "odd", Name: "Odd College", Type: "college"},
	}
}

func TestBuildCatalog(t *testing.T) {
	base := baseUniversities()

	catalog := BuildCatalog(base, testRules(), map[string][]string{"tut": {"BCom Economics"}})

	uct, ok := catalog.University("UCT")
	require.True(t, ok)
	require.Len(t, uct.Faculties, 2)
	assert.Equal(t, 40, uct.Faculties[0].Degrees[0].APSRequirement)
	assert.Equal(t, "Commerce", uct.Faculties[1].Name)
	assert.Equal(t, "uct-commerce", uct.Faculties[1].ID)

	tut, ok := catalog.University("tut")
	require.True(t, ok)
	assert.Equal(t, 2, tut.DegreeCount())

	assert.Equal(t, 3, catalog.GeneratedPrograms)
	require.Len(t, catalog.Diagnostics, 1)
	assert.Equal(t, "odd", catalog.Diagnostics[0].RecordID)

	// the input is never modified
	assert.Len(t, base[0].Faculties, 1)
	assert.Empty(t, base[1].Faculties)
}

func TestBuildCatalog_ExclusionKeysIgnoreCase(t *testing.T) {
	base := baseUniversities()[:1]

	catalog := BuildCatalog(base, testRules(), map[string][]string{" UCT ": {"BCom Economics"}})

	assert.Equal(t, 0, catalog.GeneratedPrograms)
	uct, ok := catalog.University("uct")
	require.True(t, ok)
	assert.Equal(t, 1, uct.DegreeCount())

	merged := BuildCatalog(baseUniversities()[1:2], testRules(), map[string][]string{
		"TUT": {"Bachelor of Laws"},
		"tut": {"BCom Economics"},
	})
	assert.Equal(t, 1, merged.GeneratedPrograms)
}

func TestBuildCatalog_InvalidRulesFallBack(t *testing.T) {
	base := baseUniversities()
	rules := append(testRules(), models.ProgramRule{Name: "Bachelor of Laws", Faculty: "Law", BaseAPS: 30})

	catalog := BuildCatalog(base, rules, nil)

	assert.Equal(t, 0, catalog.GeneratedPrograms)
	require.Len(t, catalog.Universities, len(base))
	for i := range base {
		assert.Equal(t, base[i].ID, catalog.Universities[i].ID)
		assert.Equal(t, base[i].DegreeCount(), catalog.Universities[i].DegreeCount())
	}
	require.Len(t, catalog.Diagnostics, 1)
	assert.Equal(t, ScopeCatalog, catalog.Diagnostics[0].Scope)
}

func TestCatalogFlatten(t *testing.T) {
	catalog := BuildCatalog(baseUniversities(), testRules(), nil)

	flat := catalog.Flatten()
	assert.Len(t, flat, catalog.DegreeCount())
	for _, entry := range flat {
		assert.False(t, entry.MeetsRequirement)
		assert.NotEmpty(t, entry.University.ID)
		assert.NotEmpty(t, entry.Degree.Faculty)
	}
}
