package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rebooked/campus-service/internal/models"
)

const (
	UniversitiesSheet = "Universities"
	DegreesSheet      = "Degrees"
)

var universityHeaders = []string{
	"ID", "Name", "Abbreviation", "Province", "Location", "Type",
	"Student Population", "Established Year", "Applications Open",
	"Opening Date", "Closing Date", "Application Fee", "Application URL",
}

var degreeHeaders = []string{
	"University ID", "Faculty", "Degree ID", "Name", "Duration", "APS Requirement",
	"Level", "Description", "Subjects", "Career Prospects",
}

// ExcelProvider reads the catalog from a workbook with a Universities sheet
// and a Degrees sheet holding one row per degree.
type ExcelProvider struct {
	path   string
	logger *slog.Logger
}

func NewExcelProvider(path string, logger *slog.Logger) *ExcelProvider {
	return &ExcelProvider{path: path, logger: logger}
}

func (p *ExcelProvider) Universities(ctx context.Context) ([]models.University, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog workbook %s: %w", p.path, err)
	}
	defer file.Close()

	universities, err := ReadWorkbook(file, p.logger)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Catalog loaded", "source", p.path, "universities", len(universities))
	return universities, nil
}

// ReadWorkbook parses a catalog workbook. Rows that cannot be parsed are logged and skipped.
func ReadWorkbook(reader io.Reader, logger *slog.Logger) ([]models.University, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	universityRows, err := f.GetRows(UniversitiesSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", UniversitiesSheet, err)
	}
	degreeRows, err := f.GetRows(DegreesSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", DegreesSheet, err)
	}

	if len(universityRows) < 2 {
		return nil, fmt.Errorf("%s sheet must have a header row and at least one data row", UniversitiesSheet)
	}

	universities := make([]models.University, 0, len(universityRows)-1)
	index := make(map[string]int)

	columns := headerIndex(universityRows[0])
	for rowIndex, row := range universityRows[1:] {
		university, err := parseUniversityRow(row, columns)
		if err != nil {
			logger.Warn("Skipping catalog row", "sheet", UniversitiesSheet, "row", rowIndex+2, "error", err)
			continue
		}
		index[university.ID] = len(universities)
		universities = append(universities, university)
	}

	if len(degreeRows) > 1 {
		columns = headerIndex(degreeRows[0])
		for rowIndex, row := range degreeRows[1:] {
			universityID, facultyName, degree, err := parseDegreeRow(row, columns)
			if err != nil {
				logger.Warn("Skipping catalog row", "sheet", DegreesSheet, "row", rowIndex+2, "error", err)
				continue
			}
			position, ok := index[universityID]
			if !ok {
				logger.Warn("Skipping degree for unknown university",
					"row", rowIndex+2, "university_id", universityID, "degree_id", degree.ID)
				continue
			}
			addDegree(&universities[position], facultyName, degree)
		}
	}

	return sanitize(universities, logger), nil
}

// WriteWorkbook renders universities in the layout ReadWorkbook accepts.
func WriteWorkbook(universities []models.University) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(UniversitiesSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if _, err := f.NewSheet(DegreesSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	writeRow(f, UniversitiesSheet, 1, toCells(universityHeaders))
	writeRow(f, DegreesSheet, 1, toCells(degreeHeaders))

	degreeRow := 2
	for i, u := range universities {
		writeRow(f, UniversitiesSheet, i+2, []interface{}{
			u.ID, u.Name, u.Abbreviation, u.Province, u.Location, string(u.Type),
			u.StudentPopulation, u.EstablishedYear, u.ApplicationInfo.IsOpen,
			u.ApplicationInfo.OpeningDate, u.ApplicationInfo.ClosingDate,
			u.ApplicationInfo.ApplicationFee, u.ApplicationInfo.ApplicationURL,
		})
		for _, faculty := range u.Faculties {
			for _, d := range faculty.Degrees {
				writeRow(f, DegreesSheet, degreeRow, []interface{}{
					u.ID, faculty.Name, d.ID, d.Name, d.Duration, d.APSRequirement,
					string(d.Level), d.Description, formatRequirements(d.Subjects),
					strings.Join(d.CareerProspects, "; "),
				})
				degreeRow++
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for col, value := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		f.SetCellValue(sheet, cell, value)
	}
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func headerIndex(headers []string) map[string]int {
	columns := make(map[string]int, len(headers))
	for i, header := range headers {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	return columns
}

func cellValue(row []string, columns map[string]int, header string) string {
	i, ok := columns[strings.ToLower(header)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func optionalInt(value, field string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", field, value)
	}
	return n, nil
}

func parseUniversityRow(row []string, columns map[string]int) (models.University, error) {
	u := models.University{
		ID:           cellValue(row, columns, "id"),
		Name:         cellValue(row, columns, "name"),
		Abbreviation: cellValue(row, columns, "abbreviation"),
		Province:     cellValue(row, columns, "province"),
		Location:     cellValue(row, columns, "location"),
	}
	if u.ID == "" || u.Name == "" {
		return u, fmt.Errorf("id and name are required")
	}

	universityType, ok := models.ParseUniversityType(cellValue(row, columns, "type"))
	if !ok {
		return u, fmt.Errorf("unknown university type %q", cellValue(row, columns, "type"))
	}
	u.Type = universityType

	var err error
	if u.StudentPopulation, err = optionalInt(cellValue(row, columns, "student population"), "student population"); err != nil {
		return u, err
	}
	if u.EstablishedYear, err = optionalInt(cellValue(row, columns, "established year"), "established year"); err != nil {
		return u, err
	}

	if open := cellValue(row, columns, "applications open"); open != "" {
		isOpen, err := strconv.ParseBool(strings.ToLower(open))
		if err != nil {
			return u, fmt.Errorf("invalid applications open flag %q", open)
		}
		u.ApplicationInfo.IsOpen = isOpen
	}
	u.ApplicationInfo.OpeningDate = cellValue(row, columns, "opening date")
	u.ApplicationInfo.ClosingDate = cellValue(row, columns, "closing date")
	u.ApplicationInfo.ApplicationFee = cellValue(row, columns, "application fee")
	u.ApplicationInfo.ApplicationURL = cellValue(row, columns, "application url")
	return u, nil
}

func parseDegreeRow(row []string, columns map[string]int) (string, string, models.Degree, error) {
	universityID := cellValue(row, columns, "university id")
	facultyName := cellValue(row, columns, "faculty")
	degree := models.Degree{
		ID:          cellValue(row, columns, "degree id"),
		Name:        cellValue(row, columns, "name"),
		Faculty:     facultyName,
		Duration:    cellValue(row, columns, "duration"),
		Description: cellValue(row, columns, "description"),
		Level:       models.DegreeLevel(cellValue(row, columns, "level")),
	}
	if universityID == "" || facultyName == "" || degree.ID == "" || degree.Name == "" {
		return "", "", degree, fmt.Errorf("university id, faculty, degree id and name are required")
	}

	aps, err := strconv.Atoi(cellValue(row, columns, "aps requirement"))
	if err != nil {
		return "", "", degree, fmt.Errorf("invalid APS requirement %q", cellValue(row, columns, "aps requirement"))
	}
	degree.APSRequirement = aps

	subjects, err := parseRequirements(cellValue(row, columns, "subjects"))
	if err != nil {
		return "", "", degree, err
	}
	degree.Subjects = subjects
	degree.CareerProspects = splitList(cellValue(row, columns, "career prospects"))
	return universityID, facultyName, degree, nil
}

// parseRequirements reads "Mathematics:5; English:4; Accounting:4?" where a trailing
// question mark marks a recommended rather than required subject.
func parseRequirements(value string) ([]models.SubjectRequirement, error) {
	var requirements []models.SubjectRequirement
	for _, item := range splitList(value) {
		name, levelText, found := strings.Cut(item, ":")
		if !found {
			return nil, fmt.Errorf("subject requirement %q must be name:level", item)
		}
		levelText = strings.TrimSpace(levelText)
		required := !strings.HasSuffix(levelText, "?")
		level, err := strconv.Atoi(strings.TrimSuffix(levelText, "?"))
		if err != nil {
			return nil, fmt.Errorf("invalid level in subject requirement %q", item)
		}
		requirements = append(requirements, models.SubjectRequirement{
			Name:       strings.TrimSpace(name),
			Level:      level,
			IsRequired: required,
		})
	}
	return requirements, nil
}

func formatRequirements(requirements []models.SubjectRequirement) string {
	parts := make([]string, 0, len(requirements))
	for _, r := range requirements {
		part := fmt.Sprintf("%s:%d", r.Name, r.Level)
		if !r.IsRequired {
			part += "?"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ";") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func addDegree(u *models.University, facultyName string, degree models.Degree) {
	for i := range u.Faculties {
		if strings.EqualFold(u.Faculties[i].Name, facultyName) {
			u.Faculties[i].Degrees = append(u.Faculties[i].Degrees, degree)
			return
		}
	}
	u.Faculties = append(u.Faculties, models.Faculty{
		ID:      u.ID + "-" + strings.ToLower(strings.Join(strings.Fields(facultyName), "-")),
		Name:    facultyName,
		Degrees: []models.Degree{degree},
	})
}
