package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rebooked/campus-service/internal/models"
)

const (
	ExportFormatCSV   = "csv"
	ExportFormatExcel = "xlsx"

	resultsSheet  = "Results"
	subjectsSheet = "Subjects"
)

var resultHeaders = []string{"University", "Faculty", "Degree", "APS Required", "Eligible", "APS Gap", "Reasons"}

var subjectHeaders = []string{"Subject", "Marks", "Level", "Points"}

type exportService struct {
	saved   SavedCalculationService
	catalog CatalogService
	logger  *slog.Logger
}

func NewExportService(saved SavedCalculationService, catalog CatalogService, logger *slog.Logger) ExportService {
	return &exportService{
		saved:   saved,
		catalog: catalog,
		logger:  logger,
	}
}

// ExportCalculation re-evaluates a saved snapshot against the current catalog and renders it.
func (s *exportService) ExportCalculation(ctx context.Context, owner, id, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatExcel
	}
	if format != ExportFormatCSV && format != ExportFormatExcel {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExportFormat, format)
	}

	saved, err := s.saved.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	match := MatchCatalog(saved.TotalScore, saved.Subjects, s.catalog.Catalog().Universities)
	calculation := models.APSCalculation{
		Subjects:        saved.Subjects,
		TotalScore:      saved.TotalScore,
		EligibleDegrees: match.Degrees,
		CalculatedAt:    saved.CreatedAt,
	}

	var data []byte
	if format == ExportFormatCSV {
		data, err = ExportCalculationCSV(calculation)
	} else {
		data, err = ExportCalculationExcel(calculation)
	}
	if err != nil {
		s.logger.Error("Failed to export calculation", "calculation_id", id, "format", format, "error", err)
		return nil, err
	}

	file := &ExportFile{
		Filename: fmt.Sprintf("aps-%s.%s", Slug(saved.Name), format),
		Data:     data,
	}
	if format == ExportFormatCSV {
		file.ContentType = "text/csv"
	} else {
		file.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return file, nil
}

// ExportCalculationCSV writes one row per evaluated degree, eligible programmes first.
func ExportCalculationCSV(calculation models.APSCalculation) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(resultHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range exportOrder(calculation.EligibleDegrees) {
		if err := writer.Write(resultRow(r)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportCalculationExcel writes a Results sheet and a Subjects sheet with the APS total.
func ExportCalculationExcel(calculation models.APSCalculation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(resultsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if _, err := f.NewSheet(subjectsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for i, header := range resultHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(resultsSheet, cell, header)
	}
	for rowIndex, r := range exportOrder(calculation.EligibleDegrees) {
		gap := ""
		if r.APSGap != nil {
			gap = strconv.Itoa(*r.APSGap)
		}
		values := []interface{}{
			r.University.Name, r.Degree.Faculty, r.Degree.Name, r.Degree.APSRequirement,
			r.MeetsRequirement, gap, strings.Join(r.Reasons, "; "),
		}
		for colIndex, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(resultsSheet, cell, value)
		}
	}

	for i, header := range subjectHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(subjectsSheet, cell, header)
	}
	for rowIndex, subject := range calculation.Subjects {
		values := []interface{}{subject.Name, subject.Marks, subject.Level, subject.Points}
		for colIndex, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(subjectsSheet, cell, value)
		}
	}
	totalRow := len(calculation.Subjects) + 3
	f.SetCellValue(subjectsSheet, fmt.Sprintf("A%d", totalRow), "Total APS")
	f.SetCellValue(subjectsSheet, fmt.Sprintf("D%d", totalRow), calculation.TotalScore)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func exportOrder(results []models.EligibleDegree) []models.EligibleDegree {
	eligible := make([]models.EligibleDegree, 0, len(results))
	var rest []models.EligibleDegree
	for _, r := range results {
		if r.MeetsRequirement {
			eligible = append(eligible, r)
		} else {
			rest = append(rest, r)
		}
	}
	return append(eligible, rest...)
}

func resultRow(r models.EligibleDegree) []string {
	gap := ""
	if r.APSGap != nil {
		gap = strconv.Itoa(*r.APSGap)
	}
	eligible := "no"
	if r.MeetsRequirement {
		eligible = "yes"
	}
	return []string{
		r.University.Name,
		r.Degree.Faculty,
		r.Degree.Name,
		strconv.Itoa(r.Degree.APSRequirement),
		eligible,
		gap,
		strings.Join(r.Reasons, "; "),
	}
}
