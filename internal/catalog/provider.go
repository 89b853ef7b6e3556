// Package catalog loads the university catalog the eligibility engine runs against.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/rebooked/campus-service/internal/models"
)

// Provider supplies the static university list before programme generation.
type Provider interface {
	Universities(ctx context.Context) ([]models.University, error)
}

// NewProvider picks a provider from the file extension. An empty path serves the embedded seed.
func NewProvider(path string, logger *slog.Logger) (Provider, error) {
	if path == "" {
		return NewEmbeddedProvider(logger), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONFileProvider(path, logger), nil
	case ".xlsx":
		return NewExcelProvider(path, logger), nil
	default:
		return nil, fmt.Errorf("unsupported catalog file %q: expected .json or .xlsx", path)
	}
}

// validUniversity reports whether a record carries the fields every downstream step relies on.
func validUniversity(u models.University) error {
	switch {
	case strings.TrimSpace(u.ID) == "":
		return fmt.Errorf("missing id")
	case strings.TrimSpace(u.Name) == "":
		return fmt.Errorf("missing name")
	}
	if _, ok := models.ParseUniversityType(string(u.Type)); !ok {
		return fmt.Errorf("unknown university type %q", u.Type)
	}
	return nil
}

// sanitize drops universities and degrees with missing fields, logging each one.
func sanitize(universities []models.University, logger *slog.Logger) []models.University {
	kept := make([]models.University, 0, len(universities))
	for _, u := range universities {
		if err := validUniversity(u); err != nil {
			logger.Warn("Skipping catalog university", "university_id", u.ID, "error", err)
			continue
		}
		universityType, _ := models.ParseUniversityType(string(u.Type))
		u.Type = universityType

		faculties := make([]models.Faculty, 0, len(u.Faculties))
		for _, f := range u.Faculties {
			if strings.TrimSpace(f.Name) == "" {
				logger.Warn("Skipping catalog faculty without a name", "university_id", u.ID, "faculty_id", f.ID)
				continue
			}
			degrees := make([]models.Degree, 0, len(f.Degrees))
			for _, d := range f.Degrees {
				if strings.TrimSpace(d.ID) == "" || strings.TrimSpace(d.Name) == "" {
					logger.Warn("Skipping catalog degree with missing fields",
						"university_id", u.ID, "degree_id", d.ID, "degree_name", d.Name)
					continue
				}
				if d.Faculty == "" {
					d.Faculty = f.Name
				}
				degrees = append(degrees, d)
			}
			f.Degrees = degrees
			faculties = append(faculties, f)
		}
		u.Faculties = faculties
		kept = append(kept, u)
	}
	return kept
}
