package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/rebooked/campus-service/internal/models"
)

//go:embed data/universities.json
var seedCatalog []byte

// JSONProvider decodes the catalog from a JSON array of universities.
type JSONProvider struct {
	load   func() ([]byte, error)
	source string
	logger *slog.Logger
}

// NewEmbeddedProvider serves the seed dataset compiled into the binary.
func NewEmbeddedProvider(logger *slog.Logger) *JSONProvider {
	return &JSONProvider{
		load:   func() ([]byte, error) { return seedCatalog, nil },
		source: "embedded",
		logger: logger,
	}
}

func NewJSONFileProvider(path string, logger *slog.Logger) *JSONProvider {
	return &JSONProvider{
		load:   func() ([]byte, error) { return os.ReadFile(path) },
		source: path,
		logger: logger,
	}
}

func (p *JSONProvider) Universities(ctx context.Context) ([]models.University, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := p.load()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", p.source, err)
	}

	var universities []models.University
	if err := json.Unmarshal(data, &universities); err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", p.source, err)
	}

	kept := sanitize(universities, p.logger)
	p.logger.Info("Catalog loaded", "source", p.source, "universities", len(kept))
	return kept, nil
}
