package services

import (
	"log/slog"

	"github.com/rebooked/campus-service/internal/events"
	"github.com/rebooked/campus-service/internal/repositories"
	"github.com/rebooked/campus-service/internal/validator"
)

// ServiceManager gives handlers access to every service built by the composition root.
type ServiceManager interface {
	APS() APSService
	Catalog() CatalogService
	SavedCalculations() SavedCalculationService
	Export() ExportService
}

type ServiceOptions struct {
	Catalog     Catalog
	Store       repositories.KeyValueStore
	StoreLimit  int
	Publisher   events.EventPublisher
	Validator   *validator.Validator
	NearMissGap int
	Logger      *slog.Logger
}

type serviceManager struct {
	aps     APSService
	catalog CatalogService
	saved   SavedCalculationService
	export  ExportService
}

func NewServiceManager(opts ServiceOptions) ServiceManager {
	catalog := NewCatalogService(opts.Catalog, opts.Validator, opts.Logger)
	store := repositories.NewCalculationStore(opts.Store, opts.StoreLimit)
	saved := NewSavedCalculationService(store, opts.Publisher, opts.Validator, opts.Logger)

	return &serviceManager{
		aps:     NewAPSService(catalog, opts.Publisher, opts.Validator, opts.NearMissGap, opts.Logger),
		catalog: catalog,
		saved:   saved,
		export:  NewExportService(saved, catalog, opts.Logger),
	}
}

func (m *serviceManager) APS() APSService                            { return m.aps }
func (m *serviceManager) Catalog() CatalogService                    { return m.catalog }
func (m *serviceManager) SavedCalculations() SavedCalculationService { return m.saved }
func (m *serviceManager) Export() ExportService                      { return m.export }
