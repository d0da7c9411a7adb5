package api

import (
	"log/slog"

	"github.com/proprio/docintake/internal/catalog"
	"github.com/proprio/docintake/internal/dedup"
	"github.com/proprio/docintake/internal/documents"
	"github.com/proprio/docintake/internal/extraction"
	"github.com/proprio/docintake/internal/intake"
	"github.com/proprio/docintake/internal/links"
	"github.com/proprio/docintake/internal/sessions"
	"github.com/proprio/docintake/pkg/lifecycle"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Catalog   catalog.System
	Documents documents.System
	Links     *links.Manager
	Sessions  sessions.System
	Intake    *intake.System

	sweeper *sessions.Sweeper
	watcher *catalog.Watcher
	logger  *slog.Logger
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()
	logger := runtime.Logger

	catalogStore := catalog.NewStore(logger)
	catalogSystem := catalog.New(db, catalogStore, logger)

	documentsSystem := documents.New(db, runtime.Pagination, logger)
	linkManager := links.NewManager(links.NewPort(db), logger)
	sessionsSystem := sessions.New(db, runtime.Intake.Sessions, logger)

	detector := dedup.NewDetector(documentsSystem, logger)

	extractor := extraction.NewChain(
		logger,
		extraction.NewPDFExtractor(),
		extraction.NewRemoteOCR(runtime.Intake.OCR, logger),
	)

	intakeSystem := intake.New(
		catalogSystem,
		detector,
		documentsSystem,
		linkManager,
		sessionsSystem,
		runtime.Storage,
		extractor,
		runtime.Metrics,
		logger,
	)

	domain := &Domain{
		Catalog:   catalogSystem,
		Documents: documentsSystem,
		Links:     linkManager,
		Sessions:  sessionsSystem,
		Intake:    intakeSystem,
		logger: logger,
		sweeper: sessions.NewSweeper(
			sessionsSystem,
			documentsSystem,
			runtime.Storage,
			runtime.Metrics,
			runtime.Intake.Sessions,
			logger,
		),
	}

	if runtime.Intake.CatalogFile != "" {
		domain.watcher = catalog.NewWatcher(runtime.Intake.CatalogFile, catalogSystem, logger)
	}

	return domain
}

// Start registers the domain's background work with the lifecycle: the
// initial catalog load, the optional catalog file watcher, and the session
// sweeper.
func (d *Domain) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		if _, err := d.Catalog.Reload(lc.Context()); err != nil {
			// The empty seed snapshot serves until a reload succeeds.
			d.logger.Error("initial catalog load failed", "error", err)
		}
	})

	if d.watcher != nil {
		if err := d.watcher.Start(lc); err != nil {
			return err
		}
	}

	return d.sweeper.Start(lc)
}
