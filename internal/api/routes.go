package api

import (
	"net/http"

	"github.com/proprio/docintake/internal/config"
	"github.com/proprio/docintake/internal/documents"
	"github.com/proprio/docintake/internal/intake"
	"github.com/proprio/docintake/internal/sessions"
	"github.com/proprio/docintake/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	logger := runtime.Logger

	routes.Register(
		mux,
		domain.Catalog.Handler().Routes(),
	)
	routes.Register(
		mux,
		documents.NewHandler(domain.Documents, domain.Links, runtime.Storage, runtime.Pagination, logger).Routes(),
	)
	routes.Register(
		mux,
		sessions.NewHandler(domain.Sessions, logger).Routes(),
	)
	routes.Register(
		mux,
		intake.NewHandler(domain.Intake, cfg.Intake.Upload, logger).Routes(),
	)
}
