// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/proprio/docintake/internal/config"
	"github.com/proprio/docintake/internal/infrastructure"
	"github.com/proprio/docintake/pkg/middleware"
	"github.com/proprio/docintake/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The returned Domain carries the background systems the server must start.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *Domain, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, domain, nil
}
