package main

import (
	"encoding/json"
	"net/http"

	"github.com/proprio/docintake/internal/api"
	"github.com/proprio/docintake/internal/config"
	"github.com/proprio/docintake/internal/infrastructure"
	"github.com/proprio/docintake/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, *api.Domain, error) {
	apiModule, domain, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, nil, err
	}

	return &Modules{API: apiModule}, domain, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	router.MountNative("GET /metrics", infra.Metrics.Handler())

	return router
}
