package controllers

import (
	"net/http"

	"github.com/verdantlane/storefront-core/api/responses"
	"github.com/verdantlane/storefront-core/pkg/config"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}
