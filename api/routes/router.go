package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verdantlane/storefront-core/api/controllers"
	sessioncontrollers "github.com/verdantlane/storefront-core/api/controllers/session"
	"github.com/verdantlane/storefront-core/api/middleware"
	"github.com/verdantlane/storefront-core/pkg/config"
	"github.com/verdantlane/storefront-core/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	sessions sessioncontrollers.Sessions,
	discounts sessioncontrollers.Discounts,
	updater sessioncontrollers.DiscountUpdater,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/session", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", sessioncontrollers.CartFetch(sessions, logg))
			r.Delete("/", sessioncontrollers.CartClear(sessions, logg))
			r.Post("/refresh", sessioncontrollers.CartRefresh(sessions, logg))
			r.Route("/items", func(r chi.Router) {
				r.Post("/", sessioncontrollers.CartAddItem(sessions, logg))
				r.Patch("/{productId}", sessioncontrollers.CartUpdateItem(sessions, logg))
				r.Delete("/{productId}", sessioncontrollers.CartRemoveItem(sessions, logg))
			})
		})

		r.Route("/panel", func(r chi.Router) {
			r.Post("/open", sessioncontrollers.PanelOpen(sessions, logg))
			r.Post("/close", sessioncontrollers.PanelClose(sessions, logg))
			r.Post("/toggle", sessioncontrollers.PanelToggle(sessions, logg))
		})

		r.Post("/login", sessioncontrollers.Login(sessions, logg))
		r.Post("/logout", sessioncontrollers.Logout(sessions, logg))

		r.Route("/global-discount", func(r chi.Router) {
			r.Get("/", sessioncontrollers.GlobalDiscountFetch(discounts, logg))
			r.Post("/", sessioncontrollers.GlobalDiscountUpdate(updater, discounts, logg))
			r.Post("/refresh", sessioncontrollers.GlobalDiscountRefresh(discounts, logg))
		})
	})

	return r
}
