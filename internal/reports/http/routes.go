package reporthttp

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the report endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/dashboard", h.handleDashboard)
	r.Route("/products/{productId}", func(pr chi.Router) {
		pr.Get("/distribution-stats", h.handleProductDistribution)
		pr.Get("/destinations", h.handleProductDestinations)
	})
	r.Route("/destinations/{cityId}", func(cr chi.Router) {
		cr.Get("/stats", h.handleCityStats)
		cr.Get("/warehouses", h.handleCityWarehouses)
	})
	r.Route("/warehouses/{warehouseId}", func(wr chi.Router) {
		wr.Get("/stats", h.handleWarehouseStats)
		wr.Get("/products", h.handleWarehouseProducts)
	})
	r.Get("/movements", h.handleMovements)
}
