// Package reporthttp exposes the analytics reports over the JSON API.
package reporthttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ordersight/ordersight/internal/normalize"
	"github.com/ordersight/ordersight/internal/platform/httpx"
	"github.com/ordersight/ordersight/internal/reports"
	"github.com/ordersight/ordersight/internal/shared"
)

const requestTimeout = 15 * time.Second

const dateLayout = "2006-01-02"

// ReportService defines the report data contract used by the handler.
type ReportService interface {
	Dashboard(ctx context.Context, f reports.Filter) (reports.DashboardReport, error)
	ProductDistribution(ctx context.Context, productID string, f reports.Filter) (reports.ProductDistributionReport, error)
	ProductDestinations(ctx context.Context, productID string, f reports.Filter, page shared.PageRequest) ([]reports.CityShare, shared.Pagination, error)
	CityStats(ctx context.Context, cityKey string, f reports.Filter) (reports.CityStatsReport, error)
	CityWarehouses(ctx context.Context, cityKey string, f reports.Filter, page shared.PageRequest) ([]reports.CityWarehouse, shared.Pagination, error)
	WarehouseStats(ctx context.Context, warehouseID string, f reports.Filter) (reports.WarehouseStatsReport, error)
	WarehouseProducts(ctx context.Context, warehouseID string, f reports.Filter, page shared.PageRequest) ([]reports.WarehouseProductRow, shared.Pagination, error)
	Movements(ctx context.Context, f reports.Filter, page shared.PageRequest) ([]reports.Movement, shared.Pagination, error)
}

// Handler coordinates HTTP requests for the report endpoints.
type Handler struct {
	logger   *slog.Logger
	service  ReportService
	validate *validator.Validate
}

// NewHandler constructs the reports HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// dateRangeQuery carries the optional shared date-range parameters.
type dateRangeQuery struct {
	StartDate string `validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"`
}

// movementsQuery carries the movement listing parameters. Both dates are
// mandatory for this listing.
type movementsQuery struct {
	StartDate string `validate:"required,datetime=2006-01-02"`
	EndDate   string `validate:"required,datetime=2006-01-02"`
}

func (h *Handler) parseFilter(r *http.Request) (reports.Filter, error) {
	q := dateRangeQuery{
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
	}
	if err := h.validate.Struct(q); err != nil {
		return reports.Filter{}, fmt.Errorf("%w: startDate and endDate must be YYYY-MM-DD", httpx.ErrValidation)
	}
	return buildFilter(q.StartDate, q.EndDate), nil
}

func buildFilter(startDate, endDate string) reports.Filter {
	var start, end time.Time
	if startDate != "" {
		start, _ = time.Parse(dateLayout, startDate)
	}
	if endDate != "" {
		end, _ = time.Parse(dateLayout, endDate)
	}
	var f reports.Filter
	f.From, f.To = reports.DateRange(start, end)
	return f
}

// pathParam reads a route parameter, undoing any percent-encoding the router
// preserved from the raw request path.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}

// parsePage reads the windowing parameters, falling back to the defaults for
// anything absent or malformed.
func parsePage(r *http.Request) shared.PageRequest {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return shared.PageRequest{Page: page, Limit: limit}.Normalize()
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error("report request failed",
		slog.String("op", op),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	httpx.RespondError(w, err)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.Dashboard(ctx, f)
	if err != nil {
		h.respondError(w, r, "dashboard", err)
		return
	}
	httpx.Data(w, report)
}

func (h *Handler) handleProductDistribution(w http.ResponseWriter, r *http.Request) {
	productID := pathParam(r, "productId")
	if productID == "" {
		httpx.RespondError(w, fmt.Errorf("%w: productId is required", httpx.ErrValidation))
		return
	}
	f, err := h.parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.ProductDistribution(ctx, productID, f)
	if err != nil {
		h.respondError(w, r, "product distribution", err)
		return
	}
	httpx.Data(w, report)
}

func (h *Handler) handleProductDestinations(w http.ResponseWriter, r *http.Request) {
	productID := pathParam(r, "productId")
	if productID == "" {
		httpx.RespondError(w, fmt.Errorf("%w: productId is required", httpx.ErrValidation))
		return
	}
	f, err := h.parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cities, pagination, err := h.service.ProductDestinations(ctx, productID, f, parsePage(r))
	if err != nil {
		h.respondError(w, r, "product destinations", err)
		return
	}
	httpx.Paginated(w, cities, pagination)
}

func (h *Handler) handleCityStats(w http.ResponseWriter, r *http.Request) {
	cityID := pathParam(r, "cityId")
	if cityID == "" {
		httpx.RespondError(w, fmt.Errorf("%w: cityId is required", httpx.ErrValidation))
		return
	}
	f, err := h.parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.CityStats(ctx, normalize.City(cityID), f)
	if err != nil {
		h.respondError(w, r, "city stats", err)
		return
	}
	httpx.Data(w, report)
}

func (h *Handler) handleCityWarehouses(w http.ResponseWriter, r *http.Request) {
	cityID := pathParam(r, "cityId")
	if cityID == "" {
		httpx.RespondError(w, fmt.Errorf("%w: cityId is required", httpx.ErrValidation))
		return
	}
	f, err := h.parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	warehouses, pagination, err := h.service.CityWarehouses(ctx, normalize.City(cityID), f, parsePage(r))
	if err != nil {
		h.respondError(w, r, "city warehouses", err)
		return
	}
	httpx.Paginated(w, warehouses, pagination)
}

func (h *Handler) handleWarehouseStats(w http.ResponseWriter, r *http.Request) {
	warehouseID := pathParam(r, "warehouseId")
	if warehouseID == "" {
		httpx.RespondError(w, fmt.Errorf("%w: warehouseId is required", httpx.ErrValidation))
		return
	}
	f, err := h.parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.WarehouseStats(ctx, warehouseID, f)
	if err != nil {
		h.respondError(w, r, "warehouse stats", err)
		return
	}
	httpx.Data(w, report)
}

func (h *Handler) handleWarehouseProducts(w http.ResponseWriter, r *http.Request) {
	warehouseID := pathParam(r, "warehouseId")
	if warehouseID == "" {
		httpx.RespondError(w, fmt.Errorf("%w: warehouseId is required", httpx.ErrValidation))
		return
	}
	f, err := h.parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rows, pagination, err := h.service.WarehouseProducts(ctx, warehouseID, f, parsePage(r))
	if err != nil {
		h.respondError(w, r, "warehouse products", err)
		return
	}
	httpx.Paginated(w, rows, pagination)
}

func (h *Handler) handleMovements(w http.ResponseWriter, r *http.Request) {
	q := movementsQuery{
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
	}
	if err := h.validate.Struct(q); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: startDate and endDate are required as YYYY-MM-DD", httpx.ErrValidation))
		return
	}
	f := buildFilter(q.StartDate, q.EndDate)
	f.ProductID = r.URL.Query().Get("productId")
	f.WarehouseID = r.URL.Query().Get("warehouseId")
	if cityID := r.URL.Query().Get("cityId"); cityID != "" {
		key := normalize.City(cityID)
		if key == "" {
			// A key without letters can never match a stored destination.
			httpx.Paginated(w, []reports.Movement{}, shared.NewPagination(parsePage(r), 0))
			return
		}
		f.CityKey = key
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rows, pagination, err := h.service.Movements(ctx, f, parsePage(r))
	if err != nil {
		h.respondError(w, r, "movements", err)
		return
	}
	httpx.Paginated(w, rows, pagination)
}
