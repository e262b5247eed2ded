package charthttp

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/maxp/merchant-portal/internal/charts"
	"github.com/maxp/merchant-portal/internal/charts/svg"
	"github.com/maxp/merchant-portal/internal/platform/httpx"
	"github.com/maxp/merchant-portal/internal/shared"
	"github.com/maxp/merchant-portal/internal/view"
)

const (
	barWidth  = 720
	barHeight = 420
	pieSize   = 360
)

// Handler serves the product analytics view.
type Handler struct {
	logger    *slog.Logger
	source    charts.AggregateSource
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler builds the analytics handler.
func NewHandler(logger *slog.Logger, source charts.AggregateSource, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{logger: logger, source: source, templates: templates, csrf: csrf}
}

// MountRoutes registers analytics endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/products", h.handleProducts)
	r.Get("/api/analytics", h.handleAPI)
}

type productsView struct {
	Loaded       bool
	Error        string
	BarChart     template.HTML
	PieChart     template.HTML
	ProductTypes []charts.Point
	KAM          []charts.Point
	Focused      int
}

// load runs one Loader for the lifetime of the request.
func (h *Handler) load(r *http.Request) (charts.View, error) {
	loader := charts.NewLoader(h.source)
	defer loader.Close()
	if raw := r.URL.Query().Get("segment"); raw != "" {
		if index, err := strconv.Atoi(raw); err == nil {
			loader.SetFocusedSegment(index)
		}
	}
	err := loader.Load(r.Context())
	return loader.Snapshot(), err
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.load(r)
	if err != nil {
		h.logger.Error("load analytics", slog.Any("error", err))
		h.render(w, r, httpx.StatusFor(err), productsView{Error: shared.UserSafeMessage(err)})
		return
	}

	vm := productsView{
		Loaded:       snapshot.Status == charts.StatusReady,
		ProductTypes: snapshot.ProductTypes,
		KAM:          snapshot.KAM,
		Focused:      snapshot.Focused,
	}
	if len(snapshot.ProductTypes) > 0 {
		bar, err := svg.Bars(barWidth, barHeight, toData(snapshot.ProductTypes), svg.BarOpts{
			Title:       "Product Distribution",
			Description: "Merchants per product type",
			SeriesLabel: "merchants",
			LabelAngle:  -45,
		})
		if err != nil {
			h.logger.Error("render bar chart", slog.Any("error", err))
		}
		vm.BarChart = bar
	}
	if len(snapshot.KAM) > 0 {
		pie, err := svg.Pie(pieSize, pieSize, toData(snapshot.KAM), svg.PieOpts{
			Title:        "KAM Distribution",
			Description:  "Merchants per key account manager",
			PaddingAngle: svg.DefaultPaddingAngle,
			Active:       snapshot.Focused,
			SegmentHref:  segmentHref,
		})
		if err != nil {
			h.logger.Error("render pie chart", slog.Any("error", err))
		}
		vm.PieChart = pie
	}
	h.render(w, r, http.StatusOK, vm)
}

type analyticsResponse struct {
	Status       string         `json:"status"`
	ProductTypes []charts.Point `json:"productTypes"`
	KAM          []charts.Point `json:"kam"`
	Focused      int            `json:"focused"`
}

func (h *Handler) handleAPI(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.load(r)
	if err != nil {
		h.logger.Error("load analytics", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, analyticsResponse{
		Status:       snapshot.Status.String(),
		ProductTypes: snapshot.ProductTypes,
		KAM:          snapshot.KAM,
		Focused:      snapshot.Focused,
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, vm productsView) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	data := view.TemplateData{
		Title:       "Product Analytics",
		CSRFToken:   csrfToken,
		Flash:       sess.PopFlash(),
		CurrentPath: r.URL.Path,
		SidebarOpen: sess == nil || sess.SidebarOpen(),
		Data:        vm,
	}
	if err := h.templates.RenderStatus(w, status, "pages/products.html", data); err != nil {
		h.logger.Error("render products", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func toData(points []charts.Point) []svg.Datum {
	data := make([]svg.Datum, len(points))
	for i, p := range points {
		data[i] = svg.Datum{Label: p.Label, Title: p.FullLabel, Value: p.Value, Color: p.Color}
	}
	return data
}

func segmentHref(index int) string {
	return "/products?segment=" + strconv.Itoa(index)
}

// HandleProductsForTest exposes the analytics page handler for tests.
func (h *Handler) HandleProductsForTest(w http.ResponseWriter, r *http.Request) {
	h.handleProducts(w, r)
}
