package merchanthttp

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/maxp/merchant-portal/internal/merchants"
	"github.com/maxp/merchant-portal/internal/platform/httpx"
	"github.com/maxp/merchant-portal/internal/shared"
	"github.com/maxp/merchant-portal/internal/view"
)

// listingKey stores the list view state in the session.
const listingKey = "merchants.listing"

// MerchantService exposes the merchant collection and creation.
type MerchantService interface {
	Records(ctx context.Context) ([]merchants.Merchant, error)
	Validate(input merchants.NewMerchant) map[string]string
	Create(ctx context.Context, input merchants.NewMerchant) error
}

// ReportService exports the date range report.
type ReportService interface {
	ParseDateRange(start, end string) (*merchants.DateRange, error)
	Request(ctx context.Context, rng *merchants.DateRange) (merchants.Report, error)
}

// ReportObserver counts report outcomes.
type ReportObserver interface {
	ObserveReport(outcome string)
}

// Handler serves the merchant list, the report export and the creation form.
type Handler struct {
	logger    *slog.Logger
	service   MerchantService
	reports   ReportService
	templates *view.Engine
	csrf      *shared.CSRFManager
	observer  ReportObserver
}

// NewHandler builds a merchants Handler. observer may be nil.
func NewHandler(logger *slog.Logger, service MerchantService, reports ReportService, templates *view.Engine, csrf *shared.CSRFManager, observer ReportObserver) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		logger:    logger,
		service:   service,
		reports:   reports,
		templates: templates,
		csrf:      csrf,
		observer:  observer,
	}
}

// listOptions carries the report modal state into the list page.
type listOptions struct {
	reportOpen  bool
	reportError string
	start       string
	end         string
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := listOptions{
		reportOpen: query.Get("report") == "open",
		start:      query.Get("start"),
		end:        query.Get("end"),
	}
	h.renderList(w, r, http.StatusOK, opts, func(listing *merchants.Listing) {
		if raw := query.Get("page"); raw != "" {
			if page, err := strconv.Atoi(raw); err == nil {
				listing.SetPage(page)
			}
		}
	})
}

// handleQuery records a keystroke in the search box. The list is not refiltered.
func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.RespondError(w, httpx.ErrBadRequest)
		return
	}
	listing, err := h.loadListing(r)
	if err != nil {
		h.logger.Error("load merchants", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	listing.SetQuery(r.PostFormValue("q"))
	h.saveListing(r, listing)
	httpx.JSON(w, http.StatusOK, listing.State())
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	listing, err := h.loadListing(r)
	if err != nil {
		h.renderListError(w, r, err)
		return
	}
	listing.SetQuery(r.PostFormValue("q"))
	listing.SubmitSearch()
	h.saveListing(r, listing)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")

	rng, err := h.reports.ParseDateRange(start, end)
	var report merchants.Report
	if err == nil {
		report, err = h.reports.Request(ctx, rng)
	}
	switch {
	case err == nil:
	case shared.IsValidation(err):
		h.observe("invalid")
		h.renderList(w, r, http.StatusBadRequest, listOptions{
			reportOpen:  true,
			reportError: shared.UserSafeMessage(err),
			start:       start,
			end:         end,
		}, nil)
		return
	default:
		// The remote failure is already in the operator log; the modal stays open
		// so the export can be retried.
		h.observe("failed")
		target := url.Values{}
		target.Set("report", "open")
		target.Set("start", start)
		target.Set("end", end)
		http.Redirect(w, r, "/?"+target.Encode(), http.StatusSeeOther)
		return
	}

	h.observe("ok")
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+report.Filename+"\"")
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report.Body)
}

func (h *Handler) showCreate(w http.ResponseWriter, r *http.Request) {
	h.renderCreate(w, r, http.StatusOK, createView{})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	input := merchants.NewMerchant{
		MerchantName:            strings.TrimSpace(r.PostFormValue("merchantName")),
		BusinessType:            strings.TrimSpace(r.PostFormValue("businessType")),
		ProductType:             strings.TrimSpace(r.PostFormValue("productType")),
		MerchantWallet:          strings.TrimSpace(r.PostFormValue("merchantWallet")),
		MerchantTechPersonEmail: strings.TrimSpace(r.PostFormValue("merchantTechPersonEmail")),
		MerchantTechPersonPhone: strings.TrimSpace(r.PostFormValue("merchantTechPersonPhone")),
		KAMEmail:                strings.TrimSpace(r.PostFormValue("KAMEmail")),
		KAMPhone:                strings.TrimSpace(r.PostFormValue("KAMPhone")),
	}
	if errs := h.service.Validate(input); len(errs) > 0 {
		h.renderCreate(w, r, http.StatusBadRequest, createView{Values: input, Errors: errs})
		return
	}
	if err := h.service.Create(r.Context(), input); err != nil {
		h.logger.Error("create merchant", slog.Any("error", err))
		h.renderCreate(w, r, httpx.StatusFor(err), createView{Values: input, Error: shared.UserSafeMessage(err)})
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Merchant " + input.MerchantName + " created."})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleAPIList(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Records(r.Context())
	if err != nil {
		h.logger.Error("load merchants", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	query := r.URL.Query()
	listing := merchants.NewListing(records)
	listing.SetQuery(query.Get("q"))
	listing.SubmitSearch()
	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			httpx.RespondError(w, shared.NewValidationError("page", "page must be a number"))
			return
		}
		listing.SetPage(page)
	}
	httpx.JSON(w, http.StatusOK, newPageResponse(listing))
}

// loadListing rebuilds the session's list state over the current records.
func (h *Handler) loadListing(r *http.Request) (*merchants.Listing, error) {
	records, err := h.service.Records(r.Context())
	if err != nil {
		return nil, err
	}
	var state merchants.ListingState
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || !sess.GetJSON(listingKey, &state) {
		return merchants.NewListing(records), nil
	}
	return merchants.RestoreListing(records, state), nil
}

func (h *Handler) saveListing(r *http.Request, listing *merchants.Listing) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return
	}
	if err := sess.SetJSON(listingKey, listing.State()); err != nil {
		h.logger.Warn("store listing state", slog.Any("error", err))
	}
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, status int, opts listOptions, mutate func(*merchants.Listing)) {
	listing, err := h.loadListing(r)
	if err != nil {
		h.renderListError(w, r, err)
		return
	}
	if mutate != nil {
		mutate(listing)
	}
	h.saveListing(r, listing)
	h.render(w, r, status, "pages/merchants.html", "Merchant Dashboard", newListView(listing, opts))
}

func (h *Handler) renderListError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("load merchants", slog.Any("error", err))
	h.render(w, r, httpx.StatusFor(err), "pages/merchants.html", "Merchant Dashboard", listView{Error: shared.UserSafeMessage(err)})
}

func (h *Handler) renderCreate(w http.ResponseWriter, r *http.Request, status int, data createView) {
	if data.Errors == nil {
		data.Errors = map[string]string{}
	}
	data.Fields = createFields(data.Values, data.Errors)
	h.render(w, r, status, "pages/create.html", "Create Merchant", data)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	payload := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       sess.PopFlash(),
		CurrentPath: r.URL.Path,
		SidebarOpen: sess == nil || sess.SidebarOpen(),
		Data:        data,
	}
	if err := h.templates.RenderStatus(w, status, name, payload); err != nil {
		h.logger.Error("render template", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) observe(outcome string) {
	if h.observer != nil {
		h.observer.ObserveReport(outcome)
	}
}

// HandleListForTest exposes the list handler for tests.
func (h *Handler) HandleListForTest(w http.ResponseWriter, r *http.Request) { h.handleList(w, r) }

// HandleQueryForTest exposes the keystroke handler for tests.
func (h *Handler) HandleQueryForTest(w http.ResponseWriter, r *http.Request) { h.handleQuery(w, r) }

// HandleSearchForTest exposes the search handler for tests.
func (h *Handler) HandleSearchForTest(w http.ResponseWriter, r *http.Request) { h.handleSearch(w, r) }

// HandleReportForTest exposes the report handler for tests.
func (h *Handler) HandleReportForTest(w http.ResponseWriter, r *http.Request) { h.handleReport(w, r) }

// HandleCreateForTest exposes the create handler for tests.
func (h *Handler) HandleCreateForTest(w http.ResponseWriter, r *http.Request) { h.handleCreate(w, r) }
