package merchanthttp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxp/merchant-portal/internal/merchants"
	merchanthttp "github.com/maxp/merchant-portal/internal/merchants/http"
	"github.com/maxp/merchant-portal/internal/shared"
	"github.com/maxp/merchant-portal/internal/view"
	_ "github.com/maxp/merchant-portal/testing"
)

type stubSource struct {
	records   []merchants.Merchant
	listErr   error
	createErr error
	created   []merchants.NewMerchant
	exports   int
	exportErr error
}

func (s *stubSource) ListMerchants(ctx context.Context) ([]merchants.Merchant, error) {
	return s.records, s.listErr
}

func (s *stubSource) CreateMerchant(ctx context.Context, input merchants.NewMerchant) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, input)
	return nil
}

func (s *stubSource) ExportReport(ctx context.Context, startDate, endDate string) ([]byte, error) {
	s.exports++
	if s.exportErr != nil {
		return nil, s.exportErr
	}
	return []byte("sheet:" + startDate + ":" + endDate), nil
}

type countingObserver struct {
	outcomes []string
}

func (o *countingObserver) ObserveReport(outcome string) {
	o.outcomes = append(o.outcomes, outcome)
}

type harness struct {
	handler  *merchanthttp.Handler
	sessions *shared.SessionManager
	source   *stubSource
	observer *countingObserver
	cookie   *http.Cookie
}

func newHarness(t *testing.T, source *stubSource) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	observer := &countingObserver{}
	service := merchants.NewService(source, nil, nil)
	reports := merchants.NewReportService(source, nil)
	return &harness{
		handler:  merchanthttp.NewHandler(nil, service, reports, templates, shared.NewCSRFManager("csrfsecret"), observer),
		sessions: shared.NewSessionManager(redisClient, "test_session", time.Hour, false),
		source:   source,
		observer: observer,
	}
}

// serve runs fn with a session loaded from and committed to the harness cookie.
func (h *harness) serve(t *testing.T, req *http.Request, fn func(http.ResponseWriter, *http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	sess, err := h.sessions.Load(context.Background(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	fn(res, req)
	require.NoError(t, h.sessions.Commit(ctx, res, sess))
	for _, c := range res.Result().Cookies() {
		if c.Name == h.sessions.CookieName() {
			h.cookie = c
		}
	}
	return res
}

func fixture(n int) []merchants.Merchant {
	out := make([]merchants.Merchant, n)
	for i := range out {
		out[i] = merchants.Merchant{
			UUID:         fmt.Sprintf("m-%02d", i),
			MerchantName: fmt.Sprintf("Merchant %02d", i),
			BusinessType: "Retail",
			ProductType:  "Wallet",
			InitiateDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		}
	}
	return out
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestListRendersFirstPage(t *testing.T) {
	h := newHarness(t, &stubSource{records: fixture(45)})

	res := h.serve(t, httptest.NewRequest(http.MethodGet, "/", nil), h.handler.HandleListForTest)

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Merchant 00")
	assert.Contains(t, body, "Merchant 19")
	assert.NotContains(t, body, "Merchant 20")
	assert.Contains(t, body, "02 Jan 2024")
	assert.Contains(t, body, `href="/?page=2"`)
}

func TestListClampsPageParameter(t *testing.T) {
	h := newHarness(t, &stubSource{records: fixture(45)})

	res := h.serve(t, httptest.NewRequest(http.MethodGet, "/?page=99", nil), h.handler.HandleListForTest)

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Merchant 44")
	assert.NotContains(t, body, "Merchant 39")
	assert.Contains(t, body, `aria-current="page">3<`)
}

func TestQueryThenSearchFiltersList(t *testing.T) {
	records := fixture(45)
	records[7].MerchantName = "Acme Coffee"
	records[30].ProductType = "Coffee"
	h := newHarness(t, &stubSource{records: records})

	// prime the session and its CSRF token
	h.serve(t, httptest.NewRequest(http.MethodGet, "/?page=3", nil), h.handler.HandleListForTest)

	res := h.serve(t, formRequest("/merchants/query", url.Values{"q": {"coffee"}}), h.handler.HandleQueryForTest)
	require.Equal(t, http.StatusOK, res.Code)
	var state merchants.ListingState
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &state))
	assert.Equal(t, merchants.ListingState{Pending: "coffee", Active: "", Page: 3}, state)

	// typing alone does not filter
	res = h.serve(t, httptest.NewRequest(http.MethodGet, "/", nil), h.handler.HandleListForTest)
	assert.Contains(t, res.Body.String(), "Merchant 44")
	assert.Contains(t, res.Body.String(), `value="coffee"`)

	res = h.serve(t, formRequest("/merchants/search", url.Values{"q": {"coffee"}}), h.handler.HandleSearchForTest)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/", res.Header().Get("Location"))

	res = h.serve(t, httptest.NewRequest(http.MethodGet, "/", nil), h.handler.HandleListForTest)
	body := res.Body.String()
	assert.Contains(t, body, "Acme Coffee")
	assert.Contains(t, body, "Merchant 30")
	assert.NotContains(t, body, "Merchant 44")
	assert.Contains(t, body, "2 result(s)")
}

func TestListShowsRemoteFailure(t *testing.T) {
	h := newHarness(t, &stubSource{listErr: &shared.NetworkError{Op: "list merchants", Status: 503}})

	res := h.serve(t, httptest.NewRequest(http.MethodGet, "/", nil), h.handler.HandleListForTest)

	assert.Equal(t, http.StatusBadGateway, res.Code)
	assert.Contains(t, res.Body.String(), "The portal service is unavailable")
}

func TestReportWithoutRangeKeepsModalOpen(t *testing.T) {
	h := newHarness(t, &stubSource{records: fixture(3)})

	res := h.serve(t, httptest.NewRequest(http.MethodGet, "/merchants/report", nil), h.handler.HandleReportForTest)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Please select a date range")
	assert.Contains(t, body, `role="dialog"`)
	assert.Equal(t, 0, h.source.exports)
	assert.Equal(t, []string{"invalid"}, h.observer.outcomes)
}

func TestReportDownloadsSpreadsheet(t *testing.T) {
	h := newHarness(t, &stubSource{records: fixture(3)})

	res := h.serve(t, httptest.NewRequest(http.MethodGet, "/merchants/report?start=2024-01-01&end=2024-01-31", nil), h.handler.HandleReportForTest)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, `attachment; filename="merchants_report_2024-01-01_to_2024-01-31.xlsx"`, res.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", res.Header().Get("Content-Type"))
	assert.Equal(t, "sheet:2024-01-01:2024-01-31", res.Body.String())
	assert.Equal(t, []string{"ok"}, h.observer.outcomes)
}

func TestReportRemoteFailureReopensModal(t *testing.T) {
	h := newHarness(t, &stubSource{records: fixture(3), exportErr: &shared.NetworkError{Op: "export report", Status: 500}})

	res := h.serve(t, httptest.NewRequest(http.MethodGet, "/merchants/report?start=2024-01-01&end=2024-01-31", nil), h.handler.HandleReportForTest)

	require.Equal(t, http.StatusSeeOther, res.Code)
	location, err := url.Parse(res.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "open", location.Query().Get("report"))
	assert.Equal(t, "2024-01-01", location.Query().Get("start"))
	assert.Equal(t, []string{"failed"}, h.observer.outcomes)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	h := newHarness(t, &stubSource{})

	res := h.serve(t, formRequest("/create", url.Values{"merchantName": {"Acme"}, "KAMEmail": {"nope"}}), h.handler.HandleCreateForTest)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Enter a valid email address")
	assert.Contains(t, body, `value="Acme"`)
	assert.Empty(t, h.source.created)
}

func TestCreateSubmitsAndFlashes(t *testing.T) {
	h := newHarness(t, &stubSource{records: fixture(1)})
	values := url.Values{
		"merchantName":            {"Acme"},
		"businessType":            {"Retail"},
		"productType":             {"Wallet"},
		"merchantWallet":          {"W-1"},
		"merchantTechPersonEmail": {"tech@acme.test"},
		"merchantTechPersonPhone": {"0811"},
		"KAMEmail":                {"kam@portal.test"},
		"KAMPhone":                {"0812"},
	}

	res := h.serve(t, formRequest("/create", values), h.handler.HandleCreateForTest)

	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Len(t, h.source.created, 1)
	assert.Equal(t, "kam@portal.test", h.source.created[0].KAMEmail)

	res = h.serve(t, httptest.NewRequest(http.MethodGet, "/", nil), h.handler.HandleListForTest)
	assert.Contains(t, res.Body.String(), "Merchant Acme created.")
}
