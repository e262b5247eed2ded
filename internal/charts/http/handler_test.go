package charthttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxp/merchant-portal/internal/charts"
	"github.com/maxp/merchant-portal/internal/shared"
	_ "github.com/maxp/merchant-portal/internal/testing/guard"
	"github.com/maxp/merchant-portal/internal/view"
)

type stubAggregates struct {
	aggregates charts.Aggregates
	err        error
}

func (s stubAggregates) FetchAggregates(ctx context.Context) (charts.Aggregates, error) {
	return s.aggregates, s.err
}

func newTestHandler(t *testing.T, source charts.AggregateSource) *Handler {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	return NewHandler(nil, source, templates, shared.NewCSRFManager("secret"))
}

func sample() charts.Aggregates {
	return charts.Aggregates{
		ProductTypes: charts.Distribution{{Name: "Electronics", Count: 3}, {Name: "Software", Count: 5}},
		KAM: charts.Distribution{
			{Name: "first.manager@example.com", Count: 2},
			{Name: "second@example.com", Count: 6},
		},
	}
}

func TestProductsRendersCharts(t *testing.T) {
	handler := newTestHandler(t, stubAggregates{aggregates: sample()})

	rr := httptest.NewRecorder()
	handler.HandleProductsForTest(rr, httptest.NewRequest(http.MethodGet, "/products", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "product-distribution-bar-gradient-0")
	assert.Contains(t, body, "Software: 5 merchants")
	assert.Contains(t, body, "first.manager@exampl...")
	assert.Contains(t, body, `href="/products?segment=1"`)
	// the largest KAM bucket is focused by default
	assert.Contains(t, body, ">second@example.com</text>")
}

func TestProductsFocusesRequestedSegment(t *testing.T) {
	handler := newTestHandler(t, stubAggregates{aggregates: sample()})

	rr := httptest.NewRecorder()
	handler.HandleProductsForTest(rr, httptest.NewRequest(http.MethodGet, "/products?segment=1", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), ">first.manager@example.com</text>")
}

func TestProductsShowsInlineError(t *testing.T) {
	handler := newTestHandler(t, stubAggregates{err: &shared.NetworkError{Op: "fetch aggregates", Status: 500}})

	rr := httptest.NewRecorder()
	handler.HandleProductsForTest(rr, httptest.NewRequest(http.MethodGet, "/products", nil))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Error: The portal service is unavailable")
	assert.False(t, strings.Contains(body, "<svg xmlns"))
}

func TestProductsEmptyDistributions(t *testing.T) {
	handler := newTestHandler(t, stubAggregates{})

	rr := httptest.NewRecorder()
	handler.HandleProductsForTest(rr, httptest.NewRequest(http.MethodGet, "/products", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No product data available.")
	assert.Contains(t, rr.Body.String(), "No KAM data available.")
}

func TestAnalyticsAPI(t *testing.T) {
	handler := newTestHandler(t, stubAggregates{aggregates: sample()})

	rr := httptest.NewRecorder()
	handler.handleAPI(rr, httptest.NewRequest(http.MethodGet, "/api/analytics?segment=7", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp analyticsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	require.Len(t, resp.ProductTypes, 2)
	assert.Equal(t, "Software", resp.ProductTypes[0].Label)
	assert.Equal(t, charts.Palette[1], resp.ProductTypes[0].Color)
	assert.Equal(t, 0, resp.Focused)
}

func TestAnalyticsAPIMalformed(t *testing.T) {
	handler := newTestHandler(t, stubAggregates{err: &shared.MalformedResponseError{Op: "fetch aggregates"}})

	rr := httptest.NewRecorder()
	handler.handleAPI(rr, httptest.NewRequest(http.MethodGet, "/api/analytics", nil))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}
