package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tafypz/ercot-rts/internal/repo"
	"github.com/tafypz/ercot-rts/pkg/fetcher"
	"github.com/tafypz/ercot-rts/pkg/models"
	"github.com/tafypz/ercot-rts/pkg/settlement"
)

const testPage = `<html><body><table class="tableStyle">
<tr><th>Oper Day</th><th>Interval Ending</th><th>HB_HOUSTON</th><th>HB_NORTH</th></tr>
<tr><td>01/15/2024</td><td>0915</td><td>20.00</td><td>22.50</td></tr>
<tr><td>01/15/2024</td><td>0930</td><td>21.00</td><td>23.10</td></tr>
</table></body></html>`

type stubFetcher struct {
	body string
	err  error
}

func (s stubFetcher) Fetch(context.Context, string) ([]byte, error) {
	return []byte(s.body), s.err
}

type stubHistory struct {
	query  repo.PriceQuery
	prices []models.Price
	err    error
}

func (s *stubHistory) Find(_ context.Context, q repo.PriceQuery) ([]models.Price, error) {
	s.query = q
	return s.prices, s.err
}

func newTestApp(f settlement.PageFetcher, history HistoryStore, token string) *fiber.App {
	now := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	parser := settlement.NewParser(
		settlement.WithFetcher(f),
		settlement.WithLocation(time.UTC),
		settlement.WithClock(func() time.Time { return now }),
	)
	app := fiber.New()
	SetupRoutes(app, NewHandler(parser, history), token)
	return app
}

func doGet(t *testing.T, app *fiber.App, target string, headers map[string]string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestHealth(t *testing.T) {
	app := newTestApp(stubFetcher{}, &stubHistory{}, "secret")

	status, body := doGet(t, app, "/health", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestLocations(t *testing.T) {
	app := newTestApp(stubFetcher{body: testPage}, &stubHistory{}, "")

	status, body := doGet(t, app, "/api/locations", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"HB_HOUSTON", "HB_NORTH"}, body["items"])
}

func TestPrices_DefaultCutoff(t *testing.T) {
	app := newTestApp(stubFetcher{body: testPage}, &stubHistory{}, "")

	status, body := doGet(t, app, "/api/prices?location=HB_NORTH", nil)

	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["total"])
	items := body["items"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, 22.5, first["price"])
	assert.Equal(t, "HB_NORTH", first["hub"])
	assert.Equal(t, "2024-01-15T09:15:00Z", first["timestamp"])
}

func TestPrices_Since(t *testing.T) {
	app := newTestApp(stubFetcher{body: testPage}, &stubHistory{}, "")

	status, body := doGet(t, app, "/api/prices?location=HB_NORTH&since=2024-01-15T09:20:00Z", nil)

	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])
	assert.Equal(t, "2024-01-15T09:20:00Z", body["cutoff"])
}

func TestPrices_BadRequests(t *testing.T) {
	app := newTestApp(stubFetcher{body: testPage}, &stubHistory{}, "")

	tests := []struct {
		name   string
		target string
	}{
		{"missing location", "/api/prices"},
		{"unknown location", "/api/prices?location=HB_PAN"},
		{"date column", "/api/prices?location=Oper%20Day"},
		{"bad since", "/api/prices?location=HB_NORTH&since=yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doGet(t, app, tt.target, nil)

			assert.Equal(t, http.StatusBadRequest, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestPrices_UpstreamFailure(t *testing.T) {
	app := newTestApp(stubFetcher{err: &fetcher.TransportError{URL: settlement.DefaultURL, StatusCode: 503}}, &stubHistory{}, "")

	status, _ := doGet(t, app, "/api/prices?location=HB_NORTH", nil)

	assert.Equal(t, http.StatusBadGateway, status)
}

func TestPrices_StructureFailure(t *testing.T) {
	app := newTestApp(stubFetcher{body: "<html></html>"}, &stubHistory{}, "")

	status, _ := doGet(t, app, "/api/locations", nil)

	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestHistory(t *testing.T) {
	history := &stubHistory{prices: []models.Price{
		{Hub: "HB_NORTH", Price: 22.5, Timestamp: time.Date(2024, 1, 15, 9, 15, 0, 0, time.UTC)},
	}}
	app := newTestApp(stubFetcher{}, history, "")

	status, body := doGet(t, app, "/api/prices/history?location=HB_NORTH&from=2024-01-15T00:00:00Z&limit=10", nil)

	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])
	assert.Equal(t, "HB_NORTH", history.query.Hub)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), history.query.From)
	assert.True(t, history.query.To.IsZero())
	assert.EqualValues(t, 10, history.query.Limit)
}

func TestHistory_BadRequests(t *testing.T) {
	app := newTestApp(stubFetcher{}, &stubHistory{}, "")

	for _, target := range []string{
		"/api/prices/history",
		"/api/prices/history?location=HB_NORTH&from=today",
		"/api/prices/history?location=HB_NORTH&limit=-1",
	} {
		status, _ := doGet(t, app, target, nil)
		assert.Equal(t, http.StatusBadRequest, status, target)
	}
}

func TestHistory_StoreError(t *testing.T) {
	app := newTestApp(stubFetcher{}, &stubHistory{err: errors.New("mongo down")}, "")

	status, _ := doGet(t, app, "/api/prices/history?location=HB_NORTH", nil)

	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestInternalAuth(t *testing.T) {
	app := newTestApp(stubFetcher{body: testPage}, &stubHistory{}, "secret")

	status, _ := doGet(t, app, "/api/locations", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doGet(t, app, "/api/locations", map[string]string{InternalTokenHeader: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doGet(t, app, "/api/locations", map[string]string{InternalTokenHeader: "secret"})
	assert.Equal(t, http.StatusOK, status)
}
