package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-insight/internal/observability"
	"github.com/i474232898/weather-insight/internal/store"
	"github.com/i474232898/weather-insight/internal/weather"
)

var now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type stubProvider struct {
	reading weather.Reading
	err     error
}

func (p stubProvider) Name() string { return "stub" }

func (p stubProvider) Fetch(context.Context, weather.Location) (weather.Reading, error) {
	return p.reading, p.err
}

func newTestApp(t *testing.T, p weather.Provider, mapFile string) (*fiber.App, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	svc := weather.NewService(st, p, observability.DiscardLogger(), observability.NewMetricsForTesting(),
		weather.WithClock(clockwork.NewFakeClockAt(now)))

	app := fiber.New()
	RegisterRoutes(app, svc, Options{MapFile: mapFile})
	return app, st
}

func postForm(t *testing.T, app *fiber.App, values url.Values) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return do(t, app, req)
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestIndex_ShowsForm(t *testing.T) {
	app, _ := newTestApp(t, stubProvider{}, "")

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `name="city"`)
	assert.Contains(t, body, `name="units"`)
}

func TestSubmit_RendersImperialAndRecords(t *testing.T) {
	app, st := newTestApp(t, stubProvider{reading: weather.Reading{TemperatureC: 22.5, HumidityPct: 35}}, "")

	status, body := postForm(t, app, url.Values{"city": {"Austin"}, "state": {"TX"}, "units": {"imperial"}})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Weather in Austin, TX")
	assert.Contains(t, body, "72.5°F")
	assert.Contains(t, body, "Humidity: 35%")

	all, err := st.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.InDelta(t, 22.5, all[0].TemperatureC, 1e-9)
	assert.Equal(t, now, all[0].CollectedAt)
}

func TestSubmit_Metric(t *testing.T) {
	app, _ := newTestApp(t, stubProvider{reading: weather.Reading{TemperatureC: 22.5, HumidityPct: 35}}, "")

	_, body := postForm(t, app, url.Values{"city": {"Austin"}, "state": {"TX"}, "units": {"metric"}})
	assert.Contains(t, body, "22.5°C")
}

func TestSubmit_NotFound(t *testing.T) {
	app, st := newTestApp(t, stubProvider{err: weather.ErrLocationNotFound}, "")

	status, body := postForm(t, app, url.Values{"city": {"Nowhere"}, "state": {"ZZ"}, "units": {"metric"}})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "City not found or invalid input.")

	all, err := st.All()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubmit_InvalidInput(t *testing.T) {
	app, _ := newTestApp(t, stubProvider{}, "")

	for name, values := range map[string]url.Values{
		"missing state": {"city": {"Austin"}, "units": {"metric"}},
		"bad units":     {"city": {"Austin"}, "state": {"TX"}, "units": {"kelvin"}},
	} {
		t.Run(name, func(t *testing.T) {
			status, body := postForm(t, app, values)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, body, "City not found or invalid input.")
		})
	}
}

func TestSubmit_UpstreamFailure(t *testing.T) {
	app, _ := newTestApp(t, stubProvider{err: assert.AnError}, "")

	status, body := postForm(t, app, url.Values{"city": {"Austin"}, "state": {"TX"}, "units": {"metric"}})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body, "unavailable")
}

func TestMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.html")
	app, _ := newTestApp(t, stubProvider{}, path)

	status, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/map", nil))
	assert.Equal(t, http.StatusNotFound, status)

	require.NoError(t, os.WriteFile(path, []byte("<html>map</html>"), 0o644))
	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/map", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "<html>map</html>", body)
}

func TestCurrent(t *testing.T) {
	app, st := newTestApp(t, stubProvider{}, "")

	status, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather/current?city=Austin", nil))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather/current?city=Austin&state=TX", nil))
	assert.Equal(t, http.StatusNotFound, status)

	_, err := st.Upsert(weather.Observation{CollectedAt: now, City: "Austin", State: "TX", TemperatureC: 20, HumidityPct: 40})
	require.NoError(t, err)

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather/current?city=Austin&state=TX", nil))
	require.Equal(t, http.StatusOK, status)

	var got weather.Observation
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "Austin", got.City)
	assert.InDelta(t, 20.0, got.TemperatureC, 1e-9)
}

func TestHistory(t *testing.T) {
	app, st := newTestApp(t, stubProvider{}, "")
	for _, h := range []int{0, 25, 50} {
		_, err := st.Upsert(weather.Observation{
			CollectedAt: now.Add(time.Duration(h) * time.Hour), City: "Austin", State: "TX", TemperatureC: float64(h),
		})
		require.NoError(t, err)
	}

	q := url.Values{
		"city":  {"Austin"},
		"state": {"TX"},
		"from":  {now.Add(time.Hour).Format(time.RFC3339)},
		"to":    {"2024-01-03 15:00:00"},
	}
	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather/history?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, status)

	var got struct {
		Observations []weather.Observation `json:"observations"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.Len(t, got.Observations, 2)
	assert.InDelta(t, 25.0, got.Observations[0].TemperatureC, 1e-9)

	q.Set("to", "yesterday")
	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather/history?"+q.Encode(), nil))
	assert.Equal(t, http.StatusBadRequest, status)
}
