package rest_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lintang/dronepatrol/pkg/datastructure"
	"lintang/dronepatrol/pkg/engine/planner"
	"lintang/dronepatrol/pkg/kv"
	"lintang/dronepatrol/pkg/server/rest"
	"lintang/dronepatrol/pkg/server/rest/service"
	"lintang/dronepatrol/pkg/spatial"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	g := datastructure.NewGraph()
	a1 := datastructure.NewLocation("A-Center", datastructure.ZoneAerodrome, 0, 0, 280)
	a2 := datastructure.NewLocation("A-Outline-0", datastructure.ZoneAerodrome, 0, 1, 280)
	g.MustAdd(
		datastructure.NewLocation("T1", datastructure.ZoneTerminal, -2.5, 0, 340),
		a1, a2,
		datastructure.NewLocation("A", datastructure.ZoneHotspot, -2, 0, 300),
		datastructure.NewLocation("B", datastructure.ZoneHotspot, -2, 1, 300),
		datastructure.NewLocation("C", datastructure.ZoneHotspot, -2, -1, 300),
	)
	a1.Connect(a2)

	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	require.NoError(t, err)
	store := kv.NewKVDB(db)
	t.Cleanup(func() { store.Close() })
	_, err = store.SaveCoverage("test", g.Locations(), false)
	require.NoError(t, err)

	p := planner.New(planner.Config{
		ExclusionCenter:   datastructure.NewCoordinate(0, 0),
		ExclusionRadius:   1,
		TerminalReference: datastructure.NewCoordinate(-2, 0),
	})
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	svc := service.NewPatrolService("test", g, p, store, spatial.NewIndex(g.Locations()), logger)

	r := chi.NewRouter()
	m := rest.NewMetrics(prometheus.NewRegistry())
	r.Use(rest.PromeHttpMiddleware(m))
	rest.PatrolRouter(r, svc, m)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func ids(v any) []string {
	res := []string{}
	for _, id := range v.([]any) {
		res = append(res, id.(string))
	}
	return res
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t)

	t.Run("latest before any plan", func(t *testing.T) {
		rec, body := do(t, r, http.MethodGet, "/api/patrol/routes/latest", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Resource not found.", body["status"])
	})

	t.Run("replan", func(t *testing.T) {
		rec, body := do(t, r, http.MethodPost, "/api/patrol/routes", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), body["id"])
		assert.Equal(t, "complete", body["status"])
		assert.Equal(t, true, body["complete"])
		assert.Equal(t, []string{"A", "B", "C", "A"}, ids(body["route"]))
		assert.Equal(t, 4.0, body["length_deg"])
		assert.NotEmpty(t, body["polyline"])
	})

	t.Run("latest and by id", func(t *testing.T) {
		rec, body := do(t, r, http.MethodGet, "/api/patrol/routes/latest", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), body["id"])

		rec, body = do(t, r, http.MethodGet, "/api/patrol/routes/1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"A", "B", "C", "A"}, ids(body["route"]))

		rec, _ = do(t, r, http.MethodGet, "/api/patrol/routes/7", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec, _ = do(t, r, http.MethodGet, "/api/patrol/routes/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("layout after replan", func(t *testing.T) {
		rec, body := do(t, r, http.MethodGet, "/api/patrol/layout", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "test", body["name"])
		assert.Equal(t, float64(3), body["hotspots"])
		assert.Len(t, body["locations"], 6)
		assert.Len(t, body["segments"], 4)

		first := body["locations"].([]any)[0].(map[string]any)
		assert.Equal(t, "TERMINAL", first["zone"])
	})
}

func TestPreview(t *testing.T) {
	r := newTestRouter(t)

	t.Run("stall", func(t *testing.T) {
		rec, body := do(t, r, http.MethodPost, "/api/patrol/routes/preview", `{"locations":[
			{"id":"A","zone":"hotspot","lat":0,"lon":-2},
			{"id":"B","zone":"HOTSPOT","lat":0,"lon":2},
			{"id":"T","zone":"terminal","lat":0,"lon":-3}]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "incomplete", body["status"])
		assert.Equal(t, false, body["complete"])
		assert.Equal(t, []string{"A"}, ids(body["route"]))
		_, hasID := body["id"]
		assert.False(t, hasID)
	})

	t.Run("no hotspots", func(t *testing.T) {
		rec, body := do(t, r, http.MethodPost, "/api/patrol/routes/preview", `{"locations":[]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "no_hotspots", body["status"])
	})

	t.Run("not persisted", func(t *testing.T) {
		rec, _ := do(t, r, http.MethodGet, "/api/patrol/routes/latest", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	for name, payload := range map[string]string{
		"missing locations": `{}`,
		"bad json":          `{"locations":`,
	} {
		t.Run(name, func(t *testing.T) {
			rec, body := do(t, r, http.MethodPost, "/api/patrol/routes/preview", payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Invalid request.", body["status"])
		})
	}

	t.Run("unknown zone", func(t *testing.T) {
		rec, body := do(t, r, http.MethodPost, "/api/patrol/routes/preview", `{"locations":[{"id":"A","zone":"runway","lat":0,"lon":0}]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Bad request.", body["status"])
		assert.Contains(t, body["error"], "locations[0]")
	})

	t.Run("duplicate id", func(t *testing.T) {
		rec, body := do(t, r, http.MethodPost, "/api/patrol/routes/preview", `{"locations":[
			{"id":"A","zone":"hotspot","lat":0,"lon":0},
			{"id":"A","zone":"hotspot","lat":1,"lon":1}]}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Resource conflict.", body["status"])
		assert.Contains(t, body["error"], "locations[1]")
	})

	t.Run("validation", func(t *testing.T) {
		rec, body := do(t, r, http.MethodPost, "/api/patrol/routes/preview", `{"locations":[{"id":"","zone":"hotspot","lat":95,"lon":0}]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Len(t, body["validation"], 2)
	})
}

func TestLayoutLookups(t *testing.T) {
	r := newTestRouter(t)

	rec, body := do(t, r, http.MethodGet, "/api/patrol/layout/nearest?lat=-2.4&lon=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "T1", body["id"])

	rec, body = do(t, r, http.MethodGet, "/api/patrol/layout/nearest?lat=-2.4&lon=0&zone=hotspot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A", body["id"])

	rec, _ = do(t, r, http.MethodGet, "/api/patrol/layout/nearest?lat=-2.4&lon=0&zone=property-line", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, r, http.MethodGet, "/api/patrol/layout/nearest?lat=abc&lon=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = do(t, r, http.MethodGet, "/api/patrol/layout/nearest?lat=100&lon=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, body["validation"])

	rec, _ = do(t, r, http.MethodGet, "/api/patrol/layout/nearest?lat=0&lon=0&zone=runway", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/patrol/layout/coverage?lat=-2&lon=0&radius_km=1", nil)
	cov := httptest.NewRecorder()
	r.ServeHTTP(cov, req)
	require.Equal(t, http.StatusOK, cov.Code)
	var locs []service.LocationView
	require.NoError(t, json.Unmarshal(cov.Body.Bytes(), &locs))
	require.Len(t, locs, 1)
	assert.Equal(t, "A", locs[0].ID)

	rec, _ = do(t, r, http.MethodGet, "/api/patrol/layout/coverage?lat=-2&lon=0&radius_km=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLocationsWithin(t *testing.T) {
	r := newTestRouter(t)

	get := func(t *testing.T, query string) []string {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/api/patrol/layout/within?"+query, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var locs []service.LocationView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &locs))
		res := []string{}
		for _, loc := range locs {
			res = append(res, loc.ID)
		}
		return res
	}

	t.Run("every zone", func(t *testing.T) {
		assert.Equal(t, []string{"T1", "A", "B"}, get(t, "min_lat=-2.6&min_lon=-0.5&max_lat=-1.9&max_lon=1.5"))
	})

	t.Run("one zone", func(t *testing.T) {
		assert.Equal(t, []string{"A", "B"}, get(t, "min_lat=-2.6&min_lon=-0.5&max_lat=-1.9&max_lon=1.5&zone=hotspot"))
	})

	t.Run("aerodrome box", func(t *testing.T) {
		assert.Equal(t, []string{"A-Center", "A-Outline-0"}, get(t, "min_lat=-0.5&min_lon=-0.5&max_lat=0.5&max_lon=1.5"))
	})

	for name, query := range map[string]string{
		"missing bound": "min_lat=-2.6&min_lon=-0.5&max_lat=-1.9",
		"flat box":      "min_lat=-2&min_lon=-0.5&max_lat=-2&max_lon=1.5",
		"inverted box":  "min_lat=-1.9&min_lon=-0.5&max_lat=-2.6&max_lon=1.5",
		"unknown zone":  "min_lat=-2.6&min_lon=-0.5&max_lat=-1.9&max_lon=1.5&zone=runway",
	} {
		t.Run(name, func(t *testing.T) {
			rec, _ := do(t, r, http.MethodGet, "/api/patrol/layout/within?"+query, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSegmentWeight(t *testing.T) {
	r := newTestRouter(t)

	rec, body := do(t, r, http.MethodPost, "/api/patrol/segments/A-Center/A-Outline-0/override", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "weight changed from 5 to 1 for emergency purpose", body["message"])

	rec, body = do(t, r, http.MethodPost, "/api/patrol/segments/A-Center/A-Outline-0/recover", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "weight restored from 1 to 5 after emergency", body["message"])

	rec, _ = do(t, r, http.MethodPost, "/api/patrol/segments/A/B/override", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)
	r := chi.NewRouter()
	r.Use(rest.PromeHttpMiddleware(m))
	r.Get("/api/patrol/routes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/patrol/routes/"+id, nil))
	}

	n, err := testutil.GatherAndCount(reg, "dronepatrol_response_status_code")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "one series for the route pattern")

	expected := `
# HELP dronepatrol_response_status_code The status code of http response
# TYPE dronepatrol_response_status_code counter
dronepatrol_response_status_code{method="GET",path="/api/patrol/routes/{id}",status="418"} 3
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "dronepatrol_response_status_code"))
}
