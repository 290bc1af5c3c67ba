package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"
)

func TestScrapePB(t *testing.T) {
	lat, lon, err := scrapePB("https://www.google.com/maps/place/x/data=!3d54.5946!4d-5.9544")
	require.NoError(t, err)
	assert.InDelta(t, 54.5946, lat, 1e-9)
	assert.InDelta(t, -5.9544, lon, 1e-9)

	_, _, err = scrapePB("https://www.google.com/maps/place/x")
	assert.Error(t, err)
}

func TestDecodePolylineParam(t *testing.T) {
	encoded := polyline.EncodeCoords([][]float64{{54.58, -5.93}, {54.5946, -5.9544}})
	fullURL := "https://maps.app.goo.gl/x?" + url.Values{"g_ep": {string(encoded)}}.Encode()

	lat, lon, err := decodePolylineParam(fullURL)
	require.NoError(t, err)
	assert.InDelta(t, 54.5946, lat, 1e-4)
	assert.InDelta(t, -5.9544, lon, 1e-4)

	_, _, err = decodePolylineParam("https://maps.app.goo.gl/x")
	assert.Error(t, err)
}

func TestFormatCoordPair(t *testing.T) {
	assert.Equal(t, "54.58, -5.93", formatCoordPair(54.58, -5.93))
}

func TestResolveQueryFirstStepWins(t *testing.T) {
	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode([]nominatimResult{{Lat: "54.39", Lon: "-5.75"}})
	}))
	defer nominatim.Close()

	r := New(testKnown(t),
		WithHTTPClient(newRewriteClient(map[string]string{"nominatim.openstreetmap.org": nominatim.URL})),
	)

	got := r.ResolveQuery(context.Background(), "Main Street Crossgar", "https://maps.google.com/?daddr=x")
	assert.Equal(t, "54.39, -5.75", got)
}

func TestResolveQueryFallsThroughToPhoton(t *testing.T) {
	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode([]nominatimResult{})
	}))
	defer nominatim.Close()

	photon := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/api", req.URL.Path)
		w.Write([]byte(`{"features":[{"geometry":{"coordinates":[-5.7593,54.3963]}}]}`))
	}))
	defer photon.Close()

	r := New(testKnown(t),
		WithHTTPClient(newRewriteClient(map[string]string{
			"nominatim.openstreetmap.org": nominatim.URL,
			"photon.komoot.io":            photon.URL,
		})),
	)

	got := r.ResolveQuery(context.Background(), "Main Street Crossgar", "https://maps.google.com/?daddr=x")
	assert.Equal(t, "54.3963, -5.7593", got)
}

func TestResolveQueryUsesPBScrapeWithoutNetwork(t *testing.T) {
	failAll := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failAll.Close()

	r := New(testKnown(t),
		WithHTTPClient(newRewriteClient(map[string]string{
			"nominatim.openstreetmap.org": failAll.URL,
			"photon.komoot.io":            failAll.URL,
		})),
	)

	got := r.ResolveQuery(context.Background(), "opaque query",
		"https://www.google.com/maps/?daddr=x&data=!3d54.5946!4d-5.9544")
	assert.Equal(t, "54.5946, -5.9544", got)
}

func TestResolveQueryICBMMeta(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("output") == "classic" {
			w.Write([]byte(`<html><head><meta name="ICBM" content="54.5946, -5.9544"></head></html>`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer page.Close()

	fail := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer fail.Close()

	r := New(testKnown(t),
		WithHTTPClient(newRewriteClient(map[string]string{
			"nominatim.openstreetmap.org": fail.URL,
			"photon.komoot.io":            fail.URL,
			"maps.google.com":             page.URL,
		})),
	)

	got := r.ResolveQuery(context.Background(), "opaque query", "https://maps.google.com/?daddr=x")
	assert.Equal(t, "54.5946, -5.9544", got)
}

func TestResolveQueryRegionRetry(t *testing.T) {
	var sawRegion bool
	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query().Get("q")
		if q == "Main Street, Northern Ireland, UK" {
			sawRegion = true
			json.NewEncoder(w).Encode([]nominatimResult{{Lat: "54.1", Lon: "-5.9"}})
			return
		}
		json.NewEncoder(w).Encode([]nominatimResult{})
	}))
	defer nominatim.Close()

	fail := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer fail.Close()

	r := New(testKnown(t),
		WithHTTPClient(newRewriteClient(map[string]string{
			"nominatim.openstreetmap.org": nominatim.URL,
			"photon.komoot.io":            fail.URL,
			"maps.google.com":             fail.URL,
		})),
	)

	got := r.ResolveQuery(context.Background(), "Main Street", "https://maps.google.com/?daddr=x")
	assert.True(t, sawRegion)
	assert.Equal(t, "54.1, -5.9", got)
}

func TestResolveQueryExhausted(t *testing.T) {
	fail := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer fail.Close()

	r := New(testKnown(t),
		WithHTTPClient(newRewriteClient(map[string]string{
			"nominatim.openstreetmap.org": fail.URL,
			"photon.komoot.io":            fail.URL,
			"maps.google.com":             fail.URL,
		})),
	)

	assert.Empty(t, r.ResolveQuery(context.Background(), "opaque", "https://maps.google.com/?daddr=x"))
}

func TestGeoNamesRequiresUsername(t *testing.T) {
	r := New(testKnown(t))
	_, _, err := r.forwardGeoNames(context.Background(), "Crossgar")
	assert.Error(t, err)
}

func TestGeoNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "journeylog", req.URL.Query().Get("username"))
		w.Write([]byte(`{"geonames":[{"lat":"54.39","lng":"-5.75"}]}`))
	}))
	defer srv.Close()

	r := New(testKnown(t),
		WithHTTPClient(newRewriteClient(map[string]string{"api.geonames.org": srv.URL})),
		WithGeoNamesUser("journeylog"),
	)

	lat, lon, err := r.forwardGeoNames(context.Background(), "Crossgar")
	require.NoError(t, err)
	assert.InDelta(t, 54.39, lat, 1e-9)
	assert.InDelta(t, -5.75, lon, 1e-9)
}
