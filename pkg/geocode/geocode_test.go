package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milldrew/journeylog/internal/gazetteer"
)

func testKnown(t *testing.T) *gazetteer.KnownAddresses {
	t.Helper()
	known, err := gazetteer.LoadKnownAddresses("")
	require.NoError(t, err)
	return known
}

func TestResolveEmptyText(t *testing.T) {
	r := New(testKnown(t))
	assert.Nil(t, r.Resolve(context.Background(), ""))
	assert.Nil(t, r.Resolve(context.Background(), "   "))
}

func TestResolveKnownPlaceSkipsNetwork(t *testing.T) {
	// No host mappings: any network call fails the test via nil result.
	r := New(testKnown(t), WithHTTPClient(newRewriteClient(nil)))

	loc := r.Resolve(context.Background(), "Royal Victoria Hospital, Belfast")
	require.NotNil(t, loc)
	assert.Equal(t, "BT12 6BA", loc.Postcode)
	assert.InDelta(t, 54.5946314, *loc.Lat, 1e-4)
}

func TestResolveForward(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/search", req.URL.Path)
		assert.Equal(t, "10 Main Street, Crossgar", req.URL.Query().Get("q"))
		assert.Equal(t, "journeylog-test", req.Header.Get("User-Agent"))
		json.NewEncoder(w).Encode([]nominatimResult{{
			Lat: "54.3963", Lon: "-5.7593",
			Address: map[string]string{"road": "Main Street", "village": "Crossgar", "postcode": "BT30 9EH"},
		}})
	}))
	defer srv.Close()

	r := New(testKnown(t),
		WithHTTPClient(newRewriteClient(map[string]string{"nominatim.openstreetmap.org": srv.URL})),
		WithUserAgent("journeylog-test"),
	)

	loc := r.Resolve(context.Background(), "10 Main Street, Crossgar")
	require.NotNil(t, loc)
	assert.InDelta(t, 54.3963, *loc.Lat, 1e-9)
	assert.Equal(t, "Crossgar", loc.Town)
	assert.Equal(t, "BT30 9EH", loc.Postcode)
}

func TestResolveCoordPairUsesReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/reverse", req.URL.Path)
		assert.Equal(t, "54.58", req.URL.Query().Get("lat"))
		json.NewEncoder(w).Encode(nominatimResult{
			Address: map[string]string{"city": "Belfast", "postcode": "BT1 1AA"},
		})
	}))
	defer srv.Close()

	r := New(testKnown(t),
		WithHTTPClient(newRewriteClient(map[string]string{"nominatim.openstreetmap.org": srv.URL})),
	)

	loc := r.Resolve(context.Background(), "54.58, -5.93")
	require.NotNil(t, loc)
	assert.Equal(t, "Belfast", loc.Town)
	assert.InDelta(t, 54.58, *loc.Lat, 1e-9)
	assert.InDelta(t, -5.93, *loc.Lon, 1e-9)
}

func TestResolveSwallowsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := New(testKnown(t),
		WithHTTPClient(newRewriteClient(map[string]string{"nominatim.openstreetmap.org": srv.URL})),
	)

	assert.Nil(t, r.Resolve(context.Background(), "10 Main Street, Crossgar"))
}

func TestResolveRejectsNonNumericCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode([]nominatimResult{{Lat: "not-a-number", Lon: "-5.9"}})
	}))
	defer srv.Close()

	r := New(testKnown(t),
		WithHTTPClient(newRewriteClient(map[string]string{"nominatim.openstreetmap.org": srv.URL})),
	)

	assert.Nil(t, r.Resolve(context.Background(), "somewhere"))
}

func TestPickTownPreference(t *testing.T) {
	assert.Equal(t, "T", pickTown(map[string]string{"town": "T", "city": "C", "village": "V"}))
	assert.Equal(t, "C", pickTown(map[string]string{"city": "C", "village": "V"}))
	assert.Equal(t, "V", pickTown(map[string]string{"village": "V"}))
	assert.Empty(t, pickTown(map[string]string{"county": "Down"}))
}
