package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/milldrew/journeylog/internal/model"
)

const (
	nominatimSearchURL  = "https://nominatim.openstreetmap.org/search"
	nominatimReverseURL = "https://nominatim.openstreetmap.org/reverse"
)

// nominatimResult is one entry of a Nominatim search response, and the whole
// body of a reverse response.
type nominatimResult struct {
	Lat     string            `json:"lat"`
	Lon     string            `json:"lon"`
	Address map[string]string `json:"address"`
}

// forwardNominatim geocodes free text to a location.
func (r *Resolver) forwardNominatim(ctx context.Context, query string) (*model.LocationInfo, error) {
	params := url.Values{
		"q":              {query},
		"format":         {"json"},
		"addressdetails": {"1"},
		"limit":          {"1"},
	}

	body, err := r.get(ctx, nominatimSearchURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse response")
	}
	if len(results) == 0 {
		return nil, nil
	}
	return nominatimToLocation(results[0])
}

// reverseNominatim converts coordinates to address components.
func (r *Resolver) reverseNominatim(ctx context.Context, lat, lon float64) (*model.LocationInfo, error) {
	params := url.Values{
		"lat":            {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":            {strconv.FormatFloat(lon, 'f', -1, 64)},
		"format":         {"json"},
		"addressdetails": {"1"},
	}

	body, err := r.get(ctx, nominatimReverseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var result nominatimResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse reverse response")
	}
	if len(result.Address) == 0 {
		return nil, nil
	}

	loc := &model.LocationInfo{
		Town:     pickTown(result.Address),
		Postcode: result.Address["postcode"],
		Raw:      result.Address,
	}
	loc.SetCoords(lat, lon)
	return loc, nil
}

// nominatimToLocation converts a search result, rejecting replies whose
// coordinate fields do not parse as numbers.
func nominatimToLocation(res nominatimResult) (*model.LocationInfo, error) {
	lat, err1 := strconv.ParseFloat(res.Lat, 64)
	lon, err2 := strconv.ParseFloat(res.Lon, 64)
	if err1 != nil || err2 != nil {
		return nil, eris.Errorf("geocode: nominatim non-numeric coordinates %q,%q", res.Lat, res.Lon)
	}

	loc := &model.LocationInfo{
		Town:     pickTown(res.Address),
		Postcode: res.Address["postcode"],
		Raw:      res.Address,
	}
	loc.SetCoords(lat, lon)
	return loc, nil
}

// get issues a bounded GET with the configured User-Agent and returns the
// body of a 200 response.
func (r *Resolver) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: build request")
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: status %d from %s", resp.StatusCode, reqURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: read body")
	}
	return body, nil
}
