package geocode

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
)

const geonamesSearchURL = "http://api.geonames.org/searchJSON"

// geonamesResponse is the JSON body returned by the GeoNames search API.
type geonamesResponse struct {
	Geonames []struct {
		Lat string `json:"lat"`
		Lng string `json:"lng"`
	} `json:"geonames"`
}

// forwardGeoNames geocodes free text via GeoNames. Requires a configured
// username; the cascade skips this step without one.
func (r *Resolver) forwardGeoNames(ctx context.Context, query string) (lat, lon float64, err error) {
	if r.geonamesUser == "" {
		return 0, 0, eris.New("geocode: geonames username not configured")
	}

	params := url.Values{
		"q":        {query},
		"maxRows":  {"1"},
		"username": {r.geonamesUser},
	}

	body, err := r.get(ctx, geonamesSearchURL+"?"+params.Encode())
	if err != nil {
		return 0, 0, err
	}

	var resp geonamesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, 0, eris.Wrap(err, "geocode: geonames parse response")
	}
	if len(resp.Geonames) == 0 {
		return 0, 0, eris.New("geocode: geonames empty result")
	}

	lat, err1 := strconv.ParseFloat(resp.Geonames[0].Lat, 64)
	lon, err2 := strconv.ParseFloat(resp.Geonames[0].Lng, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, eris.New("geocode: geonames non-numeric coordinates")
	}
	return lat, lon, nil
}
