package geocode

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/rotisserie/eris"
)

const photonSearchURL = "https://photon.komoot.io/api"

// photonResponse is the GeoJSON body returned by Photon.
type photonResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
	} `json:"features"`
}

// forwardPhoton geocodes free text via the free Photon service. Only
// coordinates are taken from it; address components come from Nominatim.
func (r *Resolver) forwardPhoton(ctx context.Context, query string) (lat, lon float64, err error) {
	params := url.Values{
		"q":     {query},
		"limit": {"1"},
	}

	body, err := r.get(ctx, photonSearchURL+"?"+params.Encode())
	if err != nil {
		return 0, 0, err
	}

	var resp photonResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, 0, eris.Wrap(err, "geocode: photon parse response")
	}
	if len(resp.Features) == 0 || len(resp.Features[0].Geometry.Coordinates) < 2 {
		return 0, 0, eris.New("geocode: photon empty result")
	}

	coords := resp.Features[0].Geometry.Coordinates
	return coords[1], coords[0], nil
}
