package geocode

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-polyline"
)

// pbCoordRe matches the "!3d<lat>!4d<lon>" fragment Google embeds in the pb
// query parameter of long map URLs.
var pbCoordRe = regexp.MustCompile(`!3d(-?\d+\.\d+)!4d(-?\d+\.\d+)`)

// icbmMetaRe matches the ICBM geotag meta element in a classic HTML page.
var icbmMetaRe = regexp.MustCompile(`(?i)<meta\s+name=["']ICBM["']\s+content=["']\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*["']`)

// scrapePB recovers a coordinate pair from the pb parameter pattern of the
// full URL. No network call.
func scrapePB(fullURL string) (lat, lon float64, err error) {
	m := pbCoordRe.FindStringSubmatch(fullURL)
	if m == nil {
		return 0, 0, eris.New("geocode: no pb coordinate fragment")
	}
	lat, err1 := strconv.ParseFloat(m[1], 64)
	lon, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, eris.New("geocode: pb fragment non-numeric")
	}
	return lat, lon, nil
}

// scrapeICBM fetches the page's classic HTML rendering and pulls the ICBM
// geotag meta element.
func (r *Resolver) scrapeICBM(ctx context.Context, fullURL string) (lat, lon float64, err error) {
	classic := fullURL
	if u, perr := url.Parse(fullURL); perr == nil {
		q := u.Query()
		q.Set("output", "classic")
		u.RawQuery = q.Encode()
		classic = u.String()
	}

	body, err := r.get(ctx, classic)
	if err != nil {
		return 0, 0, err
	}

	m := icbmMetaRe.FindSubmatch(body)
	if m == nil {
		return 0, 0, eris.New("geocode: no ICBM meta tag")
	}
	lat, err1 := strconv.ParseFloat(string(m[1]), 64)
	lon, err2 := strconv.ParseFloat(string(m[2]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, eris.New("geocode: ICBM meta non-numeric")
	}
	return lat, lon, nil
}

// decodePolylineParam decodes an encoded polyline query parameter and
// returns its trailing point.
func decodePolylineParam(fullURL string) (lat, lon float64, err error) {
	u, perr := url.Parse(fullURL)
	if perr != nil {
		return 0, 0, eris.Wrap(perr, "geocode: parse url for polyline")
	}
	encoded := u.Query().Get("g_ep")
	if encoded == "" {
		return 0, 0, eris.New("geocode: no polyline parameter")
	}

	coords, _, derr := polyline.DecodeCoords([]byte(encoded))
	if derr != nil || len(coords) == 0 {
		return 0, 0, eris.New("geocode: polyline decode failed")
	}

	last := coords[len(coords)-1]
	if len(last) < 2 {
		return 0, 0, eris.New("geocode: polyline point malformed")
	}
	return last[0], last[1], nil
}

// formatCoordPair renders coordinates back into the "lat, lon" text form the
// primary resolve path accepts.
func formatCoordPair(lat, lon float64) string {
	return strings.TrimSpace(strconv.FormatFloat(lat, 'f', -1, 64) + ", " + strconv.FormatFloat(lon, 'f', -1, 64))
}
