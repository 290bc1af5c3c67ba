// Package maplink expands shortened map share links and extracts raw
// origin/destination text and embedded coordinates, independent of which
// provider minted the link.
package maplink

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrUnsupportedLink marks a link whose shape the normalizer does not
// recognize. Terminal for the request: the caller must surface "could not
// process link", never a partial record.
var ErrUnsupportedLink = eris.New("maplink: unsupported link")

// coordPairRe is the strict "lat,lon" numeric pattern: optional sign,
// optional decimals, comma-separated, optional surrounding whitespace.
var coordPairRe = regexp.MustCompile(`^\s*-?\d+(\.\d+)?\s*,\s*-?\d+(\.\d+)?\s*$`)

// LooksLikeCoordPair reports whether text is a bare "lat,lon" pair.
func LooksLikeCoordPair(text string) bool {
	return coordPairRe.MatchString(text)
}

// Coords is an embedded coordinate pair recovered from a link.
type Coords struct {
	Lat float64
	Lon float64
}

// Parts is the provider-independent decomposition of a map link.
type Parts struct {
	// Origin and Destination are raw address text; either may be empty.
	Origin      string
	Destination string
	// Coords is an embedded coordinate pair, when the link carried one.
	Coords *Coords
	// NeedsCascade is set when Destination came from an opaque mobile-app
	// query and is not itself a coordinate pair; the caller should route it
	// through the wide geocoding cascade with FullURL for the scrape steps.
	NeedsCascade bool
	// FullURL is the expanded link the parts were extracted from.
	FullURL string
}

// Normalizer expands short links and extracts address parts.
type Normalizer struct {
	client *http.Client
}

// Option configures the Normalizer.
type Option func(*Normalizer)

// WithHTTPClient sets a custom HTTP client for redirect expansion.
func WithHTTPClient(hc *http.Client) Option {
	return func(n *Normalizer) { n.client = hc }
}

// New creates a Normalizer. Redirect expansion uses a 10 second timeout.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize expands a share link and extracts its parts. Links that are not
// recognizably map links fail with ErrUnsupportedLink before any network
// call.
func (n *Normalizer) Normalize(ctx context.Context, link string) (*Parts, error) {
	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || !isMapHost(u.Host) {
		return nil, ErrUnsupportedLink
	}

	// Apple-style links carry everything in the query; no expansion needed.
	full := link
	if !strings.Contains(u.Host, "apple.com") {
		full, err = n.Expand(ctx, link)
		if err != nil {
			zap.L().Warn("maplink: expansion failed", zap.String("link", link), zap.Error(err))
			return nil, ErrUnsupportedLink
		}
	}

	parts, err := Extract(full)
	if err != nil {
		return nil, err
	}
	return parts, nil
}

// Expand follows redirects to the canonical long URL. When the chain lands
// on the Google consent interstitial, the original target is recovered from
// its "continue" query parameter.
func (n *Normalizer) Expand(ctx context.Context, shortURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, shortURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "maplink: build expand request")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "maplink: expand request")
	}
	defer resp.Body.Close() //nolint:errcheck

	final := resp.Request.URL
	if strings.Contains(final.Host, "consent.google.com") {
		if cont := final.Query().Get("continue"); cont != "" {
			if unescaped, uerr := url.QueryUnescape(cont); uerr == nil {
				return unescaped, nil
			}
			return cont, nil
		}
	}
	return final.String(), nil
}

// Extract pulls origin/destination text and embedded coordinates out of an
// expanded map URL, trying URL shapes in a fixed order.
func Extract(fullURL string) (*Parts, error) {
	u, err := url.Parse(fullURL)
	if err != nil {
		return nil, ErrUnsupportedLink
	}
	path := u.Path
	query := u.Query()

	// Shape 1: /dir/<origin>/<destination>[/@lat,lon,...]
	if idx := strings.Index(path, "/dir/"); idx >= 0 {
		segments := strings.Split(path[idx+len("/dir/"):], "/")
		parts := &Parts{FullURL: fullURL}
		if len(segments) >= 1 {
			parts.Origin = decodeSegment(segments[0])
		}
		if len(segments) >= 2 {
			parts.Destination = decodeSegment(segments[1])
		}
		for _, seg := range segments {
			if c := parseAtSegment(seg); c != nil {
				parts.Coords = c
				break
			}
		}
		return parts, nil
	}

	// Shape 2: /place/<destination>
	if idx := strings.Index(path, "/place/"); idx >= 0 {
		rest := path[idx+len("/place/"):]
		dest := decodeSegment(strings.SplitN(rest, "/", 2)[0])
		return &Parts{Destination: dest, FullURL: fullURL}, nil
	}

	// Shape 3: mobile-app query style (?daddr=...&saddr=...)
	if daddr := query.Get("daddr"); daddr != "" {
		parts := &Parts{
			Origin:      query.Get("saddr"),
			Destination: daddr,
			FullURL:     fullURL,
		}
		if !LooksLikeCoordPair(daddr) {
			parts.NeedsCascade = true
		}
		return parts, nil
	}

	// Shape 4: alternate-provider query style (address / q / ll).
	dest := query.Get("address")
	if dest == "" {
		dest = query.Get("q")
	}
	if dest != "" || query.Get("ll") != "" {
		parts := &Parts{Destination: dest, FullURL: fullURL}
		if ll := query.Get("ll"); ll != "" {
			if c := parseCoordPair(ll); c != nil {
				parts.Coords = c
				if parts.Destination == "" {
					parts.Destination = ll
				}
			}
		}
		return parts, nil
	}

	return nil, ErrUnsupportedLink
}

// decodeSegment turns a +-encoded path segment into plain text.
func decodeSegment(seg string) string {
	seg = strings.ReplaceAll(seg, "+", " ")
	if unescaped, err := url.PathUnescape(seg); err == nil {
		seg = unescaped
	}
	return strings.TrimSpace(seg)
}

// parseAtSegment parses a "@lat,lon,17z" path segment.
func parseAtSegment(seg string) *Coords {
	if !strings.HasPrefix(seg, "@") {
		return nil
	}
	return parseCoordPair(strings.TrimPrefix(seg, "@"))
}

// parseCoordPair parses the first two comma-separated fields as lat,lon.
func parseCoordPair(s string) *Coords {
	fields := strings.Split(s, ",")
	if len(fields) < 2 {
		return nil
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return &Coords{Lat: lat, Lon: lon}
}

// isMapHost recognizes the link hosts the normalizer supports.
func isMapHost(host string) bool {
	host = strings.ToLower(host)
	switch {
	case strings.Contains(host, "maps.app.goo.gl"),
		strings.Contains(host, "goo.gl"),
		strings.Contains(host, "google.com"),
		strings.Contains(host, "google.co.uk"),
		strings.Contains(host, "maps.apple.com"):
		return true
	}
	return false
}
