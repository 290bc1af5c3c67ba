// Package resolver sequences link normalization, geocoding, address
// parsing, visit classification and distance calculation into a single
// journey record per share link.
package resolver

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/milldrew/journeylog/internal/maplink"
	"github.com/milldrew/journeylog/internal/model"
)

// ErrUnsupportedLink is re-exported so callers can test against one package.
var ErrUnsupportedLink = maplink.ErrUnsupportedLink

// ErrResolutionFailed marks a request whose origin and destination both
// failed to resolve. Like an unsupported link, it is fatal for the request.
var ErrResolutionFailed = eris.New("resolver: origin and destination unresolved")

// LinkNormalizer expands and decomposes a share link.
type LinkNormalizer interface {
	Normalize(ctx context.Context, link string) (*maplink.Parts, error)
}

// Geocoder resolves address text and opaque mobile queries.
type Geocoder interface {
	Resolve(ctx context.Context, text string) *model.LocationInfo
	ResolveQuery(ctx context.Context, daddr, fullURL string) string
}

// AddressParser re-derives town/postcode/street from literal address text.
type AddressParser interface {
	Parse(text string) model.ParsedAddress
}

// VisitClassifier assigns the semantic category of a destination.
type VisitClassifier interface {
	ClassifyPreferring(rawComponentText, destinationText string) model.VisitType
}

// Router computes driving distances.
type Router interface {
	Configured() bool
	DrivingDistanceMiles(ctx context.Context, lat1, lon1, lat2, lon2 float64) *float64
}

// TownLookup backfills a town from a postcode.
type TownLookup interface {
	TownForPostcode(ctx context.Context, postcode string) (string, error)
}

// History reads prior journeys; the most recent destination of the current
// day becomes the implicit origin when a link carries none.
type History interface {
	MostRecentForDay(ctx context.Context, day time.Time) (*model.JourneyRow, error)
}

// Resolver orchestrates one link resolution end to end.
type Resolver struct {
	normalizer LinkNormalizer
	geocoder   Geocoder
	parser     AddressParser
	classifier VisitClassifier
	router     Router
	towns      TownLookup
	history    History
	home       string
	now        func() time.Time
}

// Deps bundles the resolver's collaborators.
type Deps struct {
	Normalizer LinkNormalizer
	Geocoder   Geocoder
	Parser     AddressParser
	Classifier VisitClassifier
	Router     Router
	Towns      TownLookup
	History    History
	// HomeAddress is the configured fallback origin when neither the link
	// nor today's history yields one.
	HomeAddress string
	// Now supplies the clock; defaults to time.Now.
	Now func() time.Time
}

// New creates a Resolver.
func New(deps Deps) *Resolver {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		normalizer: deps.Normalizer,
		geocoder:   deps.Geocoder,
		parser:     deps.Parser,
		classifier: deps.Classifier,
		router:     deps.Router,
		towns:      deps.Towns,
		history:    deps.History,
		home:       deps.HomeAddress,
		now:        now,
	}
}

// Resolve turns a share link into a journey record. It returns
// ErrUnsupportedLink for unrecognizable links and ErrResolutionFailed when
// neither endpoint resolves; all lesser failures degrade to empty fields.
func (r *Resolver) Resolve(ctx context.Context, link string) (*model.JourneyRecord, error) {
	// 1) Normalize the link.
	parts, err := r.normalizer.Normalize(ctx, link)
	if err != nil {
		return nil, err
	}

	// 2) Resolve origin text, falling back to today's last destination and
	// then the configured home address.
	originText := parts.Origin
	var prev *model.JourneyRow
	if originText == "" {
		prev = r.previousJourney(ctx)
		if prev != nil {
			originText = joinTownPostcode(prev.DestTown, prev.DestPC)
		}
		if originText == "" {
			originText = r.home
		}
	}

	// 3) Resolve destination text, routing opaque mobile queries through
	// the wide cascade.
	destText := parts.Destination
	if parts.NeedsCascade {
		if coords := r.geocoder.ResolveQuery(ctx, destText, parts.FullURL); coords != "" {
			destText = coords
		}
	}

	origin := r.geocoder.Resolve(ctx, originText)
	dest := r.geocoder.Resolve(ctx, destText)

	// Embedded coordinates recover a destination the geocoder could not.
	if !dest.HasCoords() && parts.Coords != nil {
		if fromEmbedded := r.geocoder.Resolve(ctx, coordText(parts.Coords)); fromEmbedded != nil {
			dest = fromEmbedded
		}
	}

	origin = r.overrideFromPreviousLink(ctx, origin, prev)

	if origin == nil && dest == nil {
		return nil, ErrResolutionFailed
	}
	if origin == nil {
		origin = &model.LocationInfo{}
	}
	if dest == nil {
		dest = &model.LocationInfo{}
	}

	// 4) Reconcile destination with the literal address text: parsed values
	// win display fields, geocoder keeps the coordinates.
	if parts.Destination != "" && !maplink.LooksLikeCoordPair(parts.Destination) {
		r.reconcileDestination(ctx, dest, parts.Destination)
	}

	// 5) Classify the visit.
	visitType := r.classifier.ClassifyPreferring(dest.RawText(), parts.Destination)

	// 6) Driving distance, only with both endpoints resolved and a key.
	var distance *float64
	if origin.HasCoords() && dest.HasCoords() && r.router.Configured() {
		distance = r.router.DrivingDistanceMiles(ctx, *origin.Lat, *origin.Lon, *dest.Lat, *dest.Lon)
	}

	// 7) Postcode-to-town backfill for either endpoint.
	r.backfillTown(ctx, origin)
	r.backfillTown(ctx, dest)

	return &model.JourneyRecord{
		Origin:         *origin,
		OriginRaw:      originText,
		Destination:    *dest,
		DestinationRaw: parts.Destination,
		Visit:          visitType,
		DistanceMiles:  distance,
	}, nil
}

// previousJourney reads the current day's most recent journey, if any.
func (r *Resolver) previousJourney(ctx context.Context) *model.JourneyRow {
	if r.history == nil {
		return nil
	}
	prev, err := r.history.MostRecentForDay(ctx, r.now())
	if err != nil {
		zap.L().Warn("resolver: history lookup failed", zap.Error(err))
		return nil
	}
	return prev
}

// overrideFromPreviousLink applies the embedded-coordinate special case:
// when the previous journey's source link carried an ll pair that disagrees
// with the freshly geocoded origin, the embedded pair wins and the previous
// postcode is preserved.
func (r *Resolver) overrideFromPreviousLink(ctx context.Context, origin *model.LocationInfo, prev *model.JourneyRow) *model.LocationInfo {
	if prev == nil || prev.SourceLink == "" {
		return origin
	}

	prevParts, err := maplink.Extract(prev.SourceLink)
	if err != nil || prevParts.Coords == nil {
		return origin
	}

	embedded := prevParts.Coords
	if origin.HasCoords() && coordsClose(*origin.Lat, *origin.Lon, embedded.Lat, embedded.Lon) {
		return origin
	}

	zap.L().Debug("resolver: overriding origin with embedded coordinates",
		zap.Float64("lat", embedded.Lat),
		zap.Float64("lon", embedded.Lon),
	)
	if origin == nil {
		origin = &model.LocationInfo{}
	}
	origin.SetCoords(embedded.Lat, embedded.Lon)
	if origin.Postcode == "" {
		origin.Postcode = prev.DestPC
	}
	if origin.Town == "" {
		origin.Town = prev.DestTown
	}
	return origin
}

// reconcileDestination overrides geocoder display fields with parsed values
// field by field, then retries geocoding when coordinates are still missing.
func (r *Resolver) reconcileDestination(ctx context.Context, dest *model.LocationInfo, destText string) {
	parsed := r.parser.Parse(destText)

	if parsed.Postcode != "" && parsed.Postcode != dest.Postcode {
		dest.Postcode = parsed.Postcode
	}
	if parsed.Town != "" && parsed.Town != dest.Town {
		dest.Town = parsed.Town
	}
	if parsed.Street != "" {
		if dest.Raw == nil {
			dest.Raw = map[string]string{}
		}
		if dest.Raw["road"] != parsed.Street {
			dest.Raw["road"] = parsed.Street
		}
	}

	if dest.HasCoords() {
		return
	}

	// Coordinate retries: all matched settlements together, then the
	// primary town alone. Still unresolved coordinates stay nil.
	var retries []string
	if parsed.Town != "" {
		if len(parsed.OtherTowns) > 0 {
			retries = append(retries, strings.Join(append(append([]string{}, parsed.OtherTowns...), parsed.Town), ", "))
		}
		retries = append(retries, parsed.Town)
	}
	for _, attempt := range retries {
		if retried := r.geocoder.Resolve(ctx, attempt); retried.HasCoords() {
			dest.Lat = retried.Lat
			dest.Lon = retried.Lon
			if dest.Raw == nil {
				dest.Raw = retried.Raw
			}
			return
		}
	}
}

// backfillTown fills a missing town from the postcode lookup service.
func (r *Resolver) backfillTown(ctx context.Context, loc *model.LocationInfo) {
	if loc == nil || loc.Town != "" || loc.Postcode == "" || r.towns == nil {
		return
	}
	town, err := r.towns.TownForPostcode(ctx, loc.Postcode)
	if err != nil {
		zap.L().Debug("resolver: postcode backfill failed",
			zap.String("postcode", loc.Postcode),
			zap.Error(err),
		)
		return
	}
	loc.Town = town
}

// joinTownPostcode renders "Town, BT1 1AA" from whichever parts exist.
func joinTownPostcode(town, postcode string) string {
	switch {
	case town != "" && postcode != "":
		return town + ", " + postcode
	case town != "":
		return town
	default:
		return postcode
	}
}

// coordText renders embedded coordinates as resolvable "lat, lon" text.
func coordText(c *maplink.Coords) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + ", " + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// coordsClose compares coordinate pairs with a small tolerance.
func coordsClose(lat1, lon1, lat2, lon2 float64) bool {
	const eps = 1e-4
	return math.Abs(lat1-lat2) < eps && math.Abs(lon1-lon2) < eps
}
