// Package model holds the core journey domain types.
package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// VisitType is the semantic category assigned to a journey destination.
type VisitType string

const (
	VisitHome     VisitType = "home"
	VisitHospital VisitType = "hospital"
	VisitDepot    VisitType = "depot"
	VisitGeneric  VisitType = "visit"
)

// rawComponentOrder fixes the flattening order of provider address
// components so RawText is deterministic.
var rawComponentOrder = []string{
	"house_number", "road", "name", "amenity", "suburb",
	"town", "city", "village", "county", "postcode",
}

// LocationInfo is a resolved location. Lat and Lon are set atomically: a
// location either has both coordinates or neither.
type LocationInfo struct {
	Lat      *float64          `json:"lat"`
	Lon      *float64          `json:"lon"`
	Town     string            `json:"town,omitempty"`
	Postcode string            `json:"postcode,omitempty"`
	Raw      map[string]string `json:"raw,omitempty"`
}

// HasCoords reports whether the location has a resolved coordinate pair.
func (l *LocationInfo) HasCoords() bool {
	return l != nil && l.Lat != nil && l.Lon != nil
}

// SetCoords sets both coordinates at once.
func (l *LocationInfo) SetCoords(lat, lon float64) {
	l.Lat = &lat
	l.Lon = &lon
}

// RawText flattens the provider address components into a single string,
// well-known components first and the rest in sorted key order, for
// substring classification.
func (l *LocationInfo) RawText() string {
	if l == nil || len(l.Raw) == 0 {
		return ""
	}
	seen := make(map[string]bool, len(l.Raw))
	var parts []string
	for _, k := range rawComponentOrder {
		if v := l.Raw[k]; v != "" {
			parts = append(parts, v)
			seen[k] = true
		}
	}
	var rest []string
	for k, v := range l.Raw {
		if v != "" && !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		parts = append(parts, l.Raw[k])
	}
	return strings.Join(parts, " ")
}

// ParsedAddress is the output of free-text address decomposition.
// Every OtherTowns entry ranks strictly lower priority than Town.
type ParsedAddress struct {
	Street     string   `json:"street,omitempty"`
	Town       string   `json:"town,omitempty"`
	Postcode   string   `json:"postcode,omitempty"`
	OtherTowns []string `json:"other_towns,omitempty"`
}

// JourneyRecord is the final output of a single link resolution.
// Immutable once returned by the resolver.
type JourneyRecord struct {
	Origin         LocationInfo `json:"origin"`
	OriginRaw      string       `json:"origin_raw,omitempty"`
	Destination    LocationInfo `json:"destination"`
	DestinationRaw string       `json:"destination_raw,omitempty"`
	Visit          VisitType    `json:"visit_type"`
	DistanceMiles  *float64     `json:"distance_miles"`
}

// Timestamp layouts for the persisted row, matching the sheet's display
// format in the Europe/London zone.
const (
	ProcessedLayout   = "02 January 2006, 15:04 MST"
	CalendarDayLayout = "02 January 2006"
)

// JourneyRow is one persisted spreadsheet-style row: the fixed ten-column
// serialization of a JourneyRecord.
type JourneyRow struct {
	ID          string    `json:"id"`
	Processed   string    `json:"processed"`
	CalendarDay string    `json:"calendar_day"`
	VisitType   string    `json:"visit_type"`
	OriginTown  string    `json:"origin_town"`
	OriginPC    string    `json:"origin_postcode"`
	DestTown    string    `json:"destination_town"`
	DestPC      string    `json:"destination_postcode"`
	Miles       string    `json:"miles"`
	SourceLink  string    `json:"source_link"`
	Note        string    `json:"note"`
	ProcessedAt time.Time `json:"processed_at"`
}

// RowHeaders is the fixed column ordering for exports.
var RowHeaders = []string{
	"Processed Timestamp",
	"Calendar Day",
	"Journey Type",
	"Origin Town",
	"Origin Postcode",
	"Destination Town",
	"Destination Postcode",
	"Estimated Mileage",
	"Raw URL",
	"Notes",
}

// NewJourneyRow serializes a record into its persisted row form.
func NewJourneyRow(rec *JourneyRecord, sourceLink, note string, ts time.Time) JourneyRow {
	miles := ""
	if rec.DistanceMiles != nil {
		miles = fmt.Sprintf("%.2f", *rec.DistanceMiles)
	}
	return JourneyRow{
		Processed:   ts.Format(ProcessedLayout),
		CalendarDay: ts.Format(CalendarDayLayout),
		VisitType:   string(rec.Visit),
		OriginTown:  rec.Origin.Town,
		OriginPC:    rec.Origin.Postcode,
		DestTown:    rec.Destination.Town,
		DestPC:      rec.Destination.Postcode,
		Miles:       miles,
		SourceLink:  sourceLink,
		Note:        note,
		ProcessedAt: ts,
	}
}

// Columns returns the row's cells in RowHeaders order.
func (r JourneyRow) Columns() []string {
	return []string{
		r.Processed, r.CalendarDay, r.VisitType,
		r.OriginTown, r.OriginPC,
		r.DestTown, r.DestPC,
		r.Miles, r.SourceLink, r.Note,
	}
}
