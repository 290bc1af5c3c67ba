// Package address decomposes free-text UK addresses into street, town and
// postcode. Public geocoders often return a technically-correct but
// operationally useless town name (a civil parish instead of the commonly
// used town), so the parser re-derives the town from the literal address
// text using the settlement priority table; callers prefer parsed values
// over geocoder-supplied ones.
package address

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/milldrew/journeylog/internal/gazetteer"
	"github.com/milldrew/journeylog/internal/model"
)

// postcodeRe matches a BT-district postcode ("BT6 9QT", "bt11 9dt",
// "BT349RE"), with or without the interior space.
var postcodeRe = regexp.MustCompile(`(?i)\bBT\d{1,2}\s*\d[A-Z]{2}\b`)

// Parser extracts postcode and settlement information from address text.
type Parser struct {
	table    *gazetteer.Table
	matchers []settlementMatcher
	titler   cases.Caser
}

type settlementMatcher struct {
	settlement gazetteer.Settlement
	re         *regexp.Regexp
}

// New builds a parser over the given settlement table. Matchers are compiled
// once; the table is read-only from here on.
func New(table *gazetteer.Table) *Parser {
	entries := table.Entries()
	matchers := make([]settlementMatcher, 0, len(entries))
	for _, s := range entries {
		// Whole-word match so "Down" never fires inside "Downpatrick".
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(s.Name) + `\b`)
		matchers = append(matchers, settlementMatcher{settlement: s, re: re})
	}
	return &Parser{
		table:    table,
		matchers: matchers,
		titler:   cases.Title(language.BritishEnglish),
	}
}

// NormalizePostcode uppercases a postcode and ensures a single interior
// space before the inward code.
func NormalizePostcode(pc string) string {
	pc = strings.ToUpper(strings.Join(strings.Fields(pc), ""))
	if len(pc) < 5 {
		return pc
	}
	return pc[:len(pc)-3] + " " + pc[len(pc)-3:]
}

// Parse decomposes text into a ParsedAddress. Parse is idempotent on
// already-clean "Street, Town, BT6 9QT" input.
func (p *Parser) Parse(text string) model.ParsedAddress {
	var parsed model.ParsedAddress

	working := strings.TrimSpace(text)
	if working == "" {
		return parsed
	}

	// 1) Pull out the postcode and scrub it from the working string.
	if loc := postcodeRe.FindStringIndex(working); loc != nil {
		parsed.Postcode = NormalizePostcode(working[loc[0]:loc[1]])
		working = working[:loc[0]] + working[loc[1]:]
		working = strings.TrimRight(strings.TrimSpace(working), ", ")
	}

	// 2) Comma-split into trimmed, non-empty components.
	var components []string
	for _, c := range strings.Split(working, ",") {
		if c = strings.TrimSpace(c); c != "" {
			components = append(components, c)
		}
	}
	if len(components) == 0 {
		return parsed
	}

	// 3) Collect settlement matches in table (priority) order, de-duplicated.
	var matches []string
	var matchedFirstComponent bool
	seen := make(map[string]bool)
	for _, m := range p.matchers {
		for i, c := range components {
			if !m.re.MatchString(c) {
				continue
			}
			key := strings.ToLower(m.settlement.Name)
			if !seen[key] {
				seen[key] = true
				matches = append(matches, p.titler.String(strings.ToLower(m.settlement.Name)))
				if len(matches) == 1 && i == 0 {
					matchedFirstComponent = true
				}
			}
			break
		}
	}

	// 4) Primary town is the highest-priority match; the rest keep order.
	if len(matches) > 0 {
		parsed.Town = matches[0]
		parsed.OtherTowns = matches[1:]
		if !matchedFirstComponent {
			parsed.Street = components[0]
		}
		return parsed
	}

	// 5) No settlement matched: positional fallback.
	if len(components) >= 2 {
		parsed.Street = components[0]
		parsed.Town = components[1]
	} else {
		parsed.Street = components[0]
	}
	return parsed
}
