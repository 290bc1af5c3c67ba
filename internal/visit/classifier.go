// Package visit assigns a semantic category to a resolved destination.
package visit

import (
	"strings"

	"github.com/milldrew/journeylog/internal/gazetteer"
	"github.com/milldrew/journeylog/internal/model"
)

// Classifier maps address text to a VisitType using the curated marker
// lists. Rules are evaluated in order; first match wins.
type Classifier struct {
	known *gazetteer.KnownAddresses
}

// New builds a classifier over the curated known-address list.
func New(known *gazetteer.KnownAddresses) *Classifier {
	return &Classifier{known: known}
}

// Classify returns the visit type for an address string. The default is
// VisitGeneric; everything else needs a positive marker match.
func (c *Classifier) Classify(addressText string) model.VisitType {
	addr := strings.ToLower(addressText)
	if addr == "" {
		return model.VisitGeneric
	}

	for _, home := range c.known.Home {
		if home != "" && strings.Contains(addr, strings.ToLower(home)) {
			return model.VisitHome
		}
	}

	if strings.Contains(addr, "hospital") {
		return model.VisitHospital
	}

	for _, depot := range c.known.Depot {
		if depot != "" && strings.Contains(addr, strings.ToLower(depot)) {
			return model.VisitDepot
		}
	}

	return model.VisitGeneric
}

// ClassifyPreferring runs the classifier against the geocoder raw-component
// text and the original free-text destination, preferring whichever produced
// a non-default answer. The raw-component result wins a disagreement.
func (c *Classifier) ClassifyPreferring(rawComponentText, destinationText string) model.VisitType {
	fromRaw := c.Classify(rawComponentText)
	if fromRaw != model.VisitGeneric {
		return fromRaw
	}
	return c.Classify(destinationText)
}
