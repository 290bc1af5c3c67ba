package gazetteer

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/milldrew/journeylog/internal/model"
)

// KnownPlace pins a frequently-visited address to curated coordinates.
// Public geocoders place these addresses imprecisely or inconsistently, so a
// marker match bypasses the network entirely.
type KnownPlace struct {
	Markers  []string          `yaml:"markers"`
	Lat      float64           `yaml:"lat"`
	Lon      float64           `yaml:"lon"`
	Town     string            `yaml:"town"`
	Postcode string            `yaml:"postcode"`
	Raw      map[string]string `yaml:"raw"`
}

// KnownAddresses holds the curated marker lists used by the visit classifier
// and the pinned places used by the geocoding cascade.
type KnownAddresses struct {
	Home   []string     `yaml:"home"`
	Depot  []string     `yaml:"depot"`
	Places []KnownPlace `yaml:"places"`
}

// LoadKnownAddresses reads the curated address YAML file. An empty path
// yields the built-in defaults.
func LoadKnownAddresses(path string) (*KnownAddresses, error) {
	if path == "" {
		return defaultKnownAddresses(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "gazetteer: read known addresses %s", path)
	}

	var known KnownAddresses
	if err := yaml.Unmarshal(data, &known); err != nil {
		return nil, eris.Wrap(err, "gazetteer: parse known addresses")
	}
	return &known, nil
}

// Lookup returns the pinned location for text if any place marker matches as
// a case-insensitive substring, or nil.
func (k *KnownAddresses) Lookup(text string) *model.LocationInfo {
	if k == nil || text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	for _, p := range k.Places {
		for _, marker := range p.Markers {
			if marker == "" || !strings.Contains(lower, strings.ToLower(marker)) {
				continue
			}
			loc := &model.LocationInfo{
				Town:     p.Town,
				Postcode: p.Postcode,
				Raw:      p.Raw,
			}
			loc.SetCoords(p.Lat, p.Lon)
			return loc
		}
	}
	return nil
}

func defaultKnownAddresses() *KnownAddresses {
	return &KnownAddresses{
		Home:  []string{"knock green", "knock gr"},
		Depot: []string{"holly business park", "kennedy way industrial estate", "kennedy way", "bt11 9dt", "bt11 9aj"},
		Places: []KnownPlace{
			{
				Markers:  []string{"19 knock green", "knock g"},
				Lat:      54.5834046,
				Lon:      -5.8651469,
				Town:     "Belfast",
				Postcode: "BT5 6GJ",
				Raw: map[string]string{
					"road":         "Knock Green",
					"house_number": "19",
					"town":         "Belfast",
					"postcode":     "BT5 6GJ",
				},
			},
			{
				Markers:  []string{"belfast city hospital"},
				Lat:      54.58749533497572,
				Lon:      -5.940873568556854,
				Town:     "Belfast",
				Postcode: "BT9 7AB",
				Raw: map[string]string{
					"amenity":  "Hospital",
					"name":     "Belfast City Hospital",
					"town":     "Belfast",
					"postcode": "BT9 7AB",
				},
			},
			{
				Markers:  []string{"royal victoria hospital"},
				Lat:      54.594631442237734,
				Lon:      -5.954465146216176,
				Town:     "Belfast",
				Postcode: "BT12 6BA",
				Raw: map[string]string{
					"amenity":  "Hospital",
					"name":     "Royal Victoria Hospital",
					"town":     "Belfast",
					"postcode": "BT12 6BA",
				},
			},
		},
	}
}
