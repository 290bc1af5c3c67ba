// Package gazetteer holds the settlement priority table and the curated
// known-address list. Both are loaded once at startup and treated as
// immutable for the process lifetime; callers receive read-only views.
package gazetteer

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Classification ranks a settlement. Lower rank wins when an address matches
// more than one settlement name.
type Classification int

const (
	SmallTown              Classification = 1
	MediumTown             Classification = 2
	LargeTown              Classification = 3
	SmallVillageOrHamlet   Classification = 4
	Village                Classification = 5
	IntermediateSettlement Classification = 6
)

var classificationNames = map[string]Classification{
	"small town":              SmallTown,
	"medium town":             MediumTown,
	"large town":              LargeTown,
	"small village or hamlet": SmallVillageOrHamlet,
	"village":                 Village,
	"intermediate settlement": IntermediateSettlement,
}

// footnoteRe strips footnote markers such as "[c]" from settlement names.
var footnoteRe = regexp.MustCompile(`\[[a-z0-9]+\]`)

// Settlement is one known settlement and its classification.
type Settlement struct {
	Name  string
	Class Classification
}

// Table is the settlement priority table, sorted ascending by
// classification rank. Immutable after Load.
type Table struct {
	entries []Settlement
}

// settlementsFile is the YAML shape of a settlements file.
type settlementsFile struct {
	Settlements []struct {
		Name  string `yaml:"name"`
		Class string `yaml:"class"`
	} `yaml:"settlements"`
}

// NewTable builds a table from entries, stripping footnote markers and
// sorting by rank. Entries with unknown classifications are dropped.
func NewTable(entries []Settlement) *Table {
	cleaned := make([]Settlement, 0, len(entries))
	for _, e := range entries {
		name := strings.TrimSpace(footnoteRe.ReplaceAllString(e.Name, ""))
		if name == "" || e.Class < SmallTown || e.Class > IntermediateSettlement {
			continue
		}
		cleaned = append(cleaned, Settlement{Name: name, Class: e.Class})
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Class < cleaned[j].Class
	})
	return &Table{entries: cleaned}
}

// LoadTable reads a settlements YAML file. An empty path yields the
// built-in default table.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return NewTable(defaultSettlements), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "gazetteer: read settlements %s", path)
	}

	var file settlementsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "gazetteer: parse settlements")
	}

	entries := make([]Settlement, 0, len(file.Settlements))
	for _, s := range file.Settlements {
		class, ok := classificationNames[strings.ToLower(strings.TrimSpace(s.Class))]
		if !ok {
			return nil, eris.Errorf("gazetteer: unknown classification %q for %q", s.Class, s.Name)
		}
		entries = append(entries, Settlement{Name: s.Name, Class: class})
	}
	return NewTable(entries), nil
}

// Entries returns the table in priority order. Callers must not mutate the
// returned slice.
func (t *Table) Entries() []Settlement {
	return t.entries
}

// Len returns the number of settlements in the table.
func (t *Table) Len() int { return len(t.entries) }

// Rank returns the priority rank of a settlement name, or 0 if unknown.
// Matching is case-insensitive.
func (t *Table) Rank(name string) Classification {
	for _, e := range t.entries {
		if strings.EqualFold(e.Name, name) {
			return e.Class
		}
	}
	return 0
}
