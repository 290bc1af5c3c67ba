package gazetteer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableStripsFootnotesAndSorts(t *testing.T) {
	table := NewTable([]Settlement{
		{Name: "Ballygowan[c]", Class: IntermediateSettlement},
		{Name: "Comber", Class: SmallTown},
		{Name: "Downpatrick[a1]", Class: MediumTown},
		{Name: "", Class: SmallTown},
		{Name: "Nowhere", Class: 0},
	})

	entries := table.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "Comber", entries[0].Name)
	assert.Equal(t, "Downpatrick", entries[1].Name)
	assert.Equal(t, "Ballygowan", entries[2].Name)
}

func TestTableRank(t *testing.T) {
	table := NewTable([]Settlement{
		{Name: "Comber", Class: SmallTown},
		{Name: "Crossgar", Class: Village},
	})

	assert.Equal(t, SmallTown, table.Rank("comber"))
	assert.Equal(t, Village, table.Rank("CROSSGAR"))
	assert.Equal(t, Classification(0), table.Rank("Belfast"))
}

func TestLoadTableDefault(t *testing.T) {
	table, err := LoadTable("")
	require.NoError(t, err)
	assert.Greater(t, table.Len(), 30)
	assert.NotZero(t, table.Rank("Belfast"))
	assert.NotZero(t, table.Rank("Comber"))
}

func TestLoadTableFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settlements.yaml")
	content := `settlements:
  - name: Comber
    class: small town
  - name: Crossgar
    class: village
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, SmallTown, table.Rank("Comber"))
}

func TestLoadTableRejectsUnknownClass(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settlements.yaml")
	content := `settlements:
  - name: Comber
    class: megacity
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadTable(path)
	assert.Error(t, err)
}

func TestKnownLookup(t *testing.T) {
	known, err := LoadKnownAddresses("")
	require.NoError(t, err)

	loc := known.Lookup("Royal Victoria Hospital, Belfast")
	require.NotNil(t, loc)
	assert.True(t, loc.HasCoords())
	assert.Equal(t, "Belfast", loc.Town)
	assert.Equal(t, "BT12 6BA", loc.Postcode)

	assert.Nil(t, known.Lookup("10 Main Street, Crossgar"))
	assert.Nil(t, known.Lookup(""))
}

func TestKnownLookupCaseInsensitive(t *testing.T) {
	known, err := LoadKnownAddresses("")
	require.NoError(t, err)

	loc := known.Lookup("19 KNOCK GREEN")
	require.NotNil(t, loc)
	assert.Equal(t, "BT5 6GJ", loc.Postcode)
}

func TestLoadKnownAddressesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known.yaml")
	content := `home:
  - orchard lane
depot:
  - unit 4
places:
  - markers: ["the old mill"]
    lat: 54.5
    lon: -5.9
    town: Comber
    postcode: BT23 5AB
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	known, err := LoadKnownAddresses(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"orchard lane"}, known.Home)

	loc := known.Lookup("The Old Mill, Comber")
	require.NotNil(t, loc)
	assert.Equal(t, "BT23 5AB", loc.Postcode)
}
