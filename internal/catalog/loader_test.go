package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mmr-tortoise/ladderfit/internal/model"
)

const sampleCSV = `brand,cable_type,cable_description,cores,conductor_size_mm2,conductor_type,insulation,sheath,voltage_rating,overall_diameter_mm,weight_per_meter_kg,supplier
Olex,Power,PVC Insulated,4,25,Copper,X-90,PVC,0.6/1 kV,24.5,1.62,Acme
Prysmian,Control,Screened,12,1.5,Copper,PVC,PVC,0.6/1 kV,14.2,0.38,Bolt
`

// writeCSV writes content to a temporary catalog file and returns its path.
func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cable_db.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoad_Sample verifies typed decoding, name synthesis, positional IDs
// and preservation of unknown columns.
func TestLoad_Sample(t *testing.T) {
	cat, err := Load(writeCSV(t, sampleCSV), zap.NewNop())
	require.NoError(t, err)

	require.Equal(t, 2, cat.Len())
	assert.False(t, cat.Fallback())
	assert.Empty(t, cat.Issues())

	olex, ok := cat.Lookup("1")
	require.True(t, ok)
	assert.Equal(t, "Olex 4C 25mm²", olex.Name)
	assert.Equal(t, "Power", olex.CableType)
	assert.Equal(t, 4, olex.Cores)
	assert.Equal(t, 24.5, olex.OverallDiameterMM)
	assert.Equal(t, 1.62, olex.WeightPerMeterKG)
	assert.Equal(t, "0.6/1 kV", olex.VoltageRating)
	assert.Equal(t, map[string]string{"supplier": "Acme"}, olex.Extra)

	prysmian, ok := cat.Lookup("2")
	require.True(t, ok)
	// Conductor size is truncated in the display name.
	assert.Equal(t, "Prysmian 12C 1mm²", prysmian.Name)
	assert.Equal(t, 1.5, prysmian.ConductorSizeMM2)
}

// TestLoad_MissingFile verifies the default-record fallback and the warning.
func TestLoad_MissingFile(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	path := filepath.Join(t.TempDir(), "does-not-exist.csv")

	cat, err := Load(path, zap.New(core))
	require.NoError(t, err)

	assert.True(t, cat.Fallback())
	require.Equal(t, 1, cat.Len())
	assert.Equal(t, DefaultCable(), cat.All()[0])
	assert.Equal(t, "1C 16mm²", cat.All()[0].Name)
	assert.Equal(t, 9.3, cat.All()[0].OverallDiameterMM)

	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "not found")
}

func TestLoad_NilLogger(t *testing.T) {
	cat, err := Load(writeCSV(t, sampleCSV), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
}

// TestLoad_Directory checks that a read error other than "not found" is
// reported instead of falling back.
func TestLoad_Directory(t *testing.T) {
	_, err := Load(t.TempDir(), zap.NewNop())
	assert.Error(t, err)
}

// TestParse_Defaults verifies that absent and empty numeric cells take their
// defaults without producing issues.
func TestParse_Defaults(t *testing.T) {
	cables, issues, err := Parse(strings.NewReader("brand,cores\nOlex,\n"))
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, cables, 1)

	c := cables[0]
	assert.Equal(t, defaultCores, c.Cores)
	assert.Equal(t, defaultConductorSize, c.ConductorSizeMM2)
	assert.Equal(t, defaultDiameter, c.OverallDiameterMM)
	assert.Equal(t, defaultWeight, c.WeightPerMeterKG)
	assert.Equal(t, "Olex 3C 4mm²", c.Name)
}

// TestParse_MalformedNumbers verifies per-cell fallback for malformed values.
func TestParse_MalformedNumbers(t *testing.T) {
	input := "brand,cores,conductor_size_mm2,overall_diameter_mm,weight_per_meter_kg\n" +
		"Olex,four,25,abc,1.2\n" +
		"Nexans,2.0,10,12.1,n/a\n" +
		"Prysmian,NaN,Inf,infinity,-inf\n"

	cables, issues, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cables, 3)

	assert.Equal(t, defaultCores, cables[0].Cores)
	assert.Equal(t, defaultDiameter, cables[0].OverallDiameterMM)
	assert.Equal(t, 2, cables[1].Cores, "integral float is accepted for cores")
	assert.Equal(t, defaultWeight, cables[1].WeightPerMeterKG)

	// Non-finite values parse as floats but are still malformed cells.
	assert.Equal(t, defaultCores, cables[2].Cores)
	assert.Equal(t, defaultConductorSize, cables[2].ConductorSizeMM2)
	assert.Equal(t, defaultDiameter, cables[2].OverallDiameterMM)
	assert.Equal(t, defaultWeight, cables[2].WeightPerMeterKG)

	require.Len(t, issues, 7)
	assert.Equal(t, RowIssue{Row: 1, Column: "cores", Value: "four", Message: "not an integer, using 3"}, issues[0])
	assert.Equal(t, 1, issues[1].Row)
	assert.Equal(t, "overall_diameter_mm", issues[1].Column)
	assert.Equal(t, 2, issues[2].Row)
	assert.Equal(t, "weight_per_meter_kg", issues[2].Column)
	assert.Equal(t, "row 2, column weight_per_meter_kg: not a number, using 10", issues[2].String())
	for _, issue := range issues[3:] {
		assert.Equal(t, 3, issue.Row)
	}
	assert.Equal(t, "NaN", issues[3].Value)
	assert.Equal(t, "infinity", issues[5].Value)
}

// TestParse_HugeIntegralCores verifies an integral float too large for an
// int is treated as malformed rather than overflowing.
func TestParse_HugeIntegralCores(t *testing.T) {
	cables, issues, err := Parse(strings.NewReader("brand,cores\nOlex,1e300\n"))
	require.NoError(t, err)
	assert.Equal(t, defaultCores, cables[0].Cores)
	require.Len(t, issues, 1)
	assert.Equal(t, "cores", issues[0].Column)
}

// TestParse_FileIDs keeps unique ids from the file and renumbers when they
// are duplicated or missing.
func TestParse_FileIDs(t *testing.T) {
	cables, _, err := Parse(strings.NewReader("id,brand\nOLX-25,Olex\nNX-10,Nexans\n"))
	require.NoError(t, err)
	assert.Equal(t, "OLX-25", cables[0].ID)
	assert.Equal(t, "NX-10", cables[1].ID)

	cables, _, err = Parse(strings.NewReader("id,brand\nA,Olex\nA,Nexans\n,Prysmian\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, []string{cables[0].ID, cables[1].ID, cables[2].ID})
}

// TestParse_NameColumnOverwritten verifies the synthesized name replaces a
// name cell from the file.
func TestParse_NameColumnOverwritten(t *testing.T) {
	cables, _, err := Parse(strings.NewReader("name,brand,cores,conductor_size_mm2\nWhatever,Olex,1,16\n"))
	require.NoError(t, err)
	assert.Equal(t, "Olex 1C 16mm²", cables[0].Name)
	assert.Nil(t, cables[0].Extra)
}

func TestParse_RaggedAndBlankRows(t *testing.T) {
	input := "\ufeffbrand,cores,overall_diameter_mm\nOlex,4\n,,\nNexans,2,11,extra-cell\n"
	cables, issues, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, cables, 2)

	assert.Equal(t, "Olex", cables[0].Brand, "BOM is stripped from the first header")
	assert.Equal(t, defaultDiameter, cables[0].OverallDiameterMM)
	assert.Equal(t, "2", cables[1].ID)
	assert.Equal(t, 11.0, cables[1].OverallDiameterMM)
}

func TestParse_Empty(t *testing.T) {
	cables, issues, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, cables)
	assert.Empty(t, issues)
}

func TestParse_BadQuoting(t *testing.T) {
	_, _, err := Parse(strings.NewReader("brand,cores\n\"Olex,4\n"))
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Olex 4C 25mm²", DisplayName("Olex", 4, 25.9))
	assert.Equal(t, "3C 4mm²", DisplayName("", 3, 4))
}

// TestDefaultCable_Selection checks the fallback record projects onto a
// usable selection.
func TestDefaultCable_Selection(t *testing.T) {
	sel := DefaultCable().Selection(2)
	assert.Equal(t, model.CableSelection{DiameterMM: 9.3, Quantity: 2, WeightPerMeterKG: 1.0, CableType: "Power"}, sel)
}
