package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/ladderfit/internal/model"
)

// writeConfig writes content to name inside a fresh temp directory.
func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "cable_db.csv", cfg.Catalog.Path)
	assert.Equal(t, model.DefaultLadderWidths(), cfg.Ladder.Widths)
	assert.Equal(t, 10.0, cfg.Sizing.SpacingMM)
	assert.Equal(t, model.LayoutFlat, cfg.DefaultLayout())
}

// TestLoad_YAML verifies that file values override defaults and untouched
// sections keep them.
func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "ladderfit.yaml", `
server:
  addr: "127.0.0.1:9090"
catalog:
  path: data/cables.csv
ladder:
  widths: [150, 300, 450]
sizing:
  layout: Trefoil
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, 30, cfg.Server.ShutdownTimeoutSeconds, "default kept")
	assert.Equal(t, filepath.Join(filepath.Dir(path), "data", "cables.csv"), cfg.Catalog.Path)
	assert.Equal(t, model.LadderWidths{150, 300, 450}, cfg.Ladder.Widths, "widths replaced, not appended")
	assert.Equal(t, 10.0, cfg.Sizing.SpacingMM)
	assert.Equal(t, model.LayoutTrefoil, cfg.DefaultLayout())
	assert.Equal(t, "info", cfg.Log.Level)
}

// TestLoad_JSONC verifies that comments and trailing commas are accepted.
func TestLoad_JSONC(t *testing.T) {
	path := writeConfig(t, "ladderfit.jsonc", `{
  // tray catalog from the supplier
  "ladder": {"widths": [200, 400, 600,]},
  /* tighter packing */
  "sizing": {"spacing_mm": 5, "layout": "spaced"},
  "log": {"level": "debug", "format": "json"},
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, model.LadderWidths{200, 400, 600}, cfg.Ladder.Widths)
	assert.Equal(t, 5.0, cfg.Sizing.SpacingMM)
	assert.Equal(t, model.LayoutSpaced, cfg.DefaultLayout())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_AbsoluteCatalogPath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "elsewhere.csv")
	path := writeConfig(t, "ladderfit.yml", "catalog:\n  path: "+abs+"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.Catalog.Path)
}

func TestLoad_UnknownLayoutIsNotAnError(t *testing.T) {
	cfg, err := Load(writeConfig(t, "c.yaml", "sizing:\n  layout: stacked\n"))
	require.NoError(t, err)
	assert.Equal(t, model.LayoutFlat, cfg.DefaultLayout())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unsupported extension", "c.toml", "addr = 1"},
		{"bad yaml", "c.yaml", "server: [unclosed"},
		{"bad json", "c.json", "{"},
		{"empty widths", "c.yaml", "ladder:\n  widths: []\n"},
		{"negative width", "c.yaml", "ladder:\n  widths: [100, -5]\n"},
		{"negative spacing", "c.yaml", "sizing:\n  spacing_mm: -1\n"},
		{"nan spacing", "c.yaml", "sizing:\n  spacing_mm: .nan\n"},
		{"infinite width", "c.yaml", "ladder:\n  widths: [100, .inf]\n"},
		{"bad log level", "c.json", `{"log": {"level": "loud"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "c.ini", ""))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestValidate_CollectsAllErrors checks that every problem is reported at
// once rather than only the first.
func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = ""
	cfg.Ladder.Widths = nil
	cfg.Sizing.SpacingMM = -2

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.addr")
	assert.Contains(t, err.Error(), "ladder.widths")
	assert.Contains(t, err.Error(), "sizing.spacing_mm")
	assert.ErrorIs(t, err, model.ErrEmptyCatalog)
	assert.ErrorIs(t, err, model.ErrInvalidSpacing)
}

func TestMarshal(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "8080")
	assert.Contains(t, string(data), "spacing_mm: 10")
}

func TestLoadRoutes_YAML(t *testing.T) {
	path := writeConfig(t, "routes.yaml", `
routes:
  - name: MSB to DB-1
    from: MSB
    to: DB-1
    distance_m: 25
    allow_mixed_cable_type: false
    selections:
      - cable_id: "1"
        quantity: 2
      - diameter_mm: 18.5
        layout: trefoil
  - name: DB-1 to pump
    distance_m: 40
    layout: spaced
    spacing_mm: 0
    selections: []
`)

	routes, err := LoadRoutes(path)
	require.NoError(t, err)
	require.Len(t, routes, 2)

	first := routes[0]
	assert.Equal(t, "MSB to DB-1", first.Name)
	assert.Equal(t, 25.0, first.DistanceM)
	assert.Nil(t, first.AllowMixedInstallation)
	require.NotNil(t, first.AllowMixedCableType)
	assert.False(t, *first.AllowMixedCableType)
	assert.Equal(t, []model.SelectionRequest{
		{CableID: "1", Quantity: model.Qty(2)},
		{DiameterMM: 18.5, Layout: "trefoil"},
	}, first.Selections)

	second := routes[1]
	assert.Equal(t, "spaced", second.Layout)
	require.NotNil(t, second.SpacingMM)
	assert.Zero(t, *second.SpacingMM)
}

func TestLoadRoutes_JSONC(t *testing.T) {
	path := writeConfig(t, "routes.jsonc", `{
  // one feeder
  "routes": [
    {"name": "feeder", "distance_m": 12.5, "selections": [{"cable_id": "3", "quantity": 0}],},
  ],
}`)

	routes, err := LoadRoutes(path)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	require.NotNil(t, routes[0].Selections[0].Quantity, "explicit zero is kept for the resolver to reject")
	assert.Zero(t, *routes[0].Selections[0].Quantity)
}

func TestLoadRoutes_Errors(t *testing.T) {
	_, err := LoadRoutes(writeConfig(t, "routes.toml", ""))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadRoutes(writeConfig(t, "routes.yaml", "routes: {"))
	assert.Error(t, err)

	_, err = LoadRoutes(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
