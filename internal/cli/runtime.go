package cli

import (
	"go.uber.org/zap"

	"github.com/mmr-tortoise/ladderfit/internal/catalog"
	"github.com/mmr-tortoise/ladderfit/internal/config"
	"github.com/mmr-tortoise/ladderfit/internal/logging"
	"github.com/mmr-tortoise/ladderfit/internal/model"
)

// runtime bundles what every data command needs: the effective
// configuration, the logger and the loaded catalog.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	catalog *catalog.Catalog
}

// loadConfig returns the effective configuration: the built-in defaults,
// overlaid by --config when given, then by the --catalog and --log-level
// flags.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError, "failed to load configuration", err)
		}
		cfg = loaded
		VerboseLog("Loaded configuration from %s", configPath)
	}

	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	switch {
	case logLevel != "":
		cfg.Log.Level = logLevel
	case verbose:
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "invalid configuration", err)
	}
	return cfg, nil
}

// newRuntime loads configuration, builds the logger and reads the catalog.
// The caller must call close when done.
func newRuntime() (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to create logger", err)
	}

	cat, err := catalog.Load(cfg.Catalog.Path, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, model.WrapCLIError(model.ExitCatalogError, "failed to load cable catalog", err)
	}
	VerboseLog("Loaded %d cables from %s", cat.Len(), cfg.Catalog.Path)
	if cat.Fallback() {
		VerboseLog("Catalog file not found, using the built-in default cable")
	}
	for _, issue := range cat.Issues() {
		VerboseLog("Catalog: %s", issue.String())
	}

	return &runtime{cfg: cfg, logger: logger, catalog: cat}, nil
}

// close flushes the logger. Sync errors on stderr are ignored since there is
// nothing useful to do with them at exit.
func (r *runtime) close() {
	_ = r.logger.Sync()
}
