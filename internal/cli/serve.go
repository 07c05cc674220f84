// serve.go implements the "ladderfit serve" command.
//
// The serve command loads the catalog once, binds the listen address and
// runs the HTTP server until SIGINT or SIGTERM, then shuts down gracefully.

package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mmr-tortoise/ladderfit/internal/metrics"
	"github.com/mmr-tortoise/ladderfit/internal/model"
	"github.com/mmr-tortoise/ladderfit/internal/server"
)

// serveFlags holds the flag values for the serve command.
type serveFlags struct {
	// addr overrides server.addr from the configuration.
	addr string
}

// NewServeCommand creates the "serve" cobra command.
func NewServeCommand() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog and calculator web server",
		Long: `Run the HTTP server that serves the catalog page, the JSON catalog API
and the width calculation endpoint.

Examples:
  ladderfit serve
  ladderfit serve --addr 127.0.0.1:9000 --catalog ./cable_db.csv
  ladderfit serve --config ladderfit.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "", "Listen address (overrides server.addr)")

	return cmd
}

// runServe wires the runtime into a server and blocks until a shutdown
// signal arrives or the server fails.
func runServe(ctx context.Context, flags *serveFlags) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	addr := rt.cfg.Server.Addr
	if flags.addr != "" {
		addr = flags.addr
	}

	// gin's debug route dump is only useful when tracing.
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := server.New(server.Options{
		Catalog:          rt.catalog,
		LadderWidths:     rt.cfg.Ladder.Widths,
		DefaultLayout:    rt.cfg.DefaultLayout(),
		DefaultSpacingMM: rt.cfg.Sizing.SpacingMM,
		ShutdownTimeout:  time.Duration(rt.cfg.Server.ShutdownTimeoutSeconds) * time.Second,
		Logger:           rt.logger,
		Metrics:          metrics.New(),
	})
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to create server", err)
	}

	ln, err := server.Listen(addr)
	if err != nil {
		if errors.Is(err, server.ErrAddrInUse) {
			return model.WrapCLIError(model.ExitAddressInUse,
				"listen address is already in use; pick another with --addr", err)
		}
		return model.WrapCLIError(model.ExitGeneralError, "failed to listen", err)
	}
	VerboseLog("Listening on %s", ln.Addr())

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt.logger.Info("catalog loaded",
		zap.String("source", rt.catalog.Source()),
		zap.Int("cables", rt.catalog.Len()),
		zap.Bool("fallback", rt.catalog.Fallback()),
		zap.Int("issues", len(rt.catalog.Issues())))

	if err := srv.Serve(ctx, ln); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "server failed", err)
	}
	return nil
}
