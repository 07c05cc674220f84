package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmr-tortoise/ladderfit/internal/catalog"
	"github.com/mmr-tortoise/ladderfit/internal/metrics"
	"github.com/mmr-tortoise/ladderfit/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options are the dependencies and defaults of a Server.
type Options struct {
	// Catalog is the loaded cable catalog. Required.
	Catalog *catalog.Catalog

	// LadderWidths is the standard width catalog. Defaults to
	// model.DefaultLadderWidths when nil.
	LadderWidths model.LadderWidths

	// DefaultLayout is used when a request does not name a layout.
	DefaultLayout model.Layout

	// DefaultSpacingMM is used when a request does not set spacing_mm.
	// Zero is a valid spacing (cables touching); callers normally pass
	// sizing.DefaultSpacingMM or the configured value.
	DefaultSpacingMM float64

	// ShutdownTimeout bounds graceful shutdown in Serve. Defaults to 30s.
	ShutdownTimeout time.Duration

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Server serves the catalog and the width computations over HTTP.
type Server struct {
	engine          *gin.Engine
	catalog         *catalog.Catalog
	ladders         model.LadderWidths
	defaultLayout   model.Layout
	defaultSpacing  float64
	shutdownTimeout time.Duration
	logger          *zap.Logger
	metrics         *metrics.Metrics
}

// New builds a Server and its routes.
func New(opts Options) (*Server, error) {
	if opts.Catalog == nil {
		return nil, errors.New("server: catalog is required")
	}
	s := &Server{
		catalog:         opts.Catalog,
		ladders:         opts.LadderWidths,
		defaultLayout:   opts.DefaultLayout,
		defaultSpacing:  opts.DefaultSpacingMM,
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
	}
	if s.ladders == nil {
		s.ladders = model.DefaultLadderWidths()
	}
	if !s.defaultLayout.IsValid() {
		s.defaultLayout = model.LayoutFlat
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 30 * time.Second
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	s.metrics.SetCatalog(s.catalog.Len(), len(s.catalog.Issues()))

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)
	engine.Use(
		requestID(),
		accessLog(s.logger),
		instrument(s.metrics),
		recovery(s.logger),
	)

	engine.GET("/", s.handleIndex)
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := engine.Group("/api")
	{
		api.GET("/cables", s.handleListCables)
		api.GET("/cables/:id", s.handleGetCable)
		api.GET("/ladders", s.handleLadders)
		api.POST("/calculate", s.handleCalculate)
		api.POST("/routes", s.handleRoutes)
	}

	engine.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, codeNotFound, "route not found")
	})

	s.engine = engine
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve accepts connections on ln until ctx is cancelled, then shuts the
// server down gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpSrv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting ladderfit server", zap.String("addr", ln.Addr().String()))
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

var templateFuncs = template.FuncMap{
	"mm": func(v float64) string {
		return formatMM(v)
	},
}
