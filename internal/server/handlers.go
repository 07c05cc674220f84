package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mmr-tortoise/ladderfit/internal/model"
	"github.com/mmr-tortoise/ladderfit/internal/sizing"
)

// Error codes returned in the "code" field of JSON error bodies.
const (
	codeInvalidRequest   = "INVALID_REQUEST"
	codeInvalidSelection = "INVALID_SELECTION"
	codeInvalidSpacing   = "INVALID_SPACING"
	codeUnknownCable     = "UNKNOWN_CABLE"
	codeMixedLayout      = "MIXED_LAYOUT"
	codeMixedCableType   = "MIXED_CABLE_TYPE"
	codeInvalidRoute     = "INVALID_ROUTE"
	codeEmptyCatalog     = "EMPTY_CATALOG"
	codeNotFound         = "NOT_FOUND"
	codeInternal         = "INTERNAL"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CalculateRequest is the body of POST /api/calculate.
type CalculateRequest struct {
	Selections []model.SelectionRequest `json:"selections"`

	// Layout is one of flat, trefoil, spaced. Empty selects the server
	// default; anything else is computed as flat.
	Layout string `json:"layout"`

	// SpacingMM overrides the server default spacing when set.
	SpacingMM *float64 `json:"spacing_mm"`

	// An explicit false rejects selections that mix layouts or cable types.
	AllowMixedInstallation *bool `json:"allow_mixed_installation"`
	AllowMixedCableType    *bool `json:"allow_mixed_cable_type"`
}

// CalculateResponse is the body returned by POST /api/calculate.
type CalculateResponse struct {
	RequiredWidth          float64        `json:"required_width"`
	RecommendedLadderWidth float64        `json:"recommended_ladder_width"`
	Fits                   bool           `json:"fits"`
	ShortfallMM            float64        `json:"shortfall_mm"`
	Layout                 string         `json:"layout"`
	LayoutRecognized       bool           `json:"layout_recognized"`
	SpacingMM              float64        `json:"spacing_mm"`
	Summary                sizing.Summary `json:"summary"`

	Groups []sizing.LayoutGroup `json:"groups"`
}

// RoutesRequest is the body of POST /api/routes.
type RoutesRequest struct {
	Routes []model.RouteRequest `json:"routes"`
}

// RoutesResponse is the body returned by POST /api/routes.
type RoutesResponse struct {
	Routes []sizing.RouteEstimate `json:"routes"`
	Totals sizing.RouteTotals     `json:"totals"`
}

// LaddersResponse is the body of GET /api/ladders.
type LaddersResponse struct {
	Widths           model.LadderWidths `json:"widths"`
	Layouts          []model.Layout     `json:"layouts"`
	DefaultLayout    model.Layout       `json:"default_layout"`
	DefaultSpacingMM float64            `json:"default_spacing_mm"`
}

// handleIndex renders the catalog page.
func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Cables":         s.catalog.All(),
		"Ladders":        s.ladders.Sorted(),
		"Layouts":        model.Layouts(),
		"DefaultLayout":  s.defaultLayout,
		"DefaultSpacing": s.defaultSpacing,
		"Fallback":       s.catalog.Fallback(),
		"Issues":         s.catalog.Issues(),
	})
}

// handleHealth handles liveness checks.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"cables":           s.catalog.Len(),
		"fallback_catalog": s.catalog.Fallback(),
	})
}

// handleListCables returns the catalog, optionally filtered by ?type=.
func (s *Server) handleListCables(c *gin.Context) {
	cables := s.catalog.Filter(c.Query("type"))
	if cables == nil {
		// Encode an empty result as [] rather than null.
		cables = []model.Cable{}
	}
	c.JSON(http.StatusOK, cables)
}

// handleGetCable returns one catalog record by id.
func (s *Server) handleGetCable(c *gin.Context) {
	id := c.Param("id")
	cable, ok := s.catalog.Lookup(id)
	if !ok {
		writeError(c, http.StatusNotFound, codeNotFound, "cable "+strconv.Quote(id)+" not found")
		return
	}
	c.JSON(http.StatusOK, cable)
}

// handleLadders returns the ladder width catalog and layout choices.
func (s *Server) handleLadders(c *gin.Context) {
	c.JSON(http.StatusOK, LaddersResponse{
		Widths:           s.ladders.Sorted(),
		Layouts:          model.Layouts(),
		DefaultLayout:    s.defaultLayout,
		DefaultSpacingMM: s.defaultSpacing,
	})
}

// handleCalculate projects the requested selections through the catalog,
// estimates the required width and recommends a ladder.
func (s *Server) handleCalculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequest, "invalid request body: "+err.Error())
		return
	}

	layout, recognized := s.defaultLayout, true
	if req.Layout != "" {
		layout, recognized = model.ResolveLayout(req.Layout)
	}
	recognized = recognized && model.SelectionLayoutsRecognized(req.Selections)
	spacing := s.defaultSpacing
	if req.SpacingMM != nil {
		spacing = *req.SpacingMM
	}

	selections, err := s.catalog.Resolve(req.Selections)
	if err != nil {
		s.rejectCalculation(c, layout, err)
		return
	}

	policy := model.MixPolicyFromFlags(req.AllowMixedInstallation, req.AllowMixedCableType)
	est, err := sizing.RunWithPolicy(selections, layout, spacing, s.ladders, policy)
	if err != nil {
		s.rejectCalculation(c, layout, err)
		return
	}

	s.metrics.RecordCalculation(layout.String(), est.RequiredWidthMM, est.Recommendation.Fits)
	if !est.Recommendation.Fits {
		s.logger.Warn("required width exceeds largest ladder",
			zap.Float64("required_width_mm", est.RequiredWidthMM),
			zap.Float64("largest_width_mm", est.Recommendation.WidthMM),
			zap.String("request_id", c.GetString(ctxRequestID)))
	}

	c.JSON(http.StatusOK, CalculateResponse{
		RequiredWidth:          est.RequiredWidthMM,
		RecommendedLadderWidth: est.Recommendation.WidthMM,
		Fits:                   est.Recommendation.Fits,
		ShortfallMM:            est.Recommendation.ShortfallMM,
		Layout:                 layout.String(),
		LayoutRecognized:       recognized,
		SpacingMM:              spacing,
		Summary:                est.Summary,
		Groups:                 est.Groups,
	})
}

// handleRoutes sizes a batch of named cable routes. Any invalid route
// rejects the whole batch.
func (s *Server) handleRoutes(c *gin.Context) {
	var req RoutesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequest, "invalid request body: "+err.Error())
		return
	}

	routes := make([]model.Route, 0, len(req.Routes))
	for i, rr := range req.Routes {
		route, err := s.catalog.ResolveRoute(rr, s.defaultLayout, s.defaultSpacing)
		if err != nil {
			s.rejectCalculation(c, s.defaultLayout, fmt.Errorf("route #%d %q: %w", i+1, rr.Name, err))
			return
		}
		routes = append(routes, route)
	}

	estimates, totals, err := sizing.RunRoutes(routes, s.ladders)
	if err != nil {
		s.rejectCalculation(c, s.defaultLayout, err)
		return
	}

	for _, est := range estimates {
		s.metrics.RecordCalculation(est.Layout.String(), est.RequiredWidthMM, est.Recommendation.Fits)
	}
	if totals.Oversized > 0 {
		s.logger.Warn("routes exceed largest ladder",
			zap.Int("oversized", totals.Oversized),
			zap.Int("routes", totals.Routes),
			zap.String("request_id", c.GetString(ctxRequestID)))
	}

	c.JSON(http.StatusOK, RoutesResponse{Routes: estimates, Totals: totals})
}

// rejectCalculation maps a domain error onto an HTTP error response.
func (s *Server) rejectCalculation(c *gin.Context, layout model.Layout, err error) {
	status, code := http.StatusBadRequest, codeInvalidRequest
	switch {
	case errors.Is(err, model.ErrUnknownCable):
		code = codeUnknownCable
	case errors.Is(err, model.ErrInvalidSelection):
		code = codeInvalidSelection
	case errors.Is(err, model.ErrInvalidSpacing):
		code = codeInvalidSpacing
	case errors.Is(err, model.ErrMixedLayout):
		code = codeMixedLayout
	case errors.Is(err, model.ErrMixedCableType):
		code = codeMixedCableType
	case errors.Is(err, model.ErrInvalidRoute):
		code = codeInvalidRoute
	case errors.Is(err, model.ErrEmptyCatalog):
		status, code = http.StatusInternalServerError, codeEmptyCatalog
	}
	if status < http.StatusInternalServerError {
		s.metrics.RecordRejected(layout.String())
	}
	writeError(c, status, code, err.Error())
}

// writeError aborts the request with a JSON error body.
func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// formatMM renders a width without trailing zeros, e.g. 9.3 or 300.
func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
