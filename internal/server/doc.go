// Package server implements the ladderfit HTTP presentation layer on gin.
//
// Routes:
//
//	GET  /                 HTML page listing the cable catalog
//	GET  /api/cables       catalog as a JSON array (optional ?type= filter)
//	GET  /api/cables/:id   a single catalog record
//	GET  /api/ladders      standard ladder widths and layouts
//	POST /api/calculate    required width and ladder recommendation
//	POST /api/routes       per-route widths and length totals for a batch
//	GET  /healthz          liveness
//	GET  /metrics          Prometheus exposition
//
// The catalog and ladder widths are injected through Options and only read
// by handlers, so no locking is needed.
package server
