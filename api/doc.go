// Package api documents the Dallevision operations HTTP surface.
//
// Dallevision serves no content routes. The HTTP listener exists so that
// orchestrators and operators can observe the archive cycle:
//
//   - GET /health   liveness, always 200 while the process is up
//   - GET /healthz  Kubernetes-style liveness probe
//   - GET /ready    readiness; runs the registered checks (database ping,
//     Redis lease ping, last-cycle freshness) and answers 503 on failure
//   - GET /version  build version information
//
// Prometheus metrics are exposed on a separate port at /metrics.
//
// # Base URL
//
// The default base URL is:
//
//	http://localhost:8000
//
// Request handlers live in the handlers subpackage.
package api
