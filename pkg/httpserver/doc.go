// Package httpserver runs the ops HTTP listener of the service.
//
// Server binds its listener in Run, serves until the context is cancelled and
// then shuts down within the configured timeout. It does not install signal
// handlers; cmd/alertd cancels the context on SIGINT/SIGTERM.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	err := srv.Run(ctx, router)
//
// LivenessHandler and ReadinessHandler back the /health/live and
// /health/ready probes.
package httpserver
