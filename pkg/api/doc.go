// Package api is the operator HTTP surface of alertd: event publishing,
// push token registration, dead letter inspection and requeueing, metrics
// and health probes.
//
//	r, err := api.NewRouter(api.Deps{
//		Publisher:   n,
//		Tokens:      n.Tokens(),
//		DeadLetters: n.DeadLetters(),
//		Metrics:     collector.Handler(),
//		Checks:      map[string]httpserver.CheckFunc{"postgres": pool.Ping},
//	})
//
// Errors are answered as {"code": "...", "error": {"code": "...", "message": "..."}}.
package api
