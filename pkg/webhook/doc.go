// Package webhook is the HTTP transport shared by the provider adapters.
//
// Sender POSTs a JSON body to a provider endpoint and returns a DeliveryResult
// holding the status code and the response body. Each call is one attempt;
// the queue worker decides whether a failed delivery runs again.
//
//	sender := webhook.NewSender()
//	breaker := webhook.NewCircuitBreaker("msg91")
//	res, err := sender.Send(ctx, endpoint, payload,
//	    webhook.WithHeader("authkey", key),
//	    webhook.WithCircuitBreaker(breaker),
//	)
//
// Non-2xx responses are errors. A 4xx other than 408, 425 and 429 wraps
// ErrPermanentFailure, everything else wraps ErrTemporaryFailure or ErrTimeout.
// 4xx responses count as breaker successes since the endpoint answered.
package webhook
