package webhook

import "errors"

// Error classification:
//   - configuration errors (invalid URL or payload) fail before any request
//   - ErrPermanentFailure marks 4xx responses that a retry will not change
//   - ErrTemporaryFailure and ErrTimeout mark everything else
//   - ErrCircuitOpen means the request was not attempted
var (
	ErrDeliveryFailed   = errors.New("webhook delivery failed")
	ErrPermanentFailure = errors.New("permanent webhook failure")
	ErrTemporaryFailure = errors.New("temporary webhook failure")
	ErrCircuitOpen      = errors.New("webhook circuit breaker is open")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
	ErrInvalidURL       = errors.New("invalid webhook URL")
	ErrTimeout          = errors.New("webhook request timeout")
)

// IsCircuitOpen checks if an error indicates the circuit breaker is open
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

// IsPermanent checks if the endpoint rejected the request for good
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanentFailure)
}
