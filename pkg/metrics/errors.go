package metrics

import "errors"

// ErrRegister is returned when a metric cannot be registered
var ErrRegister = errors.New("metrics: failed to register collector")
