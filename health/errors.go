package health

import "errors"

// ErrCheckTimeout is the Result.Err of a check that outlived Suite.Timeout.
var ErrCheckTimeout = errors.New("health: check did not finish in time")
