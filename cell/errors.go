package cell

import "errors"

// ErrConfiguration indicates an invalid or incomplete executor
// configuration.
var ErrConfiguration = errors.New("cell: configuration error")
