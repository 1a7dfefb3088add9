package replacement

import "errors"

// ErrInvalidCapacity is returned when a replay is asked to run with no frame
// to place pages in.
var ErrInvalidCapacity = errors.New("frame pool capacity must be positive")
