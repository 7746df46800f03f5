package universe

import "errors"

var (
	//ErrOutOfBounds is returned when a row/column pair lies outside the grid
	ErrOutOfBounds = errors.New("universe: cell out of bounds")
	//ErrGliderUnderflow is returned by AddGliderAt when the anchor touches the top or left edge
	ErrGliderUnderflow = errors.New("universe: glider anchor must have row >= 1 and column >= 1")
	//ErrInvalidThreshold is returned for a random seeding threshold outside [0,1]
	ErrInvalidThreshold = errors.New("universe: threshold must be within [0,1]")
	//ErrInvalidDimension is returned for zero or overflowing dimensions
	ErrInvalidDimension = errors.New("universe: invalid dimension")
	//ErrShrink is returned when a resize would make the grid smaller
	ErrShrink = errors.New("universe: shrinking is not supported")
	//ErrTooSmall is returned when a pattern does not fit into the grid
	ErrTooSmall = errors.New("universe: grid too small for pattern")
)
