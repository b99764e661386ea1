package msmc

import "errors"

var (
	// ErrZeroWeight indicates a starting configuration with π = 0.
	ErrZeroWeight = errors.New("msmc: sampling weight is zero in the starting configuration")

	// ErrNoMoves indicates a walker without Monte Carlo moves.
	ErrNoMoves = errors.New("msmc: no moves")

	// ErrNoReference indicates a point count without a tabulated hard-sphere
	// coefficient.
	ErrNoReference = errors.New("msmc: no hard-sphere reference value")

	// ErrInvalidConfig indicates bad run parameters.
	ErrInvalidConfig = errors.New("msmc: invalid configuration")
)
