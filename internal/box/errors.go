package box

import "errors"

var (
	// ErrNoTrial indicates AcceptNotify or RejectNotify without a pending trial.
	ErrNoTrial = errors.New("box: no trial pending")

	// ErrTrialPending indicates an operation that needs a stable configuration
	// was attempted during a trial.
	ErrTrialPending = errors.New("box: trial pending")

	// ErrTooFewMolecules indicates a box built with fewer than two molecules.
	ErrTooFewMolecules = errors.New("box: need at least two molecules")
)
