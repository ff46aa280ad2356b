package domain

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when a state transition is not allowed.
	ErrInvalidState = errors.New("invalid state transition")

	// ErrInvalidConfig is returned when configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidLiteral is returned for a zero or unparsable literal.
	ErrInvalidLiteral = errors.New("invalid literal")

	// ErrContradiction is returned when a variable would be assigned both polarities.
	ErrContradiction = errors.New("contradicting literals")

	// ErrInfeasible is returned when no valid configuration satisfies the request.
	ErrInfeasible = errors.New("no valid configuration")

	// ErrNoFailingConfigurations is returned when the labeled pool holds no failure.
	ErrNoFailingConfigurations = errors.New("no failing configurations")

	// ErrTooManyCandidates is returned when candidate generation exceeds its cap.
	ErrTooManyCandidates = errors.New("too many candidate interactions")

	// ErrUnknownAlgorithm is returned when a strategy name isn't registered.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
)
