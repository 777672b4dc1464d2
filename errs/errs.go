// Package errs defines the error taxonomy shared by every layer of the
// protocol. Callers match against these sentinels with errors.Is; the
// packages that raise them add context with fmt.Errorf("...: %w", ...).
package errs

import "errors"

var (
	// ErrConfiguration covers invalid construction parameters: a pair
	// count below one, a CHSH threshold outside (2, 2√2], an unknown
	// Bell-state kind, or a witness containing characters other than
	// '0' and '1'.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrState is returned when a protocol phase is invoked outside its
	// required predecessor state.
	ErrState = errors.New("operation invalid in current protocol state")

	// ErrNumerical signals a degenerate state vector: a norm too small
	// to normalize, or NaN contamination.
	ErrNumerical = errors.New("numerical degeneracy")

	// ErrUnknownGate signals an unrecognized gate tag.
	ErrUnknownGate = errors.New("unknown gate")

	// ErrDimension signals a state vector or operator of the wrong size.
	ErrDimension = errors.New("dimension mismatch")

	// ErrInsufficientData signals a CHSH estimate with no usable
	// samples, or, under the strict four-setting design, a required
	// setting combination with zero samples.
	ErrInsufficientData = errors.New("insufficient measurement data")

	// ErrInvariant signals a structural violation detected at finalize:
	// sequence lengths disagreeing with the pair count, an outcome
	// outside {0,1}, or a setting outside {Z,X,Y}.
	ErrInvariant = errors.New("proof invariant violation")
)
