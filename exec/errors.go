package exec

import "github.com/pkg/errors"

// Failure classes surfaced by preprocessing, planning and dispatch.
// Call sites wrap them with context; errors.Is matches through the
// wrapping.
var (
	// ErrRegisterNotFound reports a measurement or readout naming an
	// undeclared register.
	ErrRegisterNotFound = errors.New("register not found")

	// ErrIndexOutOfRange reports a readout index at or beyond the
	// register's declared length.
	ErrIndexOutOfRange = errors.New("readout index out of range")

	// ErrDuplicateRepeatedMeasurement reports more than one repeated
	// measurement pragma in a single circuit.
	ErrDuplicateRepeatedMeasurement = errors.New("only one repeated measurement allowed per circuit")

	// ErrUnmatchedSetMeasurements reports a set-number-of-measurements
	// pragma whose readout no measurement writes to.
	ErrUnmatchedSetMeasurements = errors.New("no measurement matches the requested readout")

	// ErrInsufficientQubits reports a circuit addressing qubits beyond
	// the engine's size.
	ErrInsufficientQubits = errors.New("insufficient qubits")

	// ErrStateVectorDensityMismatch reports a state-vector operation on
	// a density-matrix engine or the reverse.
	ErrStateVectorDensityMismatch = errors.New("state representation mismatch")

	// ErrOperationNotSupported reports an operation with no dispatch
	// rule that is not in the accepted no-op list.
	ErrOperationNotSupported = errors.New("operation not supported by the backend")

	// ErrDeviceUnavailable reports an operation the attached device
	// does not provide on the addressed qubits.
	ErrDeviceUnavailable = errors.New("operation not available on device")

	// ErrNegativeProbability reports a sampling distribution entry
	// below the numerical tolerance.
	ErrNegativeProbability = errors.New("negative probability in sampling distribution")
)
