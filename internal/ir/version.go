package ir

// Version constants for the circuit description format and engine.
const (
	// IRVersion is the CircuitSpec schema version.
	IRVersion = "1"

	// EngineVersion is the propnet engine version.
	EngineVersion = "0.1.0"
)
