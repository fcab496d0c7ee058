package ixon

import "errors"

// Enum behaves a bit like a C enum
type Enum map[string]int

var (
	// ErrBadEnumIndex is generated when an unknown enum index is used
	ErrBadEnumIndex = errors.New("index not found in enum")

	// AcquisitionMode maps names to the values used by the SDK
	AcquisitionMode = Enum{
		"SingleScan":   1,
		"Accumulate":   2,
		"Kinetic":      3,
		"FastKinetic":  4,
		"RunTillAbort": 5,
	}

	// ReadoutMode maps names to the values used by the SDK
	ReadoutMode = Enum{
		"FullVerticalBinning": 0,
		"MultiTrack":          1,
		"RandomTrack":         2,
		"SingleTrack":         3,
		"Image":               4,
	}

	// TriggerMode maps names to the values used by the SDK
	TriggerMode = Enum{
		"Internal":         0,
		"External":         1,
		"ExternalStart":    6,
		"ExternalExposure": 7,
		"Software":         10,
	}

	// ShutterMode maps names to the values used by the SDK
	ShutterMode = Enum{
		"Auto":  0,
		"Open":  1,
		"Close": 2,
	}

	// OutputAmplifier maps names to the values used by the SDK
	OutputAmplifier = Enum{
		"EM":           0,
		"Conventional": 1,
	}

	// EMGainMode maps names to the values used by the SDK
	EMGainMode = Enum{
		"Default":  0,
		"Extended": 1,
		"Linear":   2,
		"Real":     3,
	}
)

// Names returns the keys of the enum; the order is not stable
func (e Enum) Names() []string {
	names := make([]string, 0, len(e))
	for k := range e {
		names = append(names, k)
	}
	return names
}
