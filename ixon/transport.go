package ixon

// Transport is the boundary to the vendor driver library.  Every operation
// returns a raw DRV status code; decoding into errors is the controller's
// job, see Error.  Implementations are the cgo binding to libandor (build
// tag andor) and the Sim camera used for tests and dry runs.
//
// The SDK is synchronous; WaitForAcquisition blocks the calling goroutine
// until the driver signals completion, and can only be released early by
// AbortAcquisition from another goroutine.
type Transport interface {
	// Initialize loads the driver, dir points at the directory holding
	// the detector .ini files
	Initialize(dir string) uint

	// ShutDown releases the driver.  Must be safe on an uninitialized
	// library
	ShutDown() uint

	// GetDetector returns the sensor size in pixels, width then height
	GetDetector() (int, int, uint)

	// GetCameraSerialNumber returns the camera serial number
	GetCameraSerialNumber() (int, uint)

	// SetExposureTime programs the exposure time in seconds
	SetExposureTime(sec float64) uint

	// GetAcquisitionTimings returns the actual exposure, accumulation
	// and kinetic cycle times in seconds after timing resolution
	GetAcquisitionTimings() (exp, accum, kinetic float64, code uint)

	// SetReadMode programs the readout mode (see ReadoutMode)
	SetReadMode(mode int) uint

	// SetAcquisitionMode programs the acquisition mode (see AcquisitionMode)
	SetAcquisitionMode(mode int) uint

	// SetTriggerMode programs the trigger mode (see TriggerMode)
	SetTriggerMode(mode int) uint

	// SetImage programs binning and the active sub-region, 1-based
	// inclusive bounds
	SetImage(hbin, vbin, hstart, hend, vstart, vend int) uint

	// SetShutter programs the shutter; ttl is the TTL polarity to open,
	// times are actuation durations in seconds
	SetShutter(ttl, mode int, opening, closing float64) uint

	// SetTemperature programs the TEC setpoint in Celcius
	SetTemperature(t int) uint

	// GetTemperature reads the sensor temperature in Celcius; the status
	// code carries the cooling state (stabilized, drifting, ...)
	GetTemperature() (int, uint)

	// GetTemperatureRange returns the valid setpoint range, min then max
	GetTemperatureRange() (int, int, uint)

	// CoolerOn engages the TEC
	CoolerOn() uint

	// CoolerOff disengages the TEC
	CoolerOff() uint

	// SetOutputAmplifier selects the readout amplifier (see OutputAmplifier)
	SetOutputAmplifier(amp int) uint

	// GetEMGainRange returns the valid EM gain bounds for the current
	// gain mode and sensor temperature, min then max
	GetEMGainRange() (int, int, uint)

	// GetEMCCDGain reads the current EM gain multiplier
	GetEMCCDGain() (int, uint)

	// SetEMCCDGain programs the EM gain multiplier; interpretation
	// depends on the gain mode
	SetEMCCDGain(gain int) uint

	// SetEMGainMode programs the EM gain mode (see EMGainMode)
	SetEMGainMode(mode int) uint

	// SetFrameTransferMode toggles frame transfer, 1 on, 0 off
	SetFrameTransferMode(mode int) uint

	// GetNumberHSSpeeds returns the number of horizontal shift speeds
	// for an AD channel and amplifier
	GetNumberHSSpeeds(ch, amp int) (int, uint)

	// GetHSSpeed returns a horizontal shift speed in MHz
	GetHSSpeed(ch, amp, idx int) (float64, uint)

	// SetHSSpeed programs the horizontal shift speed for an amplifier
	SetHSSpeed(amp, idx int) uint

	// GetNumberVSSpeeds returns the number of vertical shift speeds
	GetNumberVSSpeeds() (int, uint)

	// GetVSSpeed returns a vertical shift speed in MHz
	GetVSSpeed(idx int) (float64, uint)

	// SetVSSpeed programs the vertical shift speed
	SetVSSpeed(idx int) uint

	// GetNumberPreAmpGains returns the number of preamplifier gain settings
	GetNumberPreAmpGains() (int, uint)

	// GetPreAmpGain returns the gain factor at an index
	GetPreAmpGain(idx int) (float64, uint)

	// SetPreAmpGain programs the preamplifier gain by index
	SetPreAmpGain(idx int) uint

	// SetNumberKinetics programs the length of a kinetic series
	SetNumberKinetics(n int) uint

	// StartAcquisition starts the programmed acquisition
	StartAcquisition() uint

	// AbortAcquisition aborts an acquisition in progress
	AbortAcquisition() uint

	// WaitForAcquisition blocks until the driver signals completion
	WaitForAcquisition() uint

	// GetStatus returns the acquisition status of the camera
	GetStatus() (Status, uint)

	// GetAcquiredData copies the most recently acquired data into buf;
	// the driver errors if len(buf) disagrees with the programmed readout
	GetAcquiredData(buf []int32) uint

	// GetOldestImage copies the oldest unretrieved frame in the circular
	// buffer into buf
	GetOldestImage(buf []int32) uint
}
