package ixon

// Sim is a software simulation of the driver.  It mimics an iXon Ultra 897:
// a 512x512 detector with the capability tables from that camera's data
// sheet.  It backs tests and lets cmd/ixonsrv run without hardware.
type Sim struct {
	// FlatField is the raw sample value every pixel reads
	FlatField int32

	// Ambient is the temperature reported with the cooler off
	Ambient int

	initialized   bool
	coolerOn      bool
	setpoint      int
	acquiring     bool
	amplifier     int
	serial        int
	exposure      float64
	emGain        int
	emGainMode    int
	frameTransfer int
}

// NewSim returns a simulated camera with a uniform 300 count flat field
func NewSim() *Sim {
	return &Sim{FlatField: 300, Ambient: 20, setpoint: 20, serial: 9797, emGain: 1}
}

var (
	simGains      = []float64{1.0, 2.4, 5.1}
	simHSSpeedsEM = []float64{17.0, 10.0, 5.0, 1.0}
	simHSSpeedsCv = []float64{3.0, 1.0, 0.08}
	simVSSpeeds   = []float64{0.3, 0.5, 0.9, 1.7, 3.3}
)

// Initialize implements Transport
func (s *Sim) Initialize(dir string) uint {
	s.initialized = true
	return CodeSuccess
}

// ShutDown implements Transport
func (s *Sim) ShutDown() uint {
	s.initialized = false
	return CodeSuccess
}

func (s *Sim) guard() (uint, bool) {
	if !s.initialized {
		return CodeNotInitialized, false
	}
	return CodeSuccess, true
}

// GetDetector implements Transport
func (s *Sim) GetDetector() (int, int, uint) {
	code, ok := s.guard()
	if !ok {
		return 0, 0, code
	}
	return 512, 512, CodeSuccess
}

// GetCameraSerialNumber implements Transport
func (s *Sim) GetCameraSerialNumber() (int, uint) {
	return s.serial, CodeSuccess
}

// SetExposureTime implements Transport
func (s *Sim) SetExposureTime(sec float64) uint {
	if sec <= 0 {
		return 20066 // DRV_P1INVALID
	}
	s.exposure = sec
	return CodeSuccess
}

// GetAcquisitionTimings implements Transport
func (s *Sim) GetAcquisitionTimings() (float64, float64, float64, uint) {
	return s.exposure, s.exposure, s.exposure, CodeSuccess
}

// SetReadMode implements Transport
func (s *Sim) SetReadMode(mode int) uint { return CodeSuccess }

// SetAcquisitionMode implements Transport
func (s *Sim) SetAcquisitionMode(mode int) uint { return CodeSuccess }

// SetTriggerMode implements Transport
func (s *Sim) SetTriggerMode(mode int) uint { return CodeSuccess }

// SetImage implements Transport
func (s *Sim) SetImage(hbin, vbin, hstart, hend, vstart, vend int) uint {
	if hstart < 1 || vstart < 1 || hend < hstart || vend < vstart {
		return 20066 // DRV_P1INVALID
	}
	return CodeSuccess
}

// SetShutter implements Transport
func (s *Sim) SetShutter(ttl, mode int, opening, closing float64) uint { return CodeSuccess }

// SetTemperature implements Transport
func (s *Sim) SetTemperature(t int) uint {
	s.setpoint = t
	return CodeSuccess
}

// GetTemperature implements Transport; with the cooler engaged the sensor
// is immediately at setpoint and stabilized
func (s *Sim) GetTemperature() (int, uint) {
	if s.coolerOn {
		return s.setpoint, 20036 // DRV_TEMPERATURE_STABILIZED
	}
	return s.Ambient, 20034 // DRV_TEMPERATURE_OFF
}

// GetTemperatureRange implements Transport
func (s *Sim) GetTemperatureRange() (int, int, uint) {
	return -100, 20, CodeSuccess
}

// CoolerOn implements Transport
func (s *Sim) CoolerOn() uint {
	s.coolerOn = true
	return CodeSuccess
}

// CoolerOff implements Transport
func (s *Sim) CoolerOff() uint {
	s.coolerOn = false
	return CodeSuccess
}

// SetOutputAmplifier implements Transport
func (s *Sim) SetOutputAmplifier(amp int) uint {
	if amp != 0 && amp != 1 {
		return 20100 // DRV_INVALID_AMPLIFIER
	}
	s.amplifier = amp
	return CodeSuccess
}

// GetEMGainRange implements Transport; the iXon 897 runs 1..300 in the
// default gain mode and up to 1000 in the others
func (s *Sim) GetEMGainRange() (int, int, uint) {
	if s.emGainMode == 0 {
		return 1, 300, CodeSuccess
	}
	return 1, 1000, CodeSuccess
}

// GetEMCCDGain implements Transport
func (s *Sim) GetEMCCDGain() (int, uint) {
	return s.emGain, CodeSuccess
}

// SetEMCCDGain implements Transport
func (s *Sim) SetEMCCDGain(gain int) uint {
	low, high, _ := s.GetEMGainRange()
	if gain < low || gain > high {
		return 20066 // DRV_P1INVALID
	}
	s.emGain = gain
	return CodeSuccess
}

// SetEMGainMode implements Transport
func (s *Sim) SetEMGainMode(mode int) uint {
	if mode < 0 || mode > 3 {
		return 20066
	}
	s.emGainMode = mode
	return CodeSuccess
}

// SetFrameTransferMode implements Transport
func (s *Sim) SetFrameTransferMode(mode int) uint {
	if mode != 0 && mode != 1 {
		return 20066
	}
	s.frameTransfer = mode
	return CodeSuccess
}

func (s *Sim) hsTable(amp int) []float64 {
	if amp == 0 {
		return simHSSpeedsEM
	}
	return simHSSpeedsCv
}

// GetNumberHSSpeeds implements Transport
func (s *Sim) GetNumberHSSpeeds(ch, amp int) (int, uint) {
	return len(s.hsTable(amp)), CodeSuccess
}

// GetHSSpeed implements Transport
func (s *Sim) GetHSSpeed(ch, amp, idx int) (float64, uint) {
	table := s.hsTable(amp)
	if idx < 0 || idx >= len(table) {
		return 0, 20992 // DRV_NOT_AVAILABLE
	}
	return table[idx], CodeSuccess
}

// SetHSSpeed implements Transport
func (s *Sim) SetHSSpeed(amp, idx int) uint {
	if idx < 0 || idx >= len(s.hsTable(amp)) {
		return 20992
	}
	return CodeSuccess
}

// GetNumberVSSpeeds implements Transport
func (s *Sim) GetNumberVSSpeeds() (int, uint) {
	return len(simVSSpeeds), CodeSuccess
}

// GetVSSpeed implements Transport
func (s *Sim) GetVSSpeed(idx int) (float64, uint) {
	if idx < 0 || idx >= len(simVSSpeeds) {
		return 0, 20992
	}
	return simVSSpeeds[idx], CodeSuccess
}

// SetVSSpeed implements Transport
func (s *Sim) SetVSSpeed(idx int) uint {
	if idx < 0 || idx >= len(simVSSpeeds) {
		return 20992
	}
	return CodeSuccess
}

// GetNumberPreAmpGains implements Transport
func (s *Sim) GetNumberPreAmpGains() (int, uint) {
	return len(simGains), CodeSuccess
}

// GetPreAmpGain implements Transport
func (s *Sim) GetPreAmpGain(idx int) (float64, uint) {
	if idx < 0 || idx >= len(simGains) {
		return 0, 20992
	}
	return simGains[idx], CodeSuccess
}

// SetPreAmpGain implements Transport
func (s *Sim) SetPreAmpGain(idx int) uint {
	if idx < 0 || idx >= len(simGains) {
		return 20992
	}
	return CodeSuccess
}

// SetNumberKinetics implements Transport
func (s *Sim) SetNumberKinetics(n int) uint {
	if n < 1 {
		return 20066
	}
	return CodeSuccess
}

// StartAcquisition implements Transport
func (s *Sim) StartAcquisition() uint {
	s.acquiring = true
	return CodeSuccess
}

// AbortAcquisition implements Transport
func (s *Sim) AbortAcquisition() uint {
	if !s.acquiring {
		return uint(StatusIdle)
	}
	s.acquiring = false
	return CodeSuccess
}

// WaitForAcquisition implements Transport; the simulated exposure is
// instantaneous
func (s *Sim) WaitForAcquisition() uint {
	s.acquiring = false
	return CodeSuccess
}

// GetStatus implements Transport
func (s *Sim) GetStatus() (Status, uint) {
	if s.acquiring {
		return StatusAcquiring, CodeSuccess
	}
	return StatusIdle, CodeSuccess
}

// GetAcquiredData implements Transport
func (s *Sim) GetAcquiredData(buf []int32) uint {
	for i := range buf {
		buf[i] = s.FlatField
	}
	return CodeSuccess
}

// GetOldestImage implements Transport
func (s *Sim) GetOldestImage(buf []int32) uint {
	return s.GetAcquiredData(buf)
}
