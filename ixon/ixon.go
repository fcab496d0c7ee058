/*Package ixon exposes control of Andor iXon Ultra EMCCD cameras in Go.

This package wraps the vendor SDK (v2) behind the Transport interface and
keeps a session's worth of committed configuration on top of it.  Every
setter validates its input against the capability surface of the camera
(enum membership, capability table lookup, or a numeric bound), then issues
the transport call, then commits the new value only if the driver reported
success.  A setting is never half applied: on any failure the in-memory
state keeps the last committed value.

The camera is synchronous.  The single blocking point is the internal
trigger acquisition wait; release it early by calling StopAcquisition from
another goroutine.  All other operations are non-blocking driver calls.
Methods are safe for concurrent use; a mutex serializes configuration and
acquisition state transitions.

Users are encouraged to write packages that build on this driver to build
more complex functionality.  An example of this is in the same repository,
cmd/ixonsrv, which wraps the camera in an HTTP server.
*/
package ixon

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.jpl.nasa.gov/bdube/ixon/util"
)

// CameraName is the only camera model this package has been run against
const CameraName = "iXon Ultra 897"

// baseline is the dark count bias intrinsic to the iXon 897, subtracted
// from every raw sample
const baseline = 200

// fallbackTempFloor is used when the driver will not report the valid
// setpoint range
const fallbackTempFloor = -100

// shutterActuation is the open/close actuation time passed to the driver
const shutterActuation = 0.1 // seconds

var (
	// ErrAcquisitionRunning is generated when a single acquisition is
	// requested while a continuous one is active
	ErrAcquisitionRunning = errors.New("continuous acquisition in progress, stop it first")

	// ErrNonPositiveExposure is generated when an exposure time of zero
	// or less is requested
	ErrNonPositiveExposure = errors.New("exposure time must be positive")
)

// GainNotAvailableError is generated when a requested preamp gain value is
// not in the camera's capability table
type GainNotAvailableError struct {
	Requested float64
	Available []float64
}

func (e GainNotAvailableError) Error() string {
	return fmt.Sprintf("gain %g not available, choose one of %s", e.Requested, util.FloatSliceToCSV(e.Available))
}

// TemperatureBoundError is generated when a setpoint below the device
// floor is requested
type TemperatureBoundError struct {
	Requested int
	Floor     int
}

func (e TemperatureBoundError) Error() string {
	return fmt.Sprintf("can not cool to %d C, device floor is %d C", e.Requested, e.Floor)
}

// EMGainBoundError is generated when a requested EM gain multiplier is
// outside the range the camera reports for the current gain mode
type EMGainBoundError struct {
	Requested int
	Min       int
	Max       int
}

func (e EMGainBoundError) Error() string {
	return fmt.Sprintf("em gain %d not available, valid range is %d..%d", e.Requested, e.Min, e.Max)
}

// SpeedIndexError is generated when a shift speed index is outside the
// capability table for that axis
type SpeedIndexError struct {
	Axis  string // "horizontal" or "vertical"
	Index int
	Count int
}

func (e SpeedIndexError) Error() string {
	return fmt.Sprintf("%s shift speed index %d not available, camera has %d", e.Axis, e.Index, e.Count)
}

// Config holds the boot configuration for a camera session.  The zero
// value is not useful; start from DefaultConfig.  Values are plain data
// copied into the session at Initialize and not re-read afterward.
type Config struct {
	// LibraryPath is the directory holding the driver's detector files
	LibraryPath string `yaml:"LibraryPath"`

	// Exposure is the default exposure time in seconds
	Exposure float64 `yaml:"Exposure"`

	// ReadMode is the default readout mode, a key of ReadoutMode
	ReadMode string `yaml:"ReadMode"`

	// Temperature is the default TEC setpoint in Celcius
	Temperature int `yaml:"Temperature"`

	// CoolerOn is whether the TEC is engaged at boot
	CoolerOn bool `yaml:"CoolerOn"`

	// AcquisitionMode is the default acquisition mode, a key of AcquisitionMode
	AcquisitionMode string `yaml:"AcquisitionMode"`

	// TriggerMode is the default trigger mode, a key of TriggerMode
	TriggerMode string `yaml:"TriggerMode"`

	// PreAmpGainIndex is the default index into the preamp gain table
	PreAmpGainIndex int `yaml:"PreAmpGainIndex"`

	// HSSpeedIndex is the default index into the horizontal shift speed table
	HSSpeedIndex int `yaml:"HSSpeedIndex"`

	// VSSpeedIndex is the default index into the vertical shift speed table
	VSSpeedIndex int `yaml:"VSSpeedIndex"`

	// Amplifier is the default output amplifier, a key of OutputAmplifier
	Amplifier string `yaml:"Amplifier"`
}

// DefaultConfig returns the configuration used when none is provided
func DefaultConfig() Config {
	return Config{
		LibraryPath:     "/usr/local/etc/andor",
		Exposure:        0.17,
		ReadMode:        "Image",
		Temperature:     0,
		CoolerOn:        true,
		AcquisitionMode: "SingleScan",
		TriggerMode:     "Internal",
		PreAmpGainIndex: 2,
		HSSpeedIndex:    0,
		VSSpeedIndex:    4,
		Amplifier:       "Conventional",
	}
}

// Camera is a session with an iXon camera.  Get it from New, open it with
// Initialize, release it with Shutdown.
type Camera struct {
	mu  sync.Mutex
	drv Transport
	cfg Config

	// detector geometry, fixed at Initialize
	width  int
	height int
	serial int

	// committed configuration
	exposure    time.Duration
	readMode    string
	acqMode     string
	triggerMode string
	setpoint    int
	coolerOn    bool
	amplifier   string
	hsIndex     int
	vsIndex     int
	preampIndex int
	gain        float64
	scans       int

	// EMCCD features
	emGain        int
	emGainMode    string
	frameTransfer bool

	// tri-state, a key of ShutterMode ("Open", "Close", "Auto")
	shutter string

	// acquisition flags
	live      bool
	acquiring bool

	// capability caches, fetched from the driver on first use and held
	// for the session.  hsTable is cleared when the amplifier changes.
	tempFloor int
	gainTable []float64
	hsTable   []float64
	vsTable   []float64

	initialized bool
}

// New wraps a transport in a camera session.  Nothing is sent to the
// hardware until Initialize.
func New(t Transport, cfg Config) *Camera {
	return &Camera{drv: t, cfg: cfg, shutter: "Close", scans: 1, emGainMode: "Default"}
}

// Initialize opens the driver, reads the detector geometry and applies the
// full default configuration in a fixed order.  The order matters: the
// sub-region programmed by the read mode needs the geometry, and the
// shift speeds depend on the amplifier.  A failure to open the driver is
// fatal; any other failure aborts the boot and is returned.
func (c *Camera) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := Error(c.drv.Initialize(c.cfg.LibraryPath)); err != nil {
		return fmt.Errorf("driver library did not initialize: %w", err)
	}
	c.initialized = true
	w, h, code := c.drv.GetDetector()
	if err := Error(code); err != nil {
		return fmt.Errorf("unable to retrieve shape of sensor: %w", err)
	}
	c.width = w
	c.height = h

	sn, code := c.drv.GetCameraSerialNumber()
	if err := Error(code); err != nil {
		// identity metadata only, not worth failing the boot
		log.Printf("unable to query camera serial number: %v", err)
	} else {
		c.serial = sn
	}

	g, code := c.drv.GetEMCCDGain()
	if err := Error(code); err != nil {
		log.Printf("unable to query em gain, assuming unity: %v", err)
	} else {
		c.emGain = g
	}

	min, _, code := c.drv.GetTemperatureRange()
	if err := Error(code); err != nil {
		log.Printf("unable to query temperature range, assuming floor of %d C: %v", fallbackTempFloor, err)
		c.tempFloor = fallbackTempFloor
	} else {
		c.tempFloor = min
	}

	type step struct {
		name string
		fn   func() error
	}
	cfg := c.cfg
	steps := []step{
		{"read mode", func() error { return c.setReadoutMode(cfg.ReadMode) }},
		{"trigger mode", func() error { return c.setTriggerMode(cfg.TriggerMode) }},
		{"exposure", func() error { return c.setExposureTime(util.SecsToDuration(cfg.Exposure)) }},
		{"acquisition mode", func() error { return c.setAcquisitionMode(cfg.AcquisitionMode) }},
		{"preamp gain", func() error { return c.setPreAmpGainIndex(cfg.PreAmpGainIndex) }},
		{"temperature setpoint", func() error { return c.setTemperatureSetpoint(cfg.Temperature) }},
		{"cooler", func() error { return c.setCooling(cfg.CoolerOn) }},
		{"output amplifier", func() error { return c.setOutputAmplifier(cfg.Amplifier) }},
		{"horizontal shift speed", func() error { return c.setHSSpeedIndex(cfg.HSSpeedIndex) }},
		{"vertical shift speed", func() error { return c.setVSSpeedIndex(cfg.VSSpeedIndex) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return fmt.Errorf("bootup could not apply %s: %w", s.name, err)
		}
	}
	return nil
}

// Shutdown aborts any acquisition in flight, closes the shutter and
// releases the driver.  It is safe to call on a session that never
// finished initializing, and safe to call twice.
func (c *Camera) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	if err := Error(c.drv.AbortAcquisition()); err == nil {
		c.live = false
		c.acquiring = false
	}
	if err := c.setShutter("Close"); err != nil {
		log.Printf("shutter did not close during shutdown: %v", err)
	}
	c.drv.ShutDown()
	c.initialized = false
}

// Name returns an identifier for the camera
func (c *Camera) Name() string {
	return CameraName
}

// SerialNumber returns the camera serial number read at Initialize
func (c *Camera) SerialNumber() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serial
}

// Size returns the image size in pixels, width then height
func (c *Camera) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

/* the above deals with the session lifecycle, the below with exposure
   programming.
*/

// SetExposureTime sets the exposure time of the camera
func (c *Camera) SetExposureTime(t time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setExposureTime(t)
}

func (c *Camera) setExposureTime(t time.Duration) error {
	if t <= 0 {
		return ErrNonPositiveExposure
	}
	if err := Error(c.drv.SetExposureTime(t.Seconds())); err != nil {
		return err
	}
	c.exposure = t
	return nil
}

// GetExposureTime returns the exposure time.  The value is refreshed from
// the driver's resolved acquisition timings; if the query fails the last
// committed value is returned along with the error.
func (c *Camera) GetExposureTime() (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp, _, _, code := c.drv.GetAcquisitionTimings()
	if err := Error(code); err != nil {
		return c.exposure, err
	}
	c.exposure = util.SecsToDuration(exp)
	return c.exposure, nil
}

// SetReadoutMode sets the readout mode of the camera.  Image mode
// additionally programs the full-frame sub-region, since the driver
// requires a declared pixel region; if that second call fails the
// previously committed read mode is retained and the error returned.
func (c *Camera) SetReadoutMode(rm string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setReadoutMode(rm)
}

func (c *Camera) setReadoutMode(rm string) error {
	i, ok := ReadoutMode[rm]
	if !ok {
		return ErrBadEnumIndex
	}
	if err := Error(c.drv.SetReadMode(i)); err != nil {
		return err
	}
	if rm == "Image" {
		if err := c.setImage(1, 1, 1, c.width, 1, c.height); err != nil {
			return fmt.Errorf("sub-region for image mode not applied: %w", err)
		}
	}
	c.readMode = rm
	return nil
}

// setImage programs binning and the active sub-region, then recomputes the
// committed geometry from the bounds.  1-based inclusive bounds.
func (c *Camera) setImage(hbin, vbin, hstart, hend, vstart, vend int) error {
	if err := Error(c.drv.SetImage(hbin, vbin, hstart, hend, vstart, vend)); err != nil {
		return err
	}
	c.width = (hend - hstart + 1) / hbin
	c.height = (vend - vstart + 1) / vbin
	return nil
}

// SetAcquisitionMode sets the acquisition mode of the camera
func (c *Camera) SetAcquisitionMode(am string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setAcquisitionMode(am)
}

func (c *Camera) setAcquisitionMode(am string) error {
	i, ok := AcquisitionMode[am]
	if !ok {
		return ErrBadEnumIndex
	}
	if err := Error(c.drv.SetAcquisitionMode(i)); err != nil {
		return err
	}
	c.acqMode = am
	return nil
}

// SetTriggerMode sets the trigger mode of the camera
func (c *Camera) SetTriggerMode(tm string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setTriggerMode(tm)
}

func (c *Camera) setTriggerMode(tm string) error {
	i, ok := TriggerMode[tm]
	if !ok {
		return ErrBadEnumIndex
	}
	if err := Error(c.drv.SetTriggerMode(i)); err != nil {
		return err
	}
	c.triggerMode = tm
	return nil
}

// SetNumberKinetics sets the length of a kinetic series
func (c *Camera) SetNumberKinetics(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 1 {
		return fmt.Errorf("kinetic series length must be at least 1, got %d", n)
	}
	if err := Error(c.drv.SetNumberKinetics(n)); err != nil {
		return err
	}
	c.scans = n
	return nil
}

/* the above deals with exposure programming, the below with gain and
   readout speeds.
*/

// preampGains fetches the gain capability table, caching it for the
// session.  mu must be held.
func (c *Camera) preampGains() ([]float64, error) {
	if c.gainTable != nil {
		return c.gainTable, nil
	}
	n, code := c.drv.GetNumberPreAmpGains()
	if err := Error(code); err != nil {
		return nil, err
	}
	table := make([]float64, n)
	for idx := 0; idx < n; idx++ {
		g, code := c.drv.GetPreAmpGain(idx)
		if err := Error(code); err != nil {
			return nil, err
		}
		table[idx] = g
	}
	c.gainTable = table
	return table, nil
}

// GainOptions returns the preamp gain values the camera supports
func (c *Camera) GainOptions() ([]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	table, err := c.preampGains()
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(table))
	copy(out, table)
	return out, nil
}

// SetGain sets the preamp gain by physical value.  The value must match
// an entry of the capability table exactly; a miss is rejected with the
// valid choices and no gain change is made.
func (c *Camera) SetGain(val float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	table, err := c.preampGains()
	if err != nil {
		return err
	}
	idx := -1
	for i, g := range table {
		if g == val {
			idx = i
			break
		}
	}
	if idx == -1 {
		return GainNotAvailableError{Requested: val, Available: table}
	}
	if err := Error(c.drv.SetPreAmpGain(idx)); err != nil {
		return err
	}
	c.preampIndex = idx
	c.gain = val
	return nil
}

// GetGain returns the committed preamp gain value
func (c *Camera) GetGain() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gain
}

// SetPreAmpGainIndex sets the preamp gain by table index
func (c *Camera) SetPreAmpGainIndex(idx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setPreAmpGainIndex(idx)
}

func (c *Camera) setPreAmpGainIndex(idx int) error {
	table, err := c.preampGains()
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(table) {
		return GainNotAvailableError{Requested: float64(idx), Available: table}
	}
	if err := Error(c.drv.SetPreAmpGain(idx)); err != nil {
		return err
	}
	c.preampIndex = idx
	c.gain = table[idx]
	return nil
}

// hsSpeeds fetches the horizontal shift speed table for the committed
// amplifier, caching it for the session.  mu must be held.
func (c *Camera) hsSpeeds() ([]float64, error) {
	if c.hsTable != nil {
		return c.hsTable, nil
	}
	amp := OutputAmplifier[c.amplifier]
	n, code := c.drv.GetNumberHSSpeeds(0, amp)
	if err := Error(code); err != nil {
		return nil, err
	}
	table := make([]float64, n)
	for idx := 0; idx < n; idx++ {
		s, code := c.drv.GetHSSpeed(0, amp, idx)
		if err := Error(code); err != nil {
			return nil, err
		}
		table[idx] = s
	}
	c.hsTable = table
	return table, nil
}

// vsSpeeds fetches the vertical shift speed table, caching it for the
// session.  mu must be held.
func (c *Camera) vsSpeeds() ([]float64, error) {
	if c.vsTable != nil {
		return c.vsTable, nil
	}
	n, code := c.drv.GetNumberVSSpeeds()
	if err := Error(code); err != nil {
		return nil, err
	}
	table := make([]float64, n)
	for idx := 0; idx < n; idx++ {
		s, code := c.drv.GetVSSpeed(idx)
		if err := Error(code); err != nil {
			return nil, err
		}
		table[idx] = s
	}
	c.vsTable = table
	return table, nil
}

// HSSpeedOptions returns the horizontal shift speeds in MHz for the
// committed amplifier
func (c *Camera) HSSpeedOptions() ([]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	table, err := c.hsSpeeds()
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(table))
	copy(out, table)
	return out, nil
}

// VSSpeedOptions returns the vertical shift speeds in MHz
func (c *Camera) VSSpeedOptions() ([]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	table, err := c.vsSpeeds()
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(table))
	copy(out, table)
	return out, nil
}

// SetHSSpeedIndex sets the horizontal shift speed by capability table index
func (c *Camera) SetHSSpeedIndex(idx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setHSSpeedIndex(idx)
}

func (c *Camera) setHSSpeedIndex(idx int) error {
	table, err := c.hsSpeeds()
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(table) {
		return SpeedIndexError{Axis: "horizontal", Index: idx, Count: len(table)}
	}
	if err := Error(c.drv.SetHSSpeed(OutputAmplifier[c.amplifier], idx)); err != nil {
		return err
	}
	c.hsIndex = idx
	return nil
}

// SetVSSpeedIndex sets the vertical shift speed by capability table index
func (c *Camera) SetVSSpeedIndex(idx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setVSSpeedIndex(idx)
}

func (c *Camera) setVSSpeedIndex(idx int) error {
	table, err := c.vsSpeeds()
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(table) {
		return SpeedIndexError{Axis: "vertical", Index: idx, Count: len(table)}
	}
	if err := Error(c.drv.SetVSSpeed(idx)); err != nil {
		return err
	}
	c.vsIndex = idx
	return nil
}

// SetOutputAmplifier selects the readout amplifier, a key of
// OutputAmplifier.  The horizontal shift speed table depends on the
// amplifier, so its cache is dropped on a successful change.
func (c *Camera) SetOutputAmplifier(amp string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setOutputAmplifier(amp)
}

func (c *Camera) setOutputAmplifier(amp string) error {
	i, ok := OutputAmplifier[amp]
	if !ok {
		return ErrBadEnumIndex
	}
	if err := Error(c.drv.SetOutputAmplifier(i)); err != nil {
		return err
	}
	c.amplifier = amp
	c.hsTable = nil
	return nil
}

// EMGainRange returns the valid EM gain bounds for the committed gain
// mode and the current sensor temperature.  The driver recomputes the
// range as the sensor cools, so it is not cached.
func (c *Camera) EMGainRange() (int, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	low, high, code := c.drv.GetEMGainRange()
	if err := Error(code); err != nil {
		return 0, 0, err
	}
	return low, high, nil
}

// SetEMGain sets the EM gain multiplier.  The value is checked against
// the range the driver reports for the committed gain mode; out of
// range is rejected with the bounds and no gain change is made.  Only
// meaningful on the EM output amplifier.
func (c *Camera) SetEMGain(fctr int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	low, high, code := c.drv.GetEMGainRange()
	if err := Error(code); err != nil {
		return err
	}
	if fctr < low || fctr > high {
		return EMGainBoundError{Requested: fctr, Min: low, Max: high}
	}
	if err := Error(c.drv.SetEMCCDGain(fctr)); err != nil {
		return err
	}
	c.emGain = fctr
	return nil
}

// GetEMGain returns the EM gain multiplier.  The value is refreshed
// from the driver; if the query fails the last committed value is
// returned along with the error.
func (c *Camera) GetEMGain() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, code := c.drv.GetEMCCDGain()
	if err := Error(code); err != nil {
		return c.emGain, err
	}
	c.emGain = g
	return g, nil
}

// SetEMGainMode selects how the driver interprets EM gain values, a key
// of EMGainMode.  The valid gain range depends on the mode, so program
// the mode before the gain.
func (c *Camera) SetEMGainMode(gm string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := EMGainMode[gm]
	if !ok {
		return ErrBadEnumIndex
	}
	if err := Error(c.drv.SetEMGainMode(i)); err != nil {
		return err
	}
	c.emGainMode = gm
	return nil
}

// GetEMGainMode returns the committed EM gain mode
func (c *Camera) GetEMGainMode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.emGainMode
}

// SetFrameTransfer puts the camera into (true) or out of (false) frame
// transfer mode
func (c *Camera) SetFrameTransfer(b bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	mode := 0
	if b {
		mode = 1
	}
	if err := Error(c.drv.SetFrameTransferMode(mode)); err != nil {
		return err
	}
	c.frameTransfer = b
	return nil
}

// GetFrameTransfer returns whether frame transfer mode is engaged, as
// commanded
func (c *Camera) GetFrameTransfer() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameTransfer
}

/* the above deals with gain and speeds, the below with thermal management.
 */

// SetTemperatureSetpoint assigns a setpoint to the camera's TEC.  The
// setpoint must be above the device floor reported at Initialize.
func (c *Camera) SetTemperatureSetpoint(t int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setTemperatureSetpoint(t)
}

func (c *Camera) setTemperatureSetpoint(t int) error {
	if t <= c.tempFloor {
		return TemperatureBoundError{Requested: t, Floor: c.tempFloor}
	}
	if err := Error(c.drv.SetTemperature(t)); err != nil {
		return err
	}
	c.setpoint = t
	return nil
}

// GetTemperatureSetpoint returns the committed setpoint
func (c *Camera) GetTemperatureSetpoint() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setpoint
}

// GetTemperature reads the sensor temperature in Celcius.  Thermal status
// codes (off, stabilized, not reached, drifting) are not failures.
func (c *Camera) GetTemperature() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, code := c.drv.GetTemperature()
	err := Error(code)
	if BeneignThermal(err) {
		return t, nil
	}
	return t, err
}

// SetCooling toggles the TEC on (true) or off (false)
func (c *Camera) SetCooling(b bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setCooling(b)
}

func (c *Camera) setCooling(b bool) error {
	var code uint
	if b {
		code = c.drv.CoolerOn()
	} else {
		code = c.drv.CoolerOff()
	}
	if err := Error(code); err != nil {
		return err
	}
	c.coolerOn = b
	return nil
}

// GetCooling returns whether the TEC is engaged, as commanded
func (c *Camera) GetCooling() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coolerOn
}

/* the above deals with thermal management, the below with the shutter.
 */

// setShutter programs the shutter and commits the tri-state.  mu must be
// held.
func (c *Camera) setShutter(mode string) error {
	i, ok := ShutterMode[mode]
	if !ok {
		return ErrBadEnumIndex
	}
	if err := Error(c.drv.SetShutter(0, i, shutterActuation, shutterActuation)); err != nil {
		return err
	}
	c.shutter = mode
	return nil
}

// OpenShutter holds the shutter permanently open
func (c *Camera) OpenShutter() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setShutter("Open")
}

// CloseShutter holds the shutter permanently closed
func (c *Camera) CloseShutter() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setShutter("Close")
}

// GetShutter returns the shutter tri-state, a key of ShutterMode
func (c *Camera) GetShutter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shutter
}

/* the above deals with the shutter, the below with acquisition.
 */

// StartSingleAcquisition takes one frame.  The read mode, acquisition
// mode and trigger mode are normalized to Image / SingleScan / Internal
// first, overriding any session customization.  A closed shutter is
// opened; failure to open it is logged and does not block the capture.
// If a continuous acquisition is running the request is rejected with
// ErrAcquisitionRunning before any driver start call.
//
// With the internal trigger the call blocks until the driver signals
// completion; this is the single suspension point in the package.
func (c *Camera) StartSingleAcquisition() error {
	c.mu.Lock()
	if c.live {
		c.mu.Unlock()
		return ErrAcquisitionRunning
	}
	norm := []struct {
		have string
		want string
		fn   func(string) error
	}{
		{c.readMode, "Image", c.setReadoutMode},
		{c.acqMode, "SingleScan", c.setAcquisitionMode},
		{c.triggerMode, "Internal", c.setTriggerMode},
	}
	for _, n := range norm {
		if n.have != n.want {
			if err := n.fn(n.want); err != nil {
				c.mu.Unlock()
				return err
			}
		}
	}
	if c.shutter == "Close" {
		if err := c.setShutter("Open"); err != nil {
			log.Printf("shutter did not open: %v", err)
		}
	}
	c.acquiring = true
	trigger := c.triggerMode
	// release the lock across the blocking wait so that StopAcquisition
	// can run from another goroutine
	c.mu.Unlock()

	err := Error(c.drv.StartAcquisition())
	if err == nil && trigger == "Internal" {
		c.drv.WaitForAcquisition()
	}

	c.mu.Lock()
	c.acquiring = false
	c.mu.Unlock()
	return err
}

// StartLiveAcquisition begins a run-till-abort acquisition which fills
// the driver's circular buffer until StopAcquisition.  Frames are pulled
// with AcquiredFrame, which reads the oldest unretrieved frame while the
// camera is in this mode.
func (c *Camera) StartLiveAcquisition() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live || c.acquiring {
		return ErrAcquisitionRunning
	}
	if c.acqMode != "RunTillAbort" {
		if err := c.setAcquisitionMode("RunTillAbort"); err != nil {
			return err
		}
	}
	if c.shutter == "Close" {
		if err := c.setShutter("Open"); err != nil {
			log.Printf("shutter did not open: %v", err)
		}
	}
	if err := Error(c.drv.StartAcquisition()); err != nil {
		return err
	}
	c.live = true
	return nil
}

// StopAcquisition aborts a live or single acquisition.  On driver success
// both the live and acquiring flags clear; on failure they are left
// untouched so the caller may retry the abort.
func (c *Camera) StopAcquisition() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := Error(c.drv.AbortAcquisition()); err != nil {
		return err
	}
	c.live = false
	c.acquiring = false
	return nil
}

// Live returns whether a continuous acquisition is running
func (c *Camera) Live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

// Ready returns whether the camera is idle and can start an acquisition
func (c *Camera) Ready() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stat, code := c.drv.GetStatus()
	if err := Error(code); err != nil {
		return false, err
	}
	return stat == StatusIdle, nil
}

/* the above deals with acquisition, the below with image retrieval.
 */

// AcquiredFrame retrieves the last acquired image.  The buffer length is
// derived from the committed read mode, acquisition mode, geometry and
// kinetic series length; an unrecognized combination is a configuration
// error.  In run-till-abort mode the oldest unretrieved frame is read,
// otherwise the most recently acquired one.  The detector baseline is
// subtracted from every sample.  A driver failure is returned as an
// error, never as a zero filled frame.
func (c *Camera) AcquiredFrame() (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dim, err := BufferLength(c.readMode, c.acqMode, c.width, c.height, c.scans)
	if err != nil {
		return Frame{}, err
	}
	buf := make([]int32, dim)
	var code uint
	if c.acqMode == "RunTillAbort" {
		code = c.drv.GetOldestImage(buf)
	} else {
		code = c.drv.GetAcquiredData(buf)
	}
	if err := Error(code); err != nil {
		return Frame{}, fmt.Errorf("unable to retrieve image: %w", err)
	}
	for i := range buf {
		buf[i] -= baseline
	}
	return Frame{Width: c.width, Height: dim / c.width, Pix: buf}, nil
}

// SnapFrame takes a single internally triggered frame and returns it.
// It is StartSingleAcquisition followed by AcquiredFrame.
func (c *Camera) SnapFrame() (Frame, error) {
	if err := c.StartSingleAcquisition(); err != nil {
		return Frame{}, err
	}
	return c.AcquiredFrame()
}
