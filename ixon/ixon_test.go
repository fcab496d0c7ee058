package ixon

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// countingSim wraps Sim, counting calls to the mutating driver entry
// points and optionally forcing a failure code on one of them
type countingSim struct {
	*Sim
	counts map[string]int
	fail   map[string]uint
}

func newCountingSim() *countingSim {
	return &countingSim{
		Sim:    NewSim(),
		counts: map[string]int{},
		fail:   map[string]uint{},
	}
}

func (s *countingSim) hit(name string) (uint, bool) {
	s.counts[name]++
	if code, ok := s.fail[name]; ok {
		return code, true
	}
	return 0, false
}

func (s *countingSim) SetExposureTime(sec float64) uint {
	if code, forced := s.hit("SetExposureTime"); forced {
		return code
	}
	return s.Sim.SetExposureTime(sec)
}

func (s *countingSim) SetReadMode(mode int) uint {
	if code, forced := s.hit("SetReadMode"); forced {
		return code
	}
	return s.Sim.SetReadMode(mode)
}

func (s *countingSim) SetAcquisitionMode(mode int) uint {
	if code, forced := s.hit("SetAcquisitionMode"); forced {
		return code
	}
	return s.Sim.SetAcquisitionMode(mode)
}

func (s *countingSim) SetTriggerMode(mode int) uint {
	if code, forced := s.hit("SetTriggerMode"); forced {
		return code
	}
	return s.Sim.SetTriggerMode(mode)
}

func (s *countingSim) SetImage(hbin, vbin, hstart, hend, vstart, vend int) uint {
	if code, forced := s.hit("SetImage"); forced {
		return code
	}
	return s.Sim.SetImage(hbin, vbin, hstart, hend, vstart, vend)
}

func (s *countingSim) SetTemperature(t int) uint {
	if code, forced := s.hit("SetTemperature"); forced {
		return code
	}
	return s.Sim.SetTemperature(t)
}

func (s *countingSim) SetPreAmpGain(idx int) uint {
	if code, forced := s.hit("SetPreAmpGain"); forced {
		return code
	}
	return s.Sim.SetPreAmpGain(idx)
}

func (s *countingSim) SetHSSpeed(amp, idx int) uint {
	if code, forced := s.hit("SetHSSpeed"); forced {
		return code
	}
	return s.Sim.SetHSSpeed(amp, idx)
}

func (s *countingSim) SetVSSpeed(idx int) uint {
	if code, forced := s.hit("SetVSSpeed"); forced {
		return code
	}
	return s.Sim.SetVSSpeed(idx)
}

func (s *countingSim) SetEMCCDGain(gain int) uint {
	if code, forced := s.hit("SetEMCCDGain"); forced {
		return code
	}
	return s.Sim.SetEMCCDGain(gain)
}

func (s *countingSim) SetEMGainMode(mode int) uint {
	if code, forced := s.hit("SetEMGainMode"); forced {
		return code
	}
	return s.Sim.SetEMGainMode(mode)
}

func (s *countingSim) SetFrameTransferMode(mode int) uint {
	if code, forced := s.hit("SetFrameTransferMode"); forced {
		return code
	}
	return s.Sim.SetFrameTransferMode(mode)
}

func (s *countingSim) StartAcquisition() uint {
	if code, forced := s.hit("StartAcquisition"); forced {
		return code
	}
	return s.Sim.StartAcquisition()
}

func (s *countingSim) AbortAcquisition() uint {
	if code, forced := s.hit("AbortAcquisition"); forced {
		return code
	}
	return s.Sim.AbortAcquisition()
}

func (s *countingSim) GetAcquiredData(buf []int32) uint {
	if code, forced := s.hit("GetAcquiredData"); forced {
		return code
	}
	return s.Sim.GetAcquiredData(buf)
}

func (s *countingSim) GetOldestImage(buf []int32) uint {
	if code, forced := s.hit("GetOldestImage"); forced {
		return code
	}
	return s.Sim.GetOldestImage(buf)
}

func (s *countingSim) ShutDown() uint {
	if code, forced := s.hit("ShutDown"); forced {
		return code
	}
	return s.Sim.ShutDown()
}

func bootCamera(t *testing.T, drv Transport) *Camera {
	t.Helper()
	c := New(drv, DefaultConfig())
	if err := c.Initialize(); err != nil {
		t.Fatalf("bootup failed: %v", err)
	}
	return c
}

func TestInitializeAppliesDefaults(t *testing.T) {
	c := bootCamera(t, NewSim())
	defer c.Shutdown()
	w, h := c.Size()
	if w != 512 || h != 512 {
		t.Errorf("detector size %dx%d, want 512x512", w, h)
	}
	if sn := c.SerialNumber(); sn != 9797 {
		t.Errorf("serial %d, want 9797", sn)
	}
	// default preamp gain index 2 resolves through the capability table
	if g := c.GetGain(); g != 5.1 {
		t.Errorf("gain %g, want 5.1", g)
	}
	if s := c.GetShutter(); s != "Close" {
		t.Errorf("shutter %q, want Close at boot", s)
	}
	if !c.GetCooling() {
		t.Error("cooler not engaged at boot")
	}
	if sp := c.GetTemperatureSetpoint(); sp != 0 {
		t.Errorf("setpoint %d, want 0", sp)
	}
	exp, err := c.GetExposureTime()
	if err != nil {
		t.Fatalf("exposure query failed: %v", err)
	}
	if exp != 170*time.Millisecond {
		t.Errorf("exposure %v, want 170ms", exp)
	}
}

func TestSetExposureTimeRejectsNonPositive(t *testing.T) {
	drv := newCountingSim()
	c := bootCamera(t, drv)
	defer c.Shutdown()
	before := drv.counts["SetExposureTime"]
	err := c.SetExposureTime(-1 * time.Second)
	if err != ErrNonPositiveExposure {
		t.Fatalf("got %v, want ErrNonPositiveExposure", err)
	}
	if n := drv.counts["SetExposureTime"] - before; n != 0 {
		t.Errorf("driver saw %d exposure calls for invalid input, want 0", n)
	}
	exp, _ := c.GetExposureTime()
	if exp != 170*time.Millisecond {
		t.Errorf("committed exposure changed to %v", exp)
	}
}

func TestSetExposureTimeDriverFailure(t *testing.T) {
	drv := newCountingSim()
	c := bootCamera(t, drv)
	defer c.Shutdown()
	drv.fail["SetExposureTime"] = 20066 // DRV_P1INVALID
	err := c.SetExposureTime(time.Second)
	if err == nil {
		t.Fatal("driver failure not surfaced")
	}
	delete(drv.fail, "SetExposureTime")
	exp, _ := c.GetExposureTime()
	if exp != 170*time.Millisecond {
		t.Errorf("failed set leaked into state, exposure %v", exp)
	}
}

func TestSetReadoutModeBadEnum(t *testing.T) {
	drv := newCountingSim()
	c := bootCamera(t, drv)
	defer c.Shutdown()
	before := drv.counts["SetReadMode"]
	err := c.SetReadoutMode("Sideways")
	if err != ErrBadEnumIndex {
		t.Fatalf("got %v, want ErrBadEnumIndex", err)
	}
	if n := drv.counts["SetReadMode"] - before; n != 0 {
		t.Errorf("driver saw %d read mode calls for invalid input, want 0", n)
	}
}

func TestSetReadoutModeSubRegionFailure(t *testing.T) {
	drv := newCountingSim()
	c := bootCamera(t, drv)
	defer c.Shutdown()
	if err := c.SetReadoutMode("FullVerticalBinning"); err != nil {
		t.Fatalf("fvb not applied: %v", err)
	}
	drv.fail["SetImage"] = 20066
	if err := c.SetReadoutMode("Image"); err == nil {
		t.Fatal("sub-region failure not surfaced")
	}
	delete(drv.fail, "SetImage")
	// retrieval sized for FVB proves the committed mode did not change
	frame, err := c.AcquiredFrame()
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if frame.Width != 512 || frame.Height != 1 {
		t.Errorf("frame %dx%d, want 512x1 for retained fvb mode", frame.Width, frame.Height)
	}
}

func TestSetGainRoundTrip(t *testing.T) {
	drv := newCountingSim()
	c := bootCamera(t, drv)
	defer c.Shutdown()
	if err := c.SetGain(2.4); err != nil {
		t.Fatalf("valid gain rejected: %v", err)
	}
	if g := c.GetGain(); g != 2.4 {
		t.Errorf("gain %g, want 2.4", g)
	}

	before := drv.counts["SetPreAmpGain"]
	err := c.SetGain(3.14)
	var gerr GainNotAvailableError
	if !errors.As(err, &gerr) {
		t.Fatalf("got %v, want GainNotAvailableError", err)
	}
	if !strings.Contains(err.Error(), "2.4") {
		t.Errorf("rejection does not list the valid choices: %v", err)
	}
	if n := drv.counts["SetPreAmpGain"] - before; n != 0 {
		t.Errorf("driver saw %d gain calls for invalid input, want 0", n)
	}
	if g := c.GetGain(); g != 2.4 {
		t.Errorf("rejected set leaked into state, gain %g", g)
	}
}

func TestSetTemperatureSetpointFloor(t *testing.T) {
	drv := newCountingSim()
	c := bootCamera(t, drv)
	defer c.Shutdown()
	before := drv.counts["SetTemperature"]
	err := c.SetTemperatureSetpoint(-150)
	var terr TemperatureBoundError
	if !errors.As(err, &terr) {
		t.Fatalf("got %v, want TemperatureBoundError", err)
	}
	if terr.Floor != -100 {
		t.Errorf("floor %d, want -100", terr.Floor)
	}
	if n := drv.counts["SetTemperature"] - before; n != 0 {
		t.Errorf("driver saw %d setpoint calls for invalid input, want 0", n)
	}
	if sp := c.GetTemperatureSetpoint(); sp != 0 {
		t.Errorf("rejected set leaked into state, setpoint %d", sp)
	}
}

func TestSpeedIndexValidation(t *testing.T) {
	drv := newCountingSim()
	c := bootCamera(t, drv)
	defer c.Shutdown()
	hsBefore := drv.counts["SetHSSpeed"]
	err := c.SetHSSpeedIndex(99)
	var serr SpeedIndexError
	if !errors.As(err, &serr) {
		t.Fatalf("got %v, want SpeedIndexError", err)
	}
	if serr.Axis != "horizontal" {
		t.Errorf("axis %q, want horizontal", serr.Axis)
	}
	if n := drv.counts["SetHSSpeed"] - hsBefore; n != 0 {
		t.Errorf("driver saw %d hs calls for invalid input, want 0", n)
	}

	vsBefore := drv.counts["SetVSSpeed"]
	err = c.SetVSSpeedIndex(-1)
	if !errors.As(err, &serr) {
		t.Fatalf("got %v, want SpeedIndexError", err)
	}
	if n := drv.counts["SetVSSpeed"] - vsBefore; n != 0 {
		t.Errorf("driver saw %d vs calls for invalid input, want 0", n)
	}
}

func TestSetEMGainRoundTrip(t *testing.T) {
	drv := newCountingSim()
	c := bootCamera(t, drv)
	defer c.Shutdown()
	if err := c.SetEMGain(100); err != nil {
		t.Fatalf("valid em gain rejected: %v", err)
	}
	g, err := c.GetEMGain()
	if err != nil {
		t.Fatalf("em gain query failed: %v", err)
	}
	if g != 100 {
		t.Errorf("em gain %d, want 100", g)
	}

	before := drv.counts["SetEMCCDGain"]
	err = c.SetEMGain(1000)
	var berr EMGainBoundError
	if !errors.As(err, &berr) {
		t.Fatalf("got %v, want EMGainBoundError", err)
	}
	if berr.Min != 1 || berr.Max != 300 {
		t.Errorf("bounds (%d, %d), want (1, 300)", berr.Min, berr.Max)
	}
	if n := drv.counts["SetEMCCDGain"] - before; n != 0 {
		t.Errorf("driver saw %d em gain calls for out of range input, want 0", n)
	}
	if g, _ := c.GetEMGain(); g != 100 {
		t.Errorf("rejected set leaked into state, em gain %d", g)
	}
}

func TestSetEMGainModeWidensRange(t *testing.T) {
	drv := newCountingSim()
	c := bootCamera(t, drv)
	defer c.Shutdown()
	before := drv.counts["SetEMGainMode"]
	err := c.SetEMGainMode("Sideways")
	if err != ErrBadEnumIndex {
		t.Fatalf("got %v, want ErrBadEnumIndex", err)
	}
	if n := drv.counts["SetEMGainMode"] - before; n != 0 {
		t.Errorf("driver saw %d mode calls for invalid input, want 0", n)
	}
	if gm := c.GetEMGainMode(); gm != "Default" {
		t.Errorf("rejected set leaked into state, mode %q", gm)
	}

	if err := c.SetEMGainMode("Real"); err != nil {
		t.Fatalf("valid mode rejected: %v", err)
	}
	_, high, err := c.EMGainRange()
	if err != nil {
		t.Fatalf("range query failed: %v", err)
	}
	if high != 1000 {
		t.Errorf("range high %d after mode change, want 1000", high)
	}
	if err := c.SetEMGain(500); err != nil {
		t.Errorf("gain valid in the new mode rejected: %v", err)
	}
}

func TestFrameTransferRoundTrip(t *testing.T) {
	drv := newCountingSim()
	c := bootCamera(t, drv)
	defer c.Shutdown()
	if c.GetFrameTransfer() {
		t.Fatal("frame transfer engaged at boot")
	}
	if err := c.SetFrameTransfer(true); err != nil {
		t.Fatalf("frame transfer rejected: %v", err)
	}
	if !c.GetFrameTransfer() {
		t.Error("frame transfer commit did not take")
	}
	drv.fail["SetFrameTransferMode"] = 20013 // DRV_ERROR_ACK
	if err := c.SetFrameTransfer(false); err == nil {
		t.Fatal("driver failure not surfaced")
	}
	if !c.GetFrameTransfer() {
		t.Error("failed set leaked into state")
	}
}

func TestAmplifierChangeRefreshesSpeeds(t *testing.T) {
	c := bootCamera(t, NewSim())
	defer c.Shutdown()
	// boot default is the conventional amplifier
	hs, err := c.HSSpeedOptions()
	if err != nil {
		t.Fatalf("hs query failed: %v", err)
	}
	if len(hs) != 3 {
		t.Fatalf("conventional amplifier has %d hs speeds, want 3", len(hs))
	}
	if err := c.SetOutputAmplifier("EM"); err != nil {
		t.Fatalf("amplifier change rejected: %v", err)
	}
	hs, err = c.HSSpeedOptions()
	if err != nil {
		t.Fatalf("hs query failed: %v", err)
	}
	if len(hs) != 4 {
		t.Errorf("em amplifier has %d hs speeds, want 4", len(hs))
	}
}

func TestBaselineSubtraction(t *testing.T) {
	sim := NewSim()
	sim.FlatField = 300
	c := bootCamera(t, sim)
	defer c.Shutdown()
	frame, err := c.SnapFrame()
	if err != nil {
		t.Fatalf("snap failed: %v", err)
	}
	if frame.Width != 512 || frame.Height != 512 {
		t.Fatalf("frame %dx%d, want 512x512", frame.Width, frame.Height)
	}
	if px := frame.At(0, 0); px != 100 {
		t.Errorf("pixel reads %d, want 100 after bias subtraction", px)
	}
	if px := frame.At(511, 511); px != 100 {
		t.Errorf("pixel reads %d, want 100 after bias subtraction", px)
	}
}

func TestSingleRejectedDuringLive(t *testing.T) {
	drv := newCountingSim()
	c := bootCamera(t, drv)
	defer c.Shutdown()
	if err := c.StartLiveAcquisition(); err != nil {
		t.Fatalf("live did not start: %v", err)
	}
	if !c.Live() {
		t.Fatal("live flag not set")
	}
	before := drv.counts["StartAcquisition"]
	err := c.StartSingleAcquisition()
	if err != ErrAcquisitionRunning {
		t.Fatalf("got %v, want ErrAcquisitionRunning", err)
	}
	if n := drv.counts["StartAcquisition"] - before; n != 0 {
		t.Errorf("driver saw %d start calls for rejected request, want 0", n)
	}
	if err := c.StopAcquisition(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if c.Live() {
		t.Error("live flag survived the stop")
	}
}

func TestLiveRetrievalUsesOldestImage(t *testing.T) {
	drv := newCountingSim()
	c := bootCamera(t, drv)
	defer c.Shutdown()
	if err := c.StartLiveAcquisition(); err != nil {
		t.Fatalf("live did not start: %v", err)
	}
	defer c.StopAcquisition()
	if _, err := c.AcquiredFrame(); err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if n := drv.counts["GetOldestImage"]; n != 1 {
		t.Errorf("oldest-image reads %d, want 1", n)
	}
	if n := drv.counts["GetAcquiredData"]; n != 0 {
		t.Errorf("most-recent reads %d, want 0 in live mode", n)
	}
}

func TestRetrievalFailureReturnsError(t *testing.T) {
	drv := newCountingSim()
	c := bootCamera(t, drv)
	defer c.Shutdown()
	if err := c.StartSingleAcquisition(); err != nil {
		t.Fatalf("acquisition failed: %v", err)
	}
	drv.fail["GetAcquiredData"] = uint(CodeNoNewData)
	frame, err := c.AcquiredFrame()
	if err == nil {
		t.Fatal("driver failure not surfaced")
	}
	if frame.Pix != nil {
		t.Error("failed retrieval produced a frame")
	}
}

func TestStopFailureKeepsFlags(t *testing.T) {
	drv := newCountingSim()
	c := bootCamera(t, drv)
	defer c.Shutdown()
	if err := c.StartLiveAcquisition(); err != nil {
		t.Fatalf("live did not start: %v", err)
	}
	drv.fail["AbortAcquisition"] = 20013 // DRV_ERROR_ACK
	if err := c.StopAcquisition(); err == nil {
		t.Fatal("abort failure not surfaced")
	}
	if !c.Live() {
		t.Error("live flag cleared on a failed abort")
	}
	delete(drv.fail, "AbortAcquisition")
	if err := c.StopAcquisition(); err != nil {
		t.Fatalf("retried abort failed: %v", err)
	}
	if c.Live() {
		t.Error("live flag survived a successful abort")
	}
}

func TestStopWhileIdleIsHarmless(t *testing.T) {
	drv := newCountingSim()
	c := bootCamera(t, drv)
	defer c.Shutdown()
	if err := c.StopAcquisition(); err != nil {
		t.Fatalf("abort on an idle camera surfaced an error: %v", err)
	}
	if n := drv.counts["AbortAcquisition"]; n != 1 {
		t.Errorf("driver saw %d abort calls, want 1", n)
	}
	if c.Live() {
		t.Error("abort on an idle camera set the live flag")
	}
	rdy, err := c.Ready()
	if err != nil {
		t.Fatalf("status query failed: %v", err)
	}
	if !rdy {
		t.Error("camera not ready after an idle abort")
	}
}

func TestSnapNormalizesModes(t *testing.T) {
	c := bootCamera(t, NewSim())
	defer c.Shutdown()
	if err := c.SetAcquisitionMode("Kinetic"); err != nil {
		t.Fatalf("kinetic not applied: %v", err)
	}
	if err := c.SetReadoutMode("FullVerticalBinning"); err != nil {
		t.Fatalf("fvb not applied: %v", err)
	}
	if err := c.SetTriggerMode("External"); err != nil {
		t.Fatalf("external trigger not applied: %v", err)
	}
	frame, err := c.SnapFrame()
	if err != nil {
		t.Fatalf("snap failed: %v", err)
	}
	// a full frame proves the programming fell back to image / single scan
	if frame.Width != 512 || frame.Height != 512 {
		t.Errorf("frame %dx%d, want 512x512 after normalization", frame.Width, frame.Height)
	}
}

func TestReady(t *testing.T) {
	c := bootCamera(t, NewSim())
	defer c.Shutdown()
	rdy, err := c.Ready()
	if err != nil {
		t.Fatalf("status query failed: %v", err)
	}
	if !rdy {
		t.Error("idle camera not ready")
	}
	if err := c.StartLiveAcquisition(); err != nil {
		t.Fatalf("live did not start: %v", err)
	}
	rdy, err = c.Ready()
	if err != nil {
		t.Fatalf("status query failed: %v", err)
	}
	if rdy {
		t.Error("acquiring camera reported ready")
	}
	c.StopAcquisition()
}

func TestShutdownIdempotent(t *testing.T) {
	drv := newCountingSim()
	c := bootCamera(t, drv)
	c.Shutdown()
	c.Shutdown()
	if n := drv.counts["ShutDown"]; n != 1 {
		t.Errorf("driver released %d times, want 1", n)
	}
}

func TestInitializeFailureIsFatal(t *testing.T) {
	drv := newCountingSim()
	drv.fail["SetTemperature"] = 20013
	c := New(drv, DefaultConfig())
	err := c.Initialize()
	if err == nil {
		t.Fatal("bootup succeeded past a driver failure")
	}
	if !strings.Contains(err.Error(), "temperature setpoint") {
		t.Errorf("error does not name the failed step: %v", err)
	}
}
