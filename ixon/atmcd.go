//go:build andor
// +build andor

package ixon

/*
#cgo CFLAGS: -I/usr/local
#cgo LDFLAGS: -L/usr/local/lib -landor
#include <stdlib.h>
#include <atmcdLXd.h>
*/
import "C"
import "unsafe"

// SDK is the Transport backed by the vendor shared library.  Only one
// camera per process is supported, matching the library itself.
type SDK struct{}

// Initialize implements Transport
func (SDK) Initialize(dir string) uint {
	cstr := C.CString(dir)
	defer C.free(unsafe.Pointer(cstr))
	return uint(C.Initialize(cstr))
}

// ShutDown implements Transport
func (SDK) ShutDown() uint {
	return uint(C.ShutDown())
}

// GetDetector implements Transport
func (SDK) GetDetector() (int, int, uint) {
	var x, y C.int
	code := uint(C.GetDetector(&x, &y))
	return int(x), int(y), code
}

// GetCameraSerialNumber implements Transport
func (SDK) GetCameraSerialNumber() (int, uint) {
	var i C.int
	code := uint(C.GetCameraSerialNumber(&i))
	return int(i), code
}

// SetExposureTime implements Transport
func (SDK) SetExposureTime(sec float64) uint {
	return uint(C.SetExposureTime(C.float(sec)))
}

// GetAcquisitionTimings implements Transport
func (SDK) GetAcquisitionTimings() (float64, float64, float64, uint) {
	var exp, acc, kin C.float
	code := uint(C.GetAcquisitionTimings(&exp, &acc, &kin))
	return float64(exp), float64(acc), float64(kin), code
}

// SetReadMode implements Transport
func (SDK) SetReadMode(mode int) uint {
	return uint(C.SetReadMode(C.int(mode)))
}

// SetAcquisitionMode implements Transport
func (SDK) SetAcquisitionMode(mode int) uint {
	return uint(C.SetAcquisitionMode(C.int(mode)))
}

// SetTriggerMode implements Transport
func (SDK) SetTriggerMode(mode int) uint {
	return uint(C.SetTriggerMode(C.int(mode)))
}

// SetImage implements Transport
func (SDK) SetImage(hbin, vbin, hstart, hend, vstart, vend int) uint {
	return uint(C.SetImage(C.int(hbin), C.int(vbin), C.int(hstart), C.int(hend), C.int(vstart), C.int(vend)))
}

// SetShutter implements Transport
func (SDK) SetShutter(ttl, mode int, opening, closing float64) uint {
	// the SDK takes milliseconds
	ot := C.int(opening * 1e3)
	ct := C.int(closing * 1e3)
	return uint(C.SetShutter(C.int(ttl), C.int(mode), ot, ct))
}

// SetTemperature implements Transport
func (SDK) SetTemperature(t int) uint {
	return uint(C.SetTemperature(C.int(t)))
}

// GetTemperature implements Transport
func (SDK) GetTemperature() (int, uint) {
	var t C.int
	code := uint(C.GetTemperature(&t))
	return int(t), code
}

// GetTemperatureRange implements Transport
func (SDK) GetTemperatureRange() (int, int, uint) {
	var min, max C.int
	code := uint(C.GetTemperatureRange(&min, &max))
	return int(min), int(max), code
}

// CoolerOn implements Transport
func (SDK) CoolerOn() uint {
	return uint(C.CoolerON())
}

// CoolerOff implements Transport
func (SDK) CoolerOff() uint {
	return uint(C.CoolerOFF())
}

// SetOutputAmplifier implements Transport
func (SDK) SetOutputAmplifier(amp int) uint {
	return uint(C.SetOutputAmplifier(C.int(amp)))
}

// GetEMGainRange implements Transport
func (SDK) GetEMGainRange() (int, int, uint) {
	var low, high C.int
	code := uint(C.GetEMGainRange(&low, &high))
	return int(low), int(high), code
}

// GetEMCCDGain implements Transport
func (SDK) GetEMCCDGain() (int, uint) {
	var mult C.int
	code := uint(C.GetEMCCDGain(&mult))
	return int(mult), code
}

// SetEMCCDGain implements Transport
func (SDK) SetEMCCDGain(gain int) uint {
	return uint(C.SetEMCCDGain(C.int(gain)))
}

// SetEMGainMode implements Transport
func (SDK) SetEMGainMode(mode int) uint {
	return uint(C.SetEMGainMode(C.int(mode)))
}

// SetFrameTransferMode implements Transport
func (SDK) SetFrameTransferMode(mode int) uint {
	return uint(C.SetFrameTransferMode(C.int(mode)))
}

// GetNumberHSSpeeds implements Transport
func (SDK) GetNumberHSSpeeds(ch, amp int) (int, uint) {
	var n C.int
	code := uint(C.GetNumberHSSpeeds(C.int(ch), C.int(amp), &n))
	return int(n), code
}

// GetHSSpeed implements Transport
func (SDK) GetHSSpeed(ch, amp, idx int) (float64, uint) {
	var f C.float
	code := uint(C.GetHSSpeed(C.int(ch), C.int(amp), C.int(idx), &f))
	return float64(f), code
}

// SetHSSpeed implements Transport
func (SDK) SetHSSpeed(amp, idx int) uint {
	return uint(C.SetHSSpeed(C.int(amp), C.int(idx)))
}

// GetNumberVSSpeeds implements Transport
func (SDK) GetNumberVSSpeeds() (int, uint) {
	var n C.int
	code := uint(C.GetNumberVSSpeeds(&n))
	return int(n), code
}

// GetVSSpeed implements Transport
func (SDK) GetVSSpeed(idx int) (float64, uint) {
	var f C.float
	code := uint(C.GetVSSpeed(C.int(idx), &f))
	return float64(f), code
}

// SetVSSpeed implements Transport
func (SDK) SetVSSpeed(idx int) uint {
	return uint(C.SetVSSpeed(C.int(idx)))
}

// GetNumberPreAmpGains implements Transport
func (SDK) GetNumberPreAmpGains() (int, uint) {
	var n C.int
	code := uint(C.GetNumberPreAmpGains(&n))
	return int(n), code
}

// GetPreAmpGain implements Transport
func (SDK) GetPreAmpGain(idx int) (float64, uint) {
	var f C.float
	code := uint(C.GetPreAmpGain(C.int(idx), &f))
	return float64(f), code
}

// SetPreAmpGain implements Transport
func (SDK) SetPreAmpGain(idx int) uint {
	return uint(C.SetPreAmpGain(C.int(idx)))
}

// SetNumberKinetics implements Transport
func (SDK) SetNumberKinetics(n int) uint {
	return uint(C.SetNumberKinetics(C.int(n)))
}

// StartAcquisition implements Transport
func (SDK) StartAcquisition() uint {
	return uint(C.StartAcquisition())
}

// AbortAcquisition implements Transport
func (SDK) AbortAcquisition() uint {
	return uint(C.AbortAcquisition())
}

// WaitForAcquisition implements Transport
func (SDK) WaitForAcquisition() uint {
	return uint(C.WaitForAcquisition())
}

// GetStatus implements Transport
func (SDK) GetStatus() (Status, uint) {
	var stat C.int
	code := uint(C.GetStatus(&stat))
	return Status(uint(stat)), code
}

// GetAcquiredData implements Transport
func (SDK) GetAcquiredData(buf []int32) uint {
	ptr := (*C.at_32)(unsafe.Pointer(&buf[0]))
	return uint(C.GetAcquiredData(ptr, C.uint(len(buf))))
}

// GetOldestImage implements Transport
func (SDK) GetOldestImage(buf []int32) uint {
	ptr := (*C.at_32)(unsafe.Pointer(&buf[0]))
	return uint(C.GetOldestImage(ptr, C.uint(len(buf))))
}
