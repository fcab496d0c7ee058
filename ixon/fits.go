package ixon

import (
	"fmt"
	"io"
	"time"

	"github.com/astrogo/fitsio"
)

// WrapVersion is the version of this wrapper library, stamped into FITS
// headers
const WrapVersion = 1

// CollectHeaderMetadata makes a stack of FITS cards from the session state.
// Errors in the queries are folded into the METAERR card; metadata
// gathering does not bail early.
func (c *Camera) CollectHeaderMetadata() []fitsio.Card {
	texp, err := c.GetExposureTime()
	temp, err2 := c.GetTemperature()
	if err == nil {
		err = err2
	}
	var metaerr string
	if err != nil {
		metaerr = err.Error()
	}
	c.mu.Lock()
	setpoint := c.setpoint
	cooler := c.coolerOn
	gain := c.gain
	emGain := c.emGain
	emMode := c.emGainMode
	ft := c.frameTransfer
	amp := c.amplifier
	rm := c.readMode
	shutter := c.shutter
	serial := c.serial
	w := c.width
	h := c.height
	c.mu.Unlock()

	now := time.Now()
	ts := fmt.Sprintf("%d-%02d-%02dT%02d:%02d:%02d",
		now.Year(),
		now.Month(),
		now.Day(),
		now.Hour(),
		now.Minute(),
		now.Second())

	return []fitsio.Card{
		{Name: "HDRVER", Value: "IXON-1", Comment: "header version"},
		{Name: "WRAPVER", Value: WrapVersion, Comment: "server library code version"},
		{Name: "METAERR", Value: metaerr, Comment: "error encountered gathering metadata"},
		{Name: "CAMMODL", Value: CameraName, Comment: "camera model"},
		{Name: "CAMSN", Value: serial, Comment: "camera serial number"},

		{Name: "DATE", Value: ts},

		{Name: "EXPTIME", Value: texp.Seconds(), Comment: "exposure time, seconds"},
		{Name: "GAIN", Value: gain, Comment: "preamplifier gain factor"},
		{Name: "EMGAIN", Value: emGain, Comment: "EM gain multiplier"},
		{Name: "EMMODE", Value: emMode, Comment: "EM gain mode"},
		{Name: "FRAMETR", Value: ft, Comment: "frame transfer mode on/off"},
		{Name: "AMPLIFR", Value: amp, Comment: "output amplifier"},
		{Name: "READMOD", Value: rm, Comment: "readout mode"},
		{Name: "SHUTTER", Value: shutter, Comment: "shutter state"},

		{Name: "COOLER", Value: cooler, Comment: "TEC on (true) or off"},
		{Name: "TEMPSETP", Value: setpoint, Comment: "temperature setpoint (Celcius)"},
		{Name: "TEMPER", Value: temp, Comment: "sensor temperature (Celcius)"},

		{Name: "IMGW", Value: w, Comment: "image width, px"},
		{Name: "IMGH", Value: h, Comment: "image height, px"},
		{Name: "BASELIN", Value: baseline, Comment: "dark count bias subtracted from samples"},
	}
}

// WriteFits streams a frame to w as a 32-bit FITS file
func WriteFits(w io.Writer, metadata []fitsio.Card, frame Frame) error {
	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()
	im := fitsio.NewImage(32, []int{frame.Width, frame.Height})
	defer im.Close()
	err = im.Header().Append(metadata...)
	if err != nil {
		return err
	}
	err = im.Write(frame.Pix)
	if err != nil {
		return err
	}
	return fits.Write(im)
}
