// ixontest is a bench checkout tool for Andor iXon cameras.  It scans the
// USB bus for Andor hardware, boots the camera, waits for the TEC to pull
// the sensor down, takes a frame, and writes it to disk as FITS.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.jpl.nasa.gov/bdube/ixon/ixon"
	"github.jpl.nasa.gov/bdube/ixon/mathx"

	"github.com/google/gousb"
	"github.com/theckman/yacspin"
)

// AndorVID is the Andor Technology USB vendor ID
const AndorVID = 0x136e

// settleTolerance is how close to the setpoint the sensor must read, in
// Celcius, before the checkout frame is taken
const settleTolerance = 3

func scanUSB() {
	ctx := gousb.NewContext()
	defer ctx.Close()
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(AndorVID)
	})
	for _, d := range devs {
		defer d.Close()
	}
	if err != nil {
		log.Printf("usb scan: %v", err)
	}
	if len(devs) == 0 {
		log.Println("no Andor hardware on the USB bus, the vendor library may still find a PCI camera")
		return
	}
	for _, d := range devs {
		fmt.Printf("found Andor device %s on bus %d addr %d\n", d.Desc.Product, d.Desc.Bus, d.Desc.Address)
	}
}

func spinner(suffix string) (*yacspin.Spinner, error) {
	cfg := yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[59],
		Suffix:          " " + suffix,
		SuffixAutoColon: true,
		StopCharacter:   "✓",
		StopColors:      []string{"fgGreen"},
	}
	return yacspin.New(cfg)
}

func cooldown(cam *ixon.Camera) error {
	spin, err := spinner("cooling")
	if err != nil {
		return err
	}
	setpoint := cam.GetTemperatureSetpoint()
	spin.Start()
	defer spin.Stop()
	for {
		t, err := cam.GetTemperature()
		if err != nil {
			return err
		}
		delta := t - setpoint
		if delta < 0 {
			delta = -delta
		}
		if delta <= settleTolerance {
			spin.Message(fmt.Sprintf("settled at %d C", t))
			return nil
		}
		spin.Message(fmt.Sprintf("sensor at %d C, setpoint %d C", t, setpoint))
		time.Sleep(5 * time.Second)
	}
}

func main() {
	var (
		sim      = flag.Bool("sim", false, "run against a simulated camera instead of hardware")
		texp     = flag.Duration("exposure", 170*time.Millisecond, "exposure time for the checkout frame")
		setpoint = flag.Int("temp", 0, "TEC setpoint in Celcius")
		noCool   = flag.Bool("nocool", false, "skip the TEC and take the frame warm")
		fn       = flag.String("o", "checkout.fits", "output file name")
	)
	flag.Parse()

	var t ixon.Transport
	if *sim {
		t = ixon.NewSim()
	} else {
		scanUSB()
		var err error
		t, err = hardwareTransport()
		if err != nil {
			log.Fatal(err)
		}
	}

	cfg := ixon.DefaultConfig()
	cfg.Exposure = texp.Seconds()
	cfg.Temperature = *setpoint
	cfg.CoolerOn = !*noCool
	cam := ixon.New(t, cfg)
	err := cam.Initialize()
	if err != nil {
		log.Fatal(err)
	}
	defer cam.Shutdown()
	fmt.Printf("connected to %s s/n %d\n", cam.Name(), cam.SerialNumber())
	w, h := cam.Size()
	fmt.Printf("detector %d x %d\n", w, h)

	gains, err := cam.GainOptions()
	if err == nil {
		fmt.Println("preamp gains:", gains)
	}
	hss, err := cam.HSSpeedOptions()
	if err == nil {
		fmt.Println("horizontal shift speeds, MHz:", hss)
	}
	vss, err := cam.VSSpeedOptions()
	if err == nil {
		fmt.Println("vertical shift speeds, MHz:", vss)
	}

	if !*noCool {
		if err := cooldown(cam); err != nil {
			log.Fatal(err)
		}
	}

	spin, err := spinner("acquiring")
	if err != nil {
		log.Fatal(err)
	}
	spin.Start()
	frame, err := cam.SnapFrame()
	spin.Stop()
	if err != nil {
		log.Fatal(err)
	}

	min, max := mathx.MinMax(frame.Pix)
	mean := mathx.Round(mathx.Mean(frame.Pix), 0.01)
	fmt.Printf("frame min %d max %d mean %g\n", min, max, mean)

	f, err := os.Create(*fn)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = ixon.WriteFits(f, cam.CollectHeaderMetadata(), frame)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("wrote", *fn)
}
