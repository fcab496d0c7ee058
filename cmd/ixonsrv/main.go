// ixonsrv exposes control of Andor iXon EMCCD cameras over HTTP.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.jpl.nasa.gov/bdube/ixon/imgrec"
	"github.jpl.nasa.gov/bdube/ixon/ixon"
	"github.jpl.nasa.gov/bdube/ixon/server"
	"github.jpl.nasa.gov/bdube/ixon/server/middleware/locker"

	"github.com/cenkalti/backoff"
	"github.com/go-chi/chi"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	"goji.io"

	yml "gopkg.in/yaml.v2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "ixon-http.yml"
	k              = koanf.New(".")
)

// settleTolerance is how close to the setpoint the sensor must read, in
// Celcius, before the server begins taking requests
const settleTolerance = 3

type recorder struct {
	// Root is the root folder to write to
	Root string `yaml:"Root"`

	// Prefix is the filename prefix to use
	Prefix string `yaml:"Prefix"`
}

type config struct {
	Addr          string      `yaml:"Addr"`
	Root          string      `yaml:"Root"`
	Mock          bool        `yaml:"Mock"`
	WaitForCooler bool        `yaml:"WaitForCooler"`
	Recorder      recorder    `yaml:"Recorder"`
	Camera        ixon.Config `yaml:"Camera"`
}

func setupconfig() {
	k.Load(structs.Provider(config{
		Addr:          ":8000",
		Root:          "/",
		Mock:          false,
		WaitForCooler: false,
		Recorder:      recorder{},
		Camera:        ixon.DefaultConfig()}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `ixonsrv exposes control of Andor iXon EMCCD cameras over HTTP
This enables a server-client architecture,
and the clients can leverage the excellent HTTP
libraries for any programming language,
instead of custom socket logic.

Usage:
	ixonsrv <command>

Commands:
	run
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `ixonsrv is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

When no configuration is provided, the defaults are used.  Keys are not case-sensitive.
The command mkconf generates the configuration file with the default values.
There is no need to do this unless you want to start from the prepopulated defaults when making
a config file.

The Camera section holds the bootup parameters.  If for some reason there is
an error during bootup, it may be that a feature is not supported by the
camera; adjust the offending parameter.

Mock: true runs the server against a software simulation of the camera, with
no hardware or vendor library needed.  Use it to develop clients on a machine
without a camera.

WaitForCooler: true holds the server's startup until the sensor has settled
near the temperature setpoint.  Startup may take several minutes with this on.

If the files and folders created do not have the permissions you want on linux,
your umask is likely to blame  ixonsrv makes them with permission 666, but your
umask is probably the default of 0022 which knocks them down to 444.  Set your
umask to 0000 before running ixonsrv to solve this.`
	fmt.Println(str)
}

func mkconf() {
	c := config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	err = yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("ixonsrv version %v\n", Version)
}

// waitForSettle polls the sensor temperature until it reads within
// settleTolerance of the setpoint, backing off between polls
func waitForSettle(cam *ixon.Camera) error {
	setpoint := cam.GetTemperatureSetpoint()
	poll := func() error {
		t, err := cam.GetTemperature()
		if err != nil {
			return backoff.Permanent(err)
		}
		delta := t - setpoint
		if delta < 0 {
			delta = -delta
		}
		if delta > settleTolerance {
			log.Printf("sensor at %d C, setpoint %d C, waiting", t, setpoint)
			return fmt.Errorf("sensor not settled")
		}
		return nil
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 15 * time.Minute
	return backoff.Retry(poll, b)
}

func run() {
	cfg := config{}
	k.Unmarshal("", &cfg)
	var t ixon.Transport
	if cfg.Mock {
		log.Println("Mock: true, running against a simulated camera")
		t = ixon.NewSim()
	} else {
		var err error
		t, err = hardwareTransport()
		if err != nil {
			log.Fatal(err)
		}
		log.Println("initializing the vendor library, andor's code can deadlock here.")
		log.Println("Power cycle the camera if this is stuck.")
	}
	cam := ixon.New(t, cfg.Camera)
	err := cam.Initialize()
	if err != nil {
		log.Fatal(err)
	}
	defer cam.Shutdown()
	log.Printf("connected to %s s/n %d", cam.Name(), cam.SerialNumber())

	if cfg.WaitForCooler && cfg.Camera.CoolerOn {
		log.Println("waiting for the sensor to settle at the setpoint")
		if err := waitForSettle(cam); err != nil {
			log.Fatal(err)
		}
		log.Println("sensor settled")
	}

	args := cfg.Recorder
	r := &imgrec.Recorder{Root: args.Root, Prefix: args.Prefix}
	w := ixon.NewHTTPWrapper(cam, r)
	lock := locker.New()
	locker.Inject(w, lock)

	// clean up the submux string
	hndlrS := server.SubMuxSanitize(cfg.Root)
	mux := goji.NewMux()
	w.RT().Bind(mux)
	mux.Use(lock.Check)
	rootRouter := chi.NewRouter()
	if hndlrS == "" {
		rootRouter.Mount("/", mux)
	} else {
		rootRouter.Mount(hndlrS, http.StripPrefix(hndlrS, mux))
	}
	addr := cfg.Addr + cfg.Root
	log.Println("now listening for requests at ", addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, rootRouter))
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
