package ixon

import (
	"encoding/json"
	"go/types"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.jpl.nasa.gov/bdube/ixon/imgrec"
	"github.jpl.nasa.gov/bdube/ixon/server"
	"github.jpl.nasa.gov/bdube/ixon/util"
	"golang.org/x/time/rate"

	"goji.io/pat"
)

// videoFPS caps the frame pull rate of the /video stream so that a fast
// camera does not saturate the link
const videoFPS = 10

// HTTPWrapper provides an HTTP interface to a camera
type HTTPWrapper struct {
	// Camera is the camera being wrapped
	*Camera

	// Recorder saves FITS files to disk when enabled
	Recorder *imgrec.Recorder

	RouteTable server.RouteTable

	limiter *rate.Limiter
}

// NewHTTPWrapper returns a new wrapper with the route table populated
func NewHTTPWrapper(c *Camera, rec *imgrec.Recorder) *HTTPWrapper {
	h := &HTTPWrapper{Camera: c, Recorder: rec, limiter: rate.NewLimiter(rate.Limit(videoFPS), 1)}
	h.RouteTable = server.RouteTable{
		// identity
		pat.Get("/name"):   h.GetName,
		pat.Get("/serial"): h.GetSerial,
		pat.Get("/size"):   h.GetSize,

		// image capture
		pat.Get("/image"):             h.GetImage,
		pat.Get("/video"):             h.GetVideo,
		pat.Get("/ready"):             h.GetReady,
		pat.Post("/acquisition/live"): h.StartLive,
		pat.Post("/acquisition/stop"): h.StopAcq,

		// exposure manipulation
		pat.Get("/exposure-time"):  h.GetExposure,
		pat.Post("/exposure-time"): h.SetExposure,

		// gain
		pat.Get("/gain"):         h.GetGainValue,
		pat.Post("/gain"):        h.SetGainValue,
		pat.Get("/gain-options"): h.GetGainOptions,

		// emccd features
		pat.Get("/em-gain"):         h.GetEMGainValue,
		pat.Post("/em-gain"):        h.SetEMGainValue,
		pat.Get("/em-gain-range"):   h.GetEMGainRangeValues,
		pat.Post("/em-gain-mode"):   h.SetEMGainModeValue,
		pat.Get("/frame-transfer"):  h.GetFrameTransferState,
		pat.Post("/frame-transfer"): h.SetFrameTransferState,

		// readout speeds
		pat.Get("/readout-speed/horizontal-options"): h.GetHSOptions,
		pat.Get("/readout-speed/vertical-options"):   h.GetVSOptions,
		pat.Post("/readout-speed/horizontal"):        h.SetHS,
		pat.Post("/readout-speed/vertical"):          h.SetVS,

		// thermals
		pat.Get("/temperature"):           h.GetTemp,
		pat.Get("/temperature-setpoint"):  h.GetTempSetpoint,
		pat.Post("/temperature-setpoint"): h.SetTempSetpoint,
		pat.Get("/sensor-cooling"):        h.GetCoolingState,
		pat.Post("/sensor-cooling"):       h.SetCoolingState,
	}
	if rec != nil {
		imgrec.NewHTTPWrapper(rec).Inject(h)
	}
	return h
}

// RT returns the route table, implementing server.HTTPer
func (h *HTTPWrapper) RT() server.RouteTable {
	return h.RouteTable
}

// GetName returns the camera model over HTTP
func (h *HTTPWrapper) GetName(w http.ResponseWriter, r *http.Request) {
	hp := server.HumanPayload{T: types.String, String: h.Camera.Name()}
	hp.EncodeAndRespond(w, r)
}

// GetSerial returns the camera serial number over HTTP
func (h *HTTPWrapper) GetSerial(w http.ResponseWriter, r *http.Request) {
	hp := server.HumanPayload{T: types.Int, Int: h.Camera.SerialNumber()}
	hp.EncodeAndRespond(w, r)
}

// GetSize returns the image size in pixels as json {"width": w, "height": h}
func (h *HTTPWrapper) GetSize(w http.ResponseWriter, r *http.Request) {
	width, height := h.Camera.Size()
	t := struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}{width, height}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(t); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SetExposure sets the exposure time on a POST request.
// it can be provided either as a query parameter exposureTime, formatted in
// a way that is parseable by golang/time.ParseDuration, or a json payload
// with key f64, holding the exposure time in seconds.
func (h *HTTPWrapper) SetExposure(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	texp := q.Get("exposureTime")
	var d time.Duration
	var err error
	if texp == "" {
		f := server.FloatT{}
		err = json.NewDecoder(r.Body).Decode(&f)
		d = util.SecsToDuration(f.F64)
	} else {
		if util.AllElementsNumbers(texp) {
			texp = texp + "s"
		}
		d, err = time.ParseDuration(texp)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Camera.SetExposureTime(d)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetExposure gets the exposure time on a GET request
func (h *HTTPWrapper) GetExposure(w http.ResponseWriter, r *http.Request) {
	f, err := h.Camera.GetExposureTime()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	hp := server.HumanPayload{T: types.Float64, Float: f.Seconds()}
	hp.EncodeAndRespond(w, r)
}

// SetGainValue sets the preamp gain by physical value from json {"f64": value}
func (h *HTTPWrapper) SetGainValue(w http.ResponseWriter, r *http.Request) {
	f := server.FloatT{}
	err := json.NewDecoder(r.Body).Decode(&f)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Camera.SetGain(f.F64)
	if err != nil {
		if _, ok := err.(GainNotAvailableError); ok {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetGainValue returns the committed preamp gain value
func (h *HTTPWrapper) GetGainValue(w http.ResponseWriter, r *http.Request) {
	hp := server.HumanPayload{T: types.Float64, Float: h.Camera.GetGain()}
	hp.EncodeAndRespond(w, r)
}

// GetGainOptions returns the preamp gain capability table as json
func (h *HTTPWrapper) GetGainOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.Camera.GainOptions()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(opts); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SetEMGainValue programs the EM gain multiplier from json {"int": factor}
func (h *HTTPWrapper) SetEMGainValue(w http.ResponseWriter, r *http.Request) {
	i := server.IntT{}
	err := json.NewDecoder(r.Body).Decode(&i)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Camera.SetEMGain(i.Int)
	if err != nil {
		if _, ok := err.(EMGainBoundError); ok {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetEMGainValue returns the EM gain multiplier
func (h *HTTPWrapper) GetEMGainValue(w http.ResponseWriter, r *http.Request) {
	g, err := h.Camera.GetEMGain()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	hp := server.HumanPayload{T: types.Int, Int: g}
	hp.EncodeAndRespond(w, r)
}

// GetEMGainRangeValues returns the valid EM gain bounds as json
// {"min": low, "max": high}
func (h *HTTPWrapper) GetEMGainRangeValues(w http.ResponseWriter, r *http.Request) {
	low, high, err := h.Camera.EMGainRange()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	t := struct {
		Min int `json:"min"`
		Max int `json:"max"`
	}{low, high}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(t); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SetEMGainModeValue programs the EM gain mode from json {"str": mode}
func (h *HTTPWrapper) SetEMGainModeValue(w http.ResponseWriter, r *http.Request) {
	s := server.StrT{}
	err := json.NewDecoder(r.Body).Decode(&s)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Camera.SetEMGainMode(s.Str)
	if err != nil {
		if err == ErrBadEnumIndex {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetFrameTransferState returns whether frame transfer mode is engaged
func (h *HTTPWrapper) GetFrameTransferState(w http.ResponseWriter, r *http.Request) {
	hp := server.HumanPayload{T: types.Bool, Bool: h.Camera.GetFrameTransfer()}
	hp.EncodeAndRespond(w, r)
}

// SetFrameTransferState toggles frame transfer mode from json {"bool": state}
func (h *HTTPWrapper) SetFrameTransferState(w http.ResponseWriter, r *http.Request) {
	b := server.BoolT{}
	err := json.NewDecoder(r.Body).Decode(&b)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Camera.SetFrameTransfer(b.Bool)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetHSOptions returns the horizontal shift speeds in MHz as json
func (h *HTTPWrapper) GetHSOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.Camera.HSSpeedOptions()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(opts); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetVSOptions returns the vertical shift speeds in MHz as json
func (h *HTTPWrapper) GetVSOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.Camera.VSSpeedOptions()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(opts); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SetHS programs the horizontal shift speed from json {"int": index}
func (h *HTTPWrapper) SetHS(w http.ResponseWriter, r *http.Request) {
	i := server.IntT{}
	err := json.NewDecoder(r.Body).Decode(&i)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Camera.SetHSSpeedIndex(i.Int)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// SetVS programs the vertical shift speed from json {"int": index}
func (h *HTTPWrapper) SetVS(w http.ResponseWriter, r *http.Request) {
	i := server.IntT{}
	err := json.NewDecoder(r.Body).Decode(&i)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Camera.SetVSSpeedIndex(i.Int)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetTemp returns the sensor temperature in Celcius
func (h *HTTPWrapper) GetTemp(w http.ResponseWriter, r *http.Request) {
	t, err := h.Camera.GetTemperature()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	hp := server.HumanPayload{T: types.Int, Int: t}
	hp.EncodeAndRespond(w, r)
}

// GetTempSetpoint returns the committed TEC setpoint
func (h *HTTPWrapper) GetTempSetpoint(w http.ResponseWriter, r *http.Request) {
	hp := server.HumanPayload{T: types.Int, Int: h.Camera.GetTemperatureSetpoint()}
	hp.EncodeAndRespond(w, r)
}

// SetTempSetpoint programs the TEC setpoint from json {"int": celcius}
func (h *HTTPWrapper) SetTempSetpoint(w http.ResponseWriter, r *http.Request) {
	i := server.IntT{}
	err := json.NewDecoder(r.Body).Decode(&i)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Camera.SetTemperatureSetpoint(i.Int)
	if err != nil {
		if _, ok := err.(TemperatureBoundError); ok {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetCoolingState returns whether the TEC is engaged
func (h *HTTPWrapper) GetCoolingState(w http.ResponseWriter, r *http.Request) {
	hp := server.HumanPayload{T: types.Bool, Bool: h.Camera.GetCooling()}
	hp.EncodeAndRespond(w, r)
}

// SetCoolingState engages or disengages the TEC from json {"bool": state}
func (h *HTTPWrapper) SetCoolingState(w http.ResponseWriter, r *http.Request) {
	b := server.BoolT{}
	err := json.NewDecoder(r.Body).Decode(&b)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Camera.SetCooling(b.Bool)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetReady returns whether the camera is idle
func (h *HTTPWrapper) GetReady(w http.ResponseWriter, r *http.Request) {
	rdy, err := h.Camera.Ready()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	hp := server.HumanPayload{T: types.Bool, Bool: rdy}
	hp.EncodeAndRespond(w, r)
}

// StartLive begins a run-till-abort acquisition
func (h *HTTPWrapper) StartLive(w http.ResponseWriter, r *http.Request) {
	err := h.Camera.StartLiveAcquisition()
	if err != nil {
		if err == ErrAcquisitionRunning {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// StopAcq aborts a live or single acquisition
func (h *HTTPWrapper) StopAcq(w http.ResponseWriter, r *http.Request) {
	err := h.Camera.StopAcquisition()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// frameToGray converts a frame to an 8-bit grayscale image, clamping
// negative samples and scaling 16 bits down to 8
func frameToGray(f Frame) *image.Gray {
	buf := make([]byte, len(f.Pix))
	for i, v := range f.Pix {
		if v < 0 {
			v = 0
		}
		buf[i] = byte(v / 256)
	}
	return &image.Gray{Pix: buf, Stride: f.Width, Rect: image.Rect(0, 0, f.Width, f.Height)}
}

// GetImage takes a picture and returns it on a GET request.
//
// the image format may be specified in a query parameter; default to jpg
//
// the exposure time may be specified as a query parameter in any
// time-looking format, such as "25ms" or "10us".  Strictly speaking, it
// must be a valid input to golang time.ParseDuration.
//
// if no unit is appended, an s (seconds) is added.
//
// if no exposure time is provided, it is not updated and the existing
// value is used.
func (h *HTTPWrapper) GetImage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	texp := q.Get("exposureTime")
	if texp != "" {
		if util.AllElementsNumbers(texp) {
			texp = texp + "s"
		}
		T, err := time.ParseDuration(texp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = h.Camera.SetExposureTime(T)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	frame, err := h.Camera.SnapFrame()
	if err != nil {
		if err == ErrAcquisitionRunning {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	format := q.Get("fmt")
	if format == "" {
		format = "jpg"
	}
	switch format {
	case "jpg":
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
		jpeg.Encode(w, frameToGray(frame), nil)
	case "png":
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		png.Encode(w, frameToGray(frame))
	case "fits":
		var w2 io.Writer
		rec := h.Recorder
		if rec != nil && rec.Enabled && rec.Root != "" {
			w2 = io.MultiWriter(w, rec)
			defer rec.Incr()
		} else {
			w2 = w
		}
		cards := h.Camera.CollectHeaderMetadata()
		hdr := w.Header()
		hdr.Set("Content-Type", "image/fits")
		hdr.Set("Content-Disposition", "attachment; filename=image.fits")
		err = WriteFits(w2, cards, frame)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	default:
		http.Error(w, "unknown image format "+format, http.StatusBadRequest)
	}
}

// GetVideo streams frames from a live acquisition as multipart jpeg.
// The camera must be in a live acquisition (POST /acquisition/live
// first); frame pulls are rate limited.  The stream ends when the live
// acquisition stops or the client goes away.
func (h *HTTPWrapper) GetVideo(w http.ResponseWriter, r *http.Request) {
	if !h.Camera.Live() {
		http.Error(w, "no live acquisition running", http.StatusConflict)
		return
	}
	mw := multipart.NewWriter(w)
	defer mw.Close()
	w.Header().Set("Content-Type", "multipart/x-mixed-replace;boundary="+mw.Boundary())
	w.WriteHeader(http.StatusOK)
	for h.Camera.Live() {
		if err := h.limiter.Wait(r.Context()); err != nil {
			return
		}
		frame, err := h.Camera.AcquiredFrame()
		if err != nil {
			return
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": []string{"image/jpeg"}})
		if err != nil {
			return
		}
		if err := jpeg.Encode(part, frameToGray(frame), nil); err != nil {
			return
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
