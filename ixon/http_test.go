package ixon

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"goji.io"
)

func testServer(t *testing.T) (*Camera, *httptest.Server) {
	t.Helper()
	cam := New(NewSim(), DefaultConfig())
	if err := cam.Initialize(); err != nil {
		t.Fatalf("bootup failed: %v", err)
	}
	w := NewHTTPWrapper(cam, nil)
	mux := goji.NewMux()
	w.RT().Bind(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		cam.Shutdown()
	})
	return cam, srv
}

func TestHTTPExposureRoundTrip(t *testing.T) {
	_, srv := testServer(t)
	body := bytes.NewBufferString(`{"f64": 0.25}`)
	resp, err := http.Post(srv.URL+"/exposure-time", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set returned %d", resp.StatusCode)
	}
	resp, err = http.Get(srv.URL + "/exposure-time")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var f struct {
		F64 float64 `json:"f64"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	if f.F64 != 0.25 {
		t.Errorf("exposure %g, want 0.25", f.F64)
	}
}

func TestHTTPGainRejection(t *testing.T) {
	cam, srv := testServer(t)
	body := bytes.NewBufferString(`{"f64": 3.14}`)
	resp, err := http.Post(srv.URL+"/gain", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid gain returned %d, want 400", resp.StatusCode)
	}
	if g := cam.GetGain(); g != 5.1 {
		t.Errorf("rejected set leaked into state, gain %g", g)
	}
}

func TestHTTPGainOptions(t *testing.T) {
	_, srv := testServer(t)
	resp, err := http.Get(srv.URL + "/gain-options")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var opts []float64
	if err := json.NewDecoder(resp.Body).Decode(&opts); err != nil {
		t.Fatal(err)
	}
	if len(opts) != 3 {
		t.Errorf("got %d gain options, want 3", len(opts))
	}
}

func TestHTTPImagePNG(t *testing.T) {
	_, srv := testServer(t)
	resp, err := http.Get(srv.URL + "/image?fmt=png")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("image returned %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type %q, want image/png", ct)
	}
}

func TestHTTPImageFits(t *testing.T) {
	_, srv := testServer(t)
	resp, err := http.Get(srv.URL + "/image?fmt=fits")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("image returned %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/fits" {
		t.Errorf("content type %q, want image/fits", ct)
	}
	buf := make([]byte, 6)
	if _, err := io.ReadFull(resp.Body, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "SIMPLE" {
		t.Errorf("payload does not open with a fits header, got %q", buf)
	}
}

func TestHTTPEMGain(t *testing.T) {
	cam, srv := testServer(t)
	resp, err := http.Post(srv.URL+"/em-gain", "application/json", bytes.NewBufferString(`{"int": 50}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("valid em gain returned %d", resp.StatusCode)
	}
	resp, err = http.Post(srv.URL+"/em-gain", "application/json", bytes.NewBufferString(`{"int": 5000}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("out of range em gain returned %d, want 400", resp.StatusCode)
	}
	if g, _ := cam.GetEMGain(); g != 50 {
		t.Errorf("rejected set leaked into state, em gain %d", g)
	}
	resp, err = http.Get(srv.URL + "/em-gain-range")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var rng struct {
		Min int `json:"min"`
		Max int `json:"max"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rng); err != nil {
		t.Fatal(err)
	}
	if rng.Min != 1 || rng.Max != 300 {
		t.Errorf("range (%d, %d), want (1, 300)", rng.Min, rng.Max)
	}
}

func TestHTTPTemperatureSetpointBound(t *testing.T) {
	_, srv := testServer(t)
	body := bytes.NewBufferString(`{"int": -150}`)
	resp, err := http.Post(srv.URL+"/temperature-setpoint", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("out of range setpoint returned %d, want 400", resp.StatusCode)
	}
}

func TestHTTPVideoRequiresLive(t *testing.T) {
	_, srv := testServer(t)
	resp, err := http.Get(srv.URL + "/video")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("video without live acquisition returned %d, want 409", resp.StatusCode)
	}
}
