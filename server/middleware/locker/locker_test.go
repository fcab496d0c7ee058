package locker

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.jpl.nasa.gov/bdube/ixon/server"

	"goji.io"
	"goji.io/pat"
)

type fakeHTTPer struct {
	rt server.RouteTable
}

func (f fakeHTTPer) RT() server.RouteTable {
	return f.rt
}

func setup() (*Locker, *httptest.Server) {
	l := New()
	h := fakeHTTPer{rt: server.RouteTable{
		pat.Get("/thing"): func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	}}
	Inject(h, l)
	mux := goji.NewMux()
	h.RT().Bind(mux)
	mux.Use(l.Check)
	return l, httptest.NewServer(mux)
}

func TestLockedRoutesReturn423(t *testing.T) {
	l, srv := setup()
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/thing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unlocked route returned %d", resp.StatusCode)
	}
	l.Lock()
	resp, err = http.Get(srv.URL + "/thing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusLocked {
		t.Errorf("locked route returned %d, want 423", resp.StatusCode)
	}
}

func TestLockRouteStaysReachable(t *testing.T) {
	l, srv := setup()
	defer srv.Close()
	l.Lock()
	resp, err := http.Post(srv.URL+"/lock", "application/json", bytes.NewBufferString(`{"bool": false}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lock route returned %d while locked", resp.StatusCode)
	}
	if l.Locked() {
		t.Error("unlock through the route did not take")
	}
}
