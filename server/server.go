// Package server contains the route table and payload plumbing shared by
// the HTTP wrappers in this repository.
package server

import (
	"encoding/json"
	"go/types"
	"log"
	"net/http"
	"strings"

	"goji.io"
)

// RouteTable maps goji patterns to handlers
type RouteTable map[goji.Pattern]http.HandlerFunc

// Bind attaches each route in the table to a mux
func (rt RouteTable) Bind(m *goji.Mux) {
	for p, h := range rt {
		m.Handle(p, h)
	}
}

// Endpoints lists the patterns in the table
func (rt RouteTable) Endpoints() []string {
	out := make([]string, 0, len(rt))
	for p := range rt {
		if s, ok := p.(interface{ String() string }); ok {
			out = append(out, s.String())
		}
	}
	return out
}

// HTTPer is a type which exposes an HTTP route table
type HTTPer interface {
	// RT returns the route table of the object
	RT() RouteTable
}

// SubMuxSanitize ensures a mount point begins with a slash and does not
// end with one, so it can be prefixed to routes
func SubMuxSanitize(stem string) string {
	if !strings.HasPrefix(stem, "/") {
		stem = "/" + stem
	}
	return strings.TrimSuffix(stem, "/")
}

// FloatT is a struct with a single field F64, used for json responses
type FloatT struct {
	F64 float64 `json:"f64"`
}

// IntT is a struct with a single field Int, used for json responses
type IntT struct {
	Int int `json:"int"`
}

// StrT is a struct with a single field Str, used for json responses
type StrT struct {
	Str string `json:"str"`
}

// BoolT is a struct with a single field Bool, used for json responses
type BoolT struct {
	Bool bool `json:"bool"`
}

// HumanPayload is a struct containing the basic types and their values,
// used to reply to clients in a homogeneous way
type HumanPayload struct {
	// T holds the type of the data
	T types.BasicKind

	// Bool holds a boolean
	Bool bool

	// Int holds an int
	Int int

	// Float holds a float
	Float float64

	// Str holds a string
	String string
}

// EncodeAndRespond writes the payload to w as json
func (hp HumanPayload) EncodeAndRespond(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var err error
	switch hp.T {
	case types.Bool:
		err = json.NewEncoder(w).Encode(BoolT{Bool: hp.Bool})
	case types.Int:
		err = json.NewEncoder(w).Encode(IntT{Int: hp.Int})
	case types.Float64:
		err = json.NewEncoder(w).Encode(FloatT{F64: hp.Float})
	case types.String:
		err = json.NewEncoder(w).Encode(StrT{Str: hp.String})
	default:
		http.Error(w, "unknown payload type", http.StatusInternalServerError)
		return
	}
	if err != nil {
		log.Printf("error encoding response: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
