//go:build !andor
// +build !andor

package main

import (
	"errors"

	"github.jpl.nasa.gov/bdube/ixon/ixon"
)

func hardwareTransport() (ixon.Transport, error) {
	return nil, errors.New("this binary was built without the andor tag and cannot talk to hardware, pass -sim or rebuild with -tags andor")
}
