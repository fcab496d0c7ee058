//go:build andor
// +build andor

package main

import "github.jpl.nasa.gov/bdube/ixon/ixon"

func hardwareTransport() (ixon.Transport, error) {
	return ixon.SDK{}, nil
}
