package ixon

import (
	"errors"
	"testing"
)

func TestBufferLength(t *testing.T) {
	cases := []struct {
		read  string
		acq   string
		scans int
		want  int
	}{
		{"Image", "SingleScan", 1, 512 * 512},
		{"Image", "RunTillAbort", 1, 512 * 512},
		{"Image", "Kinetic", 4, 512 * 512 * 4},
		{"SingleTrack", "SingleScan", 1, 512},
		{"SingleTrack", "Kinetic", 3, 512 * 3},
		{"FullVerticalBinning", "SingleScan", 1, 512},
		{"FullVerticalBinning", "Kinetic", 2, 512 * 2},
	}
	for _, tc := range cases {
		got, err := BufferLength(tc.read, tc.acq, 512, 512, tc.scans)
		if err != nil {
			t.Errorf("%s/%s: unexpected error %v", tc.read, tc.acq, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s/%s x%d: got %d, want %d", tc.read, tc.acq, tc.scans, got, tc.want)
		}
	}
}

func TestBufferLengthUnsupported(t *testing.T) {
	_, err := BufferLength("RandomTrack", "Accumulate", 512, 512, 1)
	var berr BufferSizeError
	if !errors.As(err, &berr) {
		t.Fatalf("got %v, want BufferSizeError", err)
	}
}

func TestFrameAt(t *testing.T) {
	f := Frame{Width: 3, Height: 2, Pix: []int32{0, 1, 2, 3, 4, 5}}
	if v := f.At(0, 2); v != 2 {
		t.Errorf("At(0,2) = %d, want 2", v)
	}
	if v := f.At(1, 0); v != 3 {
		t.Errorf("At(1,0) = %d, want 3", v)
	}
}
