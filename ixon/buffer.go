package ixon

import "fmt"

// BufferSizeError is generated when the read mode and acquisition mode
// combination does not map to a known buffer shape
type BufferSizeError struct {
	ReadMode        string
	AcquisitionMode string
}

func (e BufferSizeError) Error() string {
	return fmt.Sprintf("no buffer size known for read mode %s with acquisition mode %s", e.ReadMode, e.AcquisitionMode)
}

// BufferLength computes the flat buffer length the driver will fill for a
// given readout programming.  scans is the kinetic series length and is
// only consulted in Kinetic mode.
func BufferLength(readMode, acqMode string, width, height, scans int) (int, error) {
	switch readMode {
	case "Image":
		switch acqMode {
		case "SingleScan", "RunTillAbort":
			return width * height, nil
		case "Kinetic":
			return width * height * scans, nil
		}
	case "SingleTrack", "FullVerticalBinning":
		switch acqMode {
		case "SingleScan":
			return width, nil
		case "Kinetic":
			return width * scans, nil
		}
	}
	return 0, BufferSizeError{ReadMode: readMode, AcquisitionMode: acqMode}
}

// Frame is a single readout shaped (Height, Width), row-major.  Pix values
// have the detector baseline already subtracted.
type Frame struct {
	// Width is the number of columns
	Width int

	// Height is the number of rows
	Height int

	// Pix is the row-major pixel data, len Width*Height
	Pix []int32
}

// At returns the pixel at (row, col)
func (f Frame) At(row, col int) int32 {
	return f.Pix[row*f.Width+col]
}
