package util_test

import (
	"fmt"
	"testing"
	"time"

	"github.jpl.nasa.gov/bdube/ixon/util"
)

func ExampleFloatSliceToCSV() {
	fmt.Println(util.FloatSliceToCSV([]float64{1, 2.5, 3}))
	// Output: 1,2.5,3
}

func TestUintSliceContains(t *testing.T) {
	slice := []uint{20002, 20073}
	if !util.UintSliceContains(slice, 20002) {
		t.Errorf("expected %v to contain 20002", slice)
	}
	if util.UintSliceContains(slice, 20075) {
		t.Errorf("expected %v not to contain 20075", slice)
	}
}

func TestSecsToDuration(t *testing.T) {
	var dur time.Duration = 123456789
	secs := dur.Seconds()
	out := util.SecsToDuration(secs)
	if out != dur {
		t.Errorf("expected SecsToDuration to round trip, output %v != expected %v", out, dur)
	}
}

func TestAllElementsNumbers(t *testing.T) {
	if !util.AllElementsNumbers("0.17") {
		t.Error("expected 0.17 to be all numbers")
	}
	if util.AllElementsNumbers("250ms") {
		t.Error("expected 250ms not to be all numbers")
	}
}
