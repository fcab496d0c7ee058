package mathx

import "testing"

func TestRound(t *testing.T) {
	if got := Round(1.26, 0.1); got != 1.3 {
		t.Errorf("Round(1.26, 0.1) = %g, want 1.3", got)
	}
}

func TestMinMax(t *testing.T) {
	min, max := MinMax([]int32{5, -2, 9, 0})
	if min != -2 || max != 9 {
		t.Errorf("MinMax = (%d, %d), want (-2, 9)", min, max)
	}
	min, max = MinMax(nil)
	if min != 0 || max != 0 {
		t.Errorf("MinMax(nil) = (%d, %d), want (0, 0)", min, max)
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]int32{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("Mean = %g, want 2.5", got)
	}
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %g, want 0", got)
	}
}
