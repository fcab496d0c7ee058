// Package mathx provides small numeric helpers for detector data.
package mathx

// Round rounds a float to the nearest "unit" (0.1 for tenth, 0.01 for hundredth, and so on).
func Round(x, unit float64) float64 {
	return float64(int64(x/unit+0.5)) * unit
}

// MinMax returns the smallest and largest sample in one pass.  A nil or
// empty slice returns (0, 0).
func MinMax(data []int32) (int32, int32) {
	if len(data) == 0 {
		return 0, 0
	}
	min, max := data[0], data[0]
	for _, v := range data[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Mean returns the average sample value.  An empty slice returns 0.
func Mean(data []int32) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum int64
	for _, v := range data {
		sum += int64(v)
	}
	return float64(sum) / float64(len(data))
}
