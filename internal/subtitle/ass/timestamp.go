package ass

import (
	"fmt"
	"math"
)

// Timestamp formats seconds as an ASS event timestamp: H:MM:SS.CC.
// Negative input clamps to zero. Hours are unbounded and unpadded.
//
// Fractional seconds round half away from zero at the centisecond
// boundary, so 1.125 becomes "0:00:01.13".
func Timestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(math.Round(seconds * 100))
	cs := total % 100
	totalSeconds := total / 100
	s := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	m := totalMinutes % 60
	h := totalMinutes / 60
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}
