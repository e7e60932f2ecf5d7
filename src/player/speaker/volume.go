// Package speaker plays MP3 tracks on the local audio device.
package speaker

import (
	"math"
)

// volumeLevel maps a linear volume in the range 0 to 100 to the exponent of
// a base 2 volume effect. The second return value reports whether the output
// should be silent.
func volumeLevel(vol int) (float64, bool) {
	if vol <= 0 {
		return 0, true
	}
	if vol > 100 {
		vol = 100
	}
	return math.Log2(float64(vol) / 100), false
}
