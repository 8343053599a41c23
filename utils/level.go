// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// DBToAmplitude converts a level in dB to a linear amplitude ratio.
func DBToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}

// AmplitudeToDB converts a linear amplitude ratio to dB.
// Non-positive amplitudes return -Inf.
func AmplitudeToDB(a float64) float64 {
	if a <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(a)
}

// RMS returns the root mean square of samples, or 0 for an empty slice.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(samples)))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
