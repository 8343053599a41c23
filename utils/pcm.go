// SPDX-License-Identifier: EPL-2.0

package utils

// PCMScale is the magnitude of full scale for a signed PCM sample of the
// given bit depth. Unknown depths fall back to 16-bit.
func PCMScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}

// IntToFloat normalises a signed PCM sample to [-1, 1).
func IntToFloat(v int, bitDepth int) float32 {
	return float32(v) / PCMScale(bitDepth)
}

// FloatToInt clamps x to [-1, 1] and scales it to a signed PCM sample of
// the given bit depth. Positive full scale maps to max-1 to avoid overflow.
func FloatToInt(x float32, bitDepth int) int {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	scale := float64(PCMScale(bitDepth))
	if x >= 0 {
		return int(float64(x) * (scale - 1))
	}

	return int(float64(x) * scale)
}
