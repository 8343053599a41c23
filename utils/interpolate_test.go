// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
		tolerance      float32
	}{
		{"start returns y1", 0, 1, 2, 3, 0, 1, 0.0001},
		{"end returns y2", 0, 1, 2, 3, 1, 2, 0.0001},
		{"linear midpoint", 0, 1, 2, 3, 0.5, 1.5, 0.0001},
		{"linear quarter", 1, 2, 3, 4, 0.25, 2.25, 0.0001},
		{"silence", 0, 0, 0, 0, 0.7, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if diff := float32(math.Abs(float64(got - tt.want))); diff > tt.tolerance {
				t.Errorf("CubicInterpolate() = %v, want %v (diff %v)", got, tt.want, diff)
			}
		})
	}
}

func TestCubicInterpolate_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	allocs := testing.AllocsPerRun(1000, func() {
		_ = CubicInterpolate(0.5, 1.0, 0.8, 0.3, 0.5)
	})

	if allocs > 0 {
		t.Errorf("CubicInterpolate allocated %v times, want 0", allocs)
	}
}

func BenchmarkCubicInterpolate(b *testing.B) {
	samples := make([]float32, 8000)

	b.ReportAllocs()

	for b.Loop() {
		for j := range samples {
			samples[j] = CubicInterpolate(0.1, 0.5, 0.3, -0.2, float32(j%100)/100.0)
		}
	}
}
