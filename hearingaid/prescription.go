// SPDX-License-Identifier: EPL-2.0

package hearingaid

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// JSON keys of a prescription file.
const (
	keyCrossFrequencies   = "cross_frequencies_Hz"
	keyCompressionRatios  = "compression_ratios"
	keyKneepointGains     = "kneepoint_gains_dB"
	keyKneepoints         = "kneepoints_dBSpl"
	keyLimitingThresholds = "broadband_output_limiting_thresholds_dBSpl"
)

// keys in the order of the Prescription fields.
var keys = []string{
	keyCrossFrequencies,
	keyCompressionRatios,
	keyKneepointGains,
	keyKneepoints,
	keyLimitingThresholds,
}

// Prescription is a fitting for one ear. A prescription with n crossover
// frequencies has n+1 bands, and every per-band slice has n+1 entries.
type Prescription struct {
	CrossFrequencies   []float64
	CompressionRatios  []float64
	KneepointGains     []float64
	Kneepoints         []float64
	LimitingThresholds []float64
}

// Bands is the number of frequency bands.
func (p Prescription) Bands() int { return len(p.CrossFrequencies) + 1 }

// Validate checks that every per-band slice has one entry per band and that
// compression ratios are at least 1.
func (p Prescription) Validate() error {
	bands := p.Bands()

	perBand := [][]float64{p.CompressionRatios, p.KneepointGains, p.Kneepoints, p.LimitingThresholds}
	for i, values := range perBand {
		if len(values) != bands {
			return fmt.Errorf("%w: %s has %d values for %d bands", ErrChannelMismatch, keys[i+1], len(values), bands)
		}
	}

	for i, r := range p.CompressionRatios {
		if r < 1 {
			return fmt.Errorf("%w: compression ratio %d is %v", ErrInvalidPrescription, i, r)
		}
	}

	return nil
}

// ParsePrescription reads a prescription from JSON.
func ParsePrescription(data []byte) (Prescription, error) {
	if !gjson.ValidBytes(data) {
		return Prescription{}, fmt.Errorf("%w: malformed JSON", ErrInvalidPrescription)
	}

	results := gjson.GetManyBytes(data, keys...)

	fields := make([][]float64, len(results))
	for i, r := range results {
		if !r.IsArray() {
			return Prescription{}, fmt.Errorf("%w: missing array %q", ErrInvalidPrescription, keys[i])
		}
		for _, v := range r.Array() {
			if v.Type != gjson.Number {
				return Prescription{}, fmt.Errorf("%w: non numeric value %s", ErrInvalidPrescription, v.Raw)
			}
			fields[i] = append(fields[i], v.Float())
		}
	}

	p := Prescription{
		CrossFrequencies:   fields[0],
		CompressionRatios:  fields[1],
		KneepointGains:     fields[2],
		Kneepoints:         fields[3],
		LimitingThresholds: fields[4],
	}
	if err := p.Validate(); err != nil {
		return Prescription{}, err
	}

	return p, nil
}

// LoadPrescription reads and parses the prescription file at path.
func LoadPrescription(path string) (Prescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Prescription{}, fmt.Errorf("reading prescription: %w", err)
	}

	p, err := ParsePrescription(data)
	if err != nil {
		return Prescription{}, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
