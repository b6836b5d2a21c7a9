// Package risk computes the placeholder trauma mortality score shown on the
// assessment form. The score is partly random by construction and is not a
// clinical model.
package risk

import (
	"fmt"

	"github.com/Skufu/saviour/internal/patient"
)

const (
	minBaseRisk = 0.1
	maxBaseRisk = 0.9

	gcsWeight  = 0.4
	bpWeight   = 0.2
	normalizer = 1.6
)

// RandomSource yields uniform values in [0, 1). *rand.Rand from math/rand and
// math/rand/v2 both satisfy it.
type RandomSource interface {
	Float64() float64
}

// RandomFunc adapts a plain function, such as rand.Float64, to RandomSource.
type RandomFunc func() float64

func (f RandomFunc) Float64() float64 { return f() }

// Fixed always returns the same draw. Useful for reproducing a score.
type Fixed float64

func (f Fixed) Float64() float64 { return float64(f) }

type Result struct {
	BaseRisk      float64 `json:"baseRisk"`
	GCSFactor     float64 `json:"gcsFactor"`
	BPFactor      float64 `json:"bpFactor"`
	MortalityRisk float64 `json:"mortalityRisk"`
}

// SurvivalProbability is the complement of the mortality risk.
func (r Result) SurvivalProbability() float64 {
	return 1 - r.MortalityRisk
}

// Display formats the risk the way the result panel shows it.
func (r Result) Display() string {
	return fmt.Sprintf("Mortality Risk: %.2f%%", r.MortalityRisk*100)
}

// Estimate draws a base risk in [0.1, 0.9] from src and scores in with it.
func Estimate(in patient.Input, src RandomSource) float64 {
	return Evaluate(in, src).MortalityRisk
}

// Evaluate is Estimate with the intermediate factors kept.
func Evaluate(in patient.Input, src RandomSource) Result {
	base := minBaseRisk + (maxBaseRisk-minBaseRisk)*src.Float64()
	return Score(in, base)
}

// Score applies the GCS and systolic BP adjustments to a known base risk.
func Score(in patient.Input, baseRisk float64) Result {
	gcs := float64(15-in.GCS) / 15
	bp := bpFactor(in.SystolicBP)

	final := (baseRisk + gcs*gcsWeight + bp*bpWeight) / normalizer

	return Result{
		BaseRisk:      baseRisk,
		GCSFactor:     gcs,
		BPFactor:      bp,
		MortalityRisk: clamp(final),
	}
}

func bpFactor(systolic int) float64 {
	switch {
	case systolic < 90:
		return 1
	case systolic < 120:
		return 0.5
	default:
		return 0.3
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
