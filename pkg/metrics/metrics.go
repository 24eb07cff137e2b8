// Package metrics measures how faithfully a volume survives the
// Hounsfield/Cormack round trip and how the forward transform redistributes
// its dynamic range.
package metrics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"ctcormack/pkg/remap"
)

// DefaultTolerance is the relative error under which a recovered sample
// counts as exact
const DefaultTolerance = 1e-6

// entropyBins is the histogram resolution used for Shannon entropy
const entropyBins = 256

// ErrLengthMismatch is returned when two sample arrays being compared differ
// in length.
var ErrLengthMismatch = errors.New("sample length mismatch")

// RoundTrip holds the fidelity metrics of an inverse(forward(x)) pass.
// Samples below the clamp floor are compared against MinHounsfield, since
// that is the only value they can come back as.
type RoundTrip struct {
	// RMSE is the root mean square error against the expected values
	RMSE float64

	// MaxAbsError is the largest absolute deviation of any sample
	MaxAbsError float64

	// SSIM is the structural similarity between expected and recovered
	// samples, with the dynamic range taken from the expected values
	SSIM float64

	// Recovered is the fraction of samples at or above the floor that came
	// back within tolerance
	Recovered float64

	// Clamped counts original samples below MinHounsfield
	Clamped int
}

// Summary describes the distribution of a sample array
type Summary struct {
	Count     int
	NonFinite int

	Min, Max     float64
	Mean, StdDev float64

	// Entropy is the Shannon entropy in bits of a 256-bin histogram
	Entropy float64

	// Segments counts samples per forward-transform segment, treating the
	// input as Hounsfield units
	Segments [4]int
}

// Float64s converts samples to float64 for use with gonum
func Float64s[T constraints.Float](samples []T) []float64 {
	out := make([]float64, len(samples))
	for i, v := range samples {
		out[i] = float64(v)
	}
	return out
}

// CompareRoundTrip computes fidelity metrics for recovered against original.
// tolerance <= 0 uses DefaultTolerance.
func CompareRoundTrip(original, recovered []float64, tolerance float64) (RoundTrip, error) {
	var m RoundTrip
	if len(original) != len(recovered) {
		return m, fmt.Errorf("%w: original %d, recovered %d", ErrLengthMismatch, len(original), len(recovered))
	}
	if len(original) == 0 {
		m.Recovered = 1
		m.SSIM = 1
		return m, nil
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	// The floor clamp is lossy, so sub-floor samples are expected at the floor
	expected := make([]float64, len(original))
	eligible, exact := 0, 0
	for i, v := range original {
		if v < remap.MinHounsfield {
			expected[i] = remap.MinHounsfield
			m.Clamped++
			continue
		}
		expected[i] = v
		eligible++
		if math.Abs(recovered[i]-v) <= tolerance*math.Max(1, math.Abs(v)) {
			exact++
		}
	}

	m.RMSE = floats.Distance(expected, recovered, 2) / math.Sqrt(float64(len(expected)))
	m.MaxAbsError = floats.Distance(expected, recovered, math.Inf(1))
	m.SSIM = calculateSSIM(expected, recovered)
	if eligible > 0 {
		m.Recovered = float64(exact) / float64(eligible)
	} else {
		m.Recovered = 1
	}

	return m, nil
}

// calculateSSIM computes the global Structural Similarity Index
func calculateSSIM(original, reconstructed []float64) float64 {
	const k1 = 0.01
	const k2 = 0.03

	// Dynamic range of the reference signal
	L := floats.Max(original) - floats.Min(original)
	if L <= 0 {
		L = 1
	}
	c1 := (k1 * L) * (k1 * L)
	c2 := (k2 * L) * (k2 * L)

	muX := stat.Mean(original, nil)
	muY := stat.Mean(reconstructed, nil)

	var sigmaX, sigmaY, sigmaXY float64
	if len(original) > 1 {
		sigmaX = stat.Variance(original, nil)
		sigmaY = stat.Variance(reconstructed, nil)
		sigmaXY = stat.Covariance(original, reconstructed, nil)
	}

	num := (2*muX*muY + c1) * (2*sigmaXY + c2)
	den := (muX*muX + muY*muY + c1) * (sigmaX + sigmaY + c2)

	if den > 0 {
		return num / den
	}
	return 0
}

// Summarize computes distribution statistics over the finite samples.
// NaN and infinite values are only counted in NonFinite.
func Summarize(samples []float64) Summary {
	s := Summary{Count: len(samples)}

	finite := make([]float64, 0, len(samples))
	for _, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			s.NonFinite++
			continue
		}
		finite = append(finite, v)
		s.Segments[remap.SegmentOf(v)]++
	}
	if len(finite) == 0 {
		return s
	}

	s.Min = floats.Min(finite)
	s.Max = floats.Max(finite)
	if len(finite) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(finite, nil)
	} else {
		s.Mean = finite[0]
	}
	s.Entropy = calculateEntropy(finite, s.Min, s.Max)

	return s
}

// calculateEntropy computes the Shannon entropy of data in bits.
// data must be finite and lie within [min, max].
func calculateEntropy(data []float64, min, max float64) float64 {
	// If all values are the same, entropy is 0
	if max <= min {
		return 0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	// stat.Histogram needs the last divider strictly above the maximum, and
	// Span does not pin its last element to the upper bound
	dividers := floats.Span(make([]float64, entropyBins+1), min, max)
	dividers[len(dividers)-1] = math.Inf(1)
	hist := stat.Histogram(nil, dividers, sorted, nil)

	floats.Scale(1/float64(len(sorted)), hist)
	return stat.Entropy(hist) / math.Ln2
}

// WindowContrast reports how much of the value range the boost window
// occupies after the forward transform relative to before it. hounsfield
// and cormack must be the same samples in both unit systems. The result is
// 0 when fewer than two samples fall in the window or either range is flat.
func WindowContrast(hounsfield, cormack []float64) (float64, error) {
	if len(hounsfield) != len(cormack) {
		return 0, fmt.Errorf("%w: hounsfield %d, cormack %d", ErrLengthMismatch, len(hounsfield), len(cormack))
	}

	var inWindow, outWindow, inAll, outAll []float64
	for i, v := range hounsfield {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		inAll = append(inAll, v)
		outAll = append(outAll, cormack[i])
		if remap.SegmentOf(v) == remap.SegmentWindow {
			inWindow = append(inWindow, v)
			outWindow = append(outWindow, cormack[i])
		}
	}
	if len(inWindow) < 2 {
		return 0, nil
	}

	inSpan := floats.Max(inAll) - floats.Min(inAll)
	outSpan := floats.Max(outAll) - floats.Min(outAll)
	inWin := floats.Max(inWindow) - floats.Min(inWindow)
	outWin := floats.Max(outWindow) - floats.Min(outWindow)
	if inSpan <= 0 || outSpan <= 0 || inWin <= 0 {
		return 0, nil
	}

	return (outWin / outSpan) / (inWin / inSpan), nil
}
