// Package remap converts CT intensities between Hounsfield units and Cormack
// units.
//
// Raw CT data uses Hounsfield units based on X-ray attenuation: air is -1000,
// water is 0 and bone is roughly +1000. Most soft tissue (gray matter, white
// matter, CSF) sits in a narrow band around 0..50. MR magnitude images, by
// contrast, only have positive values and their signal spans most of the
// intensity range. The Hounsfield-to-Cormack transform clamps everything
// darker than air, shifts the result to start at zero and stretches a
// mid-range window by ScaleRatio so that tools built around MR assumptions
// see a positive, densely populated dynamic range.
//
// The forward transform is piecewise linear with three segments:
//
//	shifted < 900           slope 1
//	900 <= shifted <= 1100  slope ScaleRatio
//	shifted > 1100          slope 1, offset (ScaleRatio-1)*InterestingMidUnits
//
// where shifted = max(x, MinHounsfield) - MinHounsfield. The inverse undoes
// everything except the floor clamp.
package remap

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/constraints"
)

// Transform parameters. Both directions must use the same values for the
// round trip to hold.
const (
	// MinHounsfield is the clamp floor for raw input (air)
	MinHounsfield = -1000

	// UninterestingDarkUnits is where the boost window starts, measured
	// after shifting by MinHounsfield
	UninterestingDarkUnits = 900

	// InterestingMidUnits is the width of the boost window in shifted
	// Hounsfield units
	InterestingMidUnits = 200

	// ScaleRatio is the expansion applied inside the boost window
	ScaleRatio = 10
)

// Window boundaries expressed in both unit systems.
const (
	// WindowLowHounsfield is the first Hounsfield value inside the window
	WindowLowHounsfield = MinHounsfield + UninterestingDarkUnits

	// WindowHighHounsfield is the last Hounsfield value inside the window
	WindowHighHounsfield = WindowLowHounsfield + InterestingMidUnits

	// WindowLowCormack is WindowLowHounsfield after the forward transform
	WindowLowCormack = UninterestingDarkUnits

	// WindowHighCormack is WindowHighHounsfield after the forward transform
	WindowHighCormack = UninterestingDarkUnits + InterestingMidUnits*ScaleRatio

	// MaxBoost is the additive offset applied to every sample above the window
	MaxBoost = InterestingMidUnits * (ScaleRatio - 1)
)

// ErrUnknownDirection is returned by ParseDirection for unrecognized names.
var ErrUnknownDirection = errors.New("unknown transform direction")

// Direction selects which way a transform runs
type Direction int

const (
	// HounsfieldToCormack is the forward transform
	HounsfieldToCormack Direction = iota

	// CormackToHounsfield is the inverse transform
	CormackToHounsfield
)

// String returns the canonical name used in configuration files
func (d Direction) String() string {
	switch d {
	case HounsfieldToCormack:
		return "forward"
	case CormackToHounsfield:
		return "inverse"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Inverse returns the opposite direction
func (d Direction) Inverse() Direction {
	if d == HounsfieldToCormack {
		return CormackToHounsfield
	}
	return HounsfieldToCormack
}

// ParseDirection accepts the names written by String as well as the short
// h2c/c2h forms. Matching is case-insensitive.
func ParseDirection(name string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "forward", "h2c", "hounsfield-to-cormack":
		return HounsfieldToCormack, nil
	case "inverse", "c2h", "cormack-to-hounsfield":
		return CormackToHounsfield, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, name)
	}
}

// clamp limits v to [lo, hi]. NaN passes through.
func clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ForwardValue converts one Hounsfield sample to Cormack units.
//
// Values below MinHounsfield are clamped first, so every x < MinHounsfield
// maps to 0. NaN propagates, -Inf maps to 0 and +Inf stays +Inf.
func ForwardValue[T constraints.Float](x T) T {
	clamped := x
	if clamped < MinHounsfield {
		clamped = MinHounsfield
	}
	shifted := clamped - MinHounsfield

	boost := clamp(shifted-UninterestingDarkUnits, 0, InterestingMidUnits)
	boost *= ScaleRatio - 1

	return shifted + boost
}

// InverseValue converts one Cormack sample back to Hounsfield units.
// NaN propagates and infinities keep their sign.
func InverseValue[T constraints.Float](y T) T {
	base := y + MinHounsfield

	boost := clamp(y-UninterestingDarkUnits, 0, InterestingMidUnits*ScaleRatio)
	boost = (boost / ScaleRatio) * (ScaleRatio - 1)

	return base - boost
}

// Forward converts Hounsfield samples to Cormack units.
// The result is a new slice; samples is not modified.
func Forward[T constraints.Float](samples []T) []T {
	return Transform(samples, HounsfieldToCormack)
}

// Inverse converts Cormack samples back to Hounsfield units.
// The result is a new slice; samples is not modified.
func Inverse[T constraints.Float](samples []T) []T {
	return Transform(samples, CormackToHounsfield)
}

// Transform applies the transform selected by dir to every sample and
// returns the result in a freshly allocated slice of the same length.
func Transform[T constraints.Float](samples []T, dir Direction) []T {
	out := make([]T, len(samples))
	transformInto(out, samples, dir)
	return out
}

// transformInto writes the transform of src into dst. Each output element
// depends only on the matching input element, so dst and src may be any
// pair of equal-length ranges.
func transformInto[T constraints.Float](dst, src []T, dir Direction) {
	if dir == CormackToHounsfield {
		for i, y := range src {
			dst[i] = InverseValue(y)
		}
		return
	}
	for i, x := range src {
		dst[i] = ForwardValue(x)
	}
}

// Segment identifies which linear piece of the forward transform a
// Hounsfield sample falls on
type Segment int

const (
	// SegmentFloor holds samples below MinHounsfield, lost to the clamp
	SegmentFloor Segment = iota
	// SegmentDark holds samples between the floor and the window
	SegmentDark
	// SegmentWindow holds samples that get stretched by ScaleRatio
	SegmentWindow
	// SegmentBright holds samples above the window
	SegmentBright
)

func (s Segment) String() string {
	switch s {
	case SegmentFloor:
		return "floor"
	case SegmentDark:
		return "dark"
	case SegmentWindow:
		return "window"
	case SegmentBright:
		return "bright"
	default:
		return fmt.Sprintf("Segment(%d)", int(s))
	}
}

// SegmentOf classifies a Hounsfield sample. NaN is reported as SegmentFloor.
func SegmentOf[T constraints.Float](x T) Segment {
	switch {
	case x >= MinHounsfield && x < WindowLowHounsfield:
		return SegmentDark
	case x >= WindowLowHounsfield && x <= WindowHighHounsfield:
		return SegmentWindow
	case x > WindowHighHounsfield:
		return SegmentBright
	default:
		return SegmentFloor
	}
}

// ErrNonFinite is returned by CheckFinite when a sample is NaN or infinite.
var ErrNonFinite = errors.New("non-finite sample")

// CheckFinite reports the first NaN or infinite sample. The transforms
// themselves accept such values; callers that want to reject them check
// first.
func CheckFinite[T constraints.Float](samples []T) error {
	for i, v := range samples {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w at index %d: %v", ErrNonFinite, i, f)
		}
	}
	return nil
}
