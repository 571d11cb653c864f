package srs

import (
	"time"

	"github.com/danki/engine/internal/domain"
)

// HardIntervalPolicy selects how the interval grows when a review-state
// card is rated Almost. The project's own documentation disagrees on
// which formula is canonical, so both are supported.
type HardIntervalPolicy int

const (
	// HardIntervalEaseAdjusted multiplies the prior interval by the
	// already-reduced ease factor (the default).
	HardIntervalEaseAdjusted HardIntervalPolicy = iota

	// HardIntervalFixed multiplies the prior interval by a fixed
	// factor (1.2 unless overridden) regardless of ease.
	HardIntervalFixed
)

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// EaseFloor is the hard lower bound on ease factors.
	EaseFloor float64

	// DefaultEase is assigned at graduation when a card's ease is unset.
	DefaultEase float64

	// AlmostEaseDelta is added to the ease on a review-state Almost.
	AlmostEaseDelta float64

	// MissedEaseDelta is added to the ease on a review-state Missed.
	MissedEaseDelta float64

	// FirstGraduationDays is the interval granted by a card's
	// first-ever graduation out of the learning steps.
	FirstGraduationDays float64

	// GraduationDays is the interval granted by every later graduation.
	GraduationDays float64

	// MinIntervalDays is the floor on review-state intervals.
	MinIntervalDays float64

	// MaxIntervalDays clips review-state intervals.
	MaxIntervalDays float64

	// MinRepeatStep floors the delay when a learning step is repeated
	// on an Almost rating.
	MinRepeatStep time.Duration

	// HardPolicy selects the Almost-path interval formula.
	HardPolicy HardIntervalPolicy

	// HardFixedFactor is the multiplier used by HardIntervalFixed.
	HardFixedFactor float64

	// LeechThreshold is the lapse count at which a card is flagged as a
	// leech. The scheduler only flags; it never suspends on its own.
	// Zero disables leech detection.
	LeechThreshold int
}

// DefaultParams returns the standard algorithm parameters.
func DefaultParams() Params {
	return Params{
		EaseFloor:           domain.EaseFloor,
		DefaultEase:         domain.DefaultEase,
		AlmostEaseDelta:     -0.15,
		MissedEaseDelta:     -0.8,
		FirstGraduationDays: 6,
		GraduationDays:      1,
		MinIntervalDays:     1,
		MaxIntervalDays:     36500,
		MinRepeatStep:       10 * time.Minute,
		HardPolicy:          HardIntervalEaseAdjusted,
		HardFixedFactor:     1.2,
		LeechThreshold:      8,
	}
}

// normalize fills zero-valued fields with defaults so a partially
// populated Params behaves sensibly.
func (p Params) normalize() Params {
	def := DefaultParams()
	if p.EaseFloor == 0 {
		p.EaseFloor = def.EaseFloor
	}
	if p.DefaultEase == 0 {
		p.DefaultEase = def.DefaultEase
	}
	if p.AlmostEaseDelta == 0 {
		p.AlmostEaseDelta = def.AlmostEaseDelta
	}
	if p.MissedEaseDelta == 0 {
		p.MissedEaseDelta = def.MissedEaseDelta
	}
	if p.FirstGraduationDays == 0 {
		p.FirstGraduationDays = def.FirstGraduationDays
	}
	if p.GraduationDays == 0 {
		p.GraduationDays = def.GraduationDays
	}
	if p.MinIntervalDays == 0 {
		p.MinIntervalDays = def.MinIntervalDays
	}
	if p.MaxIntervalDays == 0 {
		p.MaxIntervalDays = def.MaxIntervalDays
	}
	if p.MinRepeatStep == 0 {
		p.MinRepeatStep = def.MinRepeatStep
	}
	if p.HardFixedFactor == 0 {
		p.HardFixedFactor = def.HardFixedFactor
	}
	return p
}
