package srs

import (
	"time"

	"github.com/danki/engine/internal/domain"
)

// secondsPerDay converts fractional day intervals into due offsets.
// Intervals are stored as real numbers, so sub-day precision survives
// even though user-facing effects are day-granular.
const secondsPerDay = 86400

// adjustEase applies a delta to an ease factor, clamped at the floor.
// The floor is a hard bound and is never bypassed.
func adjustEase(current, delta float64, p *Params) float64 {
	ease := current + delta
	if ease < p.EaseFloor {
		ease = p.EaseFloor
	}
	return ease
}

// clampInterval bounds a review-state interval to [MinIntervalDays, MaxIntervalDays].
func clampInterval(days float64, p *Params) float64 {
	if days < p.MinIntervalDays {
		days = p.MinIntervalDays
	}
	if days > p.MaxIntervalDays {
		days = p.MaxIntervalDays
	}
	return days
}

// dueAfterDays computes a due instant from a fractional day interval.
func dueAfterDays(now time.Time, days float64) time.Time {
	return now.Add(time.Duration(days * secondsPerDay * float64(time.Second)))
}

// stepAt returns the learning step for an index, treating indexes past
// the end of the configured steps as the last step. This keeps cards
// sane when a deck's steps are shortened mid-flight.
func stepAt(steps []time.Duration, index int) (time.Duration, bool) {
	last := index >= len(steps)-1
	if index >= len(steps) {
		index = len(steps) - 1
	}
	return steps[index], last
}

// nextCard computes the card snapshot that results from grading the
// given card. It is pure: no I/O, no randomness, and the input card is
// never mutated. The second return value reports whether this
// transition recorded a lapse.
func nextCard(
	card *domain.Card,
	rating domain.Rating,
	steps []time.Duration,
	now time.Time,
	p *Params,
) (*domain.Card, bool) {
	next := card.Clone()
	reviewedAt := now.UTC()
	next.LastReviewAt = &reviewedAt

	switch card.State {
	case domain.StateNew:
		// Any rating moves a new card into the first learning step.
		next.State = domain.StateLearning
		next.StepIndex = 0
		next.DueAt = now.Add(steps[0])
		return next, false

	case domain.StateLearning, domain.StateRelearning:
		return nextLearning(card, next, rating, steps, now, p)

	case domain.StateReview:
		return nextReview(next, rating, steps, now, p)
	}

	// Suspended and unknown states are rejected by the service before
	// this point.
	return next, false
}

// nextLearning handles transitions for cards inside the learning steps,
// whether they arrived there as new material or after a lapse.
func nextLearning(
	card, next *domain.Card,
	rating domain.Rating,
	steps []time.Duration,
	now time.Time,
	p *Params,
) (*domain.Card, bool) {
	step, last := stepAt(steps, card.StepIndex)

	switch rating {
	case domain.RatingGotIt:
		if !last {
			next.StepIndex = card.StepIndex + 1
			delay, _ := stepAt(steps, next.StepIndex)
			next.DueAt = now.Add(delay)
			return next, false
		}
		return graduate(next, now, p), false

	case domain.RatingAlmost:
		// Repeat the current step; very short steps are floored so the
		// card does not reappear immediately.
		delay := step
		if delay < p.MinRepeatStep {
			delay = p.MinRepeatStep
		}
		next.DueAt = now.Add(delay)
		return next, false

	default: // RatingMissed
		next.StepIndex = 0
		next.DueAt = now.Add(steps[0])
		if card.State == domain.StateRelearning {
			next.Lapses = card.Lapses + 1
			return next, true
		}
		return next, false
	}
}

// graduate promotes a card out of the learning steps into review state.
// A card's first-ever graduation earns the long first interval; every
// later graduation (after a lapse) restarts at the short one. "First
// ever" is exactly IntervalDays == 0, which no other path can restore.
func graduate(next *domain.Card, now time.Time, p *Params) *domain.Card {
	interval := p.GraduationDays
	if next.IntervalDays == 0 {
		interval = p.FirstGraduationDays
	}

	next.State = domain.StateReview
	next.StepIndex = 0
	next.IntervalDays = interval
	if next.Ease < p.EaseFloor {
		next.Ease = p.DefaultEase
	}
	next.DueAt = dueAfterDays(now, interval)
	return next
}

// nextReview handles transitions for long-interval cards.
func nextReview(
	next *domain.Card,
	rating domain.Rating,
	steps []time.Duration,
	now time.Time,
	p *Params,
) (*domain.Card, bool) {
	switch rating {
	case domain.RatingGotIt:
		// Ease unchanged; interval compounds by the ease factor.
		next.IntervalDays = clampInterval(next.IntervalDays*next.Ease, p)
		next.DueAt = dueAfterDays(now, next.IntervalDays)
		return next, false

	case domain.RatingAlmost:
		next.Ease = adjustEase(next.Ease, p.AlmostEaseDelta, p)
		factor := next.Ease
		if p.HardPolicy == HardIntervalFixed {
			factor = p.HardFixedFactor
		}
		next.IntervalDays = clampInterval(next.IntervalDays*factor, p)
		next.DueAt = dueAfterDays(now, next.IntervalDays)
		return next, false

	default: // RatingMissed
		// Lapse: demote to relearning. The prior interval is kept on
		// the card until re-graduation rewrites it, both for the
		// ledger and so IntervalDays keeps marking the card as
		// having graduated before.
		next.Ease = adjustEase(next.Ease, p.MissedEaseDelta, p)
		next.Lapses++
		next.State = domain.StateRelearning
		next.StepIndex = 0
		next.DueAt = now.Add(steps[0])
		return next, true
	}
}
