// Package session assembles the ordered card queue for a review
// session: sibling suppression, state-priority interleaving, and
// bounded presentation jitter for learning cards.
package session

import (
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/danki/engine/internal/domain"
)

// DefaultMaxJitter bounds the apparent-due skew applied to learning
// cards so identical due timestamps do not cluster.
const DefaultMaxJitter = 5 * time.Minute

// Config configures a Builder. Zero values produce sensible defaults.
type Config struct {
	// Order selects how new and review cards are merged after the
	// learning bucket. Empty means domain.OrderNewFirst.
	Order domain.SessionOrder

	// MaxJitter bounds the learning-card ordering skew. Zero means
	// DefaultMaxJitter.
	MaxJitter time.Duration

	// DisableJitter turns presentation jitter off entirely, making
	// builds fully deterministic. Used by tests.
	DisableJitter bool

	// Seed seeds the jitter source. Zero means a time-based seed.
	Seed int64
}

// Builder produces ordered sessions from candidate card buckets.
// The state machine is deterministic; whatever randomness the engine
// has lives here, bounded and presentation-only.
type Builder struct {
	order     domain.SessionOrder
	maxJitter time.Duration
	rng       *rand.Rand
}

// New creates a Builder from the given config.
func New(cfg Config) *Builder {
	order := cfg.Order
	if order == "" {
		order = domain.OrderNewFirst
	}

	maxJitter := cfg.MaxJitter
	if maxJitter == 0 {
		maxJitter = DefaultMaxJitter
	}
	if cfg.DisableJitter {
		maxJitter = 0
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Builder{
		order:     order,
		maxJitter: maxJitter,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Build assembles the session from the three candidate buckets. The
// buckets must already honor due cutoffs, daily limits, and persisted
// bury marks; Build adds sibling suppression, learning-first priority,
// and the configured new/review interleave.
//
// Sibling suppression is bury-for-the-build: once any card of a note
// is selected, every other card of that note is dropped from all
// buckets for the remainder of this build. Selection runs in priority
// order (learning, then review, then new), so a time-critical learning
// card always wins over its siblings.
func (b *Builder) Build(learning, review, fresh []*domain.CardSummary) []*domain.CardSummary {
	learning = b.sortLearning(learning)

	seen := make(map[uuid.UUID]struct{})
	learning = suppressSiblings(learning, seen)
	review = suppressSiblings(review, seen)
	fresh = suppressSiblings(fresh, seen)

	out := make([]*domain.CardSummary, 0, len(learning)+len(review)+len(fresh))
	out = append(out, learning...)

	switch b.order {
	case domain.OrderAlternate:
		out = append(out, interleave(fresh, review)...)
	default: // OrderNewFirst
		out = append(out, fresh...)
		out = append(out, review...)
	}

	return out
}

// sortLearning orders learning cards by due time with a bounded random
// skew per card. The skew affects ordering only; persisted due
// timestamps are untouched.
func (b *Builder) sortLearning(cards []*domain.CardSummary) []*domain.CardSummary {
	if len(cards) < 2 {
		return cards
	}

	type keyed struct {
		card *domain.CardSummary
		key  time.Time
	}

	keys := make([]keyed, len(cards))
	for i, c := range cards {
		key := c.DueAt
		if b.maxJitter > 0 {
			key = key.Add(time.Duration(b.rng.Int63n(int64(b.maxJitter))))
		}
		keys[i] = keyed{card: c, key: key}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].key.Before(keys[j].key)
	})

	sorted := make([]*domain.CardSummary, len(cards))
	for i, k := range keys {
		sorted[i] = k.card
	}
	return sorted
}

// suppressSiblings keeps the first card of each note and records the
// note in seen so later buckets drop its siblings too.
func suppressSiblings(cards []*domain.CardSummary, seen map[uuid.UUID]struct{}) []*domain.CardSummary {
	out := cards[:0]
	for _, c := range cards {
		if _, dup := seen[c.NoteID]; dup {
			continue
		}
		seen[c.NoteID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// interleave merges two buckets one-for-one, preserving each bucket's
// internal order, starting with the first bucket. When one runs out
// the remainder of the other follows.
func interleave(a, b []*domain.CardSummary) []*domain.CardSummary {
	out := make([]*domain.CardSummary, 0, len(a)+len(b))
	for i := 0; i < len(a) || i < len(b); i++ {
		if i < len(a) {
			out = append(out, a[i])
		}
		if i < len(b) {
			out = append(out, b[i])
		}
	}
	return out
}
