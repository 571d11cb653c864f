package domain

import "fmt"

// Rating grades a single review answer on a three-point scale. There
// is no fourth "Easy" grade.
type Rating int

const (
	// RatingMissed means the answer was not recalled.
	RatingMissed Rating = 0

	// RatingAlmost means the answer was recalled with difficulty.
	RatingAlmost Rating = 1

	// RatingGotIt means the answer was recalled correctly.
	RatingGotIt Rating = 2
)

// Valid reports whether r is one of the three defined ratings.
func (r Rating) Valid() bool {
	return r >= RatingMissed && r <= RatingGotIt
}

// ParseRating maps a rating name to its value.
func ParseRating(s string) (Rating, error) {
	switch s {
	case "missed":
		return RatingMissed, nil
	case "almost":
		return RatingAlmost, nil
	case "got_it":
		return RatingGotIt, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
	}
}

// String returns the rating name ("missed", "almost", "got_it").
// Invalid values render as "Rating(n)".
func (r Rating) String() string {
	switch r {
	case RatingMissed:
		return "missed"
	case RatingAlmost:
		return "almost"
	case RatingGotIt:
		return "got_it"
	default:
		return fmt.Sprintf("Rating(%d)", int(r))
	}
}
