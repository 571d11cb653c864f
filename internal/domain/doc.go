// Package domain contains the core entities of the scheduling engine:
// decks, notes, cards, ratings, and review records.
package domain
