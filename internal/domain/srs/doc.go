// Package srs implements the spaced repetition scheduling algorithm:
// the card lifecycle state machine and the closed-form ease/interval
// update rule applied on each graded review.
package srs
