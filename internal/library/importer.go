// Package library imports note collections from JSONL files, one
// note per line. Malformed lines and duplicates are counted and
// skipped rather than aborting the import.
package library

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/danki/engine/internal/domain"
	"github.com/danki/engine/internal/engine"
)

// NoteAdder is the slice of the engine the importer needs.
type NoteAdder interface {
	AddNote(
		ctx context.Context,
		deckID uuid.UUID,
		front, back string,
		meta json.RawMessage,
	) (*domain.Note, []*domain.Card, error)
}

// line is one JSONL record.
type line struct {
	Front string          `json:"front"`
	Back  string          `json:"back"`
	Meta  json.RawMessage `json:"meta,omitempty"`
}

// Report summarizes an import run.
type Report struct {
	// Added counts notes created.
	Added int `json:"added"`

	// Duplicates counts lines whose (front, back) already existed in
	// the deck.
	Duplicates int `json:"duplicates"`

	// Malformed counts lines that could not be parsed or validated.
	Malformed int `json:"malformed"`
}

// Importer loads JSONL note files into a deck.
type Importer struct {
	engine NoteAdder
	logger *slog.Logger
}

// New creates an Importer. If logger is nil, a default logger is used.
func New(eng NoteAdder, log *slog.Logger) *Importer {
	if eng == nil {
		panic("engine cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Importer{
		engine: eng,
		logger: log.With(slog.String("component", "library_importer")),
	}
}

// Import reads JSONL records from r and adds each as a note in the
// given deck. Blank lines are ignored; malformed lines and duplicates
// are counted in the report and skipped. Any other error aborts the
// import with the partial report.
func (im *Importer) Import(ctx context.Context, deckID uuid.UUID, r io.Reader) (*Report, error) {
	report := &Report{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var rec line
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			report.Malformed++
			im.logger.Warn("skipping malformed line",
				slog.Int("line", lineNo),
				slog.String("error", err.Error()))
			continue
		}

		_, _, err := im.engine.AddNote(ctx, deckID, rec.Front, rec.Back, rec.Meta)
		switch {
		case err == nil:
			report.Added++
		case errors.Is(err, engine.ErrDuplicateNote):
			report.Duplicates++
		case domain.IsValidationError(err):
			report.Malformed++
			im.logger.Warn("skipping invalid line",
				slog.Int("line", lineNo),
				slog.String("error", err.Error()))
		default:
			return report, fmt.Errorf("import line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("read import stream: %w", err)
	}

	im.logger.Info("import finished",
		slog.String("deck_id", deckID.String()),
		slog.Int("added", report.Added),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("malformed", report.Malformed))
	return report, nil
}
