// Package trace records per-round simulation statistics as CSV.
package trace

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vovakirdan/casim/internal/grid"
	"github.com/vovakirdan/casim/internal/sim"
)

// Record is one CSV row describing the state after a round.
type Record struct {
	Round      int     `csv:"round"`
	Candidates int     `csv:"candidates"`
	Changed    int     `csv:"changed"`
	Accepted   int     `csv:"accepted"`
	Deferred   int     `csv:"deferred"`
	Population int     `csv:"population"` // Cells with a non-zero state
	Mean       float64 `csv:"mean"`
	StdDev     float64 `csv:"stddev"`
	Max        int     `csv:"max"`
}

// NewRecord builds the record of a round from its result and the grid it left.
func NewRecord(res sim.StepResult, g *grid.Grid) Record {
	rec := Record{
		Round:      res.Round,
		Candidates: res.Candidates,
		Changed:    res.Changed,
		Accepted:   len(res.Accepted),
		Deferred:   res.Deferred,
	}
	values := g.Values()
	if len(values) == 0 {
		return rec
	}
	xs := make([]float64, len(values))
	for i, v := range values {
		xs[i] = float64(v)
		if v != 0 {
			rec.Population++
		}
	}
	rec.Mean, rec.StdDev = stat.PopMeanStdDev(xs, nil)
	rec.Max = int(floats.Max(xs))
	return rec
}

// Writer appends records to a CSV stream. The header is written once,
// with the first record. A nil Writer discards records.
type Writer struct {
	w             io.Writer
	headerWritten bool
	records       int
}

// NewWriter returns a writer on w, or nil if w is nil.
func NewWriter(w io.Writer) *Writer {
	if w == nil {
		return nil
	}
	return &Writer{w: w}
}

// Write appends one record.
func (tw *Writer) Write(rec Record) error {
	if tw == nil {
		return nil
	}

	records := []Record{rec}
	if !tw.headerWritten {
		if err := gocsv.Marshal(records, tw.w); err != nil {
			return fmt.Errorf("trace: writing record: %w", err)
		}
		tw.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, tw.w); err != nil {
			return fmt.Errorf("trace: writing record: %w", err)
		}
	}
	tw.records++
	return nil
}

// Observe writes the record of a round of s.
func (tw *Writer) Observe(s *sim.Simulator, res sim.StepResult) error {
	if tw == nil {
		return nil
	}
	return tw.Write(NewRecord(res, s.Grid()))
}

// Records returns the number of records written.
func (tw *Writer) Records() int {
	if tw == nil {
		return 0
	}
	return tw.records
}

// Read parses a trace written by Writer.
func Read(r io.Reader) ([]Record, error) {
	var records []Record
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("trace: reading records: %w", err)
	}
	return records, nil
}
