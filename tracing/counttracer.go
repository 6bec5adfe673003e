package tracing

import (
	"github.com/sarchlab/tally/processor"
)

// CountTracer counts the lines, records and top queries handled.
type CountTracer struct {
	lines    uint64
	records  uint64
	tops     uint64
	misses   uint64
	lastLine int
}

// NewCountTracer creates a new CountTracer.
func NewCountTracer() *CountTracer {
	return &CountTracer{}
}

// StartLine counts a line.
func (t *CountTracer) StartLine(_ string, number int) {
	t.lines++
	t.lastLine = number
}

// Record counts a record.
func (t *CountTracer) Record(_ processor.RecordDetail) {
	t.records++
}

// Top counts a top query, and a miss if the artist had no records.
func (t *CountTracer) Top(detail processor.TopDetail) {
	t.tops++

	if !detail.Found {
		t.misses++
	}
}

// Lines returns the number of lines started.
func (t *CountTracer) Lines() uint64 { return t.lines }

// Records returns the number of records applied.
func (t *CountTracer) Records() uint64 { return t.records }

// Tops returns the number of top queries answered.
func (t *CountTracer) Tops() uint64 { return t.tops }

// Misses returns the number of top queries about artists without records.
func (t *CountTracer) Misses() uint64 { return t.misses }

// LastLine returns the number of the last line started.
func (t *CountTracer) LastLine() int { return t.lastLine }
