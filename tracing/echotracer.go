package tracing

import (
	"fmt"
	"io"

	"github.com/sarchlab/tally/processor"
)

// EchoTracer prints every top response on a writer, usually standard output.
type EchoTracer struct {
	w io.Writer
}

// NewEchoTracer creates an EchoTracer writing to w.
func NewEchoTracer(w io.Writer) *EchoTracer {
	return &EchoTracer{w: w}
}

// StartLine does nothing.
func (t *EchoTracer) StartLine(_ string, _ int) {}

// Record does nothing.
func (t *EchoTracer) Record(_ processor.RecordDetail) {}

// Top prints the response. Print failures are ignored because the output
// file, not the echo, is the result of the run.
func (t *EchoTracer) Top(detail processor.TopDetail) {
	fmt.Fprintln(t.w, detail.Response)
}
