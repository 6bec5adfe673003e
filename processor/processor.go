// Package processor applies instructions to a tally table and answers top
// queries.
package processor

import (
	"fmt"
	"iter"

	"github.com/sarchlab/tally/hooking"
	"github.com/sarchlab/tally/instruction"
	"github.com/sarchlab/tally/output"
	"github.com/sarchlab/tally/tally"
)

// NoRecordsYet is reported in place of a song for artists without records.
const NoRecordsYet = "NO RECORDS YET"

// Hook positions raised by the Processor.
var (
	// HookPosLine fires before a line is processed. Item is the line and
	// Detail is a LineDetail.
	HookPosLine = &hooking.HookPos{Name: "Line"}

	// HookPosRecord fires after a record is applied. Item is the instruction
	// and Detail is a RecordDetail.
	HookPosRecord = &hooking.HookPos{Name: "Record"}

	// HookPosTop fires after a top query is answered. Item is the instruction
	// and Detail is a TopDetail.
	HookPosTop = &hooking.HookPos{Name: "Top"}
)

// LineDetail describes the line about to be processed.
type LineDetail struct {
	Number int
}

// RecordDetail describes an applied record.
type RecordDetail struct {
	Artist string
	Song   string
	Count  int
}

// TopDetail describes an answered top query.
type TopDetail struct {
	Artist   string
	Response string
	Found    bool
	WriteErr error
}

// A LineSource produces the lines to process.
type LineSource interface {
	Lines() iter.Seq2[string, error]
}

// Processor dispatches instructions to the record and top handlers.
type Processor struct {
	*hooking.HookableBase

	table    *tally.Table
	sink     output.Sink
	numLines int
}

// New creates a Processor that updates the table and writes top responses to
// the sink.
func New(table *tally.Table, sink output.Sink) *Processor {
	return &Processor{
		HookableBase: hooking.NewHookableBase(),
		table:        table,
		sink:         sink,
	}
}

// Table returns the table that the processor updates.
func (p *Processor) Table() *tally.Table {
	return p.table
}

// NumLines returns the number of lines that Run has handed to Process.
func (p *Processor) NumLines() int {
	return p.numLines
}

// Run processes every line of the source in order. It stops at the first
// error.
func (p *Processor) Run(src LineSource) error {
	for line, err := range src.Lines() {
		if err != nil {
			return err
		}

		p.numLines++
		p.InvokeHook(hooking.HookCtx{
			Domain: p,
			Pos:    HookPosLine,
			Item:   line,
			Detail: LineDetail{Number: p.numLines},
		})

		_, err = p.Process(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", p.numLines, err)
		}
	}

	return nil
}

// Process parses one line and dispatches it. Record instructions return an
// empty string; top instructions return the response.
func (p *Processor) Process(line string) (string, error) {
	inst, err := instruction.Parse(line)
	if err != nil {
		return "", err
	}

	switch inst.Kind {
	case instruction.KindRecord:
		return "", p.record(inst)
	case instruction.KindTop:
		return p.top(inst)
	default:
		panic(fmt.Sprintf("unhandled instruction kind %s", inst.Kind))
	}
}

// Record applies a record argument of the form "artist,song".
func (p *Processor) Record(arg string) error {
	return p.record(instruction.Instruction{
		Kind: instruction.KindRecord,
		Arg:  arg,
	})
}

func (p *Processor) record(inst instruction.Instruction) error {
	artist, song, err := instruction.SplitRecordArg(inst.Arg)
	if err != nil {
		return err
	}

	count := p.table.Record(artist, song)

	p.InvokeHook(hooking.HookCtx{
		Domain: p,
		Pos:    HookPosRecord,
		Item:   inst,
		Detail: RecordDetail{Artist: artist, Song: song, Count: count},
	})

	return nil
}

// Top answers a top query for the artist and appends the response to the
// sink. The response is returned even if the sink fails.
func (p *Processor) Top(artist string) (string, error) {
	return p.top(instruction.Instruction{
		Kind: instruction.KindTop,
		Arg:  artist,
	})
}

func (p *Processor) top(inst instruction.Instruction) (string, error) {
	artist := inst.Arg

	song, found := p.table.Leader(artist)
	if !found {
		song = NoRecordsYet
	}

	rsp := artist + ":" + song

	writeErr := p.sink.WriteLine(rsp)

	p.InvokeHook(hooking.HookCtx{
		Domain: p,
		Pos:    HookPosTop,
		Item:   inst,
		Detail: TopDetail{
			Artist:   artist,
			Response: rsp,
			Found:    found,
			WriteErr: writeErr,
		},
	})

	return rsp, writeErr
}
