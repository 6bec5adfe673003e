// Package session wires the reader, the processor, the output sink and the
// optional recording and monitoring into one run of the tally tool.
package session

import (
	"errors"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/sarchlab/tally/datarecording"
	"github.com/sarchlab/tally/input"
	"github.com/sarchlab/tally/monitoring"
	"github.com/sarchlab/tally/output"
	"github.com/sarchlab/tally/processor"
	"github.com/sarchlab/tally/tally"
	"github.com/sarchlab/tally/tracing"
)

// A Session is one run of the tally tool.
type Session struct {
	id          string
	inputFile   string
	maxLineSize int
	logger      *log.Logger

	table     *tally.Table
	sink      *output.FileSink
	processor *processor.Processor
	counter   *tracing.CountTracer

	dataRecorder datarecording.DataRecorder
	execRecorder *datarecording.ExecRecorder
	dbTracer     *tracing.DBTracer

	monitor      *monitoring.Monitor
	monitorURL   string
	progressBar  *monitoring.ProgressBar
	progressHook *monitoring.LineProgressHook

	terminated bool
}

// ID returns the unique ID of the session.
func (s *Session) ID() string {
	return s.id
}

// Table returns the table the session tallies into.
func (s *Session) Table() *tally.Table {
	return s.table
}

// Processor returns the processor of the session.
func (s *Session) Processor() *processor.Processor {
	return s.processor
}

// Counts returns the tracer counting what the session processed.
func (s *Session) Counts() *tracing.CountTracer {
	return s.counter
}

// OutputFile returns the path of the output file.
func (s *Session) OutputFile() string {
	return s.sink.Path()
}

// DataRecorder returns the data recorder, or nil if recording is disabled.
func (s *Session) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Monitor returns the monitor, or nil if monitoring is disabled.
func (s *Session) Monitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the URL of the monitoring server, or an empty string if
// monitoring is disabled.
func (s *Session) MonitorURL() string {
	return s.monitorURL
}

// Run processes the whole input file. It stops at the first error.
func (s *Session) Run() error {
	reader := input.NewReader(s.inputFile)
	if s.maxLineSize > 0 {
		reader.WithMaxLineSize(s.maxLineSize)
	}

	if s.execRecorder != nil {
		s.execRecorder.Start(
			datarecording.ExecInfo{Property: "Session ID", Value: s.id},
			datarecording.ExecInfo{Property: "Input File", Value: s.inputFile},
			datarecording.ExecInfo{Property: "Output File", Value: s.OutputFile()},
		)
	}

	s.logger.WithFields(log.Fields{
		"session": s.id,
		"input":   s.inputFile,
		"output":  s.OutputFile(),
	}).Debug("Processing input")

	err := s.processor.Run(reader)

	if s.progressHook != nil {
		s.progressHook.Finish()
	}

	s.logger.WithFields(log.Fields{
		"lines":   s.counter.Lines(),
		"records": s.counter.Records(),
		"tops":    s.counter.Tops(),
		"artists": len(s.table.Artists()),
	}).Debug("Processing finished")

	if s.execRecorder != nil {
		status := "ok"
		if err != nil {
			status = err.Error()
		}

		s.execRecorder.End(
			datarecording.ExecInfo{
				Property: "Lines",
				Value:    strconv.FormatUint(s.counter.Lines(), 10),
			},
			datarecording.ExecInfo{Property: "Status", Value: status},
		)
	}

	return err
}

// Terminate flushes the recording and stops the monitor. It is safe to call
// more than once.
func (s *Session) Terminate() error {
	if s.terminated {
		return nil
	}

	s.terminated = true

	var errs []error

	if s.dbTracer != nil {
		s.dbTracer.Terminate()
	}

	if s.dataRecorder != nil {
		errs = append(errs, s.dataRecorder.Close())
	}

	if s.monitor != nil {
		s.monitor.CompleteProgressBar(s.progressBar)
		errs = append(errs, s.monitor.StopServer())
	}

	return errors.Join(errs...)
}
