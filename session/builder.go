package session

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/browser"
	log "github.com/sirupsen/logrus"

	"github.com/sarchlab/tally/datarecording"
	"github.com/sarchlab/tally/idgen"
	"github.com/sarchlab/tally/monitoring"
	"github.com/sarchlab/tally/output"
	"github.com/sarchlab/tally/processor"
	"github.com/sarchlab/tally/tally"
	"github.com/sarchlab/tally/tracing"
)

// Default file names, relative to the working directory.
const (
	DefaultInputFile  = "input.txt"
	DefaultOutputFile = "output.txt"
)

// Builder can be used to build a session.
type Builder struct {
	inputFile   string
	outputFile  string
	maxLineSize int
	echo        io.Writer
	logger      *log.Logger
	recordOn    bool
	recordFile  string
	monitorOn   bool
	monitorPort int
	openBrowser bool
}

// MakeBuilder creates a new builder. By default the session reads input.txt,
// writes output.txt and echoes responses to standard output.
func MakeBuilder() Builder {
	return Builder{
		inputFile:  DefaultInputFile,
		outputFile: DefaultOutputFile,
		echo:       os.Stdout,
		logger:     log.StandardLogger(),
	}
}

// WithInputFile sets the file the instructions are read from.
func (b Builder) WithInputFile(path string) Builder {
	b.inputFile = path
	return b
}

// WithOutputFile sets the file the top responses are written to.
func (b Builder) WithOutputFile(path string) Builder {
	b.outputFile = path
	return b
}

// WithMaxLineSize sets the longest input line accepted, in bytes. Zero, the
// default, accepts lines of any length.
func (b Builder) WithMaxLineSize(size int) Builder {
	b.maxLineSize = size
	return b
}

// WithLogger sets the logger that the session reports its progress to.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// WithEchoWriter sets where top responses are echoed.
func (b Builder) WithEchoWriter(w io.Writer) Builder {
	b.echo = w
	return b
}

// WithoutEcho disables echoing top responses.
func (b Builder) WithoutEcho() Builder {
	b.echo = nil
	return b
}

// WithDataRecording records every record and top query in a SQLite file. An
// empty path picks a unique file name.
func (b Builder) WithDataRecording(path string) Builder {
	b.recordOn = true
	b.recordFile = path

	return b
}

// WithMonitor serves the live table over HTTP while the session runs.
func (b Builder) WithMonitor() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitoring page in a browser.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.inputFile == "" {
		panic("input file must be set")
	}

	if b.outputFile == "" {
		panic("output file must be set")
	}

	if b.maxLineSize < 0 {
		panic("max line size cannot be negative")
	}

	if b.logger == nil {
		panic("logger must be set")
	}

	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.openBrowser {
		panic("browser cannot be opened when monitoring is disabled")
	}
}

// Build builds the session. The output file is recreated here, so it is empty
// once Build returns.
func (b Builder) Build() (*Session, error) {
	b.parametersMustBeValid()

	s := &Session{
		id:        idgen.NewXID().Generate(),
		inputFile: b.inputFile,
		logger:    b.logger,
	}

	sink, err := output.NewFileSink(b.outputFile)
	if err != nil {
		return nil, err
	}

	s.sink = sink
	s.table = tally.NewTable()
	s.processor = processor.New(s.table, sink)
	s.maxLineSize = b.maxLineSize

	s.counter = tracing.NewCountTracer()
	tracing.CollectTrace(s.processor, s.counter)

	if b.echo != nil {
		tracing.CollectTrace(s.processor, tracing.NewEchoTracer(b.echo))
	}

	if b.recordOn {
		err = s.setupRecording(b.recordFile)
		if err != nil {
			return nil, err
		}
	}

	if b.monitorOn {
		err = s.setupMonitor(b.monitorPort, b.openBrowser)
		if err != nil {
			s.Terminate()
			return nil, err
		}
	}

	return s, nil
}

func (s *Session) setupRecording(path string) error {
	if path == "" {
		path = "tally_run_" + s.id
	}

	recorder, err := datarecording.New(path)
	if err != nil {
		return fmt.Errorf("creating data recording: %w", err)
	}

	s.dataRecorder = recorder
	s.execRecorder = datarecording.NewExecRecorder(recorder)
	s.dbTracer = tracing.NewDBTracer(recorder)
	tracing.CollectTrace(s.processor, s.dbTracer)

	return nil
}

func (s *Session) setupMonitor(port int, openBrowser bool) error {
	s.monitor = monitoring.NewMonitor()
	if port > 0 {
		s.monitor.WithPortNumber(port)
	}

	s.monitor.RegisterTable(s.table)

	s.progressBar = s.monitor.CreateProgressBar("Lines", 0)
	s.progressHook = monitoring.NewLineProgressHook(s.progressBar)
	s.processor.AcceptHook(s.progressHook)

	url, err := s.monitor.StartServer()
	if err != nil {
		return err
	}

	s.monitorURL = url

	if openBrowser {
		err = browser.OpenURL(url)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to open browser")
		}
	}

	return nil
}
