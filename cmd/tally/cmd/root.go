// Package cmd provides the command-line interface for tally.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/tally/session"
)

// Environment variables that provide defaults for the flags.
const (
	EnvInput       = "TALLY_INPUT"
	EnvOutput      = "TALLY_OUTPUT"
	EnvRecordDB    = "TALLY_RECORD_DB"
	EnvMonitorPort = "TALLY_MONITOR_PORT"
)

type options struct {
	envFile     string
	input       string
	output      string
	maxLineSize int
	quiet       bool
	verbose     bool
	record      bool
	recordDB    string
	monitor     bool
	monitorPort int
	openBrowser bool

	logger *log.Logger
}

// NewRootCmd creates the tally command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(opts *options) *cobra.Command {
	opts.logger = getLogger(log.InfoLevel, os.Stderr)

	rootCmd := &cobra.Command{
		Use:   "tally",
		Short: "Tally songs per artist and report the top song.",
		Long: `Tally reads record and top instructions line by line. ` +
			`"record:<artist>,<song>" counts a song for an artist and ` +
			`"top:<artist>" appends the artist's most recorded song to the ` +
			`output file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := log.InfoLevel
			if opts.verbose {
				level = log.DebugLevel
			}

			opts.logger = getLogger(level, cmd.ErrOrStderr())

			return applyEnv(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&opts.envFile, "env-file", ".env",
		"file to load environment defaults from, if it exists")
	persistent.BoolVarP(&opts.verbose, "verbose", "v", false,
		"log debug information to standard error")

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", session.DefaultInputFile,
		"file to read instructions from ($"+EnvInput+")")
	flags.StringVarP(&opts.output, "output", "o", session.DefaultOutputFile,
		"file to write top responses to, recreated on every run ($"+EnvOutput+")")
	flags.IntVar(&opts.maxLineSize, "max-line-size", 0,
		"longest input line accepted in bytes, 0 for no limit")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false,
		"do not echo top responses to standard output")
	flags.BoolVar(&opts.record, "record", false,
		"record every instruction in a SQLite database with a generated name")
	flags.StringVar(&opts.recordDB, "record-db", "",
		"record every instruction in the given SQLite database ($"+EnvRecordDB+")")
	flags.BoolVar(&opts.monitor, "monitor", false,
		"serve the live tally over HTTP, until interrupted once the run ends")
	flags.IntVar(&opts.monitorPort, "monitor-port", 0,
		"port of the monitoring server, random if unset ($"+EnvMonitorPort+")")
	flags.BoolVar(&opts.openBrowser, "open-browser", false,
		"open the monitoring server in a browser")

	rootCmd.AddCommand(newReportCmd(opts))

	return rootCmd
}

// Execute runs the tally command and exits the process.
func Execute() {
	opts := &options{}

	err := newRootCmd(opts).Execute()
	if err != nil {
		opts.logger.WithError(err).Error("Tally failed")
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func getLogger(level log.Level, out io.Writer) *log.Logger {
	return &log.Logger{
		Out:       out,
		Level:     level,
		Hooks:     make(log.LevelHooks),
		ExitFunc:  os.Exit,
		Formatter: &log.TextFormatter{},
	}
}

// applyEnv loads the env file and fills the flags that were not given on the
// command line from the environment.
func applyEnv(cmd *cobra.Command, opts *options) error {
	err := godotenv.Load(opts.envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", opts.envFile, err)
	}

	flags := cmd.Flags()

	if v, ok := os.LookupEnv(EnvInput); ok && !flags.Changed("input") {
		opts.input = v
	}

	if v, ok := os.LookupEnv(EnvOutput); ok && !flags.Changed("output") {
		opts.output = v
	}

	if v, ok := os.LookupEnv(EnvRecordDB); ok && !flags.Changed("record-db") {
		opts.recordDB = v
	}

	if v, ok := os.LookupEnv(EnvMonitorPort); ok && !flags.Changed("monitor-port") {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMonitorPort, err)
		}

		opts.monitorPort = port
	}

	return nil
}

func (o *options) builder(cmd *cobra.Command) (session.Builder, error) {
	b := session.MakeBuilder().
		WithInputFile(o.input).
		WithOutputFile(o.output).
		WithEchoWriter(cmd.OutOrStdout()).
		WithLogger(o.logger)

	if o.maxLineSize < 0 {
		return b, errors.New("--max-line-size cannot be negative")
	}

	b = b.WithMaxLineSize(o.maxLineSize)

	if o.quiet {
		b = b.WithoutEcho()
	}

	if o.record || o.recordDB != "" {
		b = b.WithDataRecording(o.recordDB)
	}

	if cmd.Flags().Changed("monitor-port") && !o.monitor {
		return b, errors.New("--monitor-port requires --monitor")
	}

	if o.openBrowser && !o.monitor {
		return b, errors.New("--open-browser requires --monitor")
	}

	if o.monitor {
		b = b.WithMonitor().WithMonitorPort(o.monitorPort)
		if o.openBrowser {
			b = b.WithBrowser()
		}
	}

	return b, nil
}

func run(cmd *cobra.Command, opts *options) error {
	b, err := opts.builder(cmd)
	if err != nil {
		return err
	}

	s, err := b.Build()
	if err != nil {
		return err
	}

	err = s.Run()

	if s.Monitor() != nil {
		serveUntilInterrupted(cmd.Context(), cmd.ErrOrStderr(), s.MonitorURL())
	}

	termErr := s.Terminate()
	if err != nil {
		return err
	}

	return termErr
}

// serveUntilInterrupted blocks until the process is interrupted or ctx is
// done, so that the monitor can still be browsed after a short run.
func serveUntilInterrupted(ctx context.Context, w io.Writer, url string) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(w, "Run finished, still serving %s until interrupted\n", url)

	<-ctx.Done()
}
