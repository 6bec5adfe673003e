package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/structs"
	"github.com/spf13/cobra"

	"github.com/sarchlab/tally/datarecording"
	"github.com/sarchlab/tally/tracing"
)

var reportTables = []string{
	datarecording.ExecInfoTable,
	tracing.RecordTable,
	tracing.QueryTable,
}

type reportOptions struct {
	tables []string
	artist string
	limit  int
	offset int
}

func newReportCmd(root *options) *cobra.Command {
	opts := &reportOptions{}

	reportCmd := &cobra.Command{
		Use:   "report [recording]",
		Short: "Print a recording made with --record or --record-db.",
		Long: `Report prints the run information, the records and the top ` +
			`queries stored in a recording. The recording defaults to $` +
			EnvRecordDB + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := root.recordDB
			if len(args) > 0 {
				path = args[0]
			}

			if path == "" {
				return errors.New("no recording given")
			}

			return report(cmd.Context(), cmd.OutOrStdout(), path, opts)
		},
	}

	flags := reportCmd.Flags()
	flags.StringSliceVarP(&opts.tables, "table", "t", reportTables,
		"tables to print")
	flags.StringVarP(&opts.artist, "artist", "a", "",
		"only print the records and queries of this artist")
	flags.IntVar(&opts.limit, "limit", 0,
		"maximum number of rows per table, 0 for no limit")
	flags.IntVar(&opts.offset, "offset", 0,
		"number of rows to skip per table, used with --limit")

	return reportCmd
}

func report(
	ctx context.Context,
	w io.Writer,
	path string,
	opts *reportOptions,
) error {
	for _, table := range opts.tables {
		if !slices.Contains(reportTables, table) {
			return fmt.Errorf("unknown table %q, expecting one of %s",
				table, strings.Join(reportTables, ", "))
		}
	}

	reader, err := datarecording.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable(datarecording.ExecInfoTable, datarecording.ExecInfo{})
	tracing.MapDBTables(reader)

	stored, err := reader.StoredTables(ctx)
	if err != nil {
		return err
	}

	for _, table := range opts.tables {
		if !slices.Contains(stored, table) {
			continue
		}

		entries, total, err := reader.Query(ctx, table, opts.params(table))
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%s (%d of %d)\n", table, len(entries), total)

		for _, entry := range entries {
			printEntry(w, entry)
		}
	}

	return nil
}

func (o *reportOptions) params(table string) datarecording.QueryParams {
	params := datarecording.QueryParams{
		Limit:  o.limit,
		Offset: o.offset,
	}

	if table == datarecording.ExecInfoTable {
		return params
	}

	params.OrderBy = "Seq"

	if o.artist != "" {
		params.Where = "Artist = ?"
		params.Args = []any{o.artist}
	}

	return params
}

func printEntry(w io.Writer, entry any) {
	fields := structs.Fields(entry)
	pairs := make([]string, 0, len(fields))

	for _, f := range fields {
		pairs = append(pairs, fmt.Sprintf("%s=%v", f.Name(), f.Value()))
	}

	fmt.Fprintf(w, "  %s\n", strings.Join(pairs, " "))
}
