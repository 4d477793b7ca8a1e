package cmd

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/dendrascience/csv2saf/internal/config"
	"github.com/dendrascience/csv2saf/internal/logging"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// ErrProblemsFound is returned when validation reports at least one problem.
var ErrProblemsFound = errors.New("validation found problems")

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	logLevel  string
	logFormat string
}

// newLogger builds the command logger. Flags win over the config file.
func newLogger(cmd *cobra.Command, global *globalOptions, cfg *config.Config) (*log.Logger, error) {
	opts := logging.Options{Writer: cmd.ErrOrStderr()}
	if cfg != nil {
		opts.Level = cfg.Logging.Level
		opts.Format = cfg.Logging.Format
	}
	if global.logLevel != "" {
		opts.Level = global.logLevel
	}
	if global.logFormat != "" {
		opts.Format = global.logFormat
	}
	return logging.New(opts)
}

func renderTable(headers []string, rows [][]string, rightAligned ...int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(rightAligned))
	for _, col := range rightAligned {
		configs = append(configs, table.ColumnConfig{
			Number:      col,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
