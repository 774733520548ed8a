// Package cli implements the cropwatch command line: one-off snapshots and
// catalog inspection without starting the server.
package cli

import (
	"io"

	"github.com/aristath/cropwatch/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	catalogPath string
	logLevel    string
}

// NewRootCommand builds the cropwatch command tree writing to out
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "cropwatch",
		Short:         "Synthetic crop market dashboard generator",
		Long:          "Generate synthetic crop market dashboards: a 12-month price trend, market comparison and selling advice.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)

	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "YAML catalog file (default: built-in catalog)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "error", "log level: debug, info, warn, error")

	cmd.AddCommand(newSnapshotCommand(opts))
	cmd.AddCommand(newCatalogCommand(opts))

	return cmd
}

// logger writes diagnostics to stderr so stdout stays machine readable
func (o *rootOptions) logger(cmd *cobra.Command) zerolog.Logger {
	return logger.New(logger.Config{
		Level:  o.logLevel,
		Pretty: true,
		Output: cmd.ErrOrStderr(),
	})
}
