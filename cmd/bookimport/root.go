package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bookimport/internal/config"
	"github.com/JonMunkholm/bookimport/internal/importer"
	"github.com/JonMunkholm/bookimport/internal/logging"
)

// errImportFailed makes the process exit non-zero after the status has
// already been printed.
var errImportFailed = errors.New("import failed")

type rootOptions struct {
	logLevel    string
	jsonOutput  bool
	requireISBN bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "bookimport",
		Short:         "Validate and send book catalog spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print the resulting status as JSON")
	cmd.PersistentFlags().BoolVar(&opts.requireISBN, "require-isbn", false, "Reject rows without a valid ISBN (overrides IMPORT_REQUIRE_ISBN)")

	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newSubmitCmd(opts))
	return cmd
}

// load reads the configuration and applies the command-line overrides.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("require-isbn") {
		cfg.Import.RequireISBN = o.requireISBN
	}
	logger := logging.New(cmd.ErrOrStderr(), o.logLevel, cfg.Logging.Format)
	return cfg, logger, nil
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// report prints st and returns errImportFailed unless the state is one of
// the accepted ones.
func (o *rootOptions) report(w io.Writer, st importer.Status, accepted ...importer.State) error {
	if o.jsonOutput {
		if err := writeJSON(w, st); err != nil {
			return err
		}
	} else {
		writeText(w, st)
	}
	for _, s := range accepted {
		if st.State == s {
			return nil
		}
	}
	return errImportFailed
}
