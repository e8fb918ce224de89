package main

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bookimport/internal/application"
	"github.com/JonMunkholm/bookimport/internal/catalog"
	"github.com/JonMunkholm/bookimport/internal/importer"
	"github.com/JonMunkholm/bookimport/internal/submit"
)

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <file>",
		Short: "Validate a spreadsheet and send it to the catalog server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			f, err := openFile(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			app, err := application.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			p := app.NewPipeline()
			st := p.Load(cmd.Context(), filepath.Base(args[0]), f)
			if st.State != importer.StateReadyToSubmit {
				return opts.report(cmd.OutOrStdout(), st)
			}

			st, err = p.Submit(cmd.Context())
			if err != nil {
				return err
			}
			return opts.report(cmd.OutOrStdout(), st, importer.StateSubmitSucceeded)
		},
	}
}

// nopSubmitter backs validate-only pipelines, which never submit.
type nopSubmitter struct{}

func (nopSubmitter) Submit(context.Context, []catalog.Row) (*submit.Reply, error) {
	return nil, errors.New("validate does not submit")
}
