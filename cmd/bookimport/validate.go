package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bookimport/internal/catalog"
	"github.com/JonMunkholm/bookimport/internal/importer"
	"github.com/JonMunkholm/bookimport/internal/sheet"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a spreadsheet without sending it",
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

			p := importer.NewPipeline(importer.Options{
				Decoder:   sheet.NewDecoder(cfg.Import.MaxFileSize),
				Validator: catalog.NewBulkValidator(cfg.Import.RequireISBN),
				Submitter: nopSubmitter{},
				Logger:    logger,
			})
			st := p.Load(cmd.Context(), filepath.Base(args[0]), f)
			return opts.report(cmd.OutOrStdout(), st, importer.StateReadyToSubmit)
		},
	}
}
