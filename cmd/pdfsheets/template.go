package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pdfsheets/internal/common"
	"github.com/joseph-ayodele/pdfsheets/internal/extract"
	"github.com/joseph-ayodele/pdfsheets/internal/templates"
)

func newTemplateCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "template <id>",
		Short: "Resolve a template and show its fields with their rule categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := templates.NewResolver(cfg.TemplateDirs(), logger).Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id: %s\nsource: %s\nmulti_sheet: %t\n", tpl.ID, tpl.Source, tpl.MultiSheet)
			if tpl.Description != "" {
				fmt.Fprintf(out, "description: %s\n", tpl.Description)
			}
			if extract.IsCatalog(tpl.ID) {
				fmt.Fprintln(out, "catalog: fixed rows, document text is not used")
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SHEET\tKEY\tHEADER\tCATEGORY")
			if tpl.MultiSheet {
				for _, s := range tpl.Sheets() {
					for _, f := range s.Fields {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, f.Key, f.Header, extract.Classify(f.Key))
					}
				}
			} else {
				for _, f := range tpl.Fields() {
					fmt.Fprintf(w, "-\t%s\t%s\t%s\n", f.Key, f.Header, extract.Classify(f.Key))
				}
			}
			return w.Flush()
		},
	}
}
