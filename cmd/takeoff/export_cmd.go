package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"constructboq/services"
)

func newExportCmd(app *App) *cobra.Command {
	var flags sessionFlags
	var output, doc string

	cmd := &cobra.Command{
		Use:   "export <takeoff.json>",
		Short: "Write the workbook (.xlsx) or one document (.pdf)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.loadSession(args[0], flags)
			if err != nil {
				return err
			}
			d := services.DocumentFor(s, app.now().Format("2006-01-02"))
			if output == "" {
				output = services.ExportFilename("BOQ", s.Takeoff.ProjectName, "xlsx")
			}

			var data []byte
			switch strings.ToLower(filepath.Ext(output)) {
			case ".xlsx":
				data, err = services.GenerateExcel(services.BuildWorkbook(d))
			case ".pdf":
				var sh services.Sheet
				sh, err = exportSheet(d, doc)
				if err == nil {
					data, err = services.GeneratePDF(sh, d.Date)
				}
			default:
				return fmt.Errorf("output %s: extension must be .xlsx or .pdf", output)
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}
	flags.register(cmd, string(services.ModeEstimation))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.xlsx or .pdf)")
	cmd.Flags().StringVar(&doc, "doc", "boq", "PDF document: boq, takeoff, summary or certificate")
	return cmd
}

// exportSheet picks the sheet of a PDF export. The certificate is only
// produced in payment mode and the grand summary only in estimation mode.
func exportSheet(d services.Document, doc string) (services.Sheet, error) {
	mode := d.Snapshot.Mode
	switch doc {
	case "boq":
		return services.BuildBOQSheet(d), nil
	case "takeoff":
		return services.BuildTakeoffSheet(d, services.TakeoffFilter{}), nil
	case "summary":
		if mode == services.ModeEstimation {
			return services.BuildSummarySheet(d), nil
		}
	case "certificate":
		if mode == services.ModePayment {
			return services.BuildCertificateSheet(d), nil
		}
	default:
		return services.Sheet{}, fmt.Errorf("unknown document %q", doc)
	}
	return services.Sheet{}, fmt.Errorf("document %q is not available in %s mode", doc, mode)
}
