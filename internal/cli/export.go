package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"txjs-cli/internal/export"
)

type exportFlags struct {
	extractFlags
	format string
	output string
}

func exportCmd() *cobra.Command {
	f := &exportFlags{}
	cmd := &cobra.Command{
		Use:   "export [pattern...]",
		Short: "Extract phrases and write them to a JSON or TSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), f, args)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&f.format, "format", export.FormatJSON, "output format: json or tsv")
	cmd.Flags().StringVarP(&f.output, "output", "o", "-", "output file, - for stdout")

	return cmd
}

func runExport(ctx context.Context, out io.Writer, f *exportFlags, patterns []string) error {
	ex, err := runExtraction(ctx, &f.extractFlags, patterns)
	if err != nil {
		return err
	}
	if f.output == "-" || f.output == "" {
		return export.Encode(out, f.format, ex.report.Records)
	}
	printReport(out, ex.report, f.verbose)
	return export.Write(f.format, f.output, ex.report.Records)
}
