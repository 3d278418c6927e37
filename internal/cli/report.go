package cli

import (
	"fmt"
	"io"
	"strings"

	"txjs-cli/internal/cds"
	"txjs-cli/internal/extract"
	"txjs-cli/internal/textutil"
)

// printReport writes the extraction summary. Verbose mode lists every
// record and every diagnostic.
func printReport(out io.Writer, r *extract.Report, verbose bool) {
	fmt.Fprintf(out, "Processed %d file(s) and found %d translatable phrase(s).\n", r.FilesScanned, len(r.Records))
	fmt.Fprintf(out, "Content detected in %d file(s).\n", r.FilesWithPhrases)

	if len(r.Failures) > 0 {
		fmt.Fprintf(out, "Failed to parse %d file(s):\n", len(r.Failures))
		for _, f := range r.Failures {
			fmt.Fprintf(out, "  %v\n", f.Err)
		}
	}

	if !verbose {
		return
	}

	for _, rec := range r.Records {
		fmt.Fprintf(out, "%s: %s\n", rec.Key, textutil.Truncate(rec.String, 120))
		fmt.Fprintf(out, "  occurrences: [%s]\n", strings.Join(rec.Occurrences, ", "))
		fmt.Fprintf(out, "  tags: [%s]\n", strings.Join(rec.Tags, ", "))
	}

	var skipped, warnings []extract.Diagnostic
	for _, d := range r.Diagnostics {
		if d.Dropped {
			skipped = append(skipped, d)
		} else {
			warnings = append(warnings, d)
		}
	}
	if len(skipped) > 0 {
		fmt.Fprintf(out, "Skipped %d translation site(s):\n", len(skipped))
		for _, d := range skipped {
			fmt.Fprintf(out, "  %s\n", d)
		}
	}
	if len(warnings) > 0 {
		fmt.Fprintf(out, "%d warning(s) on extracted phrases:\n", len(warnings))
		for _, d := range warnings {
			fmt.Fprintf(out, "  %s\n", d)
		}
	}
}

// printJob writes the outcome of a content job.
func printJob(out io.Writer, s cds.JobStatus, dryRun bool) {
	if s.Status == "" {
		return
	}
	label := "Uploaded content"
	if dryRun {
		label = "Validated content (dry run)"
	}
	fmt.Fprintf(out, "%s: %s\n", label, s.Status)
	fmt.Fprintf(out, "Created strings: %d\n", s.Details.Created)
	fmt.Fprintf(out, "Updated strings: %d\n", s.Details.Updated)
	fmt.Fprintf(out, "Skipped strings: %d\n", s.Details.Skipped)
	fmt.Fprintf(out, "Deleted strings: %d\n", s.Details.Deleted)
	fmt.Fprintf(out, "Failed strings: %d\n", s.Details.Failed)
	for _, e := range s.Errors {
		fmt.Fprintf(out, "Error: %s\n", e)
	}
}
