package cli

import (
	"context"
	"cmp"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"txjs-cli/internal/graph"
	"txjs-cli/internal/textutil"
)

type graphFlags struct {
	extractFlags
	prune bool
	top   int
}

func graphCmd() *cobra.Command {
	f := &graphFlags{}
	cmd := &cobra.Command{
		Use:   "graph [pattern...]",
		Short: "Mirror extracted phrases into Neo4j as a phrase/file/tag graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd.Context(), cmd.OutOrStdout(), f, args)
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&f.prune, "prune", false, "remove phrases no longer found in the sources")
	cmd.Flags().IntVar(&f.top, "top", 10, "print the files with the most phrases")

	return cmd
}

func runGraph(ctx context.Context, out io.Writer, f *graphFlags, patterns []string) error {
	if f.since != "" {
		return errors.New("graph mirrors the whole source tree: --since is not supported")
	}

	ex, err := runExtraction(ctx, &f.extractFlags, patterns)
	if err != nil {
		return err
	}
	printReport(out, ex.report, f.verbose)

	driver, err := openGraph(ctx, ex.cfg)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	g := graph.NewOccurrenceGraph(driver)
	if err := g.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure graph schema: %w", err)
	}
	if err := g.Write(ctx, ex.report.Records); err != nil {
		return err
	}
	if f.prune {
		keys := make([]string, len(ex.report.Records))
		for i, r := range ex.report.Records {
			keys[i] = r.Key
		}
		if err := g.Prune(ctx, keys); err != nil {
			return err
		}
	}

	if f.top <= 0 {
		return nil
	}
	files, err := g.TopFiles(ctx, f.top)
	if err != nil {
		return err
	}
	shared, err := g.SharedPhrases(ctx, 2)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Files with the most phrases:")
	for _, fc := range files {
		fmt.Fprintf(out, "%6d  %s\n", fc.Phrases, fc.Path)
	}

	fmt.Fprintf(out, "Phrases used in more than one file: %d\n", len(shared))
	keys := slices.SortedFunc(maps.Keys(shared), func(a, b string) int {
		return cmp.Or(cmp.Compare(shared[b], shared[a]), cmp.Compare(a, b))
	})
	for _, key := range keys[:min(len(keys), f.top)] {
		fmt.Fprintf(out, "%6d  %s\n", shared[key], textutil.Truncate(key, 60))
	}
	return nil
}
