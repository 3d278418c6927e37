package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"txjs-cli/internal/cache"
	"txjs-cli/internal/cds"
	"txjs-cli/internal/phrase"
)

type pushFlags struct {
	extractFlags
	dryRun                bool
	fake                  bool
	purge                 bool
	noWait                bool
	overrideTags          bool
	overrideOccurrences   bool
	doNotKeepTranslations bool
	changedOnly           bool
	token                 string
	secret                string
	cdsHost               string
}

func pushCmd() *cobra.Command {
	f := &pushFlags{}
	cmd := &cobra.Command{
		Use:   "push [pattern...]",
		Short: "Detect translatable phrases and push them to the content delivery service",
		Long: `Parses every file matched by the patterns (globs, files or directories),
collects the phrases passed to t(), .translate() and <T>/<UT> elements, and
uploads them. Patterns default to the project file's patterns.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPush(cmd.Context(), cmd.OutOrStdout(), f, args)
		},
	}

	f.register(cmd)
	flags := cmd.Flags()
	flags.BoolVar(&f.dryRun, "dry-run", false, "ask the service to validate without applying changes")
	flags.BoolVar(&f.fake, "fake", false, "extract only, do not contact the service")
	flags.BoolVar(&f.purge, "purge", false, "delete remote phrases missing from this push")
	flags.BoolVar(&f.noWait, "no-wait", false, "do not wait for the content job to finish")
	flags.BoolVar(&f.overrideTags, "override-tags", false, "replace remote tags instead of merging")
	flags.BoolVar(&f.overrideOccurrences, "override-occurrences", false, "replace remote occurrences instead of merging")
	flags.BoolVar(&f.doNotKeepTranslations, "do-not-keep-translations", false, "drop translations of phrases whose source changed")
	flags.BoolVar(&f.changedOnly, "changed-only", false, "push only phrases that changed since the last successful push")
	flags.StringVar(&f.token, "token", "", "project token (default $TRANSIFEX_TOKEN)")
	flags.StringVar(&f.secret, "secret", "", "project secret (default $TRANSIFEX_SECRET)")
	flags.StringVar(&f.cdsHost, "cds-host", "", "content delivery service host (default $TRANSIFEX_CDS_HOST)")

	return cmd
}

func runPush(ctx context.Context, out io.Writer, f *pushFlags, patterns []string) error {
	if f.purge && (f.changedOnly || f.since != "") {
		return errors.New("--purge needs every phrase: it cannot be combined with --changed-only or --since")
	}

	ex, err := runExtraction(ctx, &f.extractFlags, patterns)
	if err != nil {
		return err
	}
	printReport(out, ex.report, f.verbose)

	if f.fake {
		fmt.Fprintln(out, "Fake mode: nothing was uploaded")
		return nil
	}

	token, secret, host := f.token, f.secret, f.cdsHost
	if token == "" {
		token = ex.cfg.Token
	}
	if secret == "" {
		secret = ex.cfg.Secret
	}
	if host == "" {
		host = ex.cfg.CDSHost
	}
	if token == "" || secret == "" {
		return errors.New("missing credentials: set --token and --secret or TRANSIFEX_TOKEN and TRANSIFEX_SECRET")
	}

	records := ex.report.Records
	var pushCache *cache.PushCache
	if f.changedOnly || (f.purge && ex.cfg.DatabaseURL != "") {
		var closeCache func()
		pushCache, closeCache, err = openPushCache(ctx, ex.cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer closeCache()
	}
	if f.changedOnly {
		records = pushCache.Changed(records)
		fmt.Fprintf(out, "%d of %d phrase(s) changed since the last push\n", len(records), len(ex.report.Records))
		if len(records) == 0 {
			return nil
		}
	}

	client := cds.NewClient(host, token, secret)
	jobID, err := client.Push(ctx, records, cds.PushOptions{
		Purge:               f.purge,
		OverrideTags:        f.overrideTags,
		OverrideOccurrences: f.overrideOccurrences,
		KeepTranslations:    !f.doNotKeepTranslations,
		DryRun:              f.dryRun,
	})
	if err != nil {
		return &codedError{code: exitUpload, err: fmt.Errorf("upload content: %w", err)}
	}

	if f.noWait {
		fmt.Fprintf(out, "Queued content job %s\n", jobID)
		return nil
	}

	status, err := client.WaitJob(ctx, jobID)
	printJob(out, status, f.dryRun)
	if err != nil {
		return &codedError{code: exitUpload, err: fmt.Errorf("content job %s: %w", jobID, err)}
	}

	if pushCache != nil && !f.dryRun {
		updateCache(ctx, pushCache, records, f.purge)
	}
	return nil
}

// openPushCache returns a cache backed by PostgreSQL when url is set.
func openPushCache(ctx context.Context, url string) (*cache.PushCache, func(), error) {
	if url == "" {
		log.Warn().Msg("DATABASE_URL not set, --changed-only only applies within this run")
		return cache.NewPushCache(nil), func() {}, nil
	}
	pool, err := openDatabase(ctx, url)
	if err != nil {
		return nil, nil, err
	}

	c := cache.NewPushCache(pool)
	if err := c.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := c.Preload(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return c, pool.Close, nil
}

// updateCache records a successful push. After a purge the remote side
// holds exactly records, so older entries are dropped first.
func updateCache(ctx context.Context, c *cache.PushCache, records []phrase.Record, purged bool) {
	if purged {
		if err := c.Reset(ctx); err != nil {
			log.Warn().Err(err).Msg("could not reset push cache")
			return
		}
	}
	if err := c.Remember(ctx, records); err != nil {
		log.Warn().Err(err).Msg("could not update push cache")
	}
}
