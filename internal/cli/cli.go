// Package cli wires the extraction engine, the upload client, and the
// optional stores into the txjs-cli commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"txjs-cli/internal/config"
	"txjs-cli/internal/extract"
	"txjs-cli/internal/filewalker"
	"txjs-cli/internal/phrase"
)

// Exit codes.
const (
	exitOK     = 0
	exitError  = 1
	exitUpload = 2
)

// codedError carries a process exit code.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitError
}

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, cancel := setupContext()
	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	os.Exit(exitCode(err))
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "txjs-cli",
		Short: "Extract translatable phrases from JavaScript sources",
		Long: `Scans JavaScript, JSX and TypeScript sources for translation calls,
collects the phrases they use, and pushes them to the content delivery service.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(pushCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(graphCmd())

	return rootCmd
}

// extractFlags are shared by every command that runs an extraction.
type extractFlags struct {
	keyGenerator    string
	appendTags      string
	withTagsOnly    string
	withoutTagsOnly string
	configPath      string
	since           string
	verbose         bool
}

func (f *extractFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.keyGenerator, "key-generator", "", "key generator for phrases without _key: source or hash")
	flags.StringVar(&f.appendTags, "append-tags", "", "comma-separated tags added to every phrase")
	flags.StringVar(&f.withTagsOnly, "with-tags-only", "", "keep only phrases carrying one of these comma-separated tags")
	flags.StringVar(&f.withoutTagsOnly, "without-tags-only", "", "drop phrases carrying any of these comma-separated tags")
	flags.StringVar(&f.since, "since", "", "only scan files changed in git since this commit")
	flags.StringVar(&f.configPath, "config", "", "project file (default ./"+config.DefaultProjectFile+" when present)")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "print every phrase and diagnostic")
}

// extraction is the resolved input of one run.
type extraction struct {
	cfg     *config.Config
	project config.Project
	report  *extract.Report
}

// runExtraction loads configuration, expands patterns, and extracts.
func runExtraction(ctx context.Context, f *extractFlags, patterns []string) (*extraction, error) {
	if f.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	project, err := config.LoadProject(f.configPath)
	if err != nil {
		return nil, err
	}

	if len(patterns) == 0 {
		patterns = project.Patterns
	}
	if len(patterns) == 0 {
		return nil, errors.New("no file patterns given")
	}

	opts, err := driverOptions(f, project, cfg.WorkerCount)
	if err != nil {
		return nil, err
	}

	walker, err := filewalker.NewWalker(".")
	if err != nil {
		return nil, err
	}
	files, err := walker.Expand(patterns)
	if err != nil {
		return nil, err
	}
	if f.since != "" {
		changed, err := filewalker.ChangedSince(ctx, ".", f.since)
		if err != nil {
			return nil, err
		}
		files = filewalker.KeepChanged(files, changed)
	}

	report, err := extract.NewDriver(opts).Run(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	return &extraction{cfg: cfg, project: project, report: report}, nil
}

// driverOptions merges flags over the project file.
func driverOptions(f *extractFlags, project config.Project, workers int) (extract.Options, error) {
	keyName := f.keyGenerator
	if keyName == "" {
		keyName = project.KeyGenerator
	}
	keys, err := phrase.KeyGeneratorFor(keyName)
	if err != nil {
		return extract.Options{}, err
	}

	pick := func(flag string, fallback []string) []string {
		if flag != "" {
			return phrase.ParseTags(flag)
		}
		return phrase.UnionTags(nil, fallback)
	}

	return extract.Options{
		Shapes: project.Shapes,
		Keys:   keys,
		Tags: phrase.TagPolicy{
			WithTagsOnly:    pick(f.withTagsOnly, project.WithTagsOnly),
			WithoutTagsOnly: pick(f.withoutTagsOnly, project.WithoutTagsOnly),
			AppendTags:      pick(f.appendTags, project.AppendTags),
		},
		Workers: workers,
	}, nil
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("received shutdown signal, cancelling")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// openDatabase connects to PostgreSQL.
func openDatabase(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Debug().Msg("connected to PostgreSQL")
	return pool, nil
}

// openGraph connects to Neo4j.
func openGraph(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Debug().Str("uri", cfg.Neo4jURI).Msg("connected to Neo4j")
	return driver, nil
}
