package extract

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"

	"txjs-cli/internal/phrase"
	"txjs-cli/internal/syntax"
	"txjs-cli/internal/worker"
)

// Failure is a file that could not be read or parsed.
type Failure struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

// Report is the outcome of one extraction run.
type Report struct {
	FilesScanned     int
	FilesWithPhrases int
	// PhrasesFound counts accepted sites before deduplication.
	PhrasesFound int
	Records      []phrase.Record
	Failures     []Failure
	Diagnostics  []Diagnostic
}

// FileResult is what one file contributes before merging.
type FileResult struct {
	Path        string
	Records     []phrase.Record
	Diagnostics []Diagnostic
}

// Options configures a Driver.
type Options struct {
	Shapes  Shapes
	Keys    phrase.KeyGenerator
	Tags    phrase.TagPolicy
	Workers int
}

// Driver extracts phrases from a list of files.
type Driver struct {
	shapes   Shapes
	builder  Builder
	workers  int
	readFile func(string) ([]byte, error)
}

// NewDriver creates a driver. Zero-valued options fall back to the default
// call shapes, source keys, and one worker per CPU.
func NewDriver(opts Options) *Driver {
	if opts.Keys == nil {
		opts.Keys = phrase.SourceKeys{}
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	return &Driver{
		shapes:   opts.Shapes.WithDefaults(),
		builder:  Builder{Keys: opts.Keys, Tags: opts.Tags},
		workers:  opts.Workers,
		readFile: os.ReadFile,
	}
}

// ExtractSource parses and extracts a single in-memory file.
func (d *Driver) ExtractSource(ctx context.Context, path string, src []byte) (*FileResult, error) {
	f, err := syntax.ParseFile(ctx, path, src)
	if err != nil {
		return nil, err
	}
	a := Analyze(f)

	res := &FileResult{Path: path}
	for _, m := range a.Classify(d.shapes) {
		rec, diags, ok := d.builder.Build(a, m)
		res.Diagnostics = append(res.Diagnostics, diags...)
		if ok {
			res.Records = append(res.Records, rec)
		}
	}
	return res, nil
}

func (d *Driver) extractFile(ctx context.Context, path string) (*FileResult, error) {
	src, err := d.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return d.ExtractSource(ctx, path, src)
}

// Run extracts every path. Files are processed concurrently but merged in
// the order given, so the record list is stable for a stable input list.
// A file that fails to read or parse is recorded and skipped. Run only
// returns an error when ctx ends before every file was processed.
func (d *Driver) Run(ctx context.Context, paths []string) (*Report, error) {
	pool := worker.NewPool(d.workers, d.extractFile)
	tasks := pool.Execute(ctx, paths)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{}
	set := phrase.NewSet()
	for _, task := range tasks {
		if task.Err != nil {
			report.FilesScanned++
			log.Warn().Err(task.Err).Str("file", task.Input).Msg("skipping file")
			report.Failures = append(report.Failures, Failure{Path: task.Input, Err: task.Err})
			continue
		}

		res := task.Result
		report.FilesScanned++
		report.Diagnostics = append(report.Diagnostics, res.Diagnostics...)
		if len(res.Records) == 0 {
			continue
		}
		report.FilesWithPhrases++
		report.PhrasesFound += len(res.Records)
		for _, rec := range res.Records {
			set.Add(rec)
		}
		log.Debug().Str("file", res.Path).Int("phrases", len(res.Records)).Msg("extracted")
	}

	report.Records = set.Records()
	log.Info().
		Int("files", report.FilesScanned).
		Int("files_with_phrases", report.FilesWithPhrases).
		Int("phrases", len(report.Records)).
		Int("failed", len(report.Failures)).
		Msg("extraction finished")
	return report, nil
}
