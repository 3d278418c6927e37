package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// records is the part of neo4j.ResultWithContext the readers consume.
type records interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// FileCount is the number of phrases occurring in one source file.
type FileCount struct {
	Path    string
	Phrases int
}

// TopFiles returns the files with the most phrases, largest first.
func (g *OccurrenceGraph) TopFiles(ctx context.Context, limit int) ([]FileCount, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (p:Phrase)-[:OCCURS_IN]->(f:SourceFile)
		RETURN f.path AS path, count(p) AS phrases
		ORDER BY phrases DESC, path ASC
		LIMIT $limit
	`, map[string]any{"limit": int64(limit)})
	if err != nil {
		return nil, fmt.Errorf("query top files: %w", err)
	}
	return readFileCounts(ctx, result)
}

func readFileCounts(ctx context.Context, result records) ([]FileCount, error) {
	var out []FileCount
	for result.Next(ctx) {
		record := result.Record()
		path, _ := record.Get("path")
		phrases, _ := record.Get("phrases")
		n, _ := phrases.(int64)
		out = append(out, FileCount{Path: fmt.Sprintf("%v", path), Phrases: int(n)})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read top files: %w", err)
	}
	return out, nil
}

// SharedPhrases returns keys of phrases that occur in at least minFiles
// source files, mapped to their file count.
func (g *OccurrenceGraph) SharedPhrases(ctx context.Context, minFiles int) (map[string]int, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (p:Phrase)-[:OCCURS_IN]->(f:SourceFile)
		WITH p, count(f) AS files
		WHERE files >= $min
		RETURN p.key AS key, files
	`, map[string]any{"min": int64(minFiles)})
	if err != nil {
		return nil, fmt.Errorf("query shared phrases: %w", err)
	}
	return readShared(ctx, result)
}

func readShared(ctx context.Context, result records) (map[string]int, error) {
	shared := make(map[string]int)
	for result.Next(ctx) {
		record := result.Record()
		key, _ := record.Get("key")
		files, _ := record.Get("files")
		n, _ := files.(int64)
		shared[fmt.Sprintf("%v", key)] = int(n)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read shared phrases: %w", err)
	}

	log.Debug().Int("count", len(shared)).Msg("loaded shared phrases")
	return shared, nil
}
