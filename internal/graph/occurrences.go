// Package graph mirrors extracted phrases into Neo4j as a graph of phrases,
// the source files they occur in, and their tags.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"

	"txjs-cli/internal/phrase"
	"txjs-cli/internal/worker"
)

const writeBatchSize = 500

// OccurrenceGraph writes (:Phrase)-[:OCCURS_IN]->(:SourceFile) and
// (:Phrase)-[:TAGGED]->(:Tag).
type OccurrenceGraph struct {
	driver neo4j.DriverWithContext
}

// NewOccurrenceGraph creates a graph writer on driver.
func NewOccurrenceGraph(driver neo4j.DriverWithContext) *OccurrenceGraph {
	return &OccurrenceGraph{driver: driver}
}

// EnsureSchema creates uniqueness constraints for the three node labels.
func (g *OccurrenceGraph) EnsureSchema(ctx context.Context) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (p:Phrase) REQUIRE p.key IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (f:SourceFile) REQUIRE f.path IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (t:Tag) REQUIRE t.name IS UNIQUE",
	}
	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Debug().Msg("graph schema ensured")
	return nil
}

// upsertCypher treats each row as the complete state of its phrase: edges
// to files and tags the row no longer lists are removed.
const upsertCypher = `
UNWIND $rows AS row
MERGE (p:Phrase {key: row.key})
SET p.string = row.string,
    p.context = row.context,
    p.comment = row.comment,
    p.character_limit = row.character_limit
WITH p, row
CALL {
  WITH p, row
  MATCH (p)-[r:OCCURS_IN]->(f:SourceFile)
  WHERE NOT f.path IN row.occurrences
  DELETE r
}
CALL {
  WITH p, row
  MATCH (p)-[r:TAGGED]->(t:Tag)
  WHERE NOT t.name IN row.tags
  DELETE r
}
CALL {
  WITH p, row
  UNWIND row.occurrences AS path
  MERGE (f:SourceFile {path: path})
  MERGE (p)-[:OCCURS_IN]->(f)
}
CALL {
  WITH p, row
  UNWIND row.tags AS tag
  MERGE (t:Tag {name: tag})
  MERGE (p)-[:TAGGED]->(t)
}
`

// Rows converts records into the parameter rows of the upsert query.
func Rows(records []phrase.Record) []map[string]any {
	rows := make([]map[string]any, 0, len(records))
	for _, r := range records {
		occurrences := r.Occurrences
		if occurrences == nil {
			occurrences = []string{}
		}
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		rows = append(rows, map[string]any{
			"key":             r.Key,
			"string":          r.String,
			"context":         r.Context,
			"comment":         r.Comment,
			"character_limit": int64(r.CharLimit),
			"occurrences":     occurrences,
			"tags":            tags,
		})
	}
	return rows
}

// orphanQueries delete source files and tags no phrase points at.
var orphanQueries = []string{
	`MATCH (f:SourceFile) WHERE NOT (f)<-[:OCCURS_IN]-() DELETE f`,
	`MATCH (t:Tag) WHERE NOT (t)<-[:TAGGED]-() DELETE t`,
}

// Write upserts records in batches. Records must carry every occurrence and
// tag of their phrase, as a full extraction produces.
func (g *OccurrenceGraph) Write(ctx context.Context, records []phrase.Record) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	for _, batch := range worker.Batch(Rows(records), writeBatchSize) {
		if _, err := session.Run(ctx, upsertCypher, map[string]any{"rows": batch}); err != nil {
			return fmt.Errorf("upsert phrase batch: %w", err)
		}
	}
	if err := removeOrphans(ctx, session); err != nil {
		return err
	}

	log.Info().Int("phrases", len(records)).Msg("wrote occurrence graph")
	return nil
}

// Prune removes phrases whose key is not in keep, along with source files
// and tags left without phrases.
func (g *OccurrenceGraph) Prune(ctx context.Context, keep []string) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	if keep == nil {
		keep = []string{}
	}
	if _, err := session.Run(ctx, `MATCH (p:Phrase) WHERE NOT p.key IN $keep DETACH DELETE p`, map[string]any{"keep": keep}); err != nil {
		return fmt.Errorf("prune graph: %w", err)
	}
	return removeOrphans(ctx, session)
}

func removeOrphans(ctx context.Context, session neo4j.SessionWithContext) error {
	for _, q := range orphanQueries {
		if _, err := session.Run(ctx, q, nil); err != nil {
			return fmt.Errorf("remove orphan nodes: %w", err)
		}
	}
	return nil
}
