// Package cache remembers what was last pushed for every key so that a push
// can skip records the service already holds unchanged.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"txjs-cli/internal/phrase"
	"txjs-cli/internal/textutil"
	"txjs-cli/internal/worker"
)

// DB is the subset of *pgxpool.Pool the cache needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS pushed_phrases (
	key       TEXT PRIMARY KEY,
	digest    TEXT NOT NULL,
	pushed_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	listSQL   = `SELECT key, digest FROM pushed_phrases`
	upsertSQL = `INSERT INTO pushed_phrases (key, digest)
SELECT * FROM unnest($1::text[], $2::text[])
ON CONFLICT (key) DO UPDATE SET digest = EXCLUDED.digest, pushed_at = now()`
	deleteAllSQL = `DELETE FROM pushed_phrases`
)

const upsertBatchSize = 1000

// PushCache keeps key → digest in memory, backed by PostgreSQL when a DB is
// given. A nil DB gives a cache that only lives for the process.
type PushCache struct {
	db     DB
	mu     sync.RWMutex
	memory map[string]string
}

// NewPushCache creates a cache on db, which may be nil.
func NewPushCache(db DB) *PushCache {
	return &PushCache{
		db:     db,
		memory: make(map[string]string),
	}
}

// Digest fingerprints everything about a record that the service stores.
func Digest(r phrase.Record) string {
	b, err := json.Marshal(r)
	if err != nil {
		// Record has only plain fields; Marshal cannot fail.
		return textutil.Hash(r.Key + "\x00" + r.String)
	}
	return textutil.Hash(string(b))
}

// EnsureSchema creates the backing table.
func (c *PushCache) EnsureSchema(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	if _, err := c.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create pushed_phrases: %w", err)
	}
	return nil
}

// Preload loads every stored digest into memory.
func (c *PushCache) Preload(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	rows, err := c.db.Query(ctx, listSQL)
	if err != nil {
		return fmt.Errorf("preload push cache: %w", err)
	}
	defer rows.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for rows.Next() {
		var key, digest string
		if err := rows.Scan(&key, &digest); err != nil {
			return fmt.Errorf("scan push cache row: %w", err)
		}
		c.memory[key] = digest
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("preload push cache: %w", err)
	}

	log.Debug().Int("count", count).Msg("preloaded push cache")
	return nil
}

// Changed returns the records whose digest differs from the remembered one,
// keeping their order.
func (c *PushCache) Changed(records []phrase.Record) []phrase.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []phrase.Record
	for _, r := range records {
		if d, ok := c.memory[r.Key]; ok && d == Digest(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Remember stores the digests of records that were pushed successfully.
func (c *PushCache) Remember(ctx context.Context, records []phrase.Record) error {
	keys := make([]string, len(records))
	digests := make([]string, len(records))
	for i, r := range records {
		keys[i] = r.Key
		digests[i] = Digest(r)
	}

	c.mu.Lock()
	for i, k := range keys {
		c.memory[k] = digests[i]
	}
	c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	for _, idx := range worker.Batch(indexes(len(keys)), upsertBatchSize) {
		lo, hi := idx[0], idx[len(idx)-1]+1
		if _, err := c.db.Exec(ctx, upsertSQL, keys[lo:hi], digests[lo:hi]); err != nil {
			return fmt.Errorf("store push cache: %w", err)
		}
	}
	return nil
}

// Reset forgets everything, as needed after a purge.
func (c *PushCache) Reset(ctx context.Context) error {
	c.mu.Lock()
	c.memory = make(map[string]string)
	c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	if _, err := c.db.Exec(ctx, deleteAllSQL); err != nil {
		return fmt.Errorf("reset push cache: %w", err)
	}
	return nil
}

// Len returns the number of remembered keys.
func (c *PushCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
