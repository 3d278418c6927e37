// Package config loads CLI settings from the environment (optionally via a
// .env file) and from the project file txjs.toml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"txjs-cli/internal/extract"
)

// DefaultProjectFile is read from the working directory when present.
const DefaultProjectFile = "txjs.toml"

// Config is the environment side of the configuration.
type Config struct {
	Token         string `env:"TRANSIFEX_TOKEN"`
	Secret        string `env:"TRANSIFEX_SECRET"`
	CDSHost       string `env:"TRANSIFEX_CDS_HOST"`
	DatabaseURL   string `env:"DATABASE_URL"`
	Neo4jURI      string `env:"NEO4J_URI"          envDefault:"bolt://localhost:7687"`
	Neo4jUser     string `env:"NEO4J_USER"         envDefault:"neo4j"`
	Neo4jPassword string `env:"NEO4J_PASSWORD"`
	WorkerCount   int    `env:"WORKER_COUNT"       envDefault:"0"`
}

// Load reads .env if present and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env file")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// Project is the content of txjs.toml. Command-line flags override it.
type Project struct {
	Patterns        []string       `toml:"patterns"`
	KeyGenerator    string         `toml:"key_generator"`
	AppendTags      []string       `toml:"append_tags"`
	WithTagsOnly    []string       `toml:"with_tags_only"`
	WithoutTagsOnly []string       `toml:"without_tags_only"`
	Shapes          extract.Shapes `toml:"shapes"`
}

// LoadProject decodes the project file at path. An empty path reads
// DefaultProjectFile if it exists; an explicit path must exist.
func LoadProject(path string) (Project, error) {
	var p Project

	explicit := path != ""
	if !explicit {
		path = DefaultProjectFile
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("project file: %w", err)
	}

	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return p, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log.Warn().Str("file", path).Str("keys", strings.Join(keys, ", ")).Msg("unknown keys in project file")
	}

	log.Debug().Str("file", path).Msg("loaded project file")
	return p, nil
}
