// Package env overlays environment variables on the file configuration.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/inkling/internal/adapters/driven/config/file"
	"github.com/custodia-labs/inkling/internal/core/domain"
)

// Variables maps environment variable names to config keys.
var Variables = map[string]string{
	"INKLING_DATA_DIR":             "storage.data_dir",
	"INKLING_EMBEDDING_PROVIDER":   "embedding.provider",
	"INKLING_EMBEDDING_MODEL":      "embedding.model",
	"INKLING_EMBEDDING_BASE_URL":   "embedding.base_url",
	"INKLING_EMBEDDING_DIMENSIONS": "embedding.dimensions",
	"OPENAI_API_KEY":               "embedding.api_key",
	"INKLING_TOP_K":                "search.top_k",
	"INKLING_MIN_SCORE":            "search.min_score",
	"INKLING_WORKERS":              "indexing.workers",
	"INKLING_GOOGLE_CLIENT_ID":     "google.client_id",
	"INKLING_GOOGLE_CLIENT_SECRET": "google.client_secret",
	"INKLING_GOOGLE_REDIRECT_URL":  "google.redirect_url",
	"INKLING_SLACK_CLIENT_ID":      "slack.client_id",
	"INKLING_SLACK_CLIENT_SECRET":  "slack.client_secret",
	"INKLING_SLACK_REDIRECT_URL":   "slack.redirect_url",
}

// LoadDotEnv reads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// Apply overrides cfg with every variable lookup finds.
func Apply(cfg *domain.Config, lookup func(string) (string, bool)) error {
	for name, key := range Variables {
		value, ok := lookup(name)
		if !ok || value == "" {
			continue
		}
		if err := file.SetField(cfg, key, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Overlay loads .env and applies the process environment to cfg.
func Overlay(cfg *domain.Config) error {
	if err := LoadDotEnv(); err != nil {
		return err
	}
	return Apply(cfg, os.LookupEnv)
}
