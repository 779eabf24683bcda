package gmail

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

// Config holds Gmail connector configuration.
type Config struct {
	// MaxResults is the size of the listing window.
	MaxResults int64
	// LabelIDs limits listing to messages carrying every label (optional).
	LabelIDs []string
	// Query is a Gmail search query (optional).
	Query string
}

// DefaultConfig returns the listing window used when nothing is configured.
func DefaultConfig() Config {
	return Config{MaxResults: int64(domain.DefaultConfig().Indexing.GmailMaxResults)}
}

// ParseConfig reads overrides from an integration's config map:
// max_results, label_ids (comma separated) and query.
func ParseConfig(base Config, values map[string]string) Config {
	cfg := base
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultConfig().MaxResults
	}
	if val := values["max_results"]; val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil && n > 0 {
			cfg.MaxResults = n
		}
	}
	if val := values["label_ids"]; val != "" {
		cfg.LabelIDs = nil
		for _, id := range strings.Split(val, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.LabelIDs = append(cfg.LabelIDs, id)
			}
		}
	}
	if val := values["query"]; val != "" {
		cfg.Query = val
	}
	return cfg
}
