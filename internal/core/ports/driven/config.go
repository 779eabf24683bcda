package driven

import "github.com/custodia-labs/inkling/internal/core/domain"

// ConfigStore loads and persists the application configuration.
type ConfigStore interface {
	// Load returns defaults overlaid with the stored file. A missing file
	// is not an error.
	Load() (domain.Config, error)

	// Save writes the complete configuration.
	Save(cfg domain.Config) error

	// Set assigns a dotted key such as "search.top_k" and persists it.
	// The result must still validate.
	Set(key, value string) error

	// Path returns where the configuration lives.
	Path() string
}
