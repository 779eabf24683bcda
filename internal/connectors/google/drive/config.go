package drive

import (
	"fmt"
	"strconv"
	"strings"
)

// Config holds Google Drive connector configuration.
type Config struct {
	// FolderIDs limits listing to documents directly inside these folders (optional).
	FolderIDs []string
	// PageSize is the page size for list requests.
	PageSize int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{PageSize: 100}
}

// ParseConfig reads overrides from an integration's config map:
// folder_ids (comma separated) and page_size.
func ParseConfig(values map[string]string) Config {
	cfg := DefaultConfig()
	if val := values["folder_ids"]; val != "" {
		for _, id := range strings.Split(val, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.FolderIDs = append(cfg.FolderIDs, id)
			}
		}
	}
	if val := values["page_size"]; val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil && n > 0 && n <= 1000 {
			cfg.PageSize = n
		}
	}
	return cfg
}

// Query returns the Drive search expression: live native Google Docs,
// optionally restricted to the configured folders.
func (c Config) Query() string {
	q := fmt.Sprintf("mimeType='%s' and trashed=false", MimeTypeGoogleDoc)
	if len(c.FolderIDs) == 0 {
		return q
	}
	parents := make([]string, len(c.FolderIDs))
	for i, id := range c.FolderIDs {
		parents[i] = fmt.Sprintf("'%s' in parents", strings.ReplaceAll(id, "'", `\'`))
	}
	return q + " and (" + strings.Join(parents, " or ") + ")"
}
