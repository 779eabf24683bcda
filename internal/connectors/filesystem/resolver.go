package filesystem

import (
	"net/url"
	"path/filepath"
	"strings"
)

// FileURL returns the file:// origin URL for an absolute path.
func FileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// LocalPath converts a file:// origin URL back to a local path for opening.
// Other URIs pass through unchanged.
func LocalPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	if u, err := url.Parse(uri); err == nil {
		return filepath.FromSlash(u.Path)
	}
	return strings.TrimPrefix(uri, "file://")
}
