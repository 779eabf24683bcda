// Package filesystem indexes a local directory tree.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
	"github.com/custodia-labs/inkling/internal/logger"
)

// Verify interface compliance.
var (
	_ driven.Connector = (*Connector)(nil)
	_ driven.Watcher   = (*Connector)(nil)
)

const (
	// MaxFileSize is the largest file the connector will list.
	MaxFileSize = 10 << 20

	// DefaultDebounce is how long Watch waits for changes to settle.
	DefaultDebounce = 2 * time.Second
)

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("connector closed")

// Connector lists regular, non-hidden files under a root directory.
// External IDs are slash-separated paths relative to the root.
type Connector struct {
	rootPath string
	debounce time.Duration

	mu     sync.Mutex
	closed bool
}

// Option configures a Connector.
type Option func(*Connector)

// WithDebounce sets the Watch settle time.
func WithDebounce(d time.Duration) Option {
	return func(c *Connector) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// New creates a connector rooted at rootPath.
func New(rootPath string, opts ...Option) *Connector {
	c := &Connector{rootPath: rootPath, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the integration kind.
func (c *Connector) Provider() domain.Provider {
	return domain.ProviderFilesystem
}

// Root returns the configured root directory.
func (c *Connector) Root() string {
	return c.rootPath
}

// Validate checks that the root exists and is a readable directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(c.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: root path does not exist: %s", domain.ErrInvalidInput, c.rootPath)
		}
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: root path is not a directory: %s", domain.ErrInvalidInput, c.rootPath)
	}
	f, err := os.Open(c.rootPath)
	if err != nil {
		return fmt.Errorf("root path not readable: %w", err)
	}
	return f.Close()
}

// ListItems walks the root. Hidden entries and files over MaxFileSize are
// skipped; unreadable subdirectories are logged and skipped.
func (c *Connector) ListItems(ctx context.Context) ([]domain.ItemHandle, error) {
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	var items []domain.ItemHandle
	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == c.rootPath {
				return err
			}
			logger.Warn("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(c.rootPath, path)
		if relErr != nil {
			return relErr
		}
		if rel != "." && isHidden(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			return nil
		}
		if info.Size() > MaxFileSize {
			logger.Debug("Skipping %s: %d bytes exceeds limit", rel, info.Size())
			return nil
		}

		items = append(items, domain.ItemHandle{
			ExternalID: filepath.ToSlash(rel),
			Name:       d.Name(),
			MIMEType:   detectMIMEType(d.Name()),
			ModifiedAt: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", c.rootPath, err)
	}
	return items, nil
}

// FetchContent reads one listed file.
func (c *Connector) FetchContent(ctx context.Context, item domain.ItemHandle) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := c.resolve(item.ExternalID)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrConnectorFetch, item.ExternalID, err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: %s: file too large", domain.ErrConnectorFetch, item.ExternalID)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrConnectorFetch, item.ExternalID, err)
	}

	mimeType := item.MIMEType
	if mimeType == "" {
		mimeType = detectMIMEType(path)
	}
	item.ModifiedAt = info.ModTime().UTC()
	if item.Name == "" {
		item.Name = filepath.Base(path)
	}

	return &domain.RawDocument{
		Item:     item,
		Provider: domain.ProviderFilesystem,
		MIMEType: mimeType,
		Content:  content,
		Metadata: map[string]string{
			domain.MetaURL: FileURL(path),
			"extension":    strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		},
	}, nil
}

// resolve maps an external ID to a path, refusing paths that escape the root.
func (c *Connector) resolve(externalID string) (string, error) {
	rel := filepath.FromSlash(externalID)
	if filepath.IsAbs(rel) || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s: outside root", domain.ErrConnectorFetch, externalID)
	}
	abs, err := filepath.Abs(filepath.Join(c.rootPath, rel))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrConnectorFetch, externalID, err)
	}
	return abs, nil
}

// Watch calls onChange once file events under the root have been quiet for
// the debounce interval. New subdirectories are watched as they appear.
// Blocks until ctx is done.
func (c *Connector) Watch(ctx context.Context, onChange func()) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if err := c.Validate(ctx); err != nil {
		return fmt.Errorf("root path error: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := c.addTree(watcher, c.rootPath); err != nil {
		return err
	}

	timer := time.NewTimer(c.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !c.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := c.addTree(watcher, event.Name); err != nil {
						logger.Warn("Cannot watch %s: %v", event.Name, err)
					}
				}
			}
			logger.Debug("Change: %s %s", event.Op, event.Name)
			timer.Reset(c.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error on %s: %v", c.rootPath, err)

		case <-timer.C:
			onChange()
		}
	}
}

func (c *Connector) addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if rel, relErr := filepath.Rel(c.rootPath, path); relErr == nil && rel != "." && isHidden(rel) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// relevant reports whether an event can change the listed items.
func (c *Connector) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	rel, err := filepath.Rel(c.rootPath, event.Name)
	if err != nil {
		return false
	}
	return !isHidden(rel)
}

// Close marks the connector closed. Idempotent.
func (c *Connector) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

// isHidden reports whether any path element starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}

var extensionTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".text":     "text/plain",
	".log":      "text/plain",
	".csv":      "text/csv",
	".go":       "text/x-go",
	".py":       "text/x-python",
	".rs":       "text/x-rust",
	".java":     "text/x-java",
	".c":        "text/x-c",
	".h":        "text/x-c",
	".cpp":      "text/x-c++",
	".rb":       "text/x-ruby",
	".ts":       "text/typescript",
	".tsx":      "text/typescript-jsx",
	".jsx":      "text/javascript-jsx",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
	".sh":       "text/x-shellscript",
	".bash":     "text/x-shellscript",
	".sql":      "text/x-sql",
	".eml":      "message/rfc822",
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// detectMIMEType picks a type by extension. Files without an extension are
// treated as plain text.
func detectMIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "text/plain"
	}
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if base, _, err := mime.ParseMediaType(t); err == nil {
			return base
		}
		return t
	}
	return "application/octet-stream"
}
