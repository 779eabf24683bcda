package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

const (
	// FileName is the configuration file inside the config directory.
	FileName = "config.toml"

	// DatabaseName is the index database inside the data directory.
	DatabaseName = "index.sqlite"

	appDir = "Inkling"
)

// ConfigStore reads and writes domain.Config as TOML.
type ConfigStore struct {
	mu       sync.Mutex
	filePath string
}

// NewConfigStore creates a store for <configDir>/config.toml.
// If configDir is empty, DefaultDir is used.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	return &ConfigStore{filePath: filepath.Join(configDir, FileName)}, nil
}

// Load returns the defaults overlaid with the file contents. Sections or
// keys absent from the file keep their default values.
func (s *ConfigStore) Load() (domain.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *ConfigStore) load() (domain.Config, error) {
	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, s.filePath, err)
	}
	return cfg, nil
}

// Save writes cfg to disk with owner-only permissions. The file may
// contain client secrets and API keys.
func (s *ConfigStore) Save(cfg domain.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(cfg)
}

func (s *ConfigStore) save(cfg domain.Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Set assigns one dotted key, validates the result and saves it.
func (s *ConfigStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}
	if err := SetField(&cfg, key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return s.save(cfg)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// SetField assigns value to the field of cfg whose TOML path is key,
// converting it to the field's type.
func SetField(cfg *domain.Config, key, value string) error {
	section, name, ok := strings.Cut(key, ".")
	if !ok || section == "" || name == "" {
		return fmt.Errorf("%w: key %q must look like section.name", domain.ErrInvalidInput, key)
	}

	sec, ok := fieldByTag(reflect.ValueOf(cfg).Elem(), section)
	if !ok || sec.Kind() != reflect.Struct {
		return fmt.Errorf("%w: unknown section %q", domain.ErrInvalidInput, section)
	}
	field, ok := fieldByTag(sec, name)
	if !ok {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, key)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer", domain.ErrInvalidInput, key)
		}
		field.SetInt(int64(n))
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number", domain.ErrInvalidInput, key)
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("%w: %s cannot be set", domain.ErrInvalidInput, key)
	}
	return nil
}

// Flatten lists every setting as "section.name" → value.
func Flatten(cfg domain.Config) map[string]any {
	result := make(map[string]any)
	root := reflect.ValueOf(cfg)
	for i := range root.NumField() {
		section := tagName(root.Type().Field(i))
		sec := root.Field(i)
		for j := range sec.NumField() {
			result[section+"."+tagName(sec.Type().Field(j))] = sec.Field(j).Interface()
		}
	}
	return result
}

func fieldByTag(v reflect.Value, tag string) (reflect.Value, bool) {
	for i := range v.NumField() {
		if tagName(v.Type().Field(i)) == tag {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func tagName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
	return name
}

// DefaultDir returns the per-OS application directory used for both the
// config file and the database.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return appDirFor(runtime.GOOS, os.Getenv, home), nil
}

func appDirFor(goos string, getenv func(string) string, home string) string {
	switch goos {
	case "windows":
		if appData := getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appDir)
		}
		return filepath.Join(home, "AppData", "Roaming", appDir)
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appDir)
	default:
		if xdg := getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appDir)
		}
		return filepath.Join(home, ".local", "share", appDir)
	}
}

// DataDir returns the data directory for cfg, falling back to DefaultDir
// when none is configured. The directory is created if missing.
func DataDir(cfg domain.Config) (string, error) {
	dir := cfg.Storage.DataDir
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}

// DatabasePath returns the index database file for cfg.
func DatabasePath(cfg domain.Config) (string, error) {
	dir, err := DataDir(cfg)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DatabaseName), nil
}
