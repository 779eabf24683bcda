// Package file persists configuration as TOML on the local filesystem.
package file
