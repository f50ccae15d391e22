// Package assets serves game files to the engine, preferring a directory on
// disk and falling back to the copies embedded in the binary.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//go:embed *.bmp
var assetsFS embed.FS

// Files reads assets by assets-relative name.
type Files struct {
	// Dir is checked first. Empty means embedded files only.
	Dir string
}

// ReadEntireFile returns the whole file. A file that exists on disk wins over
// the embedded copy so edited assets show up without a rebuild.
func (f Files) ReadEntireFile(name string) ([]byte, error) {
	clean := cleanAssetPath(name)
	if clean == "" {
		return nil, fmt.Errorf("assets: empty name: %w", fs.ErrNotExist)
	}
	if f.Dir != "" {
		data, err := os.ReadFile(f.diskPath(clean))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("assets: read %s: %w", clean, err)
		}
	}
	data, err := assetsFS.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("assets: read %s: %w", clean, err)
	}
	return data, nil
}

// ModTime reports when the on-disk copy of name last changed.
func (f Files) ModTime(name string) (time.Time, bool) {
	if f.Dir == "" {
		return time.Time{}, false
	}
	info, err := os.Stat(f.diskPath(cleanAssetPath(name)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// Name maps a path reported by the watcher back to an asset name.
func (f Files) Name(path string) string {
	return cleanAssetPath(path)
}

func (f Files) diskPath(clean string) string {
	return filepath.Join(f.Dir, filepath.FromSlash(clean))
}

func cleanAssetPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if filepath.IsAbs(path) {
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			return s[idx+len("/assets/"):]
		}
		return filepath.Base(path)
	}
	if after, ok := strings.CutPrefix(s, "assets/"); ok {
		return after
	}
	return s
}
