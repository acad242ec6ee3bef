package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

// maxNameAttempts bounds the uniqueness suffixes tried within one second.
const maxNameAttempts = 1000

// LocalStorage writes timestamp-named artifacts to the local filesystem
type LocalStorage struct {
	now func() time.Time
}

// NewLocalStorage creates a new local storage handler
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{now: time.Now}
}

// Save writes content to dir/{prefix}_{YYYYMMDD_HHMMSS}.{ext}, creating dir
// if needed, and returns the full path. An existing file is never
// overwritten: a numeric suffix is appended instead.
func (ls *LocalStorage) Save(content []byte, dir, prefix, ext string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", types.Storage("creating artifact directory", err)
	}

	ext = strings.TrimPrefix(ext, ".")
	base := fmt.Sprintf("%s_%s", prefix, ls.now().Format(types.TimestampLayout))

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := base
		if attempt > 0 {
			name = fmt.Sprintf("%s_%d", base, attempt)
		}
		path := filepath.Join(dir, name+"."+ext)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", types.Storage("creating artifact file", err)
		}

		if _, err := f.Write(content); err != nil {
			f.Close()
			os.Remove(path)
			return "", types.Storage("writing artifact", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", types.Storage("closing artifact", err)
		}
		return path, nil
	}

	return "", types.Storage("naming artifact", fmt.Errorf("no free name for %s in %s", base, dir))
}

// SaveText saves UTF-8 text as a .txt artifact.
func (ls *LocalStorage) SaveText(text, dir, prefix string) (string, error) {
	return ls.Save([]byte(text), dir, prefix, "txt")
}

// sanitizeFilename reduces an uploaded name to a safe base name
func sanitizeFilename(name string) string {
	result := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	result = strings.Map(func(r rune) rune {
		switch r {
		case ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, result)
	if result == "." || result == "/" {
		result = ""
	}
	if len(result) > 100 {
		result = result[:100]
	}
	return result
}
