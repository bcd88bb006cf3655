// Package status persists the enabled flag of every named portal cache so
// that administrative toggles survive a restart. The original portal kept
// these flags in its database; here they live in a small yaml file managed
// through viper, behind the cacheable.StatusStore interface so a different
// backend can replace the file without touching the cache layer.
package status

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/spf13/viper"
)

// FileStore is a yaml-file-backed status store. Flags are kept under the
// "caches" key, e.g.:
//
//	caches:
//	  page: true
//	  site-properties: false
//
// The file is created on the first write; a missing file on load simply
// means no cache has ever been toggled.
type FileStore struct {
	mu    sync.Mutex
	path  string
	viper *viper.Viper
}

// NewFileStore loads the status file at path. A missing file is not an
// error; any other read failure is.
func NewFileStore(path string) (*FileStore, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return nil, fmt.Errorf("read cache status file %s: %w", path, err)
		}
	}

	return &FileStore{path: path, viper: v}, nil
}

// Enabled returns the persisted flag for a cache name and whether one exists.
func (s *FileStore) Enabled(name string) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := "caches." + name
	if !s.viper.IsSet(key) {
		return false, false
	}
	return s.viper.GetBool(key), true
}

// SetEnabled persists the flag for a cache name, rewriting the status file.
func (s *FileStore) SetEnabled(name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.viper.Set("caches."+name, enabled)
	if err := s.viper.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write cache status file %s: %w", s.path, err)
	}
	return nil
}

// isNotExist matches the *fs.PathError viper returns when an explicit config
// file path does not exist (ConfigFileNotFoundError only covers search paths).
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
