// internal/adapters/filestore/slot.go
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/ports"
)

const slotExt = ".json"

// SlotStore writes each slot to its own file under dir. Writes go to a temp
// file first and are renamed into place, so readers never see half a cart.
type SlotStore struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger
	now    func() time.Time

	mu sync.RWMutex
}

var (
	_ ports.SlotStore   = (*SlotStore)(nil)
	_ ports.SlotSweeper = (*SlotStore)(nil)
)

// NewSlotStore creates the directory if needed
func NewSlotStore(fsys afero.Fs, dir string, logger *slog.Logger) (*SlotStore, error) {
	if ok, _ := afero.DirExists(fsys, dir); !ok {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create slot dir %s: %w", dir, err)
		}
	}
	return &SlotStore{
		fs:     fsys,
		dir:    dir,
		logger: logger.With(slog.String("repository", "file_slot"), slog.String("dir", dir)),
		now:    time.Now,
	}, nil
}

// Load reads a slot file
func (s *SlotStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := afero.ReadFile(s.fs, s.pathFor(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return data, nil
}

// Save replaces a slot file atomically
func (s *SlotStore) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.pathFor(key)
	tmp := path.Join(s.dir, ".tmp-"+uuid.NewString())

	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to commit slot %s: %w", key, err)
	}
	return nil
}

// Delete removes a slot file. Missing files are not an error.
func (s *SlotStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.pathFor(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	return nil
}

// Ping checks the slot directory is still there
func (s *SlotStore) Ping(ctx context.Context) error {
	info, err := s.fs.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("slot dir unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("slot dir %s is not a directory", s.dir)
	}
	return nil
}

// Keys lists stored slot keys in sorted order
func (s *SlotStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list slot dir: %w", err)
	}

	var keys []string
	for _, e := range entries {
		if key, ok := keyFromName(e.Name()); ok && !e.IsDir() {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Sweep deletes slot files not modified within olderThan
func (s *SlotStore) Sweep(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list slot dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if e.IsDir() || !e.ModTime().Before(cutoff) {
			continue
		}
		if _, ok := keyFromName(e.Name()); !ok && !strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		if err := s.fs.Remove(path.Join(s.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.WarnContext(ctx, "failed to remove stale slot",
				slog.String("file", e.Name()),
				"err", err)
			continue
		}
		removed++
	}

	s.logger.InfoContext(ctx, "swept stale slots",
		slog.Int("removed", removed),
		slog.Duration("older_than", olderThan))
	return removed, nil
}

// pathFor escapes the key so session ids can never leave dir
func (s *SlotStore) pathFor(key string) string {
	return path.Join(s.dir, url.PathEscape(key)+slotExt)
}

func keyFromName(name string) (string, bool) {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, slotExt) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(name, slotExt))
	if err != nil {
		return "", false
	}
	return key, true
}
