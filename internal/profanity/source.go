package profanity

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Source hands out the current Blocklist and keeps it in step with the
// file on disk. Readers get an immutable snapshot; updates swap in a new one.
type Source struct {
	path    string
	current atomic.Pointer[Blocklist]
	logger  *slog.Logger
}

// NewSource loads path. A missing file yields an empty list that is created
// on the first Update.
func NewSource(path string, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Source{path: path, logger: logger}

	b, err := LoadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("profanity list not found, starting empty", slog.String("path", path))
		b = NewBlocklist(nil)
	case err != nil:
		return nil, fmt.Errorf("load profanity list: %w", err)
	}
	s.current.Store(b)
	return s, nil
}

// Current returns the blocklist snapshot in effect.
func (s *Source) Current() *Blocklist {
	return s.current.Load()
}

// Update persists b and makes it current.
func (s *Source) Update(b *Blocklist) error {
	if err := SaveFile(s.path, b); err != nil {
		return fmt.Errorf("save profanity list: %w", err)
	}
	s.current.Store(b)
	return nil
}

// Watch reloads the list whenever the file is written or replaced, until ctx
// is done. The parent directory is watched so editors that write via rename
// are picked up.
func (s *Source) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			b, err := LoadFile(s.path)
			if err != nil {
				s.logger.Warn("reload profanity list failed", slog.String("path", s.path), slog.Any("error", err))
				continue
			}
			s.current.Store(b)
			s.logger.Info("profanity list reloaded", slog.Int("words", b.Len()))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("profanity watcher error", slog.Any("error", err))
		}
	}
}
