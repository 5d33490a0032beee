package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/blox/internal/logging"
	"github.com/aretw0/blox/pkg/codec"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/fsnotify/fsnotify"
)

// Loader is what Watch feeds reloaded documents into.
type Loader interface {
	LoadDocument(domain.Document) error
}

// Source reads and writes a document file. The format follows the extension.
type Source struct {
	Path     string
	logger   *slog.Logger
	debounce time.Duration
}

// Option configures the Source.
type Option func(*Source)

// WithLogger configures a logger for the Source.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// WithDebounce sets how long Watch waits for writes to settle.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) {
		s.debounce = d
	}
}

// New creates a Source for path.
func New(path string, opts ...Option) *Source {
	s := &Source{
		Path:     path,
		logger:   logging.NewNop(),
		debounce: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and decodes the file.
func (s *Source) Load() (domain.Document, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return codec.Unmarshal(data, codec.FormatFromPath(s.Path))
}

// Save writes the document atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Source) Save(doc domain.Document) error {
	data, err := codec.Marshal(doc, codec.FormatFromPath(s.Path))
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure document directory: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(s.Path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}

// Watch reloads the file into target whenever it changes, until ctx is
// done. Documents that fail to decode or validate are logged and skipped,
// the store keeps its previous state.
func (s *Source) Watch(ctx context.Context, target Loader) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	// Editors replace files by rename, so watch the directory.
	if err := w.Add(filepath.Dir(s.Path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.Path, err)
	}

	abs, _ := filepath.Abs(s.Path)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, _ := filepath.Abs(ev.Name)
			if name != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			s.reload(target)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", "path", s.Path, "error", err)
		}
	}
}

func (s *Source) reload(target Loader) {
	doc, err := s.Load()
	if err != nil {
		s.logger.Warn("reload skipped", "path", s.Path, "error", err)
		return
	}
	if err := target.LoadDocument(doc); err != nil {
		s.logger.Warn("reload rejected", "path", s.Path, "error", err)
		return
	}
	s.logger.Info("document reloaded", "path", s.Path, "blocks", len(doc))
}
