package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/blox/internal/logging"
	"github.com/aretw0/blox/pkg/domain"
)

// Validator checks a payload against the schema of its type.
type Validator interface {
	Validate(blockType string, data domain.BlockData) error
}

// Listener receives an event after each committed write.
type Listener func(domain.Event)

// Store is the single source of truth for the document and the editor
// selection. Writes are serialized and listeners run after the lock is
// released, on the writer's goroutine.
type Store struct {
	validator Validator
	logger    *slog.Logger
	hooks     domain.LifecycleHooks

	mu        sync.RWMutex
	doc       domain.Document
	selection domain.Selection

	subMu     sync.Mutex
	listeners map[int]Listener
	nextSub   int
}

// Option configures the Store.
type Option func(*Store)

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithHooks registers observability callbacks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(s *Store) {
		s.hooks = h
	}
}

// WithDocument sets the initial document. It is not validated.
func WithDocument(doc domain.Document) Option {
	return func(s *Store) {
		s.doc = doc.Clone()
	}
}

// New creates a store holding an empty layout.
func New(v Validator, opts ...Option) *Store {
	s := &Store{
		validator: v,
		logger:    logging.NewNop(),
		doc:       domain.NewDocument(),
		selection: domain.Selection{
			View:     domain.ViewEditor,
			Viewport: domain.ViewportDesktop,
		},
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Document returns a deep copy of the current document.
func (s *Store) Document() domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Block returns a copy of a single block.
func (s *Store) Block(id domain.BlockID) (domain.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.doc[id]
	if !ok {
		return domain.Block{}, fmt.Errorf("%w: %s", domain.ErrBlockNotFound, id)
	}
	return b.Clone(), nil
}

// PatchBlock validates block and stores it under id, replacing any entry
// already there. On failure the document is left untouched.
func (s *Store) PatchBlock(id domain.BlockID, block domain.Block) error {
	if id == domain.RootID && block.Type != domain.TypeEmailLayout {
		s.hooks.Reject(id, block.Type, domain.ErrInvalidRoot)
		return domain.ErrInvalidRoot
	}
	if err := s.validator.Validate(block.Type, block.Data); err != nil {
		s.logger.Debug("patch rejected", "block_id", id, "type", block.Type, "error", err)
		s.hooks.Reject(id, block.Type, err)
		return err
	}

	next := block.Clone()

	s.mu.Lock()
	s.doc[id] = next
	sel := s.selection
	s.mu.Unlock()

	s.hooks.Patch(id, block.Type)
	s.notify(domain.Event{
		Type:      domain.EventBlockPatched,
		Diff:      &domain.DocumentDiff{Changed: map[domain.BlockID]domain.Block{id: next.Clone()}},
		Selection: sel,
	})
	return nil
}

// ReplaceDocument swaps the whole document. Payloads are not revalidated,
// use LoadDocument for untrusted input. A selection pointing at a block
// that no longer exists is cleared.
func (s *Store) ReplaceDocument(doc domain.Document) error {
	if err := checkRoot(doc); err != nil {
		return err
	}
	s.replace(doc.Clone())
	return nil
}

// LoadDocument validates every block and then replaces the document.
// Failures are aggregated and nothing is applied unless all blocks pass.
func (s *Store) LoadDocument(doc domain.Document) error {
	if err := checkRoot(doc); err != nil {
		return err
	}

	var errs []error
	for _, id := range doc.IDs() {
		b := doc[id]
		if err := s.validator.Validate(b.Type, b.Data); err != nil {
			errs = append(errs, &BlockError{ID: id, Err: err})
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.replace(doc.Clone())
	return nil
}

func (s *Store) replace(next domain.Document) {
	s.mu.Lock()
	ev := s.commitLocked(next)
	s.mu.Unlock()

	if ev != nil {
		s.notify(*ev)
	}
}

// commitLocked installs next and returns the event to publish, if any.
// The caller holds s.mu.
func (s *Store) commitLocked(next domain.Document) *domain.Event {
	prev := s.doc
	s.doc = next
	if s.selection.BlockID != "" && !next.Has(s.selection.BlockID) {
		s.selection.BlockID = ""
	}

	diff := domain.Diff(prev, next)
	if diff == nil {
		return nil
	}
	return &domain.Event{
		Type:      domain.EventDocumentReplaced,
		Diff:      diff,
		Selection: s.selection,
	}
}

// Update rewrites the document under the write lock, so no other write
// can land between reading the document and committing the result. fn
// receives a private copy. Returning a nil document leaves the store as
// is. Errors from fn are returned unchanged and nothing is applied.
func (s *Store) Update(fn func(domain.Document) (domain.Document, error)) error {
	s.mu.Lock()
	next, err := fn(s.doc.Clone())
	if err != nil || next == nil {
		s.mu.Unlock()
		return err
	}
	if err := checkRoot(next); err != nil {
		s.mu.Unlock()
		return err
	}
	ev := s.commitLocked(next.Clone())
	s.mu.Unlock()

	if ev != nil {
		s.notify(*ev)
	}
	return nil
}

func checkRoot(doc domain.Document) error {
	root, ok := doc.Root()
	if !ok {
		return domain.ErrMissingRoot
	}
	if root.Type != domain.TypeEmailLayout {
		return domain.ErrInvalidRoot
	}
	return nil
}

// Selection returns the current editor state.
func (s *Store) Selection() domain.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Selected returns the selected block id, if any.
func (s *Store) Selected() (domain.BlockID, bool) {
	sel := s.Selection()
	return sel.BlockID, sel.BlockID != ""
}

// Select marks id as the selected block. The id must exist.
func (s *Store) Select(id domain.BlockID) error {
	return s.updateSelection(func(sel *domain.Selection, doc domain.Document) error {
		if !doc.Has(id) {
			return fmt.Errorf("%w: %s", domain.ErrBlockNotFound, id)
		}
		sel.BlockID = id
		return nil
	})
}

// ClearSelection deselects any block.
func (s *Store) ClearSelection() {
	_ = s.updateSelection(func(sel *domain.Selection, _ domain.Document) error {
		sel.BlockID = ""
		return nil
	})
}

// SetView switches the active surface.
func (s *Store) SetView(v domain.View) error {
	if _, err := domain.ParseView(string(v)); err != nil {
		return err
	}
	return s.updateSelection(func(sel *domain.Selection, _ domain.Document) error {
		sel.View = v
		return nil
	})
}

// SetViewport switches the preview width class.
func (s *Store) SetViewport(v domain.Viewport) error {
	if _, err := domain.ParseViewport(string(v)); err != nil {
		return err
	}
	return s.updateSelection(func(sel *domain.Selection, _ domain.Document) error {
		sel.Viewport = v
		return nil
	})
}

func (s *Store) updateSelection(fn func(*domain.Selection, domain.Document) error) error {
	s.mu.Lock()
	next := s.selection
	if err := fn(&next, s.doc); err != nil {
		s.mu.Unlock()
		return err
	}
	changed := next != s.selection
	s.selection = next
	s.mu.Unlock()

	if changed {
		s.notify(domain.Event{Type: domain.EventSelectionChanged, Selection: next})
	}
	return nil
}

// Subscribe registers fn for change events. The returned func removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.listeners, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify(ev domain.Event) {
	ev.Timestamp = time.Now()

	s.subMu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// BlockError ties a validation failure to a block id.
type BlockError struct {
	ID  domain.BlockID
	Err error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block %s: %v", e.ID, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }
