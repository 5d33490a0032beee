package mutation

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/blox/internal/logging"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/registry"
	"github.com/google/uuid"
)

// Store is the slice of the document store the engine commits through.
// Update must run fn and the commit as one step with respect to other
// writes.
type Store interface {
	Update(fn func(domain.Document) (domain.Document, error)) error
	Select(domain.BlockID) error
}

// Registry supplies child sites, payload defaults and validation.
type Registry interface {
	SiteResolver
	Defaults(blockType string) (domain.BlockData, error)
	Validate(blockType string, data domain.BlockData) error
}

// Engine applies structural edits. Each edit computes the next document
// inside a single store Update, so a concurrent patch is never lost.
type Engine struct {
	store    Store
	registry Registry
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	newID    func() domain.BlockID
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger configures a logger for the Engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers observability callbacks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = h
	}
}

// WithIDGenerator replaces the random id source used by Insert.
func WithIDGenerator(fn func() domain.BlockID) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// New creates an Engine.
func New(s Store, reg Registry, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		registry: reg,
		logger:   logging.NewNop(),
		newID:    func() domain.BlockID { return domain.BlockID(uuid.NewString()) },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Delete removes id and every reference to it. Deleting an absent id does
// nothing. The root cannot be deleted.
func (e *Engine) Delete(id domain.BlockID) error {
	if id == domain.RootID {
		e.hooks.Mutation(domain.OpDelete, id, false)
		return domain.ErrRootProtected
	}

	var removed bool
	err := e.store.Update(func(doc domain.Document) (domain.Document, error) {
		next, ok := WithoutBlock(doc, e.registry, id)
		if !ok {
			return nil, nil
		}
		removed = true
		return next, nil
	})
	if err != nil {
		e.hooks.Mutation(domain.OpDelete, id, false)
		return err
	}
	if !removed {
		e.logger.Debug("delete of absent block ignored", "block_id", id)
	}
	e.hooks.Mutation(domain.OpDelete, id, removed)
	return nil
}

// Move swaps id with its previous (up) or next (down) sibling and selects
// it. At either end of its sequence, or when no sequence holds it, the
// document is left as is.
func (e *Engine) Move(id domain.BlockID, dir domain.Direction) error {
	if _, err := domain.ParseDirection(string(dir)); err != nil {
		e.hooks.Mutation(domain.OpMove, id, false)
		return err
	}

	var (
		exists, moved bool
		locs          []Location
	)
	err := e.store.Update(func(doc domain.Document) (domain.Document, error) {
		exists = doc.Has(id)
		locs = Locate(doc, e.registry, id)
		if len(locs) == 0 {
			return nil, nil
		}
		next, ok := Swapped(doc, e.registry, locs[0], dir)
		if !ok {
			return nil, nil
		}
		moved = true
		return next, nil
	})
	if err != nil {
		e.hooks.Mutation(domain.OpMove, id, false)
		return err
	}

	switch {
	case len(locs) == 0:
		e.logger.Debug("move of unreferenced block ignored", "block_id", id)
	case len(locs) > 1:
		e.logger.Warn("block has several parents", "block_id", id, "sites", len(locs), "owner", locs[0].Owner)
		e.hooks.Warn(domain.Warning{
			Source:  "mutation",
			BlockID: id,
			Reason:  fmt.Sprintf("referenced from %d sites, moving within %s", len(locs), locs[0].Owner),
		})
	}
	e.hooks.Mutation(domain.OpMove, id, moved)

	if exists {
		return e.store.Select(id)
	}
	return nil
}

// Insert creates a block of blockType with its default payload, references
// it from site of parent at index and selects it. It returns the new id.
func (e *Engine) Insert(parent domain.BlockID, site, index int, blockType string) (domain.BlockID, error) {
	id := e.newID()
	if err := e.insert(parent, site, index, blockType, id); err != nil {
		e.hooks.Mutation(domain.OpInsert, id, false)
		return "", err
	}
	e.hooks.Mutation(domain.OpInsert, id, true)

	if err := e.store.Select(id); err != nil {
		return id, err
	}
	return id, nil
}

func (e *Engine) insert(parent domain.BlockID, site, index int, blockType string, id domain.BlockID) error {
	data, err := e.registry.Defaults(blockType)
	if err != nil {
		return err
	}
	if err := e.registry.Validate(blockType, data); err != nil {
		return err
	}

	return e.store.Update(func(doc domain.Document) (domain.Document, error) {
		if doc.Has(id) {
			return nil, fmt.Errorf("insert: id %s already in use", id)
		}
		next, err := Inserted(doc, e.registry, parent, site, index, id, domain.Block{Type: blockType, Data: data})
		if err != nil {
			return nil, fmt.Errorf("insert into %s: %w", parent, err)
		}
		return next, nil
	})
}

var _ Registry = (*registry.Registry)(nil)
