package blox

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/blox/internal/logging"
	"github.com/aretw0/blox/pkg/blocks"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/export"
	"github.com/aretw0/blox/pkg/mutation"
	"github.com/aretw0/blox/pkg/registry"
	"github.com/aretw0/blox/pkg/render"
	"github.com/aretw0/blox/pkg/store"
)

// Editor is the high-level entry point for the blox library.
// It wires a registry, a store, the mutation engine, the renderer and the
// exporter around one document.
type Editor struct {
	registry  *registry.Registry
	store     *store.Store
	mutations *mutation.Engine
	renderer  *render.Renderer
	exporter  *export.Exporter

	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	doc      domain.Document
	maxDepth int
	newID    func() domain.BlockID
	campaign export.CampaignMeta
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Repeated options are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithRegistry replaces the built-in block types.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Editor) {
		e.registry = reg
	}
}

// WithDocument sets the initial document. It is validated by New.
func WithDocument(doc domain.Document) Option {
	return func(e *Editor) {
		e.doc = doc
	}
}

// WithMaxDepth bounds renderer recursion.
func WithMaxDepth(depth int) Option {
	return func(e *Editor) {
		e.maxDepth = depth
	}
}

// WithIDGenerator replaces the id source used for inserted blocks.
func WithIDGenerator(fn func() domain.BlockID) Option {
	return func(e *Editor) {
		e.newID = fn
	}
}

// WithCampaign sets the metadata attached by Campaign.
func WithCampaign(meta export.CampaignMeta) Option {
	return func(e *Editor) {
		e.campaign = meta
	}
}

// New initializes an Editor. Without WithDocument it starts from an empty
// layout; with it, every block must pass its schema.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{maxDepth: render.DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.registry == nil {
		e.registry = blocks.NewRegistry()
	}

	e.store = store.New(e.registry,
		store.WithLogger(e.logger.With("component", "store")),
		store.WithHooks(e.hooks),
	)
	if e.doc != nil {
		if err := e.store.LoadDocument(e.doc); err != nil {
			return nil, fmt.Errorf("invalid initial document: %w", err)
		}
		e.doc = nil
	}

	mutOpts := []mutation.Option{
		mutation.WithLogger(e.logger.With("component", "mutation")),
		mutation.WithHooks(e.hooks),
	}
	if e.newID != nil {
		mutOpts = append(mutOpts, mutation.WithIDGenerator(e.newID))
	}
	e.mutations = mutation.New(e.store, e.registry, mutOpts...)

	e.renderer = render.New(e.registry,
		render.WithLogger(e.logger.With("component", "render")),
		render.WithHooks(e.hooks),
		render.WithMaxDepth(e.maxDepth),
	)
	e.exporter = export.New(e.registry,
		export.WithLogger(e.logger.With("component", "export")),
		export.WithHooks(e.hooks),
	)
	return e, nil
}

// Registry returns the block type registry.
func (e *Editor) Registry() *registry.Registry { return e.registry }

// Catalog describes the block types the editor accepts.
func (e *Editor) Catalog() []registry.TypeInfo { return e.registry.Catalog() }

// Document returns a copy of the current document.
func (e *Editor) Document() domain.Document { return e.store.Document() }

// Block returns a copy of one block.
func (e *Editor) Block(id domain.BlockID) (domain.Block, error) { return e.store.Block(id) }

// PatchBlock validates and stores a block.
func (e *Editor) PatchBlock(id domain.BlockID, block domain.Block) error {
	return e.store.PatchBlock(id, block)
}

// LoadDocument validates and replaces the whole document.
func (e *Editor) LoadDocument(doc domain.Document) error { return e.store.LoadDocument(doc) }

// Delete removes a block and every reference to it.
func (e *Editor) Delete(id domain.BlockID) error { return e.mutations.Delete(id) }

// Move swaps a block with its neighbour in dir.
func (e *Editor) Move(id domain.BlockID, dir domain.Direction) error {
	return e.mutations.Move(id, dir)
}

// Insert adds a default block of blockType under parent and returns its id.
func (e *Editor) Insert(parent domain.BlockID, site, index int, blockType string) (domain.BlockID, error) {
	return e.mutations.Insert(parent, site, index, blockType)
}

// Selection returns the editor selection.
func (e *Editor) Selection() domain.Selection { return e.store.Selection() }

// Select marks a block as selected.
func (e *Editor) Select(id domain.BlockID) error { return e.store.Select(id) }

// ClearSelection deselects.
func (e *Editor) ClearSelection() { e.store.ClearSelection() }

// SetView switches the editor tab.
func (e *Editor) SetView(v domain.View) error { return e.store.SetView(v) }

// SetViewport switches the preview width.
func (e *Editor) SetViewport(v domain.Viewport) error { return e.store.SetViewport(v) }

// Subscribe registers a listener for committed writes.
func (e *Editor) Subscribe(fn store.Listener) func() { return e.store.Subscribe(fn) }

// Tree renders the document into a node tree.
func (e *Editor) Tree(mode render.Mode) *render.Node {
	return e.renderer.Render(e.store.Document(), domain.RootID, mode)
}

// HTML renders the document into markup.
func (e *Editor) HTML(mode render.Mode) string {
	return e.renderer.HTML(e.store.Document(), mode)
}

// WritePage writes the static document as a complete HTML page.
func (e *Editor) WritePage(w io.Writer, v domain.Viewport) error {
	return e.renderer.WritePage(w, e.store.Document(), v)
}

// Template exports the document content.
func (e *Editor) Template() export.Template {
	return e.exporter.Template(e.store.Document())
}

// Campaign exports the document wrapped in the configured campaign metadata.
func (e *Editor) Campaign() export.Campaign {
	return e.exporter.Campaign(e.store.Document(), e.campaign)
}
