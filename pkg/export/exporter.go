package export

import (
	"log/slog"

	"github.com/aretw0/blox/internal/logging"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/registry"
)

// Transform maps one block to a template item. An empty item contributes
// nothing.
type Transform func(domain.Block) (Item, error)

// SiteResolver looks up where a type keeps its children.
type SiteResolver interface {
	ChildSites(blockType string) (registry.ChildSites, bool)
}

// Exporter converts a document into campaign template content.
// It only reads the document.
type Exporter struct {
	sites      SiteResolver
	transforms map[string]Transform
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
}

// Option configures the Exporter.
type Option func(*Exporter)

// WithLogger configures a logger for the Exporter.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// WithHooks registers observability callbacks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(e *Exporter) {
		e.hooks = h
	}
}

// WithTransform adds or replaces the transform for a block type.
func WithTransform(blockType string, fn Transform) Option {
	return func(e *Exporter) {
		e.transforms[blockType] = fn
	}
}

// New creates an Exporter with the built-in transforms.
func New(sites SiteResolver, opts ...Option) *Exporter {
	e := &Exporter{
		sites:      sites,
		transforms: DefaultTransforms(),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Template exports the direct children of the root, in order, as the
// items of a single repeater. Nested containers are not descended into.
func (e *Exporter) Template(doc domain.Document) Template {
	root, ok := doc.Root()
	if !ok {
		e.warn(domain.RootID, "", "missing root")
		return Template{Repeaters: []Repeater{}}
	}

	cs, ok := e.sites.ChildSites(root.Type)
	if !ok {
		e.warn(domain.RootID, root.Type, "root has no child sites")
		return Template{Repeaters: []Repeater{}}
	}

	items := []Item{}
	for _, ids := range cs.Extract(root.Data) {
		for _, id := range ids {
			block, ok := doc[id]
			if !ok {
				e.warn(id, "", "missing block")
				continue
			}
			fn, ok := e.transforms[block.Type]
			if !ok {
				e.warn(id, block.Type, "no export transform for type")
				continue
			}
			item, err := fn(block)
			if err != nil {
				e.warn(id, block.Type, "transform failed: "+err.Error())
				continue
			}
			if !item.Empty() {
				items = append(items, item)
			}
		}
	}

	if len(items) == 0 {
		return Template{Repeaters: []Repeater{}}
	}
	return Template{Repeaters: []Repeater{{Items: items}}}
}

// Campaign exports the document wrapped in campaign metadata.
func (e *Exporter) Campaign(doc domain.Document, meta CampaignMeta) Campaign {
	return NewCampaign(meta, e.Template(doc))
}

func (e *Exporter) warn(id domain.BlockID, blockType, reason string) {
	e.logger.Warn("block not exported", "block_id", id, "type", blockType, "reason", reason)
	e.hooks.Warn(domain.Warning{Source: "export", BlockID: id, Type: blockType, Reason: reason})
}
