package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/blox/pkg/blocks"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/registry"
)

// Builder manages the document construction.
type Builder struct {
	registry *registry.Registry
	blocks   map[domain.BlockID]*BlockBuilder
	order    []domain.BlockID
	links    []link
}

type link struct {
	parent domain.BlockID
	site   int
	child  domain.BlockID
}

// Option configures the Builder.
type Option func(*Builder)

// WithRegistry sets the registry used for defaults and validation.
// Defaults to the built-in block set.
func WithRegistry(reg *registry.Registry) Option {
	return func(b *Builder) {
		b.registry = reg
	}
}

// New creates a new document builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		blocks: make(map[domain.BlockID]*BlockBuilder),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.registry == nil {
		b.registry = blocks.NewRegistry()
	}
	return b
}

// Add declares a block. If the block already exists, it returns the
// existing builder.
func (b *Builder) Add(id string) *BlockBuilder {
	bid := domain.BlockID(id)
	if bb, ok := b.blocks[bid]; ok {
		return bb
	}
	bb := &BlockBuilder{id: bid, builder: b}
	b.blocks[bid] = bb
	b.order = append(b.order, bid)
	return bb
}

// Root returns the builder for the root layout block.
func (b *Builder) Root() *BlockBuilder {
	return b.Add(string(domain.RootID)).As(domain.TypeEmailLayout)
}

// Build resolves the links and validates every block against its schema.
// All problems are reported together.
func (b *Builder) Build() (domain.Document, error) {
	b.Root()

	var errs []error
	doc := make(domain.Document, len(b.blocks))
	for _, id := range b.order {
		bb := b.blocks[id]
		if bb.err != nil {
			errs = append(errs, fmt.Errorf("block %s: %w", id, bb.err))
			continue
		}
		if bb.block.Type == "" {
			errs = append(errs, fmt.Errorf("block %s: no type set", id))
			continue
		}
		doc[id] = bb.block
	}

	for _, l := range b.links {
		if err := attach(doc, b.registry, l); err != nil {
			errs = append(errs, fmt.Errorf("block %s: attach to %s: %w", l.child, l.parent, err))
		}
	}

	for _, id := range doc.IDs() {
		if err := b.registry.Validate(doc[id].Type, doc[id].Data); err != nil {
			errs = append(errs, fmt.Errorf("block %s: %w", id, err))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return doc, nil
}

// MustBuild is like Build but panics on error. It is meant for tests and
// package-level fixtures.
func (b *Builder) MustBuild() domain.Document {
	doc, err := b.Build()
	if err != nil {
		panic(err)
	}
	return doc
}

func attach(doc domain.Document, sites *registry.Registry, l link) error {
	owner, ok := doc[l.parent]
	if !ok {
		return domain.ErrBlockNotFound
	}
	cs, ok := sites.ChildSites(owner.Type)
	if !ok {
		return domain.ErrNotContainer
	}
	if l.site < 0 || l.site >= len(cs.Extract(owner.Data)) {
		return domain.ErrSiteOutOfRange
	}

	data, _ := cs.Rewrite(owner.Data, func(site int, ids []domain.BlockID) []domain.BlockID {
		if site != l.site {
			return ids
		}
		return append(append([]domain.BlockID(nil), ids...), l.child)
	})
	doc[l.parent] = domain.Block{Type: owner.Type, Data: data}
	return nil
}
