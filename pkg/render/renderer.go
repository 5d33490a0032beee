package render

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/blox/internal/logging"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/registry"
)

// Mode selects which renderer of a block type is used.
type Mode string

const (
	ModeEditable Mode = "editable"
	ModeStatic   Mode = "static"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeEditable, ModeStatic:
		return m, nil
	}
	return "", fmt.Errorf("invalid render mode %q", s)
}

// DefaultMaxDepth bounds recursion on malformed trees.
const DefaultMaxDepth = 64

// Resolver looks up block type definitions.
type Resolver interface {
	Resolve(blockType string) (registry.Definition, error)
}

// Node is one rendered block. Slots hold the rendered children per child
// site, so column layouts keep their grouping.
type Node struct {
	ID     domain.BlockID `json:"id"`
	Type   string         `json:"type"`
	Markup string         `json:"markup"`
	Slots  [][]*Node      `json:"slots,omitempty"`
}

// Renderer walks a document from a block down, in sibling order.
type Renderer struct {
	registry Resolver
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxDepth int
}

// Option configures the Renderer.
type Option func(*Renderer)

// WithLogger configures a logger for the Renderer.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithHooks registers observability callbacks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(r *Renderer) {
		r.hooks = h
	}
}

// WithMaxDepth sets the recursion bound. Values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(r *Renderer) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// New creates a Renderer.
func New(reg Resolver, opts ...Option) *Renderer {
	r := &Renderer{
		registry: reg,
		logger:   logging.NewNop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render renders id and its descendants. Missing blocks, unknown types and
// failing renderers are skipped with a warning, so the result is nil only
// when id itself cannot be rendered.
func (r *Renderer) Render(doc domain.Document, id domain.BlockID, mode Mode) *Node {
	return r.render(doc, id, mode, 0, map[domain.BlockID]bool{})
}

func (r *Renderer) render(doc domain.Document, id domain.BlockID, mode Mode, depth int, path map[domain.BlockID]bool) *Node {
	if depth >= r.maxDepth {
		r.warn(id, "", fmt.Sprintf("max depth %d reached", r.maxDepth))
		return nil
	}
	if path[id] {
		r.warn(id, "", "block is its own ancestor")
		return nil
	}

	block, ok := doc[id]
	if !ok {
		r.warn(id, "", "missing block")
		return nil
	}
	def, err := r.registry.Resolve(block.Type)
	if err != nil {
		r.warn(id, block.Type, "unknown block type")
		return nil
	}

	fn := def.Static
	if mode == ModeEditable {
		fn = def.Editable
	}
	markup, err := fn(id, block.Data)
	if err != nil {
		r.warn(id, block.Type, "render failed: "+err.Error())
		return nil
	}

	node := &Node{ID: id, Type: block.Type, Markup: markup}
	if !def.Container {
		return node
	}

	path[id] = true
	defer delete(path, id)

	for _, ids := range def.Children.Extract(block.Data) {
		slot := make([]*Node, 0, len(ids))
		for _, child := range ids {
			if c := r.render(doc, child, mode, depth+1, path); c != nil {
				slot = append(slot, c)
			}
		}
		node.Slots = append(node.Slots, slot)
	}
	return node
}

func (r *Renderer) warn(id domain.BlockID, blockType, reason string) {
	r.logger.Warn("block skipped", "block_id", id, "type", blockType, "reason", reason)
	r.hooks.Warn(domain.Warning{Source: "render", BlockID: id, Type: blockType, Reason: reason})
}

// Compose flattens a rendered tree into markup, placing each slot's
// children at its marker. Slots whose marker the parent did not emit
// (hidden columns) are dropped.
func Compose(n *Node) string {
	if n == nil {
		return ""
	}
	out := n.Markup
	for i, slot := range n.Slots {
		var b strings.Builder
		for _, c := range slot {
			b.WriteString(Compose(c))
		}
		out = strings.Replace(out, registry.SlotMarker(i), b.String(), 1)
	}
	return out
}

// HTML renders the whole document from the root.
func (r *Renderer) HTML(doc domain.Document, mode Mode) string {
	return Compose(r.Render(doc, domain.RootID, mode))
}
