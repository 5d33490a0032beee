package dsl

import "github.com/aretw0/blox/pkg/domain"

// BlockBuilder provides a fluent API for configuring a block.
type BlockBuilder struct {
	id      domain.BlockID
	block   domain.Block
	builder *Builder
	err     error
}

// As sets the block type and resets its payload to the type's defaults.
// Setting the type the block already has keeps the payload.
func (n *BlockBuilder) As(blockType string) *BlockBuilder {
	if n.block.Type == blockType {
		return n
	}
	data, err := n.builder.registry.Defaults(blockType)
	if err != nil {
		n.err = err
		return n
	}
	if data.Props == nil {
		data.Props = map[string]any{}
	}
	if data.Style == nil {
		data.Style = map[string]any{}
	}
	n.block = domain.Block{Type: blockType, Data: data}
	return n
}

// Prop sets a single prop.
func (n *BlockBuilder) Prop(key string, value any) *BlockBuilder {
	if n.block.Data.Props == nil {
		n.block.Data.Props = map[string]any{}
	}
	n.block.Data.Props[key] = value
	return n
}

// Style sets a single style key.
func (n *BlockBuilder) Style(key string, value any) *BlockBuilder {
	if n.block.Data.Style == nil {
		n.block.Data.Style = map[string]any{}
	}
	n.block.Data.Style[key] = value
	return n
}

// Heading makes the block a heading of the given level (h1, h2 or h3).
func (n *BlockBuilder) Heading(text, level string) *BlockBuilder {
	return n.As(domain.TypeHeading).Prop("text", text).Prop("level", level)
}

// Text makes the block a plain text paragraph.
func (n *BlockBuilder) Text(text string) *BlockBuilder {
	return n.As(domain.TypeText).Prop("text", text)
}

// Markdown makes the block a text paragraph rendered from markdown.
func (n *BlockBuilder) Markdown(text string) *BlockBuilder {
	return n.Text(text).Prop("markdown", true)
}

// Button makes the block a link button.
func (n *BlockBuilder) Button(text, url string) *BlockBuilder {
	return n.As(domain.TypeButton).Prop("text", text).Prop("url", url)
}

// Image makes the block an image.
func (n *BlockBuilder) Image(url, alt string) *BlockBuilder {
	return n.As(domain.TypeImage).Prop("url", url).Prop("alt", alt)
}

// HTML makes the block raw HTML. The contents are sanitized on render.
func (n *BlockBuilder) HTML(contents string) *BlockBuilder {
	return n.As(domain.TypeHTML).Prop("contents", contents)
}

// Divider makes the block a horizontal rule.
func (n *BlockBuilder) Divider() *BlockBuilder {
	return n.As(domain.TypeDivider)
}

// Spacer makes the block vertical whitespace of height pixels.
func (n *BlockBuilder) Spacer(height int) *BlockBuilder {
	return n.As(domain.TypeSpacer).Prop("height", height)
}

// Container makes the block a single-site container.
func (n *BlockBuilder) Container() *BlockBuilder {
	return n.As(domain.TypeContainer)
}

// Columns makes the block a column layout with count empty columns.
func (n *BlockBuilder) Columns(count int) *BlockBuilder {
	cols := make([]any, count)
	for i := range cols {
		cols[i] = map[string]any{"childrenIds": []any{}}
	}
	return n.As(domain.TypeColumnsContainer).Prop("columnsCount", count).Prop("columns", cols)
}

// In appends the block to parent's children. For column layouts this is
// the first column.
func (n *BlockBuilder) In(parent string) *BlockBuilder {
	return n.InColumn(parent, 0)
}

// InColumn appends the block to the given column (child site) of parent.
func (n *BlockBuilder) InColumn(parent string, column int) *BlockBuilder {
	n.builder.links = append(n.builder.links, link{
		parent: domain.BlockID(parent),
		site:   column,
		child:  n.id,
	})
	return n
}
