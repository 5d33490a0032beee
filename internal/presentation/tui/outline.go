package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/blox/pkg/blocks"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/registry"
)

// SiteResolver looks up where a block type keeps its children.
type SiteResolver interface {
	ChildSites(blockType string) (registry.ChildSites, bool)
}

const maxSummary = 48

// Outline describes the block tree as a nested markdown list, starting at
// the root. Cycles and missing blocks are marked instead of followed.
func Outline(doc domain.Document, sites SiteResolver, selected domain.BlockID) string {
	var sb strings.Builder
	sb.WriteString("# Document\n\n")
	outline(&sb, doc, sites, selected, domain.RootID, 0, map[domain.BlockID]bool{})
	return sb.String()
}

func outline(sb *strings.Builder, doc domain.Document, sites SiteResolver, selected, id domain.BlockID, depth int, path map[domain.BlockID]bool) {
	indent := strings.Repeat("  ", depth)
	block, ok := doc[id]
	switch {
	case !ok:
		fmt.Fprintf(sb, "%s- `%s` *(missing)*\n", indent, id)
		return
	case path[id]:
		fmt.Fprintf(sb, "%s- `%s` *(cycle)*\n", indent, id)
		return
	}

	marker := ""
	if id == selected {
		marker = " ◀"
	}
	line := fmt.Sprintf("%s- **%s** `%s`", indent, block.Type, id)
	if s := summary(block); s != "" {
		line += ": " + s
	}
	sb.WriteString(line + marker + "\n")

	cs, ok := sites.ChildSites(block.Type)
	if !ok {
		return
	}
	path[id] = true
	defer delete(path, id)

	extracted := cs.Extract(block.Data)
	for i, ids := range extracted {
		childDepth := depth + 1
		if len(extracted) > 1 {
			fmt.Fprintf(sb, "%s  - *column %d*\n", indent, i+1)
			childDepth++
		}
		for _, child := range ids {
			outline(sb, doc, sites, selected, child, childDepth, path)
		}
	}
}

// summary picks the most telling text of a block for the outline.
func summary(b domain.Block) string {
	var text string
	switch b.Type {
	case domain.TypeText:
		var p blocks.TextProps
		_ = blocks.DecodeProps(b.Data, &p)
		text = p.Text
	case domain.TypeHeading:
		var p blocks.HeadingProps
		_ = blocks.DecodeProps(b.Data, &p)
		text = p.Text
	case domain.TypeButton:
		var p blocks.ButtonProps
		_ = blocks.DecodeProps(b.Data, &p)
		text = p.Text
	case domain.TypeImage:
		var p blocks.ImageProps
		_ = blocks.DecodeProps(b.Data, &p)
		text = p.Alt
	case domain.TypeContentBlock:
		var p blocks.ContentBlockProps
		_ = blocks.DecodeProps(b.Data, &p)
		text = p.Heading
	}

	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > maxSummary {
		text = string(r[:maxSummary-1]) + "…"
	}
	return strings.NewReplacer("*", `\*`, "_", `\_`, "`", "'").Replace(text)
}
