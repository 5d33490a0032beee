package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/registry"
)

// SiteResolver looks up where a block type keeps its children.
type SiteResolver interface {
	ChildSites(blockType string) (registry.ChildSites, bool)
}

// Overlay contains editor state to highlight on the graph.
type Overlay struct {
	Selected domain.BlockID
}

// GenerateMermaid produces a Mermaid flowchart of the block tree.
// It applies semantic styling:
// - Root: ((Circle))
// - Container: [[Subroutine]]
// - Leaf: [Rectangle]
// References to absent blocks are drawn dashed to a {{hexagon}}.
// Blocks not reachable from the root are drawn too, so orphans show up.
func GenerateMermaid(doc domain.Document, sites SiteResolver, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	missing := map[domain.BlockID]bool{}
	for _, id := range doc.IDs() {
		block := doc[id]
		safeID := sanitizeMermaidID(id)

		cs, container := sites.ChildSites(block.Type)
		opener, closer := "[", "]"
		switch {
		case id == domain.RootID:
			opener, closer = "((", "))"
		case container:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s<br/>%s\"%s\n", safeID, opener, escapeLabel(string(id)), block.Type, closer)

		if !container {
			continue
		}
		extracted := cs.Extract(block.Data)
		for site, ids := range extracted {
			for _, child := range ids {
				arrow := "-->"
				if len(extracted) > 1 {
					arrow = fmt.Sprintf("-- \"col %d\" -->", site+1)
				}
				if !doc.Has(child) {
					missing[child] = true
					arrow = "-.->"
				}
				fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(child))
			}
		}
	}

	for _, id := range sortedIDs(missing) {
		fmt.Fprintf(&sb, "    %s{{\"%s<br/>missing\"}}\n", sanitizeMermaidID(id), escapeLabel(string(id)))
	}

	if len(missing) > 0 || (overlay != nil && overlay.Selected != "") {
		sb.WriteString("\n    %% Overlay Styles\n")
	}
	if len(missing) > 0 {
		sb.WriteString("    classDef missing fill:#ffebee,stroke:#c62828,stroke-dasharray:4 2,color:#000;\n")
		for _, id := range sortedIDs(missing) {
			fmt.Fprintf(&sb, "    class %s missing;\n", sanitizeMermaidID(id))
		}
	}
	if overlay != nil && overlay.Selected != "" && doc.Has(overlay.Selected) {
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s selected;\n", sanitizeMermaidID(overlay.Selected))
	}

	return sb.String()
}

func sortedIDs(set map[domain.BlockID]bool) []domain.BlockID {
	doc := make(domain.Document, len(set))
	for id := range set {
		doc[id] = domain.Block{}
	}
	return doc.IDs()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id domain.BlockID) string {
	s := strings.ReplaceAll(string(id), ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	// Mermaid reserves "end".
	if s == "end" {
		s = "end_"
	}
	return s
}
