package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/blox/pkg/blocks"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutline(t *testing.T) {
	doc := domain.NewDocument()
	doc[domain.RootID].Data.Props["childrenIds"] = []any{"h", "cols", "gone"}
	doc["h"] = domain.Block{Type: domain.TypeHeading, Data: domain.BlockData{Props: map[string]any{"text": "Big   *news*"}}}
	doc["cols"] = domain.Block{Type: domain.TypeColumnsContainer, Data: domain.BlockData{Props: map[string]any{
		"columns": []any{
			map[string]any{"childrenIds": []any{"btn"}},
			map[string]any{"childrenIds": []any{"cols"}},
		},
	}}}
	doc["btn"] = domain.Block{Type: domain.TypeButton, Data: domain.BlockData{Props: map[string]any{"text": strings.Repeat("x", 60)}}}

	got := Outline(doc, blocks.NewRegistry(), "btn")

	assert.Contains(t, got, "- **EmailLayout** `root`\n")
	assert.Contains(t, got, "  - **Heading** `h`: Big \\*news\\*\n")
	assert.Contains(t, got, "    - *column 1*\n")
	assert.Contains(t, got, "      - **Button** `btn`: "+strings.Repeat("x", 47)+"… ◀\n")
	assert.Contains(t, got, "      - `cols` *(cycle)*\n")
	assert.Contains(t, got, "  - `gone` *(missing)*\n")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer()
	out, err := render("# Title\n\n- item\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "item")
}
