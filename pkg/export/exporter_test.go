package export_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/blox/pkg/blocks"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func root(ids ...any) domain.Block {
	return domain.Block{Type: domain.TypeEmailLayout, Data: domain.BlockData{Props: map[string]any{"childrenIds": ids}}}
}

func TestTemplate_OrderAndShapes(t *testing.T) {
	var warnings []domain.Warning
	e := export.New(blocks.NewRegistry(), export.WithHooks(domain.LifecycleHooks{
		OnWarning: func(w domain.Warning) { warnings = append(warnings, w) },
	}))

	doc := domain.Document{
		domain.RootID: root("a", "b", "c", "ghost"),
		"a":           {Type: domain.TypeTextEditorBlock, Data: domain.BlockData{Props: map[string]any{"content": "A"}}},
		"b":           {Type: domain.TypeImage, Data: domain.BlockData{Props: map[string]any{"url": "U", "alt": "L"}}},
		"c":           {Type: "Carousel"},
	}

	tpl := e.Template(doc)
	require.Len(t, tpl.Repeaters, 1)
	items := tpl.Repeaters[0].Items
	require.Len(t, items, 2)

	assert.Equal(t, []export.Multiline{{Content: "A"}}, items[0].Multilines)
	assert.Equal(t, []export.Image{{Content: "U", Alt: "L"}}, items[1].Images)

	require.Len(t, warnings, 2)
	assert.Equal(t, "Carousel", warnings[0].Type)
	assert.Equal(t, domain.BlockID("ghost"), warnings[1].BlockID)
}

func TestTemplate_ContentBlock(t *testing.T) {
	e := export.New(blocks.NewRegistry())
	doc := domain.Document{
		domain.RootID: root("cb"),
		"cb": {Type: domain.TypeContentBlock, Data: domain.BlockData{Props: map[string]any{
			"heading":   "Sale",
			"paragraph": "Everything must go",
			"image":     map[string]any{"props": map[string]any{"url": "https://x/i.png"}},
			"button":    map[string]any{"text": "Shop", "href": "https://shop"},
		}}},
	}

	items := e.Template(doc).Repeaters[0].Items
	require.Len(t, items, 1)
	item := items[0]

	assert.Equal(t, []export.Singleline{{Content: "Sale", Href: "https://shop"}}, item.Singlelines)
	assert.Equal(t, []export.Multiline{{Content: "Everything must go"}}, item.Multilines)
	assert.Equal(t, []export.Image{{Content: "https://x/i.png", Alt: "Sale", Href: "https://shop"}}, item.Images)
}

func TestTemplate_MissingRoot(t *testing.T) {
	e := export.New(blocks.NewRegistry())
	tpl := e.Template(domain.Document{})

	raw, err := json.Marshal(tpl)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Repeaters":[]}`, string(raw))
}

func TestTemplate_OnlyDirectChildren(t *testing.T) {
	e := export.New(blocks.NewRegistry())
	doc := domain.Document{
		domain.RootID: root("box"),
		"box": {Type: domain.TypeContainer, Data: domain.BlockData{
			Props: map[string]any{"childrenIds": []any{"t"}},
		}},
		"t": {Type: domain.TypeText, Data: domain.BlockData{Props: map[string]any{"text": "nested"}}},
	}

	assert.Empty(t, e.Template(doc).Repeaters)
}

func TestTemplate_LeafTransforms(t *testing.T) {
	e := export.New(blocks.NewRegistry())
	doc := domain.Document{
		domain.RootID: root("h", "btn", "txt", "sp"),
		"h":           {Type: domain.TypeHeading, Data: domain.BlockData{Props: map[string]any{"text": "Hi"}}},
		"btn":         {Type: domain.TypeButton, Data: domain.BlockData{Props: map[string]any{"text": "Go", "url": "https://go"}}},
		"txt":         {Type: domain.TypeText, Data: domain.BlockData{Props: map[string]any{"text": "Body"}}},
		"sp":          {Type: domain.TypeSpacer},
	}

	items := e.Template(doc).Repeaters[0].Items
	require.Len(t, items, 3)
	assert.Equal(t, "Hi", items[0].Singlelines[0].Content)
	assert.Equal(t, "https://go", items[1].Singlelines[0].Href)
	assert.Equal(t, "Body", items[2].Multilines[0].Content)
}

func TestTemplate_CustomTransform(t *testing.T) {
	e := export.New(blocks.NewRegistry(), export.WithTransform(domain.TypeSpacer, func(domain.Block) (export.Item, error) {
		return export.Item{Multilines: []export.Multiline{{Content: "---"}}}, nil
	}))
	doc := domain.Document{domain.RootID: root("sp"), "sp": {Type: domain.TypeSpacer}}

	assert.Equal(t, "---", e.Template(doc).Repeaters[0].Items[0].Multilines[0].Content)
}

func TestTemplate_DoesNotMutate(t *testing.T) {
	e := export.New(blocks.NewRegistry())
	doc := domain.Document{
		domain.RootID: root("t"),
		"t":           {Type: domain.TypeText, Data: domain.BlockData{Props: map[string]any{"text": "x"}}},
	}
	before := doc.Clone()

	e.Template(doc)
	assert.Equal(t, before, doc)
}

func TestCampaign(t *testing.T) {
	e := export.New(blocks.NewRegistry())
	doc := domain.Document{
		domain.RootID: root("t"),
		"t":           {Type: domain.TypeText, Data: domain.BlockData{Props: map[string]any{"text": "x"}}},
	}

	c := e.Campaign(doc, export.CampaignMeta{Name: "Launch", Subject: "Hello", TemplateID: "tpl-1"})
	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Launch", got["Name"])
	assert.Equal(t, "tpl-1", got["TemplateID"])
	assert.Equal(t, []any{}, got["ListIDs"])
	assert.Contains(t, got, "TemplateContent")
}
