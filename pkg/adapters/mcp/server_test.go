package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aretw0/blox"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*Server, *blox.Editor) {
	t.Helper()
	doc := domain.NewDocument()
	doc[domain.RootID].Data.Props["childrenIds"] = []any{"a", "b"}
	doc["a"] = domain.Block{Type: domain.TypeHeading, Data: domain.BlockData{Props: map[string]any{"text": "Welcome"}}}
	doc["b"] = domain.Block{Type: domain.TypeText, Data: domain.BlockData{Props: map[string]any{"text": "Body"}}}

	ed, err := blox.New(
		blox.WithDocument(doc),
		blox.WithIDGenerator(func() domain.BlockID { return "fresh" }),
	)
	require.NoError(t, err)
	return NewServer(ed), ed
}

type toolResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StructuredContent json.RawMessage `json:"structuredContent"`
	IsError           bool            `json:"isError"`
}

func call(t *testing.T, s *Server, method string, params any) json.RawMessage {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	resp := s.MCPServer().HandleMessage(context.Background(), msg)
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  json.RawMessage `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	require.Empty(t, envelope.Error, string(raw))
	return envelope.Result
}

func callTool(t *testing.T, s *Server, name string, args map[string]any) toolResult {
	t.Helper()
	raw := call(t, s, "tools/call", map[string]any{"name": name, "arguments": args})
	var res toolResult
	require.NoError(t, json.Unmarshal(raw, &res))
	return res
}

func TestToolsList(t *testing.T) {
	s, _ := newServer(t)
	raw := call(t, s, "tools/list", map[string]any{})

	var res struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(raw, &res))

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"get_document", "list_block_types", "get_block", "patch_block", "insert_block", "delete_block",
		"move_block", "select_block", "render_html", "export_template",
	}, names)
}

func TestMoveAndDelete(t *testing.T) {
	s, ed := newServer(t)

	res := callTool(t, s, "move_block", map[string]any{"id": "b", "direction": "up"})
	require.False(t, res.IsError, res.Content)
	root, _ := ed.Block(domain.RootID)
	assert.Equal(t, []any{"b", "a"}, root.Data.Props["childrenIds"])
	assert.Equal(t, domain.BlockID("b"), ed.Selection().BlockID)

	res = callTool(t, s, "delete_block", map[string]any{"id": "a"})
	require.False(t, res.IsError)
	assert.False(t, ed.Document().Has("a"))

	res = callTool(t, s, "delete_block", map[string]any{"id": "root"})
	assert.True(t, res.IsError)

	res = callTool(t, s, "move_block", map[string]any{"id": "b", "direction": "sideways"})
	assert.True(t, res.IsError)
}

func TestPatchBlock(t *testing.T) {
	s, ed := newServer(t)

	res := callTool(t, s, "patch_block", map[string]any{
		"id":    "b",
		"block": `{"type":"Text","data":{"props":{"text":"Changed"}}}`,
	})
	require.False(t, res.IsError, res.Content)
	b, _ := ed.Block("b")
	assert.Equal(t, "Changed", b.Data.Props["text"])

	res = callTool(t, s, "patch_block", map[string]any{
		"id":    "b",
		"block": `{"type":"Text","data":{"props":{"text":7}}}`,
	})
	assert.True(t, res.IsError)
	b, _ = ed.Block("b")
	assert.Equal(t, "Changed", b.Data.Props["text"])

	res = callTool(t, s, "patch_block", map[string]any{"id": "b", "block": "{"})
	assert.True(t, res.IsError)
}

func TestInsertBlock(t *testing.T) {
	s, ed := newServer(t)

	res := callTool(t, s, "insert_block", map[string]any{"parent": "root", "type": "Divider", "index": 0})
	require.False(t, res.IsError, res.Content)

	var out InsertResponse
	require.NoError(t, json.Unmarshal(res.StructuredContent, &out))
	assert.Equal(t, domain.BlockID("fresh"), out.ID)
	assert.Equal(t, domain.BlockID("fresh"), out.Selection.BlockID)

	root, _ := ed.Block(domain.RootID)
	assert.Equal(t, []any{"fresh", "a", "b"}, root.Data.Props["childrenIds"])
}

func TestRenderAndExport(t *testing.T) {
	s, _ := newServer(t)

	res := callTool(t, s, "render_html", map[string]any{"mode": "editable"})
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Contains(t, res.Content[0].Text, `data-block-id="b"`)

	res = callTool(t, s, "export_template", map[string]any{})
	require.False(t, res.IsError)
	assert.JSONEq(t,
		`{"Repeaters":[{"Items":[{"Singlelines":[{"Content":"Welcome"}]},{"Multilines":[{"Content":"Body"}]}]}]}`,
		string(res.StructuredContent))
}

func TestListBlockTypes(t *testing.T) {
	s, _ := newServer(t)

	res := callTool(t, s, "list_block_types", map[string]any{})
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	var types []struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &types))
	assert.Len(t, types, 13)
	assert.Equal(t, domain.TypeAvatar, types[0].Type)
}

func TestDocumentResource(t *testing.T) {
	s, _ := newServer(t)

	raw := call(t, s, "resources/read", map[string]any{"uri": documentURI})
	var res struct {
		Contents []struct {
			URI  string `json:"uri"`
			Text string `json:"text"`
		} `json:"contents"`
	}
	require.NoError(t, json.Unmarshal(raw, &res))
	require.Len(t, res.Contents, 1)

	var doc domain.Document
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &doc))
	assert.Equal(t, domain.TypeEmailLayout, doc[domain.RootID].Type)
	assert.Len(t, doc, 3, fmt.Sprintf("%v", doc.IDs()))
}
