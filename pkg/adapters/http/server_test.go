package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/blox"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/export"
	"github.com/aretw0/blox/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditor(t *testing.T) *blox.Editor {
	t.Helper()
	doc := domain.NewDocument()
	doc[domain.RootID].Data.Props["childrenIds"] = []any{"a", "b"}
	doc["a"] = domain.Block{Type: domain.TypeHeading, Data: domain.BlockData{Props: map[string]any{"text": "Welcome"}}}
	doc["b"] = domain.Block{Type: domain.TypeText, Data: domain.BlockData{Props: map[string]any{"text": "Body copy"}}}

	n := 0
	ed, err := blox.New(
		blox.WithDocument(doc),
		blox.WithIDGenerator(func() domain.BlockID {
			n++
			return domain.BlockID(fmt.Sprintf("new%d", n))
		}),
		blox.WithCampaign(export.CampaignMeta{Name: "Launch"}),
	)
	require.NoError(t, err)
	return ed
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthAndInfo(t *testing.T) {
	h := NewHandler(newEditor(t))

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "blox-http", info["app"])
	assert.Equal(t, blox.Version, info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])
}

func TestListTypes(t *testing.T) {
	w := do(t, NewHandler(newEditor(t)), http.MethodGet, "/types", "")
	require.Equal(t, http.StatusOK, w.Code)

	var types []struct {
		Type      string         `json:"type"`
		Container bool           `json:"container"`
		Schema    map[string]any `json:"schema"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &types))
	require.Len(t, types, 13)

	byType := map[string]int{}
	for i, ti := range types {
		byType[ti.Type] = i
	}
	heading := types[byType[domain.TypeHeading]]
	assert.False(t, heading.Container)
	assert.Equal(t, map[string]any{"level": "enum(h1|h2|h3)?", "text": "string?"}, heading.Schema["props?"])
	assert.True(t, types[byType[domain.TypeColumnsContainer]].Container)
}

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/blocks/{id}/move"))
}

func TestBlockLifecycle(t *testing.T) {
	ed := newEditor(t)
	h := NewHandler(ed)

	w := do(t, h, http.MethodGet, "/blocks/a", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Welcome"`)

	w = do(t, h, http.MethodGet, "/blocks/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPut, "/blocks/a", `{"type":"Heading","data":{"props":{"text":"Hi again","level":"h1"}}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	b, err := ed.Block("a")
	require.NoError(t, err)
	assert.Equal(t, "Hi again", b.Data.Props["text"])

	w = do(t, h, http.MethodPost, "/blocks", `{"parent":"root","type":"Spacer","index":0}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id":"new1"}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/blocks/b/move?direction=up", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"selectedBlockId":"b"`)
	root, _ := ed.Block(domain.RootID)
	assert.Equal(t, []any{"new1", "b", "a"}, root.Data.Props["childrenIds"])

	w = do(t, h, http.MethodDelete, "/blocks/a", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, ed.Document().Has("a"))

	w = do(t, h, http.MethodDelete, "/blocks/root", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestErrorStatuses(t *testing.T) {
	h := NewHandler(newEditor(t))

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"schema violation", http.MethodPut, "/blocks/a", `{"type":"Heading","data":{"props":{"level":"h9"}}}`, http.StatusUnprocessableEntity},
		{"unknown type", http.MethodPut, "/blocks/x", `{"type":"Carousel","data":{}}`, http.StatusUnprocessableEntity},
		{"non layout root", http.MethodPut, "/blocks/root", `{"type":"Text","data":{}}`, http.StatusUnprocessableEntity},
		{"bad json", http.MethodPut, "/blocks/a", `{`, http.StatusBadRequest},
		{"bad direction", http.MethodPost, "/blocks/a/move?direction=left", "", http.StatusBadRequest},
		{"insert into leaf", http.MethodPost, "/blocks", `{"parent":"a","type":"Text"}`, http.StatusBadRequest},
		{"insert into missing", http.MethodPost, "/blocks", `{"parent":"zz","type":"Text"}`, http.StatusNotFound},
		{"bad mode", http.MethodGet, "/render?mode=fancy", "", http.StatusBadRequest},
		{"bad viewport", http.MethodGet, "/preview?viewport=tablet", "", http.StatusBadRequest},
		{"select missing", http.MethodPut, "/selection", `{"selectedBlockId":"zz"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestSchemaViolationListsFields(t *testing.T) {
	h := NewHandler(newEditor(t))

	w := do(t, h, http.MethodPut, "/blocks/a", `{"type":"Heading","data":{"props":{"level":"h9"}}}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Fields)
	assert.Equal(t, "props.level", body.Fields[0].Key)
}

func TestDocumentRoundTrip(t *testing.T) {
	ed := newEditor(t)
	h := NewHandler(ed)

	w := do(t, h, http.MethodGet, "/document?format=yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "EmailLayout")

	req := httptest.NewRequest(http.MethodPut, "/document", strings.NewReader(`
root:
  type: EmailLayout
  data:
    props:
      childrenIds: [s]
s:
  type: Spacer
  data: {}
`))
	req.Header.Set("Content-Type", "application/yaml")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.True(t, ed.Document().Has("s"))
	assert.False(t, ed.Document().Has("a"))

	w = do(t, h, http.MethodPut, "/document", `{"root":{"type":"EmailLayout","data":{}},"x":{"type":"Text","data":{"props":{"text":5}}}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.True(t, ed.Document().Has("s"), "failed load leaves the document alone")
}

func TestSelection(t *testing.T) {
	ed := newEditor(t)
	h := NewHandler(ed)

	w := do(t, h, http.MethodPut, "/selection", `{"selectedBlockId":"a","view":"preview","viewport":"mobile"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sel := ed.Selection()
	assert.Equal(t, domain.BlockID("a"), sel.BlockID)
	assert.Equal(t, domain.ViewPreview, sel.View)
	assert.Equal(t, domain.ViewportMobile, sel.Viewport)

	w = do(t, h, http.MethodPut, "/selection", `{"selectedBlockId":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, ed.Selection().BlockID)
	assert.Equal(t, domain.ViewPreview, ed.Selection().View, "absent fields are kept")

	w = do(t, h, http.MethodGet, "/selection", "")
	assert.JSONEq(t, `{"view":"preview","viewport":"mobile"}`, w.Body.String())
}

func TestRenderAndExport(t *testing.T) {
	h := NewHandler(newEditor(t))

	w := do(t, h, http.MethodGet, "/render/html?mode=editable", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-block-id="a"`)

	w = do(t, h, http.MethodGet, "/render", "")
	require.Equal(t, http.StatusOK, w.Code)
	var tree struct {
		ID    string `json:"id"`
		Slots [][]struct {
			ID string `json:"id"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tree))
	assert.Equal(t, "root", tree.ID)
	require.Len(t, tree.Slots, 1)
	assert.Len(t, tree.Slots[0], 2)

	w = do(t, h, http.MethodGet, "/preview?viewport=mobile", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, w.Body.String(), "max-width:370px")

	w = do(t, h, http.MethodGet, "/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"Repeaters":[{"Items":[{"Singlelines":[{"Content":"Welcome"}]},{"Multilines":[{"Content":"Body copy"}]}]}]}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/campaign", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Name":"Launch"`)
	assert.Contains(t, w.Body.String(), `"ListIDs":[]`)
}

func TestCORS(t *testing.T) {
	h := NewHandler(newEditor(t), WithCORSOrigin("https://app.example.com"))

	w := do(t, h, http.MethodOptions, "/document", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	ed, err := blox.New(blox.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, err)
	h := NewHandler(ed, WithMetrics(reg))

	_, err = ed.Insert(domain.RootID, 0, -1, domain.TypeDivider)
	require.NoError(t, err)

	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `blox_mutations_total{applied="true",op="insert"} 1`)
}

func TestRequestValidation(t *testing.T) {
	h := NewHandler(newEditor(t), WithRequestValidation(true))

	w := do(t, h, http.MethodPost, "/blocks", `{"type":"Text"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "parent is required")

	w = do(t, h, http.MethodPost, "/blocks", `{"parent":"root","type":"Text"}`)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCloseDetachesFromEditor(t *testing.T) {
	ed := newEditor(t)
	s := NewHandler(ed)
	events, cancel := s.Streams.Subscribe([]string{string(domain.EventBlockPatched)})
	defer cancel()

	patch := func(text string) {
		require.NoError(t, ed.PatchBlock("b", domain.Block{
			Type: domain.TypeText,
			Data: domain.BlockData{Props: map[string]any{"text": text}},
		}))
	}

	patch("first")
	select {
	case msg := <-events:
		assert.Contains(t, msg, "first")
	default:
		t.Fatal("expected an event before Close")
	}

	s.Close()
	s.Close()
	patch("second")
	select {
	case msg := <-events:
		t.Fatalf("unexpected event after Close: %s", msg)
	default:
	}
}

func TestSubscribeEvents(t *testing.T) {
	ed := newEditor(t)
	srv := httptest.NewServer(NewHandler(ed))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?types=block_patched", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 32)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	next := func() string {
		select {
		case l, ok := <-lines:
			require.True(t, ok, "stream closed")
			return l
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for SSE line")
			return ""
		}
	}

	assert.Equal(t, "event: ping", next())
	assert.Equal(t, "data: connected", next())
	assert.Equal(t, "", next())

	// Filtered out.
	require.NoError(t, ed.Select("a"))
	require.NoError(t, ed.PatchBlock("b", domain.Block{Type: domain.TypeText, Data: domain.BlockData{Props: map[string]any{"text": "Edited"}}}))

	assert.Equal(t, "event: block_patched", next())
	data := next()
	require.True(t, strings.HasPrefix(data, "data: "))
	var ev domain.Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(data, "data: ")), &ev))
	assert.Equal(t, domain.EventBlockPatched, ev.Type)
	assert.Equal(t, "Edited", ev.Diff.Changed["b"].Data.Props["text"])
}
