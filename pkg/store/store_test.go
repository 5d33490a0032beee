package store_test

import (
	"errors"
	"testing"

	"github.com/aretw0/blox/pkg/blocks"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/registry"
	"github.com/aretw0/blox/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() domain.Document {
	return domain.Document{
		domain.RootID: {Type: domain.TypeEmailLayout, Data: domain.BlockData{
			Props: map[string]any{"childrenIds": []any{"a", "b"}},
		}},
		"a": {Type: domain.TypeText, Data: domain.BlockData{Props: map[string]any{"text": "A"}}},
		"b": {Type: domain.TypeImage, Data: domain.BlockData{Props: map[string]any{"url": "https://x/b.png"}}},
	}
}

func newStore(t *testing.T, opts ...store.Option) *store.Store {
	t.Helper()
	s := store.New(blocks.NewRegistry(), opts...)
	require.NoError(t, s.ReplaceDocument(sampleDoc()))
	return s
}

func TestNew_EmptyLayout(t *testing.T) {
	s := store.New(blocks.NewRegistry())
	doc := s.Document()

	require.Len(t, doc, 1)
	assert.Equal(t, domain.TypeEmailLayout, doc[domain.RootID].Type)

	sel := s.Selection()
	assert.Equal(t, domain.ViewEditor, sel.View)
	assert.Equal(t, domain.ViewportDesktop, sel.Viewport)
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestDocument_IsASnapshot(t *testing.T) {
	s := newStore(t)
	snap := s.Document()
	snap["a"].Data.Props["text"] = "mutated"
	delete(snap, "b")

	doc := s.Document()
	assert.Equal(t, "A", doc["a"].Data.Props["text"])
	assert.True(t, doc.Has("b"))
}

func TestPatchBlock_Valid(t *testing.T) {
	s := newStore(t)

	var events []domain.Event
	s.Subscribe(func(ev domain.Event) { events = append(events, ev) })

	err := s.PatchBlock("a", domain.Block{
		Type: domain.TypeText,
		Data: domain.BlockData{Props: map[string]any{"text": "changed"}},
	})
	require.NoError(t, err)

	b, err := s.Block("a")
	require.NoError(t, err)
	assert.Equal(t, "changed", b.Data.Props["text"])

	require.Len(t, events, 1)
	assert.Equal(t, domain.EventBlockPatched, events[0].Type)
	assert.Contains(t, events[0].Diff.Changed, domain.BlockID("a"))
}

func TestPatchBlock_RejectedLeavesDocumentUnchanged(t *testing.T) {
	var rejected []domain.BlockID
	s := newStore(t, store.WithHooks(domain.LifecycleHooks{
		OnReject: func(id domain.BlockID, _ string, _ error) { rejected = append(rejected, id) },
	}))
	before := s.Document()

	notified := false
	s.Subscribe(func(domain.Event) { notified = true })

	err := s.PatchBlock("a", domain.Block{
		Type: domain.TypeTextEditorBlock,
		Data: domain.BlockData{Props: map[string]any{}},
	})
	var se *registry.SchemaError
	require.ErrorAs(t, err, &se)

	err = s.PatchBlock("a", domain.Block{Type: "Marquee"})
	assert.ErrorIs(t, err, domain.ErrTypeNotFound)

	assert.Equal(t, before, s.Document())
	assert.False(t, notified)
	assert.Equal(t, []domain.BlockID{"a", "a"}, rejected)
}

func TestPatchBlock_RootMustStayLayout(t *testing.T) {
	s := newStore(t)
	err := s.PatchBlock(domain.RootID, domain.Block{Type: domain.TypeText})
	assert.ErrorIs(t, err, domain.ErrInvalidRoot)
}

func TestReplaceDocument_MissingRoot(t *testing.T) {
	s := newStore(t)
	before := s.Document()

	err := s.ReplaceDocument(domain.Document{"a": {Type: domain.TypeText}})
	assert.ErrorIs(t, err, domain.ErrMissingRoot)
	assert.Equal(t, before, s.Document())
}

func TestReplaceDocument_ClearsStaleSelection(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Select("b"))

	doc := sampleDoc()
	delete(doc, "b")
	require.NoError(t, s.ReplaceDocument(doc))

	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestReplaceDocument_KeepsLiveSelection(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Select("a"))

	doc := sampleDoc()
	delete(doc, "b")
	require.NoError(t, s.ReplaceDocument(doc))

	id, ok := s.Selected()
	assert.True(t, ok)
	assert.Equal(t, domain.BlockID("a"), id)
}

func TestReplaceDocument_NoChangeNoEvent(t *testing.T) {
	s := newStore(t)
	count := 0
	s.Subscribe(func(domain.Event) { count++ })

	require.NoError(t, s.ReplaceDocument(sampleDoc()))
	assert.Zero(t, count)
}

func TestLoadDocument_AggregatesFailures(t *testing.T) {
	s := newStore(t)
	before := s.Document()

	doc := sampleDoc()
	doc["a"] = domain.Block{Type: domain.TypeText, Data: domain.BlockData{Style: map[string]any{"color": "red"}}}
	doc["c"] = domain.Block{Type: "Carousel"}

	err := s.LoadDocument(doc)
	require.Error(t, err)

	var be *store.BlockError
	require.True(t, errors.As(err, &be))
	assert.ErrorIs(t, err, domain.ErrTypeNotFound)
	assert.Contains(t, err.Error(), "block a")
	assert.Contains(t, err.Error(), "block c")
	assert.Equal(t, before, s.Document())

	require.NoError(t, s.LoadDocument(sampleDoc()))
}

func TestUpdate(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Select("b"))
	var events []domain.Event
	s.Subscribe(func(ev domain.Event) { events = append(events, ev) })

	require.NoError(t, s.Update(func(doc domain.Document) (domain.Document, error) {
		delete(doc, "b")
		return doc, nil
	}))
	assert.False(t, s.Document().Has("b"))
	_, ok := s.Selected()
	assert.False(t, ok, "selection of a removed block is cleared")
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventDocumentReplaced, events[0].Type)
	assert.Equal(t, []domain.BlockID{"b"}, events[0].Diff.Removed)
}

func TestUpdate_NoWrite(t *testing.T) {
	s := newStore(t)
	before := s.Document()
	count := 0
	s.Subscribe(func(domain.Event) { count++ })

	require.NoError(t, s.Update(func(doc domain.Document) (domain.Document, error) {
		delete(doc, "a")
		return nil, nil
	}))
	assert.Equal(t, before, s.Document(), "the callback works on a copy")

	boom := errors.New("boom")
	err := s.Update(func(doc domain.Document) (domain.Document, error) {
		delete(doc, "a")
		return doc, boom
	})
	assert.ErrorIs(t, err, boom)

	err = s.Update(func(doc domain.Document) (domain.Document, error) {
		delete(doc, domain.RootID)
		return doc, nil
	})
	assert.ErrorIs(t, err, domain.ErrMissingRoot)

	assert.Equal(t, before, s.Document())
	assert.Zero(t, count)
}

func TestUpdate_SerializesWithPatch(t *testing.T) {
	s := newStore(t)
	patched := make(chan error)

	require.NoError(t, s.Update(func(doc domain.Document) (domain.Document, error) {
		go func() {
			patched <- s.PatchBlock("a", domain.Block{
				Type: domain.TypeText,
				Data: domain.BlockData{Props: map[string]any{"text": "concurrent"}},
			})
		}()
		doc["a"] = domain.Block{Type: domain.TypeText, Data: domain.BlockData{Props: map[string]any{"text": "updated"}}}
		return doc, nil
	}))
	require.NoError(t, <-patched)

	a, err := s.Block("a")
	require.NoError(t, err)
	assert.Equal(t, "concurrent", a.Data.Props["text"], "the patch lands after the update, never under it")
}

func TestSelection(t *testing.T) {
	s := newStore(t)

	assert.ErrorIs(t, s.Select("ghost"), domain.ErrBlockNotFound)
	require.NoError(t, s.Select("a"))

	require.NoError(t, s.SetView(domain.ViewHTML))
	require.NoError(t, s.SetViewport(domain.ViewportMobile))
	assert.ErrorIs(t, s.SetView("campaign"), domain.ErrInvalidView)
	assert.ErrorIs(t, s.SetViewport("tablet"), domain.ErrInvalidViewport)

	sel := s.Selection()
	assert.Equal(t, domain.Selection{BlockID: "a", View: domain.ViewHTML, Viewport: domain.ViewportMobile}, sel)

	s.ClearSelection()
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	s := newStore(t)
	count := 0
	unsubscribe := s.Subscribe(func(domain.Event) { count++ })

	require.NoError(t, s.Select("a"))
	unsubscribe()
	unsubscribe()
	require.NoError(t, s.Select("b"))

	assert.Equal(t, 1, count)
}

func TestSubscribe_ListenerMayReadStore(t *testing.T) {
	s := newStore(t)
	var seen string
	s.Subscribe(func(domain.Event) {
		b, _ := s.Block("a")
		seen, _ = b.Data.Props["text"].(string)
	})

	require.NoError(t, s.PatchBlock("a", domain.Block{
		Type: domain.TypeText,
		Data: domain.BlockData{Props: map[string]any{"text": "fresh"}},
	}))
	assert.Equal(t, "fresh", seen)
}
