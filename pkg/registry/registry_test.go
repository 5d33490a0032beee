package registry

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticText(_ domain.BlockID, d domain.BlockData) (string, error) {
	s, _ := d.Props["text"].(string)
	return "<p>" + s + "</p>", nil
}

func leaf() Definition {
	return Definition{
		Type: "Note",
		Schema: schema.Schema{
			"props": schema.Object(schema.Schema{"text": schema.String()}),
		},
		Editable: staticText,
		Static:   staticText,
		Defaults: func() domain.BlockData {
			return domain.BlockData{Props: map[string]any{"text": "new"}}
		},
	}
}

func TestRegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(leaf()))

	def, err := r.Resolve("Note")
	require.NoError(t, err)
	assert.Equal(t, "Note", def.Type)

	_, err = r.Resolve("Missing")
	assert.True(t, errors.Is(err, domain.ErrTypeNotFound))
	assert.Equal(t, []string{"Note"}, r.Types())
}

func TestRegister_SameTagReplaces(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(leaf()))

	next := leaf()
	next.Defaults = func() domain.BlockData {
		return domain.BlockData{Props: map[string]any{"text": "replaced"}}
	}
	require.NoError(t, r.Register(next))

	data, err := r.Defaults("Note")
	require.NoError(t, err)
	assert.Equal(t, "replaced", data.Props["text"])
	assert.Equal(t, []string{"Note"}, r.Types())
}

func TestRegister_RejectsIncompleteDefinitions(t *testing.T) {
	r := NewRegistry()

	noRender := leaf()
	noRender.Static = nil
	assert.Error(t, r.Register(noRender))

	container := leaf()
	container.Type = "Box"
	container.Container = true
	assert.Error(t, r.Register(container), "containers must declare child sites")

	leafWithSites := leaf()
	leafWithSites.Children = Children
	assert.Error(t, r.Register(leafWithSites))

	assert.Error(t, r.Register(Definition{}))
	assert.Panics(t, func() { r.MustRegister(container) })
}

func TestValidate(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(leaf())

	ok := domain.BlockData{Props: map[string]any{"text": "hi"}}
	assert.NoError(t, r.Validate("Note", ok))

	err := r.Validate("Note", domain.BlockData{Props: map[string]any{"text": 3}})
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "Note", schemaErr.Type)
	assert.Len(t, schema.ValidationErrors(err), 1)

	assert.ErrorIs(t, r.Validate("Ghost", ok), domain.ErrTypeNotFound)
}

func TestDefaults(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(leaf())

	d, err := r.Defaults("Note")
	require.NoError(t, err)
	assert.Equal(t, "new", d.Props["text"])
}

func TestChildSites_LeafAndUnknown(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(leaf())

	_, ok := r.ChildSites("Note")
	assert.False(t, ok)
	_, ok = r.ChildSites("Ghost")
	assert.False(t, ok)
}

func TestFlatChildren(t *testing.T) {
	data := domain.BlockData{
		Style: map[string]any{"backgroundColor": "#ffffff"},
		Props: map[string]any{"childrenIds": []any{"a", "b"}, "other": 1},
	}

	assert.Equal(t, [][]domain.BlockID{{"a", "b"}}, Children.Extract(data))

	same, changed := Children.Rewrite(data, func(_ int, ids []domain.BlockID) []domain.BlockID { return ids })
	assert.False(t, changed)
	assert.Equal(t, data, same)

	out, changed := Children.Rewrite(data, func(_ int, ids []domain.BlockID) []domain.BlockID {
		return []domain.BlockID{ids[1], ids[0]}
	})
	require.True(t, changed)
	assert.Equal(t, []any{"b", "a"}, out.Props["childrenIds"])
	assert.Equal(t, 1, out.Props["other"])
	assert.Equal(t, []any{"a", "b"}, data.Props["childrenIds"], "input untouched")
}

func TestFlatChildren_PreservesSliceShape(t *testing.T) {
	data := domain.BlockData{Props: map[string]any{"childrenIds": []string{"a", "b"}}}
	out, changed := Children.Rewrite(data, func(_ int, _ []domain.BlockID) []domain.BlockID {
		return []domain.BlockID{"a"}
	})
	require.True(t, changed)
	assert.Equal(t, []string{"a"}, out.Props["childrenIds"])
}

func TestFlatChildren_MissingKey(t *testing.T) {
	data := domain.BlockData{}
	assert.Equal(t, [][]domain.BlockID{nil}, Children.Extract(data))

	out, changed := Children.Rewrite(data, func(_ int, ids []domain.BlockID) []domain.BlockID {
		return append(ids, "x")
	})
	require.True(t, changed)
	assert.Equal(t, []any{"x"}, out.Props["childrenIds"])
}

func TestColumnChildren(t *testing.T) {
	var cols ColumnChildren
	data := domain.BlockData{Props: map[string]any{
		"columnsCount": 2,
		"columns": []any{
			map[string]any{"childrenIds": []any{"a", "b"}},
			map[string]any{"childrenIds": []any{"c"}},
		},
	}}

	assert.Equal(t, [][]domain.BlockID{{"a", "b"}, {"c"}}, cols.Extract(data))

	out, changed := cols.Rewrite(data, func(site int, ids []domain.BlockID) []domain.BlockID {
		if site == 1 {
			return nil
		}
		return ids
	})
	require.True(t, changed)
	got := cols.Extract(out)
	assert.Equal(t, []domain.BlockID{"a", "b"}, got[0])
	assert.Empty(t, got[1])
	assert.Equal(t, 2, out.Props["columnsCount"])

	first := out.Props["columns"].([]any)[0]
	assert.Equal(t, data.Props["columns"].([]any)[0], first, "untouched columns are shared")
}

func TestSlotMarker(t *testing.T) {
	assert.Equal(t, "<!--blox:slot:2-->", SlotMarker(2))
}

func TestCatalog(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(leaf()))

	cat := r.Catalog()
	require.Len(t, cat, 1)
	assert.Equal(t, "Note", cat[0].Type)
	assert.False(t, cat[0].Container)
	assert.Equal(t, "new", cat[0].Defaults.Props["text"])

	raw, err := json.Marshal(cat)
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"type": "Note",
		"container": false,
		"schema": {"props": {"text": "string"}},
		"defaults": {"props": {"text": "new"}}
	}]`, string(raw))
}
