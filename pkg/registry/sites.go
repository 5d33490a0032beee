package registry

import (
	"fmt"

	"github.com/aretw0/blox/pkg/domain"
)

// ChildSites knows where a container type keeps its child ids.
// A site is one ordered sibling sequence; most containers have exactly one,
// column layouts have one per column.
type ChildSites interface {
	// Extract returns every site's id sequence in site order.
	Extract(data domain.BlockData) [][]domain.BlockID
	// Rewrite passes each site through fn and returns a payload holding the
	// results. The input is never modified. The bool is false when fn left
	// every site unchanged, in which case data is returned as is.
	Rewrite(data domain.BlockData, fn func(site int, ids []domain.BlockID) []domain.BlockID) (domain.BlockData, bool)
}

// SlotMarker is the placeholder a container's markup carries for a site.
func SlotMarker(site int) string {
	return fmt.Sprintf("<!--blox:slot:%d-->", site)
}

// FlatChildren keeps a single sequence under a props key.
type FlatChildren struct {
	Key string
}

// Children is the conventional single-site layout.
var Children = FlatChildren{Key: "childrenIds"}

func (f FlatChildren) Extract(data domain.BlockData) [][]domain.BlockID {
	ids, _ := toIDs(data.Props[f.Key])
	return [][]domain.BlockID{ids}
}

func (f FlatChildren) Rewrite(data domain.BlockData, fn func(int, []domain.BlockID) []domain.BlockID) (domain.BlockData, bool) {
	raw := data.Props[f.Key]
	ids, _ := toIDs(raw)
	next := fn(0, ids)
	if equalIDs(ids, next) {
		return data, false
	}

	props := make(map[string]any, len(data.Props)+1)
	for k, v := range data.Props {
		props[k] = v
	}
	props[f.Key] = fromIDs(raw, next)
	return domain.BlockData{Style: data.Style, Props: props}, true
}

// ColumnChildren keeps one sequence per entry of props.columns, each under
// the entry's childrenIds key.
type ColumnChildren struct{}

func (ColumnChildren) Extract(data domain.BlockData) [][]domain.BlockID {
	cols := columnsOf(data.Props["columns"])
	out := make([][]domain.BlockID, len(cols))
	for i, col := range cols {
		out[i], _ = toIDs(col["childrenIds"])
	}
	return out
}

func (ColumnChildren) Rewrite(data domain.BlockData, fn func(int, []domain.BlockID) []domain.BlockID) (domain.BlockData, bool) {
	cols := columnsOf(data.Props["columns"])
	next := make([]any, len(cols))
	changed := false

	for i, col := range cols {
		raw := col["childrenIds"]
		ids, _ := toIDs(raw)
		rewritten := fn(i, ids)
		if equalIDs(ids, rewritten) {
			next[i] = col
			continue
		}
		changed = true
		entry := make(map[string]any, len(col)+1)
		for k, v := range col {
			entry[k] = v
		}
		entry["childrenIds"] = fromIDs(raw, rewritten)
		next[i] = entry
	}

	if !changed {
		return data, false
	}

	props := make(map[string]any, len(data.Props))
	for k, v := range data.Props {
		props[k] = v
	}
	if _, typed := data.Props["columns"].([]map[string]any); typed {
		typedCols := make([]map[string]any, len(next))
		for i, c := range next {
			typedCols[i] = c.(map[string]any)
		}
		props["columns"] = typedCols
	} else {
		props["columns"] = next
	}
	return domain.BlockData{Style: data.Style, Props: props}, true
}

func columnsOf(raw any) []map[string]any {
	switch cols := raw.(type) {
	case []map[string]any:
		return cols
	case []any:
		out := make([]map[string]any, 0, len(cols))
		for _, c := range cols {
			m, ok := c.(map[string]any)
			if !ok {
				m = map[string]any{}
			}
			out = append(out, m)
		}
		return out
	}
	return nil
}

// toIDs reads an id list in any of the shapes decoding produces.
func toIDs(raw any) ([]domain.BlockID, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, true
	case []domain.BlockID:
		return append([]domain.BlockID(nil), v...), true
	case []string:
		out := make([]domain.BlockID, len(v))
		for i, s := range v {
			out[i] = domain.BlockID(s)
		}
		return out, true
	case []any:
		out := make([]domain.BlockID, 0, len(v))
		for _, e := range v {
			switch s := e.(type) {
			case string:
				out = append(out, domain.BlockID(s))
			case domain.BlockID:
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}

// fromIDs writes ids back in the shape the original value used.
func fromIDs(orig any, ids []domain.BlockID) any {
	switch orig.(type) {
	case []domain.BlockID:
		return append([]domain.BlockID{}, ids...)
	case []string:
		out := make([]string, len(ids))
		for i, id := range ids {
			out[i] = string(id)
		}
		return out
	}
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func equalIDs(a, b []domain.BlockID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
