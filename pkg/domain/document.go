package domain

import "sort"

// Document is a flat dictionary of blocks. The tree is encoded by child id
// lists stored inside container payloads.
type Document map[BlockID]Block

// NewDocument returns a document holding an empty layout root.
func NewDocument() Document {
	return Document{
		RootID: {
			Type: TypeEmailLayout,
			Data: BlockData{
				Props: map[string]any{"childrenIds": []any{}},
			},
		},
	}
}

// Root returns the layout block.
func (d Document) Root() (Block, bool) {
	b, ok := d[RootID]
	return b, ok
}

// Has reports whether id names a block in the document.
func (d Document) Has(id BlockID) bool {
	_, ok := d[id]
	return ok
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for id, b := range d {
		out[id] = b.Clone()
	}
	return out
}

// IDs returns the block ids in lexical order.
func (d Document) IDs() []BlockID {
	ids := make([]BlockID, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
