package domain

// BlockID identifies a block within a document.
type BlockID string

// RootID is the id of the document's layout block.
const RootID BlockID = "root"

// Block type tags shipped with the builder.
const (
	TypeEmailLayout      = "EmailLayout"
	TypeContainer        = "Container"
	TypeColumnsContainer = "ColumnsContainer"
	TypeContentBlock     = "ContentBlock"
	TypeTextEditorBlock  = "TextEditorBlock"
	TypeImage            = "Image"
	TypeText             = "Text"
	TypeHeading          = "Heading"
	TypeButton           = "Button"
	TypeHTML             = "Html"
	TypeAvatar           = "Avatar"
	TypeDivider          = "Divider"
	TypeSpacer           = "Spacer"
)

// BlockData is the payload of a block. Both halves are loosely typed maps
// whose shape is dictated by the block type's schema.
type BlockData struct {
	Style map[string]any `json:"style,omitempty" yaml:"style,omitempty"`
	Props map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
}

// Fields returns the payload as a single map keyed by "style" and "props",
// the shape block schemas validate against. Nil halves are omitted.
func (d BlockData) Fields() map[string]any {
	out := make(map[string]any, 2)
	if d.Style != nil {
		out["style"] = d.Style
	}
	if d.Props != nil {
		out["props"] = d.Props
	}
	return out
}

// Clone returns a deep copy of the payload.
func (d BlockData) Clone() BlockData {
	return BlockData{
		Style: cloneMap(d.Style),
		Props: cloneMap(d.Props),
	}
}

// Block is a typed node of the document tree.
type Block struct {
	Type string    `json:"type" yaml:"type"`
	Data BlockData `json:"data" yaml:"data"`
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	return Block{Type: b.Type, Data: b.Data.Clone()}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case []BlockID:
		return append([]BlockID(nil), t...)
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, e := range t {
			out[i] = cloneMap(e)
		}
		return out
	default:
		return v
	}
}
