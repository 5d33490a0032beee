package schema

import (
	"encoding/json"
	"fmt"
)

// Describe returns a JSON-friendly description of t. Objects become nested
// maps of field descriptions, a slice of objects a one-element list holding
// the element's description. Every other type is described by its Name.
func Describe(t Type) any {
	switch v := t.(type) {
	case *ObjectType:
		return describeFields(v.fields)
	case *SliceType:
		if _, ok := v.elemType.(*ObjectType); ok {
			return []any{Describe(v.elemType)}
		}
	case *OptionalType:
		if _, ok := v.elem.(*ObjectType); ok {
			return Describe(v.elem)
		}
		if s, ok := v.elem.(*SliceType); ok {
			if _, ok := s.elemType.(*ObjectType); ok {
				return Describe(v.elem)
			}
		}
	}
	return t.Name()
}

// MarshalJSON describes the schema field by field. Optional fields whose
// description is structured carry a "?" suffix on their key instead.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	for key, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("field %s: type is nil", key)
		}
	}
	return json.Marshal(describeFields(s))
}

func describeFields(s Schema) map[string]any {
	out := make(map[string]any, len(s))
	for key, typ := range s {
		d := Describe(typ)
		if _, scalar := d.(string); !scalar {
			if _, optional := typ.(*OptionalType); optional {
				key += "?"
			}
		}
		out[key] = d
	}
	return out
}
