package domain

import "reflect"

// DocumentDiff represents the changes between two documents.
// It is designed to be serialized to JSON for partial updates on the client.
type DocumentDiff struct {
	// Changed holds added or modified blocks.
	Changed map[BlockID]Block `json:"changed,omitempty"`
	// Removed lists ids present before and absent after.
	Removed []BlockID `json:"removed,omitempty"`
}

// Diff calculates the difference between oldDoc and newDoc.
// A nil oldDoc yields a diff carrying the entire newDoc (initial load).
// Returns nil when nothing changed.
func Diff(oldDoc, newDoc Document) *DocumentDiff {
	diff := &DocumentDiff{}

	for id, nb := range newDoc {
		ob, exists := oldDoc[id]
		if exists && ob.Type == nb.Type && reflect.DeepEqual(ob.Data, nb.Data) {
			continue
		}
		if diff.Changed == nil {
			diff.Changed = make(map[BlockID]Block)
		}
		diff.Changed[id] = nb
	}

	for _, id := range oldDoc.IDs() {
		if _, exists := newDoc[id]; !exists {
			diff.Removed = append(diff.Removed, id)
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *DocumentDiff) IsEmpty() bool {
	return d == nil || (len(d.Changed) == 0 && len(d.Removed) == 0)
}
