package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventBlockPatched     EventType = "block_patched"
	EventDocumentReplaced EventType = "document_replaced"
	EventSelectionChanged EventType = "selection_changed"
)

// Event is delivered to store subscribers after every committed write.
type Event struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      EventType     `json:"type"`
	Diff      *DocumentDiff `json:"diff,omitempty"`
	Selection Selection     `json:"selection"`
}

// MutationOp names a structural edit.
type MutationOp string

const (
	OpDelete MutationOp = "delete"
	OpMove   MutationOp = "move"
	OpInsert MutationOp = "insert"
)

// Warning describes input that was skipped rather than failed on.
type Warning struct {
	// Source is the component reporting ("render", "export", "mutation").
	Source  string  `json:"source"`
	BlockID BlockID `json:"block_id,omitempty"`
	Type    string  `json:"type,omitempty"`
	Reason  string  `json:"reason"`
}

// LifecycleHooks defines callbacks for observability.
// Every field is optional.
type LifecycleHooks struct {
	OnPatch    func(id BlockID, blockType string)
	OnReject   func(id BlockID, blockType string, err error)
	OnMutation func(op MutationOp, id BlockID, applied bool)
	OnWarning  func(Warning)
}

// Patch invokes OnPatch when set.
func (h LifecycleHooks) Patch(id BlockID, blockType string) {
	if h.OnPatch != nil {
		h.OnPatch(id, blockType)
	}
}

// Reject invokes OnReject when set.
func (h LifecycleHooks) Reject(id BlockID, blockType string, err error) {
	if h.OnReject != nil {
		h.OnReject(id, blockType, err)
	}
}

// Mutation invokes OnMutation when set.
func (h LifecycleHooks) Mutation(op MutationOp, id BlockID, applied bool) {
	if h.OnMutation != nil {
		h.OnMutation(op, id, applied)
	}
}

// Warn invokes OnWarning when set.
func (h LifecycleHooks) Warn(w Warning) {
	if h.OnWarning != nil {
		h.OnWarning(w)
	}
}

// Merge chains two hook sets so both fire.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnPatch: func(id BlockID, t string) {
			h.Patch(id, t)
			other.Patch(id, t)
		},
		OnReject: func(id BlockID, t string, err error) {
			h.Reject(id, t, err)
			other.Reject(id, t, err)
		},
		OnMutation: func(op MutationOp, id BlockID, applied bool) {
			h.Mutation(op, id, applied)
			other.Mutation(op, id, applied)
		},
		OnWarning: func(w Warning) {
			h.Warn(w)
			other.Warn(w)
		},
	}
}
