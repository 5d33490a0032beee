// Package validator checks the shape of a document tree: dangling
// references, unreachable blocks, blocks with several parents and cycles.
// Payload schemas are checked by the registry, not here.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/registry"
)

// SiteResolver looks up where a block type keeps its children.
type SiteResolver interface {
	ChildSites(blockType string) (registry.ChildSites, bool)
}

// Kind classifies an Issue.
type Kind string

const (
	KindMissing Kind = "missing" // referenced but absent
	KindOrphan  Kind = "orphan"  // present but unreachable from the root
	KindShared  Kind = "shared"  // referenced from more than one site
	KindCycle   Kind = "cycle"   // an ancestor of itself
)

// Issue is one structural problem.
type Issue struct {
	Kind    Kind             `json:"kind"`
	BlockID domain.BlockID   `json:"block_id"`
	Owners  []domain.BlockID `json:"owners,omitempty"`
}

func (i Issue) String() string {
	switch i.Kind {
	case KindMissing:
		return fmt.Sprintf("missing block '%s' referenced by %s", i.BlockID, joinIDs(i.Owners))
	case KindOrphan:
		return fmt.Sprintf("block '%s' is not reachable from root", i.BlockID)
	case KindShared:
		return fmt.Sprintf("block '%s' has several parents: %s", i.BlockID, joinIDs(i.Owners))
	case KindCycle:
		return fmt.Sprintf("block '%s' contains itself via %s", i.BlockID, joinIDs(i.Owners))
	}
	return string(i.Kind) + " " + string(i.BlockID)
}

// ValidateTree crawls the document from the root and reports every
// structural issue, ordered by kind and then block id.
func ValidateTree(doc domain.Document, sites SiteResolver) []Issue {
	if _, ok := doc.Root(); !ok {
		return []Issue{{Kind: KindMissing, BlockID: domain.RootID}}
	}

	// Every reference, reachable or not.
	refs := map[domain.BlockID][]domain.BlockID{}
	for _, id := range doc.IDs() {
		cs, ok := sites.ChildSites(doc[id].Type)
		if !ok {
			continue
		}
		for _, ids := range cs.Extract(doc[id].Data) {
			for _, child := range ids {
				refs[child] = append(refs[child], id)
			}
		}
	}

	var issues []Issue
	for _, child := range sortedKeys(refs) {
		owners := refs[child]
		if !doc.Has(child) {
			issues = append(issues, Issue{Kind: KindMissing, BlockID: child, Owners: dedupe(owners)})
		}
		if len(owners) > 1 {
			issues = append(issues, Issue{Kind: KindShared, BlockID: child, Owners: owners})
		}
	}

	visited := map[domain.BlockID]bool{}
	cycles := map[domain.BlockID][]domain.BlockID{}
	crawl(doc, sites, domain.RootID, nil, visited, cycles)

	for _, id := range doc.IDs() {
		if !visited[id] {
			issues = append(issues, Issue{Kind: KindOrphan, BlockID: id})
		}
	}
	for _, id := range sortedKeys(cycles) {
		issues = append(issues, Issue{Kind: KindCycle, BlockID: id, Owners: cycles[id]})
	}

	sort.SliceStable(issues, func(a, b int) bool {
		if issues[a].Kind != issues[b].Kind {
			return issues[a].Kind < issues[b].Kind
		}
		return issues[a].BlockID < issues[b].BlockID
	})
	return issues
}

func crawl(doc domain.Document, sites SiteResolver, id domain.BlockID, path []domain.BlockID, visited map[domain.BlockID]bool, cycles map[domain.BlockID][]domain.BlockID) {
	for i, p := range path {
		if p == id {
			if _, seen := cycles[id]; !seen {
				cycles[id] = append([]domain.BlockID(nil), path[i:]...)
			}
			return
		}
	}
	block, ok := doc[id]
	if !ok {
		return
	}
	if visited[id] {
		// Shared subtrees are reported once, from the refs pass.
		return
	}
	visited[id] = true

	cs, ok := sites.ChildSites(block.Type)
	if !ok {
		return
	}
	path = append(path, id)
	for _, ids := range cs.Extract(block.Data) {
		for _, child := range ids {
			crawl(doc, sites, child, path, visited, cycles)
		}
	}
}

// Err folds issues into a single error, or nil when there are none.
func Err(issues []Issue) error {
	if len(issues) == 0 {
		return nil
	}
	lines := make([]string, len(issues))
	for i, is := range issues {
		lines[i] = is.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(issues), strings.Join(lines, "\n- "))
}

func sortedKeys(m map[domain.BlockID][]domain.BlockID) []domain.BlockID {
	keys := make([]domain.BlockID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })
	return keys
}

func dedupe(ids []domain.BlockID) []domain.BlockID {
	seen := map[domain.BlockID]bool{}
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func joinIDs(ids []domain.BlockID) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = "'" + string(id) + "'"
	}
	return strings.Join(s, ", ")
}
