package mutation

import (
	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/registry"
)

// SiteResolver looks up where a type keeps its children.
type SiteResolver interface {
	ChildSites(blockType string) (registry.ChildSites, bool)
}

// Location is one occurrence of a block id inside a reference site.
type Location struct {
	Owner    domain.BlockID
	Site     int
	Position int
}

// Locate lists every place id is referenced, ordered by owner id, site
// and position.
func Locate(doc domain.Document, sites SiteResolver, id domain.BlockID) []Location {
	var out []Location
	for _, owner := range doc.IDs() {
		cs, ok := sites.ChildSites(doc[owner].Type)
		if !ok {
			continue
		}
		for site, ids := range cs.Extract(doc[owner].Data) {
			for pos, child := range ids {
				if child == id {
					out = append(out, Location{Owner: owner, Site: site, Position: pos})
				}
			}
		}
	}
	return out
}

// WithoutBlock returns doc minus id and every reference to it. The second
// result is false, and doc is returned unchanged, when id is absent.
// The input document is not modified.
func WithoutBlock(doc domain.Document, sites SiteResolver, id domain.BlockID) (domain.Document, bool) {
	if !doc.Has(id) {
		return doc, false
	}

	out := make(domain.Document, len(doc)-1)
	for bid, b := range doc {
		if bid == id {
			continue
		}
		if cs, ok := sites.ChildSites(b.Type); ok {
			if data, changed := cs.Rewrite(b.Data, func(_ int, ids []domain.BlockID) []domain.BlockID {
				return filter(ids, id)
			}); changed {
				b = domain.Block{Type: b.Type, Data: data}
			}
		}
		out[bid] = b
	}
	return out, true
}

// Swapped returns doc with id exchanged with its neighbour in the sequence
// at loc. The second result is false at a boundary.
func Swapped(doc domain.Document, sites SiteResolver, loc Location, dir domain.Direction) (domain.Document, bool) {
	owner := doc[loc.Owner]
	cs, ok := sites.ChildSites(owner.Type)
	if !ok {
		return doc, false
	}

	target := loc.Position - 1
	if dir == domain.DirectionDown {
		target = loc.Position + 1
	}

	data, changed := cs.Rewrite(owner.Data, func(site int, ids []domain.BlockID) []domain.BlockID {
		if site != loc.Site || target < 0 || target >= len(ids) {
			return ids
		}
		next := append([]domain.BlockID(nil), ids...)
		next[loc.Position], next[target] = next[target], next[loc.Position]
		return next
	})
	if !changed {
		return doc, false
	}

	out := make(domain.Document, len(doc))
	for bid, b := range doc {
		out[bid] = b
	}
	out[loc.Owner] = domain.Block{Type: owner.Type, Data: data}
	return out, true
}

// Inserted returns doc with block added under id and referenced from the
// given parent site at index. A negative or out of range index appends.
func Inserted(doc domain.Document, sites SiteResolver, parent domain.BlockID, site, index int, id domain.BlockID, block domain.Block) (domain.Document, error) {
	owner, ok := doc[parent]
	if !ok {
		return nil, domain.ErrBlockNotFound
	}
	cs, ok := sites.ChildSites(owner.Type)
	if !ok {
		return nil, domain.ErrNotContainer
	}
	if site < 0 || site >= len(cs.Extract(owner.Data)) {
		return nil, domain.ErrSiteOutOfRange
	}

	data, _ := cs.Rewrite(owner.Data, func(s int, ids []domain.BlockID) []domain.BlockID {
		if s != site {
			return ids
		}
		at := index
		if at < 0 || at > len(ids) {
			at = len(ids)
		}
		next := make([]domain.BlockID, 0, len(ids)+1)
		next = append(next, ids[:at]...)
		next = append(next, id)
		return append(next, ids[at:]...)
	})

	out := make(domain.Document, len(doc)+1)
	for bid, b := range doc {
		out[bid] = b
	}
	out[parent] = domain.Block{Type: owner.Type, Data: data}
	out[id] = block
	return out, nil
}

func filter(ids []domain.BlockID, drop domain.BlockID) []domain.BlockID {
	out := make([]domain.BlockID, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
