package exec

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/kanari-db/minirel/catalog"
)

// resolver builds the qualified/unqualified attribute maps used to resolve
// a possibly-unqualified attribute reference against the set of relations
// referenced by one statement's FROM list.
type resolver struct {
	relNames    mapset.Set[string]
	relIndex    map[string]int
	qualified   map[[2]string]*catalog.DataAttrInfo
	unqualified map[string]*catalog.DataAttrInfo
	count       map[string]int
}

func newResolver(relNames []string, attrsPerRel [][]catalog.DataAttrInfo) *resolver {
	r := &resolver{
		relNames:    mapset.NewSet[string](),
		relIndex:    make(map[string]int),
		qualified:   make(map[[2]string]*catalog.DataAttrInfo),
		unqualified: make(map[string]*catalog.DataAttrInfo),
		count:       make(map[string]int),
	}
	for i, rel := range relNames {
		r.relNames.Add(rel)
		r.relIndex[rel] = i
		for j := range attrsPerRel[i] {
			attr := &attrsPerRel[i][j]
			r.qualified[[2]string{rel, attr.AttrName}] = attr
			r.count[attr.AttrName]++
			r.unqualified[attr.AttrName] = attr
		}
	}
	return r
}

// resolve returns the descriptor for ra and the index (into the FROM list)
// of the relation it belongs to.
func (r *resolver) resolve(ra RelAttr) (*catalog.DataAttrInfo, int, error) {
	if ra.Rel != "" {
		if !r.relNames.Contains(ra.Rel) {
			return nil, 0, newError(AttrNotExist, "relation %q not in FROM list", ra.Rel)
		}
		attr, ok := r.qualified[[2]string{ra.Rel, ra.Attr}]
		if !ok {
			return nil, 0, newError(AttrNotExist, "%s.%s does not exist", ra.Rel, ra.Attr)
		}
		return attr, r.relIndex[ra.Rel], nil
	}

	switch r.count[ra.Attr] {
	case 0:
		return nil, 0, newError(AttrNotExist, "%s does not exist", ra.Attr)
	case 1:
		attr := r.unqualified[ra.Attr]
		return attr, r.relIndex[attr.RelName], nil
	default:
		return nil, 0, newError(AmbiguousAttrName, "%s is ambiguous across %v", ra.Attr, r.relNames.ToSlice())
	}
}

// expandStar rewrites the "*" select list into every attribute of every
// referenced relation, in relation order then attribute order.
func expandStar(relNames []string, attrsPerRel [][]catalog.DataAttrInfo) []RelAttr {
	var out []RelAttr
	for i, rel := range relNames {
		for _, attr := range attrsPerRel[i] {
			out = append(out, RelAttr{Rel: rel, Attr: attr.AttrName})
		}
	}
	return out
}
