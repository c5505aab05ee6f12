// Package optimizer builds a diagnostic, non-authoritative plan tree for a
// SELECT statement. It is never consulted by exec.Select -- the only
// executor is the naive nested-loop driver -- but a CLI can print this
// tree (an EXPLAIN-style command) to show which predicates the optimizer
// would have pushed down as equi-joins had a cost-based planner existed.
package optimizer

import (
	stack "github.com/golang-collections/collections/stack"
	pair "github.com/notEpsilon/go-pair"

	"github.com/kanari-db/minirel/exec"
)

// Kind tags a plan node's shape. AutoIndex and Search are never produced
// by this build (index selection is out of scope); they exist so the
// tagged variant matches the shape a cost-based planner would eventually
// need.
type Kind int

const (
	Scan Kind = iota
	Search
	AutoIndex
	Final
)

// Node is a plan tree node by value -- the tree here is always small and
// strictly nested, so there's no need for shared ownership of children.
type Node struct {
	Kind     Kind
	Relation string
	Children []Node
	// EquiJoins records the (leftAttr, rightAttr) pairs this node's
	// subtree could have used as a join key, discovered by walking the
	// WHERE clause below.
	EquiJoins []pair.Pair[string, string]
}

// Plan walks relNames and a flat WHERE clause of raw conditions and
// produces a Final node over one Scan per relation, annotated with
// whatever equi-join pairs the conditions reveal. It never touches the
// record layer and its output feeds nothing but diagnostics.
func Plan(relNames []string, conds []exec.RawCondition) Node {
	scans := make([]Node, len(relNames))
	for i, r := range relNames {
		scans[i] = Node{Kind: Scan, Relation: r}
	}

	equals := findEquiJoins(conds)

	return Node{Kind: Final, Children: scans, EquiJoins: equals}
}

// findEquiJoins walks the condition list depth-first with an explicit
// stack (rather than recursion) and collects every attr = attr condition
// as a candidate join key.
func findEquiJoins(conds []exec.RawCondition) []pair.Pair[string, string] {
	equals := make([]pair.Pair[string, string], 0)

	s := stack.New()
	for i := len(conds) - 1; i >= 0; i-- {
		s.Push(conds[i])
	}

	for s.Len() > 0 {
		c := s.Pop().(exec.RawCondition)
		if c.Op == exec.Eq && c.RhsIsAttr {
			left := qualify(c.Lhs)
			right := qualify(c.RhsAttr)
			equals = append(equals, pair.Pair[string, string]{First: left, Second: right})
		}
	}

	return equals
}

func qualify(ra exec.RelAttr) string {
	if ra.Rel == "" {
		return ra.Attr
	}
	return ra.Rel + "." + ra.Attr
}

// Print renders a plan tree as indented text, for an EXPLAIN command.
func Print(n Node, depth int, out func(string)) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	switch n.Kind {
	case Scan:
		out(indent + "Scan(" + n.Relation + ")")
	case Final:
		out(indent + "Final")
		for _, c := range n.Children {
			Print(c, depth+1, out)
		}
		for _, eq := range n.EquiJoins {
			out(indent + "  equi-join: " + eq.First + " = " + eq.Second)
		}
	default:
		out(indent + "Node")
	}
}
