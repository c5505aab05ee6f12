package parser

import "github.com/pingcap/parser/ast"

// Visitor is the same shape as ast.Visitor; kept as our own type so the
// sub-visitors below don't need to import ast just to spell the interface.
type Visitor interface {
	Enter(n ast.Node) (node ast.Node, skipChildren bool)
	Leave(n ast.Node) (node ast.Node, ok bool)
}
