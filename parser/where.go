package parser

import (
	"fmt"

	"github.com/pingcap/parser/ast"
	"github.com/pingcap/parser/opcode"
	driver "github.com/pingcap/tidb/types/parser_driver"

	"github.com/kanari-db/minirel/exec"
)

// whereExpr is an intermediate WHERE-clause tree: either a leaf
// comparison (already shaped like exec.RawCondition) or an AND/OR of two
// subtrees. Only conjunctions survive flattening -- the compiled
// condition model has no disjunction, so WHERE clauses are a flat
// AND-list of conditions.
type whereExpr struct {
	isLeaf bool
	leaf   exec.RawCondition
	isOr   bool
	left   *whereExpr
	right  *whereExpr
}

// binaryOpVisitor walks one WHERE/ON/assignment expression tree and
// builds a whereExpr using an Enter-based recursive visitor.
type binaryOpVisitor struct {
	result *whereExpr
}

func newBinaryOpVisitor() *binaryOpVisitor {
	return &binaryOpVisitor{result: &whereExpr{}}
}

func (v *binaryOpVisitor) Enter(in ast.Node) (ast.Node, bool) {
	switch node := in.(type) {
	case *ast.BinaryOperationExpr:
		lv := newBinaryOpVisitor()
		node.L.Accept(lv)
		rv := newBinaryOpVisitor()
		node.R.Accept(rv)

		if node.Op == opcode.LogicAnd || node.Op == opcode.LogicOr {
			v.result = &whereExpr{isOr: node.Op == opcode.LogicOr, left: lv.result, right: rv.result}
			return in, true
		}

		op, err := opToExecOp(node.Op)
		if err != nil {
			panic(err)
		}
		cond := exec.RawCondition{Op: op}
		setOperand(&cond, true, lv.result)
		setOperand(&cond, false, rv.result)
		v.result = &whereExpr{isLeaf: true, leaf: cond}
		return in, true

	case *ast.IsNullExpr:
		cdv := newChildDataVisitor()
		node.Expr.Accept(cdv)
		op := exec.IsNull
		if node.Not {
			op = exec.NotNull
		}
		cond := exec.RawCondition{Op: op, Lhs: cdv.attrs[0]}
		v.result = &whereExpr{isLeaf: true, leaf: cond}
		return in, true

	case *ast.ColumnNameExpr:
		v.result = &whereExpr{leaf: exec.RawCondition{Lhs: columnNameToRelAttr(node.Name)}}
		return in, true

	case *driver.ValueExpr:
		v.result = &whereExpr{leaf: exec.RawCondition{RhsValue: valueExprToValue(node)}}
		return in, true
	}
	return in, false
}

func (v *binaryOpVisitor) Leave(in ast.Node) (ast.Node, bool) {
	return in, true
}

// setOperand copies an operand sub-visitor's carried column/value onto
// cond, distinguishing the LHS (always a column) from the RHS (a column
// or a literal).
func setOperand(cond *exec.RawCondition, isLeft bool, sub *whereExpr) {
	if sub.isLeaf {
		return
	}
	if isLeft {
		cond.Lhs = sub.leaf.Lhs
		return
	}
	if sub.leaf.Lhs != (exec.RelAttr{}) {
		cond.RhsIsAttr = true
		cond.RhsAttr = sub.leaf.Lhs
	} else {
		cond.RhsValue = sub.leaf.RhsValue
	}
}

func opToExecOp(op opcode.Op) (exec.Op, error) {
	switch op {
	case opcode.EQ:
		return exec.Eq, nil
	case opcode.NE:
		return exec.Ne, nil
	case opcode.LT:
		return exec.Lt, nil
	case opcode.GT:
		return exec.Gt, nil
	case opcode.LE:
		return exec.Le, nil
	case opcode.GE:
		return exec.Ge, nil
	}
	return exec.NoOp, fmt.Errorf("parser: unsupported operator %v", op)
}

func columnNameToRelAttr(name *ast.ColumnName) exec.RelAttr {
	return exec.RelAttr{Rel: name.Table.String(), Attr: name.Name.String()}
}

// flatten collects every leaf comparison reachable through AND nodes.
// An OR anywhere in the tree makes the whole clause unsupported.
func flatten(w *whereExpr) ([]exec.RawCondition, error) {
	if w == nil {
		return nil, nil
	}
	if w.isLeaf {
		return []exec.RawCondition{w.leaf}, nil
	}
	if w.left == nil && w.right == nil {
		return nil, nil
	}
	if w.isOr {
		return nil, fmt.Errorf("parser: OR in WHERE clause is not supported")
	}
	l, err := flatten(w.left)
	if err != nil {
		return nil, err
	}
	r, err := flatten(w.right)
	if err != nil {
		return nil, err
	}
	return append(l, r...), nil
}

// childDataVisitor collects every column reference under a node, used for
// IS NULL's single operand.
type childDataVisitor struct {
	attrs []exec.RelAttr
}

func newChildDataVisitor() *childDataVisitor {
	return &childDataVisitor{}
}

func (v *childDataVisitor) Enter(in ast.Node) (ast.Node, bool) {
	if node, ok := in.(*ast.ColumnName); ok {
		v.attrs = append(v.attrs, exec.RelAttr{Rel: node.Table.String(), Attr: node.Name.String()})
		return in, true
	}
	return in, false
}

func (v *childDataVisitor) Leave(in ast.Node) (ast.Node, bool) {
	return in, true
}
