// Package parser turns SQL text into the already-resolved-shape
// structures exec consumes: RelAttr, RawCondition and types.Value. It
// never validates attribute existence or types -- that's the resolver's
// job once exec.Select/Insert/Delete/Update runs.
package parser

import (
	"fmt"

	tidbparser "github.com/pingcap/parser"
	"github.com/pingcap/parser/ast"
	ptypes "github.com/pingcap/parser/types"
	driver "github.com/pingcap/tidb/types/parser_driver"

	"github.com/kanari-db/minirel/catalog"
	"github.com/kanari-db/minirel/exec"
	"github.com/kanari-db/minirel/types"
)

type StatementKind int

const (
	Select StatementKind = iota
	Insert
	Delete
	Update
	CreateTable
)

// Statement is the parsed shape of one SQL command, ready to be handed to
// an exec.Engine method.
type Statement struct {
	Kind StatementKind

	// SELECT
	Relations  []string
	SelectList []exec.RelAttr

	// SELECT, DELETE, UPDATE
	Conditions []exec.RawCondition

	// INSERT, DELETE, UPDATE target
	TargetTable string

	// INSERT
	Values []types.Value

	// UPDATE
	UpdateTarget      exec.RelAttr
	UpdateValueIsAttr bool
	UpdateValue       types.Value
	UpdateValueAttr   exec.RelAttr

	// CREATE TABLE
	NewTable string
	ColDefs  []catalog.AttrSpec
}

// Parse tokenizes sql and extracts a single Statement from it.
func Parse(sql string) (*Statement, error) {
	p := tidbparser.New()
	stmtNodes, _, err := p.Parse(sql, "", "")
	if err != nil {
		return nil, err
	}
	if len(stmtNodes) == 0 {
		return nil, fmt.Errorf("parser: empty statement")
	}
	return extract(stmtNodes[0])
}

func extract(node ast.StmtNode) (*Statement, error) {
	switch n := node.(type) {
	case *ast.SelectStmt:
		return extractSelect(n)
	case *ast.InsertStmt:
		return extractInsert(n)
	case *ast.DeleteStmt:
		return extractDelete(n)
	case *ast.UpdateStmt:
		return extractUpdate(n)
	case *ast.CreateTableStmt:
		return extractCreateTable(n)
	}
	return nil, fmt.Errorf("parser: unsupported statement %T", node)
}

func extractSelect(n *ast.SelectStmt) (*Statement, error) {
	stmt := &Statement{Kind: Select}

	if n.From != nil {
		stmt.Relations = tableNames(n.From.TableRefs)
	}

	for _, field := range n.Fields.Fields {
		if field.WildCard != nil {
			continue // empty SelectList means "*", per exec.expandStar
		}
		if col, ok := field.Expr.(*ast.ColumnNameExpr); ok {
			stmt.SelectList = append(stmt.SelectList, columnNameToRelAttr(col.Name))
		}
	}

	if n.Where != nil {
		conds, err := extractWhere(n.Where)
		if err != nil {
			return nil, err
		}
		stmt.Conditions = conds
	}

	return stmt, nil
}

// tableNames walks a FROM clause's join tree collecting every table name.
// A JOIN's ON clause doesn't need special handling here: the execution
// engine drives all relations through one flat nested loop with
// WHERE-only predicates, so ON and WHERE conditions are interchangeable.
func tableNames(node ast.ResultSetNode) []string {
	switch n := node.(type) {
	case *ast.Join:
		var names []string
		if n.Left != nil {
			names = append(names, tableNames(n.Left)...)
		}
		if n.Right != nil {
			names = append(names, tableNames(n.Right)...)
		}
		return names
	case *ast.TableSource:
		if tn, ok := n.Source.(*ast.TableName); ok {
			return []string{tn.Name.String()}
		}
	}
	return nil
}

func extractWhere(expr ast.ExprNode) ([]exec.RawCondition, error) {
	v := newBinaryOpVisitor()
	expr.Accept(v)
	return flatten(v.result)
}

func extractInsert(n *ast.InsertStmt) (*Statement, error) {
	stmt := &Statement{Kind: Insert}

	if tn, ok := n.Table.TableRefs.Left.(*ast.TableSource); ok {
		if name, ok := tn.Source.(*ast.TableName); ok {
			stmt.TargetTable = name.Name.String()
		}
	}

	for _, row := range n.Lists {
		for _, expr := range row {
			if ve, ok := expr.(*driver.ValueExpr); ok {
				stmt.Values = append(stmt.Values, valueExprToValue(ve))
			}
		}
	}

	return stmt, nil
}

func extractDelete(n *ast.DeleteStmt) (*Statement, error) {
	stmt := &Statement{Kind: Delete, Relations: tableNames(n.TableRefs.TableRefs)}
	if len(stmt.Relations) == 1 {
		stmt.TargetTable = stmt.Relations[0]
	}
	if n.Where != nil {
		conds, err := extractWhere(n.Where)
		if err != nil {
			return nil, err
		}
		stmt.Conditions = conds
	}
	return stmt, nil
}

func extractUpdate(n *ast.UpdateStmt) (*Statement, error) {
	stmt := &Statement{Kind: Update, Relations: tableNames(n.TableRefs.TableRefs)}
	if len(stmt.Relations) == 1 {
		stmt.TargetTable = stmt.Relations[0]
	}

	if len(n.List) > 0 {
		assign := n.List[0]
		stmt.UpdateTarget = columnNameToRelAttr(assign.Column)
		switch expr := assign.Expr.(type) {
		case *driver.ValueExpr:
			stmt.UpdateValue = valueExprToValue(expr)
		case *ast.ColumnNameExpr:
			stmt.UpdateValueIsAttr = true
			stmt.UpdateValueAttr = columnNameToRelAttr(expr.Name)
		}
	}

	if n.Where != nil {
		conds, err := extractWhere(n.Where)
		if err != nil {
			return nil, err
		}
		stmt.Conditions = conds
	}
	return stmt, nil
}

func extractCreateTable(n *ast.CreateTableStmt) (*Statement, error) {
	stmt := &Statement{Kind: CreateTable, NewTable: n.Table.Name.String()}

	for _, col := range n.Cols {
		spec := catalog.AttrSpec{Name: col.Name.Name.String()}
		spec.Type, spec.DisplayLength = columnFieldType(col.Tp)
		for _, opt := range col.Options {
			if opt.Tp == ast.ColumnOptionNotNull {
				spec.NotNull = true
			}
		}
		stmt.ColDefs = append(stmt.ColDefs, spec)
	}

	return stmt, nil
}

// columnFieldType maps a tidb column type tag to our three-type model.
// The tag values (1, 3 for integers; 4, 8 for floats) come from the
// source visitor this is adapted from.
func columnFieldType(tp *ptypes.FieldType) (types.TypeID, uint32) {
	if tp == nil {
		return types.String, 255
	}
	switch tp.Tp {
	case 1, 3:
		return types.Integer, 0
	case 4, 8:
		return types.Float, 0
	default:
		length := tp.Flen
		if length <= 0 {
			length = 255
		}
		return types.String, uint32(length)
	}
}
