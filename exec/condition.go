package exec

import "github.com/kanari-db/minirel/types"

// Op is a predicate operator recognized by the compiled condition model.
type Op int

const (
	NoOp Op = iota
	Eq
	Ne
	Lt
	Gt
	Le
	Ge
	IsNull
	NotNull
)

// RelAttr is a possibly-qualified attribute reference as written by a
// caller before resolution -- Rel is empty when unqualified.
type RelAttr struct {
	Rel  string
	Attr string
}

// RawCondition is a single WHERE-clause comparison before its operands
// have been resolved against a FROM list.
type RawCondition struct {
	Lhs      RelAttr
	Op       Op
	RhsIsAttr bool
	RhsAttr  RelAttr
	RhsValue types.Value
}
