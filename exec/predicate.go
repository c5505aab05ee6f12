package exec

import "github.com/kanari-db/minirel/types"

// compiledCondition is a RawCondition after both operands have been
// resolved to concrete attributes (or, on the right, a literal value) and
// checked for type compatibility.
type compiledCondition struct {
	lhs       *fieldRef
	op        Op
	rhsIsAttr bool
	rhs       *fieldRef
	rhsValue  types.Value
}

// fieldRef locates one attribute's bytes within the nested-loop join's
// current per-relation tuple snapshot.
type fieldRef struct {
	relIdx int
	typ    types.TypeID
	offset uint32
	size   uint32
	notNull bool
	nullableIndex int32
}

// operand is what satisfy evaluates: a field's raw bytes plus whether it
// is currently null.
type operand struct {
	bytes  []byte
	isNull bool
	typ    types.TypeID
}

// satisfy evaluates one comparison over two already-extracted operands,
// degenerating to false whenever either side is NULL (except for the
// IS NULL/IS NOT NULL operators, which test nullness directly).
func satisfy(lhs operand, op Op, rhs operand) bool {
	switch op {
	case NoOp:
		return true
	case IsNull:
		return lhs.isNull
	case NotNull:
		return !lhs.isNull
	}

	if lhs.isNull || rhs.isNull {
		return false
	}

	switch lhs.typ {
	case types.Integer:
		return compareInt(types.DecodeInt(lhs.bytes), op, types.DecodeInt(rhs.bytes))
	case types.Float:
		return compareFloat(types.DecodeFloat(lhs.bytes), op, types.DecodeFloat(rhs.bytes))
	case types.String:
		return compareOrdering(types.CompareStringBytes(lhs.bytes, rhs.bytes), op)
	}
	return false
}

func compareOrdering(cmp int, op Op) bool {
	switch op {
	case Eq:
		return cmp == 0
	case Ne:
		return cmp != 0
	case Lt:
		return cmp < 0
	case Gt:
		return cmp > 0
	case Le:
		return cmp <= 0
	case Ge:
		return cmp >= 0
	}
	return false
}

func compareInt(a int32, op Op, b int32) bool {
	switch op {
	case Eq:
		return a == b
	case Ne:
		return a != b
	case Lt:
		return a < b
	case Gt:
		return a > b
	case Le:
		return a <= b
	case Ge:
		return a >= b
	}
	return false
}

func compareFloat(a float32, op Op, b float32) bool {
	switch op {
	case Eq:
		return a == b
	case Ne:
		return a != b
	case Lt:
		return a < b
	case Gt:
		return a > b
	case Le:
		return a <= b
	case Ge:
		return a >= b
	}
	return false
}

// extract reads the operand a field ref denotes out of one relation's
// current tuple snapshot.
func extract(ref *fieldRef, data []byte, isNull []bool) operand {
	null := false
	if !ref.notNull {
		null = isNull[ref.nullableIndex]
	}
	var bytes []byte
	if !null {
		bytes = data[ref.offset : ref.offset+ref.size]
	}
	return operand{bytes: bytes, isNull: null, typ: ref.typ}
}

// evalSingleTuple evaluates a compiled condition against a single tuple,
// used by DELETE and UPDATE which only ever have one tuple in scope.
func evalSingleTuple(cond *compiledCondition, data []byte, isNull []bool) bool {
	lhs := extract(cond.lhs, data, isNull)
	var rhs operand
	if cond.rhsIsAttr {
		rhs = extract(cond.rhs, data, isNull)
	} else {
		rhs = valueOperand(cond.rhsValue)
	}
	return satisfy(lhs, cond.op, rhs)
}

func valueOperand(v types.Value) operand {
	if v.IsNull() {
		return operand{isNull: true, typ: v.Type()}
	}
	buf := make([]byte, 4)
	if v.Type() == types.String {
		buf = make([]byte, len(v.ToString())+1)
	}
	v.EncodeInto(buf)
	return operand{bytes: buf, typ: v.Type()}
}
