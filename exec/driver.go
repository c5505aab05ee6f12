// Package exec is the execution driver: Select, Insert, Delete and Update,
// each orchestrating record-layer scans, predicate evaluation, projection
// and output.
package exec

import (
	"errors"
	"fmt"
	"io"

	"github.com/kanari-db/minirel/catalog"
	"github.com/kanari-db/minirel/common"
	"github.com/kanari-db/minirel/printer"
	"github.com/kanari-db/minirel/record"
	"github.com/kanari-db/minirel/types"
)

// Engine wires the catalog and record managers together for the four
// entry points. It holds no state of its own between statements.
type Engine struct {
	Catalog *catalog.Manager
	Records *record.Manager
}

func NewEngine(cat *catalog.Manager, rec *record.Manager) *Engine {
	return &Engine{Catalog: cat, Records: rec}
}

type relState struct {
	name  string
	attrs []catalog.DataAttrInfo
	fh    *record.FileHandle
	scan  *record.FileScan
}

func (e *Engine) openRelation(name string) (*relState, error) {
	attrs, err := e.Catalog.GetDataAttrInfo(name, false)
	if err != nil {
		return nil, err
	}
	entry, err := e.Catalog.GetRelEntry(name)
	if err != nil {
		return nil, err
	}
	firstPageID, err := e.Catalog.FirstPageID(name)
	if err != nil {
		return nil, err
	}
	nullableCount, err := e.Catalog.NullableCount(name)
	if err != nil {
		return nil, err
	}
	fh, err := e.Records.OpenFile(firstPageID, entry.TupleLength, nullableCount)
	if err != nil {
		return nil, err
	}
	return &relState{name: name, attrs: attrs, fh: fh}, nil
}

// closeAll releases every scan and file handle a partially-opened Select
// has opened so far, on both success and error exit paths.
func (e *Engine) closeAll(rels []*relState) {
	for _, r := range rels {
		if r.scan != nil {
			r.scan.CloseScan()
		}
		if r.fh != nil {
			e.Records.CloseFile(r.fh)
		}
	}
}

// Select implements a naive nested-loop join driver: one open scan per
// relation, advanced innermost-first, with the outermost relation's EOF
// ending the whole scan.
func (e *Engine) Select(out io.Writer, relNames []string, selectList []RelAttr, rawConds []RawCondition) error {
	rels := make([]*relState, len(relNames))
	for i, name := range relNames {
		r, err := e.openRelation(name)
		if err != nil {
			e.closeAll(rels[:i])
			return err
		}
		rels[i] = r
	}
	defer e.closeAll(rels)

	attrsPerRel := make([][]catalog.DataAttrInfo, len(rels))
	for i, r := range rels {
		attrsPerRel[i] = r.attrs
	}
	res := newResolver(relNames, attrsPerRel)

	if len(selectList) == 0 {
		selectList = expandStar(relNames, attrsPerRel)
	}

	projAttrs := make([]*catalog.DataAttrInfo, len(selectList))
	projRelIdx := make([]int, len(selectList))
	for i, ra := range selectList {
		attr, relIdx, err := res.resolve(ra)
		if err != nil {
			return err
		}
		projAttrs[i] = attr
		projRelIdx[i] = relIdx
	}

	conds, err := compileConditions(res, rawConds)
	if err != nil {
		return err
	}

	fields, outSize, outNullableCount := buildProjection(projAttrs, projRelIdx)
	outBuf := make([]byte, outSize)
	outNull := make([]bool, outNullableCount)

	p := printer.FromAttrs(out, projAttrs)
	p.PrintHeader()

	sumRecords := int64(1)
	for _, r := range rels {
		entry, _ := e.Catalog.GetRelEntry(r.name)
		sumRecords *= int64(entry.RecordCount)
	}

	n := len(rels)
	data := make([][]byte, n)
	isNull := make([][]bool, n)

	ptr := 0
	rels[0].scan = rels[0].fh.OpenScan()
	var cnt int64

	for ptr >= 0 {
		rec, err := rels[ptr].scan.GetNextRec()
		if err != nil {
			if errors.Is(err, record.ErrEOF) {
				rels[ptr].scan.CloseScan()
				rels[ptr].scan = nil
				ptr--
				continue
			}
			return err
		}

		data[ptr] = rec.Data
		isNull[ptr] = rec.IsNull

		if ptr+1 < n {
			rels[ptr+1].scan = rels[ptr+1].fh.OpenScan()
			ptr++
			continue
		}

		cnt++
		if sumRecords > 0 {
			common.ShPrintf(common.Progress, "[%d%%] %d/%d\r", int(cnt*100/sumRecords), cnt, sumRecords)
		}

		ok := true
		for i := range conds {
			if !evalJoinCondition(&conds[i], data, isNull) {
				ok = false
				break
			}
		}
		if ok {
			materialize(fields, data, isNull, outBuf, outNull)
			rows, nulls := splitProjected(fields, outBuf, outNull)
			p.Print(rows, nulls)
		}
	}

	if common.EnableDebug {
		common.Assert(cnt == sumRecords, "select visited %d tuples, want %d", cnt, sumRecords)
	}

	p.PrintFooter()
	return nil
}

// splitProjected slices the materialized output buffer back into one
// []byte per column, the shape printer.Print expects.
func splitProjected(fields []projectedField, buf []byte, null []bool) ([][]byte, []bool) {
	data := make([][]byte, len(fields))
	isNull := make([]bool, len(fields))
	for i, f := range fields {
		size := upperAlign4(f.source.size)
		data[i] = buf[f.outOffset : f.outOffset+size]
		if f.outNullableIndex >= 0 {
			isNull[i] = null[f.outNullableIndex]
		}
	}
	return data, isNull
}

func compileConditions(res *resolver, raw []RawCondition) ([]compiledCondition, error) {
	out := make([]compiledCondition, len(raw))
	for i, rc := range raw {
		lhsAttr, lhsRelIdx, err := res.resolve(rc.Lhs)
		if err != nil {
			return nil, err
		}
		lhsRef := attrToFieldRef(lhsAttr, lhsRelIdx)

		cc := compiledCondition{lhs: lhsRef, op: rc.Op}

		switch rc.Op {
		case IsNull, NotNull:
			// no rhs to validate
		default:
			if rc.RhsIsAttr {
				rhsAttr, rhsRelIdx, err := res.resolve(rc.RhsAttr)
				if err != nil {
					return nil, err
				}
				if rhsAttr.Type != lhsAttr.Type {
					return nil, newError(AttrTypesMismatch, "%s.%s (%s) vs %s.%s (%s)",
						lhsAttr.RelName, lhsAttr.AttrName, lhsAttr.Type,
						rhsAttr.RelName, rhsAttr.AttrName, rhsAttr.Type)
				}
				cc.rhsIsAttr = true
				cc.rhs = attrToFieldRef(rhsAttr, rhsRelIdx)
			} else {
				if !types.CanAssign(lhsAttr.Type, rc.RhsValue.Type(), !lhsAttr.NotNull) {
					return nil, newError(ValueTypesMismatch, "value of type %s not assignable to %s.%s (%s)",
						rc.RhsValue.Type(), lhsAttr.RelName, lhsAttr.AttrName, lhsAttr.Type)
				}
				cc.rhsValue = rc.RhsValue
				if lhsAttr.Type == types.Float && cc.rhsValue.Type() == types.Integer {
					cc.rhsValue = types.NewFloat(float32(cc.rhsValue.ToInteger()))
				}
			}
		}

		out[i] = cc
	}
	return out, nil
}

func attrToFieldRef(a *catalog.DataAttrInfo, relIdx int) *fieldRef {
	return &fieldRef{
		relIdx:        relIdx,
		typ:           a.Type,
		offset:        a.Offset,
		size:          a.Size,
		notNull:       a.NotNull,
		nullableIndex: a.NullableIndex,
	}
}

// evalJoinCondition evaluates a compiled condition against the nested
// loop's current per-relation tuple snapshots, indexing each operand by
// the relation it was resolved against.
func evalJoinCondition(cc *compiledCondition, data [][]byte, isNull [][]bool) bool {
	lhs := extract(cc.lhs, data[cc.lhs.relIdx], isNull[cc.lhs.relIdx])
	var rhs operand
	if cc.rhsIsAttr {
		rhs = extract(cc.rhs, data[cc.rhs.relIdx], isNull[cc.rhs.relIdx])
	} else {
		rhs = valueOperand(cc.rhsValue)
	}
	return satisfy(lhs, cc.op, rhs)
}

// Insert appends one tuple to name, rejecting the reserved catalog
// relations and validating value counts/types/lengths before writing
// anything.
func (e *Engine) Insert(name string, values []types.Value) error {
	if e.Catalog.IsReserved(name) {
		return newError(Forbidden, "cannot insert into %q", name)
	}

	attrs, err := e.Catalog.GetDataAttrInfo(name, true)
	if err != nil {
		return err
	}
	if len(values) != len(attrs) {
		return newError(AttrCountMismatch, "relation %s has %d attributes, got %d values", name, len(attrs), len(values))
	}

	nullableCount, err := e.Catalog.NullableCount(name)
	if err != nil {
		return err
	}
	entry, err := e.Catalog.GetRelEntry(name)
	if err != nil {
		return err
	}

	data := make([]byte, entry.TupleLength)
	isNull := make([]bool, nullableCount)

	for i, attr := range attrs {
		v := values[i]
		if !types.CanAssign(attr.Type, v.Type(), !attr.NotNull) {
			return newError(ValueTypesMismatch, "value of type %s not assignable to %s.%s (%s)", v.Type(), name, attr.AttrName, attr.Type)
		}
		if v.IsNull() {
			isNull[attr.NullableIndex] = true
			continue
		}
		if attr.Type == types.String && len(v.ToString()) > int(attr.DisplayLength) {
			return newError(StringValTooLong, "%s.%s accepts at most %d bytes", name, attr.AttrName, attr.DisplayLength)
		}
		if attr.Type == types.Float && v.Type() == types.Integer {
			v = types.NewFloat(float32(v.ToInteger()))
		}
		v.EncodeInto(data[attr.Offset : attr.Offset+attr.Size])
	}

	firstPageID, err := e.Catalog.FirstPageID(name)
	if err != nil {
		return err
	}
	fh, err := e.Records.OpenFile(firstPageID, entry.TupleLength, nullableCount)
	if err != nil {
		return err
	}
	defer e.Records.CloseFile(fh)

	if _, err := fh.InsertRec(data, isNull); err != nil {
		return err
	}

	entry.RecordCount++
	return e.Catalog.UpdateRelEntry(name, entry)
}

// Delete removes every row of name matching rawConds, reporting the
// number deleted.
func (e *Engine) Delete(out io.Writer, name string, rawConds []RawCondition) (int, error) {
	if e.Catalog.IsReserved(name) {
		return 0, newError(Forbidden, "cannot delete from %q", name)
	}

	r, err := e.openRelation(name)
	if err != nil {
		return 0, err
	}
	defer e.Records.CloseFile(r.fh)

	res := newResolver([]string{name}, [][]catalog.DataAttrInfo{r.attrs})
	conds, err := compileConditions(res, rawConds)
	if err != nil {
		return 0, err
	}

	scan := r.fh.OpenScan()
	defer scan.CloseScan()

	deleted := 0
	for {
		rec, err := scan.GetNextRec()
		if err != nil {
			if errors.Is(err, record.ErrEOF) {
				break
			}
			return deleted, err
		}
		match := true
		for i := range conds {
			if !evalSingleTuple(&conds[i], rec.Data, rec.IsNull) {
				match = false
				break
			}
		}
		if match {
			if err := r.fh.DeleteRec(rec.Rid); err != nil {
				return deleted, err
			}
			deleted++
		}
	}

	entry, err := e.Catalog.GetRelEntry(name)
	if err != nil {
		return deleted, err
	}
	entry.RecordCount -= int32(deleted)
	if err := e.Catalog.UpdateRelEntry(name, entry); err != nil {
		return deleted, err
	}

	fmt.Fprintf(out, "%d tuple(s) deleted.\n", deleted)
	return deleted, nil
}

// Update rewrites one field of every row of name matching rawConds.
func (e *Engine) Update(out io.Writer, name string, target RelAttr, newValue types.Value, newValueIsAttr bool, newValueAttr RelAttr, rawConds []RawCondition) (int, error) {
	if e.Catalog.IsReserved(name) {
		return 0, newError(Forbidden, "cannot update %q", name)
	}

	r, err := e.openRelation(name)
	if err != nil {
		return 0, err
	}
	defer e.Records.CloseFile(r.fh)

	res := newResolver([]string{name}, [][]catalog.DataAttrInfo{r.attrs})
	conds, err := compileConditions(res, rawConds)
	if err != nil {
		return 0, err
	}

	targetAttr, _, err := res.resolve(target)
	if err != nil {
		return 0, err
	}

	var srcAttr *catalog.DataAttrInfo
	if newValueIsAttr {
		srcAttr, _, err = res.resolve(newValueAttr)
		if err != nil {
			return 0, err
		}
		if srcAttr.Type != targetAttr.Type {
			return 0, newError(AttrTypesMismatch, "%s.%s (%s) vs %s.%s (%s)",
				targetAttr.RelName, targetAttr.AttrName, targetAttr.Type,
				srcAttr.RelName, srcAttr.AttrName, srcAttr.Type)
		}
	} else {
		if newValue.IsNull() && targetAttr.NotNull {
			return 0, newError(AttrIsNotNull, "%s.%s is NOT NULL", name, targetAttr.AttrName)
		}
		if !types.CanAssign(targetAttr.Type, newValue.Type(), !targetAttr.NotNull) {
			return 0, newError(ValueTypesMismatch, "value of type %s not assignable to %s.%s (%s)", newValue.Type(), name, targetAttr.AttrName, targetAttr.Type)
		}
		if !newValue.IsNull() && targetAttr.Type == types.String && len(newValue.ToString()) > int(targetAttr.DisplayLength) {
			// Enforce the same length check INSERT does, rather than
			// silently truncating.
			return 0, newError(StringValTooLong, "%s.%s accepts at most %d bytes", name, targetAttr.AttrName, targetAttr.DisplayLength)
		}
		if targetAttr.Type == types.Float && newValue.Type() == types.Integer {
			newValue = types.NewFloat(float32(newValue.ToInteger()))
		}
	}

	scan := r.fh.OpenScan()
	defer scan.CloseScan()

	updated := 0
	for {
		rec, err := scan.GetNextRec()
		if err != nil {
			if errors.Is(err, record.ErrEOF) {
				break
			}
			return updated, err
		}
		match := true
		for i := range conds {
			if !evalSingleTuple(&conds[i], rec.Data, rec.IsNull) {
				match = false
				break
			}
		}
		if !match {
			continue
		}

		if newValueIsAttr {
			srcOp := extract(attrToFieldRef(srcAttr, 0), rec.Data, rec.IsNull)
			if targetAttr.NullableIndex >= 0 {
				rec.IsNull[targetAttr.NullableIndex] = srcOp.isNull
			}
			if !srcOp.isNull {
				copy(rec.Data[targetAttr.Offset:targetAttr.Offset+targetAttr.Size], srcOp.bytes)
			}
		} else if newValue.IsNull() {
			rec.IsNull[targetAttr.NullableIndex] = true
		} else {
			if targetAttr.NullableIndex >= 0 {
				rec.IsNull[targetAttr.NullableIndex] = false
			}
			newValue.EncodeInto(rec.Data[targetAttr.Offset : targetAttr.Offset+targetAttr.Size])
		}

		if err := r.fh.UpdateRec(rec); err != nil {
			return updated, err
		}
		updated++
	}

	fmt.Fprintf(out, "%d tuple(s) updated.\n", updated)
	return updated, nil
}
