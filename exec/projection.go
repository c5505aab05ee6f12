package exec

import "github.com/kanari-db/minirel/catalog"

func upperAlign4(size uint32) uint32 {
	return (size + 3) &^ 3
}

// projectedField is one column of a SELECT's freshly computed output
// layout: its source (which relation, which attribute) plus its position
// in the projected tuple.
type projectedField struct {
	source        *fieldRef
	displayLength uint32
	notNull       bool
	// offset/nullableIndex are positions in the *output* buffer, distinct
	// from source.offset/source.nullableIndex which locate the field in
	// its owning relation's tuple.
	outOffset        uint32
	outNullableIndex int32
	relName          string
	attrName         string
}

// buildProjection lays out the output tuple for a SELECT: each field gets
// an offset padded to 4-byte alignment, and nullable fields get fresh
// nullable_index values 0..k-1 in select order.
func buildProjection(attrs []*catalog.DataAttrInfo, relIdx []int) ([]projectedField, uint32, int) {
	fields := make([]projectedField, len(attrs))
	var offset uint32
	var nullableCount int32
	for i, a := range attrs {
		size := upperAlign4(a.Size)
		nullableIndex := int32(-1)
		if !a.NotNull {
			nullableIndex = nullableCount
			nullableCount++
		}
		fields[i] = projectedField{
			source: &fieldRef{
				relIdx:        relIdx[i],
				typ:           a.Type,
				offset:        a.Offset,
				size:          a.Size,
				notNull:       a.NotNull,
				nullableIndex: a.NullableIndex,
			},
			displayLength:    a.DisplayLength,
			notNull:          a.NotNull,
			outOffset:        offset,
			outNullableIndex: nullableIndex,
			relName:          a.RelName,
			attrName:         a.AttrName,
		}
		offset += size
	}
	return fields, offset, int(nullableCount)
}

// materialize copies one candidate tuple's projected columns into a reused
// output buffer and null-bit array.
func materialize(fields []projectedField, data [][]byte, isNull [][]bool, outBuf []byte, outNull []bool) {
	for i := range outNull {
		outNull[i] = false
	}
	for _, f := range fields {
		src := extract(f.source, data[f.source.relIdx], isNull[f.source.relIdx])
		if f.outNullableIndex >= 0 {
			outNull[f.outNullableIndex] = src.isNull
		}
		if !src.isNull {
			copy(outBuf[f.outOffset:f.outOffset+f.source.size], src.bytes)
		}
	}
}
