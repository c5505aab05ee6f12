package exec

import (
	"testing"

	"github.com/kanari-db/minirel/catalog"
	"github.com/kanari-db/minirel/types"
)

func TestBuildProjectionAlignsAndRenumbers(t *testing.T) {
	id := &catalog.DataAttrInfo{RelName: "student", AttrName: "sid", Type: types.Integer, Size: 4, Offset: 0, NotNull: true, NullableIndex: -1}
	name := &catalog.DataAttrInfo{RelName: "student", AttrName: "name", Type: types.String, Size: 9, Offset: 4, NullableIndex: 3}

	fields, outSize, nullableCount := buildProjection([]*catalog.DataAttrInfo{id, name}, []int{0, 0})

	if fields[0].outOffset != 0 {
		t.Fatalf("id.outOffset = %d, want 0", fields[0].outOffset)
	}
	if fields[1].outOffset != 4 {
		t.Fatalf("name.outOffset = %d, want 4 (id padded to 4-byte multiple)", fields[1].outOffset)
	}
	if fields[1].outNullableIndex != 0 {
		t.Fatalf("name.outNullableIndex = %d, want 0 (renumbered from source 3)", fields[1].outNullableIndex)
	}
	if nullableCount != 1 {
		t.Fatalf("nullableCount = %d, want 1", nullableCount)
	}
	wantSize := upperAlign4(4) + upperAlign4(9)
	if outSize != wantSize {
		t.Fatalf("outSize = %d, want %d", outSize, wantSize)
	}
}

func TestMaterializeCopiesFieldsAndNulls(t *testing.T) {
	id := &catalog.DataAttrInfo{RelName: "student", AttrName: "sid", Type: types.Integer, Size: 4, Offset: 0, NotNull: true, NullableIndex: -1}
	gpa := &catalog.DataAttrInfo{RelName: "student", AttrName: "gpa", Type: types.Float, Size: 4, Offset: 4, NullableIndex: 0}

	fields, outSize, nullableCount := buildProjection([]*catalog.DataAttrInfo{id, gpa}, []int{0, 0})

	tuple := make([]byte, 8)
	types.NewInteger(7).EncodeInto(tuple[0:4])
	isNull := []bool{true} // gpa is null

	outBuf := make([]byte, outSize)
	outNull := make([]bool, nullableCount)
	materialize(fields, [][]byte{tuple}, [][]bool{isNull}, outBuf, outNull)

	if got := types.DecodeInt(outBuf[fields[0].outOffset : fields[0].outOffset+4]); got != 7 {
		t.Fatalf("projected sid = %d, want 7", got)
	}
	if !outNull[fields[1].outNullableIndex] {
		t.Fatalf("projected gpa should still read as null")
	}
}

func TestUpperAlign4(t *testing.T) {
	cases := map[uint32]uint32{0: 0, 1: 4, 3: 4, 4: 4, 5: 8, 9: 12}
	for in, want := range cases {
		if got := upperAlign4(in); got != want {
			t.Errorf("upperAlign4(%d) = %d, want %d", in, got, want)
		}
	}
}
