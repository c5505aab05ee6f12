package exec

import (
	"testing"

	"github.com/kanari-db/minirel/catalog"
	"github.com/kanari-db/minirel/types"
)

func studentAttrs() []catalog.DataAttrInfo {
	return []catalog.DataAttrInfo{
		{RelName: "student", AttrName: "sid", Type: types.Integer, NotNull: true, NullableIndex: -1},
		{RelName: "student", AttrName: "name", Type: types.String, NullableIndex: 0},
	}
}

func courseAttrs() []catalog.DataAttrInfo {
	return []catalog.DataAttrInfo{
		{RelName: "course", AttrName: "sid", Type: types.Integer, NotNull: true, NullableIndex: -1},
		{RelName: "course", AttrName: "title", Type: types.String, NullableIndex: 0},
	}
}

func TestResolveQualified(t *testing.T) {
	r := newResolver([]string{"student"}, [][]catalog.DataAttrInfo{studentAttrs()})
	attr, relIdx, err := r.resolve(RelAttr{Rel: "student", Attr: "name"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if attr.AttrName != "name" || relIdx != 0 {
		t.Fatalf("resolve(student.name) = %+v, relIdx %d", attr, relIdx)
	}
}

func TestResolveUnqualifiedUnique(t *testing.T) {
	r := newResolver([]string{"student"}, [][]catalog.DataAttrInfo{studentAttrs()})
	attr, _, err := r.resolve(RelAttr{Attr: "name"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if attr.AttrName != "name" {
		t.Fatalf("resolve(name) = %+v", attr)
	}
}

func TestResolveAmbiguous(t *testing.T) {
	r := newResolver([]string{"student", "course"},
		[][]catalog.DataAttrInfo{studentAttrs(), courseAttrs()})
	_, _, err := r.resolve(RelAttr{Attr: "sid"})
	if err == nil {
		t.Fatalf("expected ambiguous-attribute error")
	}
	execErr, ok := err.(*Error)
	if !ok || execErr.Code != AmbiguousAttrName {
		t.Fatalf("expected AmbiguousAttrName error, got %v", err)
	}
}

func TestResolveNotExist(t *testing.T) {
	r := newResolver([]string{"student"}, [][]catalog.DataAttrInfo{studentAttrs()})
	if _, _, err := r.resolve(RelAttr{Attr: "gpa"}); err == nil {
		t.Fatalf("expected not-exist error")
	}
	if _, _, err := r.resolve(RelAttr{Rel: "course", Attr: "sid"}); err == nil {
		t.Fatalf("expected not-exist error for unreferenced relation")
	}
}

func TestExpandStar(t *testing.T) {
	got := expandStar([]string{"student", "course"},
		[][]catalog.DataAttrInfo{studentAttrs(), courseAttrs()})
	want := []RelAttr{
		{Rel: "student", Attr: "sid"},
		{Rel: "student", Attr: "name"},
		{Rel: "course", Attr: "sid"},
		{Rel: "course", Attr: "title"},
	}
	if len(got) != len(want) {
		t.Fatalf("expandStar returned %d attrs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expandStar[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
