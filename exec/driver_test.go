package exec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kanari-db/minirel/catalog"
	"github.com/kanari-db/minirel/record"
	"github.com/kanari-db/minirel/storage/disk"
	"github.com/kanari-db/minirel/types"
)

func newTestEngine(t *testing.T) (*Engine, *catalog.Manager) {
	t.Helper()
	dm := disk.NewManager()
	cat := catalog.NewManager(dm)
	recs := record.NewManager(dm)
	return NewEngine(cat, recs), cat
}

func createStudentAndCourse(t *testing.T, cat *catalog.Manager) {
	t.Helper()
	if err := cat.CreateRelation("student", []catalog.AttrSpec{
		{Name: "sid", Type: types.Integer, NotNull: true},
		{Name: "name", Type: types.String, DisplayLength: 20},
		{Name: "gpa", Type: types.Float},
	}); err != nil {
		t.Fatalf("CreateRelation(student): %v", err)
	}
	if err := cat.CreateRelation("enrolled", []catalog.AttrSpec{
		{Name: "sid", Type: types.Integer, NotNull: true},
		{Name: "course", Type: types.String, DisplayLength: 10, NotNull: true},
	}); err != nil {
		t.Fatalf("CreateRelation(enrolled): %v", err)
	}
}

func TestInsertSelectRoundTrip(t *testing.T) {
	e, cat := newTestEngine(t)
	createStudentAndCourse(t, cat)

	if err := e.Insert("student", []types.Value{types.NewInteger(1), types.NewString("alice"), types.NewFloat(3.5)}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := e.Insert("student", []types.Value{types.NewInteger(2), types.NewString("bob"), types.NewNull()}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var out bytes.Buffer
	if err := e.Select(&out, []string{"student"}, nil, nil); err != nil {
		t.Fatalf("Select: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "alice") || !strings.Contains(got, "bob") {
		t.Fatalf("Select output missing inserted rows: %q", got)
	}
	if !strings.Contains(got, "2 tuple(s).") {
		t.Fatalf("Select output missing row count: %q", got)
	}
	if !strings.Contains(got, "NULL") {
		t.Fatalf("Select output should render bob's NULL gpa: %q", got)
	}
}

func TestSelectWithWhereCondition(t *testing.T) {
	e, cat := newTestEngine(t)
	createStudentAndCourse(t, cat)
	e.Insert("student", []types.Value{types.NewInteger(1), types.NewString("alice"), types.NewFloat(3.5)})
	e.Insert("student", []types.Value{types.NewInteger(2), types.NewString("bob"), types.NewFloat(2.0)})

	var out bytes.Buffer
	conds := []RawCondition{{Lhs: RelAttr{Attr: "sid"}, Op: Eq, RhsValue: types.NewInteger(2)}}
	if err := e.Select(&out, []string{"student"}, nil, conds); err != nil {
		t.Fatalf("Select: %v", err)
	}
	got := out.String()
	if strings.Contains(got, "alice") {
		t.Fatalf("filtered Select should not include alice: %q", got)
	}
	if !strings.Contains(got, "bob") {
		t.Fatalf("filtered Select should include bob: %q", got)
	}
}

func TestSelectJoinAcrossRelations(t *testing.T) {
	e, cat := newTestEngine(t)
	createStudentAndCourse(t, cat)
	e.Insert("student", []types.Value{types.NewInteger(1), types.NewString("alice"), types.NewFloat(3.5)})
	e.Insert("student", []types.Value{types.NewInteger(2), types.NewString("bob"), types.NewFloat(2.0)})
	e.Insert("enrolled", []types.Value{types.NewInteger(1), types.NewString("cs101")})

	var out bytes.Buffer
	conds := []RawCondition{{
		Lhs:       RelAttr{Rel: "student", Attr: "sid"},
		Op:        Eq,
		RhsIsAttr: true,
		RhsAttr:   RelAttr{Rel: "enrolled", Attr: "sid"},
	}}
	selectList := []RelAttr{{Rel: "student", Attr: "name"}, {Rel: "enrolled", Attr: "course"}}
	if err := e.Select(&out, []string{"student", "enrolled"}, selectList, conds); err != nil {
		t.Fatalf("Select: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "alice") || !strings.Contains(got, "cs101") {
		t.Fatalf("join result missing expected row: %q", got)
	}
	if strings.Contains(got, "bob") {
		t.Fatalf("join result should not include unmatched bob: %q", got)
	}
	if !strings.Contains(got, "1 tuple(s).") {
		t.Fatalf("expected exactly one joined row: %q", got)
	}
}

func TestSelectOverEmptyRelationShortCircuits(t *testing.T) {
	e, cat := newTestEngine(t)
	createStudentAndCourse(t, cat)
	e.Insert("student", []types.Value{types.NewInteger(1), types.NewString("alice"), types.NewFloat(3.5)})

	var out bytes.Buffer
	if err := e.Select(&out, []string{"student", "enrolled"}, nil, nil); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !strings.Contains(out.String(), "0 tuple(s).") {
		t.Fatalf("expected zero rows joining against an empty relation: %q", out.String())
	}
}

func TestInsertRejectsWrongArityAndType(t *testing.T) {
	e, cat := newTestEngine(t)
	createStudentAndCourse(t, cat)

	if err := e.Insert("student", []types.Value{types.NewInteger(1)}); err == nil {
		t.Fatalf("expected AttrCountMismatch error")
	}
	if err := e.Insert("student", []types.Value{types.NewInteger(1), types.NewInteger(2), types.NewFloat(1)}); err == nil {
		t.Fatalf("expected ValueTypesMismatch error for name")
	}
}

func TestInsertRejectsNullForNotNull(t *testing.T) {
	e, cat := newTestEngine(t)
	createStudentAndCourse(t, cat)
	if err := e.Insert("student", []types.Value{types.NewNull(), types.NewString("x"), types.NewNull()}); err == nil {
		t.Fatalf("expected error inserting NULL into NOT NULL sid")
	}
}

func TestInsertRejectsReservedRelation(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Insert("relcat", []types.Value{types.NewInteger(1)}); err == nil {
		t.Fatalf("expected Forbidden error inserting into relcat")
	}
}

func TestInsertRejectsStringTooLong(t *testing.T) {
	e, cat := newTestEngine(t)
	createStudentAndCourse(t, cat)
	if err := e.Insert("student", []types.Value{types.NewInteger(1), types.NewString(strings.Repeat("x", 100)), types.NewFloat(1)}); err == nil {
		t.Fatalf("expected StringValTooLong error")
	}
}

func TestDeleteRemovesMatchingRows(t *testing.T) {
	e, cat := newTestEngine(t)
	createStudentAndCourse(t, cat)
	e.Insert("student", []types.Value{types.NewInteger(1), types.NewString("alice"), types.NewFloat(3.5)})
	e.Insert("student", []types.Value{types.NewInteger(2), types.NewString("bob"), types.NewFloat(2.0)})

	var out bytes.Buffer
	conds := []RawCondition{{Lhs: RelAttr{Attr: "sid"}, Op: Eq, RhsValue: types.NewInteger(1)}}
	n, err := e.Delete(&out, "student", conds)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("Delete deleted %d rows, want 1", n)
	}

	var sel bytes.Buffer
	e.Select(&sel, []string{"student"}, nil, nil)
	if strings.Contains(sel.String(), "alice") {
		t.Fatalf("alice should have been deleted: %q", sel.String())
	}
	if !strings.Contains(sel.String(), "bob") {
		t.Fatalf("bob should survive: %q", sel.String())
	}
}

func TestUpdateRewritesMatchingRows(t *testing.T) {
	e, cat := newTestEngine(t)
	createStudentAndCourse(t, cat)
	e.Insert("student", []types.Value{types.NewInteger(1), types.NewString("alice"), types.NewFloat(3.5)})

	conds := []RawCondition{{Lhs: RelAttr{Attr: "sid"}, Op: Eq, RhsValue: types.NewInteger(1)}}
	var out bytes.Buffer
	n, err := e.Update(&out, "student", RelAttr{Attr: "gpa"}, types.NewFloat(4.0), false, RelAttr{}, conds)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if n != 1 {
		t.Fatalf("Update updated %d rows, want 1", n)
	}

	var sel bytes.Buffer
	e.Select(&sel, []string{"student"}, nil, nil)
	if !strings.Contains(sel.String(), "4.000000") {
		t.Fatalf("expected updated gpa in output: %q", sel.String())
	}
}

func TestUpdateRejectsNullIntoNotNull(t *testing.T) {
	e, cat := newTestEngine(t)
	createStudentAndCourse(t, cat)
	e.Insert("student", []types.Value{types.NewInteger(1), types.NewString("alice"), types.NewFloat(3.5)})

	var out bytes.Buffer
	_, err := e.Update(&out, "student", RelAttr{Attr: "sid"}, types.NewNull(), false, RelAttr{}, nil)
	if err == nil {
		t.Fatalf("expected AttrIsNotNull error")
	}
}

func TestUpdateRejectsStringTooLong(t *testing.T) {
	e, cat := newTestEngine(t)
	createStudentAndCourse(t, cat)
	e.Insert("student", []types.Value{types.NewInteger(1), types.NewString("alice"), types.NewFloat(3.5)})

	var out bytes.Buffer
	_, err := e.Update(&out, "student", RelAttr{Attr: "name"}, types.NewString(strings.Repeat("y", 100)), false, RelAttr{}, nil)
	if err == nil {
		t.Fatalf("expected StringValTooLong error")
	}
}
