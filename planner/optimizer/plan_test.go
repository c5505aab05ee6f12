package optimizer

import (
	"strings"
	"testing"

	"github.com/kanari-db/minirel/exec"
	"github.com/kanari-db/minirel/types"
)

func TestPlanBuildsOneScanPerRelation(t *testing.T) {
	n := Plan([]string{"student", "enrolled"}, nil)
	if n.Kind != Final {
		t.Fatalf("root Kind = %v, want Final", n.Kind)
	}
	if len(n.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2", len(n.Children))
	}
	if n.Children[0].Relation != "student" || n.Children[1].Relation != "enrolled" {
		t.Fatalf("scan order = %+v, want [student enrolled]", n.Children)
	}
}

func TestPlanFindsEquiJoins(t *testing.T) {
	conds := []exec.RawCondition{
		{Lhs: exec.RelAttr{Rel: "student", Attr: "sid"}, Op: exec.Eq, RhsIsAttr: true, RhsAttr: exec.RelAttr{Rel: "enrolled", Attr: "sid"}},
		{Lhs: exec.RelAttr{Rel: "student", Attr: "gpa"}, Op: exec.Gt, RhsValue: types.NewFloat(3.0)},
	}
	n := Plan([]string{"student", "enrolled"}, conds)
	if len(n.EquiJoins) != 1 {
		t.Fatalf("EquiJoins = %+v, want exactly one equi-join", n.EquiJoins)
	}
	if n.EquiJoins[0].First != "student.sid" || n.EquiJoins[0].Second != "enrolled.sid" {
		t.Fatalf("EquiJoins[0] = %+v, want student.sid = enrolled.sid", n.EquiJoins[0])
	}
}

func TestPrintRendersScansAndJoins(t *testing.T) {
	n := Plan([]string{"student"}, nil)
	var lines []string
	Print(n, 0, func(s string) { lines = append(lines, s) })
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "Scan(student)") {
		t.Fatalf("expected Scan(student) in output, got %q", joined)
	}
}
