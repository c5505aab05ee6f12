// Command minirel is a REPL front end over the query execution core: it
// reads a line of SQL, parses it, and dispatches to the catalog or the
// execution engine.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kanari-db/minirel/catalog"
	"github.com/kanari-db/minirel/exec"
	"github.com/kanari-db/minirel/parser"
	"github.com/kanari-db/minirel/planner/optimizer"
	"github.com/kanari-db/minirel/record"
	"github.com/kanari-db/minirel/storage/disk"
)

func main() {
	dm := disk.NewManager()
	cat := catalog.NewManager(dm)
	recs := record.NewManager(dm)
	engine := exec.NewEngine(cat, recs)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("minirel> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("minirel> ")
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if err := run(engine, cat, line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		fmt.Print("minirel> ")
	}
}

func run(engine *exec.Engine, cat *catalog.Manager, sql string) error {
	if strings.HasPrefix(strings.ToUpper(sql), "EXPLAIN ") {
		return explain(sql[len("EXPLAIN "):])
	}

	stmt, err := parser.Parse(sql)
	if err != nil {
		return err
	}

	switch stmt.Kind {
	case parser.Select:
		return engine.Select(os.Stdout, stmt.Relations, stmt.SelectList, stmt.Conditions)
	case parser.Insert:
		return engine.Insert(stmt.TargetTable, stmt.Values)
	case parser.Delete:
		_, err := engine.Delete(os.Stdout, stmt.TargetTable, stmt.Conditions)
		return err
	case parser.Update:
		_, err := engine.Update(os.Stdout, stmt.TargetTable, stmt.UpdateTarget, stmt.UpdateValue, stmt.UpdateValueIsAttr, stmt.UpdateValueAttr, stmt.Conditions)
		return err
	case parser.CreateTable:
		return cat.CreateRelation(stmt.NewTable, stmt.ColDefs)
	}
	return fmt.Errorf("unsupported statement kind")
}

func explain(sql string) error {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return err
	}
	if stmt.Kind != parser.Select {
		return fmt.Errorf("EXPLAIN only supports SELECT")
	}
	plan := optimizer.Plan(stmt.Relations, stmt.Conditions)
	optimizer.Print(plan, 0, func(s string) { fmt.Println(s) })
	return nil
}
