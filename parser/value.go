package parser

import (
	"strconv"
	"strings"

	driver "github.com/pingcap/tidb/types/parser_driver"

	"github.com/kanari-db/minirel/types"
)

// valueExprToValue converts a literal AST node into a types.Value. The
// tidb driver's Datum doesn't expose a clean typed accessor without
// importing its internal kind constants, so the literal's rendered string
// is re-parsed instead; kinds 1 and 8 are its int and float kinds,
// everything else is treated as a string.
func valueExprToValue(expr *driver.ValueExpr) types.Value {
	text := expr.String()
	fields := strings.SplitN(text, " ", 2)
	raw := text
	if len(fields) == 2 {
		raw = fields[1]
	}

	switch expr.Datum.Kind() {
	case 1:
		i, _ := strconv.Atoi(raw)
		return types.NewInteger(int32(i))
	case 8:
		f, _ := strconv.ParseFloat(raw, 32)
		return types.NewFloat(float32(f))
	default:
		return types.NewString(strings.Trim(raw, "'\""))
	}
}
