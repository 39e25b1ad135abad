package luatable

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"inventory-sync/core/apperrors"

	"github.com/yuin/gopher-lua/ast"
	"github.com/yuin/gopher-lua/parse"
)

// EmptyDocument returns the canonical empty database literal for identifier.
// It is only used as a decode fallback and is never written proactively.
func EmptyDocument(identifier string) string {
	return identifier + "={}"
}

// Decode parses saved variables text and returns the table assigned to identifier.
//
// The text must consist only of assignments of table constructors to identifier; the last
// one wins. Keys and values may be strings, numbers, booleans, or nested tables. Anything
// else, including malformed text or a missing assignment, is a KindCorruptDatabase error.
func Decode(ctx context.Context, text, identifier string) (*Table, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	chunk, err := parse.Parse(strings.NewReader(text), identifier)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindCorruptDatabase, "parse saved variables")
	}
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	var root *Table
	for _, stmt := range chunk {
		expr, err := assignedTable(stmt, identifier)
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.KindCorruptDatabase, "line %d", stmt.Line())
		}
		if root, err = tableFromExpr(expr); err != nil {
			return nil, apperrors.Wrapf(err, apperrors.KindCorruptDatabase, "convert %s", identifier)
		}
	}
	if root == nil {
		return nil, apperrors.CorruptDatabasef("saved variables do not assign a %s table", identifier)
	}
	return root, nil
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}

// assignedTable returns the table constructor of an `identifier = { ... }` statement.
func assignedTable(stmt ast.Stmt, identifier string) (*ast.TableExpr, error) {
	assign, ok := stmt.(*ast.AssignStmt)
	if !ok || len(assign.Lhs) != 1 || len(assign.Rhs) != 1 {
		return nil, fmt.Errorf("expected a single assignment to %s", identifier)
	}
	if ident, ok := assign.Lhs[0].(*ast.IdentExpr); !ok || ident.Value != identifier {
		return nil, fmt.Errorf("only %s may be assigned", identifier)
	}
	table, ok := assign.Rhs[0].(*ast.TableExpr)
	if !ok {
		return nil, fmt.Errorf("%s must be assigned a table", identifier)
	}
	return table, nil
}

// tableFromExpr converts a constructor. Keyed fields are stored in order and positional items
// after them, matching how the client's interpreter builds the same table.
func tableFromExpr(expr *ast.TableExpr) (*Table, error) {
	t := NewTable()

	var items []ast.Expr
	for _, field := range expr.Fields {
		if field.Key == nil {
			items = append(items, field.Value)
			continue
		}
		key, err := keyFromExpr(field.Key)
		if err != nil {
			return nil, err
		}
		value, err := valueFromExpr(field.Value)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", key, err)
		}
		if value == nil {
			delete(t.Fields, key)
			continue
		}
		t.Set(key, value)
	}

	for i, item := range items {
		value, err := valueFromExpr(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		if value == nil {
			continue
		}
		t.Set(NumberKey(float64(i+1)), value)
	}
	return t, nil
}

// valueFromExpr converts a constant expression. nil yields a nil Value.
func valueFromExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.StringExpr:
		return e.Value, nil
	case *ast.TrueExpr:
		return true, nil
	case *ast.FalseExpr:
		return false, nil
	case *ast.NilExpr:
		return nil, nil
	case *ast.TableExpr:
		return tableFromExpr(e)
	default:
		return numberFromExpr(expr)
	}
}

func keyFromExpr(expr ast.Expr) (Key, error) {
	v, err := valueFromExpr(expr)
	if err != nil {
		return Key{}, err
	}
	switch k := v.(type) {
	case string:
		return StringKey(k), nil
	case bool:
		return BoolKey(k), nil
	case float64:
		if math.IsNaN(k) {
			return Key{}, fmt.Errorf("table index is NaN")
		}
		return NumberKey(k), nil
	default:
		return Key{}, fmt.Errorf("unsupported %T key", v)
	}
}

// numberFromExpr accepts numeric literals, negation, and division of constants, which is how
// infinities and NaN are written.
func numberFromExpr(expr ast.Expr) (float64, error) {
	switch e := expr.(type) {
	case *ast.NumberExpr:
		return parseNumber(e.Value)
	case *ast.UnaryMinusOpExpr:
		n, err := numberFromExpr(e.Expr)
		return -n, err
	case *ast.ArithmeticOpExpr:
		if e.Operator != "/" {
			break
		}
		lhs, err := numberFromExpr(e.Lhs)
		if err != nil {
			return 0, err
		}
		rhs, err := numberFromExpr(e.Rhs)
		if err != nil {
			return 0, err
		}
		return lhs / rhs, nil
	}
	return 0, fmt.Errorf("unsupported expression %T", expr)
}

func parseNumber(text string) (float64, error) {
	if len(text) > 2 && (text[:2] == "0x" || text[:2] == "0X") {
		n, err := strconv.ParseUint(text[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", text)
		}
		return float64(n), nil
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", text)
	}
	return n, nil
}
