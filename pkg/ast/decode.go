package ast

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// DecodeError reports a malformed node together with the field path that
// leads to it from the document root.
type DecodeError struct {
	Path    string
	Message string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// DecodeStatement builds a statement from a generic document such as the
// result of decoding JSON or YAML into map[string]any.
func DecodeStatement(raw any) (Statement, error) {
	return decodeStatement(raw, "")
}

// DecodeExpression builds an expression from a generic document.
func DecodeExpression(raw any) (Expression, error) {
	return decodeExpression(raw, "")
}

// DecodeNode decodes either a statement or an expression, depending on the
// document's type field.
func DecodeNode(raw any) (Node, error) {
	node, err := asNode(raw, "")
	if err != nil {
		return nil, err
	}
	if isExpressionType(nodeTypeOf(node)) {
		return decodeExpression(raw, "")
	}
	return decodeStatement(raw, "")
}

func decodeError(path, format string, args ...any) error {
	return &DecodeError{Path: path, Message: fmt.Sprintf(format, args...)}
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

func asNode(raw any, path string) (map[string]any, error) {
	switch n := raw.(type) {
	case map[string]any:
		return n, nil
	case map[any]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			key, ok := k.(string)
			if !ok {
				return nil, decodeError(path, "non-string key %v", k)
			}
			out[key] = v
		}
		return out, nil
	case nil:
		return nil, decodeError(path, "missing node")
	default:
		return nil, decodeError(path, "expected node object, got %T", raw)
	}
}

func nodeTypeOf(node map[string]any) string {
	typ, _ := node["type"].(string)
	return typ
}

func isExpressionType(typ string) bool {
	switch typ {
	case "Var", "Val", string(NodeIntegerLiteral), string(NodeBooleanLiteral), string(NodeBinaryExpression):
		return true
	default:
		return false
	}
}

func decodeStatement(raw any, path string) (Statement, error) {
	node, err := asNode(raw, path)
	if err != nil {
		return nil, err
	}
	var stmt Statement
	switch typ := nodeTypeOf(node); typ {
	case string(NodeAssignmentStatement):
		name, err := stringField(node, "name", path)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpression(node["value"], join(path, "value"))
		if err != nil {
			return nil, err
		}
		stmt = NewAssignmentStatement(name, value)
	case string(NodeIfStatement):
		cond, err := decodeExpression(node["condition"], join(path, "condition"))
		if err != nil {
			return nil, err
		}
		then, err := decodeStatement(node["then"], join(path, "then"))
		if err != nil {
			return nil, err
		}
		els, err := decodeOptionalStatement(node, "else", path)
		if err != nil {
			return nil, err
		}
		stmt = NewIfStatement(cond, then, els)
	case string(NodeWhileLoop):
		cond, err := decodeExpression(node["condition"], join(path, "condition"))
		if err != nil {
			return nil, err
		}
		body, err := decodeStatement(node["body"], join(path, "body"))
		if err != nil {
			return nil, err
		}
		stmt = NewWhileLoop(cond, body)
	case string(NodeSequenceStatement), "Seq":
		if list, ok := node["statements"]; ok {
			stmts, err := decodeStatementList(list, join(path, "statements"))
			if err != nil {
				return nil, err
			}
			stmt = Seq(stmts...)
			break
		}
		first, err := decodeStatement(node["first"], join(path, "first"))
		if err != nil {
			return nil, err
		}
		second, err := decodeStatement(node["second"], join(path, "second"))
		if err != nil {
			return nil, err
		}
		stmt = NewSequenceStatement(first, second)
	case string(NodePrintStatement):
		var prefix string
		if v, ok := node["prefix"]; ok && v != nil {
			s, ok := v.(string)
			if !ok {
				return nil, decodeError(join(path, "prefix"), "expected string, got %T", v)
			}
			prefix = s
		}
		expr, err := decodeExpression(node["expression"], join(path, "expression"))
		if err != nil {
			return nil, err
		}
		stmt = NewPrintStatement(prefix, expr)
	case string(NodeThrowStatement):
		expr, err := decodeExpression(node["expression"], join(path, "expression"))
		if err != nil {
			return nil, err
		}
		stmt = NewThrowStatement(expr)
	case string(NodeTryStatement):
		body, err := decodeStatement(node["body"], join(path, "body"))
		if err != nil {
			return nil, err
		}
		binding, err := stringField(node, "binding", path)
		if err != nil {
			return nil, err
		}
		handler, err := decodeOptionalStatement(node, "handler", path)
		if err != nil {
			return nil, err
		}
		stmt = NewTryStatement(body, binding, handler)
	case string(NodeSkipStatement):
		stmt = NewSkipStatement()
	case "":
		return nil, decodeError(path, "node is missing its type")
	default:
		return nil, decodeError(path, "unsupported statement type %q", typ)
	}
	if err := applySpan(stmt, node, path); err != nil {
		return nil, err
	}
	return stmt, nil
}

func decodeOptionalStatement(node map[string]any, field, path string) (Statement, error) {
	raw, ok := node[field]
	if !ok || raw == nil {
		return NewSkipStatement(), nil
	}
	return decodeStatement(raw, join(path, field))
}

func decodeStatementList(raw any, path string) ([]Statement, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, decodeError(path, "expected list, got %T", raw)
	}
	stmts := make([]Statement, 0, len(items))
	for idx, item := range items {
		stmt, err := decodeStatement(item, fmt.Sprintf("%s[%d]", path, idx))
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func decodeExpression(raw any, path string) (Expression, error) {
	node, err := asNode(raw, path)
	if err != nil {
		return nil, err
	}
	var expr Expression
	switch typ := nodeTypeOf(node); typ {
	case "Var":
		name, err := stringField(node, "name", path)
		if err != nil {
			return nil, err
		}
		expr = NewIdentifier(name)
	case "Val":
		lit, err := DecodeLiteral(node["value"])
		if err != nil {
			return nil, decodeError(join(path, "value"), "%v", err)
		}
		expr = lit
	case string(NodeIntegerLiteral):
		n, err := toInt64(node["value"])
		if err != nil {
			return nil, decodeError(join(path, "value"), "%v", err)
		}
		expr = NewIntegerLiteral(n)
	case string(NodeBooleanLiteral):
		b, ok := node["value"].(bool)
		if !ok {
			return nil, decodeError(join(path, "value"), "expected bool, got %T", node["value"])
		}
		expr = NewBooleanLiteral(b)
	case string(NodeBinaryExpression):
		opName, err := stringField(node, "operator", path)
		if err != nil {
			return nil, err
		}
		op, err := ParseOperator(opName)
		if err != nil {
			return nil, decodeError(join(path, "operator"), "%v", err)
		}
		left, err := decodeExpression(node["left"], join(path, "left"))
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(node["right"], join(path, "right"))
		if err != nil {
			return nil, err
		}
		expr = NewBinaryExpression(op, left, right)
	case "":
		return nil, decodeError(path, "node is missing its type")
	default:
		return nil, decodeError(path, "unsupported expression type %q", typ)
	}
	if err := applySpan(expr, node, path); err != nil {
		return nil, err
	}
	return expr, nil
}

// DecodeLiteral reads a tagged value in one of the accepted shapes:
// {int: 3}, {bool: true}, {IntVal: 3}, {BoolVal: true} or {kind: int, value: 3}.
func DecodeLiteral(raw any) (Expression, error) {
	node, err := asNode(raw, "")
	if err != nil {
		return nil, err
	}
	if kind, ok := node["kind"].(string); ok {
		return literalOfKind(kind, node["value"])
	}
	if len(node) != 1 {
		return nil, fmt.Errorf("expected exactly one tag, got %d keys", len(node))
	}
	for kind, value := range node {
		return literalOfKind(kind, value)
	}
	return nil, fmt.Errorf("empty value")
}

func literalOfKind(kind string, value any) (Expression, error) {
	switch strings.ToLower(kind) {
	case "int", "intval", "integer":
		n, err := toInt64(value)
		if err != nil {
			return nil, err
		}
		return NewIntegerLiteral(n), nil
	case "bool", "boolval", "boolean":
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", value)
		}
		return NewBooleanLiteral(b), nil
	default:
		return nil, fmt.Errorf("unknown value kind %q", kind)
	}
}

func stringField(node map[string]any, field, path string) (string, error) {
	s, ok := node[field].(string)
	if !ok || s == "" {
		return "", decodeError(join(path, field), "expected non-empty string")
	}
	return s, nil
}

func applySpan(target Node, node map[string]any, path string) error {
	raw, ok := node["span"]
	if !ok || raw == nil {
		return nil
	}
	spanNode, err := asNode(raw, join(path, "span"))
	if err != nil {
		return err
	}
	start, err := decodePosition(spanNode["start"], join(path, "span.start"))
	if err != nil {
		return err
	}
	end, err := decodePosition(spanNode["end"], join(path, "span.end"))
	if err != nil {
		return err
	}
	SetSpan(target, Span{Start: start, End: end})
	return nil
}

func decodePosition(raw any, path string) (Position, error) {
	if raw == nil {
		return Position{}, nil
	}
	node, err := asNode(raw, path)
	if err != nil {
		return Position{}, err
	}
	line, err := toInt64(node["line"])
	if err != nil {
		return Position{}, decodeError(join(path, "line"), "%v", err)
	}
	col, err := toInt64(node["column"])
	if err != nil {
		return Position{}, decodeError(join(path, "column"), "%v", err)
	}
	return Position{Line: int(line), Column: int(col)}, nil
}

func toInt64(raw any) (int64, error) {
	switch n := raw.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", n)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	default:
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
}
