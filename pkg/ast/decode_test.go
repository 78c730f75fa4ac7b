package ast

import (
	"encoding/json"
	"errors"
	"testing"
)

func decodeJSON(t *testing.T, src string) Statement {
	t.Helper()
	var raw any
	if err := json.Unmarshal([]byte(src), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	stmt, err := DecodeStatement(raw)
	if err != nil {
		t.Fatalf("DecodeStatement: %v", err)
	}
	return stmt
}

func TestDecodeTryWithTaggedValue(t *testing.T) {
	stmt := decodeJSON(t, `{
		"type": "Try",
		"body": {"type": "Throw", "expression": {"type": "Val", "value": {"int": 5}}},
		"binding": "e",
		"handler": {"type": "Print", "prefix": "caught ", "expression": {"type": "Var", "name": "e"}}
	}`)
	try, ok := stmt.(*TryStatement)
	if !ok {
		t.Fatalf("expected *TryStatement, got %T", stmt)
	}
	if try.Binding != "e" {
		t.Fatalf("binding = %q", try.Binding)
	}
	throw, ok := try.Body.(*ThrowStatement)
	if !ok {
		t.Fatalf("expected throw body, got %T", try.Body)
	}
	lit, ok := throw.Expression.(*IntegerLiteral)
	if !ok || lit.Value != 5 {
		t.Fatalf("expected integer literal 5, got %#v", throw.Expression)
	}
	printStmt, ok := try.Handler.(*PrintStatement)
	if !ok || printStmt.Prefix != "caught " {
		t.Fatalf("unexpected handler %#v", try.Handler)
	}
}

func TestDecodeSequenceListNestsRight(t *testing.T) {
	stmt := decodeJSON(t, `{"type": "Sequence", "statements": [
		{"type": "Assign", "name": "x", "value": {"type": "IntLiteral", "value": 1}},
		{"type": "Skip"},
		{"type": "Assign", "name": "y", "value": {"type": "BoolLiteral", "value": true}}
	]}`)
	outer, ok := stmt.(*SequenceStatement)
	if !ok {
		t.Fatalf("expected sequence, got %T", stmt)
	}
	if _, ok := outer.First.(*AssignmentStatement); !ok {
		t.Fatalf("first = %T", outer.First)
	}
	inner, ok := outer.Second.(*SequenceStatement)
	if !ok {
		t.Fatalf("second = %T", outer.Second)
	}
	if _, ok := inner.First.(*SkipStatement); !ok {
		t.Fatalf("inner first = %T", inner.First)
	}
}

func TestDecodeOperatorAcceptsSymbols(t *testing.T) {
	stmt := decodeJSON(t, `{"type": "Assign", "name": "q", "value":
		{"type": "Op", "operator": "<=", "left": {"type": "Var", "name": "a"}, "right": {"type": "Val", "value": {"kind": "int", "value": 2}}}}`)
	assign := stmt.(*AssignmentStatement)
	bin, ok := assign.Value.(*BinaryExpression)
	if !ok || bin.Operator != OpLe {
		t.Fatalf("expected Le operator, got %#v", assign.Value)
	}
}

func TestDecodeRecordsSpans(t *testing.T) {
	stmt := decodeJSON(t, `{"type": "Skip", "span": {"start": {"line": 3, "column": 5}, "end": {"line": 3, "column": 9}}}`)
	if got := stmt.Span().String(); got != "3:5" {
		t.Fatalf("span = %s, want 3:5", got)
	}
}

func TestDecodeIfDefaultsElseToSkip(t *testing.T) {
	stmt := decodeJSON(t, `{"type": "If", "condition": {"type": "BoolLiteral", "value": true}, "then": {"type": "Skip"}}`)
	ifStmt := stmt.(*IfStatement)
	if _, ok := ifStmt.Else.(*SkipStatement); !ok {
		t.Fatalf("else = %T, want *SkipStatement", ifStmt.Else)
	}
}

func TestDecodeReportsPathOfBadNode(t *testing.T) {
	var raw any
	src := `{"type": "While", "condition": {"type": "BoolLiteral", "value": true},
		"body": {"type": "Sequence", "first": {"type": "Skip"}, "second": {"type": "Loop"}}}`
	if err := json.Unmarshal([]byte(src), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	_, err := DecodeStatement(raw)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Path != "body.second" {
		t.Fatalf("path = %q, want body.second", decodeErr.Path)
	}
}

func TestDecodeRejectsFractionalIntegers(t *testing.T) {
	if _, err := DecodeLiteral(map[string]any{"int": 1.5}); err == nil {
		t.Fatalf("expected error for fractional integer")
	}
	if _, err := DecodeLiteral(map[string]any{"int": 1, "bool": true}); err == nil {
		t.Fatalf("expected error for ambiguous tag")
	}
}

func TestDecodePrintPrefix(t *testing.T) {
	expr := map[string]any{"type": "IntLiteral", "value": 1}

	stmt, err := DecodeStatement(map[string]any{"type": "Print", "expression": expr})
	if err != nil {
		t.Fatalf("DecodeStatement without prefix: %v", err)
	}
	if p, ok := stmt.(*PrintStatement); !ok || p.Prefix != "" {
		t.Fatalf("expected print with empty prefix, got %#v", stmt)
	}

	_, err = DecodeStatement(map[string]any{"type": "Print", "prefix": 3, "expression": expr})
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError for numeric prefix, got %v", err)
	}
	if decodeErr.Path != "prefix" {
		t.Fatalf("path = %q, want prefix", decodeErr.Path)
	}
}

func TestEncodedNodesDecodeBack(t *testing.T) {
	src := Seq(
		Assign("x", Int(1)),
		While(Lt(ID("x"), Int(3)), Assign("x", Plus(ID("x"), Int(1)))),
		Print("x = ", ID("x")),
	)
	data, err := json.Marshal(src)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, err := DecodeStatement(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	again, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal again: %v", err)
	}
	if string(again) != string(data) {
		t.Fatalf("document changed across decode:\n%s\n%s", data, again)
	}
}
