package ast

import (
	"fmt"
	"strings"
)

// Operator names a binary operation.
type Operator string

const (
	OpPlus   Operator = "Plus"
	OpMinus  Operator = "Minus"
	OpTimes  Operator = "Times"
	OpDivide Operator = "Divide"
	OpGt     Operator = "Gt"
	OpGe     Operator = "Ge"
	OpLt     Operator = "Lt"
	OpLe     Operator = "Le"
)

var operatorSymbols = map[Operator]string{
	OpPlus:   "+",
	OpMinus:  "-",
	OpTimes:  "*",
	OpDivide: "/",
	OpGt:     ">",
	OpGe:     ">=",
	OpLt:     "<",
	OpLe:     "<=",
}

// Symbol returns the infix spelling of the operator.
func (op Operator) Symbol() string {
	if sym, ok := operatorSymbols[op]; ok {
		return sym
	}
	return string(op)
}

// IsArithmetic reports whether the operator produces an integer.
func (op Operator) IsArithmetic() bool {
	switch op {
	case OpPlus, OpMinus, OpTimes, OpDivide:
		return true
	default:
		return false
	}
}

// IsComparison reports whether the operator produces a boolean.
func (op Operator) IsComparison() bool {
	switch op {
	case OpGt, OpGe, OpLt, OpLe:
		return true
	default:
		return false
	}
}

// ParseOperator accepts either the operator name ("Plus", case-insensitive)
// or its symbol ("+").
func ParseOperator(s string) (Operator, error) {
	trimmed := strings.TrimSpace(s)
	for op, sym := range operatorSymbols {
		if trimmed == sym || strings.EqualFold(trimmed, string(op)) {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operator %q", s)
}
