package interpreter

import (
	"fmt"

	"whileplus/interpreter-go/pkg/ast"
	"whileplus/interpreter-go/pkg/runtime"
)

// evaluateExpression computes a value without touching the store. Faults are
// returned as raiseSignal errors.
func (i *Interpreter) evaluateExpression(node ast.Expression, state *runState) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.Identifier:
		return readVar(state, n.Name)
	case *ast.IntegerLiteral:
		return runtime.IntValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, state)
	case nil:
		return nil, fmt.Errorf("missing expression")
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", n.NodeType())
	}
}

func readVar(state *runState, name string) (runtime.Value, error) {
	val, ok := state.Read(name)
	if !ok {
		return nil, raise(runtime.UndefinedVariable)
	}
	return val, nil
}

func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression, state *runState) (runtime.Value, error) {
	leftVal, err := i.evaluateExpression(expr.Left, state)
	if err != nil {
		return nil, err
	}
	rightVal, err := i.evaluateExpression(expr.Right, state)
	if err != nil {
		return nil, err
	}
	return applyBinaryOperator(expr.Operator, leftVal, rightVal)
}

// applyBinaryOperator requires integer operands for every operator; the kind
// check precedes the zero-divisor check. Arithmetic wraps at 64 bits.
func applyBinaryOperator(op ast.Operator, left, right runtime.Value) (runtime.Value, error) {
	l, lok := left.(runtime.IntValue)
	r, rok := right.(runtime.IntValue)
	if !lok || !rok {
		return nil, raise(runtime.TypeMismatch)
	}
	switch op {
	case ast.OpPlus:
		return runtime.IntValue{Val: l.Val + r.Val}, nil
	case ast.OpMinus:
		return runtime.IntValue{Val: l.Val - r.Val}, nil
	case ast.OpTimes:
		return runtime.IntValue{Val: l.Val * r.Val}, nil
	case ast.OpDivide:
		if r.Val == 0 {
			return nil, raise(runtime.DivisionByZero)
		}
		return runtime.IntValue{Val: l.Val / r.Val}, nil
	case ast.OpGt:
		return runtime.BoolValue{Val: l.Val > r.Val}, nil
	case ast.OpGe:
		return runtime.BoolValue{Val: l.Val >= r.Val}, nil
	case ast.OpLt:
		return runtime.BoolValue{Val: l.Val < r.Val}, nil
	case ast.OpLe:
		return runtime.BoolValue{Val: l.Val <= r.Val}, nil
	default:
		return nil, fmt.Errorf("unsupported operator %q", op)
	}
}

// evaluateCondition evaluates a branch or loop condition, raising the type
// fault for anything other than a boolean.
func (i *Interpreter) evaluateCondition(cond ast.Expression, state *runState) (bool, error) {
	val, err := i.evaluateExpression(cond, state)
	if err != nil {
		return false, err
	}
	b, ok := val.(runtime.BoolValue)
	if !ok {
		return false, raise(runtime.TypeMismatch)
	}
	return b.Val, nil
}
