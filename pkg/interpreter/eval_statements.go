package interpreter

import (
	"fmt"

	"whileplus/interpreter-go/pkg/ast"
	"whileplus/interpreter-go/pkg/runtime"
)

// evaluateStatement executes node against the run state. A nil return is
// normal completion; a raiseSignal is a WHILE+ exception; anything else is a
// host failure. Statements in tail position (the second half of a sequence,
// the chosen branch of an if) are continued in the loop rather than by
// recursion.
func (i *Interpreter) evaluateStatement(node ast.Statement, state *runState) error {
	for {
		if err := state.step(); err != nil {
			return err
		}
		switch n := node.(type) {
		case *ast.AssignmentStatement:
			return i.evaluateAssignment(n, state)
		case *ast.IfStatement:
			cond, err := i.evaluateCondition(n.Condition, state)
			if err != nil {
				return err
			}
			if cond {
				node = n.Then
			} else {
				node = n.Else
			}
		case *ast.WhileLoop:
			return i.evaluateWhileLoop(n, state)
		case *ast.SequenceStatement:
			if err := i.evaluateStatement(n.First, state); err != nil {
				return err
			}
			node = n.Second
		case *ast.PrintStatement:
			return i.evaluatePrintStatement(n, state)
		case *ast.ThrowStatement:
			return i.evaluateThrowStatement(n, state)
		case *ast.TryStatement:
			return i.evaluateTryStatement(n, state)
		default:
			// Skip, a missing branch, and any other statement complete normally.
			return nil
		}
	}
}

func (i *Interpreter) evaluateAssignment(assign *ast.AssignmentStatement, state *runState) error {
	val, err := i.evaluateExpression(assign.Value, state)
	if err != nil {
		return err
	}
	state.Write(assign.Name, val)
	state.emit(TraceEvent{Event: TraceAssign, Span: assign.Span(), Name: assign.Name, Value: val})
	return nil
}

func (i *Interpreter) evaluateWhileLoop(loop *ast.WhileLoop, state *runState) error {
	for {
		if err := state.ctx.Err(); err != nil {
			return fmt.Errorf("while loop at %s: %w", loop.Span(), err)
		}
		cond, err := i.evaluateCondition(loop.Condition, state)
		if err != nil {
			return err
		}
		if !cond {
			return nil
		}
		if err := i.evaluateStatement(loop.Body, state); err != nil {
			return err
		}
	}
}

func (i *Interpreter) evaluatePrintStatement(stmt *ast.PrintStatement, state *runState) error {
	val, err := i.evaluateExpression(stmt.Expression, state)
	if err != nil {
		return err
	}
	line := stmt.Prefix + runtime.Show(val)
	state.Append(line)
	state.emit(TraceEvent{Event: TracePrint, Span: stmt.Span(), Value: val, Text: line})
	return nil
}

func (i *Interpreter) evaluateThrowStatement(stmt *ast.ThrowStatement, state *runState) error {
	val, err := i.evaluateExpression(stmt.Expression, state)
	if err != nil {
		return err
	}
	state.emit(TraceEvent{Event: TraceRaise, Span: stmt.Span(), Value: val})
	return raise(val)
}

// evaluateTryStatement binds a value raised by the body and runs the handler.
// Effects of the body made before the raise are kept.
func (i *Interpreter) evaluateTryStatement(stmt *ast.TryStatement, state *runState) error {
	err := i.evaluateStatement(stmt.Body, state)
	if err == nil {
		return nil
	}
	val, ok := AsRaise(err)
	if !ok {
		return err
	}
	i.logger.Debug("exception caught", "run_id", state.runID, "var", stmt.Binding, "value", runtime.Show(val))
	state.Write(stmt.Binding, val)
	state.emit(TraceEvent{Event: TraceCatch, Span: stmt.Span(), Name: stmt.Binding, Value: val})
	return i.evaluateStatement(stmt.Handler, state)
}
