package ast

// Expression helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Bin(op Operator, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Plus(left, right Expression) *BinaryExpression   { return Bin(OpPlus, left, right) }
func Minus(left, right Expression) *BinaryExpression  { return Bin(OpMinus, left, right) }
func Times(left, right Expression) *BinaryExpression  { return Bin(OpTimes, left, right) }
func Divide(left, right Expression) *BinaryExpression { return Bin(OpDivide, left, right) }
func Gt(left, right Expression) *BinaryExpression     { return Bin(OpGt, left, right) }
func Ge(left, right Expression) *BinaryExpression     { return Bin(OpGe, left, right) }
func Lt(left, right Expression) *BinaryExpression     { return Bin(OpLt, left, right) }
func Le(left, right Expression) *BinaryExpression     { return Bin(OpLe, left, right) }

// Statement helpers.

func Assign(name string, value Expression) *AssignmentStatement {
	return NewAssignmentStatement(name, value)
}

func If(cond Expression, then, els Statement) *IfStatement {
	return NewIfStatement(cond, then, els)
}

func While(cond Expression, body Statement) *WhileLoop {
	return NewWhileLoop(cond, body)
}

// Seq nests the statements to the right: Seq(a, b, c) is Sequence(a, Sequence(b, c)).
// An empty call yields Skip.
func Seq(stmts ...Statement) Statement {
	switch len(stmts) {
	case 0:
		return NewSkipStatement()
	case 1:
		return stmts[0]
	default:
		return NewSequenceStatement(stmts[0], Seq(stmts[1:]...))
	}
}

func Print(prefix string, expr Expression) *PrintStatement {
	return NewPrintStatement(prefix, expr)
}

func Throw(expr Expression) *ThrowStatement {
	return NewThrowStatement(expr)
}

func Try(body Statement, binding string, handler Statement) *TryStatement {
	return NewTryStatement(body, binding, handler)
}

func Skip() *SkipStatement {
	return NewSkipStatement()
}
