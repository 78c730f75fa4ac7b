package ast

type NodeType string

const (
	NodeIdentifier          NodeType = "Var"
	NodeIntegerLiteral      NodeType = "IntLiteral"
	NodeBooleanLiteral      NodeType = "BoolLiteral"
	NodeBinaryExpression    NodeType = "Op"
	NodeAssignmentStatement NodeType = "Assign"
	NodeIfStatement         NodeType = "If"
	NodeWhileLoop           NodeType = "While"
	NodeSequenceStatement   NodeType = "Sequence"
	NodePrintStatement      NodeType = "Print"
	NodeThrowStatement      NodeType = "Throw"
	NodeTryStatement        NodeType = "Try"
	NodeSkipStatement       NodeType = "Skip"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type" yaml:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Expressions

type Identifier struct {
	nodeImpl
	expressionMarker

	Name string `json:"name" yaml:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

type IntegerLiteral struct {
	nodeImpl
	expressionMarker

	Value int64 `json:"value" yaml:"value"`
}

func NewIntegerLiteral(value int64) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker

	Value bool `json:"value" yaml:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator Operator   `json:"operator" yaml:"operator"`
	Left     Expression `json:"left" yaml:"left"`
	Right    Expression `json:"right" yaml:"right"`
}

func NewBinaryExpression(operator Operator, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

// Statements

type AssignmentStatement struct {
	nodeImpl
	statementMarker

	Name  string     `json:"name" yaml:"name"`
	Value Expression `json:"value" yaml:"value"`
}

func NewAssignmentStatement(name string, value Expression) *AssignmentStatement {
	return &AssignmentStatement{nodeImpl: newNodeImpl(NodeAssignmentStatement), Name: name, Value: value}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition" yaml:"condition"`
	Then      Statement  `json:"then" yaml:"then"`
	Else      Statement  `json:"else" yaml:"else"`
}

func NewIfStatement(condition Expression, then, els Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: condition, Then: then, Else: els}
}

type WhileLoop struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition" yaml:"condition"`
	Body      Statement  `json:"body" yaml:"body"`
}

func NewWhileLoop(condition Expression, body Statement) *WhileLoop {
	return &WhileLoop{nodeImpl: newNodeImpl(NodeWhileLoop), Condition: condition, Body: body}
}

type SequenceStatement struct {
	nodeImpl
	statementMarker

	First  Statement `json:"first" yaml:"first"`
	Second Statement `json:"second" yaml:"second"`
}

func NewSequenceStatement(first, second Statement) *SequenceStatement {
	return &SequenceStatement{nodeImpl: newNodeImpl(NodeSequenceStatement), First: first, Second: second}
}

type PrintStatement struct {
	nodeImpl
	statementMarker

	Prefix     string     `json:"prefix" yaml:"prefix"`
	Expression Expression `json:"expression" yaml:"expression"`
}

func NewPrintStatement(prefix string, expression Expression) *PrintStatement {
	return &PrintStatement{nodeImpl: newNodeImpl(NodePrintStatement), Prefix: prefix, Expression: expression}
}

type ThrowStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression" yaml:"expression"`
}

func NewThrowStatement(expression Expression) *ThrowStatement {
	return &ThrowStatement{nodeImpl: newNodeImpl(NodeThrowStatement), Expression: expression}
}

// TryStatement runs Body; a value raised by Body is bound to Binding before
// Handler runs.
type TryStatement struct {
	nodeImpl
	statementMarker

	Body    Statement `json:"body" yaml:"body"`
	Binding string    `json:"binding" yaml:"binding"`
	Handler Statement `json:"handler" yaml:"handler"`
}

func NewTryStatement(body Statement, binding string, handler Statement) *TryStatement {
	return &TryStatement{nodeImpl: newNodeImpl(NodeTryStatement), Body: body, Binding: binding, Handler: handler}
}

type SkipStatement struct {
	nodeImpl
	statementMarker
}

func NewSkipStatement() *SkipStatement {
	return &SkipStatement{nodeImpl: newNodeImpl(NodeSkipStatement)}
}
