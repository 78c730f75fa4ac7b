package interpreter

import (
	"time"

	"whileplus/interpreter-go/pkg/ast"
	"whileplus/interpreter-go/pkg/runtime"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart TraceEventType = "run_start"
	TraceRunEnd   TraceEventType = "run_end"
	TraceAssign   TraceEventType = "assign"
	TracePrint    TraceEventType = "print"
	TraceRaise    TraceEventType = "raise"
	TraceCatch    TraceEventType = "catch"
)

// TraceEvent is a single observation emitted while a program runs.
type TraceEvent struct {
	Time  time.Time
	RunID string
	Event TraceEventType
	Span  ast.Span
	// Name is the variable written by assign and catch events.
	Name string
	// Value is the value assigned, printed or raised.
	Value runtime.Value
	// Text is the log line for print events.
	Text string
}

func (s *runState) emit(event TraceEvent) {
	if s.trace == nil {
		return
	}
	event.Time = time.Now().UTC()
	event.RunID = s.runID
	s.trace(event)
}
