package interpreter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"whileplus/interpreter-go/pkg/ast"
	"whileplus/interpreter-go/pkg/runtime"
)

// Interpreter drives evaluation of WHILE+ statements. It holds configuration
// only; every Execute call gets its own context, so one Interpreter may serve
// concurrent runs.
type Interpreter struct {
	logger    *slog.Logger
	trace     func(TraceEvent)
	runID     string
	stepLimit int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger routes debug records about raises and uncaught exceptions to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithTrace installs a hook that observes assignments, prints, raises and catches.
func WithTrace(fn func(TraceEvent)) Option {
	return func(i *Interpreter) { i.trace = fn }
}

// WithRunID fixes the run identifier instead of generating one per run.
func WithRunID(id string) Option {
	return func(i *Interpreter) { i.runID = id }
}

// WithStepLimit aborts a run with ErrStepLimit after n statements.
// Zero or a negative n means unlimited.
func WithStepLimit(n int) Option {
	return func(i *Interpreter) { i.stepLimit = n }
}

// New returns an interpreter configured by opts.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Result is the outcome of one run.
type Result struct {
	RunID string
	// Store holds every binding made up to the end of the run, including
	// those made before an uncaught exception.
	Store runtime.Store
	// Exception is the uncaught raised value, or nil.
	Exception runtime.Value
	// Lines are the log entries in emission order.
	Lines []string
	Steps int
}

// Log renders the log as newline-terminated lines.
func (r Result) Log() string {
	return runtime.RenderLog(r.Lines)
}

// Uncaught reports the value that escaped the top-level statement, if any.
func (r Result) Uncaught() (runtime.Value, bool) {
	return r.Exception, r.Exception != nil
}

// Execute runs stmt against initial with a default interpreter. It panics if
// the run fails for a host reason, which without a step limit or a
// cancellable context only happens for a malformed tree (a missing
// expression or an unknown operator). Use Interpreter.ExecuteContext to
// receive such failures as errors.
func Execute(initial runtime.Store, stmt ast.Statement) Result {
	res, err := New().ExecuteContext(context.Background(), initial, stmt)
	if err != nil {
		panic(err)
	}
	return res
}

// Execute runs stmt against a fresh context built from initial.
func (i *Interpreter) Execute(initial runtime.Store, stmt ast.Statement) (Result, error) {
	return i.ExecuteContext(context.Background(), initial, stmt)
}

// ExecuteContext runs stmt, checking ctx once per loop iteration. A WHILE+
// exception that escapes stmt is reported in Result.Exception; the returned
// error is reserved for host failures (cancellation, step limit, malformed
// trees), in which case Result still carries the store and log at the point
// the run stopped.
func (i *Interpreter) ExecuteContext(ctx context.Context, initial runtime.Store, stmt ast.Statement) (Result, error) {
	state := i.newRunState(ctx, initial)
	state.emit(TraceEvent{Event: TraceRunStart, Span: spanOf(stmt)})

	err := i.evaluateStatement(stmt, state)

	res := Result{
		RunID: state.runID,
		Store: state.Store(),
		Lines: state.Lines(),
		Steps: state.steps,
	}
	if v, ok := AsRaise(err); ok {
		res.Exception = v
		i.logger.Debug("uncaught exception", "run_id", state.runID, "value", runtime.Show(v))
		err = nil
	}
	state.emit(TraceEvent{Event: TraceRunEnd, Span: spanOf(stmt), Value: res.Exception})
	if err != nil {
		return res, fmt.Errorf("run %s: %w", state.runID, err)
	}
	return res, nil
}

type runState struct {
	*runtime.Context
	ctx       context.Context
	runID     string
	trace     func(TraceEvent)
	steps     int
	stepLimit int
}

func (i *Interpreter) newRunState(ctx context.Context, initial runtime.Store) *runState {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := i.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	return &runState{
		Context:   runtime.NewContext(initial),
		ctx:       ctx,
		runID:     runID,
		trace:     i.trace,
		stepLimit: i.stepLimit,
	}
}

func (s *runState) step() error {
	s.steps++
	if s.stepLimit > 0 && s.steps > s.stepLimit {
		return fmt.Errorf("%w (limit %d)", ErrStepLimit, s.stepLimit)
	}
	return nil
}

func spanOf(node ast.Node) ast.Span {
	if node == nil {
		return ast.Span{}
	}
	return node.Span()
}
