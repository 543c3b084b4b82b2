package cell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/reactivekit/starcell/capture"
	"github.com/reactivekit/starcell/codeunit"
)

// Coroutine is an externally supplied suspending computation whose
// resolved value gets bound into the namespace.
type Coroutine func(ctx context.Context) (starlark.Value, error)

// Executor runs snippets against the shared namespace, capturing every
// side effect into a Result.
type Executor struct {
	globals   starlark.StringDict
	renderer  TracebackRenderer
	onDisplay capture.Handler
	logger    Logger
}

// New creates an Executor. Returns ErrConfiguration if required fields
// are missing.
func New(cfg Config) (*Executor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &Executor{
		globals:   cfg.Globals,
		renderer:  cfg.Renderer,
		onDisplay: cfg.OnDisplay,
		logger:    cfg.Logger,
	}, nil
}

// Globals returns the shared namespace the executor mutates.
func (e *Executor) Globals() starlark.StringDict { return e.globals }

// RunCell executes the snippet's statements against the namespace.
// It never returns an error: parse failures and runtime faults alike
// are rendered into the captured stderr and reported via the Result.
func (e *Executor) RunCell(source, name string) *Result {
	res := newResult()
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	var displayed starlark.Value
	scope, err := capture.Enter(func(v any) {
		if e.onDisplay != nil {
			e.onDisplay(v)
		}
		if val, ok := v.(starlark.Value); ok && val != starlark.None {
			displayed = val
		}
	})
	if err != nil {
		e.failBeforeCapture(res, err)
		return res
	}

	f, perr := codeunit.Parse(name, source)
	if perr != nil {
		e.recordFailure(res, perr)
		e.finish(res, scope)
		return res
	}

	stmts := f.Stmts
	if len(stmts) == 0 {
		e.finish(res, scope)
		return res
	}

	// A trailing single-target assignment to a bare identifier also
	// gets displayed: append a synthetic expression evaluating it and
	// remember the binding name.
	outputName := ""
	if asg, ok := stmts[len(stmts)-1].(*syntax.AssignStmt); ok {
		if id, ok := asg.LHS.(*syntax.Ident); ok {
			outputName = id.Name
			stmts = append(stmts, &syntax.ExprStmt{
				X: &syntax.Ident{NamePos: id.NamePos, Name: id.Name},
			})
		}
	}

	var displayExpr syntax.Expr
	batch := stmts
	if last, ok := stmts[len(stmts)-1].(*syntax.ExprStmt); ok {
		displayExpr = last.X
		batch = stmts[:len(stmts)-1]
	}

	if len(batch) > 0 {
		chunk := &syntax.File{Options: f.Options, Path: f.Path, Stmts: batch}
		if err := e.exec(name, chunk); err != nil {
			e.recordFailure(res, err)
			e.finish(res, scope)
			return res
		}
	}

	if displayExpr != nil {
		v, err := e.eval(name, f.Options, displayExpr)
		if err != nil {
			e.recordFailure(res, err)
			e.finish(res, scope)
			return res
		}
		if v != starlark.None {
			scope.Display(v)
		}
	}

	e.finish(res, scope)
	if displayed != nil && outputName != "" {
		res.setOutput(displayed, outputName)
	}
	return res
}

// RunCoroutine awaits an externally supplied computation and binds its
// value under bindName. Errors matching a propagate target via
// errors.Is bypass capture-and-report: the call restores the streams
// and re-raises. All other errors are rendered into the captured stderr
// and reported via the Result, leaving bindName untouched.
func (e *Executor) RunCoroutine(ctx context.Context, coro Coroutine, bindName string, propagate ...error) (*Result, error) {
	res := newResult()
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	scope, err := capture.Enter(e.onDisplay)
	if err != nil {
		e.failBeforeCapture(res, err)
		return res, nil
	}

	v, err := e.await(ctx, coro)
	if err != nil {
		for _, target := range propagate {
			if target != nil && errors.Is(err, target) {
				scope.Exit()
				return nil, err
			}
		}
		e.recordFailure(res, err)
		e.finish(res, scope)
		return res, nil
	}

	if v == nil {
		v = starlark.None
	}
	e.globals[bindName] = v
	res.setOutput(v, bindName)
	e.finish(res, scope)
	return res, nil
}

func (e *Executor) newThread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		// os.Stdout is resolved at print time, so inside a capture
		// scope this lands in the per-call buffer
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(os.Stdout, msg)
		},
	}
}

// exec runs one compiled chunk. Panics below the evaluator are
// recovered into errors so a nested fault cannot escape the call with
// the streams still swapped.
func (e *Executor) exec(name string, chunk *syntax.File) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return starlark.ExecREPLChunk(chunk, e.newThread(name), e.globals)
}

// eval evaluates the display expression, recovering panics like exec.
func (e *Executor) eval(name string, opts *syntax.FileOptions, expr syntax.Expr) (v starlark.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return starlark.EvalExprOptions(opts, e.newThread(name), expr, e.globals)
}

// await runs the suspending computation, recovering panics into
// ordinary captured failures. A recovered panic never matches a
// propagate target.
func (e *Executor) await(ctx context.Context, coro Coroutine) (v starlark.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return coro(ctx)
}

// finish restores the streams and moves the captured text into the
// result. Every RunCell/RunCoroutine path ends here once the capture
// scope was acquired.
func (e *Executor) finish(res *Result, scope *capture.Scope) {
	scope.Exit()
	res.setIO(scope.Stdout(), scope.Stderr())
}

// recordFailure renders err through the configured renderer, records
// the failure triple, and appends the rendered text to the captured
// stderr. The syntax rendering path is selected iff the failure is
// syntax-class.
func (e *Executor) recordFailure(res *Result, err error) {
	var class, msg, text string
	if isSyntaxClass(err) {
		var frames []FrameSummary
		class, msg, frames = syntaxInfo(err)
		text = e.renderer.RenderSyntax(class, msg, frames)
	} else {
		var stack []Frame
		class, msg, stack = runtimeInfo(err)
		text = e.renderer.RenderRuntime(class, msg, stack)
	}
	res.setFailure(class, msg, text)
	fmt.Fprint(os.Stderr, text)
	if e.logger != nil {
		e.logger.Logf("execution failed: %s: %s", class, msg)
	}
}

// failBeforeCapture reports a failure that occurred before the capture
// scope could be acquired; the rendered text doubles as the stderr.
func (e *Executor) failBeforeCapture(res *Result, err error) {
	class, msg, stack := runtimeInfo(err)
	text := e.renderer.RenderRuntime(class, msg, stack)
	res.setFailure(class, msg, text)
	res.setIO("", text)
}
