package capture

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sync"
)

// ErrCaptureActive is returned by Enter when another Scope holds the
// output singletons.
var ErrCaptureActive = errors.New("capture: a capture scope is already active")

// Handler receives a value a cell designates for display. It is invoked
// at most once per execution call.
type Handler func(v any)

var (
	mu     sync.Mutex
	active *Scope
)

// Scope is one acquisition of the process-wide stdout, stderr, and
// display singletons.
type Scope struct {
	display Handler

	prevStdout *os.File
	prevStderr *os.File

	outR, outW *os.File
	errR, errW *os.File

	outBuf, errBuf bytes.Buffer
	outDone        chan struct{}
	errDone        chan struct{}

	released bool
}

// Enter swaps the process streams for per-call buffers and installs
// display as the current display handler. The returned Scope must be
// released with Exit on every path.
func Enter(display Handler) (*Scope, error) {
	mu.Lock()
	defer mu.Unlock()

	if active != nil {
		return nil, ErrCaptureActive
	}

	s := &Scope{display: display}

	var err error
	if s.outR, s.outW, err = os.Pipe(); err != nil {
		return nil, err
	}
	if s.errR, s.errW, err = os.Pipe(); err != nil {
		s.outR.Close()
		s.outW.Close()
		return nil, err
	}

	s.prevStdout, s.prevStderr = os.Stdout, os.Stderr
	os.Stdout, os.Stderr = s.outW, s.errW

	s.outDone = make(chan struct{})
	s.errDone = make(chan struct{})
	go drain(&s.outBuf, s.outR, s.outDone)
	go drain(&s.errBuf, s.errR, s.errDone)

	active = s
	return s, nil
}

func drain(buf *bytes.Buffer, r *os.File, done chan struct{}) {
	io.Copy(buf, r)
	r.Close()
	close(done)
}

// Exit restores the previous streams and clears the display handler.
// It blocks until all buffered output has been collected. Calling Exit
// again is a no-op.
func (s *Scope) Exit() {
	mu.Lock()
	defer mu.Unlock()

	if s.released {
		return
	}
	s.released = true

	os.Stdout, os.Stderr = s.prevStdout, s.prevStderr
	s.outW.Close()
	s.errW.Close()
	<-s.outDone
	<-s.errDone

	if active == s {
		active = nil
	}
}

// Stdout returns the captured standard output text. Valid after Exit.
func (s *Scope) Stdout() string { return s.outBuf.String() }

// Stderr returns the captured standard error text. Valid after Exit.
func (s *Scope) Stderr() string { return s.errBuf.String() }

// Display routes v to the scope's handler, if any.
func (s *Scope) Display(v any) {
	if s.display != nil {
		s.display(v)
	}
}

// Display routes v to the active scope's handler. Values surfaced
// outside any capture scope are discarded.
func Display(v any) {
	mu.Lock()
	s := active
	mu.Unlock()
	if s != nil {
		s.Display(v)
	}
}
