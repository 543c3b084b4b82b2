package cell

import (
	"errors"
	"strings"
	"testing"

	"github.com/reactivekit/starcell/codeunit"
)

func TestPlain_RenderRuntime(t *testing.T) {
	stack := []Frame{
		{Function: "<toplevel>", Position: "cell-1:1:1"},
		{Function: "f", Position: "cell-1:2:5"},
	}
	got := Plain{}.RenderRuntime("EvalError", "boom", stack)

	if !strings.HasPrefix(got, "Traceback (most recent call last):\n") {
		t.Errorf("missing traceback header:\n%s", got)
	}
	for _, want := range []string{"cell-1:1:1: in <toplevel>", "cell-1:2:5: in f", "EvalError: boom"} {
		if !strings.Contains(got, want) {
			t.Errorf("rendered text missing %q:\n%s", want, got)
		}
	}
}

func TestPlain_RenderRuntimeEmptyStack(t *testing.T) {
	got := Plain{}.RenderRuntime("", "boom", nil)

	if strings.Contains(got, "Traceback") {
		t.Errorf("stackless failure must not render a traceback header:\n%s", got)
	}
	if got != "Error: boom\n" {
		t.Errorf("rendered = %q, want %q", got, "Error: boom\n")
	}
}

func TestPlain_RenderSyntax(t *testing.T) {
	frames := []FrameSummary{{Position: "cell-1:1:5", Message: "got '(', want identifier"}}
	got := Plain{}.RenderSyntax("SyntaxError", "got '(', want identifier", frames)

	if !strings.HasPrefix(got, "SyntaxError: ") {
		t.Errorf("missing class prefix:\n%s", got)
	}
	if !strings.Contains(got, "cell-1:1:5") {
		t.Errorf("missing position:\n%s", got)
	}
}

func TestSyntaxClassSelection(t *testing.T) {
	_, parseErr := codeunit.Parse("cell-1", "def (")
	if parseErr == nil {
		t.Fatal("expected a parse error")
	}

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"parse error", parseErr, true},
		{"plain error", errors.New("boom"), false},
		{"wrapped parse error", errors.Join(errors.New("outer"), parseErr), true},
	}
	for _, tc := range cases {
		if got := isSyntaxClass(tc.err); got != tc.want {
			t.Errorf("%s: isSyntaxClass = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSyntaxInfo_ParseError(t *testing.T) {
	_, err := codeunit.Parse("cell-1", "def (")
	if err == nil {
		t.Fatal("expected a parse error")
	}

	class, msg, frames := syntaxInfo(err)
	if class != "SyntaxError" {
		t.Errorf("class = %q, want SyntaxError", class)
	}
	if msg == "" {
		t.Error("empty message")
	}
	if len(frames) == 0 || frames[0].Position == "" {
		t.Errorf("frames = %+v, want at least one positioned frame", frames)
	}
}

func TestRuntimeInfo_PlainError(t *testing.T) {
	class, msg, stack := runtimeInfo(errors.New("boom"))

	if class != "Error" || msg != "boom" || stack != nil {
		t.Errorf("got (%q, %q, %v), want (Error, boom, nil)", class, msg, stack)
	}
}
