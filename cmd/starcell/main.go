// Command starcell is an interactive reactive Starlark notebook: each
// submitted cell is analyzed for the names it reads and binds, and
// every cell depending on a redefined name is re-run automatically.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"go.starlark.net/starlark"

	"github.com/reactivekit/starcell/cell"
	"github.com/reactivekit/starcell/codeunit"
	"github.com/reactivekit/starcell/session"
)

const (
	promptMain  = ">>> "
	promptCont  = "... "
	historyFile = ".starcell_history"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a YAML session config")
	key := flag.String("key", "", "identity digest key (overrides config)")
	flag.Parse()

	cfg := session.Config{}
	if *configPath != "" {
		loaded, err := session.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		cfg = loaded
	}
	if *key != "" {
		cfg.Key = *key
	}

	// values displayed without a binding name only surface through the
	// display callback; collect them for printing after each submit
	var displayed []starlark.Value
	cfg.OnDisplay = func(v any) {
		if val, ok := v.(starlark.Value); ok && val != starlark.None {
			displayed = append(displayed, val)
		}
	}

	sess, err := session.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Println("starcell: reactive Starlark cells. Type :quit to exit.")

	cellSeq := 0
	for {
		source, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(source)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		cellSeq++
		displayed = displayed[:0]
		results, err := sess.Submit(source, fmt.Sprintf("cell-%d", cellSeq))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		printResults(results, displayed)
		ln.AppendHistory(strings.ReplaceAll(source, "\n", " "))
	}
}

func printResults(results []*cell.Result, displayed []starlark.Value) {
	named := make(map[string]bool)
	for _, r := range results {
		if r.Stdout != "" {
			fmt.Print(r.Stdout)
		}
		if out, ok := r.Output(); ok {
			fmt.Printf("%s = %s\n", out.Name, out.Value.String())
			named[out.Value.String()] = true
		}
		if r.Stderr != "" {
			fmt.Fprint(os.Stderr, r.Stderr)
		}
	}
	for _, v := range displayed {
		if !named[v.String()] {
			fmt.Println(v.String())
		}
	}
}

// readByParseProbe reads lines until the accumulated input parses as a
// complete chunk, prompting for continuation while the parser still
// wants more.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, perr := codeunit.Parse("<stdin>", src); perr == nil {
			return src, true
		} else if !wantsMore(perr, line) {
			// a hard syntax error; hand the source to the session so
			// the failure is reported through the normal path
			return src, true
		}
	}
}

// wantsMore reports whether the parse failure looks like incomplete
// input rather than a hard error.
func wantsMore(err error, lastLine string) bool {
	msg := err.Error()
	if strings.Contains(msg, "end of file") || strings.Contains(msg, "EOF") {
		return true
	}
	trimmed := strings.TrimRight(lastLine, " \t")
	return strings.HasSuffix(trimmed, ":") || strings.HasSuffix(trimmed, "\\")
}
