package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/sergev/glox/lang"
	"github.com/sergev/glox/parser"
	"github.com/sergev/glox/resolver"
	"github.com/sergev/glox/runtime"
)

// Exit codes follow the sysexits convention.
const (
	exitUsage   = 64
	exitData    = 65
	exitRuntime = 70
	exitIO      = 74
	exitConfig  = 78
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintln(stderr, "Usage: glox [script | -]")
		return exitUsage
	}

	cfg, err := runtime.LoadDefaultConfig()
	if err != nil {
		fmt.Fprintf(stderr, "glox: %v\n", err)
		return exitConfig
	}
	session := runtime.NewSession(stdout, stderr, cfg)

	if len(args) == 1 {
		script := args[0]
		if script == "-" {
			err = session.RunReader(stdin)
		} else {
			err = session.RunFile(script)
		}
		return exitCode(stderr, err)
	}

	if f, ok := stdin.(*os.File); ok && isInteractive(f) {
		runInteractiveREPL(session, cfg, stdout, stderr)
		return 0
	}
	runBufferedREPL(session, bufio.NewReader(stdin), stderr)
	return 0
}

// exitCode maps a script failure to a process status. Static and runtime
// errors were already reported by the session.
func exitCode(stderr io.Writer, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, lang.ErrRuntime):
		return exitRuntime
	case errors.Is(err, parser.ErrLex), errors.Is(err, parser.ErrParse), errors.Is(err, resolver.ErrResolve):
		return exitData
	default:
		fmt.Fprintf(stderr, "glox: %v\n", err)
		return exitIO
	}
}

func runBufferedREPL(session *runtime.Session, reader *bufio.Reader, stderr io.Writer) {
	var buffer strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(stderr, "read error: %v\n", err)
			return
		}
		atEOF := errors.Is(err, io.EOF)
		buffer.WriteString(line)
		src := buffer.String()
		if strings.TrimSpace(src) == "" {
			buffer.Reset()
			if atEOF {
				return
			}
			continue
		}
		if runtime.NeedsMore(src) && !atEOF {
			continue
		}
		buffer.Reset()
		session.ResetErrors()
		session.Eval(src)
		if atEOF {
			return
		}
	}
}

func runInteractiveREPL(session *runtime.Session, cfg *runtime.Config, stdout, stderr io.Writer) {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	if cfg.HistoryFile != "" {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(cfg.HistoryFile); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	var buffer strings.Builder

	for {
		prompt := cfg.Prompt
		if buffer.Len() > 0 {
			prompt = cfg.ContinuationPrompt
		}
		input, err := state.Prompt(prompt)
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Fprintln(stdout)
				buffer.Reset()
				continue
			case errors.Is(err, io.EOF):
				fmt.Fprintln(stdout)
				return
			default:
				fmt.Fprintf(stderr, "read error: %v\n", err)
				return
			}
		}
		buffer.WriteString(input)
		buffer.WriteString("\n")

		src := buffer.String()
		if strings.TrimSpace(src) == "" {
			buffer.Reset()
			continue
		}
		if runtime.NeedsMore(src) {
			continue
		}

		buffer.Reset()
		state.AppendHistory(strings.TrimSpace(src))
		session.ResetErrors()
		session.Eval(src)
	}
}

func isInteractive(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
