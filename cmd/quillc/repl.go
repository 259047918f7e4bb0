package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/metaphox/quill/diag"
	"github.com/metaphox/quill/frontend"
	"github.com/metaphox/quill/lexer"
)

const (
	historyFile = ".quill_history"
	promptMain  = "quill> "
	promptCont  = "  ...> "
)

// session is the program built up interactively. Each accepted chunk is
// appended; a chunk that fails to compile is dropped.
type session struct {
	lines []string
	last  *frontend.Unit
}

// with returns the session's lines followed by chunk.
func (s *session) with(chunk string) []string {
	return append(append([]string(nil), s.lines...), lexer.SplitLines(chunk)...)
}

// submit compiles the session with chunk appended and keeps chunk when the
// whole program still compiles.
func (s *session) submit(chunk string) (*frontend.Unit, error) {
	lines := s.with(chunk)
	u, err := frontend.Compile(lines)
	if err != nil {
		return u, err
	}
	s.lines, s.last = lines, u
	return u, nil
}

// unfinished reports whether chunk stops mid-construct, so that reading
// another line may complete it.
func (s *session) unfinished(chunk string) bool {
	_, err := frontend.Compile(s.with(chunk))
	return incomplete(err)
}

func (s *session) reset() { s.lines, s.last = nil, nil }

func incomplete(err error) bool {
	var d *diag.Error
	if !errors.As(err, &d) || d.Kind != diag.Syntax {
		return false
	}
	return strings.HasSuffix(d.Msg, "reached EOF") || strings.HasPrefix(d.Msg, "EOF while scanning")
}

func runRepl() int {
	fmt.Println("Quill front end. Enter declarations and statements; :help for commands.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

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

	s := &session{}
	for {
		chunk, ok := readChunk(ln, s)
		if !ok {
			fmt.Println()
			return diag.ExitOK
		}
		trimmed := strings.TrimSpace(chunk)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if quit := command(s, trimmed); quit {
				return diag.ExitOK
			}
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(chunk, "\n", " "))
		u, err := s.submit(chunk)
		if err != nil {
			fmt.Fprintln(os.Stderr, diag.Format(err))
			continue
		}
		if n := len(u.Program.Children); n > 0 {
			fmt.Println(u.Program.Children[n-1])
		}
	}
}

// readChunk reads lines until they form input that is not unfinished.
func readChunk(ln *liner.State, s *session) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !s.unfinished(src) {
			return src, true
		}
	}
}

// command runs a REPL command and reports whether the session should end.
func command(s *session, cmd string) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return true
	case ":reset":
		s.reset()
		fmt.Println("session cleared")
	case ":ast":
		if s.last != nil {
			fmt.Println(s.last.Program)
		}
	case ":symbols":
		if s.last != nil {
			fmt.Print(s.last.Result.Table)
		}
	case ":source":
		fmt.Println(strings.Join(s.lines, "\n"))
	case ":help":
		fmt.Println(":ast  :symbols  :source  :reset  :quit")
	default:
		fmt.Println("unknown command. Type :help for a list.")
	}
	return false
}
