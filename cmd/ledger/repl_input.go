package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// ttyLineWriter translates bare '\n' to '\r\n', needed once stdout is in
// raw mode. Adapted from the teacher's repl/output_tty.go.
type ttyLineWriter struct {
	out io.Writer
}

func newTTYLineWriter(out io.Writer) io.Writer { return &ttyLineWriter{out: out} }

func (w *ttyLineWriter) Write(p []byte) (int, error) {
	buf := make([]byte, 0, len(p)+8)
	for i := 0; i < len(p); i++ {
		b := p[i]
		if b == '\n' && !(i > 0 && p[i-1] == '\r') {
			buf = append(buf, '\r')
		}
		buf = append(buf, b)
	}
	if _, err := w.out.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}

type ttyByteEvent struct {
	b   byte
	err error
}

// ttyInput is raw-mode line editing with history, adapted from the
// teacher's repl/input_tty.go, trimmed of the cursor-movement and delete
// editing the formula REPL doesn't need (insert-only backspace covers the
// common case; arrow-up/down history nav is kept).
type ttyInput struct {
	in      *os.File
	out     io.Writer
	state   *term.State
	events  chan ttyByteEvent
	history []string
}

func newTTYInput(in io.Reader, out io.Writer) (*ttyInput, bool) {
	inFile, ok := in.(*os.File)
	if !ok {
		return nil, false
	}
	outFile, ok := out.(*os.File)
	if !ok {
		return nil, false
	}
	if !term.IsTerminal(int(inFile.Fd())) || !term.IsTerminal(int(outFile.Fd())) {
		return nil, false
	}
	state, err := term.MakeRaw(int(inFile.Fd()))
	if err != nil {
		return nil, false
	}
	ti := &ttyInput{
		in:     inFile,
		out:    out,
		state:  state,
		events: make(chan ttyByteEvent, 128),
	}
	go ti.readBytes()
	return ti, true
}

func (t *ttyInput) Close() {
	if t == nil || t.state == nil {
		return
	}
	_ = term.Restore(int(t.in.Fd()), t.state)
}

func (t *ttyInput) readBytes() {
	defer close(t.events)
	buf := make([]byte, 1)
	for {
		n, err := t.in.Read(buf)
		if n > 0 {
			t.events <- ttyByteEvent{b: buf[0]}
		}
		if err != nil {
			t.events <- ttyByteEvent{err: err}
			return
		}
	}
}

func (t *ttyInput) readByteWithTimeout(timeout time.Duration) (byte, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev, ok := <-t.events:
		if !ok || ev.err != nil {
			return 0, false
		}
		return ev.b, true
	case <-timer.C:
		return 0, false
	}
}

func (t *ttyInput) appendHistory(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	if n := len(t.history); n > 0 && t.history[n-1] == line {
		return
	}
	t.history = append(t.history, line)
}

// readLine reads one line of raw-mode input with basic backspace and
// up/down history recall. Returns ok=false on EOF or Ctrl+C/D.
func (t *ttyInput) readLine(prompt string) (string, bool) {
	if t == nil {
		return "", false
	}
	line := make([]byte, 0, 64)
	historyIndex := len(t.history)
	fmt.Fprint(t.out, prompt)

	for {
		ev, ok := <-t.events
		if !ok || ev.err != nil {
			return "", false
		}
		switch ev.b {
		case '\r', '\n':
			fmt.Fprint(t.out, "\r\n")
			entered := string(line)
			t.appendHistory(entered)
			return entered, true
		case 0x03: // Ctrl+C
			fmt.Fprint(t.out, "^C\r\n")
			return "", false
		case 0x04: // Ctrl+D
			if len(line) == 0 {
				fmt.Fprint(t.out, "\r\n")
				return "", false
			}
		case 0x7f, 0x08: // Backspace
			if len(line) > 0 {
				line = line[:len(line)-1]
				redrawLine(t.out, prompt, line)
			}
		case 0x1b: // escape sequence: only arrow up/down are handled
			next, ok := t.readByteWithTimeout(10 * time.Millisecond)
			if !ok || next != '[' {
				continue
			}
			code, ok := t.readByteWithTimeout(10 * time.Millisecond)
			if !ok {
				continue
			}
			switch code {
			case 'A':
				if historyIndex > 0 {
					historyIndex--
					line = []byte(t.history[historyIndex])
					redrawLine(t.out, prompt, line)
				}
			case 'B':
				if historyIndex < len(t.history)-1 {
					historyIndex++
					line = []byte(t.history[historyIndex])
				} else {
					historyIndex = len(t.history)
					line = line[:0]
				}
				redrawLine(t.out, prompt, line)
			}
		default:
			if ev.b >= 0x20 && ev.b < 0x7f {
				line = append(line, ev.b)
				fmt.Fprintf(t.out, "%c", ev.b)
			}
		}
	}
}

func redrawLine(out io.Writer, prompt string, line []byte) {
	fmt.Fprintf(out, "\r%s%s\x1b[K", prompt, string(line))
}
