package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"liveledger/sheet"
)

const (
	prompt = "ledger> "
)

// scanLine carries one line from the non-tty fallback reader.
type scanLine struct {
	text string
	err  error
	ok   bool
}

// repl is a line-oriented command shell over a *sheet.Sheet. Grounded on
// the teacher's repl.Start: a banner, a ':'-prefixed command set, and a
// plain-input fast path (here, "REF=VALUE" cell assignment rather than
// expression evaluation, since a sheet has no free-standing expressions).
type repl struct {
	sheet *sheet.Sheet
	out   io.Writer

	tty    *ttyInput
	scanCh chan scanLine
}

func newRepl(s *sheet.Sheet) *repl {
	return &repl{sheet: s, out: os.Stdout}
}

func (r *repl) run() int {
	var sessionOut io.Writer = r.out
	if ti, ok := newTTYInput(os.Stdin, r.out); ok {
		r.tty = ti
		defer r.tty.Close()
		sessionOut = newTTYLineWriter(r.out)
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		r.scanCh = make(chan scanLine)
		go func() {
			defer close(r.scanCh)
			for scanner.Scan() {
				r.scanCh <- scanLine{text: scanner.Text(), ok: true}
			}
			if err := scanner.Err(); err != nil {
				r.scanCh <- scanLine{err: err}
			}
		}()
	}

	fmt.Fprintln(sessionOut, "╔══════════════════════════════════════╗")
	fmt.Fprintln(sessionOut, "║   ledger — terminal spreadsheet REPL  ║")
	fmt.Fprintln(sessionOut, "╚══════════════════════════════════════╝")
	fmt.Fprintln(sessionOut)
	fmt.Fprintln(sessionOut, "Assign a cell:  A1=10   B1==SUM(A1:A5)   C1=hello")
	fmt.Fprintln(sessionOut, "Read a cell:    A1")
	fmt.Fprintln(sessionOut, "Commands: :help, :show [range], :recalc, :quit")
	fmt.Fprintln(sessionOut)

	for {
		line, ok := r.readLine(sessionOut)
		if !ok {
			return 0
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if r.handleCommand(sessionOut, line) {
				return 0
			}
			continue
		}
		r.handleAssignOrRead(sessionOut, line)
	}
}

func (r *repl) readLine(out io.Writer) (string, bool) {
	if r.tty != nil {
		return r.tty.readLine(prompt)
	}
	fmt.Fprint(out, prompt)
	sl, ok := <-r.scanCh
	if !ok || sl.err != nil {
		return "", false
	}
	return sl.text, sl.ok
}

// handleCommand dispatches a ':'-prefixed command. Returns true if the REPL
// should exit.
func (r *repl) handleCommand(out io.Writer, line string) bool {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case ":quit", ":q", ":exit":
		fmt.Fprintln(out, "bye")
		return true

	case ":help", ":h":
		printHelp(out)

	case ":show", ":s":
		r.showGrid(out, args)

	case ":recalc":
		r.sheet.Recalculate()
		fmt.Fprintln(out, "recalculated")

	case ":seed":
		if len(args) != 1 {
			fmt.Fprintln(out, "usage: :seed <name>")
			break
		}
		sheet.Seed(args[0], r.sheet)
		fmt.Fprintf(out, "seeded %q\n", args[0])

	case ":format":
		r.handleFormat(out, args)

	case ":color":
		r.handleColor(out, args)

	case ":insertrow":
		r.handleStructural(out, "insert row", args, r.sheet.InsertRow)
	case ":deleterow":
		r.handleStructural(out, "delete row", args, r.sheet.DeleteRow)
	case ":insertcol":
		r.handleStructural(out, "insert column", args, r.sheet.InsertColumn)
	case ":deletecol":
		r.handleStructural(out, "delete column", args, r.sheet.DeleteColumn)

	case ":save":
		r.handleSave(out, args)
	case ":load":
		r.handleLoad(out, args)

	case ":clear":
		fmt.Fprint(out, "\x1b[2J\x1b[H")

	default:
		fmt.Fprintf(out, "unknown command: %s (try :help)\n", cmd)
	}
	return false
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  :help, :h                    show this help")
	fmt.Fprintln(out, "  :quit, :q, :exit             leave the REPL")
	fmt.Fprintln(out, "  :show, :s [A1:C10]           print the grid (default: used range)")
	fmt.Fprintln(out, "  :recalc                      force a recalculation")
	fmt.Fprintln(out, "  :seed <name>                 populate with example data")
	fmt.Fprintln(out, "  :format <ref> <kind> [style] set a cell's display format")
	fmt.Fprintln(out, "  :color <ref> text|bg <name>  set a cell's text/background color")
	fmt.Fprintln(out, "                               (black|red|green|yellow|blue|magenta|")
	fmt.Fprintln(out, "                               cyan|white or #RRGGBB)")
	fmt.Fprintln(out, "  :insertrow/:deleterow <n>    structural row edit")
	fmt.Fprintln(out, "  :insertcol/:deletecol <n>    structural column edit")
	fmt.Fprintln(out, "  :save <path> [formulas]      write the sheet to CSV")
	fmt.Fprintln(out, "  :load <path> [formulas]      read the sheet from CSV")
	fmt.Fprintln(out, "  :clear                       clear the screen")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Cell assignment: REF=VALUE, e.g. A1=10, B1=hello, C1==SUM(A1:B1)")
	fmt.Fprintln(out, "Cell read: bare REF, e.g. A1")
}

// handleAssignOrRead parses "REF=VALUE" as an assignment, or a bare REF as a
// read. VALUE starting with '=' is a formula; otherwise it's a number if it
// parses as one, else text.
func (r *repl) handleAssignOrRead(out io.Writer, line string) {
	eq := strings.Index(line, "=")
	if eq < 0 {
		ref, err := sheet.ParseRef(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		fmt.Fprintln(out, r.sheet.Display(ref))
		return
	}

	refText := strings.TrimSpace(line[:eq])
	value := line[eq+1:]
	ref, err := sheet.ParseRef(refText)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}

	switch {
	case strings.HasPrefix(value, "="):
		err = r.sheet.SetFormula(ref, value)
	default:
		if v, perr := strconv.ParseFloat(strings.TrimSpace(value), 64); perr == nil {
			err = r.sheet.SetNumber(ref, v)
		} else {
			err = r.sheet.SetText(ref, value)
		}
	}
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	r.sheet.Recalculate()
	fmt.Fprintf(out, "%s = %s\n", ref, r.sheet.Display(ref))
}

func (r *repl) handleFormat(out io.Writer, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(out, "usage: :format <ref> <general|number|percentage|currency|date|time|datetime> [style]")
		return
	}
	ref, err := sheet.ParseRef(args[0])
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	kind, ok := parseFormatKind(args[1])
	if !ok {
		fmt.Fprintf(out, "unknown format kind %q\n", args[1])
		return
	}
	style := ""
	if len(args) > 2 {
		style = strings.Join(args[2:], " ")
	}
	r.sheet.SetFormat(ref, kind, style)
	fmt.Fprintf(out, "%s formatted as %s\n", ref, args[1])
}

// handleColor parses ":color <ref> text|bg <name|#RRGGBB>" and stores the
// resolved 16-colour palette index on the cell via ParseColor.
func (r *repl) handleColor(out io.Writer, args []string) {
	if len(args) != 3 {
		fmt.Fprintln(out, "usage: :color <ref> text|bg <name|#RRGGBB>")
		return
	}
	ref, err := sheet.ParseRef(args[0])
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	idx, err := sheet.ParseColor(args[2])
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	switch strings.ToLower(args[1]) {
	case "text":
		r.sheet.SetTextColor(ref, idx)
	case "bg":
		r.sheet.SetBgColor(ref, idx)
	default:
		fmt.Fprintf(out, "unknown color target %q (want text or bg)\n", args[1])
		return
	}
	fmt.Fprintf(out, "%s %s color set to %s (index %d)\n", ref, args[1], args[2], idx)
}

func parseFormatKind(s string) (sheet.FormatKind, bool) {
	switch strings.ToLower(s) {
	case "general":
		return sheet.FormatGeneral, true
	case "number":
		return sheet.FormatNumber, true
	case "percentage":
		return sheet.FormatPercentage, true
	case "currency":
		return sheet.FormatCurrency, true
	case "date":
		return sheet.FormatDate, true
	case "time":
		return sheet.FormatTime, true
	case "datetime":
		return sheet.FormatDateTime, true
	}
	return 0, false
}

func (r *repl) handleStructural(out io.Writer, label string, args []string, fn func(int) error) {
	if len(args) != 1 {
		fmt.Fprintf(out, "usage: %s expects a 1-based row/column number\n", label)
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	if err := fn(n - 1); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	r.sheet.Recalculate()
	fmt.Fprintf(out, "%s %d done\n", label, n)
}

func (r *repl) handleSave(out io.Writer, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(out, "usage: :save <path> [formulas]")
		return
	}
	preserve := len(args) > 1 && args[1] == "formulas"
	f, err := os.Create(args[0])
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	defer f.Close()
	if err := r.sheet.SaveCSV(f, preserve); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "saved %s\n", args[0])
}

func (r *repl) handleLoad(out io.Writer, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(out, "usage: :load <path> [formulas]")
		return
	}
	preserve := len(args) > 1 && args[1] == "formulas"
	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	defer f.Close()
	if err := r.sheet.LoadCSV(f, preserve); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "loaded %s\n", args[0])
}

// showGrid prints a plain-text table of either the explicit range given in
// args[0] (A1:C10 form) or the sheet's used range.
func (r *repl) showGrid(out io.Writer, args []string) {
	startRow, startCol, endRow, endCol := 0, 0, -1, -1
	if len(args) > 0 {
		rg, err := sheet.ParseRange(args[0])
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		startRow, startCol, endRow, endCol = rg.Start.Row, rg.Start.Col, rg.End.Row, rg.End.Col
	} else {
		for row := 0; row < r.sheet.Rows(); row++ {
			for col := 0; col < r.sheet.Cols(); col++ {
				if r.sheet.Get(sheet.Ref{Row: row, Col: col}).Kind == sheet.KindEmpty {
					continue
				}
				if row > endRow {
					endRow = row
				}
				if col > endCol {
					endCol = col
				}
			}
		}
	}

	for row := startRow; row <= endRow; row++ {
		cells := make([]string, 0, endCol-startCol+1)
		for col := startCol; col <= endCol; col++ {
			ref := sheet.Ref{Row: row, Col: col}
			cells = append(cells, r.sheet.Display(ref))
		}
		fmt.Fprintf(out, "%3d | %s\n", row+1, strings.Join(cells, " | "))
	}
}
