// Package lineeditor implements the Line Reader (C1): raw-mode terminal
// input, cursor movement, history scrolling and tab completion, producing
// one logical input line per ReadLine call (spec §4.1). The character-at-a-
// time state machine is grounded on
// _examples/kylelemons-goat/term/term_line.go's linechar/lineesc, adapted
// from that package's byte-stream protocol to a direct raw-fd reader driven
// by golang.org/x/term.
package lineeditor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// History is the subset of state.History the editor needs for Up/Down
// navigation, kept minimal so lineeditor doesn't import state directly.
type History interface {
	Count() int
	Entry(n int) (string, bool)
}

// Completer resolves a partial line into a set of completion candidates,
// implemented by the shell package using fileutil/pattern (spec §4.1
// "Completion protocol").
type Completer interface {
	Complete(line string, cursor int) (replaced string, candidates []string)
}

// Editor reads logical lines from a terminal in raw mode.
type Editor struct {
	in     *os.File
	out    io.Writer
	reader *bufio.Reader

	Prompt    string
	History   History
	Completer Completer

	origState *term.State
}

// New constructs an Editor reading from in and writing prompts/echo to out.
func New(in *os.File, out io.Writer) *Editor {
	return &Editor{in: in, out: out, reader: bufio.NewReader(in)}
}

// raw state (buffer B, cursor P, history cursor H — spec §4.1 table).
type lineState struct {
	buf    []rune
	pos    int
	histAt int // index into history count; == count means "not browsing"
	draft  []rune
}

// ReadLine enters raw mode, reads keys until Enter or EOF, restores the
// terminal, and returns the logical line (spec §4.1: "On return from the
// reader, the terminal is restored to the mode in effect at entry").
func (e *Editor) ReadLine() (string, error) {
	fd := int(e.in.Fd())
	if !term.IsTerminal(fd) {
		return e.readLineNonInteractive()
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return e.readLineNonInteractive()
	}
	e.origState = state
	defer e.Restore()

	ls := &lineState{histAt: e.historyCount()}
	e.redisplay(ls)

	for {
		b, err := e.reader.ReadByte()
		if err != nil {
			return "", err
		}
		switch b {
		case '\r', '\n':
			fmt.Fprint(e.out, "\r\n")
			return string(ls.buf), nil
		case 3: // Ctrl-C
			ls.buf = ls.buf[:0]
			ls.pos = 0
			ls.histAt = e.historyCount()
			e.redisplay(ls)
		case 12: // Ctrl-L
			fmt.Fprint(e.out, "\x1b[2J\x1b[H")
			e.redisplay(ls)
		case 127, 8: // Backspace / Ctrl-H
			if ls.pos > 0 {
				ls.buf = append(ls.buf[:ls.pos-1], ls.buf[ls.pos:]...)
				ls.pos--
				e.redisplay(ls)
			}
		case 9: // Tab
			e.complete(ls)
			e.redisplay(ls)
		case 1: // Ctrl-A / Home
			ls.pos = 0
			e.redisplay(ls)
		case 5: // Ctrl-E / End
			ls.pos = len(ls.buf)
			e.redisplay(ls)
		case 27: // ESC - CSI sequence
			if !e.handleEscape(ls) {
				continue
			}
			e.redisplay(ls)
		default:
			if b >= 32 && b < 127 {
				ls.buf = append(ls.buf[:ls.pos], append([]rune{rune(b)}, ls.buf[ls.pos:]...)...)
				ls.pos++
				e.redisplay(ls)
			}
		}
	}
}

// ReadRawLine reads one line without raw-mode key handling, echoing prompt
// first: used for here-document bodies, which
// original_source/src/redirection.c reads with a plain fgets loop rather
// than through the full editor. Script and piped input, continuation lines
// included, go through ReadLine instead.
func (e *Editor) ReadRawLine(prompt string) (string, bool) {
	if prompt != "" {
		fmt.Fprint(e.out, prompt)
	}
	line, err := e.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

// readLineNonInteractive supports piped stdin and scripts (spec §6
// "invocation modes"), where no raw-mode editing applies.
func (e *Editor) readLineNonInteractive() (string, error) {
	line, err := e.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Restore returns the terminal to the mode captured at ReadLine entry
// (spec §4.1). cmd/hush does not call it; its exit-time terminal restore
// is the deferred jobcontrol Table.Restore.
func (e *Editor) Restore() {
	if e.origState != nil {
		term.Restore(int(e.in.Fd()), e.origState)
		e.origState = nil
	}
}

// handleEscape consumes a "ESC [ <letter>" cursor sequence and applies Left
// /Right/Up/Down, returning whether ls changed in a way that needs a
// redisplay.
func (e *Editor) handleEscape(ls *lineState) bool {
	b1, err := e.reader.ReadByte()
	if err != nil || b1 != '[' {
		return false
	}
	b2, err := e.reader.ReadByte()
	if err != nil {
		return false
	}
	switch b2 {
	case 'C': // Right
		if ls.pos < len(ls.buf) {
			ls.pos++
		}
	case 'D': // Left
		if ls.pos > 0 {
			ls.pos--
		}
	case 'H': // Home
		ls.pos = 0
	case 'F': // End
		ls.pos = len(ls.buf)
	case 'A': // Up
		e.historyUp(ls)
	case 'B': // Down
		e.historyDown(ls)
	}
	return true
}

func (e *Editor) historyCount() int {
	if e.History == nil {
		return 0
	}
	return e.History.Count()
}

// historyUp implements "if H>0: save B on first press as the draft, H--,
// B := history[H]" (spec §4.1).
func (e *Editor) historyUp(ls *lineState) {
	count := e.historyCount()
	if count == 0 || ls.histAt <= 0 {
		return
	}
	if ls.histAt == count {
		ls.draft = append([]rune(nil), ls.buf...)
	}
	ls.histAt--
	entry, ok := e.History.Entry(ls.histAt + 1)
	if !ok {
		return
	}
	ls.buf = []rune(entry)
	ls.pos = len(ls.buf)
}

// historyDown implements "H++; if H == count restore draft (or empty)"
// (spec §4.1).
func (e *Editor) historyDown(ls *lineState) {
	count := e.historyCount()
	if ls.histAt >= count {
		return
	}
	ls.histAt++
	if ls.histAt == count {
		ls.buf = append([]rune(nil), ls.draft...)
		ls.pos = len(ls.buf)
		return
	}
	entry, ok := e.History.Entry(ls.histAt + 1)
	if !ok {
		return
	}
	ls.buf = []rune(entry)
	ls.pos = len(ls.buf)
}

// redisplay implements spec §4.1's exact protocol: CR, prompt, buffer,
// erase-to-EOL, CR, reposition.
func (e *Editor) redisplay(ls *lineState) {
	fmt.Fprint(e.out, "\r"+e.Prompt+string(ls.buf)+"\x1b[K\r")
	if n := len(e.Prompt) + ls.pos; n > 0 {
		fmt.Fprint(e.out, "\x1b["+strconv.Itoa(n)+"C")
	}
}

func (e *Editor) complete(ls *lineState) {
	if e.Completer == nil {
		return
	}
	line := string(ls.buf)
	replaced, candidates := e.Completer.Complete(line, ls.pos)
	switch len(candidates) {
	case 0:
		return
	case 1:
		ls.buf = []rune(replaced + candidates[0])
		ls.pos = len(ls.buf)
	default:
		common := longestCommonPrefix(candidates)
		extended := replaced + common
		if extended == line {
			e.showCandidates(candidates)
			return
		}
		ls.buf = []rune(extended)
		ls.pos = len(ls.buf)
	}
}

// showCandidates implements the ">100 candidates" confirmation and the
// columnar listing (spec §4.1).
func (e *Editor) showCandidates(candidates []string) {
	fmt.Fprint(e.out, "\r\n")
	if len(candidates) > 100 {
		fmt.Fprintf(e.out, "Display all %d possibilities? (y or n)", len(candidates))
		b, err := e.reader.ReadByte()
		fmt.Fprint(e.out, "\r\n")
		if err != nil || (b != 'y' && b != 'Y') {
			return
		}
	}
	width := terminalWidth(e.in)
	printColumns(e.out, candidates, width)
}

func longestCommonPrefix(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	prefix := ss[0]
	for _, s := range ss[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}

// terminalWidth falls back to $COLUMNS and then 80 when TIOCGWINSZ fails
// (spec §4.1 "Environment variables consumed").
func terminalWidth(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && cols > 0 {
		return cols
	}
	return 80
}

func printColumns(w io.Writer, items []string, width int) {
	longest := 0
	for _, s := range items {
		if len(s) > longest {
			longest = len(s)
		}
	}
	colWidth := longest + 2
	cols := width / colWidth
	if cols < 1 {
		cols = 1
	}
	for i, s := range items {
		fmt.Fprint(w, s)
		if (i+1)%cols == 0 || i == len(items)-1 {
			fmt.Fprint(w, "\r\n")
		} else {
			fmt.Fprint(w, strings.Repeat(" ", colWidth-len(s)))
		}
	}
}
