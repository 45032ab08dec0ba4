package lineeditor

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/frankban/quicktest"
)

func newPipeEditor(c *quicktest.C, input string) (*Editor, *bytes.Buffer) {
	r, w, err := os.Pipe()
	c.Assert(err, quicktest.IsNil)
	c.Cleanup(func() { r.Close() })
	go func() {
		w.WriteString(input)
		w.Close()
	}()
	var out bytes.Buffer
	return New(r, &out), &out
}

func TestReadLineNonInteractiveReadsOneLine(t *testing.T) {
	c := quicktest.New(t)
	ed, _ := newPipeEditor(c, "echo hi\nsecond\n")

	line, err := ed.readLineNonInteractive()
	c.Assert(err, quicktest.IsNil)
	c.Assert(line, quicktest.Equals, "echo hi")

	line, err = ed.readLineNonInteractive()
	c.Assert(err, quicktest.IsNil)
	c.Assert(line, quicktest.Equals, "second")
}

func TestReadLineNonInteractiveHandlesMissingTrailingNewline(t *testing.T) {
	c := quicktest.New(t)
	ed, _ := newPipeEditor(c, "no newline at end")

	line, err := ed.readLineNonInteractive()
	c.Assert(err, quicktest.IsNil)
	c.Assert(line, quicktest.Equals, "no newline at end")
}

func TestReadRawLineEchoesPromptAndSharesReader(t *testing.T) {
	c := quicktest.New(t)
	ed, out := newPipeEditor(c, "line one\nline two\n")

	line, ok := ed.ReadRawLine("> ")
	c.Assert(ok, quicktest.IsTrue)
	c.Assert(line, quicktest.Equals, "line one")
	c.Assert(out.String(), quicktest.Equals, "> ")

	// the second ReadRawLine must see "line two" rather than losing it to
	// a second independent reader over the same fd.
	line, ok = ed.ReadRawLine("")
	c.Assert(ok, quicktest.IsTrue)
	c.Assert(line, quicktest.Equals, "line two")
}

func TestReadRawLineReportsEOFOnEmptyRead(t *testing.T) {
	c := quicktest.New(t)
	ed, _ := newPipeEditor(c, "")

	_, ok := ed.ReadRawLine("")
	c.Assert(ok, quicktest.IsFalse)
}

func TestLongestCommonPrefix(t *testing.T) {
	c := quicktest.New(t)
	c.Assert(longestCommonPrefix(nil), quicktest.Equals, "")
	c.Assert(longestCommonPrefix([]string{"ls"}), quicktest.Equals, "ls")
	c.Assert(longestCommonPrefix([]string{"list", "listen", "listener"}), quicktest.Equals, "list")
	c.Assert(longestCommonPrefix([]string{"foo", "bar"}), quicktest.Equals, "")
}

func TestPrintColumnsWrapsAtWidth(t *testing.T) {
	c := quicktest.New(t)
	var buf bytes.Buffer
	printColumns(&buf, []string{"aa", "bb", "cc", "dd"}, 10)
	lines := strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\r\n")
	c.Assert(len(lines) > 1, quicktest.IsTrue)
}

func TestPrintColumnsSingleColumnWhenNarrow(t *testing.T) {
	c := quicktest.New(t)
	var buf bytes.Buffer
	printColumns(&buf, []string{"alpha", "beta"}, 1)
	out := buf.String()
	c.Assert(strings.Count(out, "\r\n"), quicktest.Equals, 2)
}

func TestHistoryUpSavesDraftThenRestoresOnDown(t *testing.T) {
	c := quicktest.New(t)
	ed := New(os.Stdin, &bytes.Buffer{})
	ed.History = fakeHistory{"first", "second"}

	ls := &lineState{buf: []rune("draft"), pos: 5, histAt: 2}
	ed.historyUp(ls)
	c.Assert(string(ls.buf), quicktest.Equals, "second")

	ed.historyUp(ls)
	c.Assert(string(ls.buf), quicktest.Equals, "first")

	ed.historyDown(ls)
	c.Assert(string(ls.buf), quicktest.Equals, "second")

	ed.historyDown(ls)
	c.Assert(string(ls.buf), quicktest.Equals, "draft")
}

type fakeHistory []string

func (h fakeHistory) Count() int { return len(h) }
func (h fakeHistory) Entry(n int) (string, bool) {
	if n < 1 || n > len(h) {
		return "", false
	}
	return h[n-1], true
}
