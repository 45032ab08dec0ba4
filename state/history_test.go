package state

import (
	"path/filepath"
	"testing"

	"github.com/frankban/quicktest"
)

func TestHistorySkipsEmptyAndConsecutiveDuplicates(t *testing.T) {
	c := quicktest.New(t)
	h := NewHistory()
	h.Add("ls")
	h.Add("")
	h.Add("ls")
	h.Add("ls")
	h.Add("pwd")
	c.Assert(h.All(), quicktest.DeepEquals, []string{"ls", "pwd"})
}

func TestHistoryCapsAtMaximum(t *testing.T) {
	c := quicktest.New(t)
	h := NewHistory()
	for i := 0; i < historyMax+10; i++ {
		h.Add(itoa(i))
	}
	c.Assert(h.Count(), quicktest.Equals, historyMax)
	first, ok := h.Entry(1)
	c.Assert(ok, quicktest.IsTrue)
	c.Assert(first, quicktest.Equals, itoa(10))
}

func TestHistorySaveThenLoadRoundTrips(t *testing.T) {
	c := quicktest.New(t)
	home := t.TempDir()

	h := NewHistory()
	h.Add("echo one")
	h.Add("echo two")
	c.Assert(h.Save(home), quicktest.IsNil)

	loaded := NewHistory()
	c.Assert(loaded.Load(home), quicktest.IsNil)
	c.Assert(loaded.All(), quicktest.DeepEquals, []string{"echo one", "echo two"})
}

func TestHistoryLoadMissingFileIsNotAnError(t *testing.T) {
	c := quicktest.New(t)
	h := NewHistory()
	c.Assert(h.Load(t.TempDir()), quicktest.IsNil)
	c.Assert(h.Count(), quicktest.Equals, 0)
}

func TestFilePathJoinsHome(t *testing.T) {
	c := quicktest.New(t)
	c.Assert(filePath("/home/u"), quicktest.Equals, filepath.Join("/home/u", ".hush_history"))
}
