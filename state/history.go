package state

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// historyMax is the ring's capacity (spec §3 "at most 100 entries").
const historyMax = 100

// History is the bounded, oldest-first command-line ring (spec §3
// "History entry" / §8 invariant: count <= 100, no two equal adjacent
// entries). Grounded on original_source/src/history.c's hush_add_to_history
// (shift-left-and-append-on-overflow, skip if same as the last entry).
type History struct {
	entries []string
}

func NewHistory() *History {
	return &History{}
}

// Add appends line to the ring, enforcing the duplicate-consecutive and
// capacity invariants. Empty lines are never recorded.
func (h *History) Add(line string) {
	if line == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}
	if len(h.entries) >= historyMax {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, line)
}

// Count implements expand.History.
func (h *History) Count() int { return len(h.entries) }

// Entry implements expand.History: n is 1-based, oldest first.
func (h *History) Entry(n int) (string, bool) {
	if n < 1 || n > len(h.entries) {
		return "", false
	}
	return h.entries[n-1], true
}

// All returns every entry, oldest first, for the "history" builtin.
func (h *History) All() []string {
	return append([]string(nil), h.entries...)
}

// filePath returns $HOME/.hush_history (spec §6 "Persisted state").
func filePath(home string) string {
	return filepath.Join(home, ".hush_history")
}

// Load reads up to historyMax lines from $HOME/.hush_history, oldest
// first, truncating at the cap (spec §6: "loaded on startup (truncated at
// 100 entries)"). A missing file is not an error.
func (h *History) Load(home string) error {
	f, err := os.Open(filePath(home))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if len(lines) > historyMax {
		lines = lines[len(lines)-historyMax:]
	}
	h.entries = lines
	return nil
}

// Save rewrites $HOME/.hush_history, one entry per line, atomically via
// renameio so a crash mid-write never leaves a truncated history file
// (spec §6: "rewritten on clean exit").
func (h *History) Save(home string) error {
	t, err := renameio.TempFile("", filePath(home))
	if err != nil {
		return err
	}
	defer t.Cleanup()

	w := bufio.NewWriter(t)
	for _, e := range h.entries {
		if _, err := w.WriteString(e); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return t.CloseAtomicallyReplace()
}
