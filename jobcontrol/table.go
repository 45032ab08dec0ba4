package jobcontrol

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Table is the job table plus the terminal-ownership state every launch
// and wait operation consults (spec §4.6 "Initialization", §3 invariants).
// Its slots are id = slot + 1, matching original_source/src/jobs.c's
// find_empty_job_slot/create_job coupling (spec §9 open question 3: this
// is preserved intentionally, including disown leaving holes).
type Table struct {
	mu sync.Mutex

	slots    [MaxJobs]*Job
	byPGID   map[int]*Job
	terminal int // controlling terminal fd, or -1 if not interactive
	shellPGID int
	interactive bool
	origTermState *term.State

	Stderr io.Writer
}

// NewTable constructs a job table bound to fd as the controlling terminal.
// If fd does not refer to a terminal, the table runs in non-interactive
// mode: no process-group/terminal negotiation is attempted, matching a
// shell driven from a pipe or script file.
func NewTable(fd int, stderr io.Writer) *Table {
	t := &Table{
		byPGID:      map[int]*Job{},
		terminal:    fd,
		interactive: term.IsTerminal(fd),
		Stderr:      stderr,
	}
	return t
}

// Interactive reports whether the table is managing a real controlling
// terminal.
func (t *Table) Interactive() bool { return t.interactive }

// Init performs spec §4.6 "Initialization": claims the terminal, installs
// SIG_IGN for the job-control signals, and snapshots terminal attributes.
// It is a no-op when the table is not interactive.
func (t *Table) Init() error {
	if !t.interactive {
		return nil
	}

	// Loop sending SIGTTIN to the pgid that currently owns the terminal
	// until the shell itself is in the foreground.
	for {
		fg, err := unix.IoctlGetInt(t.terminal, unix.TIOCGPGRP)
		if err != nil {
			return err
		}
		pgid := os.Getpgrp()
		if fg == pgid {
			break
		}
		syscall.Kill(-pgid, syscall.SIGTTIN)
	}

	signal.Ignore(syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTSTP, syscall.SIGTTIN, syscall.SIGTTOU)

	shellPID := os.Getpid()
	if err := unix.Setpgid(shellPID, shellPID); err != nil {
		return fmt.Errorf("hush: couldn't put the shell in its own process group: %w", err)
	}
	t.shellPGID = shellPID

	if err := t.setForegroundPGID(shellPID); err != nil {
		return err
	}

	state, err := term.GetState(t.terminal)
	if err != nil {
		return err
	}
	t.origTermState = state

	t.startReaper()
	return nil
}

// Restore puts the terminal back in the mode it was in at Init, for an
// atexit-style restore hook (spec §4.1 "on any unexpected termination
// path an atexit-style hook restores it").
func (t *Table) Restore() {
	if !t.interactive || t.origTermState == nil {
		return
	}
	term.Restore(t.terminal, t.origTermState)
}

func (t *Table) setForegroundPGID(pgid int) error {
	return unix.IoctlSetPointerInt(t.terminal, unix.TIOCSPGRP, pgid)
}

// findSlot returns the first empty slot index, or -1 if the table is full
// (original_source find_empty_job_slot).
func (t *Table) findSlot() int {
	for i, j := range t.slots {
		if j == nil {
			return i
		}
	}
	return -1
}

// ByID returns the job at the given 1-based id.
func (t *Table) ByID(id int) *Job {
	if id <= 0 || id > MaxJobs {
		return nil
	}
	return t.slots[id-1]
}

// Current returns the job in the highest-numbered occupied slot, the
// default for "fg" with no argument. Slots fill lowest-first, so this is the
// most recently created job unless a newer job reused a lower slot that an
// older job had freed.
func (t *Table) Current() *Job {
	for i := len(t.slots) - 1; i >= 0; i-- {
		if j := t.slots[i]; j != nil {
			return j
		}
	}
	return nil
}

// MostRecentStopped returns the STOPPED job in the highest-numbered slot,
// for "bg" with no argument, scanning slots the same way as Current.
func (t *Table) MostRecentStopped() *Job {
	for i := len(t.slots) - 1; i >= 0; i-- {
		if j := t.slots[i]; j != nil && j.State == Stopped {
			return j
		}
	}
	return nil
}

// All returns every live job slot in table order, for the "jobs" builtin.
func (t *Table) All() []*Job {
	var out []*Job
	for _, j := range t.slots {
		if j != nil {
			out = append(out, j)
		}
	}
	return out
}

// Remove clears job id's slot without killing its processes (used by both
// normal cleanup of DONE jobs and by "disown").
func (t *Table) Remove(id int) {
	if id <= 0 || id > MaxJobs {
		return
	}
	if j := t.slots[id-1]; j != nil {
		delete(t.byPGID, j.PGID)
	}
	t.slots[id-1] = nil
}
