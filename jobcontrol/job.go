// Package jobcontrol implements the Job Control subsystem (C6):
// process-group management, foreground/background transitions, terminal
// ownership transfer, signal-driven reaping, and the job state machine
// (spec §4.6). Grounded on original_source/src/jobs.c, translated from its
// fixed MAX_JOBS array-of-pointers into a Go slice of slots, and on
// mvdan.cc/sh/v3/interp/handler_unix.go's Setpgid pattern for the
// process-group mechanics.
package jobcontrol

import (
	"golang.org/x/term"
)

// MaxJobs bounds the job table (spec §3 "id (dense integer in [1,
// MAX_JOBS], MAX_JOBS=20)").
const MaxJobs = 20

// State is a job's position in the state machine of spec §4.6.
type State int

const (
	Running State = iota
	Stopped
	Done
	Terminated
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	case Done:
		return "Done"
	case Terminated:
		return "Terminated"
	}
	return "?"
}

// Process is one member of a job (spec §3 "Process").
type Process struct {
	Pid       int
	Status    int // decoded exit code, not the raw wait status; see Signaled/Signal
	Stopped   bool
	Completed bool
	Signaled  bool
	Signal    int
}

// Job is one logical unit of work: a single process for a simple command,
// or one process per pipeline stage sharing a process group (spec §3
// "Job", GLOSSARY).
type Job struct {
	ID         int
	PGID       int
	Command    string
	State      State
	Foreground bool
	Notified   bool
	SavedTerm  *term.State
	Processes  []*Process
}

// completed reports whether every member process has completed, matching
// original_source job_is_completed.
func (j *Job) completed() bool {
	for _, p := range j.Processes {
		if !p.Completed {
			return false
		}
	}
	return true
}

// stopped reports whether every live member process is stopped, matching
// original_source job_is_stopped.
func (j *Job) stopped() bool {
	for _, p := range j.Processes {
		if !p.Completed && !p.Stopped {
			return false
		}
	}
	return true
}

// ExitStatus is the exit status of the job's last process, used as a
// pipeline's overall exit status (spec §4.5 item 2, §5 "Ordering
// guarantees": "the pipeline's overall exit status is the exit status of
// the rightmost subcommand").
func (j *Job) ExitStatus() int {
	if len(j.Processes) == 0 {
		return 0
	}
	last := j.Processes[len(j.Processes)-1]
	if last.Signaled {
		return 128 + last.Signal
	}
	return last.Status
}
