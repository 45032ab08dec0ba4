package jobcontrol

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"
)

// ParseSpec resolves a job specifier per spec §4.6 "Job specifier syntax":
// "%N" denotes job N; an empty string means "most recent" and is left to
// the caller (fg vs bg pick different defaults).
func (t *Table) ParseSpec(arg string) (*Job, error) {
	if !strings.HasPrefix(arg, "%") {
		return nil, fmt.Errorf("hush: invalid job specifier: %s", arg)
	}
	n, err := strconv.Atoi(arg[1:])
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("hush: invalid job specifier: %s", arg)
	}
	job := t.ByID(n)
	if job == nil {
		return nil, fmt.Errorf("hush: %s: no such job", arg)
	}
	return job, nil
}

// ContinueForeground resumes job in the foreground: SIGCONT to its
// process group, terminal hand-off, blocking wait, then terminal
// reclaim (original_source continue_job(job, 1) / put_job_in_foreground).
func (t *Table) ContinueForeground(job *Job) error {
	job.Foreground = true
	if t.interactive {
		if err := t.setForegroundPGID(job.PGID); err != nil {
			return err
		}
	}
	if err := syscall.Kill(-job.PGID, syscall.SIGCONT); err != nil {
		return err
	}
	job.State = Running
	for _, p := range job.Processes {
		p.Stopped = false
	}

	t.waitForJob(job)

	if t.interactive {
		t.setForegroundPGID(t.shellPGID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case job.completed():
		t.Remove(job.ID)
	case job.stopped():
		job.State = Stopped
		job.Notified = true
		fmt.Fprintf(t.Stderr, "[%d]  Stopped\t\t%s\n", job.ID, job.Command)
	}
	return nil
}

// ContinueBackground resumes job in the background (original_source
// continue_job(job, 0) / put_job_in_background).
func (t *Table) ContinueBackground(job *Job) error {
	job.Foreground = false
	if err := syscall.Kill(-job.PGID, syscall.SIGCONT); err != nil {
		return err
	}
	job.State = Running
	for _, p := range job.Processes {
		p.Stopped = false
	}
	fmt.Fprintf(t.Stderr, "[%d] %s\n", job.ID, job.Command)
	return nil
}

// Disown removes job from the table without touching its processes
// (spec §4.6 "disown"): its exit is no longer tracked.
func (t *Table) Disown(job *Job) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Remove(job.ID)
}

// WaitJob blocks until job has fully completed (the "wait %N" builtin).
func (t *Table) WaitJob(job *Job) {
	for {
		t.mu.Lock()
		done := job.completed()
		t.mu.Unlock()
		if done {
			return
		}
		var ws syscall.WaitStatus
		pid, err := syscall.Wait4(-job.PGID, &ws, syscall.WUNTRACED, nil)
		if err != nil {
			return
		}
		if pid > 0 {
			t.mu.Lock()
			t.updateProcessStatusLocked(pid, ws)
			t.mu.Unlock()
		}
	}
}

// WaitAll blocks until every job in the table has completed (plain
// "wait").
func (t *Table) WaitAll() {
	for {
		t.mu.Lock()
		var pending *Job
		for _, j := range t.slots {
			if j != nil && !j.completed() {
				pending = j
				break
			}
		}
		t.mu.Unlock()
		if pending == nil {
			return
		}
		t.WaitJob(pending)
	}
}
