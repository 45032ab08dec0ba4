package jobcontrol

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// waitForJob blocks until every process in job has either completed or
// stopped (spec §4.6 "the parent blocks in waitpid(-pgid, WUNTRACED)").
func (t *Table) waitForJob(job *Job) {
	for {
		var ws syscall.WaitStatus
		pid, err := syscall.Wait4(-job.PGID, &ws, syscall.WUNTRACED, nil)
		if err != nil {
			if err == syscall.ECHILD {
				return
			}
			if err == syscall.EINTR {
				continue
			}
			fmt.Fprintf(t.Stderr, "hush: waitpid: %v\n", err)
			return
		}
		if pid > 0 {
			t.mu.Lock()
			t.updateProcessStatusLocked(pid, ws)
			done, stopped := job.completed(), job.stopped()
			t.mu.Unlock()
			if done || stopped {
				return
			}
		}
	}
}

// updateProcessStatusLocked finds the process record matching pid across
// every job and records its new wait status, mirroring
// original_source/src/jobs.c update_process_status. Caller holds t.mu.
func (t *Table) updateProcessStatusLocked(pid int, ws syscall.WaitStatus) {
	job := t.jobForPidLocked(pid)
	if job == nil {
		return
	}
	for _, p := range job.Processes {
		if p.Pid != pid {
			continue
		}
		p.Status = ws.ExitStatus()
		switch {
		case ws.Stopped():
			p.Stopped = true
		case ws.Signaled():
			p.Completed = true
			p.Signaled = true
			p.Signal = int(ws.Signal())
			fmt.Fprintf(t.Stderr, "\n%d: Terminated by signal %d\n", pid, p.Signal)
		default:
			p.Completed = true
		}
		return
	}
}

func (t *Table) jobForPidLocked(pid int) *Job {
	for _, j := range t.slots {
		if j == nil {
			continue
		}
		for _, p := range j.Processes {
			if p.Pid == pid {
				return j
			}
		}
	}
	return nil
}

// startReaper installs the SIGCHLD handler (spec §4.6 "Reaping"): it loops
// waitpid(-1, WNOHANG|WUNTRACED) and annotates the matching process
// record. Only async-signal-safe work would be required of a real signal
// handler; here it runs on a dedicated goroutine fed by os/signal, which
// is the idiomatic Go equivalent (spec §9 "Signal-handler re-entrancy").
func (t *Table) startReaper() {
	ch := make(chan os.Signal, 16)
	signal.Notify(ch, syscall.SIGCHLD)
	go func() {
		for range ch {
			t.reapAvailable()
		}
	}()
}

// reapAvailable performs one non-blocking sweep of every reapable child,
// recording status changes without printing anything (printing is left to
// Sweep, called from the main loop between commands, per spec §4.6).
func (t *Table) reapAvailable() {
	for {
		var ws syscall.WaitStatus
		pid, err := syscall.Wait4(-1, &ws, syscall.WNOHANG|syscall.WUNTRACED, nil)
		if err != nil || pid <= 0 {
			return
		}
		t.mu.Lock()
		t.updateProcessStatusLocked(pid, ws)
		t.mu.Unlock()
	}
}

// Sweep is called between commands: it reaps any further available
// children, then for each job whose aggregate state has newly become DONE
// or STOPPED and is not yet notified, prints a one-line status report and
// marks it notified; DONE+notified jobs are then freed (spec §4.6).
func (t *Table) Sweep() {
	t.reapAvailable()

	t.mu.Lock()
	defer t.mu.Unlock()
	for i, j := range t.slots {
		if j == nil || j.Notified {
			continue
		}
		switch {
		case j.completed():
			fmt.Fprintf(t.Stderr, "[%d]  Done\t\t%s\n", j.ID, j.Command)
			j.State = Done
			j.Notified = true
		case j.stopped() && j.State != Stopped:
			fmt.Fprintf(t.Stderr, "[%d]  Stopped\t\t%s\n", j.ID, j.Command)
			j.State = Stopped
			j.Notified = true
		}
		if j.State == Done && j.Notified {
			delete(t.byPGID, j.PGID)
			t.slots[i] = nil
		}
	}
}
