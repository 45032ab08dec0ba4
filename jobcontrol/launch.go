package jobcontrol

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

// ProcSpec is one process to launch as part of a job: its argv and the
// already-resolved file descriptors redirection has produced (spec §4.6
// "Launching a job").
type ProcSpec struct {
	Argv   []string
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
	Env    []string
}

// resetJobControlSignals briefly restores default dispositions for the
// signals the shell itself ignores, for the narrow window in which
// exec.Cmd.Start forks the child: POSIX preserves SIG_IGN across execve,
// so a child that should respond normally to ^C/^Z must not inherit the
// shell's ignore state (spec §4.6 "resets SIGINT/SIGQUIT/SIGTSTP/
// SIGTTIN/SIGTTOU/SIGCHLD to their default dispositions"). The shell is
// single-threaded with respect to job launches (spec §5), so this window
// never overlaps another fork.
func resetJobControlSignals() {
	signal.Reset(syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTSTP, syscall.SIGTTIN, syscall.SIGTTOU, syscall.SIGCHLD)
}

func reIgnoreJobControlSignals() {
	signal.Ignore(syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTSTP, syscall.SIGTTIN, syscall.SIGTTOU)
}

// Launch starts every process in specs as one job, wiring process-group
// membership as it goes (spec §4.6). Foreground jobs are waited for
// synchronously before Launch returns; background jobs are reported with
// "[id] pid" and Launch returns immediately.
func (t *Table) Launch(specs []ProcSpec, foreground bool, command string) (*Job, error) {
	t.mu.Lock()
	slot := t.findSlot()
	if slot < 0 {
		t.mu.Unlock()
		return nil, fmt.Errorf("hush: too many jobs")
	}
	job := &Job{ID: slot + 1, Command: command, State: Running, Foreground: foreground}
	t.slots[slot] = job
	t.mu.Unlock()

	cmds := make([]*exec.Cmd, len(specs))
	for i, spec := range specs {
		cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = spec.Stdin, spec.Stdout, spec.Stderr
		if spec.Env != nil {
			cmd.Env = spec.Env
		}
		// Every stage joins the job's own process group regardless of
		// whether the table owns a controlling terminal: waitForJob always
		// waits on -job.PGID, and that only works once something has put
		// these pids in a group of their own (spec §4.6 "the parent blocks
		// in waitpid(-pgid, WUNTRACED)"). Only the terminal hand-off itself
		// (tcsetpgrp) is gated on interactivity.
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		if job.PGID != 0 {
			cmd.SysProcAttr.Pgid = job.PGID
		}
		cmds[i] = cmd

		if t.interactive {
			resetJobControlSignals()
		}
		err := cmd.Start()
		if t.interactive {
			reIgnoreJobControlSignals()
		}
		if err != nil {
			fmt.Fprintf(t.Stderr, "hush: %s: %v\n", spec.Argv[0], err)
			t.mu.Lock()
			t.Remove(job.ID)
			t.mu.Unlock()
			return nil, err
		}

		pid := cmd.Process.Pid
		if job.PGID == 0 {
			job.PGID = pid
		}
		job.Processes = append(job.Processes, &Process{Pid: pid})

		// Redundant setpgid from the parent side, to close the race where
		// the child hasn't yet called setpgid itself when the next stage
		// or the foreground hand-off needs job.PGID.
		_ = setpgidSafe(pid, job.PGID)
	}

	t.mu.Lock()
	t.byPGID[job.PGID] = job
	t.mu.Unlock()

	if t.interactive && foreground {
		if err := t.setForegroundPGID(job.PGID); err != nil {
			fmt.Fprintf(t.Stderr, "hush: tcsetpgrp: %v\n", err)
		}
	}

	if foreground {
		t.waitForJob(job)
		if t.interactive {
			t.setForegroundPGID(t.shellPGID)
		}
		t.mu.Lock()
		done := job.completed()
		if done {
			t.Remove(job.ID)
		} else if job.stopped() {
			job.State = Stopped
			job.Notified = true
			fmt.Fprintf(t.Stderr, "[%d]  Stopped\t\t%s\n", job.ID, job.Command)
		}
		t.mu.Unlock()
	} else {
		fmt.Fprintf(t.Stderr, "[%d] %d\n", job.ID, job.PGID)
	}

	return job, nil
}

func setpgidSafe(pid, pgid int) error {
	err := syscall.Setpgid(pid, pgid)
	if err != nil && err == syscall.EACCES {
		return nil
	}
	return err
}
