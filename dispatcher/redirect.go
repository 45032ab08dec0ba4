// Package dispatcher implements the Dispatcher (C5): decides builtin vs.
// external, sets up redirections and pipelines, and invokes Job Control
// (spec §4.5). Grounded on original_source/src/redirection.c's
// setup_redirection/reset_redirection for the fd-save/dup2/restore
// discipline, and original_source/src/execute.c for the routing order.
package dispatcher

import (
	"fmt"
	"os"
	"syscall"

	"hush/ast"
)

// savedFDs holds the duplicated standard descriptors a builtin's
// redirections displaced, so they can be restored byte-for-byte
// afterward (spec §8: "Redirections applied and then reverted restore
// the parent's fd table").
type savedFDs struct {
	stdin, stdout, stderr int
}

// applyBuiltinRedirects dup2's cmd's redirections onto fd 0/1/2 in the
// shell's own process, for in-process builtin execution (spec §4.5:
// "For builtin execution, the shell saves and later restores its own
// file-descriptor table").
func (d *Dispatcher) applyBuiltinRedirects(cmd *ast.Command) (*savedFDs, error) {
	saved := &savedFDs{stdin: -1, stdout: -1, stderr: -1}
	var err error
	if saved.stdin, err = syscall.Dup(0); err != nil {
		return nil, err
	}
	if saved.stdout, err = syscall.Dup(1); err != nil {
		return nil, err
	}
	if saved.stderr, err = syscall.Dup(2); err != nil {
		return nil, err
	}

	for _, r := range cmd.Redirs {
		if err := d.applyOneRedirect(r); err != nil {
			d.restoreBuiltinRedirects(saved)
			return nil, err
		}
	}
	return saved, nil
}

func (d *Dispatcher) restoreBuiltinRedirects(saved *savedFDs) {
	if saved.stdin >= 0 {
		syscall.Dup2(saved.stdin, 0)
		syscall.Close(saved.stdin)
	}
	if saved.stdout >= 0 {
		syscall.Dup2(saved.stdout, 1)
		syscall.Close(saved.stdout)
	}
	if saved.stderr >= 0 {
		syscall.Dup2(saved.stderr, 2)
		syscall.Close(saved.stderr)
	}
}

func (d *Dispatcher) applyOneRedirect(r ast.Redirect) error {
	switch r.Op {
	case ast.RedirIn:
		f, err := os.Open(r.Target)
		if err != nil {
			return err
		}
		defer f.Close()
		return syscall.Dup2(int(f.Fd()), 0)
	case ast.RedirOut:
		f, err := os.OpenFile(r.Target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		return syscall.Dup2(int(f.Fd()), 1)
	case ast.RedirAppend:
		f, err := os.OpenFile(r.Target, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		return syscall.Dup2(int(f.Fd()), 1)
	case ast.RedirErr:
		f, err := os.OpenFile(r.Target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		return syscall.Dup2(int(f.Fd()), 2)
	case ast.RedirErrApp:
		f, err := os.OpenFile(r.Target, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		return syscall.Dup2(int(f.Fd()), 2)
	case ast.RedirBoth:
		f, err := os.OpenFile(r.Target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := syscall.Dup2(int(f.Fd()), 1); err != nil {
			return err
		}
		return syscall.Dup2(int(f.Fd()), 2)
	case ast.RedirHeredoc:
		tmp, err := d.buildHeredoc(r.Target)
		if err != nil {
			return err
		}
		defer tmp.Close()
		return syscall.Dup2(int(tmp.Fd()), 0)
	}
	return fmt.Errorf("hush: unknown redirection")
}

// buildHeredoc collects lines via d.ReadHeredocLine until one equals
// delim, writes them to an unlinked temp file, and rewinds it (spec §4.5
// "<< WORD"; original_source/src/redirection.c's mkstemp+unlink dance).
func (d *Dispatcher) buildHeredoc(delim string) (*os.File, error) {
	tmp, err := os.CreateTemp("", "hush_heredoc_")
	if err != nil {
		return nil, err
	}
	os.Remove(tmp.Name())

	for {
		line, ok := d.ReadHeredocLine()
		if !ok || line == delim {
			break
		}
		if _, err := tmp.WriteString(line + "\n"); err != nil {
			tmp.Close()
			return nil, err
		}
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		tmp.Close()
		return nil, err
	}
	return tmp, nil
}

// openExternalRedirects resolves cmd's redirections into *os.File handles
// for a process launched via job control, which wires them directly into
// exec.Cmd rather than dup2'ing the shell's own fds (spec §4.5: "for
// external execution, the redirections happen in the child after fork";
// Go's os/exec performs the equivalent dup2 inside the forked child).
func openExternalRedirects(cmd *ast.Command, stdin, stdout, stderr *os.File, heredoc func(string) (*os.File, error)) (in, out, errf *os.File, cleanup func(), err error) {
	in, out, errf = stdin, stdout, stderr
	var opened []*os.File
	cleanup = func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, r := range cmd.Redirs {
		switch r.Op {
		case ast.RedirIn:
			f, e := os.Open(r.Target)
			if e != nil {
				cleanup()
				return nil, nil, nil, nil, e
			}
			opened = append(opened, f)
			in = f
		case ast.RedirOut:
			f, e := os.OpenFile(r.Target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if e != nil {
				cleanup()
				return nil, nil, nil, nil, e
			}
			opened = append(opened, f)
			out = f
		case ast.RedirAppend:
			f, e := os.OpenFile(r.Target, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
			if e != nil {
				cleanup()
				return nil, nil, nil, nil, e
			}
			opened = append(opened, f)
			out = f
		case ast.RedirErr:
			f, e := os.OpenFile(r.Target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if e != nil {
				cleanup()
				return nil, nil, nil, nil, e
			}
			opened = append(opened, f)
			errf = f
		case ast.RedirErrApp:
			f, e := os.OpenFile(r.Target, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
			if e != nil {
				cleanup()
				return nil, nil, nil, nil, e
			}
			opened = append(opened, f)
			errf = f
		case ast.RedirBoth:
			f, e := os.OpenFile(r.Target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if e != nil {
				cleanup()
				return nil, nil, nil, nil, e
			}
			opened = append(opened, f)
			out, errf = f, f
		case ast.RedirHeredoc:
			f, e := heredoc(r.Target)
			if e != nil {
				cleanup()
				return nil, nil, nil, nil, e
			}
			opened = append(opened, f)
			in = f
		}
	}
	return in, out, errf, cleanup, nil
}
