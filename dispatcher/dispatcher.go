// Package dispatcher implements the Dispatcher (C5): decides builtin vs.
// external, sets up redirections and pipelines, and invokes Job Control
// (spec §4.5). It is also where the control-flow constructs of §4.4
// actually run: the parser only recognizes their shape, execution happens
// here because running a branch or loop body means dispatching more
// commands. Grounded on original_source/src/execute.c's routing order and
// original_source/src/control.c's if/for/while execution.
package dispatcher

import (
	"io"
	"os"
	"os/exec"
	"strings"

	"hush/ast"
	"hush/expand"
	"hush/jobcontrol"
	"hush/state"
)

// Dispatcher routes parsed AST nodes to either an in-process builtin or an
// external job.
type Dispatcher struct {
	Shell *state.Shell
	Jobs  *jobcontrol.Table

	Stdout io.Writer
	Stderr io.Writer

	// ReadHeredocLine supplies the next line of a here-document body
	// (spec §4.5 "<< WORD"); ok is false at end of input.
	ReadHeredocLine func() (string, bool)

	// exitRequested/exitStatus carry the "exit" builtin's effect back up
	// through nested block execution (spec §4.5: builtins "return 1 to
	// continue the loop or 0 to exit").
	exitRequested bool
	exitStatus    int
}

func New(sh *state.Shell, jobs *jobcontrol.Table) *Dispatcher {
	return &Dispatcher{
		Shell:  sh,
		Jobs:   jobs,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// ExecuteLine runs every ";"-separated segment of line in order; none of
// their failures aborts the rest (spec §4.4 "Chaining"). It returns the
// exit status of the last chain executed, and reports whether "exit" was
// invoked and with what status.
func (d *Dispatcher) ExecuteLine(line *ast.Line) (status int, exited bool, exitStatus int) {
	for _, seg := range line.Segments {
		status = d.executeChain(seg.Chain)
		if d.exitRequested {
			return status, true, d.exitStatus
		}
	}
	return status, false, 0
}

func (d *Dispatcher) executeChain(chain *ast.Chain) int {
	status := 0
	for i, link := range chain.Links {
		if i > 0 {
			switch link.Op {
			case ast.ChainAnd:
				if status != 0 {
					continue
				}
			case ast.ChainOr:
				if status == 0 {
					continue
				}
			}
		}
		status = d.executeChainLink(link, chain.Background)
		if d.exitRequested {
			return status
		}
	}
	d.Shell.LastStatus = status
	return status
}

func (d *Dispatcher) executeChainLink(link ast.ChainLink, background bool) int {
	if link.Block != nil {
		return d.executeBlock(link.Block)
	}
	return d.executePipeline(link.Pipeline, background)
}

func (d *Dispatcher) executeBlock(b *ast.Block) int {
	switch {
	case b.If != nil:
		return d.executeIf(b.If)
	case b.While != nil:
		return d.executeWhile(b.While)
	case b.For != nil:
		return d.executeFor(b.For)
	}
	return 0
}

func (d *Dispatcher) executeIf(ifc *ast.IfClause) int {
	cond, _, _ := d.ExecuteLine(ifc.Cond)
	if d.exitRequested {
		return cond
	}
	if cond == 0 {
		status, _, _ := d.ExecuteLine(ifc.Then)
		return status
	}
	if ifc.Else != nil {
		status, _, _ := d.ExecuteLine(ifc.Else)
		return status
	}
	return 0
}

// executeWhile re-runs Cond's already-parsed command before each
// iteration, terminating when it exits nonzero (spec §4.4 "while"). Cond
// is re-executed but not re-expanded: its variable and command
// substitutions were expanded once, with the whole line, before parsing.
func (d *Dispatcher) executeWhile(wc *ast.WhileClause) int {
	status := 0
	for {
		cond, _, _ := d.ExecuteLine(wc.Cond)
		if d.exitRequested || cond != 0 {
			return status
		}
		status, _, _ = d.ExecuteLine(wc.Body)
		if d.exitRequested {
			return status
		}
	}
}

func (d *Dispatcher) executeFor(fc *ast.ForClause) int {
	status := 0
	for _, word := range fc.Words {
		d.Shell.Set(fc.Var, word)
		status, _, _ = d.ExecuteLine(fc.Body)
		if d.exitRequested {
			return status
		}
		// "all errors inside BODY are non-fatal to the loop" (spec §4.4)
	}
	return status
}

// executePipeline dispatches one "|"-joined command sequence (spec §4.5).
// A lone command is a pipeline of length 1, which is where builtin
// recognition and the implicit-cd check apply; multi-stage pipelines are
// always run as external jobs, matching the spec's literal dispatch order
// (the pipeline branch runs before the builtin-lookup branch).
func (d *Dispatcher) executePipeline(pl *ast.Pipeline, background bool) int {
	if len(pl.Commands) == 1 {
		return d.dispatchSingle(pl.Commands[0], background)
	}
	return d.launchPipeline(pl.Commands, background)
}

// dispatchSingle implements spec §4.5 steps 1, 3 and 4 for a single
// command.
func (d *Dispatcher) dispatchSingle(cmd *ast.Command, background bool) int {
	if len(cmd.Args) == 0 {
		return 0
	}

	if len(cmd.Args) == 1 {
		if name, value, ok := parseAssignment(cmd.Args[0]); ok {
			d.Shell.Set(name, value)
			return 0
		}
	}

	if isExistingDir(cmd.Args[0]) {
		return d.builtinCd([]string{"cd", cmd.Args[0]})
	}

	if fn, ok := builtins[cmd.Args[0]]; ok {
		saved, err := d.applyBuiltinRedirects(cmd)
		if err != nil {
			io.WriteString(d.Stderr, "hush: "+err.Error()+"\n")
			return 1
		}
		status := fn(d, cmd.Args)
		d.restoreBuiltinRedirects(saved)
		return status
	}

	return d.launchPipeline([]*ast.Command{cmd}, background)
}

// parseAssignment recognizes a bare "NAME=VALUE" word as a variable
// assignment (spec §8 scenario 2; original_source/src/variables.c's
// hush_set parses the same NAME=VALUE shape for the "set" builtin, and the
// reduced grammar extends it to bare top-level words so "FOO=bar" alone
// works without going through "set").
func parseAssignment(word string) (name, value string, ok bool) {
	name, value, ok = strings.Cut(word, "=")
	if !ok || !isValidAssignmentName(name) {
		return "", "", false
	}
	return name, value, true
}

func isValidAssignmentName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		isAlpha := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if i == 0 && !isAlpha {
			return false
		}
		if i > 0 && !isAlpha && !isDigit {
			return false
		}
	}
	return true
}

func isExistingDir(path string) bool {
	if path == "" || strings.ContainsAny(path, "*?") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// launchPipeline builds the N-1 anonymous pipes for cmds, starts every
// stage under Job Control, and returns the exit status of the last stage
// (spec §4.5 item 2).
func (d *Dispatcher) launchPipeline(cmds []*ast.Command, background bool) int {
	specs := make([]jobcontrol.ProcSpec, len(cmds))
	var opened []*os.File
	var cleanups []func()
	env := environSlice(d.Shell.Environ())

	stdin := os.Stdin
	for i, cmd := range cmds {
		out := os.Stdout
		if i < len(cmds)-1 {
			r, w, err := os.Pipe()
			if err != nil {
				closeAll(opened)
				io.WriteString(d.Stderr, "hush: pipe: "+err.Error()+"\n")
				return 1
			}
			opened = append(opened, r, w)
			out = w
		}

		in, o, errf, cleanup, err := openExternalRedirects(cmd, stdin, out, os.Stderr, d.openHeredocFile)
		if err != nil {
			closeAll(opened)
			io.WriteString(d.Stderr, "hush: "+err.Error()+"\n")
			return 1
		}
		cleanups = append(cleanups, cleanup)
		specs[i] = jobcontrol.ProcSpec{Argv: resolveArgv0(cmd.Args), Stdin: in, Stdout: o, Stderr: errf, Env: env}

		if i < len(cmds)-1 {
			stdin = opened[len(opened)-2] // the read end just opened above
		}
	}

	job, err := d.Jobs.Launch(specs, !background, pipelineText(cmds))
	closeAll(opened)
	for _, cleanup := range cleanups {
		cleanup()
	}
	if err != nil {
		return 1
	}
	if background {
		d.Shell.LastBackgroundPID = job.PGID
		return 0
	}
	return job.ExitStatus()
}

// environSlice flattens an expand.Environ into the "NAME=VALUE" pairs
// os/exec.Cmd.Env expects, so a launched job's environment is driven by
// the shell's own WriteEnviron-shaped variable table (spec §4.7) instead
// of the host process's ambient os.Environ().
func environSlice(env expand.Environ) []string {
	var pairs []string
	env.Each(func(name string, vr expand.Variable) bool {
		if vr.IsSet() {
			pairs = append(pairs, name+"="+vr.String())
		}
		return true
	})
	return pairs
}

func closeAll(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}

func (d *Dispatcher) openHeredocFile(delim string) (*os.File, error) {
	return d.buildHeredoc(delim)
}

// resolveArgv0 expands a bare program name through PATH, so job-control
// launch failures surface a clear diagnostic rather than an opaque ENOENT
// (spec §4.6: "failure prints a diagnostic and exits with status 1").
func resolveArgv0(args []string) []string {
	if len(args) == 0 || strings.Contains(args[0], "/") {
		return args
	}
	if p, err := exec.LookPath(args[0]); err == nil {
		out := append([]string(nil), args...)
		out[0] = p
		return out
	}
	return args
}

func pipelineText(cmds []*ast.Command) string {
	parts := make([]string, len(cmds))
	for i, c := range cmds {
		parts[i] = strings.Join(c.Args, " ")
	}
	return strings.Join(parts, " | ")
}
