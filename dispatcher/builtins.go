package dispatcher

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"hush/jobcontrol"
)

// builtins is the in-process command table (spec §4.5 "Builtin table"),
// grounded on original_source/src/builtins.c's name list.
var builtins = map[string]func(*Dispatcher, []string) int{
	"cd":      (*Dispatcher).builtinCd,
	"help":    (*Dispatcher).builtinHelp,
	"exit":    (*Dispatcher).builtinExit,
	"export":  (*Dispatcher).builtinExport,
	"history": (*Dispatcher).builtinHistory,
	"alias":   (*Dispatcher).builtinAlias,
	"unalias": (*Dispatcher).builtinUnalias,
	"pushd":   (*Dispatcher).builtinPushd,
	"popd":    (*Dispatcher).builtinPopd,
	"dirs":    (*Dispatcher).builtinDirs,
	"jobs":    (*Dispatcher).builtinJobs,
	"fg":      (*Dispatcher).builtinFg,
	"bg":      (*Dispatcher).builtinBg,
	"wait":    (*Dispatcher).builtinWait,
	"disown":  (*Dispatcher).builtinDisown,
	"set":     (*Dispatcher).builtinSet,
	"unset":   (*Dispatcher).builtinUnset,
	"shift":   (*Dispatcher).builtinShift,
}

func (d *Dispatcher) errf(format string, args ...any) int {
	fmt.Fprintf(d.Stderr, "hush: "+format+"\n", args...)
	return 1
}

// builtinCd implements "cd [DIR]" (original_source hush_cd): no argument
// goes to $HOME.
func (d *Dispatcher) builtinCd(args []string) int {
	dir := ""
	if len(args) > 1 {
		dir = args[1]
	} else if home, ok := d.Shell.Get("HOME"); ok {
		dir = home
	}
	if dir == "" {
		return d.errf("cd: HOME not set")
	}
	if err := os.Chdir(dir); err != nil {
		return d.errf("cd: %v", err)
	}
	return 0
}

// builtinHelp prints the builtin list (original_source hush_help), without
// the unrelated author string the original prints.
func (d *Dispatcher) builtinHelp(args []string) int {
	fmt.Fprintln(d.Stdout, "hush: a job-control-capable command shell")
	fmt.Fprintln(d.Stdout, "builtins:")
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sortStrings(names)
	for _, name := range names {
		fmt.Fprintln(d.Stdout, "  "+name)
	}
	return 0
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// builtinExit implements "exit [N]" (original_source hush_exit): sets the
// exit request the top-level loop consults to tear down and leave the REPL.
func (d *Dispatcher) builtinExit(args []string) int {
	status := d.Shell.LastStatus
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return d.errf("exit: %s: numeric argument required", args[1])
		}
		status = n
	}
	d.exitRequested = true
	d.exitStatus = status
	return status
}

// builtinExport implements "export [NAME[=VALUE] ...]" with no arguments
// listing the environment (original_source/src/environment.c).
func (d *Dispatcher) builtinExport(args []string) int {
	if len(args) == 1 {
		for _, kv := range os.Environ() {
			fmt.Fprintln(d.Stdout, "export "+kv)
		}
		return 0
	}
	for _, arg := range args[1:] {
		if name, value, ok := strings.Cut(arg, "="); ok {
			d.Shell.Export(name, value, true)
		} else {
			d.Shell.Export(arg, "", false)
		}
	}
	return 0
}

// builtinHistory prints the history ring, 1-based oldest first
// (original_source hush_history).
func (d *Dispatcher) builtinHistory(args []string) int {
	for i, line := range d.Shell.History.All() {
		fmt.Fprintf(d.Stdout, "%5d  %s\n", i+1, line)
	}
	return 0
}

// builtinAlias implements "alias" (list), "alias NAME" (show one), and
// "alias NAME=VALUE" (define), per original_source hush_alias.
func (d *Dispatcher) builtinAlias(args []string) int {
	if len(args) == 1 {
		d.Shell.Aliases.Each(func(name, value string) {
			fmt.Fprintf(d.Stdout, "alias %s='%s'\n", name, value)
		})
		return 0
	}
	status := 0
	for _, arg := range args[1:] {
		if name, value, ok := strings.Cut(arg, "="); ok {
			d.Shell.Aliases.Set(name, value)
			continue
		}
		if value, ok := d.Shell.Aliases.Lookup(arg); ok {
			fmt.Fprintf(d.Stdout, "alias %s='%s'\n", arg, value)
		} else {
			d.errf("alias: %s: not found", arg)
			status = 1
		}
	}
	return status
}

// builtinUnalias implements "unalias NAME..." and "unalias -a"
// (original_source hush_unalias).
func (d *Dispatcher) builtinUnalias(args []string) int {
	if len(args) > 1 && args[1] == "-a" {
		d.Shell.Aliases.RemoveAll()
		return 0
	}
	status := 0
	for _, name := range args[1:] {
		if !d.Shell.Aliases.Remove(name) {
			d.errf("unalias: %s: not found", name)
			status = 1
		}
	}
	return status
}

// builtinPushd implements "pushd DIR" (original_source hush_pushd).
func (d *Dispatcher) builtinPushd(args []string) int {
	if len(args) < 2 {
		return d.errf("pushd: no directory specified")
	}
	listing, err := d.Shell.DirStack.Pushd(args[1])
	if err != nil {
		return d.errf("pushd: %v", err)
	}
	fmt.Fprintln(d.Stdout, strings.Join(listing, " "))
	return 0
}

// builtinPopd implements "popd" (original_source hush_popd).
func (d *Dispatcher) builtinPopd(args []string) int {
	listing, err := d.Shell.DirStack.Popd()
	if err != nil {
		return d.errf("popd: %v", err)
	}
	fmt.Fprintln(d.Stdout, strings.Join(listing, " "))
	return 0
}

// builtinDirs implements "dirs" (original_source hush_dirs).
func (d *Dispatcher) builtinDirs(args []string) int {
	listing, err := d.Shell.DirStack.Dirs()
	if err != nil {
		return d.errf("dirs: %v", err)
	}
	fmt.Fprintln(d.Stdout, strings.Join(listing, " "))
	return 0
}

// builtinJobs implements "jobs [-p]" (original_source hush_jobs).
func (d *Dispatcher) builtinJobs(args []string) int {
	withPID := len(args) > 1 && args[1] == "-p"
	for _, job := range d.Jobs.All() {
		fmt.Fprintln(d.Stdout, job.FormatLine(withPID))
	}
	return 0
}

// resolveJobArg implements the "%N or most recent" rule of spec §4.6 job
// specifiers; pick picks the table's notion of "most recent" appropriate
// to the caller.
func (d *Dispatcher) resolveJobArg(args []string, pick func() *jobcontrol.Job) (*jobcontrol.Job, error) {
	if len(args) > 1 {
		return d.Jobs.ParseSpec(args[1])
	}
	if j := pick(); j != nil {
		return j, nil
	}
	return nil, fmt.Errorf("no current job")
}

// builtinFg implements "fg [%N]" (original_source hush_fg).
func (d *Dispatcher) builtinFg(args []string) int {
	job, err := d.resolveJobArg(args, d.Jobs.Current)
	if err != nil {
		return d.errf("fg: %v", err)
	}
	fmt.Fprintln(d.Stdout, job.Command)
	if err := d.Jobs.ContinueForeground(job); err != nil {
		return d.errf("fg: %v", err)
	}
	return job.ExitStatus()
}

// builtinBg implements "bg [%N]" (original_source hush_bg).
func (d *Dispatcher) builtinBg(args []string) int {
	job, err := d.resolveJobArg(args, d.Jobs.MostRecentStopped)
	if err != nil {
		return d.errf("bg: %v", err)
	}
	if err := d.Jobs.ContinueBackground(job); err != nil {
		return d.errf("bg: %v", err)
	}
	return 0
}

// builtinWait implements "wait [%N]" (original_source hush_wait).
func (d *Dispatcher) builtinWait(args []string) int {
	if len(args) > 1 {
		job, err := d.Jobs.ParseSpec(args[1])
		if err != nil {
			return d.errf("wait: %v", err)
		}
		d.Jobs.WaitJob(job)
		return job.ExitStatus()
	}
	d.Jobs.WaitAll()
	return 0
}

// builtinDisown implements "disown [%N]" (original_source hush_disown).
func (d *Dispatcher) builtinDisown(args []string) int {
	job, err := d.resolveJobArg(args, d.Jobs.Current)
	if err != nil {
		return d.errf("disown: %v", err)
	}
	d.Jobs.Disown(job)
	return 0
}

// builtinSet implements "set" with no arguments listing every shell
// variable, and "set NAME=VALUE..." assigning each one (original_source
// hush_set). The -x/-e/-u option flags apply to features outside this
// grammar and are accepted as no-ops consistent with the rest of the
// reduced option surface.
func (d *Dispatcher) builtinSet(args []string) int {
	if len(args) > 1 && strings.HasPrefix(args[1], "-") {
		return 0
	}
	if len(args) > 1 {
		for _, arg := range args[1:] {
			name, value, ok := strings.Cut(arg, "=")
			if !ok {
				continue
			}
			d.Shell.Set(name, value)
		}
		return 0
	}
	var names []string
	d.Shell.Each(func(name, value string) {
		names = append(names, name)
	})
	sortStrings(names)
	for _, name := range names {
		value, _ := d.Shell.Get(name)
		fmt.Fprintf(d.Stdout, "%s=%s\n", name, value)
	}
	return 0
}

// builtinUnset implements "unset NAME..." (original_source hush_unset /
// unset_shell_variable).
func (d *Dispatcher) builtinUnset(args []string) int {
	for _, name := range args[1:] {
		d.Shell.Unset(name)
	}
	return 0
}

// builtinShift implements "shift [N]" (original_source hush_shift),
// defaulting N to 1.
func (d *Dispatcher) builtinShift(args []string) int {
	n := 1
	if len(args) > 1 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil {
			return d.errf("shift: %s: numeric argument required", args[1])
		}
		n = parsed
	}
	if !d.Shell.Shift(n) {
		return d.errf("shift: shift count out of range")
	}
	return 0
}
