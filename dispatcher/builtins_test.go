package dispatcher

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/frankban/quicktest"

	"hush/jobcontrol"
	"hush/state"
)

func newTestDispatcher() (*Dispatcher, *bytes.Buffer, *bytes.Buffer) {
	sh := state.New()
	var stderr bytes.Buffer
	r, w, _ := os.Pipe()
	w.Close()
	jobs := jobcontrol.NewTable(int(r.Fd()), &stderr)
	r.Close()
	d := New(sh, jobs)
	var stdout bytes.Buffer
	d.Stdout = &stdout
	d.Stderr = &stderr
	return d, &stdout, &stderr
}

func TestBuiltinExitSetsStatusAndRequest(t *testing.T) {
	c := quicktest.New(t)
	d, _, _ := newTestDispatcher()

	status := d.builtinExit([]string{"exit", "7"})
	c.Assert(status, quicktest.Equals, 7)
	c.Assert(d.exitRequested, quicktest.IsTrue)
	c.Assert(d.exitStatus, quicktest.Equals, 7)
}

func TestBuiltinExitDefaultsToLastStatus(t *testing.T) {
	c := quicktest.New(t)
	d, _, _ := newTestDispatcher()
	d.Shell.LastStatus = 4

	status := d.builtinExit([]string{"exit"})
	c.Assert(status, quicktest.Equals, 4)
}

func TestBuiltinExitRejectsNonNumeric(t *testing.T) {
	c := quicktest.New(t)
	d, _, stderr := newTestDispatcher()

	status := d.builtinExit([]string{"exit", "nope"})
	c.Assert(status, quicktest.Equals, 1)
	c.Assert(d.exitRequested, quicktest.IsFalse)
	c.Assert(stderr.String(), quicktest.Contains, "numeric argument required")
}

func TestBuiltinCdChangesDirectory(t *testing.T) {
	c := quicktest.New(t)
	d, _, _ := newTestDispatcher()
	start, err := os.Getwd()
	c.Assert(err, quicktest.IsNil)
	defer os.Chdir(start)

	dir := t.TempDir()
	status := d.builtinCd([]string{"cd", dir})
	c.Assert(status, quicktest.Equals, 0)

	cwd, _ := os.Getwd()
	info1, _ := os.Stat(cwd)
	info2, _ := os.Stat(dir)
	c.Assert(os.SameFile(info1, info2), quicktest.IsTrue)
}

func TestBuiltinCdFallsBackToHome(t *testing.T) {
	c := quicktest.New(t)
	d, _, _ := newTestDispatcher()
	start, err := os.Getwd()
	c.Assert(err, quicktest.IsNil)
	defer os.Chdir(start)

	dir := t.TempDir()
	d.Shell.Set("HOME", dir)
	status := d.builtinCd([]string{"cd"})
	c.Assert(status, quicktest.Equals, 0)
}

func TestBuiltinExportListsAndDefines(t *testing.T) {
	c := quicktest.New(t)
	d, stdout, _ := newTestDispatcher()

	status := d.builtinExport([]string{"export", "FOO=bar"})
	c.Assert(status, quicktest.Equals, 0)
	c.Assert(d.Shell.IsExported("FOO"), quicktest.IsTrue)

	stdout.Reset()
	d.builtinExport([]string{"export"})
	c.Assert(stdout.String(), quicktest.Contains, "export FOO=bar")
}

func TestBuiltinAliasDefineShowList(t *testing.T) {
	c := quicktest.New(t)
	d, stdout, stderr := newTestDispatcher()

	c.Assert(d.builtinAlias([]string{"alias", "ll=ls -l"}), quicktest.Equals, 0)

	stdout.Reset()
	c.Assert(d.builtinAlias([]string{"alias", "ll"}), quicktest.Equals, 0)
	c.Assert(stdout.String(), quicktest.Contains, "alias ll='ls -l'")

	status := d.builtinAlias([]string{"alias", "missing"})
	c.Assert(status, quicktest.Equals, 1)
	c.Assert(stderr.String(), quicktest.Contains, "missing: not found")
}

func TestBuiltinUnaliasRemovesAndReportsMissing(t *testing.T) {
	c := quicktest.New(t)
	d, _, stderr := newTestDispatcher()
	d.Shell.Aliases.Set("ll", "ls -l")

	c.Assert(d.builtinUnalias([]string{"unalias", "ll"}), quicktest.Equals, 0)
	status := d.builtinUnalias([]string{"unalias", "ll"})
	c.Assert(status, quicktest.Equals, 1)
	c.Assert(stderr.String(), quicktest.Contains, "ll: not found")
}

func TestBuiltinUnaliasDashARemovesAll(t *testing.T) {
	c := quicktest.New(t)
	d, _, _ := newTestDispatcher()
	d.Shell.Aliases.Set("ll", "ls -l")
	d.Shell.Aliases.Set("la", "ls -a")

	c.Assert(d.builtinUnalias([]string{"unalias", "-a"}), quicktest.Equals, 0)
	_, ok := d.Shell.Aliases.Lookup("ll")
	c.Assert(ok, quicktest.IsFalse)
}

func TestBuiltinPushdPopdDirs(t *testing.T) {
	c := quicktest.New(t)
	d, stdout, _ := newTestDispatcher()
	start, err := os.Getwd()
	c.Assert(err, quicktest.IsNil)
	defer os.Chdir(start)

	dir := t.TempDir()
	c.Assert(d.builtinPushd([]string{"pushd", dir}), quicktest.Equals, 0)
	c.Assert(stdout.String(), quicktest.Not(quicktest.Equals), "")

	stdout.Reset()
	c.Assert(d.builtinDirs([]string{"dirs"}), quicktest.Equals, 0)
	c.Assert(stdout.String(), quicktest.Not(quicktest.Equals), "")

	c.Assert(d.builtinPopd([]string{"popd"}), quicktest.Equals, 0)
}

func TestBuiltinPushdWithNoDirectoryErrors(t *testing.T) {
	c := quicktest.New(t)
	d, _, stderr := newTestDispatcher()
	status := d.builtinPushd([]string{"pushd"})
	c.Assert(status, quicktest.Equals, 1)
	c.Assert(stderr.String(), quicktest.Contains, "no directory specified")
}

func TestBuiltinSetListsSortedVariables(t *testing.T) {
	c := quicktest.New(t)
	d, stdout, _ := newTestDispatcher()
	d.Shell.Set("ZVAR", "z")
	d.Shell.Set("AVAR", "a")

	c.Assert(d.builtinSet([]string{"set"}), quicktest.Equals, 0)
	out := stdout.String()
	c.Assert(out, quicktest.Contains, "AVAR=a")
	c.Assert(out, quicktest.Contains, "ZVAR=z")
	c.Assert(strings.Index(out, "AVAR=a") < strings.Index(out, "ZVAR=z"), quicktest.IsTrue)
}

func TestBuiltinUnsetRemovesVariable(t *testing.T) {
	c := quicktest.New(t)
	d, _, _ := newTestDispatcher()
	d.Shell.Set("FOO", "bar")
	d.builtinUnset([]string{"unset", "FOO"})
	_, ok := d.Shell.Get("FOO")
	c.Assert(ok, quicktest.IsFalse)
}

func TestBuiltinShiftDropsPositionals(t *testing.T) {
	c := quicktest.New(t)
	d, _, _ := newTestDispatcher()
	d.Shell.SetPositional([]string{"a", "b", "c"})

	c.Assert(d.builtinShift([]string{"shift"}), quicktest.Equals, 0)
	c.Assert(d.Shell.Positional, quicktest.DeepEquals, []string{"b", "c"})

	c.Assert(d.builtinShift([]string{"shift", "5"}), quicktest.Equals, 1)
}

func TestBuiltinJobsWithNoJobsPrintsNothing(t *testing.T) {
	c := quicktest.New(t)
	d, stdout, _ := newTestDispatcher()
	status := d.builtinJobs([]string{"jobs"})
	c.Assert(status, quicktest.Equals, 0)
	c.Assert(stdout.String(), quicktest.Equals, "")
}

func TestBuiltinFgWithNoJobsErrors(t *testing.T) {
	c := quicktest.New(t)
	d, _, stderr := newTestDispatcher()
	status := d.builtinFg([]string{"fg"})
	c.Assert(status, quicktest.Equals, 1)
	c.Assert(stderr.String(), quicktest.Contains, "no current job")
}

func TestBuiltinWaitWithNoJobsIsANoop(t *testing.T) {
	c := quicktest.New(t)
	d, _, _ := newTestDispatcher()
	status := d.builtinWait([]string{"wait"})
	c.Assert(status, quicktest.Equals, 0)
}

func TestBuiltinHelpListsBuiltinNamesSorted(t *testing.T) {
	c := quicktest.New(t)
	d, stdout, _ := newTestDispatcher()
	c.Assert(d.builtinHelp([]string{"help"}), quicktest.Equals, 0)
	out := stdout.String()
	c.Assert(out, quicktest.Contains, "cd")
	c.Assert(out, quicktest.Contains, "wait")
	c.Assert(strings.Index(out, "  cd\n") < strings.Index(out, "  wait\n"), quicktest.IsTrue)
}

func TestBuiltinHistoryPrintsOneBasedEntries(t *testing.T) {
	c := quicktest.New(t)
	d, stdout, _ := newTestDispatcher()
	d.Shell.History.Add("echo hi")
	c.Assert(d.builtinHistory([]string{"history"}), quicktest.Equals, 0)
	c.Assert(stdout.String(), quicktest.Contains, "1  echo hi")
}
