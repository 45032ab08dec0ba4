// Command hush is a job-control-capable interactive command shell.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"hush/lineeditor"
	"hush/shell"
)

func main() {
	os.Exit(main1())
}

// main1 holds the whole of the command's logic behind a plain int return,
// so testscript.RunMain can register "hush" as an in-process subcommand
// for the end-to-end suite in main_test.go instead of needing a built
// binary on PATH.
func main1() int {
	cmdFlag := flag.String("c", "", "execute COMMAND instead of reading from a script or the terminal")
	flag.Parse()
	args := flag.Args()

	switch {
	case *cmdFlag != "":
		sh := shell.New(int(os.Stdin.Fd()))
		sh.State.ScriptName = "hush"
		sh.State.SetPositional(args)
		ed := lineeditor.New(os.Stdin, io.Discard)
		status, exited, exitStatus := sh.RunLine(*cmdFlag, herefn(ed))
		if exited {
			return exitStatus
		}
		return status

	case len(args) > 0:
		f, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "hush: "+err.Error())
			return 1
		}
		defer f.Close()

		sh := shell.New(int(os.Stdin.Fd()))
		sh.State.ScriptName = args[0]
		sh.State.SetPositional(args[1:])
		ed := lineeditor.New(f, io.Discard)
		return runLoop(sh, ed, false)

	default:
		sh := shell.New(int(os.Stdin.Fd()))
		sh.State.ScriptName = "hush"

		if err := sh.Jobs.Init(); err != nil {
			fmt.Fprintln(os.Stderr, "hush: "+err.Error())
		}
		defer sh.Jobs.Restore()

		if home, ok := sh.State.Get("HOME"); ok {
			sh.State.History.Load(home)
		}

		ed := lineeditor.New(os.Stdin, os.Stdout)
		ed.History = sh.State.History
		ed.Completer = sh

		status := runLoop(sh, ed, true)

		if home, ok := sh.State.Get("HOME"); ok {
			sh.State.History.Save(home)
		}
		return status
	}
}

// runLoop drives one REPL over ed until EOF or "exit" (spec §4.4
// "multiline construct", §4.6 "Sweep between commands"), returning the
// final exit status.
func runLoop(sh *shell.Shell, ed *lineeditor.Editor, interactive bool) int {
	status := 0
	for {
		if interactive {
			ed.Prompt = "$ "
		}
		line, err := ed.ReadLine()
		if err != nil {
			return status
		}

		full := line
		for shell.NeedsMore(full) {
			if interactive {
				ed.Prompt = "> "
			}
			next, err := ed.ReadLine()
			if err != nil {
				fmt.Fprintln(os.Stderr, "syntax error: unexpected end of file")
				full = ""
				break
			}
			full += "; " + next
		}
		if strings.TrimSpace(full) == "" {
			continue
		}

		st, exited, exitStatus := sh.RunLine(full, herefn(ed))
		status = st
		sh.Jobs.Sweep()
		if exited {
			return exitStatus
		}
	}
}

func herefn(ed *lineeditor.Editor) func() (string, bool) {
	return func() (string, bool) { return ed.ReadRawLine("heredoc> ") }
}
