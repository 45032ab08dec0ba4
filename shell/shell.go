// Package shell assembles the State Store, Splitter, Expander, Control
// Parser, Dispatcher, Job Control and Line Reader into the single *Shell
// value spec.md §9's Design Notes call for, and implements the seven-step
// expansion pipeline documented in DESIGN.md (history -> command
// substitution -> history recording -> parameter expansion -> tokenize ->
// alias expansion -> wildcard/brace expansion -> parse).
package shell

import (
	"io"
	"os"

	"hush/ast"
	"hush/dispatcher"
	"hush/expand"
	"hush/jobcontrol"
	"hush/state"
	"hush/syntax"
	"hush/token"
)

// Shell is the aggregate value every entry point (interactive REPL, -c
// flag, script execution) drives.
type Shell struct {
	State *state.Shell
	Jobs  *jobcontrol.Table
	Disp  *dispatcher.Dispatcher

	Stdout io.Writer
	Stderr io.Writer
}

// New builds a Shell bound to fd as the controlling terminal (spec §4.6
// "Initialization"). fd is typically os.Stdin.Fd(); passing a non-tty fd
// (piped stdin, a script file) puts Jobs in non-interactive mode.
func New(fd int) *Shell {
	sh := state.New()
	jobs := jobcontrol.NewTable(fd, os.Stderr)
	disp := dispatcher.New(sh, jobs)
	return &Shell{State: sh, Jobs: jobs, Disp: disp, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Expand runs spec §4.2's six expansion steps over line and parses the
// result, recording the post-substitution line into history along the way
// (step 3). heredoc supplies here-document bodies for any "<< WORD" the
// parsed line turns out to contain.
func (s *Shell) Expand(line string, heredoc func() (string, bool)) (*ast.Line, error) {
	line = expand.ExpandHistory(line, s.State.History)
	line = expand.CommandSubstitutions(line)
	s.State.History.Add(line)

	line = expand.Parameters(line, s.State, s.Stderr)

	toks, err := syntax.Tokenize(line)
	if err != nil {
		return nil, err
	}
	toks = s.expandFirstWordAlias(toks)
	toks = expandWildcardTokens(toks)

	s.Disp.ReadHeredocLine = heredoc
	return syntax.Parse(toks)
}

// expandFirstWordAlias implements spec §4.2 step 5 at the token level: if
// the first LIT token of the stream is an alias name, its value is
// re-tokenized and spliced in (exactly one substitution: the spliced
// value's own first word is not looked up again).
func (s *Shell) expandFirstWordAlias(toks []syntax.Token) []syntax.Token {
	if len(toks) == 0 || toks[0].Kind != token.LIT {
		return toks
	}
	val, ok := s.State.Aliases.Lookup(toks[0].Text)
	if !ok {
		return toks
	}
	rest, err := syntax.Tokenize(val)
	if err != nil {
		return toks
	}
	if n := len(rest); n > 0 && rest[n-1].Kind == token.EOF {
		rest = rest[:n-1]
	}
	return append(rest, toks[1:]...)
}

// expandWildcardTokens implements spec §4.2 step 6: brace expansion
// followed by pathname matching, per LIT token. Multiple resulting words
// from one token are spliced in as sibling LIT tokens, matching how an
// unquoted glob/brace would fan out into separate command arguments.
func expandWildcardTokens(toks []syntax.Token) []syntax.Token {
	out := make([]syntax.Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind != token.LIT {
			out = append(out, t)
			continue
		}
		for _, braced := range expand.Braces(t.Text) {
			for _, word := range expand.Wildcards(braced) {
				out = append(out, syntax.Token{Kind: token.LIT, Text: word})
			}
		}
	}
	return out
}

// RunLine expands, parses and executes line (spec §4.5/§4.4), returning
// the exit status and whether "exit" was invoked.
func (s *Shell) RunLine(line string, heredoc func() (string, bool)) (status int, exited bool, exitStatus int) {
	parsed, err := s.Expand(line, heredoc)
	if err != nil {
		io.WriteString(s.Stderr, err.Error()+"\n")
		s.State.LastStatus = 1
		return 1, false, 0
	}
	status, exited, exitStatus = s.Disp.ExecuteLine(parsed)
	s.State.LastStatus = status
	return status, exited, exitStatus
}

// NeedsMore reports whether line, taken alone, opens an if/while/for block
// that a later "fi"/"done" must close (spec §4.4 "multiline construct"):
// the REPL uses this to keep reading lines until the construct balances.
func NeedsMore(line string) bool {
	toks, err := syntax.Tokenize(line)
	if err != nil {
		return false
	}
	depth := 0
	for _, t := range toks {
		if t.Kind != token.LIT {
			continue
		}
		switch {
		case token.IsBlockOpener(t.Text):
			depth++
		case t.Text == "fi", t.Text == "done":
			depth--
		}
	}
	return depth > 0
}
