// Package state implements the State Store (C7): shell variables, the
// environment, positional parameters, last exit status, last background
// PID, the directory stack, the alias table, and the history ring. Every
// other component operates on a *Shell value passed in rather than on
// module-level globals (spec §9 "Global mutable state").
package state

import (
	"os"
	"sync"

	"hush/expand"
)

// Shell aggregates every piece of C7 state. All mutation happens from the
// single shell goroutine; no method takes mu, and jobcontrol's signal
// handling does not read this struct.
type Shell struct {
	mu sync.Mutex

	vars    map[string]string
	exports map[string]bool

	Aliases   *AliasTable
	History   *History
	DirStack  *DirStack
	Positional []string // $1.. ; $0 stored separately
	ScriptName string   // $0

	LastStatus        int
	LastBackgroundPID int

	ShellPID int
}

// New builds a Shell seeded from the process environment, matching spec
// §4.7: "the environment that children inherit ... reflects only exported
// variables plus the shell's own environment at startup."
func New() *Shell {
	sh := &Shell{
		vars:     map[string]string{},
		exports:  map[string]bool{},
		Aliases:  NewAliasTable(),
		History:  NewHistory(),
		DirStack: NewDirStack(),
		ShellPID: os.Getpid(),
	}
	for _, kv := range os.Environ() {
		name, val, ok := cutEnv(kv)
		if !ok {
			continue
		}
		sh.vars[name] = val
		sh.exports[name] = true
	}
	return sh
}

func cutEnv(kv string) (name, val string, ok bool) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], true
		}
	}
	return "", "", false
}

// Get implements expand.Vars: a shell variable shadows an environment
// variable of the same name (spec §3), and the special parameters are
// resolved here so expand.Parameters never needs to know about jobs or
// PIDs directly.
func (sh *Shell) Get(name string) (string, bool) {
	switch name {
	case "?":
		return itoa(sh.LastStatus), true
	case "$":
		return itoa(sh.ShellPID), true
	case "!":
		if sh.LastBackgroundPID == 0 {
			return "", false
		}
		return itoa(sh.LastBackgroundPID), true
	case "#":
		return itoa(len(sh.Positional)), true
	case "0":
		return sh.ScriptName, true
	}
	if isAllDigits(name) {
		n := atoi(name)
		if n >= 1 && n <= len(sh.Positional) {
			return sh.Positional[n-1], true
		}
		return "", false
	}
	if v, ok := sh.vars[name]; ok {
		return v, true
	}
	if v, ok := os.LookupEnv(name); ok {
		return v, true
	}
	return "", false
}

// Set implements expand.Vars: a plain assignment writes the shell table,
// and writes the process environment only when name is already exported.
// It never exports a new name; use Export for that.
func (sh *Shell) Set(name, value string) {
	sh.vars[name] = value
	if sh.exports[name] {
		os.Setenv(name, value)
	}
}

// Export marks name as exported and writes it (with value, if given) to
// both the shell table and the process environment, per "export
// NAME=VALUE writes the environment" (spec §3).
func (sh *Shell) Export(name string, value string, hasValue bool) {
	sh.exports[name] = true
	if hasValue {
		sh.vars[name] = value
	}
	if v, ok := sh.vars[name]; ok {
		os.Setenv(name, v)
	}
}

// Unset removes name from both the shell table and the process
// environment (original_source/src/variables.c unset_shell_variable plus
// environment.c's unsetenv call).
func (sh *Shell) Unset(name string) {
	delete(sh.vars, name)
	delete(sh.exports, name)
	os.Unsetenv(name)
}

// Each iterates over every shell variable currently set (used by "set"
// with no arguments).
func (sh *Shell) Each(fn func(name, value string)) {
	for name, value := range sh.vars {
		fn(name, value)
	}
}

// IsExported reports whether name has been exported.
func (sh *Shell) IsExported(name string) bool {
	return sh.exports[name]
}

// Environ returns the set of exported shell variables as an expand.Environ,
// for components (like external-command launch) that need the standard
// interface rather than Shell's own Get/Set. Per "the environment that
// children inherit ... reflects only exported variables plus the shell's
// own environment at startup" (New's doc comment), unexported shell
// variables are left out.
func (sh *Shell) Environ() expand.Environ {
	pairs := make([]string, 0, len(sh.exports))
	for name := range sh.exports {
		value, _ := sh.Get(name)
		pairs = append(pairs, name+"="+value)
	}
	return expand.ListEnviron(pairs...)
}

// SetPositional installs $1.. (spec §6: "$1=ARGS[0]").
func (sh *Shell) SetPositional(args []string) {
	sh.Positional = append([]string(nil), args...)
}

// Shift implements the "shift" builtin: drops the first n positional
// parameters (original_source/src/variables.c hush_shift).
func (sh *Shell) Shift(n int) bool {
	if n < 0 || n > len(sh.Positional) {
		return false
	}
	sh.Positional = sh.Positional[n:]
	return true
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
