package expand

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Vars is the minimal variable store the parameter expander needs: get a
// value by name, and assign one (for "${NAME:=word}"). The state package's
// Shell implements this by layering shell variables over the process
// environment (spec §3: "a shell variable shadows an environment variable
// of the same name on lookup").
type Vars interface {
	Get(name string) (value string, set bool)
	Set(name, value string)
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameByte(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9')
}

func isSpecialParam(b byte) bool {
	switch b {
	case '?', '$', '!', '#':
		return true
	}
	return b >= '0' && b <= '9'
}

// Parameters performs variable and parameter expansion (spec §4.2 step 4):
// $NAME, ${NAME}, the four ${NAME:op word} forms, ${#NAME}, and the special
// parameters $?, $$, $!, $#, $0..$9. A literal "$" followed by none of
// these stays literal. stderr receives the diagnostic printed by
// "${NAME:?word}" when NAME is unset or empty.
func Parameters(line string, vars Vars, stderr io.Writer) string {
	var out strings.Builder
	i, n := 0, len(line)
	for i < n {
		if line[i] != '$' {
			out.WriteByte(line[i])
			i++
			continue
		}
		if i+1 >= n {
			out.WriteByte('$')
			i++
			continue
		}
		switch {
		case line[i+1] == '{':
			val, consumed, ok := expandBraced(line[i:], vars, stderr)
			if !ok {
				out.WriteByte('$')
				i++
				continue
			}
			out.WriteString(val)
			i += consumed
		case isSpecialParam(line[i+1]):
			out.WriteString(lookupSpecial(line[i+1], vars))
			i += 2
		case isNameStart(line[i+1]):
			j := i + 2
			for j < n && isNameByte(line[j]) {
				j++
			}
			name := line[i+1 : j]
			val, _ := vars.Get(name)
			out.WriteString(val)
			i = j
		default:
			out.WriteByte('$')
			i++
		}
	}
	return out.String()
}

func lookupSpecial(b byte, vars Vars) string {
	if b >= '0' && b <= '9' {
		val, _ := vars.Get(string(b))
		return val
	}
	switch b {
	case '?':
		val, _ := vars.Get("?")
		return val
	case '$':
		val, _ := vars.Get("$")
		return val
	case '!':
		val, _ := vars.Get("!")
		return val
	case '#':
		val, _ := vars.Get("#")
		return val
	}
	return ""
}

// expandBraced handles "${...}" starting at s[0]=='$', s[1]=='{'. It
// returns the expansion, the number of bytes of s consumed, and whether a
// well-formed braced expansion was found at all (false means the caller
// should treat "$" as literal and continue scanning from s[1]).
func expandBraced(s string, vars Vars, stderr io.Writer) (string, int, bool) {
	end := strings.IndexByte(s, '}')
	if end < 0 {
		return "", 0, false
	}
	body := s[2:end]
	consumed := end + 1

	if strings.HasPrefix(body, "#") && len(body) > 1 && isNameStart(body[1]) {
		name := body[1:]
		if !isValidName(name) {
			return "", 0, false
		}
		val, _ := vars.Get(name)
		return strconv.Itoa(len(val)), consumed, true
	}

	for _, op := range []string{":-", ":=", ":+", ":?"} {
		if idx := strings.Index(body, op); idx >= 0 {
			name, word := body[:idx], body[idx+2:]
			if !isValidName(name) {
				continue
			}
			val, set := vars.Get(name)
			nonEmpty := set && val != ""
			switch op {
			case ":-":
				if nonEmpty {
					return val, consumed, true
				}
				return word, consumed, true
			case ":=":
				if nonEmpty {
					return val, consumed, true
				}
				vars.Set(name, word)
				return word, consumed, true
			case ":+":
				if nonEmpty {
					return word, consumed, true
				}
				return "", consumed, true
			case ":?":
				if nonEmpty {
					return val, consumed, true
				}
				msg := word
				if msg == "" {
					msg = "parameter null or not set"
				}
				fmt.Fprintf(stderr, "%s: %s\n", name, msg)
				return "", consumed, true
			}
		}
	}

	if isValidName(body) {
		val, _ := vars.Get(body)
		return val, consumed, true
	}
	if len(body) == 1 && isSpecialParam(body[0]) {
		return lookupSpecial(body[0], vars), consumed, true
	}
	return "", 0, false
}

func isValidName(name string) bool {
	if name == "" || !isNameStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isNameByte(name[i]) {
			return false
		}
	}
	return true
}
