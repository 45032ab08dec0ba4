package expand

import "strconv"

// History is the minimal history ring the "!" expander needs, implemented
// by state.Shell (spec §4.7 C7). Entry is 1-indexed, oldest first, matching
// the numbering the "history" builtin prints.
type History interface {
	Count() int
	Entry(n int) (string, bool)
}

// ExpandHistory rewrites a leading "!!", "!n" or "!-n" reference at the
// start of line into the referenced history entry (original_source
// history.c: hush_expand_history). Unlike variable or command
// substitution, history expansion only triggers when the reference is the
// very first character of the line; "echo !!" is left untouched, matching
// the original.
func ExpandHistory(line string, hist History) string {
	if line == "" || line[0] != '!' {
		return line
	}
	if len(line) < 2 {
		return line
	}

	if line[1] == '!' {
		if entry, ok := hist.Entry(hist.Count()); ok {
			return entry
		}
		return line
	}

	if isDigit(line[1]) {
		j := 1
		for j < len(line) && isDigit(line[j]) {
			j++
		}
		n, err := strconv.Atoi(line[1:j])
		if err != nil {
			return line
		}
		if entry, ok := hist.Entry(n); ok {
			return entry
		}
		return line
	}

	if line[1] == '-' && len(line) > 2 && isDigit(line[2]) {
		j := 2
		for j < len(line) && isDigit(line[j]) {
			j++
		}
		offset, err := strconv.Atoi(line[2:j])
		if err != nil || offset <= 0 {
			return line
		}
		if entry, ok := hist.Entry(hist.Count() - offset + 1); ok {
			return entry
		}
		return line
	}

	return line
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
