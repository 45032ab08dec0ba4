package shell

import (
	"os"
	"sort"
	"strings"

	"hush/fileutil"
)

// Complete implements lineeditor.Completer per spec §4.1's completion
// protocol: PATH executables for the first word, filesystem entries of the
// containing directory otherwise (or when the first word itself starts
// with ".", "/" or "~"). It returns the prefix of line to keep plus the
// sorted, deduplicated candidate set for the word under cursor.
func (s *Shell) Complete(line string, cursor int) (string, []string) {
	wordStart := cursor
	for wordStart > 0 && line[wordStart-1] != ' ' && line[wordStart-1] != '\t' {
		wordStart--
	}
	word := line[wordStart:cursor]

	firstStart := 0
	for firstStart < len(line) && (line[firstStart] == ' ' || line[firstStart] == '\t') {
		firstStart++
	}
	firstEnd := firstStart
	for firstEnd < len(line) && line[firstEnd] != ' ' && line[firstEnd] != '\t' {
		firstEnd++
	}
	firstWord := line[firstStart:firstEnd]
	isFirstWord := wordStart == firstStart
	special := strings.HasPrefix(firstWord, ".") || strings.HasPrefix(firstWord, "/") || strings.HasPrefix(firstWord, "~")

	if isFirstWord && !special {
		return line[:wordStart], matchPrefix(fileutil.PathExecutables(os.Getenv("PATH")), word)
	}
	return s.completeFilesystem(line[:wordStart], word)
}

func (s *Shell) completeFilesystem(prefix, word string) (string, []string) {
	if word == "~" {
		word = "~/"
	}
	home, _ := s.State.Get("HOME")
	expanded := fileutil.ExpandHome(word, home)

	dir, base := ".", expanded
	if i := strings.LastIndexByte(expanded, '/'); i >= 0 {
		dir, base = expanded[:i+1], expanded[i+1:]
		if dir == "" {
			dir = "/"
		}
	}

	entries, err := fileutil.DirEntries(dir, base)
	if err != nil {
		return prefix + word[:len(word)-len(base)], nil
	}

	var out []string
	for _, name := range entries {
		if name == "." || name == "./" || name == ".." || name == "../" {
			if !strings.HasPrefix(base, ".") {
				continue
			}
		}
		out = append(out, name)
	}
	sort.Strings(out)

	// replaced is word with its basename stripped, so editor can append
	// each full directory-entry name in its place.
	replaced := word[:len(word)-len(base)]
	return prefix + replaced, dedup(out)
}

func matchPrefix(names []string, prefix string) []string {
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return dedup(out)
}

func dedup(ss []string) []string {
	if len(ss) < 2 {
		return ss
	}
	out := ss[:1]
	for _, s := range ss[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
