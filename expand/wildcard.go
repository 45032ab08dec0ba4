package expand

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"hush/pattern"
)

// Wildcards performs pathname expansion on word (spec §4.2 step 6, the
// glob half). If word contains none of "* ? [ {", it is returned
// unchanged. If the resulting pattern matches nothing on disk, the literal
// pattern is returned, per spec. "**" matches zero or more path
// components.
func Wildcards(word string) []string {
	if !pattern.HasMeta(word, 0) && !strings.Contains(word, "**") {
		return []string{word}
	}
	matches := globMatch(word)
	sort.Strings(matches)
	if len(matches) == 0 {
		return []string{word}
	}
	return matches
}

func globMatch(word string) []string {
	abs := strings.HasPrefix(word, "/")
	segments := strings.Split(word, "/")
	roots := []string{"."}
	if abs {
		roots = []string{"/"}
		segments = segments[1:]
	}
	var results []string
	for _, root := range roots {
		results = append(results, matchSegments(root, segments)...)
	}
	return results
}

// matchSegments expands the first path segment against dir's entries
// (recursing into "**" to mean "zero or more directories") and continues
// with the remaining segments.
func matchSegments(dir string, segments []string) []string {
	if len(segments) == 0 {
		if dir == "." {
			return nil
		}
		return []string{dir}
	}
	seg := segments[0]
	rest := segments[1:]

	if seg == "" {
		// doubled slash; skip the empty segment
		return matchSegments(dir, rest)
	}

	if seg == "**" {
		var out []string
		out = append(out, matchSegments(dir, rest)...)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return out
		}
		for _, e := range entries {
			if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			sub := joinPath(dir, e.Name())
			out = append(out, matchSegments(sub, segments)...)
		}
		return out
	}

	if !pattern.HasMeta(seg, 0) {
		next := joinPath(dir, seg)
		if _, err := os.Lstat(next); err != nil {
			return nil
		}
		return matchSegments(next, rest)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	expr, err := pattern.Regexp(seg, pattern.EntireString)
	if err != nil {
		return nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(seg, ".") {
			continue
		}
		if !re.MatchString(name) {
			continue
		}
		out = append(out, matchSegments(joinPath(dir, name), rest)...)
	}
	return out
}

func joinPath(dir, name string) string {
	if dir == "." {
		return name
	}
	return filepath.Join(dir, name)
}
