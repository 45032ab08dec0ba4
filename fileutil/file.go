// Package fileutil classifies filesystem entries for command-line
// completion: which PATH entries are runnable, and which directory entries
// are plausible completions for a partial word.
package fileutil

import (
	"os"
	"sort"
	"strings"
)

// IsExecutable reports whether info describes a regular file with any
// executable bit set, the test the completion protocol (spec §4.1) uses to
// decide whether a PATH entry is a runnable command.
func IsExecutable(info os.FileInfo) bool {
	if info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

// PathExecutables scans every directory in a colon-separated PATH value
// and returns the sorted, de-duplicated set of executable names found.
// Earlier directories shadow later ones, matching lookup order, but the
// result is a flat set since completion only needs distinct names, not
// which directory wins.
func PathExecutables(path string) []string {
	seen := map[string]bool{}
	for _, dir := range strings.Split(path, ":") {
		if dir == "" {
			dir = "."
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if seen[e.Name()] {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			if IsExecutable(info) {
				seen[e.Name()] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DirEntries returns the names of entries in dir whose name has the given
// prefix, with a trailing "/" appended to directory names so completion can
// tell files and directories apart without a second stat. Hidden entries
// (leading ".") are only included when prefix itself starts with ".",
// matching the usual shell convention.
func DirEntries(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if e.IsDir() {
			name += "/"
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// ExpandHome replaces a leading "~" or "~/..." in path with home, the
// filesystem-completion context original_source/src/completion.c treats
// specially.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return home + path[1:]
	}
	return path
}
