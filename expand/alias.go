package expand

import "strings"

// Aliases is the alias table the expander consults, implemented by
// state.Shell.
type Aliases interface {
	Lookup(name string) (value string, ok bool)
}

// maxAliasDepth bounds alias-of-alias recursion (e.g. "la" -> "ll -a",
// "ll" -> "ls -la") so a cycle like `alias a=a` cannot loop forever.
const maxAliasDepth = 16

// ExpandAlias splices the value of an alias named by line's first word in
// place of that word, repeating while the replacement's own first word is
// itself an alias, up to maxAliasDepth. Everything after the first word is
// left untouched.
func ExpandAlias(line string, aliases Aliases) string {
	trimmed := strings.TrimLeft(line, " \t")
	lead := line[:len(line)-len(trimmed)]
	seen := map[string]bool{}

	for i := 0; i < maxAliasDepth; i++ {
		word, tail := splitFirstWord(trimmed)
		if word == "" || seen[word] {
			break
		}
		val, ok := aliases.Lookup(word)
		if !ok {
			break
		}
		seen[word] = true
		trimmed = strings.TrimLeft(val, " \t") + tail
	}
	return lead + trimmed
}

func splitFirstWord(s string) (word, rest string) {
	i := 0
	for i < len(s) && s[i] != ' ' && s[i] != '\t' {
		i++
	}
	return s[:i], s[i:]
}
