package state

// AliasTable is the (name -> expansion) table of spec §3 "Alias". Grounded
// on original_source/src/alias.c's linear table (add_alias/remove_alias);
// hush's MAX_ALIASES cap doesn't carry over since Go maps don't need a
// fixed capacity.
type AliasTable struct {
	byName map[string]string
	order  []string // insertion order, for "alias" with no arguments
}

func NewAliasTable() *AliasTable {
	return &AliasTable{byName: map[string]string{}}
}

// Lookup implements expand.Aliases.
func (t *AliasTable) Lookup(name string) (string, bool) {
	v, ok := t.byName[name]
	return v, ok
}

// Set adds or updates an alias (original_source add_alias).
func (t *AliasTable) Set(name, value string) {
	if _, exists := t.byName[name]; !exists {
		t.order = append(t.order, name)
	}
	t.byName[name] = value
}

// Remove deletes an alias, reporting whether it existed (original_source
// remove_alias).
func (t *AliasTable) Remove(name string) bool {
	if _, ok := t.byName[name]; !ok {
		return false
	}
	delete(t.byName, name)
	for i, n := range t.order {
		if n == name {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// RemoveAll clears the whole table ("unalias -a").
func (t *AliasTable) RemoveAll() {
	t.byName = map[string]string{}
	t.order = nil
}

// Each iterates aliases in definition order ("alias" with no arguments).
func (t *AliasTable) Each(fn func(name, value string)) {
	for _, name := range t.order {
		fn(name, t.byName[name])
	}
}

// SeedDefaults installs the startup aliases original_source/src/alias.c's
// init_aliases seeds (spec §1 explicitly puts the seeded-alias set out of
// scope for the core, but the table itself must exist and start non-empty
// to match observable behavior of a freshly started shell).
func (t *AliasTable) SeedDefaults() {
	t.Set("ll", "ls -l")
	t.Set("la", "ls -a")
	t.Set("l", "ls -CF")
}
