package state

import (
	"testing"

	"github.com/frankban/quicktest"
)

func TestAliasSetLookupRemove(t *testing.T) {
	c := quicktest.New(t)
	at := NewAliasTable()
	at.Set("ll", "ls -l")

	v, ok := at.Lookup("ll")
	c.Assert(ok, quicktest.IsTrue)
	c.Assert(v, quicktest.Equals, "ls -l")

	c.Assert(at.Remove("ll"), quicktest.IsTrue)
	c.Assert(at.Remove("ll"), quicktest.IsFalse)
	_, ok = at.Lookup("ll")
	c.Assert(ok, quicktest.IsFalse)
}

func TestAliasEachPreservesInsertionOrder(t *testing.T) {
	c := quicktest.New(t)
	at := NewAliasTable()
	at.Set("b", "2")
	at.Set("a", "1")

	var names []string
	at.Each(func(name, value string) { names = append(names, name) })
	c.Assert(names, quicktest.DeepEquals, []string{"b", "a"})
}

func TestAliasSeedDefaults(t *testing.T) {
	c := quicktest.New(t)
	at := NewAliasTable()
	at.SeedDefaults()
	v, ok := at.Lookup("ll")
	c.Assert(ok, quicktest.IsTrue)
	c.Assert(v, quicktest.Equals, "ls -l")
}
