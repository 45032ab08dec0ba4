package expand

import (
	"testing"

	"github.com/frankban/quicktest"
)

type mapAliases map[string]string

func (m mapAliases) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

func TestExpandAliasSimple(t *testing.T) {
	c := quicktest.New(t)
	aliases := mapAliases{"ll": "ls -la"}
	c.Assert(ExpandAlias("ll /tmp", aliases), quicktest.Equals, "ls -la /tmp")
}

func TestExpandAliasNoMatch(t *testing.T) {
	c := quicktest.New(t)
	aliases := mapAliases{}
	c.Assert(ExpandAlias("echo hi", aliases), quicktest.Equals, "echo hi")
}

func TestExpandAliasRecursesThroughAliasOfAlias(t *testing.T) {
	c := quicktest.New(t)
	aliases := mapAliases{
		"la": "ll -a",
		"ll": "ls -l",
	}
	c.Assert(ExpandAlias("la /tmp", aliases), quicktest.Equals, "ls -l -a /tmp")
}

func TestExpandAliasCycleStops(t *testing.T) {
	c := quicktest.New(t)
	aliases := mapAliases{"a": "a"}
	c.Assert(ExpandAlias("a x", aliases), quicktest.Equals, "a x")
}

func TestExpandAliasOnlyFirstWord(t *testing.T) {
	c := quicktest.New(t)
	aliases := mapAliases{"ls": "ls --color"}
	c.Assert(ExpandAlias("echo ls", aliases), quicktest.Equals, "echo ls")
}
