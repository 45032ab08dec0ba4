package state

import (
	"os"
	"testing"

	"github.com/frankban/quicktest"
)

func TestPushdPopdRoundTrip(t *testing.T) {
	c := quicktest.New(t)
	start, err := os.Getwd()
	c.Assert(err, quicktest.IsNil)
	defer os.Chdir(start)

	dir := t.TempDir()
	ds := NewDirStack()

	listing, err := ds.Pushd(dir)
	c.Assert(err, quicktest.IsNil)
	c.Assert(len(listing), quicktest.Equals, 2)

	cwd, _ := os.Getwd()
	c.Assert(sameDir(cwd, dir), quicktest.IsTrue)

	listing, err = ds.Popd()
	c.Assert(err, quicktest.IsNil)
	c.Assert(len(listing), quicktest.Equals, 1)

	cwd, _ = os.Getwd()
	c.Assert(sameDir(cwd, start), quicktest.IsTrue)
}

func TestPopdOnEmptyStackErrors(t *testing.T) {
	c := quicktest.New(t)
	ds := NewDirStack()
	_, err := ds.Popd()
	c.Assert(err, quicktest.Not(quicktest.IsNil))
}

func sameDir(a, b string) bool {
	ai, err1 := os.Stat(a)
	bi, err2 := os.Stat(b)
	return err1 == nil && err2 == nil && os.SameFile(ai, bi)
}
