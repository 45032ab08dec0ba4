package jobcontrol

import (
	"bytes"
	"os"
	"testing"

	"github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp"
)

func newNonInteractiveTable(stderr *bytes.Buffer) *Table {
	r, w, _ := os.Pipe()
	defer w.Close()
	return NewTable(int(r.Fd()), stderr)
}

func TestNewTableIsNonInteractiveOverAPipe(t *testing.T) {
	c := quicktest.New(t)
	tbl := newNonInteractiveTable(&bytes.Buffer{})
	c.Assert(tbl.Interactive(), quicktest.IsFalse)
	c.Assert(tbl.Init(), quicktest.IsNil)
}

func TestFindSlotAndByID(t *testing.T) {
	c := quicktest.New(t)
	tbl := newNonInteractiveTable(&bytes.Buffer{})
	c.Assert(tbl.findSlot(), quicktest.Equals, 0)

	job := &Job{ID: 1, PGID: 111}
	tbl.slots[0] = job
	c.Assert(tbl.findSlot(), quicktest.Equals, 1)
	c.Assert(tbl.ByID(1), quicktest.Equals, job)
	c.Assert(tbl.ByID(0), quicktest.IsNil)
	c.Assert(tbl.ByID(MaxJobs+1), quicktest.IsNil)
}

func TestRemoveClearsSlotAndPGIDIndex(t *testing.T) {
	c := quicktest.New(t)
	tbl := newNonInteractiveTable(&bytes.Buffer{})
	job := &Job{ID: 1, PGID: 222}
	tbl.slots[0] = job
	tbl.byPGID[222] = job

	tbl.Remove(1)
	c.Assert(tbl.slots[0], quicktest.IsNil)
	_, ok := tbl.byPGID[222]
	c.Assert(ok, quicktest.IsFalse)
}

func TestCurrentAndMostRecentStopped(t *testing.T) {
	c := quicktest.New(t)
	tbl := newNonInteractiveTable(&bytes.Buffer{})
	c.Assert(tbl.Current(), quicktest.IsNil)

	running := &Job{ID: 1, State: Running}
	stopped := &Job{ID: 2, State: Stopped}
	tbl.slots[0] = running
	tbl.slots[1] = stopped

	c.Assert(tbl.Current(), quicktest.Equals, stopped)
	c.Assert(tbl.MostRecentStopped(), quicktest.Equals, stopped)

	var ids []int
	for _, j := range tbl.All() {
		ids = append(ids, j.ID)
	}
	c.Assert(cmp.Diff([]int{1, 2}, ids), quicktest.Equals, "")
}

func TestParseSpecRejectsMalformed(t *testing.T) {
	c := quicktest.New(t)
	tbl := newNonInteractiveTable(&bytes.Buffer{})
	tbl.slots[0] = &Job{ID: 1}

	job, err := tbl.ParseSpec("%1")
	c.Assert(err, quicktest.IsNil)
	c.Assert(job.ID, quicktest.Equals, 1)

	_, err = tbl.ParseSpec("1")
	c.Assert(err, quicktest.Not(quicktest.IsNil))

	_, err = tbl.ParseSpec("%9")
	c.Assert(err, quicktest.Not(quicktest.IsNil))
}

func TestJobCompletedAndStopped(t *testing.T) {
	c := quicktest.New(t)
	job := &Job{Processes: []*Process{{Completed: true}, {Completed: false, Stopped: true}}}
	c.Assert(job.completed(), quicktest.IsFalse)
	c.Assert(job.stopped(), quicktest.IsTrue)

	job.Processes[1].Completed = true
	c.Assert(job.completed(), quicktest.IsTrue)
}

func TestExitStatusFromLastProcess(t *testing.T) {
	c := quicktest.New(t)
	job := &Job{Processes: []*Process{{Status: 0}, {Status: 3}}}
	c.Assert(job.ExitStatus(), quicktest.Equals, 3)

	job.Processes[1].Signaled = true
	job.Processes[1].Signal = 9
	c.Assert(job.ExitStatus(), quicktest.Equals, 128+9)
}

func TestFormatLine(t *testing.T) {
	c := quicktest.New(t)
	job := &Job{ID: 2, PGID: 4242, Command: "sleep 30", State: Running}
	c.Assert(job.FormatLine(false), quicktest.Equals, "[2]  Running\t\tsleep 30")
	c.Assert(job.FormatLine(true), quicktest.Equals, "[2] 4242 sleep 30")
}
