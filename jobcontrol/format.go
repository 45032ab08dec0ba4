package jobcontrol

import "fmt"

// FormatLine renders one row of "jobs" output (original_source hush_jobs).
// withPID selects the "-p" flag's pid-only form.
func (j *Job) FormatLine(withPID bool) string {
	if withPID {
		return fmt.Sprintf("[%d] %d %s", j.ID, j.PGID, j.Command)
	}
	return fmt.Sprintf("[%d]  %s\t\t%s", j.ID, j.State, j.Command)
}
