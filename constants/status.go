package constants

// RunStatus is the canonical status for rows in the runs table.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusRunning RunStatus = "RUNNING" // in progress
	RunStatusOK      RunStatus = "OK"      // all requested tracks completed cleanly
	RunStatusPartial RunStatus = "PARTIAL" // completed with degraded/missing tracks
	RunStatusFailed  RunStatus = "FAILED"  // terminal failure
)
