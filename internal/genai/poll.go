package genai

import "time"

// pollAction is the next step the poll loop should take.
type pollAction int

const (
	// pollWait means the run is still in flight; sleep and poll again.
	pollWait pollAction = iota
	// pollDone means the run completed.
	pollDone
	// pollFailed means the run reached a terminal failure status.
	pollFailed
	// pollExpired means the job deadline elapsed before completion.
	pollExpired
)

// decide maps a run status and the current time to the next poll action.
// It is a pure function of its inputs so the loop can be tested with a fake
// clock and a scripted status sequence.
func decide(status string, now, deadline time.Time) pollAction {
	switch status {
	case "completed":
		return pollDone
	case "failed", "cancelled", "expired", "incomplete":
		return pollFailed
	}
	if now.After(deadline) {
		return pollExpired
	}
	return pollWait
}
