package domain

import "time"

// Event is one immutable entry of the history ledger. Events are never edited
// or removed; replaying a cylinder's events in timestamp order reconstructs
// its current status (the cylinder row is a cached projection of the ledger).
type Event struct {
	ID              string    `json:"id"`
	CylinderID      string    `json:"cylinderId"`
	Action          Action    `json:"action"`
	Timestamp       time.Time `json:"timestamp"`
	CustomerID      string    `json:"customerId,omitempty"`
	WorkerID        string    `json:"workerId,omitempty"`
	ResultingStatus Status    `json:"resultingStatus"`
	Memo            string    `json:"memo,omitempty"`
}

// ReplayStatus folds a cylinder's events, oldest first, into the status they
// produce. ok is false when no event carries a resulting status.
func ReplayStatus(events []Event) (Status, bool) {
	var (
		status Status
		ok     bool
	)
	for _, ev := range events {
		if ev.ResultingStatus != "" {
			status = ev.ResultingStatus
			ok = true
		}
	}
	return status, ok
}
