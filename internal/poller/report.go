package poller

import "time"

// Report summarises one poll cycle.
type Report struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Boundary      time.Time `json:"boundary"`
	Projects      []string  `json:"projects"`
	IssuesScanned int       `json:"issues_scanned"`
	Messages      int       `json:"messages"`
	Delivered     int       `json:"delivered"`
	Failures      []Failure `json:"failures,omitempty"`
	Err           string    `json:"error,omitempty"`
}

type Failure struct {
	Issue       string `json:"issue"`
	Destination string `json:"destination"`
	Err         string `json:"error"`
}

// Success reports whether the cycle ran to completion. Delivery failures do
// not count against it.
func (r Report) Success() bool {
	return r.Err == ""
}
