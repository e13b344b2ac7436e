package exploration

import "time"

// SourceResult records the outcome of one discovery routine. Failures are
// explicit values rather than swallowed logs so bootstrap outcomes are
// observable and testable.
type SourceResult struct {
	Domain      Domain        `json:"domain"`
	Source      string        `json:"source"`
	EntityCount int           `json:"entity_count"`
	Skipped     []string      `json:"skipped,omitempty"`
	Duration    time.Duration `json:"duration_ms"`
	Err         error         `json:"-"`
}

// Failed reports whether the routine produced nothing usable.
func (r SourceResult) Failed() bool {
	return r.Err != nil
}

// Error returns the failure reason as a string for serialization.
func (r SourceResult) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// DiscoveryReport aggregates the per-source results of one bootstrap or
// re-discovery run.
type DiscoveryReport struct {
	Results    []SourceResult `json:"results"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Succeeded counts routines that completed with at least a usable result.
func (r *DiscoveryReport) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if !res.Failed() {
			n++
		}
	}
	return n
}

// Failed counts routines that produced nothing.
func (r *DiscoveryReport) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// TotalEntities sums the entities contributed by all routines.
func (r *DiscoveryReport) TotalEntities() int {
	n := 0
	for _, res := range r.Results {
		n += res.EntityCount
	}
	return n
}
