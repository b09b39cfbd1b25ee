// internal/request/summary.go
//
// Derived homeowner dashboard counts. A Summary is a pure projection of a
// request list and is recomputed whenever the list changes, never mutated
// on its own.

package request

// Summary holds the homeowner dashboard counters.
type Summary struct {
	Active    int
	Completed int
	Total     int
}

// Summarize computes the dashboard counters from a request list.
// Active counts pending, accepted, and in-progress requests; cancelled,
// expired, and offered requests only contribute to the total.
func Summarize(requests []ServiceRequest) Summary {
	var sum Summary
	sum.Total = len(requests)
	for _, r := range requests {
		switch {
		case r.Status.Active():
			sum.Active++
		case r.Status == StatusCompleted:
			sum.Completed++
		}
	}
	return sum
}
