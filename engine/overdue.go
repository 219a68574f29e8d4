/*
overdue.go - Budget-agnostic "what should I pay first" view

Filters obligations to the currently overdue ones and ranks them by
urgency. Performs no allocation; this is the read-only list behind the
reschedule screen.
*/
package engine

import "time"

// SelectOverdueForReschedule returns only the overdue obligations, scored
// and sorted by descending priority (stable). Returns an empty slice when
// nothing is overdue.
func SelectOverdueForReschedule(obs []Obligation, asOf time.Time) []ScoredObligation {
	overdue := make([]ScoredObligation, 0)
	for _, ob := range obs {
		if ob.IsOverdue {
			overdue = append(overdue, Score(ob, asOf))
		}
	}
	sortByPriority(overdue)
	return overdue
}
