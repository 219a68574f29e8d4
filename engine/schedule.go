/*
schedule.go - Greedy budget allocation across scored obligations

PURPOSE:
  Given a budget ceiling and a set of obligations, decides which items to
  pay this cycle and which to defer. Greedy by priority, not optimal
  bin-packing: the highest-priority items get first claim on the budget
  even when a cheaper lower-priority item would pack tighter.

ALGORITHM:
  1. Score every obligation (score.go)
  2. Stable sort descending by priority (ties keep input order, so
     identical inputs always produce identical output)
  3. Walk the sorted list; items are scheduled while their remaining
     amounts accumulate under the budget. The first item that does not
     fit stops the walk, and it and everything after it is deferred.
     Scheduled items are always a prefix of the priority order: a
     cheaper lower-priority item is never scheduled ahead of a
     higher-priority item that missed the cut.

SEE ALSO:
  - score.go: Priority scoring
  - overdue.go: Budget-agnostic overdue view
*/
package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Schedule allocates budget across obligations as of the given reference
// date. It never fails: an empty list, a zero budget, and a negative budget
// are all valid inputs with fully defined output (everything deferred when
// nothing fits, RemainingBudget never reported negative).
func Schedule(obs []Obligation, budget decimal.Decimal, asOf time.Time) ScheduleResult {
	scored := ScoreAll(obs, asOf)
	sortByPriority(scored)

	scheduled := make([]ScoredObligation, 0, len(scored))
	deferred := make([]ScoredObligation, 0)
	running := decimal.Zero

	cut := len(scored)
	for i, item := range scored {
		if running.Add(item.RemainingAmount).GreaterThan(budget) {
			cut = i
			break
		}
		scheduled = append(scheduled, item)
		running = running.Add(item.RemainingAmount)
	}
	deferred = append(deferred, scored[cut:]...)

	remaining := budget.Sub(running)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	critical := make([]ScoredObligation, 0)
	for _, item := range scored {
		if item.Level.IsUrgent() {
			critical = append(critical, item)
		}
	}

	totalNeeded := sumRemaining(obs)

	return ScheduleResult{
		TotalNeeded:     totalNeeded,
		IsOverBudget:    totalNeeded.GreaterThan(budget),
		ScheduledItems:  scheduled,
		DeferredItems:   deferred,
		ScheduledTotal:  running,
		RemainingBudget: remaining,
		CriticalItems:   critical,
	}
}

// sortByPriority orders scored obligations by descending priority, keeping
// input order for ties.
func sortByPriority(scored []ScoredObligation) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Priority > scored[j].Priority
	})
}
