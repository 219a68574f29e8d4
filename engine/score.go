/*
score.go - Additive urgency scoring for payment obligations

PURPOSE:
  Assigns each obligation a numeric urgency score, a coarse tier, and a
  human-readable reason string. Scoring is strictly additive: every rule
  that applies contributes a fixed point value, and rules never cancel
  each other out.

RULE TABLE (applied in declaration order):
  overdue                 +100  逾期N天
  late-fee risk            +80  罰款風險
  rent category            +60  租金合約
  insurance category       +60  勞健保費
  installment payment      +30  分期合約
  monthly payment          +15  月付項目
  due within 3 days        +40  3天內到期
  due within 4-7 days      +20  7天內到期

  A compound obligation stacks everything that applies: overdue + late
  fee + rent = 100+80+60 = 240. When nothing applies the score is 0 and
  the reason is exactly 一般項目.

TIER THRESHOLDS:
  >= 100 critical, >= 50 high, >= 15 medium, otherwise low.

REASON TEXT:
  Fragments are concatenated in rule declaration order (not by point
  magnitude) and joined with 、. The presentation layer displays the
  string verbatim, so the fragment vocabulary is a contract.

SEE ALSO:
  - types.go: Obligation and ScoredObligation
  - schedule.go: Consumes scores for budget allocation
*/
package engine

import (
	"fmt"
	"strings"
	"time"
)

// Point values for each scoring rule.
const (
	overduePoints     = 100
	lateFeePoints     = 80
	rentPoints        = 60
	insurancePoints   = 60
	installmentPoints = 30
	monthlyPoints     = 15
	dueSoonPoints     = 40 // due within 3 days
	dueWeekPoints     = 20 // due within 4-7 days
)

// Reason fragments. Rendered verbatim in the UI; treat as fixed vocabulary.
const (
	reasonLateFee     = "罰款風險"
	reasonRent        = "租金合約"
	reasonInsurance   = "勞健保費"
	reasonInstallment = "分期合約"
	reasonMonthly     = "月付項目"
	reasonDueSoon     = "3天內到期"
	reasonDueWeek     = "7天內到期"
	reasonGeneral     = "一般項目"

	reasonSeparator = "、"
)

const dueDateLayout = "2006-01-02"

// Score computes the urgency of a single obligation as of the given
// reference date. Pure: the input obligation is carried through unchanged
// and no clock or I/O is touched. It never fails; malformed or missing
// optional fields degrade to "no contribution" for that factor.
func Score(ob Obligation, asOf time.Time) ScoredObligation {
	priority := 0
	var reasons []string

	if ob.IsOverdue {
		priority += overduePoints
		days := ob.OverdueDays
		if days < 0 {
			// Invalid input; still honor the overdue flag.
			days = 0
		}
		reasons = append(reasons, fmt.Sprintf("逾期%d天", days))
	}

	if ob.HasLateFee {
		priority += lateFeePoints
		reasons = append(reasons, reasonLateFee)
	}

	switch ob.CategoryType {
	case CategoryRent:
		priority += rentPoints
		reasons = append(reasons, reasonRent)
	case CategoryInsurance:
		priority += insurancePoints
		reasons = append(reasons, reasonInsurance)
	}

	switch ob.PaymentType {
	case PaymentInstallment:
		priority += installmentPoints
		reasons = append(reasons, reasonInstallment)
	case PaymentMonthly:
		priority += monthlyPoints
		reasons = append(reasons, reasonMonthly)
	}

	if !ob.IsOverdue {
		if days, ok := daysUntilDue(ob.DueDate, asOf); ok {
			switch {
			case days >= 0 && days <= 3:
				priority += dueSoonPoints
				reasons = append(reasons, reasonDueSoon)
			case days >= 4 && days <= 7:
				priority += dueWeekPoints
				reasons = append(reasons, reasonDueWeek)
			}
		}
	}

	reason := reasonGeneral
	if len(reasons) > 0 {
		reason = strings.Join(reasons, reasonSeparator)
	}

	return ScoredObligation{
		Obligation: ob,
		Priority:   priority,
		Level:      LevelFor(priority),
		Reason:     reason,
	}
}

// ScoreAll scores every obligation in order.
func ScoreAll(obs []Obligation, asOf time.Time) []ScoredObligation {
	scored := make([]ScoredObligation, len(obs))
	for i, ob := range obs {
		scored[i] = Score(ob, asOf)
	}
	return scored
}

// daysUntilDue returns the whole calendar days from asOf to the due date.
// The second return is false when the date is absent or malformed, which
// callers treat as "no deadline pressure".
func daysUntilDue(dueDate string, asOf time.Time) (int, bool) {
	if dueDate == "" {
		return 0, false
	}
	due, err := time.Parse(dueDateLayout, dueDate)
	if err != nil {
		return 0, false
	}
	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	return int(due.Sub(today).Hours() / 24), true
}
