package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglong-lab/woyu-money-sub010/engine"
)

func TestSelectOverdue_FiltersAndRanks(t *testing.T) {
	// GIVEN: A mix of overdue and current items, one overdue item also
	//        carrying late-fee risk
	// WHEN: Selecting for reschedule
	// THEN: Only overdue items come back, the compound score ranks first

	plainOverdue := ob(1, 1000)
	plainOverdue.IsOverdue = true
	plainOverdue.OverdueDays = 2

	feeOverdue := ob(2, 2000)
	feeOverdue.IsOverdue = true
	feeOverdue.OverdueDays = 1
	feeOverdue.HasLateFee = true

	current := ob(3, 3000)
	current.DueDate = dueIn(2)

	got := engine.SelectOverdueForReschedule(
		[]engine.Obligation{plainOverdue, current, feeOverdue}, asOf)

	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID, "overdue + late fee outranks plain overdue")
	assert.Equal(t, int64(1), got[1].ID)
	for _, item := range got {
		assert.True(t, item.IsOverdue)
	}
}

func TestSelectOverdue_NoneOverdue_ReturnsEmpty(t *testing.T) {
	obs := []engine.Obligation{ob(1, 100), ob(2, 200)}

	got := engine.SelectOverdueForReschedule(obs, asOf)

	assert.Empty(t, got)
}

func TestSelectOverdue_EmptyInput_ReturnsEmpty(t *testing.T) {
	assert.Empty(t, engine.SelectOverdueForReschedule(nil, asOf))
}

func TestSelectOverdue_IgnoresBudgetEntirely(t *testing.T) {
	// The reschedule view performs no allocation: every overdue item is
	// returned no matter how large its remaining amount.
	huge := ob(1, 9999999)
	huge.IsOverdue = true
	huge.OverdueDays = 30

	got := engine.SelectOverdueForReschedule([]engine.Obligation{huge}, asOf)

	require.Len(t, got, 1)
	assert.True(t, got[0].RemainingAmount.Equal(money(9999999)))
}

func TestSelectOverdue_StableForEqualScores(t *testing.T) {
	a := ob(10, 100)
	a.IsOverdue = true
	a.OverdueDays = 4

	b := ob(11, 100)
	b.IsOverdue = true
	b.OverdueDays = 4

	got := engine.SelectOverdueForReschedule([]engine.Obligation{a, b}, asOf)

	require.Len(t, got, 2)
	assert.Equal(t, int64(10), got[0].ID)
	assert.Equal(t, int64(11), got[1].ID)
}
