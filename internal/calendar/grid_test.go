package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGridJanuary2024(t *testing.T) {
	// January 2024: 31 days, starts on a Monday, so the grid opens on the
	// preceding Sunday and spills ten days into February.
	for _, anchor := range []CivilDate{{2024, 1, 1}, {2024, 1, 15}, {2024, 1, 31}} {
		days := BuildGrid(anchor)
		require.Len(t, days, GridSize)

		assert.Equal(t, CivilDate{2023, 12, 31}, days[0])
		assert.Equal(t, CivilDate{2024, 2, 10}, days[41])
	}
}

func TestBuildGridAlwaysFortyTwoAscending(t *testing.T) {
	anchors := []CivilDate{
		{2024, 1, 1},  // 31 days, Monday start
		{2024, 2, 10}, // leap February, Thursday start
		{2023, 2, 1},  // 28 days
		{2026, 2, 14}, // 28 days, Sunday start: zero leading pad
		{2024, 9, 1},  // 30 days, Sunday start
		{2024, 6, 30}, // 30 days, Saturday start: partial sixth row
		{2025, 12, 25},
	}

	for _, anchor := range anchors {
		days := BuildGrid(anchor)
		require.Len(t, days, GridSize, "anchor %v", anchor)

		for i := 1; i < len(days); i++ {
			// strictly ascending with no gap: each cell is the previous plus one day
			assert.Equal(t, days[i-1].AddDays(1), days[i], "anchor %v cell %d", anchor, i)
		}

		// the whole anchor month is present
		first := anchor.FirstOfMonth()
		inMonth := 0
		for _, d := range days {
			if InMonth(d, anchor) {
				inMonth++
			}
		}
		assert.Equal(t, first.DaysInMonth(), inMonth, "anchor %v", anchor)
	}
}

func TestBuildGridZeroLeadingPad(t *testing.T) {
	// February 2026 starts on a Sunday: no previous-month cells at all.
	days := BuildGrid(CivilDate{2026, 2, 1})
	assert.Equal(t, CivilDate{2026, 2, 1}, days[0])
	assert.Equal(t, CivilDate{2026, 3, 14}, days[41])
}

func TestBuildGridPureInYearMonth(t *testing.T) {
	a := BuildGrid(CivilDate{2025, 3, 1})
	b := BuildGrid(CivilDate{2025, 3, 31})
	assert.Equal(t, a, b)
}

func TestInMonth(t *testing.T) {
	anchor := CivilDate{2024, 1, 15}
	assert.True(t, InMonth(CivilDate{2024, 1, 1}, anchor))
	assert.False(t, InMonth(CivilDate{2023, 12, 31}, anchor))
	assert.False(t, InMonth(CivilDate{2024, 2, 1}, anchor))
	// same month number, different year
	assert.False(t, InMonth(CivilDate{2023, 1, 15}, anchor))
}
