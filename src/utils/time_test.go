package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysBetween(t *testing.T) {
	today := time.Date(2025, 3, 3, 21, 30, 0, 0, time.UTC)

	assert.Equal(t, 28, DaysBetween(today, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, DaysBetween(today, time.Date(2025, 3, 3, 1, 0, 0, 0, time.UTC)))
	assert.Equal(t, -2, DaysBetween(today, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, DaysBetween(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2025-04-30 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("2025-02-30")
	assert.Error(t, err)

	_, err = ParseDate("04/30/2025")
	assert.Error(t, err)
}

func TestIsWeekday(t *testing.T) {
	assert.True(t, IsWeekday(time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsWeekday(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsWeekday(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)))
}
