package calendar

import (
	"testing"
	"time"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayOfUsesLocalCalendar(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 23:30 UTC is already the next day in Jakarta (UTC+7).
	ts := time.Date(2026, time.March, 9, 23, 30, 0, 0, time.UTC)

	day := DayOf(ts, jakarta)
	assert.Equal(t, "2026-03-10", day.String())

	utcDay := DayOf(ts, time.UTC)
	assert.Equal(t, "2026-03-09", utcDay.String())
}

func TestDayOfMidnightBoundary(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	ts := time.Date(2026, time.March, 9, 17, 0, 0, 0, time.UTC) // 00:00 Jakarta
	assert.Equal(t, "2026-03-10", DayOf(ts, jakarta).String())

	ts = ts.Add(-time.Second)
	assert.Equal(t, "2026-03-09", DayOf(ts, jakarta).String())
}

func TestBeforeToday(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	yesterday := DayOf(time.Now().Add(-48*time.Hour), jakarta)
	assert.True(t, BeforeToday(yesterday, jakarta))

	today := Today(jakarta)
	assert.False(t, BeforeToday(today, jakarta))

	tomorrow := DayOf(time.Now().Add(48*time.Hour), jakarta)
	assert.False(t, BeforeToday(tomorrow, jakarta))
}

func TestSameDay(t *testing.T) {
	a, err := date.ParseDate("2026-05-01")
	require.NoError(t, err)
	b, err := date.ParseDate("2026-05-01")
	require.NoError(t, err)
	c, err := date.ParseDate("2026-05-02")
	require.NoError(t, err)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, c))
}
