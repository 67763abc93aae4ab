package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestContaining(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		wantBegin time.Time
		wantEnd   time.Time
	}{
		{
			name:      "early in month falls into period ending this month",
			date:      day(2015, time.February, 3),
			wantBegin: day(2015, time.January, 21),
			wantEnd:   day(2015, time.February, 20),
		},
		{
			name:      "the 20th belongs to the period ending that day",
			date:      day(2016, time.August, 20),
			wantBegin: day(2016, time.July, 21),
			wantEnd:   day(2016, time.August, 20),
		},
		{
			name:      "the 21st belongs to the period beginning that day",
			date:      day(2014, time.June, 21),
			wantBegin: day(2014, time.June, 21),
			wantEnd:   day(2014, time.July, 20),
		},
		{
			name:      "december rolls over the year boundary",
			date:      day(2014, time.December, 25),
			wantBegin: day(2014, time.December, 21),
			wantEnd:   day(2015, time.January, 20),
		},
		{
			name:      "january before the 21st reaches back to december",
			date:      day(2015, time.January, 5),
			wantBegin: day(2014, time.December, 21),
			wantEnd:   day(2015, time.January, 20),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Containing(tt.date)
			assert.Equal(t, tt.wantBegin, p.Begin)
			assert.Equal(t, tt.wantEnd, p.End)
		})
	}
}

func TestContaining_BoundaryInvariants(t *testing.T) {
	// every derived period begins on the 21st and ends on the 20th
	d := day(2014, time.January, 1)
	for i := 0; i < 800; i++ {
		p := Containing(d)
		require.Equal(t, 21, p.Begin.Day(), "begin day for %s", d)
		require.Equal(t, 20, p.End.Day(), "end day for %s", d)
		require.True(t, p.Contains(d), "period %s must contain %s", p, d)
		d = d.AddDate(0, 0, 1)
	}
}

func TestPrevious(t *testing.T) {
	p := Containing(day(2015, time.June, 7))
	prev := p.Previous()
	assert.Equal(t, day(2015, time.April, 21), prev.Begin)
	assert.Equal(t, day(2015, time.May, 20), prev.End)

	// february's short month is absorbed by re-derivation
	march := Containing(day(2015, time.March, 25))
	feb := march.Previous()
	assert.Equal(t, day(2015, time.February, 21), feb.Begin)
	assert.Equal(t, day(2015, time.March, 20), feb.End)

	// january's previous crosses the year boundary
	jan := Containing(day(2015, time.January, 22))
	dec := jan.Previous()
	assert.Equal(t, day(2014, time.December, 21), dec.Begin)
	assert.Equal(t, day(2015, time.January, 20), dec.End)
}

func TestNext(t *testing.T) {
	p := Containing(day(2015, time.June, 7))
	next := p.Next()
	assert.Equal(t, day(2015, time.June, 21), next.Begin)
	assert.Equal(t, day(2015, time.July, 20), next.End)
	assert.True(t, next.Previous().Equal(p))
}

func TestInventoryWindow(t *testing.T) {
	p := Containing(day(2015, time.June, 7))
	require.Equal(t, day(2015, time.June, 20), p.End)

	begin, end := p.InventoryWindow()
	assert.Equal(t, day(2015, time.June, 18), begin)
	assert.Equal(t, day(2015, time.June, 26), end)

	// the window crosses into the following month when end+6 overflows
	dec := Containing(day(2014, time.December, 25))
	begin, end = dec.InventoryWindow()
	assert.Equal(t, day(2015, time.January, 18), begin)
	assert.Equal(t, day(2015, time.January, 26), end)
}

func TestIsMissed(t *testing.T) {
	p := Containing(day(2015, time.June, 7)) // ends 2015-06-20

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"same month before cutoff", day(2015, time.June, 25), false},
		{"same month on cutoff day", day(2015, time.June, 26), true},
		{"following month", day(2015, time.July, 1), true},
		{"many months later", day(2015, time.October, 2), true},
		{"inside the period", day(2015, time.June, 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsMissed(tt.now))
		})
	}

	// year rollover: period ending 2015-01-20 checked in february 2015
	dec := Containing(day(2014, time.December, 25))
	assert.True(t, dec.IsMissed(day(2015, time.February, 2)))
	assert.False(t, dec.IsMissed(day(2015, time.January, 25)))
}

func TestIsWithinSubmissionWindow(t *testing.T) {
	assert.False(t, IsWithinSubmissionWindow(day(2015, time.June, 17)))
	assert.True(t, IsWithinSubmissionWindow(day(2015, time.June, 18)))
	assert.True(t, IsWithinSubmissionWindow(day(2015, time.June, 25)))
	assert.False(t, IsWithinSubmissionWindow(day(2015, time.June, 26)))
}

func TestFromBegin(t *testing.T) {
	p, err := FromBegin(day(2015, time.July, 21))
	require.NoError(t, err)
	assert.Equal(t, day(2015, time.August, 20), p.End)

	_, err = FromBegin(day(2015, time.July, 15))
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	p, err := Parse("2015-07-21")
	require.NoError(t, err)
	assert.Equal(t, day(2015, time.July, 21), p.Begin)
	assert.Equal(t, day(2015, time.August, 20), p.End)

	_, err = Parse("not-a-date")
	assert.Error(t, err)

	_, err = Parse("2015-07-03")
	assert.Error(t, err)
}
