package calendar

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFormatLocales(t *testing.T) {
	d := date(2026, time.July, 30)

	require.Equal(t, "30.07.2026", Format(d, "de"))
	require.Equal(t, "30.07.2026.", Format(d, "lv"))
	require.Equal(t, "2026-07-30", Format(d, "en"))
	require.Equal(t, "2026-07-30", Format(d, "fr"))
}

func TestNonesAndIdesTable(t *testing.T) {
	late := map[time.Month]bool{
		time.March:   true,
		time.May:     true,
		time.July:    true,
		time.October: true,
	}

	for m := time.January; m <= time.December; m++ {
		if late[m] {
			require.Equal(t, 7, nonesDay(m), "month %v", m)
			require.Equal(t, 15, idesDay(m), "month %v", m)
		} else {
			require.Equal(t, 5, nonesDay(m), "month %v", m)
			require.Equal(t, 13, idesDay(m), "month %v", m)
		}
	}
}

func TestFormatRoman(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{date(2026, time.March, 1), "Kal. Mart."},
		{date(2026, time.March, 7), "Non. Mart."},
		{date(2026, time.March, 15), "Eid. Mart."},
		{date(2026, time.March, 3), "a.d. V Non. Mart."},
		{date(2026, time.March, 10), "a.d. VI Eid. Mart."},
		{date(2026, time.March, 25), "a.d. VIII Kal. Apr."},
		{date(2026, time.March, 16), "a.d. XVII Kal. Apr."},
		{date(2026, time.February, 1), "Kal. Feb."},
		{date(2026, time.February, 5), "Non. Feb."},
		{date(2026, time.February, 13), "Eid. Feb."},
		{date(2026, time.February, 3), "a.d. III Non. Feb."},
		{date(2026, time.February, 14), "a.d. XVI Kal. Mart."},
		// Year rollover: late December counts towards January Kalends.
		{date(2026, time.December, 25), "a.d. VIII Kal. Jan."},
		{date(2026, time.July, 30), "a.d. III Kal. Aug."},
	}

	for _, tc := range cases {
		t.Run(tc.in.Format("2006-01-02"), func(t *testing.T) {
			require.Equal(t, tc.want, Format(tc.in, "lat"))
		})
	}
}

func TestToRomanTable(t *testing.T) {
	want := []string{
		"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X",
		"XI", "XII", "XIII", "XIV", "XV", "XVI", "XVII", "XVIII", "XIX", "XX",
	}
	for i, numeral := range want {
		require.Equal(t, numeral, toRoman(i+1))
	}
}

func TestToRomanFallback(t *testing.T) {
	for _, n := range []int{0, -3, 21, 100} {
		require.Equal(t, strconv.Itoa(n), toRoman(n))
	}
}

// Every day of a year must render without panicking and non-empty; the past-
// the-Ides branch must always name the next month.
func TestFormatRomanExhaustive(t *testing.T) {
	d := date(2026, time.January, 1)
	for d.Year() == 2026 {
		out := Format(d, "lat")
		require.NotEmpty(t, out, "date %v", d)
		if d.Day() > idesDay(d.Month()) {
			next := d.Month() + 1
			if d.Month() == time.December {
				next = time.January
			}
			require.Contains(t, out, fmt.Sprintf("Kal. %s", romanMonths[next]), "date %v", d)
		}
		d = d.AddDate(0, 0, 1)
	}
}
