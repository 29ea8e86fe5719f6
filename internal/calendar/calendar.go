// Package calendar renders dates for the portal's display languages,
// including the Roman civic calendar used on the Latin pages.
package calendar

import "time"

// Format renders a date for the given display language.
//
// "de" uses the German short form, "lv" the Latvian one. "lat" renders the
// Roman civic calendar (Kalends / Nones / Ides with day-before counts).
// Anything else falls back to the ISO date.
func Format(t time.Time, lang string) string {
	switch lang {
	case "de":
		return t.Format("02.01.2006")
	case "lv":
		return t.Format("02.01.2006.")
	case "lat":
		return formatRoman(t)
	default:
		return t.Format("2006-01-02")
	}
}

var romanMonths = [13]string{
	1:  "Jan.",
	2:  "Feb.",
	3:  "Mart.",
	4:  "Apr.",
	5:  "Mai.",
	6:  "Iun.",
	7:  "Iul.",
	8:  "Aug.",
	9:  "Sept.",
	10: "Oct.",
	11: "Nov.",
	12: "Dec.",
}

const (
	markerKalends = "Kal."
	markerNones   = "Non."
	markerIdes    = "Eid."
)

// nonesDay returns the day of the Nones: the 7th in March, May, July and
// October, the 5th everywhere else. The Ides follow eight days later.
func nonesDay(month time.Month) int {
	switch month {
	case time.March, time.May, time.July, time.October:
		return 7
	default:
		return 5
	}
}

func idesDay(month time.Month) int {
	return nonesDay(month) + 8
}

func formatRoman(t time.Time) string {
	month := t.Month()
	day := t.Day()
	nones := nonesDay(month)
	ides := idesDay(month)
	name := romanMonths[month]

	switch {
	case day == 1:
		return markerKalends + " " + name
	case day == nones:
		return markerNones + " " + name
	case day == ides:
		return markerIdes + " " + name
	case day < nones:
		return "a.d. " + toRoman(nones-day+1) + " " + markerNones + " " + name
	case day < ides:
		return "a.d. " + toRoman(ides-day+1) + " " + markerIdes + " " + name
	}

	// Past the Ides the date counts down to the Kalends of the next month.
	// The count is inclusive of both ends, hence the +1.
	nextMonth := month + 1
	year := t.Year()
	if month == time.December {
		nextMonth = time.January
		year++
	}
	kalends := time.Date(year, nextMonth, 1, 0, 0, 0, 0, t.Location())
	midnight := time.Date(t.Year(), month, day, 0, 0, 0, 0, t.Location())
	days := int(kalends.Sub(midnight).Hours()/24) + 1
	return "a.d. " + toRoman(days) + " " + markerKalends + " " + romanMonths[nextMonth]
}
