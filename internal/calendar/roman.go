package calendar

import "strconv"

var romanNumerals = [21]string{
	1: "I", 2: "II", 3: "III", 4: "IV", 5: "V",
	6: "VI", 7: "VII", 8: "VIII", 9: "IX", 10: "X",
	11: "XI", 12: "XII", 13: "XIII", 14: "XIV", 15: "XV",
	16: "XVI", 17: "XVII", 18: "XVIII", 19: "XIX", 20: "XX",
}

// toRoman converts 1..20 to a Roman numeral. No day-before count on the
// civic calendar exceeds XX; anything outside the table renders as a plain
// decimal so a bad input stays legible instead of failing.
func toRoman(n int) string {
	if n >= 1 && n <= 20 {
		return romanNumerals[n]
	}
	return strconv.Itoa(n)
}
