package solutions

import "strconv"

// notQuiteLisp reports the final floor and the 1-based position of the
// first instruction that enters the basement (0 if never).
func notQuiteLisp(input string) string {
	floor, basement := 0, 0
	for i, c := range input {
		switch c {
		case '(':
			floor++
		case ')':
			floor--
		default:
			continue
		}
		if floor < 0 && basement == 0 {
			basement = i + 1
		}
	}
	return strconv.Itoa(floor) + "\n" + strconv.Itoa(basement)
}
