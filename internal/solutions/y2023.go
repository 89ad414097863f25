package solutions

import (
	"strconv"
	"strings"
)

var spelledDigits = []string{"one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}

// trebuchet sums two-digit calibration values built from the first and
// last digit of each line. Part two also counts spelled-out digits, which
// may overlap ("eightwo" is 8 then 2).
func trebuchet(input string) string {
	p1, p2 := 0, 0
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		p1 += calibration(line, false)
		p2 += calibration(line, true)
	}
	return strconv.Itoa(p1) + "\n" + strconv.Itoa(p2)
}

func calibration(line string, words bool) int {
	first, last := -1, -1
	for i := 0; i < len(line); i++ {
		d := digitAt(line, i, words)
		if d < 0 {
			continue
		}
		if first < 0 {
			first = d
		}
		last = d
	}
	if first < 0 {
		return 0
	}
	return first*10 + last
}

func digitAt(line string, i int, words bool) int {
	if c := line[i]; c >= '0' && c <= '9' {
		return int(c - '0')
	}
	if !words {
		return -1
	}
	for n, w := range spelledDigits {
		if strings.HasPrefix(line[i:], w) {
			return n + 1
		}
	}
	return -1
}
