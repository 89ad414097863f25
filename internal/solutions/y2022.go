package solutions

import (
	"sort"
	"strconv"
	"strings"
)

// calorieCounting reports the largest group total and the sum of the top
// three groups. Groups are separated by blank lines.
func calorieCounting(input string) string {
	var totals []int
	current := 0
	flush := func() {
		totals = append(totals, current)
		current = 0
	}
	for _, line := range strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if current > 0 {
				flush()
			}
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			continue
		}
		current += n
	}
	if current > 0 {
		flush()
	}

	sort.Sort(sort.Reverse(sort.IntSlice(totals)))
	top, top3 := 0, 0
	for i, v := range totals {
		if i == 0 {
			top = v
		}
		if i < 3 {
			top3 += v
		}
	}
	return strconv.Itoa(top) + "\n" + strconv.Itoa(top3)
}
