package domain

import (
	"regexp"
	"strconv"
)

var parkingCountRe = regexp.MustCompile(`\d+`)

// ParseParking derives a parking count from a description such as
// "1 Covered + 1 Open" by summing every integer it mentions.
// A description without digits but with some text counts as one space.
func ParseParking(desc string) int {
	desc = trim(desc)
	if desc == "" {
		return 0
	}
	matches := parkingCountRe.FindAllString(desc, -1)
	if len(matches) == 0 {
		switch desc {
		case "None", "none", "No", "no", "0":
			return 0
		}
		return 1
	}
	total := 0
	for _, m := range matches {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		total += n
	}
	return total
}
