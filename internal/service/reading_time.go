package service

import (
	"math"
	"strings"
)

// WordsPerMinute is the reading speed the estimate assumes.
const WordsPerMinute = 200

// EstimateReadingTime returns whole minutes needed to read body: the count
// of single-space separated tokens divided by WordsPerMinute, rounded up.
// Runs of spaces yield empty tokens that still count.
func EstimateReadingTime(body string) int {
	if body == "" {
		return 0
	}
	words := len(strings.Split(body, " "))
	return int(math.Ceil(float64(words) / WordsPerMinute))
}
