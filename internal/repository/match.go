package repository

import (
	"sort"
	"strings"

	"github.com/iliyamo/exam-seat-allocation/internal/model"
)

// rankMatches orders suffix-query candidates so the first element is the
// most plausible seat for the typed digits:
//
//	0: the stored roll equals the digits
//	1: the digits, after any zero padding, follow a non-digit or the start ("CSE023" for "23")
//	2: the digits are the tail of a longer number ("123" for "23")
//
// Ties go to the shorter roll, then lexical order.
func rankMatches(seats []model.SeatAssignment, digits string) {
	sort.SliceStable(seats, func(i, j int) bool {
		ri, rj := suffixRank(seats[i].Roll, digits), suffixRank(seats[j].Roll, digits)
		if ri != rj {
			return ri < rj
		}
		if len(seats[i].Roll) != len(seats[j].Roll) {
			return len(seats[i].Roll) < len(seats[j].Roll)
		}
		return seats[i].Roll < seats[j].Roll
	})
}

func suffixRank(roll, digits string) int {
	if strings.EqualFold(roll, digits) {
		return 0
	}
	head := strings.TrimRight(strings.TrimSuffix(roll, digits), "0")
	if head == "" {
		return 1
	}
	if c := head[len(head)-1]; c < '0' || c > '9' {
		return 1
	}
	return 2
}
