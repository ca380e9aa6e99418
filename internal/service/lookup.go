package service

import (
	"context"
	"strings"

	"github.com/iliyamo/exam-seat-allocation/internal/model"
	"github.com/iliyamo/exam-seat-allocation/internal/repository"
)

// LookupRequest is a student's seat query as typed into the search form.
type LookupRequest struct {
	Roll   string
	Branch string
	Year   any // numeric string or number
}

// BuildQuery normalizes a lookup request into a store query.
//
// A roll made only of digits becomes a suffix query, so "23" finds a stored
// "023" or "CSE023". Anything else must match the stored roll exactly
// after trimming and upper-casing.
func BuildQuery(req LookupRequest) (repository.Query, error) {
	roll := normalizeRoll(req.Roll)
	branch := strings.ToUpper(strings.TrimSpace(req.Branch))
	if roll == "" || branch == "" || isBlank(req.Year) {
		return repository.Query{}, invalid("roll", "roll, branch and year are required")
	}
	year, err := ParseInt("year", req.Year)
	if err != nil {
		return repository.Query{}, invalid("year", "year must be a number")
	}
	q := repository.Query{Branch: branch, Year: year}
	if isDigits(roll) {
		q.Roll = digitsOnly(roll)
		q.Suffix = true
	} else {
		q.Roll = roll
	}
	return q, nil
}

// Lookup returns the seat matching req or repository.ErrSeatNotFound.
func (s *Seats) Lookup(ctx context.Context, req LookupRequest) (model.SeatAssignment, error) {
	q, err := BuildQuery(req)
	if err != nil {
		return model.SeatAssignment{}, err
	}
	return s.store.FindOne(ctx, q)
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}
