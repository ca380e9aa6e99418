package service

import (
	"fmt"
	"strconv"
	"strings"
)

// RollFormatter turns a range index into the roll stored for it.
type RollFormatter interface {
	Format(prefix string, n int) string
	Name() string
}

// PlainRolls stores the bare integer ("7").  The prefix is ignored.
type PlainRolls struct{}

func (PlainRolls) Format(_ string, n int) string { return strconv.Itoa(n) }
func (PlainRolls) Name() string                  { return "plain" }

// PaddedRolls stores prefix followed by the integer zero padded to Width
// ("CSE007" for prefix "cse", 7, width 3).
type PaddedRolls struct {
	Width int
}

func (p PaddedRolls) Format(prefix string, n int) string {
	w := p.Width
	if w < 1 {
		w = 1
	}
	digits := fmt.Sprintf("%0*d", w, n)
	if n < 0 {
		digits = "-" + fmt.Sprintf("%0*d", w, -n)
	}
	return strings.ToUpper(strings.TrimSpace(prefix)) + digits
}

func (p PaddedRolls) Name() string { return "padded" }

// NewRollFormatter builds the formatter named by the ROLL_FORMAT setting.
func NewRollFormatter(name string, width int) (RollFormatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "plain":
		return PlainRolls{}, nil
	case "padded":
		return PaddedRolls{Width: width}, nil
	}
	return nil, fmt.Errorf("unknown roll format %q", name)
}

// normalizeRoll applies the lookup normalization: trim and upper-case.
func normalizeRoll(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func digitsOnly(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
