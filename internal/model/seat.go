package model

import (
    "strconv"
    "strings"
)

// SeatAssignment describes the exam room a student is seated in.  An
// assignment is identified by its roll and branch (and optionally its
// year, see IdentityMode); year, room and location are the payload.
//
// Fields:
//  Roll     – student roll, upper-cased, possibly prefixed and zero padded.
//  Branch   – academic branch code, upper-cased (CSE, ECE, ...).
//  Year     – academic year ordinal, 1–4 in practice.
//  Room     – free-form room identifier.
//  Location – free-form human readable location label.
type SeatAssignment struct {
    Roll     string `json:"roll"`     // seat_assignments.roll
    Branch   string `json:"branch"`   // seat_assignments.branch
    Year     int    `json:"year"`     // seat_assignments.year
    Room     string `json:"room"`     // seat_assignments.room
    Location string `json:"location"` // seat_assignments.location
}

// Label renders the assignment the way reports list it: "roll (branch)".
func (s SeatAssignment) Label() string {
    return s.Roll + " (" + s.Branch + ")"
}

// SameSlot reports whether two assignments of the same identity carry the
// same payload.  Fields that are part of the identity under mode are not
// compared.
func (s SeatAssignment) SameSlot(o SeatAssignment, mode IdentityMode) bool {
    if mode != IdentityRollBranchYear && s.Year != o.Year {
        return false
    }
    return s.Room == o.Room && s.Location == o.Location
}

// IdentityMode selects which fields make up the logical identity of an
// assignment.  The chosen mode is persisted by the store and checked at
// startup so that switching it never silently reinterprets stored rows.
type IdentityMode string

const (
    IdentityRollBranch     IdentityMode = "roll_branch"
    IdentityRollBranchYear IdentityMode = "roll_branch_year"
)

// ParseIdentityMode accepts the configured mode name; empty selects the default.
func ParseIdentityMode(s string) (IdentityMode, bool) {
    switch IdentityMode(strings.ToLower(strings.TrimSpace(s))) {
    case "", IdentityRollBranch:
        return IdentityRollBranch, true
    case IdentityRollBranchYear:
        return IdentityRollBranchYear, true
    }
    return "", false
}

// SeatKey is the identity of an assignment under a given mode.
type SeatKey struct {
    Roll   string
    Branch string
    Year   int // ignored unless the mode is IdentityRollBranchYear
}

// Key returns the identity of s under mode.
func (s SeatAssignment) Key(mode IdentityMode) SeatKey {
    k := SeatKey{Roll: s.Roll, Branch: s.Branch}
    if mode == IdentityRollBranchYear {
        k.Year = s.Year
    }
    return k
}

// Ident encodes the key into the single indexed column used by the store.
func (k SeatKey) Ident(mode IdentityMode) string {
    if mode == IdentityRollBranchYear {
        return k.Branch + "|" + k.Roll + "|" + strconv.Itoa(k.Year)
    }
    return k.Branch + "|" + k.Roll
}
