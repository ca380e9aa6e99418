// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types carried in AssignmentEvent.Type.
const (
    EventRangeApplied = "range_applied"
    EventSeatsCleared = "seats_cleared"
)

// AssignmentEvent is published whenever stored seat assignments change:
// after a range is applied and after the store is cleared.  It carries
// enough detail for the audit consumer to write a self-contained line
// without querying the database.
type AssignmentEvent struct {
    Type       string   `json:"type"`
    Branch     string   `json:"branch,omitempty"`
    Year       int      `json:"year,omitempty"`
    Room       string   `json:"room,omitempty"`
    Location   string   `json:"location,omitempty"`
    Start      int      `json:"start,omitempty"`
    End        int      `json:"end,omitempty"`
    Generated  int      `json:"generated,omitempty"`
    Inserted   int      `json:"inserted,omitempty"`
    Conflicts  int      `json:"conflicts,omitempty"`
    Modified   int64    `json:"modified,omitempty"`
    Deleted    int64    `json:"deleted,omitempty"`
    Rolls      []string `json:"rolls,omitempty"`
    OccurredAt string   `json:"occurred_at"`
}
