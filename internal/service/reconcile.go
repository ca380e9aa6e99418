package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/exam-seat-allocation/internal/model"
	"github.com/iliyamo/exam-seat-allocation/internal/queue"
)

// DefaultMaxRange caps the number of rolls one add-range call may generate.
const DefaultMaxRange = 5000

// RangeRequest asks for one seat assignment per roll in [Start, End].
type RangeRequest struct {
	Prefix   string
	Start    int
	End      int
	Branch   string
	Year     int
	Room     string
	Location string
	Preview  bool
}

// RangeReport is the outcome of a reconciliation.  Counts and label lists
// always describe the store as it was before any write of this call.
type RangeReport struct {
	Message        string   `json:"message"`
	Preview        bool     `json:"preview"`
	Generated      int      `json:"generated"`
	Inserted       int      `json:"inserted"`
	Duplicates     int      `json:"duplicates"`
	Conflicts      int      `json:"conflicts"`
	Modified       int64    `json:"modified"`
	InsertedRolls  []string `json:"inserted_rolls"`
	DuplicateRolls []string `json:"duplicate_rolls"`
	ConflictRolls  []string `json:"conflict_rolls"`
}

// Seats implements range reconciliation, lookup and clearing on top of a
// Store.
type Seats struct {
	store    Store
	rolls    RollFormatter
	events   EventPublisher
	maxRange int
}

// NewSeats wires the service.  events may be nil to disable publishing;
// maxRange <= 0 selects DefaultMaxRange.
func NewSeats(store Store, rolls RollFormatter, events EventPublisher, maxRange int) *Seats {
	if rolls == nil {
		rolls = PlainRolls{}
	}
	if maxRange <= 0 {
		maxRange = DefaultMaxRange
	}
	return &Seats{store: store, rolls: rolls, events: events, maxRange: maxRange}
}

// RollFormat names the active roll formatting policy.
func (s *Seats) RollFormat() string { return s.rolls.Name() }

// IdentityMode names the identity rule of the underlying store.
func (s *Seats) IdentityMode() model.IdentityMode { return s.store.Mode() }

// Validate checks a range request without touching the store and returns
// it normalized.
func (s *Seats) Validate(req RangeRequest) (RangeRequest, error) {
	req.Branch = strings.ToUpper(strings.TrimSpace(req.Branch))
	req.Room = strings.TrimSpace(req.Room)
	req.Location = strings.TrimSpace(req.Location)
	switch {
	case req.Branch == "":
		return req, invalid("branch", "branch is required")
	case req.Room == "":
		return req, invalid("room", "room is required")
	case req.Location == "":
		return req, invalid("location", "location is required")
	case outOfRange(req.Start):
		return req, invalid("start", "start must be a number")
	case outOfRange(req.End):
		return req, invalid("end", "end must be a number")
	case outOfRange(req.Year):
		return req, invalid("year", "year must be a number")
	case req.Start > req.End:
		return req, invalid("start", "Invalid roll range")
	}
	// both ends fit in int32, so the length cannot overflow int64
	if n := int64(req.End) - int64(req.Start) + 1; n > int64(s.maxRange) {
		return req, invalid("end", "range of %d rolls exceeds the limit of %d", n, s.maxRange)
	}
	return req, nil
}

// Generate builds the candidate assignments for a validated request.
func (s *Seats) Generate(req RangeRequest) []model.SeatAssignment {
	n := req.End - req.Start + 1
	out := make([]model.SeatAssignment, 0, n)
	for k := 0; k < n; k++ {
		i := req.Start + k
		out = append(out, model.SeatAssignment{
			Roll:     strings.ToUpper(s.rolls.Format(req.Prefix, i)),
			Branch:   req.Branch,
			Year:     req.Year,
			Room:     req.Room,
			Location: req.Location,
		})
	}
	return out
}

// Reconcile classifies every generated roll as new, duplicate or conflict
// and, unless req.Preview is set, writes the new ones.  Existing records
// are never overwritten: duplicates need nothing and conflicts must be
// resolved by clearing or another explicit action.
//
// Writes are conditional inserts keyed on identity, so a record created by
// another writer between classification and write is left alone; Modified
// then reports fewer rows than Inserted.  When the write fails the report
// is still returned alongside the error.
func (s *Seats) Reconcile(ctx context.Context, req RangeRequest) (RangeReport, error) {
	req, err := s.Validate(req)
	if err != nil {
		return RangeReport{}, err
	}
	mode := s.store.Mode()
	candidates := s.Generate(req)

	keys := make([]model.SeatKey, len(candidates))
	for i, c := range candidates {
		keys[i] = c.Key(mode)
	}
	existing, err := s.store.FindByKeys(ctx, keys)
	if err != nil {
		return RangeReport{}, fmt.Errorf("load existing seats: %w", err)
	}
	byIdent := make(map[string]model.SeatAssignment, len(existing))
	for _, e := range existing {
		byIdent[e.Key(mode).Ident(mode)] = e
	}

	rep := RangeReport{
		Preview:        req.Preview,
		Generated:      len(candidates),
		InsertedRolls:  []string{},
		DuplicateRolls: []string{},
		ConflictRolls:  []string{},
	}
	var fresh []model.SeatAssignment
	for i, c := range candidates {
		cur, ok := byIdent[keys[i].Ident(mode)]
		switch {
		case !ok:
			fresh = append(fresh, c)
			rep.InsertedRolls = append(rep.InsertedRolls, c.Label())
		case cur.SameSlot(c, mode):
			rep.DuplicateRolls = append(rep.DuplicateRolls, c.Label())
		default:
			rep.ConflictRolls = append(rep.ConflictRolls, c.Label())
		}
	}
	rep.Inserted = len(rep.InsertedRolls)
	rep.Duplicates = len(rep.DuplicateRolls)
	rep.Conflicts = len(rep.ConflictRolls)

	if req.Preview {
		rep.Message = "Preview"
		return rep, nil
	}

	rep.Message = "Range processed"
	if len(fresh) > 0 {
		res, err := s.store.InsertIfAbsent(ctx, fresh)
		rep.Modified = res.Written
		if err != nil {
			return rep, fmt.Errorf("apply range: %w", err)
		}
	}
	s.publish(ctx, queue.AssignmentEvent{
		Type:      queue.EventRangeApplied,
		Branch:    req.Branch,
		Year:      req.Year,
		Room:      req.Room,
		Location:  req.Location,
		Start:     req.Start,
		End:       req.End,
		Generated: rep.Generated,
		Inserted:  rep.Inserted,
		Conflicts: rep.Conflicts,
		Modified:  rep.Modified,
		Rolls:     rep.InsertedRolls,
	})
	return rep, nil
}

// Clear deletes every stored assignment.
func (s *Seats) Clear(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear seats: %w", err)
	}
	s.publish(ctx, queue.AssignmentEvent{Type: queue.EventSeatsCleared, Deleted: n})
	return n, nil
}

// publish hands ev to the event publisher without letting a broker outage
// fail the request that caused it.
func (s *Seats) publish(ctx context.Context, ev queue.AssignmentEvent) {
	if s.events == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.events.Publish(pctx, ev); err != nil {
		log.Printf("seats: publish %s event failed: %v", ev.Type, err)
	}
}

// ParseInt converts a decoded JSON or query value into an int.  Numbers and
// numeric strings are accepted; fractions, booleans and anything else are a
// ValidationError naming field.
func ParseInt(field string, v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return 0, invalid(field, "%s is required", field)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t != math.Trunc(t) || math.Abs(t) > math.MaxInt32 {
			return 0, invalid(field, "%s must be a number", field)
		}
		return int(t), nil
	case int:
		if outOfRange(t) {
			return 0, invalid(field, "%s must be a number", field)
		}
		return t, nil
	case int64:
		if outOfRange64(t) {
			return 0, invalid(field, "%s must be a number", field)
		}
		return int(t), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, invalid(field, "%s is required", field)
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			if outOfRange64(n) {
				return 0, invalid(field, "%s must be a number", field)
			}
			return int(n), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, invalid(field, "%s must be a number", field)
		}
		return ParseInt(field, f)
	}
	return 0, invalid(field, "%s must be a number", field)
}

// outOfRange reports whether n does not fit the INT columns rolls and
// years are stored in.
func outOfRange(n int) bool { return outOfRange64(int64(n)) }

func outOfRange64(n int64) bool { return n < math.MinInt32 || n > math.MaxInt32 }

// Ping reports whether the store is reachable.
func (s *Seats) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
