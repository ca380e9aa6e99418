package repository // repository defines data access for seat assignments

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"       // errors for sentinel comparison
	"strings"      // strings builds placeholder lists

	"github.com/iliyamo/exam-seat-allocation/internal/database"
	"github.com/iliyamo/exam-seat-allocation/internal/model"
)

// chunkSize bounds the number of rows or placeholders sent in one statement.
const chunkSize = 200

// Query selects assignments for a lookup.  Branch and Year always match
// exactly.  With Suffix set, Roll is a digit string and any stored roll
// ending in it matches; otherwise Roll must match exactly.
type Query struct {
	Roll   string
	Branch string
	Year   int
	Suffix bool
}

// BulkResult reports what a bulk write actually changed.
type BulkResult struct {
	Attempted int   // rows sent to the store
	Written   int64 // rows the store reports as inserted
}

// SeatRepo provides methods to work with seat assignments in the database.
type SeatRepo struct {
	db      *sql.DB
	dialect database.Dialect
	mode    model.IdentityMode
}

// NewSeatRepo constructs a SeatRepo with the given DB handle, SQL dialect
// and identity mode.
func NewSeatRepo(db *sql.DB, dialect database.Dialect, mode model.IdentityMode) *SeatRepo {
	return &SeatRepo{db: db, dialect: dialect, mode: mode}
}

// Mode returns the identity mode the repository keys rows by.
func (r *SeatRepo) Mode() model.IdentityMode { return r.mode }

// Ping checks that the database is reachable.
func (r *SeatRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// FindOne returns the single best assignment for q, or ErrSeatNotFound.
// Exact queries hit at most one row per identity.  Suffix queries may match
// several rolls; they are ranked by rankMatches.
func (r *SeatRepo) FindOne(ctx context.Context, q Query) (model.SeatAssignment, error) {
	var (
		where string
		arg   string
	)
	if q.Suffix {
		where = "roll LIKE ?"
		arg = "%" + q.Roll
	} else {
		where = "roll = ?"
		arg = q.Roll
	}
	query := `SELECT roll, branch, year, room, location
	          FROM seat_assignments
	          WHERE branch = ? AND year = ? AND ` + where + `
	          ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, q.Branch, q.Year, arg)
	if err != nil {
		return model.SeatAssignment{}, err
	}
	found, err := scanSeats(rows)
	if err != nil {
		return model.SeatAssignment{}, err
	}
	if !q.Suffix {
		// exact lookups still guard against collations that fold case
		found = filterExact(found, q.Roll)
	}
	if len(found) == 0 {
		return model.SeatAssignment{}, ErrSeatNotFound
	}
	if q.Suffix {
		rankMatches(found, q.Roll)
	}
	return found[0], nil
}

// FindByKeys returns every stored assignment whose identity is in keys.
// Lookups are issued in chunks so large ranges stay under placeholder limits.
func (r *SeatRepo) FindByKeys(ctx context.Context, keys []model.SeatKey) ([]model.SeatAssignment, error) {
	out := make([]model.SeatAssignment, 0, len(keys))
	for start := 0; start < len(keys); start += chunkSize {
		end := min(start+chunkSize, len(keys))
		part := keys[start:end]
		args := make([]any, 0, len(part))
		for _, k := range part {
			args = append(args, k.Ident(r.mode))
		}
		query := `SELECT roll, branch, year, room, location
		          FROM seat_assignments
		          WHERE ident IN (` + placeholders(len(part)) + `)`
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		found, err := scanSeats(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}

// InsertIfAbsent writes each assignment unless a row with the same identity
// already exists.  An existing row is never modified.  Entries are
// independent: a duplicate identity skips that entry only.  On error the
// result still reports the rows written by earlier chunks.
func (r *SeatRepo) InsertIfAbsent(ctx context.Context, seats []model.SeatAssignment) (BulkResult, error) {
	var res BulkResult
	for start := 0; start < len(seats); start += chunkSize {
		end := min(start+chunkSize, len(seats))
		part := seats[start:end]
		query := `INSERT INTO seat_assignments (ident, roll, branch, year, room, location) VALUES `
		args := make([]any, 0, len(part)*6)
		for i, s := range part {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?, ?)"
			args = append(args, s.Key(r.mode).Ident(r.mode), s.Roll, s.Branch, s.Year, s.Room, s.Location)
		}
		query += r.onDuplicateSkip()
		res.Attempted += len(part)
		out, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return res, err
		}
		n, err := out.RowsAffected()
		if err != nil {
			return res, err
		}
		res.Written += n
	}
	return res, nil
}

// DeleteAll removes every assignment and returns how many rows went away.
func (r *SeatRepo) DeleteAll(ctx context.Context) (int64, error) {
	const q = `DELETE FROM seat_assignments`
	res, err := r.db.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of stored assignments.
func (r *SeatRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seat_assignments`).Scan(&n)
	return n, err
}

// onDuplicateSkip returns the clause that turns a plain insert into an
// insert-if-absent on the ident unique key.  On MySQL the no-op update
// reports 0 affected rows because clientFoundRows is off.
func (r *SeatRepo) onDuplicateSkip() string {
	if r.dialect == database.SQLite {
		return ` ON CONFLICT(ident) DO NOTHING`
	}
	return ` ON DUPLICATE KEY UPDATE id = id`
}

func scanSeats(rows *sql.Rows) ([]model.SeatAssignment, error) {
	defer rows.Close()
	var result []model.SeatAssignment
	for rows.Next() {
		var s model.SeatAssignment
		if err := rows.Scan(&s.Roll, &s.Branch, &s.Year, &s.Room, &s.Location); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func filterExact(seats []model.SeatAssignment, roll string) []model.SeatAssignment {
	out := seats[:0]
	for _, s := range seats {
		if s.Roll == roll {
			out = append(out, s)
		}
	}
	return out
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSeatNotFound) || errors.Is(err, sql.ErrNoRows)
}
