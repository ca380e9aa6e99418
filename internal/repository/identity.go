package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/exam-seat-allocation/internal/database"
	"github.com/iliyamo/exam-seat-allocation/internal/model"
)

const identityMetaKey = "identity_mode"

// StoredIdentityMode returns the identity mode recorded in seat_meta, or ""
// when none has been recorded yet.
func (r *SeatRepo) StoredIdentityMode(ctx context.Context) (model.IdentityMode, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM seat_meta WHERE name = ?`, identityMetaKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return model.IdentityMode(v), nil
}

// EnsureIdentity makes the stored rows agree with the repository's identity
// mode before the service starts serving.
//
// An empty table simply records the configured mode.  A table written under
// another mode (or under no recorded mode) is only re-keyed when migrate is
// true and no two rows collide under the configured identity; otherwise
// ErrIdentityMismatch is returned and nothing is changed.
func (r *SeatRepo) EnsureIdentity(ctx context.Context, migrate bool) error {
	stored, err := r.StoredIdentityMode(ctx)
	if err != nil {
		return fmt.Errorf("read identity mode: %w", err)
	}
	if stored == r.mode {
		return nil
	}
	n, err := r.Count(ctx)
	if err != nil {
		return fmt.Errorf("count seats: %w", err)
	}
	if n > 0 {
		if !migrate {
			return fmt.Errorf("%w: store has %d rows keyed by %q, configured %q (set IDENTITY_MIGRATE=true to re-key)",
				ErrIdentityMismatch, n, displayMode(stored), r.mode)
		}
		if err := r.rekey(ctx); err != nil {
			return err
		}
	}
	return r.recordMode(ctx)
}

// rekey recomputes every ident under the configured mode inside one
// transaction, refusing when two rows would share an identity.
func (r *SeatRepo) rekey(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT id, roll, branch, year FROM seat_assignments`)
	if err != nil {
		return err
	}
	type row struct {
		id    int64
		ident string
	}
	var all []row
	seen := make(map[string]int64)
	for rows.Next() {
		var (
			id int64
			s  model.SeatAssignment
		)
		if err := rows.Scan(&id, &s.Roll, &s.Branch, &s.Year); err != nil {
			rows.Close()
			return err
		}
		ident := s.Key(r.mode).Ident(r.mode)
		if other, dup := seen[ident]; dup {
			rows.Close()
			return fmt.Errorf("%w: rows %d and %d share identity %q under %q",
				ErrIdentityMismatch, other, id, ident, r.mode)
		}
		seen[ident] = id
		all = append(all, row{id: id, ident: ident})
	}
	if err := rows.Close(); err != nil {
		return err
	}

	// park every ident on a unique placeholder first so the new values can
	// never collide with a not-yet-updated old one
	park := `UPDATE seat_assignments SET ident = CONCAT('~', id)`
	if r.dialect == database.SQLite {
		park = `UPDATE seat_assignments SET ident = '~' || id`
	}
	if _, err := tx.ExecContext(ctx, park); err != nil {
		return err
	}
	for _, rw := range all {
		if _, err := tx.ExecContext(ctx, `UPDATE seat_assignments SET ident = ? WHERE id = ?`, rw.ident, rw.id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SeatRepo) recordMode(ctx context.Context) error {
	var q string
	if r.dialect == database.SQLite {
		q = `INSERT INTO seat_meta (name, value) VALUES (?, ?)
		     ON CONFLICT(name) DO UPDATE SET value = excluded.value`
	} else {
		q = `INSERT INTO seat_meta (name, value) VALUES (?, ?)
		     ON DUPLICATE KEY UPDATE value = VALUES(value)`
	}
	_, err := r.db.ExecContext(ctx, q, identityMetaKey, string(r.mode))
	return err
}

func displayMode(m model.IdentityMode) string {
	if m == "" {
		return "unrecorded"
	}
	return string(m)
}
