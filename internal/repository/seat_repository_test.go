package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/exam-seat-allocation/internal/database"
	"github.com/iliyamo/exam-seat-allocation/internal/model"
	"github.com/iliyamo/exam-seat-allocation/internal/repository"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRepo(t *testing.T, mode model.IdentityMode) *repository.SeatRepo {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, database.SQLite))
	return repository.NewSeatRepo(db, database.SQLite, mode)
}

func seat(roll, branch string, year int, room string) model.SeatAssignment {
	return model.SeatAssignment{Roll: roll, Branch: branch, Year: year, Room: room, Location: "Block A"}
}

func seed(t *testing.T, r *repository.SeatRepo, seats ...model.SeatAssignment) {
	t.Helper()
	res, err := r.InsertIfAbsent(context.Background(), seats)
	require.NoError(t, err)
	require.Equal(t, int64(len(seats)), res.Written)
}

// =============================================================================
// LOOKUP
// =============================================================================

func TestFindOne_ExactRoll(t *testing.T) {
	r := newTestRepo(t, model.IdentityRollBranch)
	ctx := context.Background()
	seed(t, r, seat("CSE023", "CSE", 2, "R1"), seat("CSE024", "CSE", 2, "R2"))

	got, err := r.FindOne(ctx, repository.Query{Roll: "CSE024", Branch: "CSE", Year: 2})
	require.NoError(t, err)
	assert.Equal(t, "R2", got.Room)

	_, err = r.FindOne(ctx, repository.Query{Roll: "CSE02", Branch: "CSE", Year: 2})
	assert.ErrorIs(t, err, repository.ErrSeatNotFound)
}

func TestFindOne_SuffixMatchesPaddedRoll(t *testing.T) {
	r := newTestRepo(t, model.IdentityRollBranch)
	seed(t, r, seat("023", "CSE", 1, "R1"))

	got, err := r.FindOne(context.Background(), repository.Query{Roll: "23", Branch: "CSE", Year: 1, Suffix: true})
	require.NoError(t, err)
	assert.Equal(t, "023", got.Roll)
}

func TestFindOne_BranchAndYearMustMatch(t *testing.T) {
	r := newTestRepo(t, model.IdentityRollBranch)
	ctx := context.Background()
	seed(t, r, seat("7", "CSE", 1, "R1"))

	_, err := r.FindOne(ctx, repository.Query{Roll: "7", Branch: "ECE", Year: 1, Suffix: true})
	assert.True(t, repository.IsNotFound(err))

	_, err = r.FindOne(ctx, repository.Query{Roll: "7", Branch: "CSE", Year: 2, Suffix: true})
	assert.True(t, repository.IsNotFound(err))
}

func TestFindOne_SuffixPrefersExactThenPadded(t *testing.T) {
	// GIVEN: three stored rolls that all end in "23"
	// WHEN: looking up "23"
	// THEN: the exact roll wins, and without it the zero-padded one does
	r := newTestRepo(t, model.IdentityRollBranch)
	ctx := context.Background()
	seed(t, r, seat("123", "CSE", 1, "R-123"), seat("023", "CSE", 1, "R-023"), seat("23", "CSE", 1, "R-23"))

	got, err := r.FindOne(ctx, repository.Query{Roll: "23", Branch: "CSE", Year: 1, Suffix: true})
	require.NoError(t, err)
	assert.Equal(t, "R-23", got.Room)

	other := newTestRepo(t, model.IdentityRollBranch)
	seed(t, other, seat("123", "CSE", 1, "R-123"), seat("023", "CSE", 1, "R-023"))
	got, err = other.FindOne(ctx, repository.Query{Roll: "23", Branch: "CSE", Year: 1, Suffix: true})
	require.NoError(t, err)
	assert.Equal(t, "R-023", got.Room)
}

// =============================================================================
// WRITES
// =============================================================================

func TestInsertIfAbsent_NeverOverwrites(t *testing.T) {
	r := newTestRepo(t, model.IdentityRollBranch)
	ctx := context.Background()
	seed(t, r, seat("5", "CSE", 1, "R1"))

	res, err := r.InsertIfAbsent(ctx, []model.SeatAssignment{seat("5", "CSE", 1, "R9"), seat("6", "CSE", 1, "R9")})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempted)
	assert.Equal(t, int64(1), res.Written, "only the absent identity is written")

	got, err := r.FindOne(ctx, repository.Query{Roll: "5", Branch: "CSE", Year: 1})
	require.NoError(t, err)
	assert.Equal(t, "R1", got.Room, "existing row keeps its room")
}

func TestInsertIfAbsent_SpansChunks(t *testing.T) {
	r := newTestRepo(t, model.IdentityRollBranch)
	ctx := context.Background()
	var seats []model.SeatAssignment
	for i := 1; i <= 450; i++ {
		seats = append(seats, seat(fmt.Sprint(i), "ECE", 3, "Hall"))
	}
	seed(t, r, seats...)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(450), n)

	keys := make([]model.SeatKey, 0, len(seats))
	for _, s := range seats {
		keys = append(keys, s.Key(r.Mode()))
	}
	found, err := r.FindByKeys(ctx, keys)
	require.NoError(t, err)
	assert.Len(t, found, 450)
}

func TestFindByKeys_RespectsIdentityMode(t *testing.T) {
	ctx := context.Background()

	byBranch := newTestRepo(t, model.IdentityRollBranch)
	seed(t, byBranch, seat("1", "CSE", 1, "R1"))
	found, err := byBranch.FindByKeys(ctx, []model.SeatKey{{Roll: "1", Branch: "CSE", Year: 4}})
	require.NoError(t, err)
	assert.Len(t, found, 1, "year is not part of the identity")

	byYear := newTestRepo(t, model.IdentityRollBranchYear)
	seed(t, byYear, seat("1", "CSE", 1, "R1"), seat("1", "CSE", 2, "R2"))
	found, err = byYear.FindByKeys(ctx, []model.SeatKey{{Roll: "1", Branch: "CSE", Year: 2}})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "R2", found[0].Room)
}

func TestDeleteAll(t *testing.T) {
	r := newTestRepo(t, model.IdentityRollBranch)
	ctx := context.Background()
	seed(t, r, seat("1", "CSE", 1, "R1"), seat("2", "CSE", 1, "R1"))

	n, err := r.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = r.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// =============================================================================
// IDENTITY MODE
// =============================================================================

func TestEnsureIdentity_RecordsModeOnEmptyStore(t *testing.T) {
	r := newTestRepo(t, model.IdentityRollBranchYear)
	ctx := context.Background()

	require.NoError(t, r.EnsureIdentity(ctx, false))
	stored, err := r.StoredIdentityMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.IdentityRollBranchYear, stored)
}

func TestEnsureIdentity_RefusesSilentModeChange(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db, database.SQLite))

	old := repository.NewSeatRepo(db, database.SQLite, model.IdentityRollBranch)
	require.NoError(t, old.EnsureIdentity(ctx, false))
	seed(t, old, seat("1", "CSE", 1, "R1"), seat("2", "CSE", 2, "R2"))

	next := repository.NewSeatRepo(db, database.SQLite, model.IdentityRollBranchYear)
	err = next.EnsureIdentity(ctx, false)
	assert.ErrorIs(t, err, repository.ErrIdentityMismatch)

	require.NoError(t, next.EnsureIdentity(ctx, true))
	stored, err := next.StoredIdentityMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.IdentityRollBranchYear, stored)

	found, err := next.FindByKeys(ctx, []model.SeatKey{{Roll: "2", Branch: "CSE", Year: 2}})
	require.NoError(t, err)
	require.Len(t, found, 1, "rows are re-keyed under the new identity")

	// a year-distinct row may now coexist with the same roll and branch
	res, err := next.InsertIfAbsent(ctx, []model.SeatAssignment{seat("1", "CSE", 3, "R3")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Written)
}

func TestEnsureIdentity_MigrationRefusesCollisions(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db, database.SQLite))

	wide := repository.NewSeatRepo(db, database.SQLite, model.IdentityRollBranchYear)
	require.NoError(t, wide.EnsureIdentity(ctx, false))
	seed(t, wide, seat("1", "CSE", 1, "R1"), seat("1", "CSE", 2, "R2"))

	narrow := repository.NewSeatRepo(db, database.SQLite, model.IdentityRollBranch)
	err = narrow.EnsureIdentity(ctx, true)
	assert.ErrorIs(t, err, repository.ErrIdentityMismatch)

	stored, err := narrow.StoredIdentityMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.IdentityRollBranchYear, stored, "failed migration leaves the recorded mode alone")
}
