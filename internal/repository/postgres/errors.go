package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the menu repositories react to
const (
	uniqueViolation = "23505"
	undefinedTable  = "42P01"
)

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// IsPgDuplicateError reports a unique violation, e.g. a seeded site that
// already exists
func IsPgDuplicateError(err error) bool { return hasCode(err, uniqueViolation) }

// IsPgNoRowsError reports a lookup that matched nothing
func IsPgNoRowsError(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

// IsPgUndefinedTableError reports a missing table. A site registered in
// the sites table but never given content tables shows up this way and
// is read as an empty site.
func IsPgUndefinedTableError(err error) bool { return hasCode(err, undefinedTable) }

// IsMissingRow reports either of the ways a single-item lookup can miss
func IsMissingRow(err error) bool {
	return IsPgNoRowsError(err) || IsPgUndefinedTableError(err)
}
