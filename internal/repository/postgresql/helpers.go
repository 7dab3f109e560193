package postgresql

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const dateLayout = "2006-01-02"

// dateArg renders the calendar date of t for a ::date parameter, so the
// session time zone never shifts it.
func dateArg(t time.Time) string {
	return t.Format(dateLayout)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
