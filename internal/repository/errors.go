// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// rental service and the handlers to distinguish between different
// failure scenarios.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when a conditional write matched no row because
// the row is not in the expected state, such as decrementing the stock of
// a movie that has none left or returning a rental twice.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when a unique key (users.email) already exists.
var ErrDuplicate = errors.New("duplicate")

// Not-found sentinels, one per table.
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrGenreNotFound    = errors.New("genre not found")
	ErrMovieNotFound    = errors.New("movie not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrRentalNotFound   = errors.New("rental not found")
)

// isDuplicateKey reports unique-key violations for both supported drivers.
func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
