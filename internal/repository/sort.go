package repository

import (
	"errors"
	"strings"
)

// ErrInvalidSort is returned when a client asks to sort by a field that is
// not in the resource's safelist.
var ErrInvalidSort = errors.New("invalid sort value")

// SortSpec maps the sortable JSON fields of a resource to table columns.
// A leading "-" on the requested field sorts descending.
type SortSpec struct {
	Default string            // used when the client sends no sort
	Columns map[string]string // JSON field -> column
}

// OrderBy returns the ORDER BY clause for value.  Only safelisted columns
// are ever interpolated into SQL.  id is appended as a tie breaker so
// results are stable.
func (s SortSpec) OrderBy(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = s.Default
	}
	dir := "ASC"
	if strings.HasPrefix(value, "-") {
		dir = "DESC"
	}
	col, ok := s.Columns[strings.TrimPrefix(value, "-")]
	if !ok {
		return "", ErrInvalidSort
	}
	return " ORDER BY " + col + " " + dir + ", id " + dir, nil
}
