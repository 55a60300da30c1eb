package dto

import "fmt"

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

// QueryParams carries ordering for list reads. SortBy is interpolated into the
// statement, so it must never come from user input.
type QueryParams struct {
	SortBy  string
	SortDir string
}

// OrderBy renders the ORDER BY clause, or an empty string when no sort is set.
func (q QueryParams) OrderBy() string {
	if q.SortBy == "" {
		return ""
	}

	dir := q.SortDir
	if dir != SortDirDesc {
		dir = SortDirAsc
	}

	return fmt.Sprintf("ORDER BY %s %s", q.SortBy, dir)
}
