package dto

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"elc/shared/constant"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

// sortColumn accepts a bare or table qualified column name. Anything else
// never reaches the ORDER BY clause.
var sortColumn = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)?$`)

type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty"`
	Limit   int    `json:"limit"    validate:"omitempty"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

// FromRequest reads page, limit, sort_by and sort_dir from the query string.
// Malformed values are ignored and limit is capped at MaxValueLimit. With
// defaultRequest set, a missing page or limit falls back to the defaults.
func (q *QueryParams) FromRequest(r *http.Request, defaultRequest bool) {
	queryParams := r.URL.Query()

	if page, err := strconv.Atoi(queryParams.Get(constant.RequestParamPage)); err == nil && page > 0 {
		q.Page = page
	}

	if limit, err := strconv.Atoi(queryParams.Get(constant.RequestParamLimit)); err == nil && limit > 0 {
		q.Limit = min(limit, constant.MaxValueLimit)
	}

	if sortBy := strings.ToLower(queryParams.Get(constant.RequestParamSortBy)); sortColumn.MatchString(sortBy) {
		q.SortBy = sortBy
	}

	if sortDir := strings.ToUpper(queryParams.Get(constant.RequestParamSortDir)); sortDir == SortDirAsc || sortDir == SortDirDesc {
		q.SortDir = sortDir
	}

	if defaultRequest {
		if q.Page == 0 {
			q.Page = constant.DefaultValuePage
		}

		if q.Limit == 0 {
			q.Limit = constant.DefaultValueLimit
		}
	}
}

// Ordering renders the ORDER BY clause, or an empty string when no valid sort
// column was requested.
func (q QueryParams) Ordering() string {
	if !sortColumn.MatchString(q.SortBy) {
		return ""
	}

	dir := q.SortDir
	if dir != SortDirAsc && dir != SortDirDesc {
		dir = constant.DefaultValueSortDir
	}

	return fmt.Sprintf("ORDER BY %s %s", q.SortBy, dir)
}
