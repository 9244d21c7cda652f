package entity

import (
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	SortAsc  = "asc"
	SortDesc = "desc"

	DefaultSortKey = "createdAt"
)

// sortColumns is the allow-list mapping from externally exposed sort keys to
// storage column names. ORDER BY columns come only from this map, never from
// raw input. Both camelCase and snake_case spellings are accepted.
var sortColumns = map[string]string{
	"createdAt":    "created_at",
	"created_at":   "created_at",
	"updatedAt":    "updated_at",
	"updated_at":   "updated_at",
	"email":        "email",
	"name":         "name",
	"role":         "role",
	"status":       "status",
	"reviewCount":  "review_count",
	"review_count": "review_count",
}

// SortColumn resolves a sort key through the allow-list. Unknown keys fall
// back to the created_at column.
func SortColumn(key string) string {
	if col, ok := sortColumns[key]; ok {
		return col
	}
	return sortColumns[DefaultSortKey]
}

// ListQuery is the normalized, always-safe-to-execute filter/sort/page input
// for listing users. Empty Search/Status/Role mean "no filter".
type ListQuery struct {
	Search    string
	Status    string
	Role      string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Offset returns the row offset implied by Page and Limit.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Pagination describes the page of results returned next to the data.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ListUsersResult pairs a page of users with its pagination metadata.
type ListUsersResult struct {
	Data       []User
	Pagination Pagination
}

// RawListQuery holds the untrusted query-string values as received.
type RawListQuery struct {
	Search    string
	Status    string
	Role      string
	Page      string
	Limit     string
	SortBy    string
	SortOrder string
}

// NormalizeListQuery turns raw query parameters into a bounded ListQuery.
// It never fails: out-of-range numbers are clamped, unrecognized enum values
// are dropped (no filter), unknown sort keys fall back to createdAt and any
// sort order other than exactly "asc" becomes "desc".
func NormalizeListQuery(raw RawListQuery) ListQuery {
	q := ListQuery{
		Search:    strings.TrimSpace(raw.Search),
		Page:      parsePositiveInt(raw.Page, DefaultPage),
		Limit:     parsePositiveInt(raw.Limit, DefaultLimit),
		SortBy:    DefaultSortKey,
		SortOrder: SortDesc,
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if IsValidStatus(raw.Status) {
		q.Status = raw.Status
	}
	if IsValidRole(raw.Role) {
		q.Role = raw.Role
	}
	if _, ok := sortColumns[raw.SortBy]; ok {
		q.SortBy = raw.SortBy
	}
	if raw.SortOrder == SortAsc {
		q.SortOrder = SortAsc
	}
	return q
}

func parsePositiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}
