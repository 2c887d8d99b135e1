package models

import (
	"fmt"
	"strings"
)

// SortKey is a column a post listing may be ordered by.
type SortKey string

const (
	SortByCreatedAt   SortKey = "created_at"
	SortByUpdatedAt   SortKey = "updated_at"
	SortByReadCount   SortKey = "read_count"
	SortByReadingTime SortKey = "reading_time"
	SortByTitle       SortKey = "title"
)

var sortKeys = map[SortKey]struct{}{
	SortByCreatedAt:   {},
	SortByUpdatedAt:   {},
	SortByReadCount:   {},
	SortByReadingTime: {},
	SortByTitle:       {},
}

// SortSpec is a validated ordering for post listings.
type SortSpec struct {
	Key  SortKey
	Desc bool
}

// DefaultSort lists newest posts first.
var DefaultSort = SortSpec{Key: SortByCreatedAt, Desc: true}

// ParseSortSpec accepts "key", "-key" (descending) or "key:asc|desc".
// An empty string yields DefaultSort.
func ParseSortSpec(raw string) (SortSpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSort, nil
	}

	spec := SortSpec{}
	key := raw
	switch {
	case strings.HasPrefix(raw, "-"):
		spec.Desc = true
		key = raw[1:]
	case strings.Contains(raw, ":"):
		parts := strings.SplitN(raw, ":", 2)
		key = parts[0]
		switch strings.ToLower(parts[1]) {
		case "asc":
		case "desc":
			spec.Desc = true
		default:
			return SortSpec{}, NewInvalidArgumentError("sort direction must be asc or desc")
		}
	case strings.HasPrefix(raw, "+"):
		key = raw[1:]
	}

	spec.Key = SortKey(strings.ToLower(key))
	if _, ok := sortKeys[spec.Key]; !ok {
		return SortSpec{}, NewInvalidArgumentError(
			"sort must be one of: created_at, updated_at, read_count, reading_time, title")
	}
	return spec, nil
}

// OrderClause renders the spec as a SQL ORDER BY fragment.
func (s SortSpec) OrderClause() string {
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s", s.Key, dir)
}

// String renders the spec in its canonical "-key" / "key" form.
func (s SortSpec) String() string {
	if s.Desc {
		return "-" + string(s.Key)
	}
	return string(s.Key)
}

// PostListQuery is the store-level query behind the blog listing.
type PostListQuery struct {
	State    PostState
	AuthorID uint // 0 means any author
	Search   string
	Sort     SortSpec
	Page     int
	Limit    int
}

// Offset returns the number of rows skipped for the page.
func (q PostListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts       []*Post `json:"blogs"`
	TotalPages  int     `json:"totalPages"`
	CurrentPage int     `json:"currentPage"`
	TotalCount  int64   `json:"-"`
}

// TotalPagesFor returns ceil(count/limit).
func TotalPagesFor(count int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((count + int64(limit) - 1) / int64(limit))
}
