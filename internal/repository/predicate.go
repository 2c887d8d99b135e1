package repository

import (
	"strings"

	"inkwell/internal/models"

	sq "github.com/Masterminds/squirrel"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user input into a LIKE pattern that matches it as a
// literal, case-folded substring.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// tagsText renders the tags column as searchable text for the dialect.
func tagsText(dialect string) string {
	if dialect == "postgres" {
		return "array_to_string(tags, ',')"
	}
	return "tags"
}

// buildListPredicate returns the WHERE clause shared by the listing count
// and page queries.
func buildListPredicate(dialect string, q models.PostListQuery) sq.And {
	state := q.State
	if state == "" {
		state = models.PostStatePublished
	}
	pred := sq.And{sq.Eq{"state": string(state)}}

	if q.AuthorID != 0 {
		pred = append(pred, sq.Eq{"author_id": q.AuthorID})
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := containsPattern(search)
		pred = append(pred, sq.Or{
			sq.Expr(`LOWER(title) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`LOWER(`+tagsText(dialect)+`) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`CAST(author_id AS TEXT) LIKE ? ESCAPE '\'`, pattern),
		})
	}
	return pred
}
