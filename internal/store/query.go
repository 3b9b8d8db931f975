package store

import (
	"strconv"
	"strings"
)

// ListQuery builds the two statements behind a paginated list: a count of
// all matching rows and the page itself, newest first.
type ListQuery struct {
	Table   string
	Columns []string

	// FilterColumn is matched case-insensitively against Filter as a
	// substring. An empty Filter matches every row.
	FilterColumn string
	Filter       string

	Page Page
}

// Count returns the statement counting the matching rows.
func (q ListQuery) Count() (string, []any) {
	where, args := q.where()
	return "SELECT COUNT(*) FROM " + q.Table + where, args
}

// Select returns the statement reading one page of matching rows.
func (q ListQuery) Select() (string, []any) {
	where, args := q.where()
	page := NewPage(q.Page.Number, q.Page.Size)

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.Columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.Table)
	b.WriteString(where)
	b.WriteString(" ORDER BY created_at DESC, id")
	b.WriteString(" LIMIT $" + strconv.Itoa(len(args)+1))
	b.WriteString(" OFFSET $" + strconv.Itoa(len(args)+2))

	return b.String(), append(args, page.Size, page.Offset())
}

func (q ListQuery) where() (string, []any) {
	if q.FilterColumn == "" || q.Filter == "" {
		return "", nil
	}
	return " WHERE " + q.FilterColumn + ` ILIKE $1 ESCAPE '\'`, []any{"%" + escapeLike(q.Filter) + "%"}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in s match literally.
func escapeLike(s string) string { return likeEscaper.Replace(s) }
