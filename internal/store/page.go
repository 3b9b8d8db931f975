package store

// Pagination bounds. The list query schemas carry the same maximums as
// `maximum` tags.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPage         = 1_000_000
	MaxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NewPage applies the defaults to unset (zero or negative) values and clamps
// both values to their maximums, which keeps Offset within int range.
func NewPage(number, size int) Page {
	if number < 1 {
		number = DefaultPage
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return Page{Number: min(number, MaxPage), Size: min(size, MaxPageSize)}
}

// Offset is the number of records before the page. A Page built without
// NewPage is clamped first.
func (p Page) Offset() int {
	p = NewPage(p.Number, p.Size)
	return (p.Number - 1) * p.Size
}
