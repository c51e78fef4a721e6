package browser

// DefaultPageSize is the number of products on one list page
const DefaultPageSize = 10

// Paginator slices a collection into fixed-size pages. Page numbers start
// at 1 and never leave [1, TotalPages]. Paginator is not safe for concurrent
// use; the owning pane serializes access.
type Paginator struct {
	page     int
	pageSize int
}

// NewPaginator creates a paginator on page 1. A non-positive size selects
// DefaultPageSize.
func NewPaginator(pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Paginator{page: 1, pageSize: pageSize}
}

func (p *Paginator) Page() int     { return p.page }
func (p *Paginator) PageSize() int { return p.pageSize }

// TotalPages is max(1, ceil(total/pageSize))
func (p *Paginator) TotalPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + p.pageSize - 1) / p.pageSize
}

// Bounds returns the half-open index range of the current page, clamped to
// [0, total]
func (p *Paginator) Bounds(total int) (start, end int) {
	start = (p.page - 1) * p.pageSize
	end = p.page * p.pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return start, end
}

// HasNext reports whether a page follows the current one
func (p *Paginator) HasNext(total int) bool {
	return p.page*p.pageSize < total
}

// HasPrev reports whether a page precedes the current one
func (p *Paginator) HasPrev() bool {
	return p.page > 1
}

// Next advances one page unless the current page is the last one
func (p *Paginator) Next(total int) bool {
	if !p.HasNext(total) {
		return false
	}
	p.page++
	return true
}

// Prev goes back one page unless the current page is the first one
func (p *Paginator) Prev() bool {
	if !p.HasPrev() {
		return false
	}
	p.page--
	return true
}

// CurrentSlice returns the items of the current page. The result is empty,
// never nil-indexed, when the page lies past the end of items.
func CurrentSlice[T any](p *Paginator, items []T) []T {
	start, end := p.Bounds(len(items))
	return items[start:end]
}
