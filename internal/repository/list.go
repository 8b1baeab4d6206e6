package repository

// ListParams pages through a collection, newest first.
type ListParams struct {
	Page     int
	PageSize int
}

func (p ListParams) normalize() (offset int, limit int) {
	page := max(p.Page, 1)
	pageSize := p.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	pageSize = min(pageSize, 100)
	return (page - 1) * pageSize, pageSize
}

func slugPrefixPattern(base string) string {
	return base + "-%"
}
