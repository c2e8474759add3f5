package console

// Pagination 列表分页状态
type Pagination struct {
	Page     int
	PageSize int
}

// NewPagination 创建分页状态，页码从1开始
func NewPagination(pageSize int) Pagination {
	if pageSize <= 0 {
		pageSize = 20
	}
	return Pagination{Page: 1, PageSize: pageSize}
}

// SetPageSize 调整每页大小并回到第一页
func (p *Pagination) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	p.PageSize = size
	p.Page = 1
}

// SetPage 跳转到指定页，页码不影响每页大小
func (p *Pagination) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	p.Page = page
}

// Next 下一页，total为当前总条数
func (p *Pagination) Next(total int64) {
	if p.Page < p.TotalPages(total) {
		p.Page++
	}
}

// Prev 上一页
func (p *Pagination) Prev() {
	if p.Page > 1 {
		p.Page--
	}
}

// Skip 当前页的偏移量
func (p *Pagination) Skip() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages 总页数,至少为1
func (p *Pagination) TotalPages(total int64) int {
	if total <= 0 {
		return 1
	}
	pages := int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	if pages < 1 {
		pages = 1
	}
	return pages
}
