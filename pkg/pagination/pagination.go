package pagination

// DefaultPageSize is the standard page size when one is not configured.
const DefaultPageSize = 10

// PageInfo describes the position of a page within a full result set.
type PageInfo struct {
	CurrentPage      int   `json:"current_page"`
	PageSize         int   `json:"page_size"`
	TotalItems       int64 `json:"total_items"`
	TotalPages       int   `json:"total_pages"`
	HasMultiplePages bool  `json:"has_multiple_pages"`
}

// NormalizePage clamps non-positive page numbers to the first page.
// Pages beyond the last one are left untouched so callers see an empty
// slice rather than silently re-reading the final page.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// NormalizePageSize enforces the configured default page size.
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	return size
}

// Offset converts a page number into a row offset.
func Offset(page, pageSize int) int {
	return (NormalizePage(page) - 1) * NormalizePageSize(pageSize)
}

// Paginate derives page metadata from a total row count.
func Paginate(totalItems int64, pageSize, page int) PageInfo {
	size := NormalizePageSize(pageSize)
	current := NormalizePage(page)

	totalPages := int((totalItems + int64(size) - 1) / int64(size))

	return PageInfo{
		CurrentPage:      current,
		PageSize:         size,
		TotalItems:       totalItems,
		TotalPages:       totalPages,
		HasMultiplePages: totalPages > 1,
	}
}
