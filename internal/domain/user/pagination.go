package user

// Pagination describes one page of a user listing.
type Pagination struct {
	Total      int64 // matching rows across all pages
	Page       int64 // 1-based
	Limit      int64
	TotalPages int64
}

// NewPagination derives TotalPages from total and limit. A non-positive limit
// yields zero pages.
func NewPagination(total, page, limit int64) *Pagination {
	var totalPages int64
	if limit > 0 {
		totalPages = total / limit
		if total%limit != 0 {
			totalPages++
		}
	}

	return &Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
