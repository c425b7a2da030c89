package history

// DefaultPageSize and MaxPageSize bound history listing pages.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginatedResult represents a paginated response with data and metadata
type PaginatedResult struct {
	Data       []Item `json:"data"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Total      int    `json:"totalItems"`
	TotalPages int    `json:"totalPages"`
}

// Paginate slices items (already newest first) into one page. Pages are
// 1-based; out-of-range pages yield empty data with correct totals.
func Paginate(items []Item, page, size int) PaginatedResult {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	total := len(items)
	res := PaginatedResult{
		Data:       []Item{},
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
	}
	start := (page - 1) * size
	if start >= total {
		return res
	}
	end := start + size
	if end > total {
		end = total
	}
	res.Data = items[start:end]
	return res
}
