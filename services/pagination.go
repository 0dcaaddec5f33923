package services

const (
	// DefaultPageSize is used when a list request gives no limit
	DefaultPageSize = 20
	// MaxPageSize caps the limit of a list request
	MaxPageSize = 100
)

// Page is a normalized limit/offset pair
type Page struct {
	Limit  int
	Offset int
}

// NewPage clamps limit to [1, MaxPageSize] and offset to >= 0
func NewPage(limit, offset int) Page {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}
