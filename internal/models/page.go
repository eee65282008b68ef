package models

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest selects a zero-based page. Sort names a whitelisted column key.
type PageRequest struct {
	Page int
	Size int
	Sort string
	Desc bool
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is a bounded slice of results plus the total count across all pages.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Number:        req.Page,
		Size:          req.Size,
	}
}

// MapPage converts the content of a page while keeping its paging metadata.
func MapPage[T, U any](page Page[T], fn func(T) U) Page[U] {
	content := make([]U, len(page.Content))
	for i, item := range page.Content {
		content[i] = fn(item)
	}
	return Page[U]{
		Content:       content,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		Number:        page.Number,
		Size:          page.Size,
	}
}
