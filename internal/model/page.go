package model

import "fmt"

// Page is a window over a remote ordered collection.
// Number is zero-based and len(Content) never exceeds Size.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Last          bool  `json:"last"`
}

// NewPage builds a page and derives TotalPages and Last from the total
// element count
func NewPage[T any](content []T, number, size int, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}

	return &Page[T]{
		Content:       content,
		Number:        number,
		Size:          size,
		TotalPages:    totalPages,
		TotalElements: total,
		Last:          number >= totalPages-1,
	}
}

// Validate checks the page invariants
func (p *Page[T]) Validate() error {
	if p.Number < 0 {
		return fmt.Errorf("negative page index %d", p.Number)
	}
	if p.Size > 0 && len(p.Content) > p.Size {
		return fmt.Errorf("page holds %d items but size is %d", len(p.Content), p.Size)
	}
	return nil
}
