package domain

import "fmt"

// Page is one window of a paginated list.
type Page[T any] struct {
	Items       []T
	CurrentPage int
	TotalPages  int
}

// Paginate returns the requested page of items. The page number is clamped
// into [1, TotalPages] and TotalPages is at least 1, so an empty list yields
// an empty first page.
func Paginate[T any](items []T, pageSize, requestedPage int) (Page[T], error) {
	if pageSize <= 0 {
		return Page[T]{}, fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidConfiguration, pageSize)
	}

	totalPages := (len(items) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	current := requestedPage
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	start := (current - 1) * pageSize
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	return Page[T]{
		Items:       items[start:end:end],
		CurrentPage: current,
		TotalPages:  totalPages,
	}, nil
}

// PageLink is one control of a pager: a numbered page or an ellipsis.
type PageLink struct {
	Number   int
	Current  bool
	Ellipsis bool
}

// PageLinks lays out a compact pager: the first and last pages, the current
// page and its direct neighbours are numbered; a page two steps away from the
// current one collapses into an ellipsis.
func PageLinks(current, total int) []PageLink {
	links := make([]PageLink, 0, 7)
	for n := 1; n <= total; n++ {
		dist := n - current
		if dist < 0 {
			dist = -dist
		}

		switch {
		case n == 1 || n == total || dist <= 1:
			links = append(links, PageLink{Number: n, Current: n == current})
		case dist == 2:
			links = append(links, PageLink{Ellipsis: true})
		}
	}
	return links
}
