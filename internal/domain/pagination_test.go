package domain

import (
	"errors"
	"testing"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginateClampsBeyondLastPage(t *testing.T) {
	t.Parallel()

	page, err := Paginate(seq(12), 5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.CurrentPage != 3 || page.TotalPages != 3 {
		t.Fatalf("expected page 3 of 3, got %d of %d", page.CurrentPage, page.TotalPages)
	}
	if len(page.Items) != 2 || page.Items[0] != 11 || page.Items[1] != 12 {
		t.Fatalf("expected items [11 12], got %v", page.Items)
	}
}

func TestPaginateClampRange(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, 1, 4, 5, 12} {
		for _, requested := range []int{-3, 0, 1, 2, 3, 99} {
			page, err := Paginate(seq(size), 5, requested)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page.CurrentPage < 1 || page.CurrentPage > page.TotalPages {
				t.Fatalf("len=%d requested=%d: current page %d outside [1,%d]",
					size, requested, page.CurrentPage, page.TotalPages)
			}
		}
	}
}

func TestPaginateEmptyList(t *testing.T) {
	t.Parallel()

	page, err := Paginate([]int{}, 5, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.TotalPages != 1 || page.CurrentPage != 1 || len(page.Items) != 0 {
		t.Fatalf("expected empty first page, got %+v", page)
	}
}

func TestPaginateCoversEveryItemOnce(t *testing.T) {
	t.Parallel()

	for _, size := range []int{1, 5, 6, 12, 23} {
		items := seq(size)
		first, err := Paginate(items, 5, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var all []int
		for p := 1; p <= first.TotalPages; p++ {
			page, _ := Paginate(items, 5, p)
			all = append(all, page.Items...)
		}

		if len(all) != size {
			t.Fatalf("len=%d: concatenated pages have %d items", size, len(all))
		}
		for i, v := range all {
			if v != items[i] {
				t.Fatalf("len=%d: item %d is %d, want %d", size, i, v, items[i])
			}
		}
	}
}

func TestPaginateRejectsNonPositivePageSize(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, -1} {
		if _, err := Paginate(seq(3), size, 1); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("page size %d: expected ErrInvalidConfiguration, got %v", size, err)
		}
	}
}

func TestPaginatePageIsNotAppendableIntoSource(t *testing.T) {
	t.Parallel()

	items := seq(10)
	page, _ := Paginate(items, 5, 1)
	_ = append(page.Items, 99)

	if items[5] != 6 {
		t.Fatalf("appending to a page must not overwrite the source list")
	}
}

func TestPageLinks(t *testing.T) {
	t.Parallel()

	render := func(links []PageLink) string {
		out := ""
		for _, l := range links {
			switch {
			case l.Ellipsis:
				out += "…"
			case l.Current:
				out += "[" + string(rune('0'+l.Number)) + "]"
			default:
				out += string(rune('0' + l.Number))
			}
		}
		return out
	}

	tests := []struct {
		current, total int
		want           string
	}{
		{1, 1, "[1]"},
		{1, 2, "[1]2"},
		{1, 3, "[1]23"},
		{1, 9, "[1]2…9"},
		{5, 9, "1…4[5]6…9"},
		{9, 9, "1…8[9]"},
		{3, 9, "12[3]4…9"},
	}

	for _, tt := range tests {
		if got := render(PageLinks(tt.current, tt.total)); got != tt.want {
			t.Fatalf("PageLinks(%d, %d) = %s, want %s", tt.current, tt.total, got, tt.want)
		}
	}
}
