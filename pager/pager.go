// Package pager slices a resolved id list into pages.
package pager

// Page is one slice of a resolved id list plus its bookkeeping.
type Page struct {
	IDs      []int `json:"ids"`
	Total    int   `json:"total"`
	MaxPage  int   `json:"max_page"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// Empty reports whether the page has no ids.
func (p Page) Empty() bool { return len(p.IDs) == 0 }

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.Page < p.MaxPage }

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.Page > 1 }

// MaxPage is max(1, ceil(total/pageSize)). A non-positive pageSize counts as 1.
func MaxPage(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = 1
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Clamp moves page into [1, maxPage].
func Clamp(page, maxPage int) int {
	if maxPage < 1 {
		maxPage = 1
	}
	if page < 1 {
		return 1
	}
	if page > maxPage {
		return maxPage
	}
	return page
}

// Paginate returns ids[(page-1)*pageSize : page*pageSize], clipped to the
// available length. Pages outside [1, MaxPage] are empty; callers that want
// the nearest valid page clamp first. The returned IDs share no memory with ids.
func Paginate(ids []int, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = 1
	}
	total := len(ids)
	p := Page{
		IDs:      []int{},
		Total:    total,
		MaxPage:  MaxPage(total, pageSize),
		Page:     page,
		PageSize: pageSize,
	}
	if page < 1 {
		return p
	}

	start := (page - 1) * pageSize
	if start >= total {
		return p
	}
	end := min(start+pageSize, total)
	p.IDs = append(p.IDs, ids[start:end]...)
	return p
}
