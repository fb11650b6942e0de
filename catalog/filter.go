package catalog

import "strings"

// DefaultPageSize is the number of cards shown per page.
const DefaultPageSize = 24

// FilterState is the snapshot the resolver and pager work from. It is a value
// type; transitions go through Reduce.
type FilterState struct {
	Query      string `json:"query"`
	Category   string `json:"category"`
	Generation string `json:"generation"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// NewFilterState returns the initial state: no filters, first page.
func NewFilterState(pageSize int) FilterState {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return FilterState{Page: 1, PageSize: pageSize}
}

// NormalizedQuery is the trimmed, lowercased query used for matching.
func (s FilterState) NormalizedQuery() string {
	return strings.ToLower(strings.TrimSpace(s.Query))
}

// ActionKind enumerates the supported state transitions.
type ActionKind int

const (
	SetQuery ActionKind = iota
	SetCategory
	SetGeneration
	SetPageSize
	GoToPage
	NextPage
	PrevPage
	ClampPage
	Reset
)

// Action is an input to Reduce. Value carries strings, N carries integers.
type Action struct {
	Kind  ActionKind
	Value string
	N     int
}

// Reduce applies action to state and returns the new state. Every filter change
// resets the page to 1; page navigation keeps the filters untouched.
func Reduce(state FilterState, action Action) FilterState {
	next := state
	if next.PageSize <= 0 {
		next.PageSize = DefaultPageSize
	}
	if next.Page < 1 {
		next.Page = 1
	}

	switch action.Kind {
	case SetQuery:
		next.Query = action.Value
		next.Page = 1
	case SetCategory:
		next.Category = strings.ToLower(strings.TrimSpace(action.Value))
		next.Page = 1
	case SetGeneration:
		next.Generation = strings.TrimSpace(action.Value)
		next.Page = 1
	case SetPageSize:
		if action.N > 0 {
			next.PageSize = action.N
		}
		next.Page = 1
	case GoToPage:
		next.Page = action.N
		if next.Page < 1 {
			next.Page = 1
		}
	case NextPage:
		next.Page++
	case PrevPage:
		if next.Page > 1 {
			next.Page--
		}
	case ClampPage:
		maxPage := action.N
		if maxPage < 1 {
			maxPage = 1
		}
		if next.Page > maxPage {
			next.Page = maxPage
		}
	case Reset:
		next = NewFilterState(next.PageSize)
	}

	return next
}
