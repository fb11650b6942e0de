package catalog

import "testing"

func TestReduce_FilterChangesResetPage(t *testing.T) {
	base := FilterState{Query: "pi", Category: "electric", Generation: "1", Page: 4, PageSize: 24}

	tests := []struct {
		name   string
		action Action
		check  func(t *testing.T, got FilterState)
	}{
		{
			name:   "set query",
			action: Action{Kind: SetQuery, Value: "char"},
			check: func(t *testing.T, got FilterState) {
				if got.Query != "char" {
					t.Errorf("expected query char, got %q", got.Query)
				}
			},
		},
		{
			name:   "set category lowercases",
			action: Action{Kind: SetCategory, Value: " Fire "},
			check: func(t *testing.T, got FilterState) {
				if got.Category != "fire" {
					t.Errorf("expected category fire, got %q", got.Category)
				}
			},
		},
		{
			name:   "set generation",
			action: Action{Kind: SetGeneration, Value: "3"},
			check: func(t *testing.T, got FilterState) {
				if got.Generation != "3" {
					t.Errorf("expected generation 3, got %q", got.Generation)
				}
			},
		},
		{
			name:   "set page size",
			action: Action{Kind: SetPageSize, N: 12},
			check: func(t *testing.T, got FilterState) {
				if got.PageSize != 12 {
					t.Errorf("expected page size 12, got %d", got.PageSize)
				}
			},
		},
		{
			name:   "reset keeps page size",
			action: Action{Kind: Reset},
			check: func(t *testing.T, got FilterState) {
				if got.Query != "" || got.Category != "" || got.Generation != "" {
					t.Errorf("expected cleared filters, got %+v", got)
				}
				if got.PageSize != 24 {
					t.Errorf("expected page size 24, got %d", got.PageSize)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(base, tt.action)
			if got.Page != 1 {
				t.Errorf("expected page reset to 1, got %d", got.Page)
			}
			tt.check(t, got)
		})
	}

	if base.Page != 4 {
		t.Error("Reduce must not mutate its input")
	}
}

func TestReduce_Navigation(t *testing.T) {
	state := FilterState{Category: "water", Page: 2, PageSize: 24}

	next := Reduce(state, Action{Kind: NextPage})
	if next.Page != 3 || next.Category != "water" {
		t.Errorf("NextPage: got %+v", next)
	}

	prev := Reduce(FilterState{Page: 1, PageSize: 24}, Action{Kind: PrevPage})
	if prev.Page != 1 {
		t.Errorf("PrevPage below 1: got %d", prev.Page)
	}

	jump := Reduce(state, Action{Kind: GoToPage, N: -3})
	if jump.Page != 1 {
		t.Errorf("GoToPage negative: got %d", jump.Page)
	}

	clamped := Reduce(FilterState{Page: 9, PageSize: 24}, Action{Kind: ClampPage, N: 3})
	if clamped.Page != 3 {
		t.Errorf("ClampPage: got %d", clamped.Page)
	}

	clampedEmpty := Reduce(FilterState{Page: 9, PageSize: 24}, Action{Kind: ClampPage, N: 0})
	if clampedEmpty.Page != 1 {
		t.Errorf("ClampPage with no pages: got %d", clampedEmpty.Page)
	}
}

func TestReduce_RepairsZeroValue(t *testing.T) {
	got := Reduce(FilterState{}, Action{Kind: NextPage})
	if got.PageSize != DefaultPageSize {
		t.Errorf("expected default page size, got %d", got.PageSize)
	}
	if got.Page != 2 {
		t.Errorf("expected page 2, got %d", got.Page)
	}
}

func TestNormalizedQuery(t *testing.T) {
	s := FilterState{Query: "  ChAr "}
	if got := s.NormalizedQuery(); got != "char" {
		t.Errorf("expected char, got %q", got)
	}
}
