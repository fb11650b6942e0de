package catalog

import "sort"

// DefaultUniverse is the size of the canonical national numbering. Category
// member lists also contain alternate forms numbered above it.
const DefaultUniverse = 1025

// Range is an inclusive interval of record ids.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether id lies inside the range.
func (r Range) Contains(id int) bool {
	return id >= r.Start && id <= r.End
}

// Len is the number of ids covered by the range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// IDs expands the range into an ascending slice.
func (r Range) IDs() []int {
	out := make([]int, 0, r.Len())
	for id := r.Start; id <= r.End; id++ {
		out = append(out, id)
	}
	return out
}

// Generations maps a generation token to its id interval.
var Generations = map[string]Range{
	"1": {Start: 1, End: 151},
	"2": {Start: 152, End: 251},
	"3": {Start: 252, End: 386},
	"4": {Start: 387, End: 493},
	"5": {Start: 494, End: 649},
	"6": {Start: 650, End: 721},
	"7": {Start: 722, End: 809},
	"8": {Start: 810, End: 905},
	"9": {Start: 906, End: 1025},
}

// GenerationRange returns the interval for token. Unknown or empty tokens
// report false and callers fall back to the full universe.
func GenerationRange(token string) (Range, bool) {
	r, ok := Generations[token]
	return r, ok
}

// GenerationTokens returns the configured tokens in ascending range order.
func GenerationTokens() []string {
	tokens := make([]string, 0, len(Generations))
	for k := range Generations {
		tokens = append(tokens, k)
	}
	sort.Slice(tokens, func(i, j int) bool {
		return Generations[tokens[i]].Start < Generations[tokens[j]].Start
	})
	return tokens
}

// Universe returns the full id range [1, n].
func Universe(n int) Range {
	if n <= 0 {
		n = DefaultUniverse
	}
	return Range{Start: 1, End: n}
}
