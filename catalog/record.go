// Package catalog holds the domain types shared by the resolver, the pager and
// the render pipeline.
package catalog

import "strconv"

// Record is a single catalog entry. Values handed out by the record cache are
// shared and must be treated as read-only.
type Record struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Types  []string `json:"types"`
	Stats  []Stat   `json:"stats"`
	Image  string   `json:"image"`
	Height int      `json:"height"`
	Weight int      `json:"weight"`
}

// Stat is a named base attribute, e.g. "hp" or "special-attack".
type Stat struct {
	Name string `json:"name"`
	Base int    `json:"base"`
}

// Key returns the canonical numeric key of the record.
func (r *Record) Key() string {
	return strconv.Itoa(r.ID)
}

// Stat returns the base value of the named stat and whether it exists.
func (r *Record) Stat(name string) (int, bool) {
	for _, s := range r.Stats {
		if s.Name == name {
			return s.Base, true
		}
	}
	return 0, false
}

// HasType reports whether the record is tagged with the given category.
func (r *Record) HasType(name string) bool {
	for _, t := range r.Types {
		if t == name {
			return true
		}
	}
	return false
}

// NoDescription is shown when a species has no English flavor text.
const NoDescription = "No description."

// Species carries the descriptive text fetched lazily for the detail view.
type Species struct {
	ID          int    `json:"id"`
	Genus       string `json:"genus"`
	Description string `json:"description"`
}
