package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Mon describes one fake catalog entry served by FakeUpstream.
type Mon struct {
	ID          int
	Name        string
	Types       []string
	Description string
}

// Dataset is the content served by FakeUpstream.
type Dataset struct {
	// Pokemon holds every record addressable by id or name.
	Pokemon map[int]Mon
	// Members overrides the member list of a category. When a category has no
	// entry the list is derived from Pokemon.
	Members map[string][]int
	// Categories lists every category name returned by the type listing.
	Categories []string
}

// NewDataset fills ids 1..universe with generated entries named "mon-<id>"
// and then applies named on top.
func NewDataset(universe int, named ...Mon) Dataset {
	ds := Dataset{
		Pokemon: make(map[int]Mon, universe),
		Members: make(map[string][]int),
	}
	for id := 1; id <= universe; id++ {
		ds.Pokemon[id] = Mon{ID: id, Name: fmt.Sprintf("mon-%d", id), Types: []string{"normal"}}
	}
	for _, m := range named {
		ds.Pokemon[m.ID] = m
	}
	ds.Categories = []string{"normal", "fire", "water", "grass", "electric", "unknown", "shadow"}
	return ds
}

// Kanto returns the dataset used across the package tests: 151 generated
// entries, the real names of the starters and a few others, and a fire member
// list that includes ids outside generation 1 and alternate forms.
func Kanto() Dataset {
	ds := NewDataset(151,
		Mon{ID: 1, Name: "bulbasaur", Types: []string{"grass", "poison"}, Description: "A strange seed was\nplanted on its\fback at birth."},
		Mon{ID: 4, Name: "charmander", Types: []string{"fire"}},
		Mon{ID: 5, Name: "charmeleon", Types: []string{"fire"}},
		Mon{ID: 6, Name: "charizard", Types: []string{"fire", "flying"}},
		Mon{ID: 7, Name: "squirtle", Types: []string{"water"}},
		Mon{ID: 25, Name: "pikachu", Types: []string{"electric"}, Description: "When several of these POKéMON gather, their electricity could build and cause lightning storms."},
		Mon{ID: 37, Name: "vulpix", Types: []string{"fire"}},
		Mon{ID: 38, Name: "ninetales", Types: []string{"fire"}},
		Mon{ID: 58, Name: "growlithe", Types: []string{"fire"}},
		Mon{ID: 59, Name: "arcanine", Types: []string{"fire"}},
		Mon{ID: 77, Name: "ponyta", Types: []string{"fire"}},
		Mon{ID: 78, Name: "rapidash", Types: []string{"fire"}},
		Mon{ID: 126, Name: "magmar", Types: []string{"fire"}},
		Mon{ID: 155, Name: "cyndaquil", Types: []string{"fire"}},
		Mon{ID: 10034, Name: "charizard-mega-x", Types: []string{"fire", "dragon"}},
	)
	ds.Members["fire"] = []int{4, 5, 6, 37, 38, 58, 59, 77, 78, 126, 155, 10034}
	return ds
}

// FakeUpstream is an httptest server speaking the subset of the PokeAPI v2
// wire format the client consumes. It counts requests per path.
type FakeUpstream struct {
	Server *httptest.Server

	mu       sync.Mutex
	data     Dataset
	hits     map[string]int
	failures map[string]int
	block    chan struct{}
}

// NewFakeUpstream starts a server for ds and registers its shutdown with t.
func NewFakeUpstream(t testing.TB, ds Dataset) *FakeUpstream {
	t.Helper()

	f := &FakeUpstream{
		data:     ds,
		hits:     make(map[string]int),
		failures: make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL to hand to upstream.New.
func (f *FakeUpstream) URL() string { return f.Server.URL }

// Fail makes every request to path answer with status.
func (f *FakeUpstream) Fail(path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[path] = status
}

// Block holds every request until the returned release func is called.
func (f *FakeUpstream) Block() (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.block = ch
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.block = nil
			f.mu.Unlock()
			close(ch)
		})
	}
}

// Hits returns how many requests were made to path.
func (f *FakeUpstream) Hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

// Total returns the number of requests served so far.
func (f *FakeUpstream) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.hits {
		n += v
	}
	return n
}

func (f *FakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	f.mu.Lock()
	f.hits[path]++
	status, failing := f.failures[path]
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-r.Context().Done():
			return
		}
	}

	if failing {
		http.Error(w, http.StatusText(status), status)
		return
	}

	switch {
	case strings.HasPrefix(path, "/pokemon-species/"):
		f.serveSpecies(w, strings.TrimPrefix(path, "/pokemon-species/"))
	case strings.HasPrefix(path, "/pokemon/"):
		f.servePokemon(w, strings.TrimPrefix(path, "/pokemon/"))
	case path == "/type" || path == "/type/":
		f.serveTypeList(w)
	case strings.HasPrefix(path, "/type/"):
		f.serveType(w, strings.TrimPrefix(path, "/type/"))
	default:
		http.NotFound(w, nil)
	}
}

func (f *FakeUpstream) lookup(idOrName string) (Mon, bool) {
	key := strings.ToLower(strings.Trim(idOrName, "/"))
	if id, err := strconv.Atoi(key); err == nil {
		m, ok := f.data.Pokemon[id]
		return m, ok
	}
	for _, m := range f.data.Pokemon {
		if m.Name == key {
			return m, true
		}
	}
	return Mon{}, false
}

func (f *FakeUpstream) resourceURL(kind string, id int) string {
	return fmt.Sprintf("%s/%s/%d/", f.Server.URL, kind, id)
}

func (f *FakeUpstream) servePokemon(w http.ResponseWriter, idOrName string) {
	m, ok := f.lookup(idOrName)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	types := make([]map[string]any, 0, len(m.Types))
	for i, t := range m.Types {
		types = append(types, map[string]any{
			"slot": i + 1,
			"type": map[string]any{"name": t, "url": f.Server.URL + "/type/" + t + "/"},
		})
	}

	stats := make([]map[string]any, 0, 6)
	for i, name := range []string{"hp", "attack", "defense", "special-attack", "special-defense", "speed"} {
		stats = append(stats, map[string]any{
			"base_stat": 40 + (m.ID+i*7)%60,
			"effort":    0,
			"stat":      map[string]any{"name": name, "url": ""},
		})
	}

	writeJSON(w, map[string]any{
		"id":     m.ID,
		"name":   m.Name,
		"height": m.ID%20 + 1,
		"weight": m.ID*10 + 5,
		"types":  types,
		"stats":  stats,
		"sprites": map[string]any{
			"front_default": fmt.Sprintf("https://img.example/sprites/%d.png", m.ID),
			"other": map[string]any{
				"official-artwork": map[string]any{
					"front_default": fmt.Sprintf("https://img.example/artwork/%d.png", m.ID),
				},
			},
		},
	})
}

func (f *FakeUpstream) members(name string) []int {
	if ids, ok := f.data.Members[name]; ok {
		return ids
	}
	var ids []int
	for id, m := range f.data.Pokemon {
		for _, t := range m.Types {
			if t == name {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Ints(ids)
	return ids
}

func (f *FakeUpstream) serveType(w http.ResponseWriter, name string) {
	name = strings.ToLower(strings.Trim(name, "/"))
	known := false
	for _, c := range f.data.Categories {
		if c == name {
			known = true
			break
		}
	}
	if !known {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	entries := make([]map[string]any, 0)
	for _, id := range f.members(name) {
		entries = append(entries, map[string]any{
			"slot": 1,
			"pokemon": map[string]any{
				"name": f.data.Pokemon[id].Name,
				"url":  f.resourceURL("pokemon", id),
			},
		})
	}

	writeJSON(w, map[string]any{"name": name, "pokemon": entries})
}

func (f *FakeUpstream) serveTypeList(w http.ResponseWriter) {
	results := make([]map[string]any, 0, len(f.data.Categories))
	for _, c := range f.data.Categories {
		results = append(results, map[string]any{"name": c, "url": f.Server.URL + "/type/" + c + "/"})
	}
	writeJSON(w, map[string]any{"count": len(results), "results": results})
}

func (f *FakeUpstream) serveSpecies(w http.ResponseWriter, idStr string) {
	m, ok := f.lookup(idStr)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	entries := []map[string]any{
		{"flavor_text": "Texte en français.", "language": map[string]any{"name": "fr"}},
	}
	if m.Description != "" {
		entries = append(entries, map[string]any{
			"flavor_text": m.Description,
			"language":    map[string]any{"name": "en"},
		})
	}

	writeJSON(w, map[string]any{
		"id":                  m.ID,
		"flavor_text_entries": entries,
		"genera": []map[string]any{
			{"genus": "Test Pokémon", "language": map[string]any{"name": "en"}},
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
