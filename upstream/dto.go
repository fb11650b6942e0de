package upstream

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-dex-catalog/catalog"
)

type namedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type pokemonResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Height int    `json:"height"`
	Weight int    `json:"weight"`
	Types  []struct {
		Slot int           `json:"slot"`
		Type namedResource `json:"type"`
	} `json:"types"`
	Stats []struct {
		BaseStat int           `json:"base_stat"`
		Stat     namedResource `json:"stat"`
	} `json:"stats"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
		Other        map[string]struct {
			FrontDefault string `json:"front_default"`
		} `json:"other"`
	} `json:"sprites"`
}

func (p pokemonResponse) toRecord() *catalog.Record {
	rec := &catalog.Record{
		ID:     p.ID,
		Name:   strings.ToLower(p.Name),
		Height: p.Height,
		Weight: p.Weight,
		Types:  make([]string, 0, len(p.Types)),
		Stats:  make([]catalog.Stat, 0, len(p.Stats)),
	}

	for _, t := range p.Types {
		rec.Types = append(rec.Types, t.Type.Name)
	}
	for _, s := range p.Stats {
		rec.Stats = append(rec.Stats, catalog.Stat{Name: s.Stat.Name, Base: s.BaseStat})
	}

	if art, ok := p.Sprites.Other["official-artwork"]; ok && art.FrontDefault != "" {
		rec.Image = art.FrontDefault
	} else {
		rec.Image = p.Sprites.FrontDefault
	}

	return rec
}

type typeResponse struct {
	Name    string `json:"name"`
	Pokemon []struct {
		Slot    int           `json:"slot"`
		Pokemon namedResource `json:"pokemon"`
	} `json:"pokemon"`
}

type typeListResponse struct {
	Count   int             `json:"count"`
	Results []namedResource `json:"results"`
}

type speciesResponse struct {
	ID                int `json:"id"`
	FlavorTextEntries []struct {
		FlavorText string        `json:"flavor_text"`
		Language   namedResource `json:"language"`
	} `json:"flavor_text_entries"`
	Genera []struct {
		Genus    string        `json:"genus"`
		Language namedResource `json:"language"`
	} `json:"genera"`
}

func (s speciesResponse) toSpecies() *catalog.Species {
	out := &catalog.Species{ID: s.ID, Description: catalog.NoDescription}

	for _, e := range s.FlavorTextEntries {
		if e.Language.Name == "en" {
			if text := cleanText(e.FlavorText); text != "" {
				out.Description = text
				break
			}
		}
	}
	for _, g := range s.Genera {
		if g.Language.Name == "en" {
			out.Genus = g.Genus
			break
		}
	}

	return out
}

// cleanText collapses the form feeds and hard line breaks present in flavor text.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// idFromURL extracts the trailing numeric id from a resource URL such as
// https://pokeapi.co/api/v2/pokemon/25/.
func idFromURL(u string) (int, bool) {
	trimmed := strings.TrimRight(u, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return 0, false
	}
	id, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
