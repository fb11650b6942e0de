package present

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-dex-catalog/catalog"
	"github.com/goliatone/go-dex-catalog/render"
)

const (
	// DefaultColumns is how many cards share a row.
	DefaultColumns = 4
	cardWidth      = 24
)

// Terminal writes cards to w. It implements render.Presenter.
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	palette Palette
	columns int

	card     lipgloss.Style
	title    lipgloss.Style
	muted    lipgloss.Style
	favorite lipgloss.Style
	status   lipgloss.Style
	alert    lipgloss.Style
}

var _ render.Presenter = (*Terminal)(nil)

// NewTerminal returns a Terminal writing to w with palette p.
func NewTerminal(w io.Writer, p Palette, columns int) *Terminal {
	if columns <= 0 {
		columns = DefaultColumns
	}
	return &Terminal{
		w:       w,
		palette: p,
		columns: columns,
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1).
			Width(cardWidth),
		title:    lipgloss.NewStyle().Bold(true).Foreground(p.Foreground),
		muted:    lipgloss.NewStyle().Foreground(p.Muted),
		favorite: lipgloss.NewStyle().Foreground(p.Favorite),
		status:   lipgloss.NewStyle().Italic(true).Foreground(p.Muted),
		alert:    lipgloss.NewStyle().Bold(true).Foreground(p.Error),
	}
}

func (t *Terminal) ShowPage(view render.View) {
	var b strings.Builder

	if len(view.Cards) == 0 {
		if view.Favorites {
			b.WriteString(t.status.Render("No favorites yet."))
		} else {
			b.WriteString(t.status.Render("No Pokémon match the current filters."))
		}
		b.WriteString("\n")
		t.write(b.String())
		return
	}

	cards := make([]string, 0, len(view.Cards))
	for _, c := range view.Cards {
		cards = append(cards, t.renderCard(c))
	}
	for start := 0; start < len(cards); start += t.columns {
		end := min(start+t.columns, len(cards))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
		b.WriteString("\n")
	}

	b.WriteString(t.muted.Render(footer(view)))
	b.WriteString("\n")
	t.write(b.String())
}

func (t *Terminal) ShowDetail(d render.Detail) {
	r := d.Record
	var b strings.Builder

	heading := fmt.Sprintf("%s  %s", idLabel(r.ID), t.title.Render(r.Name))
	if d.Favorite {
		heading += " " + t.favorite.Render("★")
	}
	b.WriteString(heading + "\n")
	if d.Species != nil && d.Species.Genus != "" {
		b.WriteString(t.muted.Render(d.Species.Genus) + "\n")
	}
	b.WriteString(t.badges(r.Types) + "\n\n")
	b.WriteString(lipgloss.NewStyle().Width(cardWidth*2).Render(d.Description()) + "\n\n")

	for _, s := range r.Stats {
		b.WriteString(fmt.Sprintf("%-16s %3d %s\n", s.Name, s.Base, statBar(s.Base)))
	}
	b.WriteString(t.muted.Render(fmt.Sprintf("height %.1f m  weight %.1f kg", float64(r.Height)/10, float64(r.Weight)/10)) + "\n")
	if r.Image != "" {
		b.WriteString(t.muted.Render(r.Image) + "\n")
	}

	t.write(t.card.Width(cardWidth*2+4).Render(strings.TrimRight(b.String(), "\n")) + "\n")
}

func (t *Terminal) Status(msg string) {
	t.write(t.status.Render(msg) + "\n")
}

// Clear is a no-op on an append-only terminal beyond a separator line.
func (t *Terminal) Clear() {
	t.write("\n")
}

func (t *Terminal) Alert(msg string) {
	t.write(t.alert.Render("! "+msg) + "\n")
}

func (t *Terminal) renderCard(c render.Card) string {
	r := c.Record
	name := t.title.Render(r.Name)
	if c.Favorite {
		name += " " + t.favorite.Render("★")
	}
	body := strings.Join([]string{
		t.muted.Render(idLabel(r.ID)),
		name,
		t.badges(r.Types),
	}, "\n")
	return t.card.Render(body)
}

func (t *Terminal) badges(types []string) string {
	out := make([]string, 0, len(types))
	for _, name := range types {
		out = append(out, lipgloss.NewStyle().
			Foreground(typeColor(name, t.palette)).
			Render(name))
	}
	return strings.Join(out, " ")
}

func (t *Terminal) write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.w, s)
}

func footer(view render.View) string {
	if view.Favorites {
		if view.Page.Total > len(view.Cards) {
			return fmt.Sprintf("showing %d of %d favorites", len(view.Cards), view.Page.Total)
		}
		return fmt.Sprintf("%d favorites", view.Page.Total)
	}
	return fmt.Sprintf("page %d/%d  ·  %d results", view.Page.Page, view.Page.MaxPage, view.Page.Total)
}

func idLabel(id int) string {
	return fmt.Sprintf("#%03d", id)
}

func statBar(base int) string {
	n := min(max(base/10, 0), 25)
	return strings.Repeat("▇", n)
}

// Generations renders the generation table for the browse help text.
func Generations() string {
	var b strings.Builder
	for _, tok := range catalog.GenerationTokens() {
		r := catalog.Generations[tok]
		fmt.Fprintf(&b, "  %s: %d-%d\n", tok, r.Start, r.End)
	}
	return b.String()
}
