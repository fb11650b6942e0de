// Package preferences persists the scalar UI preferences.
package preferences

import (
	"context"
	"strconv"

	"github.com/goliatone/go-dex-catalog/storage"
)

// DarkModeKey stores the theme as "true" or "false".
const DarkModeKey = "dark_mode"

// Theme reads and writes the dark mode preference.
type Theme struct {
	kv storage.KV
}

// NewTheme returns a Theme backed by kv.
func NewTheme(kv storage.KV) *Theme {
	return &Theme{kv: kv}
}

// Dark reports the stored preference. Missing or unparsable values read as false.
func (t *Theme) Dark(ctx context.Context) (bool, error) {
	raw, ok, err := t.kv.Get(ctx, DarkModeKey)
	if err != nil || !ok {
		return false, err
	}
	dark, perr := strconv.ParseBool(raw)
	if perr != nil {
		return false, nil
	}
	return dark, nil
}

// SetDark stores the preference.
func (t *Theme) SetDark(ctx context.Context, dark bool) error {
	return t.kv.Set(ctx, DarkModeKey, strconv.FormatBool(dark))
}

// Toggle flips the preference and returns the new value.
func (t *Theme) Toggle(ctx context.Context) (bool, error) {
	dark, err := t.Dark(ctx)
	if err != nil {
		return false, err
	}
	dark = !dark
	if err := t.SetDark(ctx, dark); err != nil {
		return !dark, err
	}
	return dark, nil
}
