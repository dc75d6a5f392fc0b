package storage

import (
	"context"
	"fmt"

	"cropsense/internal/models"
)

// Supported UI languages
var Languages = []string{"en", "hi", "pa"}

const (
	DefaultLanguage = "en"
	ThemeLight      = "light"
	ThemeDark       = "dark"
)

// Preferences reads and writes UI preference flags
type Preferences struct {
	store Store
}

func NewPreferences(store Store) *Preferences {
	return &Preferences{store: store}
}

// Language returns the saved language, or "en" when unset or unknown
func (p *Preferences) Language(ctx context.Context) (string, error) {
	v, ok, err := p.store.Get(ctx, KeyLanguage)
	if err != nil {
		return DefaultLanguage, err
	}
	if !ok || !supportedLanguage(v) {
		return DefaultLanguage, nil
	}
	return v, nil
}

func (p *Preferences) SetLanguage(ctx context.Context, lang string) error {
	if !supportedLanguage(lang) {
		return &models.ValidationError{
			Field:   "language",
			Message: fmt.Sprintf("unsupported language %q (want one of %v)", lang, Languages),
		}
	}
	return p.store.Set(ctx, KeyLanguage, lang)
}

// Theme returns the saved theme, or "light" when unset or unknown
func (p *Preferences) Theme(ctx context.Context) (string, error) {
	v, ok, err := p.store.Get(ctx, KeyTheme)
	if err != nil {
		return ThemeLight, err
	}
	if !ok || (v != ThemeLight && v != ThemeDark) {
		return ThemeLight, nil
	}
	return v, nil
}

func (p *Preferences) SetTheme(ctx context.Context, theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return &models.ValidationError{
			Field:   "theme",
			Message: fmt.Sprintf("unsupported theme %q (want light or dark)", theme),
		}
	}
	return p.store.Set(ctx, KeyTheme, theme)
}

func supportedLanguage(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}
