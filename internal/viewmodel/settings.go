package viewmodel

import (
	"context"

	"cropsense/internal/session"
	"cropsense/internal/storage"
)

// SettingsState is what the settings page shows
type SettingsState struct {
	Language string
	Theme    string
	LoggedIn bool
}

// Settings reads and writes UI preferences and can end the session
type Settings struct {
	prefs   *storage.Preferences
	session *session.Session
}

func NewSettings(prefs *storage.Preferences, sess *session.Session) *Settings {
	return &Settings{prefs: prefs, session: sess}
}

func (s *Settings) Load(ctx context.Context) (SettingsState, error) {
	lang, err := s.prefs.Language(ctx)
	if err != nil {
		return SettingsState{}, err
	}
	theme, err := s.prefs.Theme(ctx)
	if err != nil {
		return SettingsState{}, err
	}
	return SettingsState{
		Language: lang,
		Theme:    theme,
		LoggedIn: s.session.Authenticated(),
	}, nil
}

func (s *Settings) SetLanguage(ctx context.Context, lang string) error {
	err := s.prefs.SetLanguage(ctx, lang)
	record("settings", err)
	return err
}

func (s *Settings) SetTheme(ctx context.Context, theme string) error {
	err := s.prefs.SetTheme(ctx, theme)
	record("settings", err)
	return err
}

func (s *Settings) Logout(ctx context.Context) error {
	return s.session.Logout(ctx)
}
