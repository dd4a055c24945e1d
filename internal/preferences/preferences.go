// Package preferences stores per-device settings: theme, language and
// notification switches.
package preferences

import (
	"context"
	"errors"
	"fmt"

	"github.com/homehelp/homehelp/internal/kv"
)

const (
	keyNotificationsEnabled = "notificationsEnabled"
	keyPushNotifications    = "pushNotifications"
	keyEmailNotifications   = "emailNotifications"
	keyThemeMode            = "themeMode"
	keyLanguage             = "language"

	keyCachedServices = "cachedServices"
	keyCachedMaids    = "cachedMaids"
)

// Theme modes.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// ErrInvalidTheme is returned for unknown theme modes.
var ErrInvalidTheme = errors.New("theme must be light, dark or system")

// Preferences is the settings screen state.
type Preferences struct {
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	PushNotifications    bool   `json:"pushNotifications"`
	EmailNotifications   bool   `json:"emailNotifications"`
	ThemeMode            string `json:"themeMode"`
	Language             string `json:"language"`
}

// Defaults are used for keys a device never set.
func Defaults() Preferences {
	return Preferences{
		NotificationsEnabled: true,
		PushNotifications:    true,
		EmailNotifications:   false,
		ThemeMode:            ThemeSystem,
		Language:             "en",
	}
}

// Update is a partial settings change; nil fields are untouched.
type Update struct {
	NotificationsEnabled *bool
	PushNotifications    *bool
	EmailNotifications   *bool
	ThemeMode            *string
	Language             *string
}

// Store reads and writes preferences, one kv key per setting.
type Store struct {
	kv kv.Store
}

// NewStore builds a preferences store over kv.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// Get returns owner's preferences with defaults filled in.
func (s *Store) Get(ctx context.Context, owner string) (Preferences, error) {
	p := Defaults()
	fields := []struct {
		key string
		dst any
	}{
		{keyNotificationsEnabled, &p.NotificationsEnabled},
		{keyPushNotifications, &p.PushNotifications},
		{keyEmailNotifications, &p.EmailNotifications},
		{keyThemeMode, &p.ThemeMode},
		{keyLanguage, &p.Language},
	}
	for _, f := range fields {
		if err := s.kv.Get(ctx, kv.Key(owner, f.key), f.dst); err != nil && !errors.Is(err, kv.ErrNotFound) {
			return Preferences{}, fmt.Errorf("load %s: %w", f.key, err)
		}
	}
	return p, nil
}

// Update applies u and returns the resulting preferences.
func (s *Store) Update(ctx context.Context, owner string, u Update) (Preferences, error) {
	if u.ThemeMode != nil {
		switch *u.ThemeMode {
		case ThemeLight, ThemeDark, ThemeSystem:
		default:
			return Preferences{}, ErrInvalidTheme
		}
	}

	set := func(key string, v any) error {
		if err := s.kv.Set(ctx, kv.Key(owner, key), v); err != nil {
			return fmt.Errorf("store %s: %w", key, err)
		}
		return nil
	}
	if u.NotificationsEnabled != nil {
		if err := set(keyNotificationsEnabled, *u.NotificationsEnabled); err != nil {
			return Preferences{}, err
		}
	}
	if u.PushNotifications != nil {
		if err := set(keyPushNotifications, *u.PushNotifications); err != nil {
			return Preferences{}, err
		}
	}
	if u.EmailNotifications != nil {
		if err := set(keyEmailNotifications, *u.EmailNotifications); err != nil {
			return Preferences{}, err
		}
	}
	if u.ThemeMode != nil {
		if err := set(keyThemeMode, *u.ThemeMode); err != nil {
			return Preferences{}, err
		}
	}
	if u.Language != nil {
		if err := set(keyLanguage, *u.Language); err != nil {
			return Preferences{}, err
		}
	}
	return s.Get(ctx, owner)
}

// ClearCache drops the cached catalog lists. Settings are kept.
func (s *Store) ClearCache(ctx context.Context, owner string) error {
	return s.kv.Remove(ctx, kv.Key(owner, keyCachedServices), kv.Key(owner, keyCachedMaids))
}
