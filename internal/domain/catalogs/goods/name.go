package goods

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DefaultLocale is used when a caller does not ask for a specific locale.
const DefaultLocale = "zh"

// Name is a goods display name: either a localized map of translations or a
// legacy bare string from rows created before multi-language support. A single
// resolver replaces the ad hoc type checks the legacy data invited.
type Name struct {
	localized map[string]string
	legacy    string
}

// NewLegacyName wraps a single-language name.
func NewLegacyName(s string) Name {
	return Name{legacy: s}
}

// NewLocalizedName wraps a locale → translation map.
func NewLocalizedName(m map[string]string) Name {
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Name{localized: cp}
}

// IsLocalized reports whether the name carries per-locale translations.
func (n Name) IsLocalized() bool {
	return n.localized != nil
}

// Resolve returns the display name for the locale, falling back to the
// default locale, then any translation, then the legacy string.
func (n Name) Resolve(locale string) string {
	if n.localized != nil {
		if v, ok := n.localized[locale]; ok && v != "" {
			return v
		}
		if v, ok := n.localized[DefaultLocale]; ok && v != "" {
			return v
		}
		for _, v := range n.localized {
			if v != "" {
				return v
			}
		}
	}
	return n.legacy
}

// Matches reports whether s equals the legacy name or any translation.
func (n Name) Matches(s string) bool {
	if s == "" {
		return false
	}
	if n.legacy == s {
		return true
	}
	for _, v := range n.localized {
		if v == s {
			return true
		}
	}
	return false
}

// String resolves with the default locale.
func (n Name) String() string {
	return n.Resolve(DefaultLocale)
}

// MarshalJSON encodes localized names as an object, legacy names as a string.
func (n Name) MarshalJSON() ([]byte, error) {
	if n.localized != nil {
		return json.Marshal(n.localized)
	}
	return json.Marshal(n.legacy)
}

// UnmarshalJSON accepts either a JSON object of translations or a bare string.
func (n *Name) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '{' {
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("unmarshal localized name: %w", err)
		}
		n.localized = m
		n.legacy = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal legacy name: %w", err)
	}
	n.localized = nil
	n.legacy = s
	return nil
}

// Value implements driver.Valuer; names are stored as JSON text.
func (n Name) Value() (driver.Value, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. Legacy rows may hold a bare (non-JSON) string;
// those are accepted as-is.
func (n *Name) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*n = Name{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Name", src)
	}

	if err := n.UnmarshalJSON(raw); err != nil {
		// Pre-JSON legacy row: keep the raw text.
		*n = Name{legacy: string(raw)}
	}
	return nil
}
