package identity

import "strings"

// Identifier is a parsed sign-in identifier.
type Identifier struct {
	Kind Kind
	// Value is the form stored on profiles: the email as entered or the phone
	// number prefixed with the country calling code.
	Value string
}

// ParseIdentifier classifies raw by the presence of "@" alone. Phone numbers
// without a leading "+" get countryCode prepended.
func ParseIdentifier(raw, countryCode string) (Identifier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identifier{}, ErrInvalidIdentifier
	}
	if strings.Contains(raw, "@") {
		return Identifier{Kind: KindEmail, Value: raw}, nil
	}

	digits := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, raw)
	if digits == "" {
		return Identifier{}, ErrInvalidIdentifier
	}
	if strings.HasPrefix(digits, "+") {
		return Identifier{Kind: KindPhone, Value: digits}, nil
	}
	return Identifier{Kind: KindPhone, Value: countryCode + digits}, nil
}
