// Package phone provides destination-number classification and display
// formatting. This is part of the platform layer and contains no business
// logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultSeed is the destination value a freshly opened compose panel starts
// with. It carries a country signal but no digits, so it must classify as
// invalid.
const DefaultSeed = "+1"

// Classification is the result of classifying a raw destination string.
// Malformed input is a valid classification outcome, never an error.
type Classification struct {
	Possible bool
	Valid    bool
}

// Classify parses a raw destination string and reports whether the number is
// possible and valid under the numbering plan implied by its country code.
// Input without an international prefix does not parse and yields the zero
// Classification.
func Classify(raw string) Classification {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Classification{}
	}

	number, err := phonenumbers.Parse(trimmed, "")
	if err != nil {
		return Classification{}
	}

	possible := phonenumbers.IsPossibleNumber(number)
	if !possible {
		return Classification{}
	}

	return Classification{
		Possible: true,
		Valid:    phonenumbers.IsValidNumber(number),
	}
}

// FormatAsYouType reformats the raw string as if its characters were typed
// one at a time into a dialer. It is display-only and independent of
// validity; when no formatting rule applies the raw input comes back
// unchanged.
func FormatAsYouType(raw string) string {
	if raw == "" {
		return raw
	}

	formatter := phonenumbers.NewAsYouTypeFormatter("")
	formatted := raw
	for _, c := range raw {
		formatted = formatter.InputDigit(c)
	}

	if strings.TrimSpace(formatted) == "" {
		return raw
	}
	return formatted
}
