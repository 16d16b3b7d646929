package printer

import "unicode/utf8"

// ShortIDLength is the number of ID characters shown in tables.
const ShortIDLength = 8

// ShortID returns the ID prefix shown in tables, any unique prefix can be
// used to reference a task.
func ShortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}

// Truncate shortens a text to max runes using an ellipsis.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	if max == 1 {
		return "…"
	}

	runes := []rune(text)
	return string(runes[:max-1]) + "…"
}
