package codegen

import (
	"strings"
	"unicode"
)

// ScreamingSnake converts a class name to an upper-case identifier with
// words joined by underscores: "test-class" becomes TEST_CLASS and "fooBar"
// becomes FOO_BAR. Digits stay attached to the word before them.
func ScreamingSnake(name string) string {
	return strings.ToUpper(strings.Join(words(name), "_"))
}

// PascalCase converts a class name to a Go field name: "btn--primary"
// becomes BtnPrimary. A leading underscore marks an internal class and is
// kept.
func PascalCase(className string) string {
	// Remove leading dot if present
	name := strings.TrimPrefix(className, ".")

	isInternal := strings.HasPrefix(name, "_")
	name = strings.TrimPrefix(name, "_")

	parts := words(name)
	for i, part := range parts {
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}

	result := strings.Join(parts, "")
	if isInternal && result != "" {
		result = "_" + result
	}
	return result
}

// words splits name at every character that is neither a letter nor a
// digit and at case changes ("fooBar", "HTMLParser").
func words(name string) []string {
	var (
		out  []string
		cur  []rune
		prev rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			prev = 0
			continue
		}
		if len(cur) > 0 && unicode.IsUpper(r) {
			switch {
			case unicode.IsLower(prev) || unicode.IsDigit(prev):
				flush()
			case unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				// acronym followed by a word: HTMLParser
				flush()
			}
		}
		cur = append(cur, r)
		prev = r
	}
	flush()
	return out
}
