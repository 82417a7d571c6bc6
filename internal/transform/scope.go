package transform

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Template placeholders.
const (
	PlaceholderID       = "<id>"
	PlaceholderOriginal = "<original_name>"
)

const (
	idLength   = 6
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Scoper renames class selectors according to a template. One Scoper serves
// one compilation; names are stable for the lifetime of the Scoper.
type Scoper struct {
	template string
	excludes map[string]struct{}

	names map[string]string // original -> generated
	owner map[string]string // generated -> original
}

// NewScoper validates template and returns a scoper for it.
func NewScoper(template string, excludes []string) (*Scoper, error) {
	if !strings.Contains(template, PlaceholderID) && !strings.Contains(template, PlaceholderOriginal) {
		return nil, fmt.Errorf("class name template %q must contain %s or %s", template, PlaceholderID, PlaceholderOriginal)
	}

	s := &Scoper{
		template: template,
		excludes: make(map[string]struct{}, len(excludes)),
		names:    make(map[string]string),
		owner:    make(map[string]string),
	}
	for _, name := range excludes {
		s.excludes[name] = struct{}{}
		s.owner[name] = name
	}
	return s, nil
}

// Name returns the generated name for a class. Excluded classes keep their
// name. Generated names never repeat within one Scoper and never shadow an
// excluded class.
func (s *Scoper) Name(original string) (string, error) {
	if n, ok := s.names[original]; ok {
		return n, nil
	}
	if _, ok := s.excludes[original]; ok {
		s.names[original] = original
		return original, nil
	}

	hasID := strings.Contains(s.template, PlaceholderID)
	for salt := 0; ; salt++ {
		candidate := s.render(original, salt)
		owner, taken := s.owner[candidate]
		if !taken {
			s.names[original] = candidate
			s.owner[candidate] = original
			return candidate, nil
		}
		if !hasID {
			return "", fmt.Errorf("class %q renders to %q, which is already used by %q", original, candidate, owner)
		}
	}
}

func (s *Scoper) render(original string, salt int) string {
	return strings.NewReplacer(
		PlaceholderID, makeID(s.template, original, salt),
		PlaceholderOriginal, original,
	).Replace(s.template)
}

// makeID derives six lowercase alphanumerics from the template and class
// name. The first character is always a letter so the result is a valid
// identifier start.
func makeID(template, original string, salt int) string {
	d := xxhash.New()
	_, _ = d.WriteString(template)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(original)
	if salt > 0 {
		_, _ = d.WriteString("\x00" + strconv.Itoa(salt))
	}
	h := d.Sum64()

	var b [idLength]byte
	b[0] = 'a' + byte(h%26)
	h /= 26
	for i := 1; i < idLength; i++ {
		b[i] = idAlphabet[h%36]
		h /= 36
	}
	return string(b[:])
}

type blockKind int

const (
	// blockRules holds rules: the stylesheet itself, @media, @supports and
	// other grouping at-rules.
	blockRules blockKind = iota
	// blockDeclarations holds declarations and, with nesting, nested rules.
	blockDeclarations
)

// declarationAtRules open blocks of declarations rather than rules.
var declarationAtRules = map[string]struct{}{
	"@font-face":           {},
	"@page":                {},
	"@property":            {},
	"@counter-style":       {},
	"@font-feature-values": {},
	"@font-palette-values": {},
	"@viewport":            {},
}

// Scope renames every class selector in source and returns the rewritten
// CSS with the map of original to generated names. Classes inside
// declaration values, strings, URLs and at-rule preludes are left alone,
// except in @scope preludes, which hold selectors.
func (s *Scoper) Scope(source string) (string, map[string]string, error) {
	lexer := css.NewLexer(parse.NewInputString(source))

	var out strings.Builder
	out.Grow(len(source))

	classes := make(map[string]string)
	stack := []blockKind{blockRules}

	// Per-statement state, reset after '{', '}' and ';'.
	atStart := true
	selector := false
	atRule := ""
	dot := false

	reset := func() {
		atStart = true
		selector = false
		atRule = ""
	}

	// Tokens read ahead of the current one.
	var queue []token
	next := func() (css.TokenType, []byte) {
		if len(queue) > 0 {
			t := queue[0]
			queue = queue[1:]
			return t.tt, t.text
		}
		return lexer.Next()
	}
	// nestedRule reports whether the rest of the current statement opens a
	// block: a '{' comes before the next ';' or '}'.
	nestedRule := func() bool {
		for i := 0; ; i++ {
			if i == len(queue) {
				tt, text := lexer.Next()
				queue = append(queue, token{tt: tt, text: bytes.Clone(text)})
			}
			switch queue[i].tt {
			case css.LeftBraceToken:
				return true
			case css.SemicolonToken, css.RightBraceToken, css.ErrorToken:
				return false
			}
		}
	}

	for {
		tt, text := next()
		if tt == css.ErrorToken {
			if err := lexer.Err(); err != nil && !errors.Is(err, io.EOF) {
				return "", nil, fmt.Errorf("scope class names: %w", err)
			}
			if dot {
				out.WriteByte('.')
			}
			return out.String(), classes, nil
		}

		if dot {
			dot = false
			if tt == css.IdentToken {
				original := string(text)
				generated, err := s.Name(original)
				if err != nil {
					return "", nil, err
				}
				classes[original] = generated
				out.WriteByte('.')
				out.WriteString(generated)
				continue
			}
			out.WriteByte('.')
		}

		switch tt {
		case css.WhitespaceToken, css.CommentToken:
			out.Write(text)
			continue

		case css.AtKeywordToken:
			if atStart {
				atRule = strings.ToLower(string(text))
				selector = atRule == "@scope"
			}
			atStart = false

		case css.LeftBraceToken:
			kind := blockDeclarations
			if atRule != "" {
				if _, ok := declarationAtRules[atRule]; !ok {
					kind = blockRules
				}
			}
			stack = append(stack, kind)
			reset()

		case css.RightBraceToken:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			reset()

		case css.SemicolonToken:
			reset()

		default:
			if atStart {
				atStart = false
				selector = stack[len(stack)-1] == blockRules ||
					startsSelector(tt, text) ||
					nestedRule()
			}
			if selector && tt == css.DelimToken && len(text) == 1 && text[0] == '.' {
				dot = true
				continue
			}
		}

		out.Write(text)
	}
}

type token struct {
	tt   css.TokenType
	text []byte
}

// startsSelector reports whether a statement inside a declaration block that
// begins with this token is a nested rule rather than a declaration. Other
// statements, such as type selectors, are told apart by looking ahead.
func startsSelector(tt css.TokenType, text []byte) bool {
	switch tt {
	case css.HashToken, css.ColonToken, css.LeftBracketToken:
		return true
	case css.DelimToken:
		switch string(text) {
		case ".", "&", "*", ">", "+", "~":
			return true
		}
	}
	return false
}
