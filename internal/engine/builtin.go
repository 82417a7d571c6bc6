package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

type directive int

const (
	directiveImport directive = iota
	directiveUse
	directiveForward
)

var directives = map[string]directive{
	"@import":  directiveImport,
	"@use":     directiveUse,
	"@forward": directiveForward,
}

// Builtin resolves @import, @use and @forward against the importing file's
// directory and the load paths and inlines the referenced files. Everything
// else passes through untouched, so it suits stylesheets that are plain CSS
// split across partials. Output style is ignored.
type Builtin struct {
	log *zap.Logger
}

// NewBuiltin creates the built-in engine.
func NewBuiltin(log *zap.Logger) *Builtin {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builtin{log: log.Named("builtin")}
}

func (b *Builtin) Name() string { return "builtin" }

func (b *Builtin) Compile(src Source, opts Options) (string, error) {
	if IsIndented(src.Path) {
		return "", &Error{Path: src.Path, Message: errIndentedSyntax}
	}

	x := &expander{
		log:       b.log,
		loadPaths: opts.LoadPaths,
		files:     filesOrDisk(opts.Files),
		used:      make(map[string]struct{}),
	}
	if src.Path != "" {
		x.stack = []string{src.Path}
	}

	var out strings.Builder
	if err := x.expand(&out, src.Path, src.Content); err != nil {
		return "", err
	}
	return out.String(), nil
}

const errIndentedSyntax = "the indented syntax (.sass) needs the dart-sass engine"

// IsIndented reports whether path names a stylesheet in the indented syntax.
func IsIndented(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".sass")
}

// expander carries the state of one Compile call.
type expander struct {
	log       *zap.Logger
	loadPaths []string
	files     Files

	// used holds modules already emitted by @use or @forward.
	used map[string]struct{}
	// stack holds the files currently being expanded, outermost first.
	stack []string
}

func (x *expander) expand(w *strings.Builder, file, content string) error {
	base := 0 // offset of the lexer's input within content
	input := parse.NewInputString(content)
	lexer := css.NewLexer(input)

	dir := ""
	if file != "" {
		dir = filepath.Dir(file)
	}

	line := 1
	slash := false // a '/' is held back until we know it does not start a // comment

	for {
		tt, text := lexer.Next()
		if tt == css.ErrorToken {
			if err := lexer.Err(); err != nil && !errors.Is(err, io.EOF) {
				return &Error{Path: file, Line: line, Message: err.Error()}
			}
			if slash {
				w.WriteByte('/')
			}
			return nil
		}

		// A // comment runs to the end of the line whatever it contains, so
		// it is skipped on the raw input and lexing restarts after it.
		// "//*" lexes as '/' followed by a block comment.
		commentAt := -1
		switch {
		case slash && tt == css.DelimToken && len(text) == 1 && text[0] == '/':
			commentAt = input.Offset()
		case slash && tt == css.CommentToken:
			commentAt = input.Offset() - len(text)
		}
		if commentAt >= 0 {
			slash = false
			rest := content[base+commentAt:]
			nl := strings.IndexByte(rest, '\n')
			if nl < 0 {
				return nil
			}
			base += commentAt + nl + 1
			line++
			w.WriteByte('\n')
			input = parse.NewInputString(content[base:])
			lexer = css.NewLexer(input)
			continue
		}

		if tt == css.DelimToken && len(text) == 1 && text[0] == '/' {
			slash = true
			continue
		}
		if slash {
			w.WriteByte('/')
			slash = false
		}

		newlines := bytes.Count(text, []byte{'\n'})

		if tt == css.AtKeywordToken {
			if kind, ok := directives[strings.ToLower(string(text))]; ok {
				start := line
				stmt, n := readStatement(lexer)
				line += n
				if err := x.directive(w, dir, file, start, kind, string(text), stmt); err != nil {
					return err
				}
				continue
			}
		}

		line += newlines
		w.Write(text)
	}
}

// readStatement consumes tokens up to and including the terminating
// semicolon. It returns the tokens before the semicolon and the number of
// newlines consumed.
func readStatement(lexer *css.Lexer) ([]css.Token, int) {
	var tokens []css.Token
	newlines := 0
	for {
		tt, text := lexer.Next()
		if tt == css.ErrorToken || tt == css.SemicolonToken {
			return tokens, newlines
		}
		newlines += bytes.Count(text, []byte{'\n'})
		tokens = append(tokens, css.Token{TokenType: tt, Data: append([]byte(nil), text...)})
	}
}

func (x *expander) directive(w *strings.Builder, dir, file string, line int, kind directive, keyword string, stmt []css.Token) error {
	if kind == directiveImport {
		return x.importRule(w, dir, file, line, keyword, stmt)
	}

	target, ok := firstString(stmt)
	if !ok {
		return &Error{Path: file, Line: line, Message: fmt.Sprintf("expected a string after %s", keyword)}
	}
	if strings.HasPrefix(target, "sass:") {
		// Built-in Sass modules produce no CSS of their own.
		return nil
	}
	if hasIdent(stmt, "with") {
		return &Error{Path: file, Line: line, Message: fmt.Sprintf("configuring %q with \"with\" requires the dart-sass engine", target)}
	}
	return x.inline(w, dir, file, line, target, true)
}

func (x *expander) importRule(w *strings.Builder, dir, file string, line int, keyword string, stmt []css.Token) error {
	for _, item := range splitTopLevel(stmt) {
		item = trimWhitespace(item)
		if len(item) == 0 {
			continue
		}

		if len(item) == 1 && item[0].TokenType == css.StringToken {
			target := unquote(string(item[0].Data))
			if !isPlainImport(target) {
				if err := x.inline(w, dir, file, line, target, false); err != nil {
					return err
				}
				continue
			}
		}

		// url(), remote, .css and media-qualified imports are plain CSS.
		w.WriteString(keyword)
		w.WriteByte(' ')
		for _, t := range item {
			w.Write(t.Data)
		}
		w.WriteString(";\n")
	}
	return nil
}

func (x *expander) inline(w *strings.Builder, dir, file string, line int, target string, once bool) error {
	if IsIndented(target) {
		return &Error{Path: file, Line: line, Message: fmt.Sprintf("can't import %q: %s", target, errIndentedSyntax)}
	}
	resolved, ok := Resolve(dir, x.loadPaths, target)
	if !ok {
		return &Error{Path: file, Line: line, Message: fmt.Sprintf("can't find stylesheet to import: %q", target)}
	}

	for _, open := range x.stack {
		if open == resolved {
			chain := append(append([]string{}, x.stack...), resolved)
			for i := range chain {
				chain[i] = filepath.Base(chain[i])
			}
			return &Error{Path: file, Line: line, Message: "import cycle: " + strings.Join(chain, " -> ")}
		}
	}

	if once {
		if _, done := x.used[resolved]; done {
			return nil
		}
		x.used[resolved] = struct{}{}
	}

	data, err := x.files.ReadFile(resolved)
	if err != nil {
		return &Error{Path: file, Line: line, Message: fmt.Sprintf("failed to read %q: %v", resolved, err)}
	}

	x.log.Debug("Inlining import", zap.String("target", target), zap.String("path", resolved))

	x.stack = append(x.stack, resolved)
	err = x.expand(w, resolved, string(data))
	x.stack = x.stack[:len(x.stack)-1]
	if err != nil {
		return err
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		w.WriteByte('\n')
	}
	return nil
}

func splitTopLevel(tokens []css.Token) [][]css.Token {
	var out [][]css.Token
	depth := 0
	start := 0
	for i, t := range tokens {
		switch t.TokenType {
		case css.LeftParenthesisToken, css.FunctionToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			depth--
		case css.CommaToken:
			if depth == 0 {
				out = append(out, tokens[start:i])
				start = i + 1
			}
		}
	}
	return append(out, tokens[start:])
}

func trimWhitespace(tokens []css.Token) []css.Token {
	for len(tokens) > 0 && isBlank(tokens[0]) {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && isBlank(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

func isBlank(t css.Token) bool {
	return t.TokenType == css.WhitespaceToken || t.TokenType == css.CommentToken
}

func firstString(tokens []css.Token) (string, bool) {
	for _, t := range tokens {
		switch t.TokenType {
		case css.StringToken:
			return unquote(string(t.Data)), true
		case css.WhitespaceToken, css.CommentToken:
		default:
			return "", false
		}
	}
	return "", false
}

func hasIdent(tokens []css.Token, name string) bool {
	for _, t := range tokens {
		if t.TokenType == css.IdentToken && strings.EqualFold(string(t.Data), name) {
			return true
		}
	}
	return false
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
