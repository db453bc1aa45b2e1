package render

import (
	"bytes"
	"encoding/json"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Class is an abstract semantic marker attached to a JSON token. The empty
// class marks punctuation and whitespace.
type Class string

const (
	ClassNone    Class = ""
	ClassKey     Class = "key"
	ClassString  Class = "string"
	ClassNumber  Class = "number"
	ClassBoolean Class = "boolean"
	ClassNull    Class = "null"
)

// Token is a fragment of the indented JSON text with its semantic class.
type Token struct {
	Class Class  `json:"class,omitempty"`
	Text  string `json:"text"`
}

// Document is the rendering decision for one raw line.
type Document struct {
	// Plain is the text to display verbatim: the indented JSON, or the raw
	// line unchanged when it is not JSON.
	Plain string
	// Tokens concatenate to Plain. Nil when the line is not JSON.
	Tokens []Token

	levelHint string
}

const indent = "  "

var jsonLexer = lexers.Get("json")

// Render decides whether raw is strict JSON. Failure to parse is a normal
// outcome and yields the raw line with no tokens. Invalid UTF-8 inside a JSON
// line is replaced with U+FFFD in both the plain and the token form.
func Render(raw string) Document {
	plain := Document{Plain: raw}
	trimmed := strings.ToValidUTF8(strings.TrimSpace(raw), string(utf8.RuneError))
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return plain
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, []byte(trimmed), "", indent); err != nil {
		return plain
	}
	text := pretty.String()

	tokens, ok := tokenize(text)
	if !ok {
		return plain
	}
	return Document{
		Plain:     text,
		Tokens:    tokens,
		levelHint: levelField(trimmed),
	}
}

// IsJSON reports whether a structured form is present.
func (d Document) IsJSON() bool {
	return len(d.Tokens) > 0
}

// LevelHint returns the top-level "level" or "severity" string of a JSON
// object line, or "" when there is none.
func (d Document) LevelHint() string {
	return d.levelHint
}

// Classes returns the set of semantic classes present in the document.
func (d Document) Classes() map[Class]bool {
	set := make(map[Class]bool)
	for _, tok := range d.Tokens {
		if tok.Class != ClassNone {
			set[tok.Class] = true
		}
	}
	return set
}

// Markup renders the tokens as escaped HTML with one span per tagged token,
// using json-<class> as the CSS class. Non-JSON documents render as escaped
// plain text.
func (d Document) Markup() string {
	return Markup(d.Tokens, d.Plain)
}

// Markup renders tokens as HTML; fallback is used when tokens is empty.
func Markup(tokens []Token, fallback string) string {
	if len(tokens) == 0 {
		return html.EscapeString(fallback)
	}
	var b strings.Builder
	for _, tok := range tokens {
		if tok.Class == ClassNone {
			b.WriteString(html.EscapeString(tok.Text))
			continue
		}
		b.WriteString(`<span class="json-`)
		b.WriteString(string(tok.Class))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(tok.Text))
		b.WriteString("</span>")
	}
	return b.String()
}

// tokenize runs the chroma JSON lexer over already validated, indented JSON
// and maps lexer token types onto semantic classes.
func tokenize(text string) ([]Token, bool) {
	if class, ok := scalarClass(text); ok {
		return []Token{{Class: class, Text: text}}, true
	}
	if jsonLexer == nil {
		return nil, false
	}
	it, err := jsonLexer.Tokenise(nil, text)
	if err != nil {
		return nil, false
	}
	lexed := it.Tokens()

	tokens := make([]Token, 0, len(lexed))
	for i, tok := range lexed {
		if tok.Value == "" {
			continue
		}
		tokens = append(tokens, Token{Class: classify(lexed, i), Text: tok.Value})
	}
	tokens = fitTo(tokens, text)
	if joinTokens(tokens) != text {
		return nil, false
	}
	return tokens, true
}

func joinTokens(tokens []Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok.Text)
	}
	return b.String()
}

func classify(lexed []chroma.Token, i int) Class {
	tok := lexed[i]
	switch {
	case tok.Type.InCategory(chroma.Name):
		return ClassKey
	case tok.Type.InSubCategory(chroma.LiteralString):
		if followedByColon(lexed, i) {
			return ClassKey
		}
		return ClassString
	case tok.Type.InSubCategory(chroma.LiteralNumber):
		return ClassNumber
	case tok.Type.InCategory(chroma.Keyword):
		switch strings.TrimSpace(tok.Value) {
		case "null":
			return ClassNull
		case "true", "false":
			return ClassBoolean
		}
	}
	return ClassNone
}

// scalarClass classifies a top-level JSON value that is not a container.
// text is known to be valid JSON.
func scalarClass(text string) (Class, bool) {
	switch {
	case text == "":
		return ClassNone, false
	case text[0] == '{' || text[0] == '[':
		return ClassNone, false
	case text[0] == '"':
		return ClassString, true
	case text == "null":
		return ClassNull, true
	case text == "true" || text == "false":
		return ClassBoolean, true
	default:
		return ClassNumber, true
	}
}

func followedByColon(lexed []chroma.Token, i int) bool {
	for _, next := range lexed[i+1:] {
		value := strings.TrimLeft(next.Value, " \t\r\n")
		if value == "" {
			continue
		}
		return strings.HasPrefix(value, ":")
	}
	return false
}

// fitTo trims anything the lexer appended beyond text (chroma may ensure a
// trailing newline) so the tokens always concatenate to text.
func fitTo(tokens []Token, text string) []Token {
	remaining := len(text)
	for i, tok := range tokens {
		if len(tok.Text) >= remaining {
			tokens[i].Text = tok.Text[:remaining]
			if tokens[i].Text == "" {
				return tokens[:i]
			}
			return tokens[:i+1]
		}
		remaining -= len(tok.Text)
	}
	return tokens
}

func levelField(trimmed string) string {
	if !strings.HasPrefix(trimmed, "{") {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return ""
	}
	for _, name := range []string{"level", "severity"} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err == nil && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
