// Package render decides how a raw log line is displayed.
//
// # Overview
//
// Every line that enters the store passes through Render exactly once. The
// result is a Document with two forms:
//
//   - Plain: text to display verbatim
//   - Tokens: a semantically tagged token stream, present only for JSON
//
// # JSON Detection
//
// Detection is strict: the trimmed line must be a complete JSON value as
// accepted by encoding/json. Objects, arrays and bare scalars all qualify,
// so a line consisting of "text" (with the quotes) is a JSON string.
//
// Anything else, including the empty line, is returned unchanged with no
// tokens. This is the expected path for most log output and is never an
// error.
//
// # Token Classes
//
// Valid JSON is re-indented with two spaces and then lexed with chroma's
// JSON lexer. Lexer token types are folded into five abstract classes:
//
//	key      object member names
//	string   string values
//	number   numeric values (original literal text preserved)
//	boolean  true / false
//	null     null
//
// Punctuation and whitespace carry ClassNone. Classes are markers, not
// colors: the terminal viewer maps them to lipgloss styles and the HTTP
// surface maps them to json-<class> CSS classes via Markup.
//
// The token texts always concatenate to Plain, at any nesting depth.
package render
