package html

import (
	"fmt"
	gohtml "html"
	"strings"
	"unicode"
)

type TokenType int

const (
	TokenStartTag TokenType = iota
	TokenEndTag
	TokenText
	TokenEOF
)

type Token struct {
	Type        TokenType
	TagName     string
	Attributes  map[string]string
	Text        string
	SelfClosing bool // <img ... />
}

// Tokenizer splits HTML source into start tags, end tags and text runs.
// Comments, doctypes and processing instructions are dropped.
type Tokenizer struct {
	input string
	pos   int
}

func NewTokenizer(src string) *Tokenizer {
	return &Tokenizer{input: src}
}

func (t *Tokenizer) NextToken() (Token, error) {
	for t.pos < len(t.input) {
		if t.input[t.pos] != '<' {
			tok, ok := t.readText()
			if ok {
				return tok, nil
			}
			continue
		}
		if t.skipMarkup() {
			continue
		}
		return t.readTag()
	}
	return Token{Type: TokenEOF}, nil
}

// skipMarkup consumes a comment, doctype or processing instruction at the
// current position and reports whether it did.
func (t *Tokenizer) skipMarkup() bool {
	rest := t.input[t.pos+1:]
	var end string
	switch {
	case strings.HasPrefix(rest, "!--"):
		end = "-->"
	case strings.HasPrefix(rest, "?"):
		end = "?>"
	case strings.HasPrefix(rest, "!"):
		end = ">"
	default:
		return false
	}
	idx := strings.Index(t.input[t.pos:], end)
	if idx < 0 {
		t.pos = len(t.input)
		return true
	}
	t.pos += idx + len(end)
	return true
}

func (t *Tokenizer) readTag() (Token, error) {
	t.pos++ // '<'

	isEndTag := false
	if t.pos < len(t.input) && t.input[t.pos] == '/' {
		isEndTag = true
		t.pos++
	}
	tagName := t.readName(isTagNameChar)
	if tagName == "" {
		return Token{}, fmt.Errorf("expected tag name at position %d", t.pos)
	}
	if isEndTag {
		if err := t.skipTo('>'); err != nil {
			return Token{}, err
		}
		t.pos++
		return Token{Type: TokenEndTag, TagName: tagName}, nil
	}

	tok := Token{Type: TokenStartTag, TagName: tagName, Attributes: make(map[string]string)}
	for {
		t.skipWhitespace()
		if t.pos >= len(t.input) {
			return Token{}, fmt.Errorf("unexpected EOF in <%s>", tagName)
		}
		switch t.input[t.pos] {
		case '>':
			t.pos++
			return tok, nil
		case '/':
			t.pos++
			t.skipWhitespace()
			if t.pos < len(t.input) && t.input[t.pos] == '>' {
				t.pos++
				tok.SelfClosing = true
				return tok, nil
			}
			continue
		}
		name, value, err := t.readAttribute()
		if err != nil {
			return Token{}, err
		}
		// First occurrence wins, as in browsers.
		if _, dup := tok.Attributes[name]; !dup {
			tok.Attributes[name] = value
		}
	}
}

func (t *Tokenizer) readName(accept func(byte) bool) string {
	start := t.pos
	for t.pos < len(t.input) && accept(t.input[t.pos]) {
		t.pos++
	}
	return strings.ToLower(t.input[start:t.pos])
}

func (t *Tokenizer) readAttribute() (string, string, error) {
	name := t.readName(isAttributeNameChar)
	if name == "" {
		return "", "", fmt.Errorf("expected attribute name at position %d", t.pos)
	}
	t.skipWhitespace()
	if t.pos >= len(t.input) || t.input[t.pos] != '=' {
		return name, "", nil
	}
	t.pos++
	t.skipWhitespace()
	value, err := t.readAttributeValue()
	if err != nil {
		return "", "", err
	}
	return name, gohtml.UnescapeString(value), nil
}

func (t *Tokenizer) readAttributeValue() (string, error) {
	if t.pos >= len(t.input) {
		return "", fmt.Errorf("expected attribute value at position %d", t.pos)
	}
	quote := t.input[t.pos]
	if quote == '"' || quote == '\'' {
		t.pos++
		end := strings.IndexByte(t.input[t.pos:], quote)
		if end < 0 {
			return "", fmt.Errorf("unterminated attribute value")
		}
		value := t.input[t.pos : t.pos+end]
		t.pos += end + 1
		return value, nil
	}
	start := t.pos
	for t.pos < len(t.input) && !unicode.IsSpace(rune(t.input[t.pos])) && t.input[t.pos] != '>' {
		t.pos++
	}
	return t.input[start:t.pos], nil
}

// readText returns the text run at the current position. Whitespace-only
// runs between tags are consumed and reported as !ok.
func (t *Tokenizer) readText() (Token, bool) {
	end := strings.IndexByte(t.input[t.pos:], '<')
	if end < 0 {
		end = len(t.input) - t.pos
	}
	raw := t.input[t.pos : t.pos+end]
	t.pos += end
	if strings.TrimSpace(raw) == "" {
		return Token{}, false
	}
	return Token{Type: TokenText, Text: gohtml.UnescapeString(collapseWhitespace(raw))}, true
}

// collapseWhitespace folds runs of whitespace into one space while keeping a
// single leading/trailing space where the source had one.
func collapseWhitespace(s string) string {
	result := strings.Join(strings.Fields(s), " ")
	if unicode.IsSpace(rune(s[0])) {
		result = " " + result
	}
	if unicode.IsSpace(rune(s[len(s)-1])) {
		result += " "
	}
	return result
}

func (t *Tokenizer) skipWhitespace() {
	for t.pos < len(t.input) && unicode.IsSpace(rune(t.input[t.pos])) {
		t.pos++
	}
}

func (t *Tokenizer) skipTo(target byte) error {
	idx := strings.IndexByte(t.input[t.pos:], target)
	if idx < 0 {
		t.pos = len(t.input)
		return fmt.Errorf("expected '%c' but reached EOF", target)
	}
	t.pos += idx
	return nil
}

// ReadRawUntil returns the raw content up to the closing </endTag> and moves
// past it. Used for <script> and <style>, where '<' does not open a tag.
func (t *Tokenizer) ReadRawUntil(endTag string) string {
	needle := "</" + endTag
	lower := strings.ToLower(t.input[t.pos:])
	idx := strings.Index(lower, needle)
	if idx < 0 {
		content := t.input[t.pos:]
		t.pos = len(t.input)
		return content
	}
	content := t.input[t.pos : t.pos+idx]
	t.pos += idx
	if err := t.skipTo('>'); err == nil {
		t.pos++
	}
	return content
}

func isTagNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isAttributeNameChar(c byte) bool {
	return isTagNameChar(c) || c == ':' || c == '.'
}
