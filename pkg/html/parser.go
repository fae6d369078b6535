package html

import (
	"fmt"
)

type Parser struct {
	tokenizer *Tokenizer
	doc       *Document
	stack     []*Node // open elements; stack[0] is the document root
}

func NewParser(src string) *Parser {
	return &Parser{
		tokenizer: NewTokenizer(src),
		doc:       NewDocument(),
	}
}

func (p *Parser) Parse() (*Document, error) {
	p.stack = []*Node{p.doc.Root}

	for {
		token, err := p.tokenizer.NextToken()
		if err != nil {
			return nil, fmt.Errorf("tokenizer error: %w", err)
		}
		if token.Type == TokenEOF {
			break
		}

		switch token.Type {
		case TokenStartTag:
			switch token.TagName {
			case "style":
				// Raw text; kept out of the tree
				p.doc.Stylesheets = append(p.doc.Stylesheets, p.tokenizer.ReadRawUntil("style"))
				continue
			case "script":
				body := p.tokenizer.ReadRawUntil("script")
				if _, external := token.Attributes["src"]; !external {
					p.doc.Scripts = append(p.doc.Scripts, body)
				}
				continue
			}

			if isBlockElement(token.TagName) {
				p.autoCloseP()
			}

			node := &Node{
				Type:       ElementNode,
				TagName:    token.TagName,
				Attributes: token.Attributes,
				Children:   make([]*Node, 0),
			}
			p.currentParent().AddChild(node)

			if !token.SelfClosing && !IsVoidElement(token.TagName) {
				p.stack = append(p.stack, node)
			}

		case TokenText:
			p.currentParent().AppendText(token.Text)

		case TokenEndTag:
			p.closeTag(token.TagName)
		}
	}

	return p.doc, nil
}

func (p *Parser) currentParent() *Node {
	return p.stack[len(p.stack)-1]
}

// closeTag pops the stack up to and including the nearest matching element.
// Unmatched end tags are ignored.
func (p *Parser) closeTag(tagName string) {
	for i := len(p.stack) - 1; i >= 1; i-- {
		if p.stack[i].TagName == tagName {
			p.stack = p.stack[:i]
			return
		}
	}
}

// autoCloseP closes an open <p> unless a block container sits above it.
func (p *Parser) autoCloseP() {
	for i := len(p.stack) - 1; i >= 1; i-- {
		if p.stack[i].TagName == "p" {
			p.stack = p.stack[:i]
			return
		}
		if isBlockElement(p.stack[i].TagName) {
			return
		}
	}
}

// isBlockElement returns true for elements that auto-close <p>.
func isBlockElement(tagName string) bool {
	switch tagName {
	case "address", "article", "aside", "blockquote", "details", "dialog",
		"dd", "div", "dl", "dt", "fieldset", "figcaption", "figure",
		"footer", "form", "h1", "h2", "h3", "h4", "h5", "h6",
		"header", "hgroup", "hr", "li", "main", "nav", "ol",
		"p", "pre", "section", "table", "ul":
		return true
	}
	return false
}

func Parse(src string) (*Document, error) {
	return NewParser(src).Parse()
}
