package css

import (
	"fmt"
	"strings"
)

// Selector is a complex selector: compound parts joined by combinators,
// matched right to left.
type Selector struct {
	Raw         string
	Parts       []SelectorPart
	Combinators []Combinator // Combinators[i] joins Parts[i] and Parts[i+1]
	Specificity int
}

// SelectorPart is a compound selector such as img.thumb[src].
type SelectorPart struct {
	Element    string
	ID         string
	Classes    []string
	Attributes []AttributeSelector
}

type AttributeSelector struct {
	Name     string
	Operator string // "", "=", "^=", "$=", "*=", "~=", "|="
	Value    string
}

type Combinator int

const (
	DescendantCombinator      Combinator = iota // a b
	ChildCombinator                             // a > b
	AdjacentSiblingCombinator                   // a + b
	GeneralSiblingCombinator                    // a ~ b
)

// Rule represents a CSS rule (selector + declarations)
type Rule struct {
	Selector     Selector
	Declarations map[string]string
	Order        int // source position, breaks specificity ties
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []Rule
}

// ParseStylesheet parses CSS text into rules. Malformed rules and at-rules
// are skipped.
func ParseStylesheet(css string) (*Stylesheet, error) {
	stylesheet := &Stylesheet{Rules: make([]Rule, 0)}

	for _, ruleStr := range splitRules(stripComments(css)) {
		brace := strings.IndexByte(ruleStr, '{')
		if brace < 0 {
			continue
		}
		prelude := strings.TrimSpace(ruleStr[:brace])
		if prelude == "" || strings.HasPrefix(prelude, "@") {
			continue
		}
		body := strings.TrimSuffix(strings.TrimSpace(ruleStr[brace+1:]), "}")
		decls := parseDeclarations(body)

		for _, group := range SplitSelectorGroup(prelude) {
			sel, err := ParseSelector(group)
			if err != nil {
				continue
			}
			stylesheet.Rules = append(stylesheet.Rules, Rule{
				Selector:     sel,
				Declarations: decls,
				Order:        len(stylesheet.Rules),
			})
		}
	}

	return stylesheet, nil
}

func stripComments(css string) string {
	var sb strings.Builder
	for {
		start := strings.Index(css, "/*")
		if start < 0 {
			sb.WriteString(css)
			return sb.String()
		}
		sb.WriteString(css[:start])
		end := strings.Index(css[start+2:], "*/")
		if end < 0 {
			return sb.String()
		}
		css = css[start+2+end+2:]
	}
}

// splitRules splits CSS into top-level "prelude { body }" chunks.
func splitRules(css string) []string {
	rules := make([]string, 0)
	depth := 0
	start := 0
	for i, ch := range css {
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				if rule := strings.TrimSpace(css[start : i+1]); rule != "" {
					rules = append(rules, rule)
				}
				start = i + 1
			}
			if depth < 0 {
				depth = 0
				start = i + 1
			}
		}
	}
	return rules
}

// parseDeclarations parses "prop: value; ..." with shorthand expansion.
func parseDeclarations(declStr string) map[string]string {
	style := NewStyle()
	for _, part := range strings.Split(declStr, ";") {
		colon := strings.IndexByte(part, ':')
		if colon < 0 {
			continue
		}
		property := strings.ToLower(strings.TrimSpace(part[:colon]))
		value := strings.TrimSpace(part[colon+1:])
		value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		if property == "" || value == "" {
			continue
		}
		expandShorthand(style, property, value)
	}
	return style.Properties
}

// SplitSelectorGroup splits "a, b > c" into its comma-separated selectors.
func SplitSelectorGroup(group string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(group); i++ {
		switch group[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				if s := strings.TrimSpace(group[start:i]); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(group[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// ParseSelector parses a single complex selector.
func ParseSelector(raw string) (Selector, error) {
	sel := Selector{Raw: strings.TrimSpace(raw)}
	s := sel.Raw
	pendingComb := -1

	for i := 0; i < len(s); {
		switch c := s[i]; {
		case c == ' ' || c == '\t' || c == '\n':
			if pendingComb < 0 && len(sel.Parts) > 0 {
				pendingComb = int(DescendantCombinator)
			}
			i++
		case c == '>' || c == '+' || c == '~':
			if len(sel.Parts) == 0 {
				return Selector{}, fmt.Errorf("selector %q starts with a combinator", raw)
			}
			pendingComb = int(combinatorFor(c))
			i++
		default:
			part, n, err := parseCompound(s[i:])
			if err != nil {
				return Selector{}, fmt.Errorf("selector %q: %w", raw, err)
			}
			if len(sel.Parts) > 0 {
				if pendingComb < 0 {
					return Selector{}, fmt.Errorf("selector %q: missing combinator", raw)
				}
				sel.Combinators = append(sel.Combinators, Combinator(pendingComb))
			}
			sel.Parts = append(sel.Parts, part)
			pendingComb = -1
			i += n
		}
	}
	if len(sel.Parts) == 0 || pendingComb >= 0 {
		return Selector{}, fmt.Errorf("selector %q is empty or dangling", raw)
	}

	for _, p := range sel.Parts {
		if p.ID != "" {
			sel.Specificity += 100
		}
		sel.Specificity += 10 * (len(p.Classes) + len(p.Attributes))
		if p.Element != "" && p.Element != "*" {
			sel.Specificity++
		}
	}
	return sel, nil
}

func combinatorFor(c byte) Combinator {
	switch c {
	case '>':
		return ChildCombinator
	case '+':
		return AdjacentSiblingCombinator
	case '~':
		return GeneralSiblingCombinator
	}
	return DescendantCombinator
}

// parseCompound reads one compound selector and returns it with the number
// of bytes consumed.
func parseCompound(s string) (SelectorPart, int, error) {
	var part SelectorPart
	i := 0
	ident := func() string {
		start := i
		for i < len(s) && isIdentChar(s[i]) {
			i++
		}
		return s[start:i]
	}

	if i < len(s) && s[i] == '*' {
		part.Element = "*"
		i++
	} else if i < len(s) && isIdentChar(s[i]) {
		part.Element = strings.ToLower(ident())
	}

	for i < len(s) {
		switch s[i] {
		case '#':
			i++
			if part.ID = ident(); part.ID == "" {
				return part, i, fmt.Errorf("empty id")
			}
		case '.':
			i++
			cls := ident()
			if cls == "" {
				return part, i, fmt.Errorf("empty class")
			}
			part.Classes = append(part.Classes, cls)
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return part, i, fmt.Errorf("unterminated attribute selector")
			}
			part.Attributes = append(part.Attributes, parseAttributeSelector(s[i+1:i+end]))
			i += end + 1
		case ':':
			return part, i, fmt.Errorf("pseudo-classes are not supported")
		default:
			if i == 0 {
				return part, i, fmt.Errorf("unexpected %q", s[i])
			}
			return part, i, nil
		}
	}
	return part, i, nil
}

func parseAttributeSelector(body string) AttributeSelector {
	for _, op := range []string{"^=", "$=", "*=", "~=", "|=", "="} {
		if idx := strings.Index(body, op); idx >= 0 {
			return AttributeSelector{
				Name:     strings.ToLower(strings.TrimSpace(body[:idx])),
				Operator: op,
				Value:    strings.Trim(strings.TrimSpace(body[idx+len(op):]), `"'`),
			}
		}
	}
	return AttributeSelector{Name: strings.ToLower(strings.TrimSpace(body))}
}

func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_'
}
