package css

import (
	"fmt"
	"strings"

	"lazy14/pkg/html"
)

// MatchesSelector returns true if the node matches the complex selector.
func MatchesSelector(node *html.Node, selector Selector) bool {
	if !node.IsElement() || len(selector.Parts) == 0 {
		return false
	}
	// Start matching from the rightmost part (the target element)
	return matchesCompoundSelector(node, selector, len(selector.Parts)-1)
}

// matchesCompoundSelector checks the part at partIndex against node and
// recurses leftwards through the combinators.
func matchesCompoundSelector(node *html.Node, selector Selector, partIndex int) bool {
	if !matchesSelectorPart(node, selector.Parts[partIndex]) {
		return false
	}
	if partIndex == 0 {
		return true
	}

	prev := partIndex - 1
	switch selector.Combinators[prev] {
	case DescendantCombinator:
		for ancestor := node.Parent; ancestor.IsElement(); ancestor = ancestor.Parent {
			if matchesCompoundSelector(ancestor, selector, prev) {
				return true
			}
		}
	case ChildCombinator:
		if node.Parent.IsElement() {
			return matchesCompoundSelector(node.Parent, selector, prev)
		}
	case AdjacentSiblingCombinator:
		if sib := previousElementSibling(node); sib != nil {
			return matchesCompoundSelector(sib, selector, prev)
		}
	case GeneralSiblingCombinator:
		for sib := previousElementSibling(node); sib != nil; sib = previousElementSibling(sib) {
			if matchesCompoundSelector(sib, selector, prev) {
				return true
			}
		}
	}
	return false
}

func matchesSelectorPart(node *html.Node, part SelectorPart) bool {
	if part.Element != "" && part.Element != "*" && node.TagName != part.Element {
		return false
	}
	if part.ID != "" {
		if id, ok := node.GetAttribute("id"); !ok || id != part.ID {
			return false
		}
	}
	if len(part.Classes) > 0 {
		classes := strings.Fields(node.Attributes["class"])
		for _, required := range part.Classes {
			if !containsWord(classes, required) {
				return false
			}
		}
	}
	for _, attrSel := range part.Attributes {
		if !matchesAttributeSelector(node, attrSel) {
			return false
		}
	}
	return true
}

func matchesAttributeSelector(node *html.Node, attr AttributeSelector) bool {
	value, ok := node.GetAttribute(attr.Name)
	if !ok {
		return false
	}
	switch attr.Operator {
	case "":
		return true
	case "=":
		return value == attr.Value
	case "^=":
		return attr.Value != "" && strings.HasPrefix(value, attr.Value)
	case "$=":
		return attr.Value != "" && strings.HasSuffix(value, attr.Value)
	case "*=":
		return attr.Value != "" && strings.Contains(value, attr.Value)
	case "~=":
		return containsWord(strings.Fields(value), attr.Value)
	case "|=":
		return value == attr.Value || strings.HasPrefix(value, attr.Value+"-")
	}
	return false
}

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}

func previousElementSibling(node *html.Node) *html.Node {
	if node.Parent == nil {
		return nil
	}
	var prev *html.Node
	for _, sibling := range node.Parent.Children {
		if sibling == node {
			return prev
		}
		if sibling.Type == html.ElementNode {
			prev = sibling
		}
	}
	return nil
}

// QuerySelectorAll returns the descendants of root (root excluded) matching
// any selector in the comma-separated group, in document order.
func QuerySelectorAll(root *html.Node, group string) ([]*html.Node, error) {
	selectors, err := parseGroup(group)
	if err != nil {
		return nil, err
	}
	var result []*html.Node
	for _, child := range root.Children {
		child.Walk(func(n *html.Node) bool {
			for _, sel := range selectors {
				if MatchesSelector(n, sel) {
					result = append(result, n)
					break
				}
			}
			return true
		})
	}
	return result, nil
}

// QuerySelector returns the first descendant of root matching group, or nil.
func QuerySelector(root *html.Node, group string) (*html.Node, error) {
	selectors, err := parseGroup(group)
	if err != nil {
		return nil, err
	}
	var found *html.Node
	for _, child := range root.Children {
		child.Walk(func(n *html.Node) bool {
			for _, sel := range selectors {
				if MatchesSelector(n, sel) {
					found = n
					return false
				}
			}
			return true
		})
		if found != nil {
			break
		}
	}
	return found, nil
}

// Matches reports whether node matches any selector in group.
func Matches(node *html.Node, group string) (bool, error) {
	selectors, err := parseGroup(group)
	if err != nil {
		return false, err
	}
	for _, sel := range selectors {
		if MatchesSelector(node, sel) {
			return true, nil
		}
	}
	return false, nil
}

func parseGroup(group string) ([]Selector, error) {
	parts := SplitSelectorGroup(group)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty selector")
	}
	selectors := make([]Selector, 0, len(parts))
	for _, raw := range parts {
		sel, err := ParseSelector(raw)
		if err != nil {
			return nil, err
		}
		selectors = append(selectors, sel)
	}
	return selectors, nil
}

// FindMatchingRules returns all rules of stylesheet that match node.
func FindMatchingRules(node *html.Node, stylesheet *Stylesheet) []Rule {
	matches := make([]Rule, 0)
	for _, rule := range stylesheet.Rules {
		if MatchesSelector(node, rule.Selector) {
			matches = append(matches, rule)
		}
	}
	return matches
}
