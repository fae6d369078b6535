package css

import (
	"sort"

	log "github.com/sirupsen/logrus"

	"lazy14/pkg/html"
)

// applyUserAgentStyles applies default browser styles based on element type.
func applyUserAgentStyles(node *html.Node, style *Style) {
	switch node.TagName {
	case "img", "span", "a", "em", "strong", "b", "i", "code", "small", "label":
		style.Set("display", "inline")
	case "head", "title", "meta", "link", "script", "style":
		style.Set("display", "none")
	}
	if node.TagName == "a" {
		style.Set("color", "#0645ad")
	}
}

// ComputeStyle computes the final style for a node: user agent defaults,
// then stylesheet rules by ascending specificity (source order breaks
// ties), then the inline style attribute.
func ComputeStyle(node *html.Node, stylesheets []*Stylesheet) *Style {
	finalStyle := NewStyle()
	applyUserAgentStyles(node, finalStyle)

	type ordered struct {
		rule  Rule
		sheet int
	}
	var matched []ordered
	for i, stylesheet := range stylesheets {
		for _, r := range FindMatchingRules(node, stylesheet) {
			matched = append(matched, ordered{rule: r, sheet: i})
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.rule.Selector.Specificity != b.rule.Selector.Specificity {
			return a.rule.Selector.Specificity < b.rule.Selector.Specificity
		}
		if a.sheet != b.sheet {
			return a.sheet < b.sheet
		}
		return a.rule.Order < b.rule.Order
	})
	for _, m := range matched {
		for property, value := range m.rule.Declarations {
			finalStyle.Set(property, value)
		}
	}

	if styleAttr, ok := node.GetAttribute("style"); ok {
		for property, value := range ParseInlineStyle(styleAttr).Properties {
			finalStyle.Set(property, value)
		}
	}

	return finalStyle
}

// ParseDocumentStylesheets parses every <style> block of doc. Blocks that
// fail to parse are logged and skipped.
func ParseDocumentStylesheets(doc *html.Document) []*Stylesheet {
	stylesheets := make([]*Stylesheet, 0, len(doc.Stylesheets))
	for i, cssText := range doc.Stylesheets {
		stylesheet, err := ParseStylesheet(cssText)
		if err != nil {
			log.WithError(err).Warnf("css: skipping stylesheet %d", i)
			continue
		}
		stylesheets = append(stylesheets, stylesheet)
	}
	return stylesheets
}

// ApplyStylesToDocument computes the style of every element in doc.
func ApplyStylesToDocument(doc *html.Document) map[*html.Node]*Style {
	styles := make(map[*html.Node]*Style)
	stylesheets := ParseDocumentStylesheets(doc)
	doc.Root.Walk(func(n *html.Node) bool {
		if n.IsElement() {
			styles[n] = ComputeStyle(n, stylesheets)
		}
		return true
	})
	return styles
}
