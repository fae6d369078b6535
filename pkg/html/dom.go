package html

import (
	"sort"
	"strings"
)

type Node struct {
	Type       NodeType
	TagName    string
	Attributes map[string]string
	Text       string
	Children   []*Node
	Parent     *Node
}

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

type Document struct {
	Root        *Node
	Stylesheets []string // contents of <style> elements, in document order
	Scripts     []string // contents of inline <script> elements, in document order
}

func NewDocument() *Document {
	return &Document{
		Root: &Node{
			Type:     ElementNode,
			TagName:  "document",
			Children: make([]*Node, 0),
		},
		Stylesheets: make([]string, 0),
		Scripts:     make([]string, 0),
	}
}

// ElementByID returns the first element with the given id, or nil.
func (d *Document) ElementByID(id string) *Node {
	return d.Root.ElementByID(id)
}

// ElementsByTagName returns every element with the given tag in document
// order.
func (d *Document) ElementsByTagName(tag string) []*Node {
	return d.Root.ElementsByTagName(tag)
}

// NewElement returns a detached element node.
func NewElement(tag string, attrs map[string]string) *Node {
	if attrs == nil {
		attrs = make(map[string]string)
	}
	return &Node{
		Type:       ElementNode,
		TagName:    strings.ToLower(tag),
		Attributes: attrs,
		Children:   make([]*Node, 0),
	}
}

func (n *Node) GetAttribute(name string) (string, bool) {
	if n.Attributes == nil {
		return "", false
	}
	val, ok := n.Attributes[name]
	return val, ok
}

func (n *Node) SetAttribute(name, value string) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	n.Attributes[name] = value
}

func (n *Node) RemoveAttribute(name string) {
	delete(n.Attributes, name)
}

// IsElement reports whether n is a real element (not text, not the
// synthetic document root).
func (n *Node) IsElement() bool {
	return n != nil && n.Type == ElementNode && n.TagName != "document"
}

// AddChild adds a child node and sets up the parent relationship.
func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// InsertBefore inserts child into n before ref. A nil or foreign ref
// appends.
func (n *Node) InsertBefore(child, ref *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	for i, c := range n.Children {
		if c == ref {
			n.Children = append(n.Children[:i], append([]*Node{child}, n.Children[i:]...)...)
			return
		}
	}
	n.Children = append(n.Children, child)
}

// AppendText creates a text node and adds it as a child.
func (n *Node) AppendText(text string) {
	if text == "" {
		return
	}
	n.Children = append(n.Children, &Node{Type: TextNode, Text: text, Parent: n})
}

// RemoveChild detaches child from n. Returns nil if child is not a child of n.
func (n *Node) RemoveChild(child *Node) *Node {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return child
		}
	}
	return nil
}

// Walk visits n and its descendants in document order. Returning false from
// fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// ElementsByTagName returns the descendant elements of n (n excluded) with
// the given tag, in document order.
func (n *Node) ElementsByTagName(tag string) []*Node {
	tag = strings.ToLower(tag)
	var result []*Node
	for _, child := range n.Children {
		child.Walk(func(c *Node) bool {
			if c.Type == ElementNode && (tag == "*" || c.TagName == tag) {
				result = append(result, c)
			}
			return true
		})
	}
	return result
}

// ElementByID returns the first element in n's subtree with the given id.
func (n *Node) ElementByID(id string) *Node {
	if id == "" {
		return nil
	}
	var found *Node
	n.Walk(func(c *Node) bool {
		if v, ok := c.GetAttribute("id"); ok && v == id && c.Type == ElementNode {
			found = c
			return false
		}
		return true
	})
	return found
}

// Contains returns true if other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for ; other != nil; other = other.Parent {
		if other == n {
			return true
		}
	}
	return false
}

// TextContent concatenates the text of n and its descendants.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Text
	}
	var sb strings.Builder
	for _, child := range n.Children {
		sb.WriteString(child.TextContent())
	}
	return sb.String()
}

// Serialize returns the innerHTML of this node.
func (n *Node) Serialize() string {
	var sb strings.Builder
	for _, child := range n.Children {
		serializeNode(&sb, child)
	}
	return sb.String()
}

// SerializeOuter returns the outerHTML of this node.
func (n *Node) SerializeOuter() string {
	var sb strings.Builder
	serializeNode(&sb, n)
	return sb.String()
}

func serializeNode(sb *strings.Builder, n *Node) {
	if n.Type == TextNode {
		sb.WriteString(textEscaper.Replace(n.Text))
		return
	}

	sb.WriteByte('<')
	sb.WriteString(n.TagName)

	// Sorted for deterministic output
	keys := make([]string, 0, len(n.Attributes))
	for k := range n.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(" " + k + `="`)
		sb.WriteString(attrEscaper.Replace(n.Attributes[k]))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	if IsVoidElement(n.TagName) {
		return
	}

	for _, child := range n.Children {
		serializeNode(sb, child)
	}
	sb.WriteString("</" + n.TagName + ">")
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")
)

// IsVoidElement reports whether tag never has children or an end tag.
func IsVoidElement(tag string) bool {
	switch tag {
	case "br", "hr", "img", "input", "meta", "link", "area", "base",
		"col", "embed", "param", "source", "track", "wbr":
		return true
	}
	return false
}
