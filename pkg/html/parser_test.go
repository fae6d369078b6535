package html

import "testing"

func TestParser_NestedElements(t *testing.T) {
	doc, err := Parse(`<div id="c"><p>Hello</p><img src="a.png"></div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Root.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(doc.Root.Children))
	}
	div := doc.Root.Children[0]
	if len(div.Children) != 2 {
		t.Fatalf("expected div to have 2 children, got %d", len(div.Children))
	}
	if div.Children[0].TagName != "p" || div.Children[1].TagName != "img" {
		t.Errorf("unexpected children: %s, %s", div.Children[0].TagName, div.Children[1].TagName)
	}
	if div.Parent != doc.Root || div.Children[0].Parent != div {
		t.Error("parent references not set")
	}
}

func TestParser_VoidElementsDoNotNest(t *testing.T) {
	doc, err := Parse(`<div><img src="a.png"><img src="b.png" /><span></span></div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	div := doc.Root.Children[0]
	if len(div.Children) != 3 {
		t.Fatalf("expected 3 siblings, got %d", len(div.Children))
	}
	for _, c := range div.Children[:2] {
		if len(c.Children) != 0 {
			t.Errorf("<img> should have no children, got %d", len(c.Children))
		}
	}
}

func TestParser_AutoCloseP(t *testing.T) {
	doc, err := Parse(`<p>one<div>two</div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Root.Children) != 2 {
		t.Fatalf("expected <p> and <div> as siblings, got %d children", len(doc.Root.Children))
	}
}

func TestParser_StyleTag(t *testing.T) {
	doc, err := Parse(`<style>#c > img { width: 20px; }</style><div></div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Root.Children) != 1 || doc.Root.Children[0].TagName != "div" {
		t.Fatalf("style should not appear in the tree")
	}
	if len(doc.Stylesheets) != 1 || doc.Stylesheets[0] != "#c > img { width: 20px; }" {
		t.Errorf("unexpected stylesheets: %q", doc.Stylesheets)
	}
}

func TestParser_ScriptTag(t *testing.T) {
	doc, err := Parse(`<div></div><script>if (a < b) { x = "</div>"; }</script><script src="ext.js"></script>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Root.Children) != 1 {
		t.Fatalf("script should not appear in the tree, got %d children", len(doc.Root.Children))
	}
	if len(doc.Scripts) != 1 {
		t.Fatalf("expected 1 inline script, got %d", len(doc.Scripts))
	}
	if doc.Scripts[0] != `if (a < b) { x = "</div>"; }` {
		t.Errorf("script body = %q", doc.Scripts[0])
	}
}

func TestParser_UnmatchedEndTagIgnored(t *testing.T) {
	doc, err := Parse(`<div></span><p></p></div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	div := doc.Root.Children[0]
	if len(div.Children) != 1 || div.Children[0].TagName != "p" {
		t.Errorf("expected <p> inside <div>")
	}
}
