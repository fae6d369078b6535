package layout

import (
	"testing"

	"lazy14/pkg/html"
)

func layoutHTML(t *testing.T, src string) (*Engine, *html.Document) {
	t.Helper()
	doc, err := html.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	engine := NewLayoutEngine(800, 600)
	engine.Layout(doc)
	return engine, doc
}

func TestLayoutEngine_SingleBox(t *testing.T) {
	doc := html.NewDocument()
	node := html.NewElement("div", map[string]string{"style": "width: 200px; height: 100px;"})
	doc.Root.AddChild(node)

	engine := NewLayoutEngine(800, 600)
	boxes := engine.Layout(doc)

	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d", len(boxes))
	}
	if boxes[0].Width != 200.0 || boxes[0].Height != 100.0 {
		t.Errorf("expected 200x100, got %fx%f", boxes[0].Width, boxes[0].Height)
	}
	if boxes[0].Parent != nil {
		t.Error("top-level box should have no parent")
	}
}

func TestLayoutEngine_VerticalStacking(t *testing.T) {
	doc := html.NewDocument()
	for i := 0; i < 3; i++ {
		doc.Root.AddChild(html.NewElement("div", map[string]string{"style": "height: 50px;"}))
	}

	engine := NewLayoutEngine(800, 600)
	boxes := engine.Layout(doc)

	if len(boxes) != 3 {
		t.Fatalf("expected 3 boxes, got %d", len(boxes))
	}
	if boxes[0].Y != 0.0 || boxes[1].Y != 50.0 || boxes[2].Y != 100.0 {
		t.Error("boxes not stacking correctly")
	}
	if boxes[0].Width != 800 {
		t.Errorf("block should fill the viewport width, got %f", boxes[0].Width)
	}
}

func TestLayoutEngine_NestedBoxModel(t *testing.T) {
	engine, doc := layoutHTML(t, `<div id="outer" style="margin-top: 30px; padding: 5px; border: 2px solid black"><img id="pic" width="20" height="10"></div>`)

	outer := engine.BoxFor(doc.ElementByID("outer"))
	if outer == nil {
		t.Fatal("no box for outer")
	}
	if outer.Y != 30 {
		t.Errorf("outer.Y = %f, want 30", outer.Y)
	}
	if outer.Width != 800-14 {
		t.Errorf("outer.Width = %f, want %d", outer.Width, 800-14)
	}
	if outer.Height != 10 {
		t.Errorf("outer.Height = %f, want the image height 10", outer.Height)
	}

	pic := engine.BoxFor(doc.ElementByID("pic"))
	if pic.X != 7 || pic.Y != 37 {
		t.Errorf("img at (%f,%f), want (7,37)", pic.X, pic.Y)
	}
	if pic.Parent != outer {
		t.Error("img box should be a child of outer")
	}
	if pic.ImagePath != "" {
		t.Errorf("ImagePath = %q, want empty", pic.ImagePath)
	}
}

func TestLayoutEngine_InlineImagesWrap(t *testing.T) {
	engine, doc := layoutHTML(t, `<div id="row" style="width: 100px"><img id="a" width="40" height="20"><img id="b" width="40" height="20"><img id="c" width="40" height="30"></div>`)

	tests := []struct {
		id   string
		x, y float64
	}{
		{"a", 0, 0},
		{"b", 40, 0},
		{"c", 0, 20},
	}
	for _, tt := range tests {
		box := engine.BoxFor(doc.ElementByID(tt.id))
		if box == nil {
			t.Fatalf("no box for %s", tt.id)
		}
		if box.X != tt.x || box.Y != tt.y {
			t.Errorf("%s at (%f,%f), want (%f,%f)", tt.id, box.X, box.Y, tt.x, tt.y)
		}
	}

	if row := engine.BoxFor(doc.ElementByID("row")); row.Height != 50 {
		t.Errorf("row height = %f, want 50", row.Height)
	}
}

func TestLayoutEngine_TextPushesImages(t *testing.T) {
	engine, doc := layoutHTML(t, `<div>hello<img id="pic" width="10" height="10"></div><div id="next"></div>`)

	pic := engine.BoxFor(doc.ElementByID("pic"))
	if pic.X != 40 || pic.Y != 0 {
		t.Errorf("img at (%f,%f), want (40,0)", pic.X, pic.Y)
	}
	next := engine.BoxFor(doc.ElementByID("next"))
	if next.Y != 16*lineHeightRatio {
		t.Errorf("next.Y = %f, want one text line", next.Y)
	}
}

func TestLayoutEngine_DisplayNone(t *testing.T) {
	engine, doc := layoutHTML(t, `<div id="gone" style="display: none"><img id="pic" width="10" height="10"></div><div id="kept" style="height: 5px"></div>`)

	if engine.BoxFor(doc.ElementByID("gone")) != nil {
		t.Error("display: none element should have no box")
	}
	if engine.BoxFor(doc.ElementByID("pic")) != nil {
		t.Error("descendants of display: none should have no box")
	}
	if kept := engine.BoxFor(doc.ElementByID("kept")); kept.Y != 0 {
		t.Errorf("kept.Y = %f, want 0", kept.Y)
	}
}

func TestLayoutEngine_Positioning(t *testing.T) {
	engine, doc := layoutHTML(t, `
		<div id="rel" style="position: relative; top: 5px; left: 3px; height: 10px"></div>
		<div id="cb" style="position: relative; margin-left: 10px; height: 100px">
			<img id="abs" style="position: absolute; left: 5px; top: 7px; width: 10px; height: 10px">
		</div>
		<img id="fixed" style="position: fixed; right: 0px; bottom: 0px; width: 20px; height: 20px">`)

	rel := engine.BoxFor(doc.ElementByID("rel"))
	if rel.X != 3 || rel.Y != 5 {
		t.Errorf("relative box at (%f,%f), want (3,5)", rel.X, rel.Y)
	}

	cb := engine.BoxFor(doc.ElementByID("cb"))
	if cb.Y != 10 {
		t.Errorf("relative offset should not move siblings: cb.Y = %f, want 10", cb.Y)
	}
	if cb.Height != 100 {
		t.Errorf("cb.Height = %f, want 100", cb.Height)
	}

	abs := engine.BoxFor(doc.ElementByID("abs"))
	if abs.X != 15 || abs.Y != 17 {
		t.Errorf("absolute box at (%f,%f), want (15,17)", abs.X, abs.Y)
	}
	if abs.Parent != cb {
		t.Error("absolute box should hang off its DOM parent's box")
	}

	fixed := engine.BoxFor(doc.ElementByID("fixed"))
	if fixed.X != 780 || fixed.Y != 580 {
		t.Errorf("fixed box at (%f,%f), want (780,580)", fixed.X, fixed.Y)
	}
}

func TestLayoutEngine_InlineBlockShrinks(t *testing.T) {
	engine, doc := layoutHTML(t, `<div><span id="ib" style="display: inline-block; padding: 2px"><img width="30" height="10"></span><img id="after" width="5" height="5"></div>`)

	ib := engine.BoxFor(doc.ElementByID("ib"))
	if ib.Width != 30 {
		t.Errorf("inline-block width = %f, want 30", ib.Width)
	}
	after := engine.BoxFor(doc.ElementByID("after"))
	if after.X != 34 {
		t.Errorf("following image at x=%f, want 34", after.X)
	}
}
