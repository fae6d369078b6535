package layout

import (
	"testing"

	"lazy14/pkg/html"
)

const scrollDoc = `<div id="c" style="width: 200px; height: 200px; overflow: scroll"><div id="tall" style="height: 600px"></div></div><div id="plain" style="height: 50px"></div>`

func TestScroll_Extent(t *testing.T) {
	engine, doc := layoutHTML(t, scrollDoc)
	c := doc.ElementByID("c")

	box := engine.BoxFor(c)
	if box.ScrollWidth != 200 || box.ScrollHeight != 600 {
		t.Errorf("scroll extent %fx%f, want 200x600", box.ScrollWidth, box.ScrollHeight)
	}
	if got := engine.MaxScroll(c); got != (Position{X: 0, Y: 400}) {
		t.Errorf("MaxScroll = %+v, want {0 400}", got)
	}
	if plain := engine.BoxFor(doc.ElementByID("plain")); plain.Y != 200 {
		t.Errorf("overflowing content should not push siblings: plain.Y = %f", plain.Y)
	}
}

func TestScroll_ScrollToClamps(t *testing.T) {
	engine, doc := layoutHTML(t, scrollDoc)
	c := doc.ElementByID("c")

	tests := []struct {
		name string
		x, y float64
		want Position
	}{
		{"within range", 0, 150, Position{Y: 150}},
		{"past the end", 30, 1000, Position{Y: 400}},
		{"negative", -5, -5, Position{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.ScrollTo(c, tt.x, tt.y); got != tt.want {
				t.Errorf("ScrollTo = %+v, want %+v", got, tt.want)
			}
			if got := engine.ScrollOffset(c); got != tt.want {
				t.Errorf("ScrollOffset = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestScroll_NonClippingBoxDoesNotScroll(t *testing.T) {
	engine, doc := layoutHTML(t, scrollDoc)
	plain := doc.ElementByID("plain")

	if got := engine.ScrollTo(plain, 10, 10); got != (Position{}) {
		t.Errorf("ScrollTo on visible overflow = %+v, want zero", got)
	}
	if got := engine.ScrollTo(html.NewElement("div", nil), 10, 10); got != (Position{}) {
		t.Errorf("ScrollTo on detached node = %+v, want zero", got)
	}
}

func TestScroll_RelayoutReclamps(t *testing.T) {
	engine, doc := layoutHTML(t, scrollDoc)
	c := doc.ElementByID("c")
	engine.ScrollTo(c, 0, 300)

	doc.ElementByID("tall").SetAttribute("style", "height: 300px")
	engine.Layout(doc)

	if got := engine.ScrollOffset(c); got.Y != 100 {
		t.Errorf("scrollTop after shrink = %f, want 100", got.Y)
	}
}

func TestScroll_ExtentIncludesPadding(t *testing.T) {
	engine, doc := layoutHTML(t, `<div id="c" style="width: 100px; height: 100px; padding: 10px; overflow: auto"><img width="50" height="300"></div>`)
	box := engine.BoxFor(doc.ElementByID("c"))

	// 10 padding + 300 image + 10 padding
	if box.ScrollHeight != 320 {
		t.Errorf("ScrollHeight = %f, want 320", box.ScrollHeight)
	}
	if got := engine.MaxScroll(doc.ElementByID("c")); got.Y != 200 {
		t.Errorf("MaxScroll.Y = %f, want 200", got.Y)
	}
}
