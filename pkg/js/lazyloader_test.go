package js

import (
	"testing"

	"lazy14/pkg/events"
)

const galleryHTML = `
<style>
  #gallery { width: 200px; height: 200px; overflow: scroll }
  #gallery img { width: 20px; height: 20px }
  .spacer { height: 250px }
  .tail { height: 40px }
</style>
<div id="gallery">
  <img id="first" src="first.png">
  <div class="spacer"></div>
  <img id="second" src="second.png">
  <div class="tail"></div>
</div>`

func TestLazyLoader_ScrollReveals(t *testing.T) {
	engine, doc, bus := newTestEngine(t, galleryHTML)
	run(t, engine, `
		var loader = new LazyLoader("gallery", {placeHolderImage: "blank.gif"});
		if (loader.images.length !== 2) throw new Error("images = " + loader.images.length);
		if (loader.container.id !== "gallery") throw new Error("container not exposed");
		loader.images.forEach(function (img) {
			if (img.src !== "blank.gif") throw new Error("image not hidden: " + img.src);
		});
	`)

	bus.Dispatch(events.Window, events.Load)
	run(t, engine, `
		var first = document.getElementById("first"), second = document.getElementById("second");
		if (first.src !== "first.png") throw new Error("first should load on window load, src = " + first.src);
		if (second.src !== "blank.gif") throw new Error("second loaded too early");
		// second sits at 270..290; at scrollTop 100 its bottom-right corner is (20,190).
		document.getElementById("gallery").scrollTop = 100;
		if (second.src !== "second.png") throw new Error("second should load on scroll, src = " + second.src);
	`)

	if got := len(engine.Managers()); got != 1 {
		t.Fatalf("managers = %d, want 1", got)
	}
	if p := engine.Managers()[0].Pending(); p != 0 {
		t.Errorf("Pending = %d, want 0", p)
	}
	if src, _ := doc.ElementByID("second").GetAttribute("src"); src != "second.png" {
		t.Errorf("second src = %q", src)
	}
}

func TestLazyLoader_SetThresholdAndUpdate(t *testing.T) {
	engine, _, _ := newTestEngine(t, galleryHTML)
	run(t, engine, `
		var loader = new LazyLoader(document.getElementById("gallery"));
		var second = document.getElementById("second");
		loader.update();
		if (second.src !== "") throw new Error("default placeholder should be empty, src = " + second.src);
		loader.setThreshold(80);
		if (second.src !== "") throw new Error("setThreshold must not update by itself");
		loader.update();
		if (second.src !== "second.png") throw new Error("threshold 80 should reveal second");
	`)
	if th := engine.Managers()[0].Config().Threshold; th != 80 {
		t.Errorf("threshold = %d, want 80", th)
	}
}

func TestLazyLoader_SelectorAndOptions(t *testing.T) {
	engine, _, _ := newTestEngine(t, galleryHTML)
	run(t, engine, `new LazyLoader("div#gallery", {threshold: 300, placeHolderImage: "p.gif"}).update();`)

	m := engine.Managers()[0]
	if m.Inert() {
		t.Fatal("selector should resolve")
	}
	if cfg := m.Config(); cfg.Threshold != 300 || cfg.PlaceholderImageURL != "p.gif" {
		t.Errorf("config = %+v", cfg)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending = %d, want 0 with a 300px threshold", m.Pending())
	}
}

func TestLazyLoader_MissingContainer(t *testing.T) {
	engine, doc, bus := newTestEngine(t, galleryHTML)
	run(t, engine, `
		var loader = new LazyLoader("nowhere", {placeHolderImage: "blank.gif"});
		if (loader.container !== null) throw new Error("container should be null");
		if (loader.images.length !== 0) throw new Error("no images expected");
		loader.update();
		loader.setThreshold(10);
		loader.close();
		new LazyLoader();
	`)
	if src, _ := doc.ElementByID("first").GetAttribute("src"); src != "first.png" {
		t.Errorf("unrelated image changed: src = %q", src)
	}
	if n := bus.ListenerCount(events.Window, events.Load); n != 0 {
		t.Errorf("inert loaders registered %d load listeners", n)
	}
}

func TestLazyLoader_Close(t *testing.T) {
	engine, _, bus := newTestEngine(t, galleryHTML)
	run(t, engine, `
		var loader = new LazyLoader("#gallery");
		loader.close();
		document.getElementById("gallery").scrollTop = 150;
		if (document.getElementById("second").src !== "") throw new Error("closed loader still reacted to scroll");
	`)
	if n := bus.ListenerCount(events.Window, events.Load); n != 0 {
		t.Errorf("load listeners after close = %d", n)
	}
}
