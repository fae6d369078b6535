package cmd

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const scanPage = `
<style>
  #gallery { width: 200px; height: 200px; overflow: scroll }
  #gallery img { width: 20px; height: 20px }
  .spacer { height: 250px }
</style>
<div id="gallery">
  <img id="top" src="top.png">
  <div class="spacer"></div>
  <img id="low" src="low.png">
  <div class="spacer"></div>
  <img id="bottom" src="bottom.png">
</div>`

func TestScan(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	if err := os.WriteFile(page, []byte(scanPage), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.png")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"scan", page, "--container", "gallery", "--placeholder", "ph.gif",
		"--scroll", "0,100", "--width", "300", "--height", "300", "--png", out, "--log-level", "error"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	var got [][]string
	for _, l := range lines[1:] {
		got = append(got, strings.Fields(l))
	}
	want := [][]string{
		{"div#gallery", "img#top", "yes", "no", "top.png"},
		{"div#gallery", "img#low", "yes", "yes", "low.png"},
		{"div#gallery", "img#bottom", "no", "no", "ph.gif"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scan table (-want +got):\n%s", diff)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("png not written: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decoding %s: %v", out, err)
	}
	if cfg.Width != 300 || cfg.Height != 300 {
		t.Errorf("png size = %dx%d, want 300x300", cfg.Width, cfg.Height)
	}
}

func TestParseScrollSteps(t *testing.T) {
	got, err := parseScrollSteps([]string{"0,100", " 5 , 7.5"})
	if err != nil {
		t.Fatalf("parseScrollSteps: %v", err)
	}
	if diff := cmp.Diff([][2]float64{{0, 100}, {5, 7.5}}, got); diff != "" {
		t.Errorf("steps (-want +got):\n%s", diff)
	}
	for _, bad := range []string{"100", "a,1", "1,b"} {
		if _, err := parseScrollSteps([]string{bad}); err == nil {
			t.Errorf("parseScrollSteps(%q) succeeded", bad)
		}
	}
}

func TestScan_PNGCreateError(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	if err := os.WriteFile(page, []byte(scanPage), 0o644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"scan", page, "--png", filepath.Join(dir, "missing", "out.png"), "--log-level", "error"})
	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "out.png") {
		t.Errorf("err = %v, want an error naming the output file", err)
	}
}
