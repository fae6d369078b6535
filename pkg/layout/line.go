package layout

import (
	"strings"

	"lazy14/pkg/css"
)

const (
	defaultFontSize = 16.0
	lineHeightRatio = 1.2
	charWidthRatio  = 0.5
)

// lineState tracks the inline formatting of one block: atoms are placed
// left to right and wrap when they would overflow the line.
type lineState struct {
	x0     float64
	width  float64
	x      float64
	y      float64
	height float64
}

func newLineState(x0, y0, width float64) *lineState {
	return &lineState{x0: x0, width: width, x: x0, y: y0}
}

// place reserves a w x h atom on the current line, wrapping first if it does
// not fit and the line is not empty. It returns the atom's origin.
func (l *lineState) place(w, h float64) (float64, float64) {
	if l.x > l.x0 && l.x+w > l.x0+l.width {
		l.breakLine()
	}
	x, y := l.x, l.y
	l.x += w
	l.height = max(l.height, h)
	return x, y
}

// breakLine ends the current line, if any, and returns the y where the next
// line or block starts.
func (l *lineState) breakLine() float64 {
	if l.x > l.x0 || l.height > 0 {
		l.y += l.height
	}
	l.x, l.height = l.x0, 0
	return l.y
}

// reset starts a fresh line at y.
func (l *lineState) reset(y float64) {
	l.x, l.y, l.height = l.x0, y, 0
}

// measureText approximates the size of a run of text. Layout only needs
// text to push images around, so glyph metrics are not loaded.
func measureText(text string, style *css.Style) (float64, float64) {
	size := defaultFontSize
	if v, ok := style.GetLength("font-size"); ok && v > 0 {
		size = v
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, 0
	}
	return float64(len([]rune(text))) * size * charWidthRatio, size * lineHeightRatio
}
