package css

import (
	"strconv"
	"strings"
)

type Style struct {
	Properties map[string]string
}

func NewStyle() *Style {
	return &Style{Properties: make(map[string]string)}
}

func (s *Style) Get(property string) (string, bool) {
	val, ok := s.Properties[property]
	return val, ok
}

func (s *Style) Set(property, value string) {
	s.Properties[property] = value
}

func (s *Style) GetLength(property string) (float64, bool) {
	val, ok := s.Get(property)
	if !ok {
		return 0, false
	}
	return ParseLength(val)
}

// ParseLength parses a pixel length ("100px" or "100"). Other units are
// rejected.
func ParseLength(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, "px")
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// BoxEdge represents the four sides of a box (top, right, bottom, left)
type BoxEdge struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Horizontal returns Left+Right.
func (e BoxEdge) Horizontal() float64 { return e.Left + e.Right }

// Vertical returns Top+Bottom.
func (e BoxEdge) Vertical() float64 { return e.Top + e.Bottom }

func (s *Style) GetMargin() BoxEdge {
	return s.edge("margin-%s")
}

func (s *Style) GetPadding() BoxEdge {
	return s.edge("padding-%s")
}

func (s *Style) GetBorderWidth() BoxEdge {
	return s.edge("border-%s-width")
}

func (s *Style) edge(pattern string) BoxEdge {
	side := func(name string) float64 {
		v, _ := s.GetLength(strings.Replace(pattern, "%s", name, 1))
		return v
	}
	return BoxEdge{
		Top:    side("top"),
		Right:  side("right"),
		Bottom: side("bottom"),
		Left:   side("left"),
	}
}

type PositionType string

const (
	PositionStatic   PositionType = "static"
	PositionRelative PositionType = "relative"
	PositionAbsolute PositionType = "absolute"
	PositionFixed    PositionType = "fixed"
)

// GetPosition returns the position type (default: static)
func (s *Style) GetPosition() PositionType {
	switch pos, _ := s.Get("position"); pos {
	case "relative":
		return PositionRelative
	case "absolute":
		return PositionAbsolute
	case "fixed":
		return PositionFixed
	}
	return PositionStatic
}

// PositionOffset holds top/right/bottom/left for positioned elements.
type PositionOffset struct {
	Top, Right, Bottom, Left             float64
	HasTop, HasRight, HasBottom, HasLeft bool
}

func (s *Style) GetPositionOffset() PositionOffset {
	var o PositionOffset
	o.Top, o.HasTop = s.GetLength("top")
	o.Right, o.HasRight = s.GetLength("right")
	o.Bottom, o.HasBottom = s.GetLength("bottom")
	o.Left, o.HasLeft = s.GetLength("left")
	return o
}

type DisplayType string

const (
	DisplayBlock       DisplayType = "block"
	DisplayInline      DisplayType = "inline"
	DisplayInlineBlock DisplayType = "inline-block"
	DisplayNone        DisplayType = "none"
)

// GetDisplay returns the display value (default: block). Inline defaults
// for phrasing elements come from the user agent styles in the cascade.
func (s *Style) GetDisplay() DisplayType {
	switch display, _ := s.Get("display"); display {
	case "block":
		return DisplayBlock
	case "inline":
		return DisplayInline
	case "inline-block":
		return DisplayInlineBlock
	case "none":
		return DisplayNone
	}
	return DisplayBlock
}

// OverflowType represents the overflow property value.
type OverflowType string

const (
	OverflowVisible OverflowType = "visible"
	OverflowHidden  OverflowType = "hidden"
	OverflowScroll  OverflowType = "scroll"
	OverflowAuto    OverflowType = "auto"
)

// GetOverflow returns the overflow value (default: visible)
func (s *Style) GetOverflow() OverflowType {
	switch v, _ := s.Get("overflow"); v {
	case "hidden":
		return OverflowHidden
	case "scroll":
		return OverflowScroll
	case "auto":
		return OverflowAuto
	}
	return OverflowVisible
}

// ClipsContent reports whether the element is a scroll container.
func (o OverflowType) ClipsContent() bool {
	return o != OverflowVisible && o != ""
}

func ParseInlineStyle(styleAttr string) *Style {
	style := NewStyle()
	for property, value := range parseDeclarations(styleAttr) {
		style.Set(property, value)
	}
	return style
}

// expandShorthand expands shorthand CSS properties into individual properties
func expandShorthand(style *Style, property, value string) {
	switch property {
	case "margin", "padding":
		expandBoxProperty(style, property, value)
	case "border":
		expandBorderProperty(style, value)
	case "overflow":
		// "overflow: scroll auto" sets x and y; the first value is kept as
		// the overflow keyword.
		parts := strings.Fields(value)
		if len(parts) == 0 {
			return
		}
		style.Set("overflow", parts[0])
		style.Set("overflow-x", parts[0])
		style.Set("overflow-y", parts[len(parts)-1])
	default:
		style.Set(property, value)
	}
}

// expandBoxProperty expands margin/padding shorthand:
// "a" (all), "v h", "t h b", "t r b l".
func expandBoxProperty(style *Style, prefix, value string) {
	parts := strings.Fields(value)
	var t, r, b, l string
	switch len(parts) {
	case 1:
		t, r, b, l = parts[0], parts[0], parts[0], parts[0]
	case 2:
		t, r, b, l = parts[0], parts[1], parts[0], parts[1]
	case 3:
		t, r, b, l = parts[0], parts[1], parts[2], parts[1]
	case 4:
		t, r, b, l = parts[0], parts[1], parts[2], parts[3]
	default:
		return
	}
	style.Set(prefix+"-top", t)
	style.Set(prefix+"-right", r)
	style.Set(prefix+"-bottom", b)
	style.Set(prefix+"-left", l)
}

// expandBorderProperty expands "1px solid black" style shorthand.
func expandBorderProperty(style *Style, value string) {
	for _, part := range strings.Fields(value) {
		switch {
		case strings.HasSuffix(part, "px"):
			for _, side := range []string{"top", "right", "bottom", "left"} {
				style.Set("border-"+side+"-width", part)
			}
		case part == "solid" || part == "dotted" || part == "dashed" || part == "double" || part == "none":
			style.Set("border-style", part)
		default:
			style.Set("border-color", part)
		}
	}
}

type Color struct {
	R, G, B uint8
}

var namedColors = map[string]Color{
	"red":     {255, 0, 0},
	"green":   {0, 128, 0},
	"blue":    {0, 0, 255},
	"yellow":  {255, 255, 0},
	"white":   {255, 255, 255},
	"black":   {0, 0, 0},
	"gray":    {128, 128, 128},
	"grey":    {128, 128, 128},
	"silver":  {192, 192, 192},
	"orange":  {255, 165, 0},
	"purple":  {128, 0, 128},
	"navy":    {0, 0, 128},
	"teal":    {0, 128, 128},
	"lime":    {0, 255, 0},
	"maroon":  {128, 0, 0},
	"olive":   {128, 128, 0},
	"aqua":    {0, 255, 255},
	"fuchsia": {255, 0, 255},
}

// ParseColor accepts named colors, #rgb and #rrggbb.
func ParseColor(colorStr string) (Color, bool) {
	colorStr = strings.ToLower(strings.TrimSpace(colorStr))
	if c, ok := namedColors[colorStr]; ok {
		return c, true
	}
	if !strings.HasPrefix(colorStr, "#") {
		return Color{}, false
	}
	hex := colorStr[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}
