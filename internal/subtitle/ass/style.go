package ass

import "strings"

// Render attribute defaults applied when a project has no stored style or the
// style omits a field.
const (
	DefaultFontFamily = "Inter"
	DefaultFontSizePx = 28
	DefaultOutlinePx  = 3

	// AlignBottomCenter is the numeric ASS alignment code for bottom-center,
	// the only anchor supported by this renderer.
	AlignBottomCenter = 2
)

// Style is the open caption style attribute set attached to a project.
// Pointer fields distinguish "unset" from zero values. The JSON field names
// are the persistence and API wire format; storage treats the whole document
// as opaque and only the render path interprets it.
type Style struct {
	FontFamily  string   `json:"fontFamily,omitempty"`
	FontSizePx  int      `json:"fontSizePx,omitempty"`
	Bold        bool     `json:"bold,omitempty"`
	Italic      bool     `json:"italic,omitempty"`
	Color       string   `json:"color,omitempty"`
	Opacity     *int     `json:"opacity,omitempty"`
	StrokePx    *int     `json:"strokePx,omitempty"`
	StrokeColor string   `json:"strokeColor,omitempty"`
	ShadowPx    *int     `json:"shadowPx,omitempty"`
	Rotation    float64  `json:"rotation,omitempty"`
	PosX        *float64 `json:"posX,omitempty"`
	PosY        *float64 `json:"posY,omitempty"`
	Align       string   `json:"align,omitempty"`
}

// Resolved carries fully determined render attributes: every optional style
// field merged with defaults and colors packed into ASS form.
type Resolved struct {
	Font          string
	Size          int
	PrimaryColour string
	OutlineColour string
	Outline       int
	Shadow        int
	Rotation      float64
	PosX          *float64
	PosY          *float64
	Alignment     int
}

// Resolve merges an optional style override with the fixed defaults.
// The effective font name gains a Bold/Italic suffix matching how the font
// assets are named on disk, so the burn filter can find the right face.
func Resolve(style *Style) Resolved {
	if style == nil {
		style = &Style{}
	}

	family := strings.TrimSpace(style.FontFamily)
	if family == "" {
		family = DefaultFontFamily
	}
	font := family
	switch {
	case style.Bold && style.Italic:
		font = family + " Bold Italic"
	case style.Bold:
		font = family + " Bold"
	case style.Italic:
		font = family + " Italic"
	}

	size := style.FontSizePx
	if size <= 0 {
		size = DefaultFontSizePx
	}

	color := style.Color
	if strings.TrimSpace(color) == "" {
		color = "#FFFFFF"
	}

	outlineColour := PackColor("#000000", nil)
	if strings.HasPrefix(style.StrokeColor, "#") {
		outlineColour = PackColor(style.StrokeColor, nil)
	}

	outline := DefaultOutlinePx
	if style.StrokePx != nil {
		outline = *style.StrokePx
	}
	shadow := 0
	if style.ShadowPx != nil {
		shadow = *style.ShadowPx
	}

	return Resolved{
		Font:          font,
		Size:          size,
		PrimaryColour: PackColor(color, style.Opacity),
		OutlineColour: outlineColour,
		Outline:       outline,
		Shadow:        shadow,
		Rotation:      style.Rotation,
		PosX:          style.PosX,
		PosY:          style.PosY,
		Alignment:     AlignBottomCenter,
	}
}
