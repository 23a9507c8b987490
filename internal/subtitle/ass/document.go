package ass

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNoCues indicates that every supplied segment was empty after escaping
// and trimming. A document with no visible text is invalid input, not a
// degenerate success.
var ErrNoCues = errors.New("no non-empty cues")

// Segment is one timed caption entry supplied to the document builder.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// BuildDocument compiles a complete ASS subtitle document.
//
// width and height must be the probed source resolution: they become
// PlayResX/PlayResY, the coordinate space of every absolute position in the
// document. Segments are emitted in input order; segments whose escaped and
// trimmed text is empty are skipped. Every cue carries an identical
// position/rotation override so the caption renders at the same screen
// location regardless of which cue is active.
//
// The output is deterministic: identical input yields a byte-identical
// document.
func BuildDocument(width, height int, style Resolved, segments []Segment) (string, error) {
	x, y := resolvePosition(width, height, style)
	override := overrideTag(x, y, style.Rotation)

	var b strings.Builder
	b.Grow(512 + len(segments)*96)
	fmt.Fprintf(&b, `[Script Info]
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
WrapStyle: 0
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,%s,%d,%s,&H000000FF,%s,&H64000000,0,0,0,0,100,100,0,%s,1,%d,%d,%d,20,20,0,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`,
		width, height,
		style.Font, style.Size, style.PrimaryColour, style.OutlineColour,
		formatDegrees(style.Rotation), style.Outline, style.Shadow, style.Alignment,
	)

	cues := 0
	for _, segment := range segments {
		text := strings.TrimSpace(EscapeText(segment.Text))
		if text == "" {
			continue
		}
		cues++
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s%s\n",
			Timestamp(segment.Start), Timestamp(segment.End), override, text)
	}
	if cues == 0 {
		return "", ErrNoCues
	}

	return b.String(), nil
}

// resolvePosition determines the absolute cue position in canvas pixel space.
// Unset coordinates default to horizontally centered and near the bottom edge;
// both axes clamp to the canvas bounds.
func resolvePosition(width, height int, style Resolved) (int, int) {
	x := width / 2
	if style.PosX != nil {
		x = int(math.Round(*style.PosX))
	}
	y := int(math.Round(float64(height) * 0.88))
	if style.PosY != nil {
		y = int(math.Round(*style.PosY))
	}
	return clamp(x, width), clamp(y, height)
}

// overrideTag builds the per-cue override directive: anchor, absolute
// position, and a rotation sub-directive only when the angle is non-zero.
func overrideTag(x, y int, rotation float64) string {
	if rotation != 0 {
		return fmt.Sprintf(`{\an%d\pos(%d,%d)\frz%s}`, AlignBottomCenter, x, y, formatDegrees(rotation))
	}
	return fmt.Sprintf(`{\an%d\pos(%d,%d)}`, AlignBottomCenter, x, y)
}

func formatDegrees(degrees float64) string {
	return strconv.FormatFloat(degrees, 'f', -1, 64)
}

func clamp(value, limit int) int {
	if value < 0 {
		return 0
	}
	if value > limit {
		return limit
	}
	return value
}
