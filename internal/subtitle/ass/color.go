package ass

import (
	"fmt"
	"math"
	"strings"
)

const whiteHexBody = "FFFFFF"

// PackColor converts a CSS hex color and an optional opacity percentage into
// the packed ASS colour value &HAABBGGRR.
//
// The hash prefix is optional and any body that is not exactly six hex
// characters falls back to white. ASS stores channels in blue-green-red order
// and inverts alpha: 0x00 is fully opaque, 0xFF fully transparent, so
// alpha = round((100 - opacity) * 255 / 100). A nil opacity means opaque and
// values outside [0, 100] are clamped so the alpha byte stays in range.
func PackColor(hexColor string, opacity *int) string {
	body := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(hexColor), "#"))
	if len(body) != 6 || !isHex(body) {
		body = whiteHexBody
	}

	alpha := 0
	if opacity != nil {
		pct := *opacity
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		alpha = int(math.Round(float64(100-pct) * 255.0 / 100.0))
	}

	rr, gg, bb := body[0:2], body[2:4], body[4:6]
	return fmt.Sprintf("&H%02X%s%s%s", alpha, bb, gg, rr)
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
