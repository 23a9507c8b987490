package ass

import "testing"

func TestResolveDefaults(t *testing.T) {
	resolved := Resolve(nil)
	if resolved.Font != "Inter" {
		t.Fatalf("unexpected default font: %q", resolved.Font)
	}
	if resolved.Size != 28 {
		t.Fatalf("unexpected default size: %d", resolved.Size)
	}
	if resolved.PrimaryColour != "&H00FFFFFF" {
		t.Fatalf("unexpected default primary colour: %q", resolved.PrimaryColour)
	}
	if resolved.OutlineColour != "&H00000000" {
		t.Fatalf("unexpected default outline colour: %q", resolved.OutlineColour)
	}
	if resolved.Outline != 3 || resolved.Shadow != 0 {
		t.Fatalf("unexpected outline/shadow: %d/%d", resolved.Outline, resolved.Shadow)
	}
	if resolved.Rotation != 0 {
		t.Fatalf("unexpected rotation: %v", resolved.Rotation)
	}
	if resolved.Alignment != AlignBottomCenter {
		t.Fatalf("unexpected alignment: %d", resolved.Alignment)
	}
	if resolved.PosX != nil || resolved.PosY != nil {
		t.Fatal("expected unset position by default")
	}
}

func TestResolveFontSuffixes(t *testing.T) {
	cases := []struct {
		name   string
		style  Style
		expect string
	}{
		{"plain", Style{FontFamily: "Inter"}, "Inter"},
		{"bold", Style{FontFamily: "Inter", Bold: true}, "Inter Bold"},
		{"italic", Style{FontFamily: "Inter", Italic: true}, "Inter Italic"},
		{"bold italic", Style{FontFamily: "Roboto", Bold: true, Italic: true}, "Roboto Bold Italic"},
	}
	for _, tc := range cases {
		if got := Resolve(&tc.style).Font; got != tc.expect {
			t.Fatalf("%s: font = %q, want %q", tc.name, got, tc.expect)
		}
	}
}

func TestResolveAppliesOverrides(t *testing.T) {
	opacity := 40
	stroke := 5
	shadow := 2
	style := Style{
		FontFamily:  "Roboto",
		FontSizePx:  36,
		Color:       "#36CE5C",
		Opacity:     &opacity,
		StrokePx:    &stroke,
		StrokeColor: "#102030",
		ShadowPx:    &shadow,
		Rotation:    12.5,
	}
	resolved := Resolve(&style)
	// alpha = round((100-40)*255/100) = 153 = 0x99
	if resolved.PrimaryColour != "&H995CCE36" {
		t.Fatalf("unexpected primary colour: %q", resolved.PrimaryColour)
	}
	if resolved.OutlineColour != "&H00302010" {
		t.Fatalf("unexpected outline colour: %q", resolved.OutlineColour)
	}
	if resolved.Outline != 5 || resolved.Shadow != 2 {
		t.Fatalf("unexpected outline/shadow: %d/%d", resolved.Outline, resolved.Shadow)
	}
	if resolved.Rotation != 12.5 {
		t.Fatalf("unexpected rotation: %v", resolved.Rotation)
	}
}

func TestResolveIgnoresStrokeColorWithoutHash(t *testing.T) {
	resolved := Resolve(&Style{StrokeColor: "ff0000"})
	if resolved.OutlineColour != "&H00000000" {
		t.Fatalf("expected default black outline, got %q", resolved.OutlineColour)
	}
}
