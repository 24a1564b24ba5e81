package collection

import (
	"errors"
	"testing"

	"github.com/starford/othala/internal/apperr"
)

func TestParseColor(t *testing.T) {
	color, err := ParseColor("#ff8800")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if color != "#FF8800" {
		t.Errorf("color = %q, want upper-cased", color)
	}

	bad := []string{"", "ff8800", "#fff", "#ff88001", "#gg0000"}
	for _, s := range bad {
		if _, err := ParseColor(s); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("ParseColor(%q) err = %v, want InvalidInput", s, err)
		}
	}
}

func TestColorRGB(t *testing.T) {
	color, _ := ParseColor("#1A2B3C")
	r, g, b, err := color.RGB()
	if err != nil {
		t.Fatalf("RGB: %v", err)
	}
	if r != 0x1A || g != 0x2B || b != 0x3C {
		t.Errorf("rgb = %d,%d,%d", r, g, b)
	}
}

func TestColorSetting(t *testing.T) {
	col := tempCollection(t, ".txt")
	cs := ColorSetting{Store: col}

	if _, ok, err := cs.Get(); err != nil || ok {
		t.Fatalf("unset color: ok = %v, err = %v", ok, err)
	}

	if err := cs.Set("#ff0000"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	color, ok, err := cs.Get()
	if err != nil || !ok {
		t.Fatalf("Get: ok = %v, err = %v", ok, err)
	}
	if color != "#FF0000" {
		t.Errorf("color = %q", color)
	}

	if err := cs.Set("red"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("Set(red) err = %v, want InvalidInput", err)
	}
}

func TestColorSettingInvalidStoredValueReadsAbsent(t *testing.T) {
	col := tempCollection(t, ".txt")
	if err := col.SetMeta(MetaColor, "not-a-color"); err != nil {
		t.Fatal(err)
	}
	color, ok, err := ColorSetting{Store: col}.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok || color != "" {
		t.Errorf("invalid stored color should read absent, got %q ok=%v", color, ok)
	}
}

func TestDisplayName(t *testing.T) {
	col := tempCollection(t, ".txt")
	dn := DisplayName{Store: col}

	if _, ok, err := dn.Get(); err != nil || ok {
		t.Fatalf("unset displayname: ok = %v, err = %v", ok, err)
	}
	if err := dn.Set("Team Calendar"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	name, ok, err := dn.Get()
	if err != nil || !ok {
		t.Fatalf("Get: ok = %v, err = %v", ok, err)
	}
	if name != "Team Calendar" {
		t.Errorf("name = %q", name)
	}
}
