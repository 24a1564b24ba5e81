package collection

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/othala/internal/apperr"
)

// Reserved metadata keys.
const (
	MetaDisplayName = "displayname"
	MetaColor       = "color"
)

// MetadataStore is the key/value surface of a collection. Capabilities
// like DisplayName and ColorSetting compose over it by delegation.
type MetadataStore interface {
	GetMeta(key string) (string, bool, error)
	SetMeta(key, value string) error
}

// DisplayName reads and writes the collection display name.
type DisplayName struct {
	Store MetadataStore
}

func (d DisplayName) Get() (string, bool, error) {
	return d.Store.GetMeta(MetaDisplayName)
}

func (d DisplayName) Set(name string) error {
	return d.Store.SetMeta(MetaDisplayName, name)
}

// Color is a full-form #RRGGBB color value, stored upper-cased.
type Color string

// ParseColor validates a color string: leading '#', exactly seven
// characters (no #fff shorthand), hex digits only.
func ParseColor(s string) (Color, error) {
	if s == "" {
		return "", fmt.Errorf("%w: color is empty", apperr.ErrInvalidInput)
	}
	if !strings.HasPrefix(s, "#") {
		return "", fmt.Errorf("%w: color must start with '#'", apperr.ErrInvalidInput)
	}
	if len(s) != 7 {
		return "", fmt.Errorf("%w: color must be full-form #RRGGBB, got %q", apperr.ErrInvalidInput, s)
	}
	upper := strings.ToUpper(s)
	for _, r := range upper[1:] {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			return "", fmt.Errorf("%w: color has non-hex digit %q", apperr.ErrInvalidInput, r)
		}
	}
	return Color(upper), nil
}

// RGB returns the three channel values.
func (c Color) RGB() (r, g, b uint8, err error) {
	if len(c) != 7 {
		return 0, 0, 0, fmt.Errorf("%w: malformed color %q", apperr.ErrInvalidInput, string(c))
	}
	var channels [3]uint8
	for i := 0; i < 3; i++ {
		v, perr := strconv.ParseUint(string(c[1+2*i:3+2*i]), 16, 8)
		if perr != nil {
			return 0, 0, 0, fmt.Errorf("%w: malformed color %q", apperr.ErrInvalidInput, string(c))
		}
		channels[i] = uint8(v)
	}
	return channels[0], channels[1], channels[2], nil
}

// ColorSetting reads and writes the collection color. An invalid stored
// value reads as absent rather than surfacing a parse error.
type ColorSetting struct {
	Store MetadataStore
}

func (cs ColorSetting) Get() (Color, bool, error) {
	value, ok, err := cs.Store.GetMeta(MetaColor)
	if err != nil || !ok {
		return "", false, err
	}
	color, perr := ParseColor(value)
	if perr != nil {
		return "", false, nil
	}
	return color, true, nil
}

func (cs ColorSetting) Set(value string) error {
	color, err := ParseColor(value)
	if err != nil {
		return err
	}
	return cs.Store.SetMeta(MetaColor, string(color))
}
