package storage

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/starford/othala/internal/apperr"
)

// lookupEncoding resolves an IANA charset name. UTF-8 (and an empty name)
// resolve to nil, which the encode/decode helpers treat as validated
// identity rather than going through a transform.
func lookupEncoding(charset string) (encoding.Encoding, error) {
	if charset == "" || strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "utf8") {
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil {
		return nil, fmt.Errorf("storage: lookup encoding %q: %w", charset, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("storage: unsupported encoding %q", charset)
	}
	return enc, nil
}

// encode converts content to the on-disk byte representation. Content
// that is not valid text for the configured encoding is InvalidInput.
func (d *Dir) encode(content string) ([]byte, error) {
	if d.enc == nil {
		if !utf8.ValidString(content) {
			return nil, fmt.Errorf("%w: content is not valid UTF-8", apperr.ErrInvalidInput)
		}
		return []byte(content), nil
	}
	data, err := d.enc.NewEncoder().String(content)
	if err != nil {
		return nil, fmt.Errorf("%w: content not representable in %s: %v", apperr.ErrInvalidInput, d.charset, err)
	}
	return []byte(data), nil
}

// decode converts on-disk bytes back to text.
func (d *Dir) decode(data []byte) (string, error) {
	if d.enc == nil {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: stored content is not valid UTF-8", apperr.ErrInvalidInput)
		}
		return string(data), nil
	}
	content, err := d.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: stored content not decodable as %s: %v", apperr.ErrInvalidInput, d.charset, err)
	}
	return string(content), nil
}
