package collection

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// safeChars is the set of identifier characters that map directly onto a
// filesystem-safe href. Anything outside it (path separators, traversal
// characters, control bytes) forces a random identifier instead.
const safeChars = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789_.+-"

func identSafe(ident string) bool {
	if ident == "" {
		return false
	}
	for _, r := range ident {
		if !strings.ContainsRune(safeChars, r) {
			return false
		}
	}
	return true
}

// randomIdent returns a 32-character lowercase hex identifier derived
// from a v4 UUID.
func randomIdent() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// href derives the candidate href for an identifier hint: the hint
// itself when it is safe, a random identifier otherwise, plus the
// collection's file extension.
func (c *Collection) href(ident string) string {
	if !identSafe(ident) {
		ident = randomIdent()
	}
	return ident + c.ext
}
