package domain

import (
	"strings"

	dErrors "paygate/pkg/domain-errors"
)

// Address is a 20-byte EVM account identifier in its 0x-prefixed hex form.
// Addresses compare case-insensitively; the checksum casing carried by
// callers is preserved for display but never used for equality.
type Address string

const addressHexLen = 40

// ParseAddress validates the fixed-length hex form and returns the address.
func ParseAddress(s string) (Address, error) {
	a := Address(s)
	if !a.Valid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid address format")
	}
	return a, nil
}

// Valid reports whether the address is a 0x-prefixed 40-digit hex string.
func (a Address) Valid() bool {
	s := string(a)
	if len(s) != 2+addressHexLen || !strings.HasPrefix(s, "0x") {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Normalized returns the lowercase form used as a map/store key.
func (a Address) Normalized() Address {
	return Address(strings.ToLower(string(a)))
}

// Equal compares two addresses case-insensitively.
func (a Address) Equal(b Address) bool {
	return strings.EqualFold(string(a), string(b))
}

func (a Address) IsZero() bool {
	return a == ""
}

func (a Address) String() string {
	return string(a)
}
