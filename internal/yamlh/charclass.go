package yamlh

// Character classification helpers, ported byte-for-byte from the
// teacher's internal/yamlh/privateh.go. YAML's structural indicators are
// all single ASCII bytes, so these operate directly on raw bytes rather
// than decoded runes — exactly as libyaml (and the teacher's port of it)
// does.

// IsAlpha reports whether b[i] is a letter, digit, '_', or '-'.
func IsAlpha(b []byte, i int) bool {
	return b[i] >= '0' && b[i] <= '9' || b[i] >= 'A' && b[i] <= 'Z' || b[i] >= 'a' && b[i] <= 'z' || b[i] == '_' || b[i] == '-'
}

// IsDigit reports whether b[i] is an ASCII digit.
func IsDigit(b []byte, i int) bool {
	return b[i] >= '0' && b[i] <= '9'
}

// AsDigit returns the numeric value of the digit at b[i].
func AsDigit(b []byte, i int) int {
	return int(b[i]) - '0'
}

// IsHex reports whether b[i] is a hex digit.
func IsHex(b []byte, i int) bool {
	return b[i] >= '0' && b[i] <= '9' || b[i] >= 'A' && b[i] <= 'F' || b[i] >= 'a' && b[i] <= 'f'
}

// AsHex returns the numeric value of the hex digit at b[i].
func AsHex(b []byte, i int) int {
	c := b[i]
	if c >= 'A' && c <= 'F' {
		return int(c) - 'A' + 10
	}
	if c >= 'a' && c <= 'f' {
		return int(c) - 'a' + 10
	}
	return int(c) - '0'
}

// IsPrintable reports whether the character starting at b[0] can be
// printed unescaped, per the YAML "printable character" production.
func IsPrintable(b []byte) bool {
	return (b[0] == 0x0A) ||
		(b[0] >= 0x20 && b[0] <= 0x7E) ||
		(b[0] == 0xC2 && b[1] >= 0xA0) ||
		(b[0] > 0xC2 && b[0] < 0xED) ||
		(b[0] == 0xED && b[1] < 0xA0) ||
		(b[0] == 0xEE) ||
		(b[0] == 0xEF &&
			!(b[1] == 0xBB && b[2] == 0xBF) &&
			!(b[1] == 0xBF && (b[2] == 0xBE || b[2] == 0xBF)))
}

// IsZ reports whether b[i] is NUL (used as the synthetic end-of-input
// marker once the Reader pads past the last real byte).
func IsZ(b []byte, i int) bool { return b[i] == 0x00 }

// IsBOM reports whether the buffer starts with a UTF-8 BOM.
func IsBOM(b []byte) bool {
	return b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF
}

// IsSpace reports whether b[i] is ' '.
func IsSpace(b []byte, i int) bool { return b[i] == ' ' }

// IsTab reports whether b[i] is a tab.
func IsTab(b []byte, i int) bool { return b[i] == '\t' }

// IsBlank reports whether b[i] is a space or tab.
func IsBlank(b []byte, i int) bool { return b[i] == ' ' || b[i] == '\t' }

// IsBreak reports whether b[i] begins a line break (LF, CR, NEL, LS, PS).
func IsBreak(b []byte, i int) bool {
	return b[i] == '\r' ||
		b[i] == '\n' ||
		b[i] == 0xC2 && b[i+1] == 0x85 ||
		b[i] == 0xE2 && b[i+1] == 0x80 && b[i+2] == 0xA8 ||
		b[i] == 0xE2 && b[i+1] == 0x80 && b[i+2] == 0xA9
}

// IsCRLF reports whether b[i:i+2] is a CRLF pair.
func IsCRLF(b []byte, i int) bool {
	return b[i] == '\r' && b[i+1] == '\n'
}

// IsBreakZ reports whether b[i] is a line break or NUL.
func IsBreakZ(b []byte, i int) bool {
	return IsBreak(b, i) || IsZ(b, i)
}

// IsSpaceZ reports whether b[i] is a space, line break, or NUL.
func IsSpaceZ(b []byte, i int) bool {
	return b[i] == ' ' || IsBreakZ(b, i)
}

// IsBlankZ reports whether b[i] is blank, a line break, or NUL.
func IsBlankZ(b []byte, i int) bool {
	return b[i] == ' ' || b[i] == '\t' || IsBreakZ(b, i)
}

// Width returns the byte width of the UTF-8 sequence starting with b, or 0
// if b is not a valid leading byte.
func Width(b byte) int {
	switch {
	case b&0x80 == 0x00:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}
