package scanner

import (
	"fmt"

	"github.com/dolysis/yary/internal/yamlh"
)

// Decode materializes a DeferredScalar's raw byte range into its final
// unescaped/folded value, per spec.md §4.3.5. This is the lazy half of
// scanning: the boundary walk in scalars.go only ever records where a
// scalar starts and ends; actually interpreting its content happens here,
// on demand, and only once per scalar since the caller is expected to
// cache the result.
func Decode(ds *yamlh.DeferredScalar) ([]byte, error) {
	raw, err := ds.Buffer.SliceAbsolute(ds.Range.From, ds.Range.To)
	if err != nil {
		return nil, err
	}
	switch ds.Kind {
	case yamlh.DeferredPlainKind:
		return decodePlain(raw, ds.Indent), nil
	case yamlh.DeferredFlowKind:
		return decodeFlow(raw, ds.Style == yamlh.SingleQuotedScalarStyle)
	case yamlh.DeferredBlockKind:
		return decodeBlock(raw, ds.Header, ds.Indent), nil
	default:
		return nil, fmt.Errorf("scanner: unknown deferred scalar kind %d", ds.Kind)
	}
}

// decodePlain and decodeFlow re-run the same line-folding state machine
// the teacher's scan_plain_scalar/scan_flow_scalar build inline, except
// over an already-bounded byte slice instead of a live reader.
func decodePlain(raw []byte, indent int) []byte {
	var out, leadingBreak, trailingBreaks, whitespace []byte
	leadingBlanks := false

	i := 0
	for i < len(raw) {
		if yamlh.IsBlank(raw, i) || isBreakAt(raw, i) {
			wasBreak := isBreakAt(raw, i)
			if !leadingBlanks && !wasBreak {
				whitespace = append(whitespace, raw[i])
				i++
				continue
			}
			if wasBreak {
				n := breakWidthAt(raw, i)
				if !leadingBlanks {
					whitespace = whitespace[:0]
					leadingBreak = append(leadingBreak[:0], '\n')
					leadingBlanks = true
				} else {
					trailingBreaks = append(trailingBreaks, '\n')
				}
				i += n
				continue
			}
			i++
			continue
		}

		if leadingBlanks || len(whitespace) > 0 {
			if leadingBlanks {
				if len(leadingBreak) > 0 && leadingBreak[0] == '\n' {
					if len(trailingBreaks) == 0 {
						out = append(out, ' ')
					} else {
						out = append(out, trailingBreaks...)
					}
				} else {
					out = append(out, leadingBreak...)
					out = append(out, trailingBreaks...)
				}
				trailingBreaks = trailingBreaks[:0]
				leadingBreak = leadingBreak[:0]
				leadingBlanks = false
			} else {
				out = append(out, whitespace...)
				whitespace = whitespace[:0]
			}
		}
		out = append(out, raw[i])
		i++
	}
	return out
}

func decodeFlow(raw []byte, single bool) ([]byte, error) {
	if len(raw) < 2 {
		return nil, nil
	}
	body := raw[1 : len(raw)-1] // drop surrounding quotes

	var out, leadingBreak, trailingBreaks, whitespace []byte
	leadingBlanks := false

	i := 0
	for i < len(body) {
		if single && body[i] == '\'' && i+1 < len(body) && body[i+1] == '\'' {
			out = append(out, '\'')
			i += 2
			continue
		}
		if !single && body[i] == '\\' {
			if i+1 < len(body) && isBreakAt(body, i+1) {
				i += 1 + breakWidthAt(body, i+1)
				continue // line continuation, no folding, no output
			}
			decoded, n, err := decodeEscape(body[i:])
			if err != nil {
				return nil, err
			}
			out = append(out, decoded...)
			i += n
			continue
		}
		if isBreakAt(body, i) {
			n := breakWidthAt(body, i)
			if !leadingBlanks {
				whitespace = whitespace[:0]
				leadingBreak = append(leadingBreak[:0], '\n')
				leadingBlanks = true
			} else {
				trailingBreaks = append(trailingBreaks, '\n')
			}
			i += n
			continue
		}
		if body[i] == ' ' || body[i] == '\t' {
			if !leadingBlanks {
				whitespace = append(whitespace, body[i])
			}
			i++
			continue
		}

		if leadingBlanks || len(whitespace) > 0 {
			if leadingBlanks {
				if len(trailingBreaks) == 0 {
					out = append(out, ' ')
				} else {
					out = append(out, trailingBreaks...)
				}
				trailingBreaks = trailingBreaks[:0]
				leadingBreak = leadingBreak[:0]
				leadingBlanks = false
			} else {
				out = append(out, whitespace...)
				whitespace = whitespace[:0]
			}
		}
		out = append(out, body[i])
		i++
	}
	return out, nil
}

func decodeEscape(seq []byte) (decoded []byte, consumed int, err error) {
	c := seq[1]
	switch c {
	case '0':
		return []byte{0}, 2, nil
	case 'a':
		return []byte{'\a'}, 2, nil
	case 'b':
		return []byte{'\b'}, 2, nil
	case 't', '\t':
		return []byte{'\t'}, 2, nil
	case 'n':
		return []byte{'\n'}, 2, nil
	case 'v':
		return []byte{'\v'}, 2, nil
	case 'f':
		return []byte{'\f'}, 2, nil
	case 'r':
		return []byte{'\r'}, 2, nil
	case 'e':
		return []byte{0x1B}, 2, nil
	case ' ':
		return []byte{' '}, 2, nil
	case '"':
		return []byte{'"'}, 2, nil
	case '\'':
		return []byte{'\''}, 2, nil
	case '\\':
		return []byte{'\\'}, 2, nil
	case 'N':
		return []byte{0xC2, 0x85}, 2, nil
	case '_':
		return []byte{0xC2, 0xA0}, 2, nil
	case 'L':
		return []byte{0xE2, 0x80, 0xA8}, 2, nil
	case 'P':
		return []byte{0xE2, 0x80, 0xA9}, 2, nil
	case 'x':
		return decodeHexEscape(seq, 2, 1)
	case 'u':
		return decodeHexEscape(seq, 2, 2)
	case 'U':
		return decodeHexEscape(seq, 2, 4)
	default:
		return nil, 0, yamlh.NewError(yamlh.Position{}, yamlh.UnknownEscapeKind, fmt.Sprintf("found unknown escape character %q", c))
	}
}

func decodeHexEscape(seq []byte, off, bytesN int) ([]byte, int, error) {
	n := bytesN * 2
	if off+n > len(seq) {
		return nil, 0, yamlh.NewError(yamlh.Position{}, yamlh.UnknownEscapeKind, "truncated unicode escape")
	}
	var r rune
	for i := 0; i < n; i++ {
		if !yamlh.IsHex(seq, off+i) {
			return nil, 0, yamlh.NewError(yamlh.Position{}, yamlh.UnknownEscapeKind, "invalid hex digit in unicode escape")
		}
		r = r<<4 | rune(yamlh.AsHex(seq, off+i))
	}
	return []byte(string(r)), off + n, nil
}

// decodeBlock applies the chomping/folding rule of a literal or folded
// block scalar header over its already-bounded raw line content,
// grounded on yaml_parser_scan_block_scalar's trailing-newline handling.
// raw still carries every line's full leading whitespace, since the
// scanner only tracks where the block's content starts and ends, not
// where each line's indentation column falls; decodeBlock strips exactly
// indent columns off each line and treats whatever whitespace remains as
// more-indented content, which per spec.md §4.3.5 a folded scalar must
// preserve literally rather than fold to a space.
func decodeBlock(raw []byte, header yamlh.BlockHeader, indent int) []byte {
	rawLines := splitLines(raw)
	lines := make([]string, len(rawLines))
	moreIndented := make([]bool, len(rawLines))
	for i, l := range rawLines {
		lines[i], moreIndented[i] = stripBlockIndent(l, indent)
	}

	var out []byte
	if header.Literal {
		for i, line := range lines {
			if i > 0 {
				out = append(out, '\n')
			}
			out = append(out, line...)
		}
	} else {
		for i, line := range lines {
			if i > 0 {
				blankBreak := (line == "" && !moreIndented[i]) || (lines[i-1] == "" && !moreIndented[i-1])
				if blankBreak || moreIndented[i] || moreIndented[i-1] {
					out = append(out, '\n')
				} else {
					out = append(out, ' ')
				}
			}
			out = append(out, line...)
		}
	}

	// The join above always bakes in a trailing break run, since raw itself
	// always ends at (and includes) the block's final line break. Strip
	// that run back off before applying chomping, rather than assuming
	// out has none and layering more breaks on top of it.
	trailing := 0
	for trailing < len(out) && out[len(out)-1-trailing] == '\n' {
		trailing++
	}
	out = out[:len(out)-trailing]

	switch header.Chomping {
	case yamlh.StripChomping:
	case yamlh.KeepChomping:
		for i := 0; i < trailing; i++ {
			out = append(out, '\n')
		}
	default: // ClipChomping
		if trailing > 0 {
			out = append(out, '\n')
		}
	}
	return out
}

// stripBlockIndent removes up to indent leading space columns from line,
// reporting whether whitespace remains afterward — i.e. the line is
// indented past the block's established column and so counts as
// more-indented for folding purposes.
func stripBlockIndent(line string, indent int) (string, bool) {
	n := 0
	for n < len(line) && n < indent && line[n] == ' ' {
		n++
	}
	rest := line[n:]
	more := len(rest) > 0 && (rest[0] == ' ' || rest[0] == '\t')
	return rest, more
}

func splitLines(raw []byte) []string {
	var lines []string
	start := 0
	for i := 0; i < len(raw); {
		if isBreakAt(raw, i) {
			lines = append(lines, string(raw[start:i]))
			i += breakWidthAt(raw, i)
			start = i
			continue
		}
		i++
	}
	lines = append(lines, string(raw[start:]))
	return lines
}

func isBreakAt(b []byte, i int) bool {
	return i < len(b) && yamlh.IsBreak(b, i)
}

func breakWidthAt(b []byte, i int) int {
	if yamlh.IsCRLF(b, i) {
		return 2
	}
	if b[i] == 0xC2 || b[i] == 0xE2 {
		return yamlh.Width(b[i])
	}
	return 1
}
