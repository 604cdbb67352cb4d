package scanner

import "github.com/dolysis/yary/internal/yamlh"

// fetchPlainScalar and fetchFlowScalar/fetchBlockScalar locate the extent
// of a scalar and record it as a yamlh.DeferredScalar rather than folding
// and unescaping it immediately, per spec.md §4.3.5. The boundary walk
// below mirrors the teacher's combined scan-and-fold loop but only tracks
// where the token ends; internalScan/decode.go redoes the actual
// fold/escape pass later, lazily, directly over the retained byte range.

func (s *Scanner) fetchPlainScalar() error {
	if err := s.saveSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false

	tok, err := s.scanPlainScalar()
	if err != nil {
		return err
	}
	s.push(*tok)
	return nil
}

func (s *Scanner) scanPlainScalar() (*yamlh.Token, error) {
	indent := s.indent + 1
	start := s.pos()
	end := start
	from := s.r.Mark()
	to := from

	leadingBlanks := false
	var stats yamlh.Stats

	for {
		b, err := s.peek(4)
		if err != nil {
			return nil, err
		}
		if s.pos().Column == 0 &&
			((b[0] == '-' && b[1] == '-' && b[2] == '-') || (b[0] == '.' && b[1] == '.' && b[2] == '.')) &&
			yamlh.IsBlankZ(b, 3) {
			break
		}
		if b[0] == '#' {
			break
		}

		brokeOnContentEnd := false
		for {
			b, err := s.peek(2)
			if err != nil {
				return nil, err
			}
			if yamlh.IsBlankZ(b, 0) {
				break
			}
			if (b[0] == ':' && yamlh.IsBlankZ(b, 1)) ||
				(s.flowLevel > 0 && (b[0] == ',' || b[0] == '?' || b[0] == '[' || b[0] == ']' || b[0] == '{' || b[0] == '}')) {
				brokeOnContentEnd = true
				break
			}
			s.skip(1)
			end = s.pos()
			to = s.r.Mark()
		}
		if brokeOnContentEnd {
			break
		}

		b, err = s.peek(1)
		if err != nil {
			return nil, err
		}
		if !(yamlh.IsBlank(b, 0) || yamlh.IsBreak(b, 0)) {
			break
		}

		for {
			b, err := s.peek(2)
			if err != nil {
				return nil, err
			}
			if !(yamlh.IsBlank(b, 0) || yamlh.IsBreak(b, 0)) {
				break
			}
			if yamlh.IsBlank(b, 0) {
				if leadingBlanks && s.pos().Column < indent && b[0] == '\t' {
					return nil, s.errf(yamlh.InvalidTabKind, "found a tab character that violates indentation")
				}
				s.skip(1)
			} else {
				n, err := s.peekBreakWidth()
				if err != nil {
					return nil, err
				}
				s.skip(n)
				leadingBlanks = true
				stats.Lines++
			}
		}

		if s.flowLevel == 0 && s.pos().Column < indent {
			break
		}
	}

	if leadingBlanks {
		s.simpleKeyAllowed = true
	}

	return &yamlh.Token{
		Type:  yamlh.ScalarToken,
		Start: start,
		End:   end,
		Style: yamlh.PlainScalarStyle,
		Scalar: yamlh.ScalarPayload{Deferred: &yamlh.DeferredScalar{
			Kind:   yamlh.DeferredPlainKind,
			Range:  yamlh.ByteRange{From: from, To: to},
			Indent: indent,
			Style:  yamlh.PlainScalarStyle,
			Stats:  stats,
			Start:  start,
			Buffer: s.r,
		}},
	}, nil
}

func (s *Scanner) fetchFlowScalar(style yamlh.ScalarStyle) error {
	if err := s.saveSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false

	tok, err := s.scanFlowScalar(style)
	if err != nil {
		return err
	}
	s.push(*tok)
	return nil
}

// scanFlowScalar walks a single- or double-quoted scalar to its closing
// quote, taking care to recognize '' and \" as escaped quotes rather than
// terminators, per yaml_parser_scan_flow_scalar. The raw range retained
// for Materialize includes both quote characters, since unescaping needs
// to see them to tell an escaped quote from a terminator.
func (s *Scanner) scanFlowScalar(style yamlh.ScalarStyle) (*yamlh.Token, error) {
	single := style == yamlh.SingleQuotedScalarStyle
	start := s.pos()
	from := s.r.Mark()
	s.skip(1) // opening quote

	var stats yamlh.Stats
	for {
		b, err := s.peek(2)
		if err != nil {
			return nil, err
		}
		if yamlh.IsZ(b, 0) {
			return nil, s.errf(yamlh.InvalidFlowScalarKind, "found unexpected end of stream while scanning a quoted scalar")
		}
		if single && b[0] == '\'' {
			if b[1] == '\'' {
				s.skip(2)
				continue
			}
			s.skip(1)
			break
		}
		if !single && b[0] == '"' {
			s.skip(1)
			break
		}
		if !single && b[0] == '\\' {
			// Skip the escape and whatever it covers; \xXX/\uXXXX/\UXXXXXXXX
			// widths are re-validated during Materialize. Line continuation
			// ('\' followed by a break) is skipped here too.
			if yamlh.IsBreak(b, 1) {
				s.skip(1)
				n, err := s.peekBreakWidth()
				if err != nil {
					return nil, err
				}
				s.skip(n)
				stats.Lines++
				continue
			}
			n, err := escapeWidth(b[1])
			if err != nil {
				return nil, err
			}
			if _, err := s.peek(n + 2); err != nil {
				return nil, err
			}
			s.skip(n + 2)
			continue
		}
		if yamlh.IsBreak(b, 0) {
			n, err := s.peekBreakWidth()
			if err != nil {
				return nil, err
			}
			s.skip(n)
			stats.Lines++
			continue
		}
		s.skip(1)
	}

	end := s.pos()
	to := s.r.Mark()

	return &yamlh.Token{
		Type:  yamlh.ScalarToken,
		Start: start,
		End:   end,
		Style: style,
		Scalar: yamlh.ScalarPayload{Deferred: &yamlh.DeferredScalar{
			Kind:   yamlh.DeferredFlowKind,
			Range:  yamlh.ByteRange{From: from, To: to},
			Style:  style,
			Stats:  stats,
			Start:  start,
			Buffer: s.r,
		}},
	}, nil
}

// escapeWidth returns the number of bytes following '\' and the escape
// letter itself that belong to the escape sequence, per the YAML 1.2
// double-quoted escape table (e.g. \xAB is 2 extra hex digits, a \u escape
// is 4, \U0010FFFF is 8; single-letter escapes and line continuations are 0).
func escapeWidth(c byte) (int, error) {
	switch c {
	case '0', 'a', 'b', 't', '\t', 'n', 'v', 'f', 'r', 'e', '"', '\'', '\\',
		'N', '_', 'L', 'P', ' ':
		return 0, nil
	case 'x':
		return 2, nil
	case 'u':
		return 4, nil
	case 'U':
		return 8, nil
	default:
		return 0, yamlh.NewError(yamlh.Position{}, yamlh.UnknownEscapeKind, "found unknown escape character")
	}
}

func (s *Scanner) fetchBlockScalar(literal bool) error {
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = true

	tok, err := s.scanBlockScalar(literal)
	if err != nil {
		return err
	}
	s.push(*tok)
	return nil
}

// scanBlockScalar consumes a '|' or '>' header, then every line whose
// indentation is at or beyond the block's established indentation column,
// grounded on yaml_parser_scan_block_scalar.
func (s *Scanner) scanBlockScalar(literal bool) (*yamlh.Token, error) {
	start := s.pos()
	s.skip(1) // '|' or '>'

	header, err := s.scanBlockScalarHeader(literal, start)
	if err != nil {
		return nil, err
	}

	// Eat the rest of the header line (trailing blanks/comment/break).
	if err := s.eatRestOfDirectiveLine(start); err != nil {
		return nil, err
	}

	blockIndent := header.Indent
	increment := blockIndent == 0
	currentIndent := s.indent + 1
	if !increment {
		currentIndent = blockIndent
	}

	from := s.r.Mark()
	to := from
	var stats yamlh.Stats
	end := s.pos()

	// Skip leading all-blank lines while we may still need to auto-detect
	// the indentation from the first non-empty line.
	for {
		b, err := s.peek(1)
		if err != nil {
			return nil, err
		}
		if yamlh.IsZ(b, 0) {
			break
		}
		// Measure this line's indentation.
		for {
			b, err := s.peek(1)
			if err != nil {
				return nil, err
			}
			if b[0] != ' ' {
				break
			}
			s.skip(1)
		}
		b, err = s.peek(1)
		if err != nil {
			return nil, err
		}
		blank := yamlh.IsBreakZ(b, 0)

		if increment && !blank {
			currentIndent = s.pos().Column
			if currentIndent < s.indent+1 {
				currentIndent = s.indent + 1
			}
			increment = false
		}

		if !blank && s.pos().Column < currentIndent {
			break
		}
		if blank && s.pos().Column < currentIndent {
			// Blank line shorter than the block indent still counts as
			// content (an empty line) as long as we have not reached EOF.
			if yamlh.IsZ(b, 0) {
				break
			}
			n, err := s.peekBreakWidth()
			if err != nil {
				return nil, err
			}
			if n == 0 {
				break
			}
			s.skip(n)
			stats.Lines++
			to = s.r.Mark()
			continue
		}

		// Consume the rest of the (non-blank) line.
		for {
			b, err := s.peek(1)
			if err != nil {
				return nil, err
			}
			if yamlh.IsBreakZ(b, 0) {
				break
			}
			s.skip(1)
		}
		end = s.pos()
		to = s.r.Mark()

		b, err = s.peek(1)
		if err != nil {
			return nil, err
		}
		if yamlh.IsZ(b, 0) {
			break
		}
		n, err := s.peekBreakWidth()
		if err != nil {
			return nil, err
		}
		s.skip(n)
		stats.Lines++
		to = s.r.Mark()
	}

	style := yamlh.FoldedScalarStyle
	if literal {
		style = yamlh.LiteralScalarStyle
	}

	return &yamlh.Token{
		Type:  yamlh.ScalarToken,
		Start: start,
		End:   end,
		Style: style,
		Scalar: yamlh.ScalarPayload{Deferred: &yamlh.DeferredScalar{
			Kind:   yamlh.DeferredBlockKind,
			Range:  yamlh.ByteRange{From: from, To: to},
			Indent: currentIndent,
			Style:  style,
			Header: header,
			Stats:  stats,
			Start:  start,
			Buffer: s.r,
		}},
	}, nil
}

func (s *Scanner) scanBlockScalarHeader(literal bool, start yamlh.Position) (yamlh.BlockHeader, error) {
	header := yamlh.BlockHeader{Literal: literal, Chomping: yamlh.ClipChomping}
	chompSeen, indentSeen := false, false

	for i := 0; i < 2; i++ {
		b, err := s.peek(1)
		if err != nil {
			return header, err
		}
		switch {
		case !chompSeen && (b[0] == '+' || b[0] == '-'):
			if b[0] == '+' {
				header.Chomping = yamlh.KeepChomping
			} else {
				header.Chomping = yamlh.StripChomping
			}
			chompSeen = true
			s.skip(1)
		case !indentSeen && yamlh.IsDigit(b, 0):
			if b[0] == '0' {
				return header, s.errf(yamlh.InvalidBlockScalarKind, "found an indentation indicator equal to 0")
			}
			header.Indent = yamlh.AsDigit(b, 0)
			indentSeen = true
			s.skip(1)
		default:
			return header, nil
		}
	}
	return header, nil
}
