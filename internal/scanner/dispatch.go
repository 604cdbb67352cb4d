package scanner

import (
	"github.com/dolysis/yary/internal/yamlh"
)

// fetchNextToken is the dispatcher from spec.md §4.3.2, grounded on
// yaml_parser_fetch_next_token. Each call scans one token; along the way
// it may also queue BlockEnd or block-collection-start tokens, reserve a
// simple-key slot, or resolve or cancel a pending one.
func (s *Scanner) fetchNextToken() error {
	if !s.streamStartProduced {
		return s.fetchStreamStart()
	}

	if err := s.scanToNextToken(); err != nil {
		return err
	}

	if err := s.unrollIndent(s.pos().Column); err != nil {
		return err
	}

	b, err := s.peek(4)
	if err != nil {
		return err
	}

	if yamlh.IsZ(b, 0) {
		return s.fetchStreamEnd()
	}

	col := s.pos().Column

	if col == 0 && b[0] == '%' {
		return s.fetchDirective()
	}

	if col == 0 && b[0] == '-' && b[1] == '-' && b[2] == '-' && yamlh.IsBlankZ(b, 3) {
		return s.fetchDocumentIndicator(yamlh.DocumentStartToken)
	}
	if col == 0 && b[0] == '.' && b[1] == '.' && b[2] == '.' && yamlh.IsBlankZ(b, 3) {
		return s.fetchDocumentIndicator(yamlh.DocumentEndToken)
	}

	switch b[0] {
	case '[':
		return s.fetchFlowCollectionStart(yamlh.FlowSequenceStartToken, flowSequenceContext)
	case '{':
		return s.fetchFlowCollectionStart(yamlh.FlowMappingStartToken, flowMappingContext)
	case ']':
		return s.fetchFlowCollectionEnd(yamlh.FlowSequenceEndToken)
	case '}':
		return s.fetchFlowCollectionEnd(yamlh.FlowMappingEndToken)
	case ',':
		return s.fetchFlowEntry()
	case '-':
		if yamlh.IsBlankZ(b, 1) {
			return s.fetchBlockEntry()
		}
	case '?':
		if s.flowLevel > 0 || yamlh.IsBlankZ(b, 1) {
			return s.fetchKey()
		}
	case ':':
		if s.flowLevel > 0 || yamlh.IsBlankZ(b, 1) {
			return s.fetchValue()
		}
	case '*':
		return s.fetchAnchor(yamlh.AliasToken)
	case '&':
		return s.fetchAnchor(yamlh.AnchorToken)
	case '!':
		return s.fetchTag()
	case '|':
		if s.flowLevel == 0 {
			return s.fetchBlockScalar(true)
		}
	case '>':
		if s.flowLevel == 0 {
			return s.fetchBlockScalar(false)
		}
	case '\'':
		return s.fetchFlowScalar(yamlh.SingleQuotedScalarStyle)
	case '"':
		return s.fetchFlowScalar(yamlh.DoubleQuotedScalarStyle)
	}

	if isPlainScalarStart(b, s.flowLevel) {
		return s.fetchPlainScalar()
	}

	return s.errf(yamlh.OtherKind, "found character %q that cannot start any token", b[0])
}

// isPlainScalarStart implements the restricted-lookahead rule from
// spec.md §4.3.7: most indicator characters can't start a plain scalar,
// except '-', '?', ':' when followed by a non-space (and, for '?'/':',
// only in block context).
func isPlainScalarStart(b []byte, flowLevel int) bool {
	c := b[0]
	switch {
	case yamlh.IsBlankZ(b, 0):
		return false
	case c == '-':
		return !yamlh.IsBlank(b, 1)
	case (c == '?' || c == ':') && flowLevel == 0:
		return !yamlh.IsBlankZ(b, 1)
	case c == '-' || c == '?' || c == ':' || c == ',' || c == '[' || c == ']' ||
		c == '{' || c == '}' || c == '#' || c == '&' || c == '*' || c == '!' ||
		c == '|' || c == '>' || c == '\'' || c == '"' || c == '%' || c == '@' || c == '`':
		return false
	default:
		return true
	}
}

// scanToNextToken consumes whitespace, line breaks, and comments until
// the cursor sits on the first byte of the next token, per spec.md's
// notes on comment/whitespace skipping.
func (s *Scanner) scanToNextToken() error {
	for {
		b, err := s.peek(3)
		if err != nil {
			return err
		}
		switch {
		case s.pos().Column == 0 && yamlh.IsBOM(b):
			s.skip(3)
		case b[0] == ' ':
			s.skip(1)
		case b[0] == '\t' && (s.flowLevel > 0 || !s.simpleKeyAllowed):
			s.skip(1)
		case yamlh.IsBreak(b, 0):
			n, err := s.peekBreakWidth()
			if err != nil {
				return err
			}
			s.skip(n)
			if s.flowLevel == 0 {
				s.simpleKeyAllowed = true
			}
		case b[0] == '#':
			for {
				b, err := s.peek(1)
				if err != nil {
					return err
				}
				if yamlh.IsBreakZ(b, 0) {
					break
				}
				s.skip(1)
			}
		default:
			return nil
		}
	}
}

func (s *Scanner) peekBreakWidth() (int, error) {
	b, err := s.peek(2)
	if err != nil {
		return 0, err
	}
	if yamlh.IsCRLF(b, 0) {
		return 2, nil
	}
	return 1, nil
}

func (s *Scanner) fetchStreamStart() error {
	s.indent = -1
	s.simpleKeyAllowed = true
	s.streamStartProduced = true
	s.push(yamlh.Token{Type: yamlh.StreamStartToken, Start: s.pos(), End: s.pos(), Encoding: s.encoding})
	return nil
}

func (s *Scanner) fetchStreamEnd() error {
	if err := s.unrollIndent(-1); err != nil {
		return err
	}
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false
	s.streamEndProduced = true
	s.push(yamlh.Token{Type: yamlh.StreamEndToken, Start: s.pos(), End: s.pos()})
	return nil
}
