package scanner

import "github.com/dolysis/yary/internal/yamlh"

func (s *Scanner) fetchAnchor(typ yamlh.TokenType) error {
	if err := s.saveSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false

	tok, err := s.scanAnchor(typ)
	if err != nil {
		return err
	}
	s.push(*tok)
	return nil
}

func (s *Scanner) scanAnchor(typ yamlh.TokenType) (*yamlh.Token, error) {
	start := s.pos()
	s.skip(1) // '&' or '*'

	var name []byte
	for {
		b, err := s.peek(1)
		if err != nil {
			return nil, err
		}
		if !yamlh.IsAlpha(b, 0) {
			break
		}
		name = append(name, b[0])
		s.skip(1)
	}

	b, err := s.peek(1)
	if err != nil {
		return nil, err
	}
	ok := yamlh.IsBlankZ(b, 0) || b[0] == '?' || b[0] == ':' || b[0] == ',' ||
		b[0] == ']' || b[0] == '}' || b[0] == '%' || b[0] == '@' || b[0] == '`'
	if len(name) == 0 || !ok {
		return nil, s.errf(yamlh.InvalidAnchorNameKind, "did not find expected alphabetic or numeric character")
	}

	return &yamlh.Token{Type: typ, Start: start, End: s.pos(), Value: name}, nil
}

func (s *Scanner) fetchTag() error {
	if err := s.saveSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false

	tok, err := s.scanTag()
	if err != nil {
		return err
	}
	s.push(*tok)
	return nil
}

func (s *Scanner) scanTag() (*yamlh.Token, error) {
	start := s.pos()
	var handle, suffix []byte

	b, err := s.peek(2)
	if err != nil {
		return nil, err
	}

	if b[1] == '<' {
		s.skip(2) // "!<"
		if err := s.scanTagURI(false, nil, start, &suffix); err != nil {
			return nil, err
		}
		b, err := s.peek(1)
		if err != nil {
			return nil, err
		}
		if b[0] != '>' {
			return nil, s.errf(yamlh.InvalidTagSuffixKind, "did not find the expected '>'")
		}
		s.skip(1)
	} else {
		if err := s.scanTagHandle(false, start, &handle); err != nil {
			return nil, err
		}
		if handle[0] == '!' && len(handle) > 1 && handle[len(handle)-1] == '!' {
			if err := s.scanTagURI(false, nil, start, &suffix); err != nil {
				return nil, err
			}
		} else {
			if err := s.scanTagURI(false, handle, start, &suffix); err != nil {
				return nil, err
			}
			handle = []byte{'!'}
			if len(suffix) == 0 {
				handle, suffix = suffix, handle
			}
		}
	}

	b, err = s.peek(1)
	if err != nil {
		return nil, err
	}
	if !yamlh.IsBlankZ(b, 0) {
		return nil, s.errf(yamlh.InvalidTagSuffixKind, "did not find expected whitespace or line break")
	}

	return &yamlh.Token{Type: yamlh.TagToken, Start: start, End: s.pos(), Handle: handle, Suffix: suffix}, nil
}

func (s *Scanner) scanTagHandle(directive bool, start yamlh.Position, handle *[]byte) error {
	b, err := s.peek(1)
	if err != nil {
		return err
	}
	if b[0] != '!' {
		return s.errf(yamlh.InvalidTagHandleKind, "did not find expected '!'")
	}
	var h []byte
	h = append(h, b[0])
	s.skip(1)

	for {
		b, err := s.peek(1)
		if err != nil {
			return err
		}
		if !yamlh.IsAlpha(b, 0) {
			break
		}
		h = append(h, b[0])
		s.skip(1)
	}

	b, err = s.peek(1)
	if err != nil {
		return err
	}
	if b[0] == '!' {
		h = append(h, b[0])
		s.skip(1)
	} else if directive && string(h) != "!" {
		return s.errf(yamlh.InvalidTagHandleKind, "did not find expected '!'")
	}

	*handle = h
	return nil
}

var tagURIExtra = map[byte]bool{
	';': true, '/': true, '?': true, ':': true, '@': true, '&': true,
	'=': true, '+': true, '$': true, ',': true, '.': true, '!': true,
	'~': true, '*': true, '\'': true, '(': true, ')': true, '[': true,
	']': true,
}

func (s *Scanner) scanTagURI(directive bool, head []byte, start yamlh.Position, uri *[]byte) error {
	var out []byte
	hasTag := len(head) > 0
	if len(head) > 1 {
		out = append(out, head[1:]...)
	}

	for {
		b, err := s.peek(1)
		if err != nil {
			return err
		}
		if !(yamlh.IsAlpha(b, 0) || tagURIExtra[b[0]] || b[0] == '%') {
			break
		}
		if b[0] == '%' {
			if err := s.scanURIEscapes(directive, start, &out); err != nil {
				return err
			}
		} else {
			out = append(out, b[0])
			s.skip(1)
		}
		hasTag = true
	}

	if !hasTag {
		return s.errf(yamlh.InvalidTagPrefixKind, "did not find expected tag URI")
	}
	*uri = out
	return nil
}

func (s *Scanner) scanURIEscapes(directive bool, start yamlh.Position, out *[]byte) error {
	width := 1024
	for width > 0 {
		b, err := s.peek(3)
		if err != nil {
			return err
		}
		if !(b[0] == '%' && yamlh.IsHex(b, 1) && yamlh.IsHex(b, 2)) {
			return s.errf(yamlh.InvalidTagPrefixKind, "did not find URI escaped octet")
		}
		octet := byte((yamlh.AsHex(b, 1) << 4) + yamlh.AsHex(b, 2))
		if width == 1024 {
			width = yamlh.Width(octet)
			if width == 0 {
				return s.errf(yamlh.InvalidTagPrefixKind, "found an incorrect leading UTF-8 octet")
			}
		} else if octet&0xC0 != 0x80 {
			return s.errf(yamlh.InvalidTagPrefixKind, "found an incorrect trailing UTF-8 octet")
		}
		*out = append(*out, octet)
		s.skip(3)
		width--
	}
	return nil
}
