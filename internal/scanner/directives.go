package scanner

import "github.com/dolysis/yary/internal/yamlh"

// fetchDirective handles a line starting with '%', dispatching to the
// %YAML or %TAG value scanner by name, grounded on
// yaml_parser_scan_directive.
func (s *Scanner) fetchDirective() error {
	if err := s.unrollIndent(-1); err != nil {
		return err
	}
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false

	tok, err := s.scanDirective()
	if err != nil {
		return err
	}
	s.push(*tok)
	return nil
}

func (s *Scanner) scanDirective() (*yamlh.Token, error) {
	start := s.pos()
	s.skip(1) // '%'

	name, err := s.scanDirectiveName()
	if err != nil {
		return nil, err
	}

	var tok yamlh.Token
	switch string(name) {
	case "YAML":
		major, minor, err := s.scanVersionDirectiveValue()
		if err != nil {
			return nil, err
		}
		tok = yamlh.Token{Type: yamlh.VersionDirectiveToken, Start: start, End: s.pos(), Major: major, Minor: minor}
	case "TAG":
		handle, prefix, err := s.scanTagDirectiveValue(start)
		if err != nil {
			return nil, err
		}
		tok = yamlh.Token{Type: yamlh.TagDirectiveToken, Start: start, End: s.pos(), Handle: handle, Prefix: prefix}
	default:
		return nil, s.errf(yamlh.UnknownDirectiveKind, "found unknown directive name %q", name)
	}

	if err := s.eatRestOfDirectiveLine(start); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (s *Scanner) scanDirectiveName() ([]byte, error) {
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
	if len(name) == 0 {
		return nil, s.errf(yamlh.UnknownDirectiveKind, "could not find expected directive name")
	}
	b, err := s.peek(1)
	if err != nil {
		return nil, err
	}
	if !yamlh.IsBlankZ(b, 0) {
		return nil, s.errf(yamlh.UnknownDirectiveKind, "found unexpected non-alphabetical character in directive name")
	}
	return name, nil
}

func (s *Scanner) skipBlanks() error {
	for {
		b, err := s.peek(1)
		if err != nil {
			return err
		}
		if !yamlh.IsBlank(b, 0) {
			return nil
		}
		s.skip(1)
	}
}

func (s *Scanner) scanVersionDirectiveValue() (major, minor int8, err error) {
	if err := s.skipBlanks(); err != nil {
		return 0, 0, err
	}
	start := s.pos()
	major, err = s.scanVersionDirectiveNumber(start)
	if err != nil {
		return 0, 0, err
	}
	b, err := s.peek(1)
	if err != nil {
		return 0, 0, err
	}
	if b[0] != '.' {
		return 0, 0, s.errf(yamlh.InvalidVersionKind, "did not find expected digit or '.' character")
	}
	s.skip(1)
	minor, err = s.scanVersionDirectiveNumber(start)
	if err != nil {
		return 0, 0, err
	}
	return major, minor, nil
}

func (s *Scanner) scanVersionDirectiveNumber(start yamlh.Position) (int8, error) {
	value, length := 0, 0
	for {
		b, err := s.peek(1)
		if err != nil {
			return 0, err
		}
		if !yamlh.IsDigit(b, 0) {
			break
		}
		length++
		if length > 9 {
			return 0, s.errf(yamlh.InvalidVersionKind, "found extremely long version number")
		}
		value = value*10 + yamlh.AsDigit(b, 0)
		s.skip(1)
	}
	if length == 0 {
		return 0, s.errf(yamlh.InvalidVersionKind, "did not find expected version number")
	}
	return int8(value), nil
}

func (s *Scanner) scanTagDirectiveValue(start yamlh.Position) (handle, prefix []byte, err error) {
	if err := s.skipBlanks(); err != nil {
		return nil, nil, err
	}
	if err := s.scanTagHandle(true, start, &handle); err != nil {
		return nil, nil, err
	}
	if err := s.skipBlanks(); err != nil {
		return nil, nil, err
	}
	if err := s.scanTagURI(true, nil, start, &prefix); err != nil {
		return nil, nil, err
	}
	key := string(handle)
	if s.tagHandles[key] {
		return nil, nil, s.errf(yamlh.DuplicateTagDirectiveKind, "found duplicate %%TAG directive")
	}
	s.tagHandles[key] = true
	return handle, prefix, nil
}

func (s *Scanner) eatRestOfDirectiveLine(start yamlh.Position) error {
	if err := s.skipBlanks(); err != nil {
		return err
	}
	b, err := s.peek(1)
	if err != nil {
		return err
	}
	if b[0] == '#' {
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
	}
	b, err = s.peek(1)
	if err != nil {
		return err
	}
	if !yamlh.IsBreakZ(b, 0) {
		return s.errf(yamlh.UnknownDirectiveKind, "did not find expected comment or line break")
	}
	if yamlh.IsBreak(b, 0) {
		n, err := s.peekBreakWidth()
		if err != nil {
			return err
		}
		s.skip(n)
	}
	return nil
}
