package scanner

import "github.com/dolysis/yary/internal/yamlh"

func (s *Scanner) fetchDocumentIndicator(typ yamlh.TokenType) error {
	if err := s.unrollIndent(-1); err != nil {
		return err
	}
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false

	start := s.pos()
	s.skip(3)
	s.push(yamlh.Token{Type: typ, Start: start, End: s.pos()})
	return nil
}

func (s *Scanner) fetchFlowCollectionStart(typ yamlh.TokenType, ctx context) error {
	if err := s.saveSimpleKey(); err != nil {
		return err
	}
	if err := s.increaseFlowLevel(ctx); err != nil {
		return err
	}
	s.simpleKeyAllowed = true

	start := s.pos()
	s.skip(1)
	s.push(yamlh.Token{Type: typ, Start: start, End: s.pos()})
	return nil
}

func (s *Scanner) fetchFlowCollectionEnd(typ yamlh.TokenType) error {
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.decreaseFlowLevel()
	s.simpleKeyAllowed = false

	start := s.pos()
	s.skip(1)
	s.push(yamlh.Token{Type: typ, Start: start, End: s.pos()})
	return nil
}

func (s *Scanner) fetchFlowEntry() error {
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = true

	start := s.pos()
	s.skip(1)
	s.push(yamlh.Token{Type: yamlh.FlowEntryToken, Start: start, End: s.pos()})
	return nil
}

func (s *Scanner) fetchBlockEntry() error {
	if s.flowLevel == 0 {
		if !s.simpleKeyAllowed {
			return s.errf(yamlh.InvalidBlockEntryKind, "block sequence entries are not allowed in this context")
		}
		if err := s.rollIndent(s.pos().Column, yamlh.BlockSequenceStartToken, s.pos(), nil); err != nil {
			return err
		}
	}
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = true

	start := s.pos()
	s.skip(1)
	s.push(yamlh.Token{Type: yamlh.BlockEntryToken, Start: start, End: s.pos()})
	return nil
}

func (s *Scanner) fetchKey() error {
	if s.flowLevel == 0 {
		if !s.simpleKeyAllowed {
			return s.errf(yamlh.InvalidKeyKind, "mapping keys are not allowed in this context")
		}
		if err := s.rollIndent(s.pos().Column, yamlh.BlockMappingStartToken, s.pos(), nil); err != nil {
			return err
		}
	}
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = s.flowLevel == 0

	start := s.pos()
	s.skip(1)
	s.push(yamlh.Token{Type: yamlh.KeyToken, Start: start, End: s.pos()})
	return nil
}

func (s *Scanner) fetchValue() error {
	k := &s.simpleKeys[len(s.simpleKeys)-1]

	valid, err := s.simpleKeyIsValid()
	if err != nil {
		return err
	}

	if valid {
		if err := s.rollIndent(k.mark.Column, yamlh.BlockMappingStartToken, k.mark, &k.slot); err != nil {
			return err
		}
		s.q.Resolve(k.slot, yamlh.Token{Type: yamlh.KeyToken, Start: k.mark, End: k.mark})
		k.possible = false
		s.simpleKeyAllowed = false
	} else {
		if s.flowLevel == 0 {
			if !s.simpleKeyAllowed {
				return s.errf(yamlh.InvalidValueKind, "mapping values are not allowed in this context")
			}
			if err := s.rollIndent(s.pos().Column, yamlh.BlockMappingStartToken, s.pos(), nil); err != nil {
				return err
			}
		}
		s.simpleKeyAllowed = s.flowLevel == 0
	}

	start := s.pos()
	s.skip(1)
	s.push(yamlh.Token{Type: yamlh.ValueToken, Start: start, End: s.pos()})
	return nil
}
