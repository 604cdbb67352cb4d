package scanner

import (
	"github.com/dolysis/yary/internal/queue"
	"github.com/dolysis/yary/internal/yamlh"
)

// rollIndent pushes the current indentation level and emits a
// BlockSequenceStart or BlockMappingStart at before, if column is greater
// than the current indentation. before is nil to append at the current
// queue position, or a reserved simple-key slot that the new token must
// sort strictly ahead of (spec.md §4.3.3's deferred block-collection
// start). No-op in flow context.
func (s *Scanner) rollIndent(column int, typ yamlh.TokenType, mark yamlh.Position, before *queue.Mark) error {
	if s.flowLevel > 0 {
		return nil
	}
	if s.indent >= column {
		return nil
	}
	s.indents = append(s.indents, s.indent)
	s.indent = column
	if len(s.indents) > maxIndents {
		return s.errf(yamlh.OtherKind, "exceeded max indentation depth of %d", maxIndents)
	}
	tok := yamlh.Token{Type: typ, Start: mark, End: mark}
	if before != nil {
		s.q.InsertBefore(*before, tok)
	} else {
		s.push(tok)
	}
	return nil
}

// unrollIndent pops indentation levels until the current level is no
// greater than column, emitting a BlockEnd for each. In flow context this
// is a no-op: collections there are closed explicitly by ']'/'}'.
func (s *Scanner) unrollIndent(column int) error {
	if s.flowLevel > 0 {
		return nil
	}
	for s.indent > column {
		s.push(yamlh.Token{Type: yamlh.BlockEndToken, Start: s.pos(), End: s.pos()})
		s.indent = s.indents[len(s.indents)-1]
		s.indents = s.indents[:len(s.indents)-1]
	}
	return nil
}

// saveSimpleKey records a candidate simple key at the current position, if
// one is allowed here, per yaml_parser_save_simple_key. It reserves a
// queue slot now so that a later KeyToken (and possibly a
// BlockMappingStartToken ahead of it) can be spliced in at this position
// without disturbing tokens already queued after it.
func (s *Scanner) saveSimpleKey() error {
	required := s.flowLevel == 0 && s.indent == s.pos().Column

	if err := s.removeSimpleKey(); err != nil {
		return err
	}

	if !s.simpleKeyAllowed {
		return nil
	}

	slot := s.reserve()
	s.simpleKeys[len(s.simpleKeys)-1] = simpleKey{
		possible: true,
		required: required,
		mark:     s.pos(),
		slot:     slot,
	}
	return nil
}

// removeSimpleKey drops the simple key candidate at the current flow
// level, erroring if it was required (i.e. a ':' never showed up for a
// key that started at the block indentation column).
func (s *Scanner) removeSimpleKey() error {
	i := len(s.simpleKeys) - 1
	k := &s.simpleKeys[i]
	if !k.possible {
		return nil
	}
	if k.required {
		return s.errf(yamlh.MissingValueKind, "could not find expected ':'")
	}
	s.q.Cancel(k.slot)
	k.possible = false
	return nil
}

// simpleKeyIsValid reports whether the candidate at the current flow
// level is still within the 1024-character, single-line lookahead window
// the YAML 1.2 spec allows for implicit keys.
func (s *Scanner) simpleKeyIsValid() (bool, error) {
	k := &s.simpleKeys[len(s.simpleKeys)-1]
	if !k.possible {
		return false, nil
	}
	if k.mark.Line < s.pos().Line || k.mark.Read+1024 < s.pos().Read {
		if k.required {
			return false, s.errf(yamlh.MissingValueKind, "could not find expected ':'")
		}
		s.q.Cancel(k.slot)
		k.possible = false
		return false, nil
	}
	return true, nil
}

func (s *Scanner) increaseFlowLevel(ctx context) error {
	s.simpleKeys = append(s.simpleKeys, simpleKey{})
	s.contexts = append(s.contexts, ctx)
	s.flowLevel++
	if s.flowLevel > maxFlowLevel {
		return s.errf(yamlh.OtherKind, "exceeded max flow depth of %d", maxFlowLevel)
	}
	return nil
}

func (s *Scanner) decreaseFlowLevel() {
	if s.flowLevel == 0 {
		return
	}
	s.flowLevel--
	s.contexts = s.contexts[:len(s.contexts)-1]
	s.simpleKeys = s.simpleKeys[:len(s.simpleKeys)-1]
}
