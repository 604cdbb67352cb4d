// Package parser turns a scanner.Scanner's token stream into yamlh.Events,
// grounded on the teacher's internal/parserc/parserc.go state machine
// (yaml_parser_state_machine and its per-production handlers). The grammar
// it implements is unchanged from the teacher:
//
// stream               ::= STREAM-START implicit_document? explicit_document* STREAM-END
// implicit_document    ::= block_node DOCUMENT-END*
// explicit_document    ::= DIRECTIVE* DOCUMENT-START block_node? DOCUMENT-END*
// block_node_or_indentless_sequence ::=
//                          ALIAS
//                          | properties (block_content | indentless_block_sequence)?
//                          | block_content
//                          | indentless_block_sequence
// block_node           ::= ALIAS | properties block_content? | block_content
// flow_node            ::= ALIAS | properties flow_content? | flow_content
// properties           ::= TAG ANCHOR? | ANCHOR TAG?
// block_content        ::= block_collection | flow_collection | SCALAR
// flow_content         ::= flow_collection | SCALAR
// block_collection     ::= block_sequence | block_mapping
// flow_collection      ::= flow_sequence | flow_mapping
// block_sequence       ::= BLOCK-SEQUENCE-START (BLOCK-ENTRY block_node?)* BLOCK-END
// indentless_sequence  ::= (BLOCK-ENTRY block_node?)+
// block_mapping        ::= BLOCK-MAPPING-START
//                          ((KEY block_node_or_indentless_sequence?)?
//                          (VALUE block_node_or_indentless_sequence?)?)*
//                          BLOCK-END
// flow_sequence        ::= FLOW-SEQUENCE-START
//                          (flow_sequence_entry FLOW-ENTRY)* flow_sequence_entry?
//                          FLOW-SEQUENCE-END
// flow_sequence_entry  ::= flow_node | KEY flow_node? (VALUE flow_node?)?
// flow_mapping         ::= FLOW-MAPPING-START
//                          (flow_mapping_entry FLOW-ENTRY)* flow_mapping_entry?
//                          FLOW-MAPPING-END
// flow_mapping_entry   ::= flow_node | KEY flow_node? (VALUE flow_node?)?
//
// Comment reattachment (Head_comment/Foot_comment/Stem_comment/Tail_comment
// in the teacher) has no home here: there is no emitter to round-trip
// comments back to, so this parser only ever needs to have scanned past
// them correctly, which the scanner already does.
package parser

import (
	"bytes"
	"fmt"

	"github.com/dolysis/yary/internal/scanner"
	"github.com/dolysis/yary/internal/yamlh"
)

// Parser drives a scanner.Scanner, emitting yamlh.Events.
type Parser struct {
	s *scanner.Scanner

	state  state
	states []state
	marks  []yamlh.Position

	tagDirectives []yamlh.TagDirective

	streamEndProduced bool

	have bool
	tok  yamlh.Token
}

// New creates a Parser reading tokens from s.
func New(s *scanner.Scanner) *Parser {
	return &Parser{s: s}
}

// Next returns the next event, or the error the underlying scanner raised.
// Per spec.md §4.3.8, a scanner.ErrExtend is safe to retry: this call left
// no partial parser state behind because the token it was waiting on was
// never dequeued.
func (p *Parser) Next() (yamlh.Event, error) {
	if p.streamEndProduced || p.state == stateEnd {
		return yamlh.Event{}, nil
	}
	return p.stateMachine()
}

func (p *Parser) peek() (yamlh.Token, error) {
	if !p.have {
		tok, err := p.s.Next()
		if err != nil {
			return yamlh.Token{}, err
		}
		p.tok = tok
		p.have = true
	}
	return p.tok, nil
}

// skip must only be called after a successful peek.
func (p *Parser) skip() {
	if p.tok.Type == yamlh.StreamEndToken {
		p.streamEndProduced = true
	}
	p.have = false
}

func (p *Parser) pushState(s state) { p.states = append(p.states, s) }

func (p *Parser) popState() state {
	s := p.states[len(p.states)-1]
	p.states = p.states[:len(p.states)-1]
	return s
}

func (p *Parser) pushMark(m yamlh.Position) { p.marks = append(p.marks, m) }

func (p *Parser) popMark() yamlh.Position {
	m := p.marks[len(p.marks)-1]
	p.marks = p.marks[:len(p.marks)-1]
	return m
}

func (p *Parser) errf(pos yamlh.Position, kind yamlh.ErrorKind, format string, args ...any) error {
	return yamlh.NewError(pos, kind, fmt.Sprintf(format, args...))
}

func (p *Parser) stateMachine() (yamlh.Event, error) {
	switch p.state {
	case stateStreamStart:
		return p.parseStreamStart()
	case stateImplicitDocumentStart:
		return p.parseDocumentStart(true)
	case stateDocumentStart:
		return p.parseDocumentStart(false)
	case stateDocumentContent:
		return p.parseDocumentContent()
	case stateDocumentEnd:
		return p.parseDocumentEnd()
	case stateBlockNode:
		return p.parseNode(true, false)
	case stateBlockNodeOrIndentlessSequence:
		return p.parseNode(true, true)
	case stateFlowNode:
		return p.parseNode(false, false)
	case stateBlockSequenceFirstEntry:
		return p.parseBlockSequenceEntry(true)
	case stateBlockSequenceEntry:
		return p.parseBlockSequenceEntry(false)
	case stateIndentlessSequenceEntry:
		return p.parseIndentlessSequenceEntry()
	case stateBlockMappingFirstKey:
		return p.parseBlockMappingKey(true)
	case stateBlockMappingKey:
		return p.parseBlockMappingKey(false)
	case stateBlockMappingValue:
		return p.parseBlockMappingValue()
	case stateFlowSequenceFirstEntry:
		return p.parseFlowSequenceEntry(true)
	case stateFlowSequenceEntry:
		return p.parseFlowSequenceEntry(false)
	case stateFlowSequenceEntryMappingKey:
		return p.parseFlowSequenceEntryMappingKey()
	case stateFlowSequenceEntryMappingValue:
		return p.parseFlowSequenceEntryMappingValue()
	case stateFlowSequenceEntryMappingEnd:
		return p.parseFlowSequenceEntryMappingEnd()
	case stateFlowMappingFirstKey:
		return p.parseFlowMappingKey(true)
	case stateFlowMappingKey:
		return p.parseFlowMappingKey(false)
	case stateFlowMappingValue:
		return p.parseFlowMappingValue(false)
	case stateFlowMappingEmptyValue:
		return p.parseFlowMappingValue(true)
	default:
		panic("parser: invalid state " + p.state.String())
	}
}

// stream ::= STREAM-START implicit_document? explicit_document* STREAM-END
//            ************
func (p *Parser) parseStreamStart() (yamlh.Event, error) {
	tok, err := p.peek()
	if err != nil {
		return yamlh.Event{}, err
	}
	if tok.Type != yamlh.StreamStartToken {
		return yamlh.Event{}, p.errf(tok.Start, yamlh.OtherKind, "did not find expected <stream-start>")
	}
	p.state = stateImplicitDocumentStart
	event := yamlh.Event{Type: yamlh.StreamStartEvent, Start: tok.Start, End: tok.End, Encoding: tok.Encoding}
	p.skip()
	return event, nil
}

// implicit_document ::= block_node DOCUMENT-END*
// explicit_document ::= DIRECTIVE* DOCUMENT-START block_node? DOCUMENT-END*
//                       *************************
func (p *Parser) parseDocumentStart(implicit bool) (yamlh.Event, error) {
	tok, err := p.peek()
	if err != nil {
		return yamlh.Event{}, err
	}

	if !implicit {
		for tok.Type == yamlh.DocumentEndToken {
			p.skip()
			tok, err = p.peek()
			if err != nil {
				return yamlh.Event{}, err
			}
		}
	}

	if implicit && tok.Type != yamlh.VersionDirectiveToken &&
		tok.Type != yamlh.TagDirectiveToken &&
		tok.Type != yamlh.DocumentStartToken &&
		tok.Type != yamlh.StreamEndToken {
		if err := p.processDirectives(nil, nil); err != nil {
			return yamlh.Event{}, err
		}
		p.pushState(stateDocumentEnd)
		p.state = stateBlockNode
		return yamlh.Event{Type: yamlh.DocumentStartEvent, Start: tok.Start, End: tok.End, Implicit: true}, nil
	}

	if tok.Type != yamlh.StreamEndToken {
		var versionDirective *yamlh.VersionDirective
		var tagDirectives []yamlh.TagDirective
		start := tok.Start
		if err := p.processDirectives(&versionDirective, &tagDirectives); err != nil {
			return yamlh.Event{}, err
		}
		tok, err = p.peek()
		if err != nil {
			return yamlh.Event{}, err
		}
		if tok.Type != yamlh.DocumentStartToken {
			return yamlh.Event{}, p.errf(tok.Start, yamlh.OtherKind, "did not find expected <document start>")
		}
		p.pushState(stateDocumentEnd)
		p.state = stateDocumentContent
		event := yamlh.Event{
			Type:             yamlh.DocumentStartEvent,
			Start:            start,
			End:              tok.End,
			VersionDirective: versionDirective,
			TagDirectives:    tagDirectives,
			Implicit:         false,
		}
		p.skip()
		return event, nil
	}

	p.state = stateEnd
	event := yamlh.Event{Type: yamlh.StreamEndEvent, Start: tok.Start, End: tok.End}
	p.skip()
	return event, nil
}

// explicit_document ::= DIRECTIVE* DOCUMENT-START block_node? DOCUMENT-END*
//                                                  ***********
func (p *Parser) parseDocumentContent() (yamlh.Event, error) {
	tok, err := p.peek()
	if err != nil {
		return yamlh.Event{}, err
	}
	switch tok.Type {
	case yamlh.VersionDirectiveToken, yamlh.TagDirectiveToken, yamlh.DocumentStartToken,
		yamlh.DocumentEndToken, yamlh.StreamEndToken:
		p.state = p.popState()
		return processEmptyScalar(tok.Start), nil
	}
	return p.parseNode(true, false)
}

// implicit_document ::= block_node DOCUMENT-END*
//                                  *************
func (p *Parser) parseDocumentEnd() (yamlh.Event, error) {
	tok, err := p.peek()
	if err != nil {
		return yamlh.Event{}, err
	}

	start, end := tok.Start, tok.Start
	implicit := true
	if tok.Type == yamlh.DocumentEndToken {
		end = tok.End
		p.skip()
		implicit = false
	}

	p.tagDirectives = p.tagDirectives[:0]
	p.state = stateDocumentStart
	return yamlh.Event{Type: yamlh.DocumentEndEvent, Start: start, End: end, Implicit: implicit}, nil
}

// block_node_or_indentless_sequence ::= ALIAS
//                                     | properties (block_content | indentless_block_sequence)?
//                                     | block_content | indentless_block_sequence
// properties ::= TAG ANCHOR? | ANCHOR TAG?
func (p *Parser) parseNode(block, indentlessSequence bool) (yamlh.Event, error) {
	tok, err := p.peek()
	if err != nil {
		return yamlh.Event{}, err
	}

	if tok.Type == yamlh.AliasToken {
		p.state = p.popState()
		event := yamlh.Event{Type: yamlh.AliasEvent, Start: tok.Start, End: tok.End, Anchor: tok.Value}
		p.skip()
		return event, nil
	}

	start, end := tok.Start, tok.Start

	var haveTag bool
	var tagHandle, tagSuffix, anchor []byte
	var tagMark yamlh.Position

	switch tok.Type {
	case yamlh.AnchorToken:
		anchor = tok.Value
		start, end = tok.Start, tok.End
		p.skip()
		tok, err = p.peek()
		if err != nil {
			return yamlh.Event{}, err
		}
		if tok.Type == yamlh.TagToken {
			haveTag = true
			tagHandle, tagSuffix, tagMark, end = tok.Handle, tok.Suffix, tok.Start, tok.End
			p.skip()
			tok, err = p.peek()
			if err != nil {
				return yamlh.Event{}, err
			}
		}
	case yamlh.TagToken:
		haveTag = true
		tagHandle, tagSuffix = tok.Handle, tok.Suffix
		start, tagMark, end = tok.Start, tok.Start, tok.End
		p.skip()
		tok, err = p.peek()
		if err != nil {
			return yamlh.Event{}, err
		}
		if tok.Type == yamlh.AnchorToken {
			anchor, end = tok.Value, tok.End
			p.skip()
			tok, err = p.peek()
			if err != nil {
				return yamlh.Event{}, err
			}
		}
	}

	var tag []byte
	if haveTag {
		if len(tagHandle) == 0 {
			tag = tagSuffix
		} else {
			for i := range p.tagDirectives {
				if bytes.Equal(p.tagDirectives[i].Handle, tagHandle) {
					tag = append(append([]byte(nil), p.tagDirectives[i].Prefix...), tagSuffix...)
					break
				}
			}
			if len(tag) == 0 {
				return yamlh.Event{}, p.errf(tagMark, yamlh.InvalidTagHandleKind, "found undefined tag handle")
			}
		}
	}

	implicit := len(tag) == 0

	if indentlessSequence && tok.Type == yamlh.BlockEntryToken {
		p.state = stateIndentlessSequenceEntry
		return yamlh.Event{
			Type: yamlh.SequenceStartEvent, Start: start, End: tok.End,
			Anchor: anchor, Tag: tag, Implicit: implicit, CollectionStyle: yamlh.BlockCollectionStyle,
		}, nil
	}

	if tok.Type == yamlh.ScalarToken {
		end = tok.End
		plainImplicit := (len(tag) == 0 && tok.Style == yamlh.PlainScalarStyle) || (len(tag) == 1 && tag[0] == '!')
		quotedImplicit := len(tag) == 0 && !plainImplicit
		p.state = p.popState()
		event := yamlh.Event{
			Type: yamlh.ScalarEvent, Start: start, End: end,
			Anchor: anchor, Tag: tag, Scalar: tok.Scalar, Style: tok.Style,
			Implicit: plainImplicit, QuotedImplicit: quotedImplicit,
		}
		p.skip()
		return event, nil
	}

	switch tok.Type {
	case yamlh.FlowSequenceStartToken:
		p.state = stateFlowSequenceFirstEntry
		return yamlh.Event{Type: yamlh.SequenceStartEvent, Start: start, End: tok.End, Anchor: anchor, Tag: tag, Implicit: implicit, CollectionStyle: yamlh.FlowCollectionStyle}, nil
	case yamlh.FlowMappingStartToken:
		p.state = stateFlowMappingFirstKey
		return yamlh.Event{Type: yamlh.MappingStartEvent, Start: start, End: tok.End, Anchor: anchor, Tag: tag, Implicit: implicit, CollectionStyle: yamlh.FlowCollectionStyle}, nil
	}

	if block && tok.Type == yamlh.BlockSequenceStartToken {
		p.state = stateBlockSequenceFirstEntry
		return yamlh.Event{Type: yamlh.SequenceStartEvent, Start: start, End: tok.End, Anchor: anchor, Tag: tag, Implicit: implicit, CollectionStyle: yamlh.BlockCollectionStyle}, nil
	}
	if block && tok.Type == yamlh.BlockMappingStartToken {
		p.state = stateBlockMappingFirstKey
		return yamlh.Event{Type: yamlh.MappingStartEvent, Start: start, End: tok.End, Anchor: anchor, Tag: tag, Implicit: implicit, CollectionStyle: yamlh.BlockCollectionStyle}, nil
	}

	if len(anchor) > 0 || len(tag) > 0 {
		p.state = p.popState()
		return yamlh.Event{
			Type: yamlh.ScalarEvent, Start: start, End: end,
			Anchor: anchor, Tag: tag, Implicit: implicit, Style: yamlh.PlainScalarStyle,
		}, nil
	}

	return yamlh.Event{}, p.errf(tok.Start, yamlh.OtherKind, "did not find expected node content")
}

// block_sequence ::= BLOCK-SEQUENCE-START (BLOCK-ENTRY block_node?)* BLOCK-END
func (p *Parser) parseBlockSequenceEntry(first bool) (yamlh.Event, error) {
	if first {
		tok, err := p.peek()
		if err != nil {
			return yamlh.Event{}, err
		}
		p.pushMark(tok.Start)
		p.skip()
	}

	tok, err := p.peek()
	if err != nil {
		return yamlh.Event{}, err
	}

	switch tok.Type {
	case yamlh.BlockEntryToken:
		mark := tok.End
		p.skip()
		tok, err = p.peek()
		if err != nil {
			return yamlh.Event{}, err
		}
		if tok.Type != yamlh.BlockEntryToken && tok.Type != yamlh.BlockEndToken {
			p.pushState(stateBlockSequenceEntry)
			return p.parseNode(true, false)
		}
		p.state = stateBlockSequenceEntry
		return processEmptyScalar(mark), nil
	case yamlh.BlockEndToken:
		p.state = p.popState()
		p.popMark()
		event := yamlh.Event{Type: yamlh.SequenceEndEvent, Start: tok.Start, End: tok.End}
		p.skip()
		return event, nil
	}

	contextMark := p.popMark()
	return yamlh.Event{}, p.errf(tok.Start, yamlh.InvalidBlockEntryKind, "did not find expected '-' indicator (sequence opened at %s)", contextMark)
}

// indentless_sequence ::= (BLOCK-ENTRY block_node?)+
func (p *Parser) parseIndentlessSequenceEntry() (yamlh.Event, error) {
	tok, err := p.peek()
	if err != nil {
		return yamlh.Event{}, err
	}
	if tok.Type == yamlh.BlockEntryToken {
		mark := tok.End
		p.skip()
		tok, err = p.peek()
		if err != nil {
			return yamlh.Event{}, err
		}
		switch tok.Type {
		case yamlh.BlockEntryToken, yamlh.KeyToken, yamlh.ValueToken, yamlh.BlockEndToken:
			p.state = stateIndentlessSequenceEntry
			return processEmptyScalar(mark), nil
		}
		p.pushState(stateIndentlessSequenceEntry)
		return p.parseNode(true, false)
	}
	p.state = p.popState()
	return yamlh.Event{Type: yamlh.SequenceEndEvent, Start: tok.Start, End: tok.Start}, nil
}

// block_mapping ::= BLOCK-MAPPING-START
//                   ((KEY block_node_or_indentless_sequence?)?
//                   (VALUE block_node_or_indentless_sequence?)?)*
//                   BLOCK-END
func (p *Parser) parseBlockMappingKey(first bool) (yamlh.Event, error) {
	if first {
		tok, err := p.peek()
		if err != nil {
			return yamlh.Event{}, err
		}
		p.pushMark(tok.Start)
		p.skip()
	}

	tok, err := p.peek()
	if err != nil {
		return yamlh.Event{}, err
	}

	switch tok.Type {
	case yamlh.KeyToken:
		mark := tok.End
		p.skip()
		tok, err = p.peek()
		if err != nil {
			return yamlh.Event{}, err
		}
		if tok.Type != yamlh.KeyToken && tok.Type != yamlh.ValueToken && tok.Type != yamlh.BlockEndToken {
			p.pushState(stateBlockMappingValue)
			return p.parseNode(true, true)
		}
		p.state = stateBlockMappingValue
		return processEmptyScalar(mark), nil
	case yamlh.BlockEndToken:
		p.state = p.popState()
		p.popMark()
		event := yamlh.Event{Type: yamlh.MappingEndEvent, Start: tok.Start, End: tok.End}
		p.skip()
		return event, nil
	}

	contextMark := p.popMark()
	return yamlh.Event{}, p.errf(tok.Start, yamlh.InvalidKeyKind, "did not find expected key (mapping opened at %s)", contextMark)
}

func (p *Parser) parseBlockMappingValue() (yamlh.Event, error) {
	tok, err := p.peek()
	if err != nil {
		return yamlh.Event{}, err
	}
	if tok.Type == yamlh.ValueToken {
		mark := tok.End
		p.skip()
		tok, err = p.peek()
		if err != nil {
			return yamlh.Event{}, err
		}
		if tok.Type != yamlh.KeyToken && tok.Type != yamlh.ValueToken && tok.Type != yamlh.BlockEndToken {
			p.pushState(stateBlockMappingKey)
			return p.parseNode(true, true)
		}
		p.state = stateBlockMappingKey
		return processEmptyScalar(mark), nil
	}
	p.state = stateBlockMappingKey
	return processEmptyScalar(tok.Start), nil
}

// flow_sequence ::= FLOW-SEQUENCE-START
//                   (flow_sequence_entry FLOW-ENTRY)* flow_sequence_entry?
//                   FLOW-SEQUENCE-END
// flow_sequence_entry ::= flow_node | KEY flow_node? (VALUE flow_node?)?
func (p *Parser) parseFlowSequenceEntry(first bool) (yamlh.Event, error) {
	if first {
		tok, err := p.peek()
		if err != nil {
			return yamlh.Event{}, err
		}
		p.pushMark(tok.Start)
		p.skip()
	}

	tok, err := p.peek()
	if err != nil {
		return yamlh.Event{}, err
	}

	if tok.Type != yamlh.FlowSequenceEndToken {
		if !first {
			if tok.Type == yamlh.FlowEntryToken {
				p.skip()
				tok, err = p.peek()
				if err != nil {
					return yamlh.Event{}, err
				}
			} else {
				contextMark := p.popMark()
				return yamlh.Event{}, p.errf(tok.Start, yamlh.UnknownDelimiterKind, "did not find expected ',' or ']' (sequence opened at %s)", contextMark)
			}
		}

		if tok.Type == yamlh.KeyToken {
			p.state = stateFlowSequenceEntryMappingKey
			event := yamlh.Event{Type: yamlh.MappingStartEvent, Start: tok.Start, End: tok.End, Implicit: true, CollectionStyle: yamlh.FlowCollectionStyle}
			p.skip()
			return event, nil
		}
		if tok.Type != yamlh.FlowSequenceEndToken {
			p.pushState(stateFlowSequenceEntry)
			return p.parseNode(false, false)
		}
	}

	p.state = p.popState()
	p.popMark()
	event := yamlh.Event{Type: yamlh.SequenceEndEvent, Start: tok.Start, End: tok.End}
	p.skip()
	return event, nil
}

func (p *Parser) parseFlowSequenceEntryMappingKey() (yamlh.Event, error) {
	tok, err := p.peek()
	if err != nil {
		return yamlh.Event{}, err
	}
	if tok.Type != yamlh.ValueToken && tok.Type != yamlh.FlowEntryToken && tok.Type != yamlh.FlowSequenceEndToken {
		p.pushState(stateFlowSequenceEntryMappingValue)
		return p.parseNode(false, false)
	}
	mark := tok.End
	p.skip()
	p.state = stateFlowSequenceEntryMappingValue
	return processEmptyScalar(mark), nil
}

func (p *Parser) parseFlowSequenceEntryMappingValue() (yamlh.Event, error) {
	tok, err := p.peek()
	if err != nil {
		return yamlh.Event{}, err
	}
	if tok.Type == yamlh.ValueToken {
		p.skip()
		tok, err = p.peek()
		if err != nil {
			return yamlh.Event{}, err
		}
		if tok.Type != yamlh.FlowEntryToken && tok.Type != yamlh.FlowSequenceEndToken {
			p.pushState(stateFlowSequenceEntryMappingEnd)
			return p.parseNode(false, false)
		}
	}
	p.state = stateFlowSequenceEntryMappingEnd
	return processEmptyScalar(tok.Start), nil
}

func (p *Parser) parseFlowSequenceEntryMappingEnd() (yamlh.Event, error) {
	tok, err := p.peek()
	if err != nil {
		return yamlh.Event{}, err
	}
	p.state = stateFlowSequenceEntry
	return yamlh.Event{Type: yamlh.MappingEndEvent, Start: tok.Start, End: tok.Start}, nil
}

// flow_mapping ::= FLOW-MAPPING-START
//                  (flow_mapping_entry FLOW-ENTRY)* flow_mapping_entry?
//                  FLOW-MAPPING-END
// flow_mapping_entry ::= flow_node | KEY flow_node? (VALUE flow_node?)?
func (p *Parser) parseFlowMappingKey(first bool) (yamlh.Event, error) {
	if first {
		tok, err := p.peek()
		if err != nil {
			return yamlh.Event{}, err
		}
		p.pushMark(tok.Start)
		p.skip()
	}

	tok, err := p.peek()
	if err != nil {
		return yamlh.Event{}, err
	}

	if tok.Type != yamlh.FlowMappingEndToken {
		if !first {
			if tok.Type == yamlh.FlowEntryToken {
				p.skip()
				tok, err = p.peek()
				if err != nil {
					return yamlh.Event{}, err
				}
			} else {
				contextMark := p.popMark()
				return yamlh.Event{}, p.errf(tok.Start, yamlh.UnknownDelimiterKind, "did not find expected ',' or '}' (mapping opened at %s)", contextMark)
			}
		}

		if tok.Type == yamlh.KeyToken {
			p.skip()
			tok, err = p.peek()
			if err != nil {
				return yamlh.Event{}, err
			}
			if tok.Type != yamlh.ValueToken && tok.Type != yamlh.FlowEntryToken && tok.Type != yamlh.FlowMappingEndToken {
				p.pushState(stateFlowMappingValue)
				return p.parseNode(false, false)
			}
			p.state = stateFlowMappingValue
			return processEmptyScalar(tok.Start), nil
		}
		if tok.Type != yamlh.FlowMappingEndToken {
			p.pushState(stateFlowMappingEmptyValue)
			return p.parseNode(false, false)
		}
	}

	p.state = p.popState()
	p.popMark()
	event := yamlh.Event{Type: yamlh.MappingEndEvent, Start: tok.Start, End: tok.End}
	p.skip()
	return event, nil
}

func (p *Parser) parseFlowMappingValue(empty bool) (yamlh.Event, error) {
	tok, err := p.peek()
	if err != nil {
		return yamlh.Event{}, err
	}
	if empty {
		p.state = stateFlowMappingKey
		return processEmptyScalar(tok.Start), nil
	}
	if tok.Type == yamlh.ValueToken {
		p.skip()
		tok, err = p.peek()
		if err != nil {
			return yamlh.Event{}, err
		}
		if tok.Type != yamlh.FlowEntryToken && tok.Type != yamlh.FlowMappingEndToken {
			p.pushState(stateFlowMappingKey)
			return p.parseNode(false, false)
		}
	}
	p.state = stateFlowMappingKey
	return processEmptyScalar(tok.Start), nil
}

func processEmptyScalar(mark yamlh.Position) yamlh.Event {
	return yamlh.Event{Type: yamlh.ScalarEvent, Start: mark, End: mark, Implicit: true, Style: yamlh.PlainScalarStyle}
}

// processDirectives consumes the run of %YAML/%TAG directives leading a
// document, populating the implicit default handles ("!" and "!!")
// alongside whatever the document declared, per the YAML 1.2 core schema.
func (p *Parser) processDirectives(versionOut **yamlh.VersionDirective, tagsOut *[]yamlh.TagDirective) error {
	var version *yamlh.VersionDirective
	var tags []yamlh.TagDirective

	tok, err := p.peek()
	if err != nil {
		return err
	}

	for tok.Type == yamlh.VersionDirectiveToken || tok.Type == yamlh.TagDirectiveToken {
		switch tok.Type {
		case yamlh.VersionDirectiveToken:
			if version != nil {
				return p.errf(tok.Start, yamlh.OtherKind, "found duplicate %%YAML directive")
			}
			if tok.Major != 1 {
				return p.errf(tok.Start, yamlh.InvalidVersionKind, "found incompatible YAML document")
			}
			version = &yamlh.VersionDirective{Major: tok.Major, Minor: tok.Minor}
		case yamlh.TagDirectiveToken:
			value := yamlh.TagDirective{Handle: tok.Handle, Prefix: tok.Prefix}
			if err := p.appendTagDirective(value, false, tok.Start); err != nil {
				return err
			}
			tags = append(tags, value)
		}
		p.skip()
		tok, err = p.peek()
		if err != nil {
			return err
		}
	}

	for _, d := range yamlh.DefaultTagDirectives {
		if err := p.appendTagDirective(d, true, tok.Start); err != nil {
			return err
		}
	}

	if versionOut != nil {
		*versionOut = version
	}
	if tagsOut != nil {
		*tagsOut = tags
	}
	return nil
}

func (p *Parser) appendTagDirective(value yamlh.TagDirective, allowDuplicates bool, mark yamlh.Position) error {
	for i := range p.tagDirectives {
		if bytes.Equal(value.Handle, p.tagDirectives[i].Handle) {
			if allowDuplicates {
				return nil
			}
			return p.errf(mark, yamlh.DuplicateTagDirectiveKind, "found duplicate %%TAG directive")
		}
	}
	p.tagDirectives = append(p.tagDirectives, value)
	return nil
}
