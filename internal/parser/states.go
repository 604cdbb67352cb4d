package parser

import "fmt"

// state is the parser's position in the grammar from spec.md §4.4, ported
// from the teacher's ParserState enum. Renamed to Go-idiomatic lowerCamel
// since, unlike the teacher's, it never crosses a package boundary.
type state int8

const (
	stateStreamStart state = iota

	stateImplicitDocumentStart
	stateDocumentStart
	stateDocumentContent
	stateDocumentEnd

	stateBlockNode
	stateBlockNodeOrIndentlessSequence
	stateFlowNode

	stateBlockSequenceFirstEntry
	stateBlockSequenceEntry
	stateIndentlessSequenceEntry

	stateBlockMappingFirstKey
	stateBlockMappingKey
	stateBlockMappingValue

	stateFlowSequenceFirstEntry
	stateFlowSequenceEntry
	stateFlowSequenceEntryMappingKey
	stateFlowSequenceEntryMappingValue
	stateFlowSequenceEntryMappingEnd

	stateFlowMappingFirstKey
	stateFlowMappingKey
	stateFlowMappingValue
	stateFlowMappingEmptyValue

	stateEnd
)

var stateNames = map[state]string{
	stateStreamStart:                   "streamStart",
	stateImplicitDocumentStart:         "implicitDocumentStart",
	stateDocumentStart:                 "documentStart",
	stateDocumentContent:               "documentContent",
	stateDocumentEnd:                   "documentEnd",
	stateBlockNode:                     "blockNode",
	stateBlockNodeOrIndentlessSequence: "blockNodeOrIndentlessSequence",
	stateFlowNode:                      "flowNode",
	stateBlockSequenceFirstEntry:       "blockSequenceFirstEntry",
	stateBlockSequenceEntry:            "blockSequenceEntry",
	stateIndentlessSequenceEntry:       "indentlessSequenceEntry",
	stateBlockMappingFirstKey:          "blockMappingFirstKey",
	stateBlockMappingKey:               "blockMappingKey",
	stateBlockMappingValue:             "blockMappingValue",
	stateFlowSequenceFirstEntry:        "flowSequenceFirstEntry",
	stateFlowSequenceEntry:             "flowSequenceEntry",
	stateFlowSequenceEntryMappingKey:   "flowSequenceEntryMappingKey",
	stateFlowSequenceEntryMappingValue: "flowSequenceEntryMappingValue",
	stateFlowSequenceEntryMappingEnd:   "flowSequenceEntryMappingEnd",
	stateFlowMappingFirstKey:           "flowMappingFirstKey",
	stateFlowMappingKey:                "flowMappingKey",
	stateFlowMappingValue:              "flowMappingValue",
	stateFlowMappingEmptyValue:         "flowMappingEmptyValue",
	stateEnd:                           "end",
}

func (s state) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}
