// Package yamlh holds the shared vocabulary between the reader, the
// scanner, and the parser: positions, token and event kinds, and the
// deferred-scalar descriptors. It is the Go analogue of the teacher's
// internal/yamlh package, narrowed to the event-producing core (no
// encode-side types survive here).
package yamlh

import "fmt"

// Position is a byte cursor position: absolute bytes read, 0-based line,
// 0-based column.
type Position struct {
	Read   int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line+1, p.Column+1)
}

// Encoding is the detected stream encoding.
type Encoding int

const (
	AnyEncoding Encoding = iota
	UTF8Encoding
	UTF16LEEncoding
	UTF16BEEncoding
)

func (e Encoding) String() string {
	switch e {
	case UTF8Encoding:
		return "UTF-8"
	case UTF16LEEncoding:
		return "UTF-16LE"
	case UTF16BEEncoding:
		return "UTF-16BE"
	default:
		return "unknown"
	}
}

// TokenType is the closed set of scanner token kinds from spec.md §3.
type TokenType int

const (
	NoToken TokenType = iota

	StreamStartToken
	StreamEndToken

	VersionDirectiveToken
	TagDirectiveToken
	DocumentStartToken
	DocumentEndToken

	BlockSequenceStartToken
	BlockMappingStartToken
	BlockEndToken

	FlowSequenceStartToken
	FlowSequenceEndToken
	FlowMappingStartToken
	FlowMappingEndToken

	BlockEntryToken
	FlowEntryToken
	KeyToken
	ValueToken

	AliasToken
	AnchorToken
	TagToken
	ScalarToken
)

var tokenNames = map[TokenType]string{
	NoToken:                 "NoToken",
	StreamStartToken:        "StreamStart",
	StreamEndToken:          "StreamEnd",
	VersionDirectiveToken:   "VersionDirective",
	TagDirectiveToken:       "TagDirective",
	DocumentStartToken:      "DocumentStart",
	DocumentEndToken:        "DocumentEnd",
	BlockSequenceStartToken: "BlockSequenceStart",
	BlockMappingStartToken:  "BlockMappingStart",
	BlockEndToken:           "BlockEnd",
	FlowSequenceStartToken:  "FlowSequenceStart",
	FlowSequenceEndToken:    "FlowSequenceEnd",
	FlowMappingStartToken:   "FlowMappingStart",
	FlowMappingEndToken:     "FlowMappingEnd",
	BlockEntryToken:         "BlockEntry",
	FlowEntryToken:          "FlowEntry",
	KeyToken:                "Key",
	ValueToken:              "Value",
	AliasToken:              "Alias",
	AnchorToken:             "Anchor",
	TagToken:                "Tag",
	ScalarToken:             "Scalar",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// ScalarStyle distinguishes how a scalar was written.
type ScalarStyle int8

const (
	AnyScalarStyle ScalarStyle = iota
	PlainScalarStyle
	SingleQuotedScalarStyle
	DoubleQuotedScalarStyle
	LiteralScalarStyle
	FoldedScalarStyle
)

func (s ScalarStyle) String() string {
	switch s {
	case PlainScalarStyle:
		return "plain"
	case SingleQuotedScalarStyle:
		return "single-quoted"
	case DoubleQuotedScalarStyle:
		return "double-quoted"
	case LiteralScalarStyle:
		return "literal"
	case FoldedScalarStyle:
		return "folded"
	default:
		return "any"
	}
}

// CollectionStyle distinguishes block vs flow for sequences and mappings.
type CollectionStyle int8

const (
	AnyCollectionStyle CollectionStyle = iota
	BlockCollectionStyle
	FlowCollectionStyle
)

// Chomping is the trailing-line-break policy of a block scalar.
type Chomping int8

const (
	ClipChomping  Chomping = iota // default: keep a single trailing break
	StripChomping                 // '-': remove all trailing breaks
	KeepChomping                  // '+': keep all trailing breaks
)

// BlockHeader is the parsed `(|/>)(chomp)?(indent)?` header of a block
// scalar.
type BlockHeader struct {
	Literal  bool // '|' if true, '>' if false
	Chomping Chomping
	Indent   int // explicit indentation indicator, 0 if auto-detected
}

// ByteRange is a [From, To) span of absolute byte offsets into a Reader's
// retained buffer.
type ByteRange struct {
	From, To int
}

func (r ByteRange) Len() int { return r.To - r.From }

// Stats accumulates cheap facts about a scanned scalar body, grounded on
// original_source's scanner/stats.rs. The scanner fills in Lines only;
// the simple-key checks do not read Stats.
type Stats struct {
	Lines     int // number of line breaks crossed while scanning
	Codepoint int // number of codepoints consumed; not set by the scanner, always 0
}

// DeferredKind distinguishes the three deferred scalar shapes from
// spec.md §3.
type DeferredKind int8

const (
	DeferredFlowKind DeferredKind = iota
	DeferredPlainKind
	DeferredBlockKind
)

// Retained is the minimal slice-by-absolute-offset capability the
// scanner's Reader exposes so a DeferredScalar can materialize later,
// possibly long after the scanner itself has moved on.
type Retained interface {
	SliceAbsolute(from, to int) ([]byte, error)
}

// DeferredScalar captures enough state to materialize a scalar body on
// demand, per spec.md §4.3.5.
type DeferredScalar struct {
	Kind   DeferredKind
	Range  ByteRange
	Indent int
	Style  ScalarStyle
	Header BlockHeader // meaningful only when Kind == DeferredBlockKind
	Stats  Stats
	Start  Position

	Buffer Retained
}

// ScalarPayload is the sum type from spec.md §3: either fully materialized
// bytes, or one of the three deferred descriptors.
type ScalarPayload struct {
	Eager    []byte // non-nil when materialized eagerly
	Deferred *DeferredScalar
}

// IsDeferred reports whether this payload still needs Materialize.
func (s ScalarPayload) IsDeferred() bool { return s.Deferred != nil }

// Token is a single scanner token, carrying only the fields meaningful for
// its Type — mirroring the teacher's YamlToken union-of-fields style.
type Token struct {
	Type       TokenType
	Start, End Position

	Encoding Encoding // StreamStartToken

	Major, Minor int8 // VersionDirectiveToken

	Handle []byte // TagDirectiveToken, TagToken
	Prefix []byte // TagDirectiveToken
	Suffix []byte // TagToken

	Value []byte // AliasToken, AnchorToken name

	Scalar ScalarPayload // ScalarToken
	Style  ScalarStyle   // ScalarToken
}

// EventType is the closed set of parser event kinds from spec.md §4.4.
type EventType int8

const (
	NoEvent EventType = iota
	StreamStartEvent
	StreamEndEvent
	DocumentStartEvent
	DocumentEndEvent
	AliasEvent
	ScalarEvent
	SequenceStartEvent
	SequenceEndEvent
	MappingStartEvent
	MappingEndEvent
)

var eventNames = map[EventType]string{
	NoEvent:            "NoEvent",
	StreamStartEvent:   "StreamStart",
	StreamEndEvent:     "StreamEnd",
	DocumentStartEvent: "DocumentStart",
	DocumentEndEvent:   "DocumentEnd",
	AliasEvent:         "Alias",
	ScalarEvent:        "Scalar",
	SequenceStartEvent: "SequenceStart",
	SequenceEndEvent:   "SequenceEnd",
	MappingStartEvent:  "MappingStart",
	MappingEndEvent:    "MappingEnd",
}

func (e EventType) String() string {
	if s, ok := eventNames[e]; ok {
		return s
	}
	return fmt.Sprintf("EventType(%d)", int(e))
}

// VersionDirective is a parsed `%YAML major.minor` directive.
type VersionDirective struct {
	Major, Minor int8
}

// TagDirective is a parsed `%TAG !handle! prefix` directive.
type TagDirective struct {
	Handle, Prefix []byte
}

// Event is one item of the parser's output stream.
type Event struct {
	Type       EventType
	Start, End Position

	Encoding Encoding // StreamStartEvent

	VersionDirective *VersionDirective // DocumentStartEvent
	TagDirectives    []TagDirective    // DocumentStartEvent

	Anchor []byte // ScalarEvent, SequenceStartEvent, MappingStartEvent, AliasEvent
	Tag    []byte // ScalarEvent, SequenceStartEvent, MappingStartEvent

	Scalar ScalarPayload // ScalarEvent
	Style  ScalarStyle   // ScalarEvent

	CollectionStyle CollectionStyle // SequenceStartEvent, MappingStartEvent

	Implicit       bool // DocumentStartEvent/End, SequenceStart, MappingStart, plain Scalar
	QuotedImplicit bool // ScalarEvent: tag optional for a non-plain style
}

// DefaultTagDirectives are the two implicit handles every document starts
// with, per the YAML 1.2 spec. Ported from the teacher's internal/common
// package.
var DefaultTagDirectives = []TagDirective{
	{Handle: []byte("!"), Prefix: []byte("!")},
	{Handle: []byte("!!"), Prefix: []byte("tag:yaml.org,2002:")},
}

const (
	NullTag      = "tag:yaml.org,2002:null"
	BoolTag      = "tag:yaml.org,2002:bool"
	StrTag       = "tag:yaml.org,2002:str"
	IntTag       = "tag:yaml.org,2002:int"
	FloatTag     = "tag:yaml.org,2002:float"
	TimestampTag = "tag:yaml.org,2002:timestamp"
	SeqTag       = "tag:yaml.org,2002:seq"
	MapTag       = "tag:yaml.org,2002:map"
)
