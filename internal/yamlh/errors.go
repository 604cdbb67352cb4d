package yamlh

import "fmt"

// ErrorKind is the public error taxonomy from spec.md §7, grouped by the
// component that raises it. It is a closed set; Other is the escape hatch
// for forward extension without breaking the enum.
type ErrorKind int

const (
	NoErrorKind ErrorKind = iota

	// Reader.
	InvalidUtf8Kind
	IoErrorKind
	UnexpectedEofKind

	// Directive.
	InvalidVersionKind
	InvalidTagHandleKind
	InvalidTagPrefixKind
	DuplicateTagDirectiveKind
	InvalidTagSuffixKind
	UnknownDirectiveKind

	// Indicator / structure.
	InvalidKeyKind
	InvalidValueKind
	InvalidBlockEntryKind
	InvalidTabKind
	UnknownDelimiterKind
	MissingValueKind

	// Scalar.
	InvalidFlowScalarKind
	UnknownEscapeKind
	InvalidPlainScalarKind
	InvalidBlockScalarKind

	// Anchor / alias.
	InvalidAnchorNameKind

	// Integer.
	IntOverflowKind

	// Incremental.
	ExtendKind

	// Catchall.
	OtherKind
)

var errorKindNames = map[ErrorKind]string{
	NoErrorKind:               "NoError",
	InvalidUtf8Kind:           "InvalidUtf8",
	IoErrorKind:               "IoError",
	UnexpectedEofKind:         "UnexpectedEof",
	InvalidVersionKind:        "InvalidVersion",
	InvalidTagHandleKind:      "InvalidTagHandle",
	InvalidTagPrefixKind:      "InvalidTagPrefix",
	DuplicateTagDirectiveKind: "DuplicateTagDirective",
	InvalidTagSuffixKind:      "InvalidTagSuffix",
	UnknownDirectiveKind:      "UnknownDirective",
	InvalidKeyKind:            "InvalidKey",
	InvalidValueKind:          "InvalidValue",
	InvalidBlockEntryKind:     "InvalidBlockEntry",
	InvalidTabKind:            "InvalidTab",
	UnknownDelimiterKind:      "UnknownDelimiter",
	MissingValueKind:          "MissingValue",
	InvalidFlowScalarKind:     "InvalidFlowScalar",
	UnknownEscapeKind:         "UnknownEscape",
	InvalidPlainScalarKind:    "InvalidPlainScalar",
	InvalidBlockScalarKind:    "InvalidBlockScalar",
	InvalidAnchorNameKind:     "InvalidAnchorName",
	IntOverflowKind:           "IntOverflow",
	ExtendKind:                "Extend",
	OtherKind:                 "Other",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the public error shape from spec.md §6: every error carries a
// position, a kind, and a human-readable message.
type Error struct {
	Pos     Position
	Kind    ErrorKind
	Message string

	// Wrapped is the originating component error, when there is one worth
	// preserving for errors.As/errors.Unwrap chains.
	Wrapped error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("yary: %s: %s (%s)", e.Kind, e.Message, e.Pos)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// NewError builds an *Error, the single constructor every component funnels
// through — the Go analogue of the teacher's buildParserError helper.
func NewError(pos Position, kind ErrorKind, message string) *Error {
	return &Error{Pos: pos, Kind: kind, Message: message}
}

// Wrap attaches an originating error for errors.As/errors.Unwrap without
// changing the reported kind/message.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}
