// Package yary is the public surface over internal/reader,
// internal/scanner, and internal/parser: a streaming YAML 1.2 front end
// that turns bytes into yamlh.Events, grounded on the teacher's apic.go
// (which plays the same "thin shim over the real engine" role, there
// fused into one internal/parserc).
//
// yary deliberately stops at events — no tree builder, no typed
// deserialization, no emitter. Composing events into a graph, resolving
// tags to Go types, and round-tripping back to bytes are all named as
// external collaborators in spec.md §1 and SPEC_FULL.md §1.
package yary

import (
	"errors"
	"fmt"
	"io"

	"github.com/dolysis/yary/internal/parser"
	"github.com/dolysis/yary/internal/reader"
	"github.com/dolysis/yary/internal/scanner"
	"github.com/dolysis/yary/internal/yamlh"
)

// Options configures a Stream, matching spec.md §6's flag table exactly.
// Every flag defaults to off.
type Options struct {
	// Lazy makes Scalar events carry a DeferredScalar descriptor instead
	// of an already-materialized body; the caller must call
	// Event.Materialize to get bytes. Off by default: Next eagerly
	// decodes every scalar before returning it.
	Lazy bool

	// Extendable makes Next surface ErrExtend when the Source reports
	// NeedMore mid-token, instead of treating input exhaustion as a
	// terminal error. Set this when driving the stream from a Feed (or
	// any other Source whose Extendable() is true) and feeding bytes in
	// incrementally.
	Extendable bool

	// SmallBufferTest forces the Reader's retained window to grow by the
	// minimum legal chunk on every fill, per spec.md §6. It exists to
	// exercise incremental-feeding edge cases — a token's lookahead
	// straddling two fills — against sources that would otherwise hand
	// over their whole payload in one read.
	SmallBufferTest bool
}

// ErrExtend is the public sentinel for scanner.ErrExtend: the Source
// ran out of buffered input mid-token, but — since Options.Extendable is
// set — this is recoverable. Feed more bytes into the Source and call
// Next again.
var ErrExtend = errors.New("yary: need more input to continue")

// ErrStreamEnded wraps io.EOF and is returned by every Next call after
// the one that returned the StreamEnd event, per SPEC_FULL.md §8's
// "io.EOF-wrapping sentinel" contract.
var ErrStreamEnded = fmt.Errorf("yary: stream already ended: %w", io.EOF)

// Error is the public error shape from SPEC_FULL.md §9: every error
// carries a position, a closed-taxonomy Kind, and a message, and unwraps
// to whichever component error raised it. It is an alias for yamlh.Error
// rather than a distinct type so existing errors.As call sites work
// without this package re-implementing the taxonomy.
type Error = yamlh.Error

// ErrorKind is spec.md §7's closed error taxonomy, grouped by the
// component that raises it.
type ErrorKind = yamlh.ErrorKind

// Source is the byte-source contract from spec.md §6. It is an alias for
// internal/reader's Source so callers never need to spell out the
// internal import themselves; FromBytes, FromReader, and NewFeed below
// are the only constructors most callers need.
type Source = reader.Source

// FromBytes returns a Source over an already-resident byte slice.
func FromBytes(data []byte) Source { return reader.FromBytes(data) }

// FromReader adapts a blocking io.Reader into a Source. It is never
// extendable: reads block on r, and only io.EOF (or a read error) ends the
// stream.
func FromReader(r io.Reader) Source { return reader.FromReader(r) }

// Feed is an extendable Source the caller pushes chunks into explicitly,
// for Options.Extendable-driven incremental feeding.
type Feed = reader.Feed

// NewFeed returns an empty, open Feed.
func NewFeed() *Feed { return reader.NewFeed() }

// Event is one item of a Stream's output, wrapping yamlh.Event with the
// Materialize method spec.md §6's Event API requires.
type Event struct {
	yamlh.Event
}

// Materialize returns the event's scalar content, decoding a deferred
// descriptor (afresh on every call) if Options.Lazy was set. For any other event
// type, or a Scalar event with no payload (e.g. a synthesized empty
// scalar), it returns nil, nil.
func (e Event) Materialize() ([]byte, error) {
	if e.Scalar.Eager != nil {
		return e.Scalar.Eager, nil
	}
	if e.Scalar.Deferred == nil {
		return nil, nil
	}
	return scanner.Decode(e.Scalar.Deferred)
}

// Stream drives one Reader, Scanner, and Parser over a single byte
// source, per SPEC_FULL.md §8: the scanner and parser are split into
// separately testable components, but Stream is the single owner that
// wires them together the way the teacher's one YamlParser struct wires
// scanning and parsing state.
type Stream struct {
	r    *reader.Reader
	p    *parser.Parser
	opts Options

	ended bool
}

// NewStream creates a Stream reading from src. No bytes are pulled from
// src until the first call to Next — encoding sniffing (spec.md §4.1) is
// itself a read that can return ErrExtend against an extendable src, so
// it is deferred into the same resumable path as everything else.
func NewStream(src reader.Source, opts Options) *Stream {
	var ropts []reader.Option
	if opts.SmallBufferTest {
		ropts = append(ropts, reader.WithChunkSize(reader.MinChunkSize))
	}
	return &Stream{r: reader.New(src, ropts...), opts: opts}
}

func (s *Stream) ensureStarted() error {
	if s.p != nil {
		return nil
	}
	enc, err := s.r.SniffEncoding()
	if err != nil {
		return s.translateErr(err)
	}
	s.p = parser.New(scanner.New(s.r, enc))
	return nil
}

// Next returns the next event in the stream. After the call that returns
// the StreamEnd event, every subsequent call returns ErrStreamEnded.
//
// If Options.Extendable is set and the underlying Source runs out of
// buffered input mid-token, Next returns ErrExtend; the caller feeds more
// bytes into the Source (e.g. Feed.Write) and calls Next again, which
// resumes the suspended scan step exactly where it left off, per
// spec.md §4.3.8. Calling Next again after any other error is undefined:
// scanner and parser errors are fatal to the whole parse attempt (§7).
func (s *Stream) Next() (Event, error) {
	if s.ended {
		return Event{}, ErrStreamEnded
	}
	if err := s.ensureStarted(); err != nil {
		return Event{}, err
	}

	ev, err := s.p.Next()
	if err != nil {
		return Event{}, s.translateErr(err)
	}
	if ev.Type == yamlh.NoEvent {
		s.ended = true
		return Event{}, ErrStreamEnded
	}
	if ev.Type == yamlh.StreamEndEvent {
		s.ended = true
	}

	if !s.opts.Lazy && ev.Scalar.Deferred != nil {
		body, derr := scanner.Decode(ev.Scalar.Deferred)
		if derr != nil {
			return Event{}, derr
		}
		ev.Scalar = yamlh.ScalarPayload{Eager: body}
	}

	return Event{Event: ev}, nil
}

// translateErr maps the internal ErrExtend/ErrNeedMore sentinels onto the
// public contract: recoverable only when Options.Extendable says the
// caller is prepared to feed more input and retry. Per spec.md §6,
// "under non-incremental use, NeedMore is treated as EOF" — so without
// the flag, a suspended scan surfaces as a terminal UnexpectedEof rather
// than a silently-swallowed short read.
func (s *Stream) translateErr(err error) error {
	if errors.Is(err, scanner.ErrExtend) || errors.Is(err, reader.ErrNeedMore) {
		if s.opts.Extendable {
			return ErrExtend
		}
		return yamlh.NewError(s.r.Position(), yamlh.UnexpectedEofKind, "input exhausted without Options.Extendable set")
	}
	return err
}
