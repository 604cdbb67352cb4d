// Package scanner turns a byte stream into yamlh.Tokens, grounded on the
// teacher's internal/parserc/scannerc.go (itself a port of libyaml's
// scanner.c). The two genuinely tricky pieces it inherits are "block
// collection start" — deciding retroactively that an indentation increase
// began a sequence or mapping — and "simple keys" — deciding retroactively
// that a scalar just scanned was a mapping key once a ':' shows up after
// it, possibly several tokens later.
//
// Where the teacher resolves both by inserting tokens at a remembered
// array index, this scanner resolves them through internal/queue: a
// simple-key candidate reserves a slot in the queue before its scalar is
// scanned, and is only resolved (or cancelled) once its fate is known.
package scanner

import (
	"errors"
	"fmt"

	"github.com/dolysis/yary/internal/queue"
	"github.com/dolysis/yary/internal/reader"
	"github.com/dolysis/yary/internal/yamlh"
)

// ErrExtend is returned when an extendable Reader runs out of buffered
// input mid-token. The caller must feed more bytes into the underlying
// Source and call Next again; the scanner resumes from an internal
// snapshot taken before the current fetch began.
var ErrExtend = errors.New("scanner: need more input to continue")

const maxFlowLevel = 10000
const maxIndents = 10000

// context distinguishes block context from the two flow contexts, per
// spec.md §4.3.3; only flow contexts matter for the ',' vs ':' simple-key
// dispatch and for whether indentation is tracked at all.
type context int8

const (
	blockContext context = iota
	flowSequenceContext
	flowMappingContext
)

// simpleKey is a candidate position the scanner may later decide was a
// mapping key, per spec.md §4.3.4.
type simpleKey struct {
	possible bool
	required bool
	mark     yamlh.Position
	slot     queue.Mark
}

// Scanner drives a reader.Reader, emitting tokens into a queue.Queue.
type Scanner struct {
	r *reader.Reader
	q *queue.Queue

	seq int64 // monotonic token sort-key counter

	streamStartProduced bool
	streamEndProduced   bool

	encoding yamlh.Encoding

	indent  int
	indents []int

	flowLevel int
	contexts  []context

	simpleKeyAllowed bool
	simpleKeys       []simpleKey // one per flow level, index 0 is block level

	tagHandles map[string]bool // duplicate %TAG detection, reset per document
}

// New creates a Scanner reading from r.
func New(r *reader.Reader, encoding yamlh.Encoding) *Scanner {
	s := &Scanner{
		r:          r,
		q:          queue.New(),
		indent:     -1,
		encoding:   encoding,
		tagHandles: map[string]bool{},
	}
	s.simpleKeys = append(s.simpleKeys, simpleKey{})
	return s
}

func (s *Scanner) allocSeq() int64 {
	s.seq++
	return s.seq
}

func (s *Scanner) push(tok yamlh.Token) {
	s.q.Push(int(s.allocSeq()), tok)
}

func (s *Scanner) reserve() queue.Mark {
	return s.q.Reserve(int(s.allocSeq()))
}

func (s *Scanner) currentContext() context {
	if s.flowLevel == 0 {
		return blockContext
	}
	return s.contexts[len(s.contexts)-1]
}

// snapshot captures every field a fetch step can mutate before it has
// fully committed to producing a token, so a mid-fetch ErrExtend can undo
// exactly that step and nothing else.
type snapshot struct {
	reader   reader.Snapshot
	seq      int64 // scanner's own sortKey counter
	queueSeq int64 // queue's internal tie-breaker counter, a different scale

	indent  int
	indents []int

	flowLevel int
	contexts  []context

	simpleKeyAllowed bool
	simpleKeys       []simpleKey
}

func (s *Scanner) snapshot() snapshot {
	return snapshot{
		reader:           s.r.Snapshot(),
		seq:              s.seq,
		queueSeq:         s.q.HighWater(),
		indent:           s.indent,
		indents:          append([]int(nil), s.indents...),
		flowLevel:        s.flowLevel,
		contexts:         append([]context(nil), s.contexts...),
		simpleKeyAllowed: s.simpleKeyAllowed,
		simpleKeys:       append([]simpleKey(nil), s.simpleKeys...),
	}
}

func (s *Scanner) restore(snap snapshot) {
	s.r.Restore(snap.reader)
	s.q.RemoveSeqAfter(snap.queueSeq)
	s.seq = snap.seq
	s.indent = snap.indent
	s.indents = snap.indents
	s.flowLevel = snap.flowLevel
	s.contexts = snap.contexts
	s.simpleKeyAllowed = snap.simpleKeyAllowed
	s.simpleKeys = snap.simpleKeys
}

// Next returns the next token, fetching as many new tokens as necessary to
// resolve any pending simple key at the front of the queue. It returns
// ErrExtend if the underlying Reader is extendable and ran dry mid-fetch;
// the caller feeds more bytes into the Source and calls Next again, which
// resumes the suspended fetch step from scratch against the unchanged
// cursor position — per spec.md §4.3.8, a fetch step that cannot complete
// leaves no partial effect behind.
func (s *Scanner) Next() (yamlh.Token, error) {
	for {
		tok, resolved, ok := s.q.PeekMin()
		if ok && resolved {
			s.q.PopMin()
			return tok, nil
		}

		snap := s.snapshot()
		if err := s.fetchNextToken(); err != nil {
			if errors.Is(err, ErrExtend) {
				s.restore(snap)
			}
			return yamlh.Token{}, err
		}
	}
}

func (s *Scanner) pos() yamlh.Position { return s.r.Position() }

func (s *Scanner) errf(kind yamlh.ErrorKind, format string, args ...any) error {
	return yamlh.NewError(s.pos(), kind, fmt.Sprintf(format, args...))
}

func (s *Scanner) peek(n int) ([]byte, error) {
	b, err := s.r.Peek(n)
	if err != nil {
		if errors.Is(err, reader.ErrNeedMore) {
			return nil, ErrExtend
		}
		return nil, err
	}
	return b, nil
}

func (s *Scanner) skip(n int) { s.r.Advance(n) }
