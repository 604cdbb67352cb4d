// Package queue implements the priority token queue from spec.md §4.2: a
// stable min-heap keyed by (sort key, insertion sequence), ported from
// original_source's queue.rs (a std BinaryHeap<Reverse<QueueEntry<T>>>)
// onto Go's container/heap.
//
// The scanner often decides *after* scanning a scalar and the colon that
// follows it that the scalar was a mapping key, and must splice a
// BlockMappingStart/Key pair before that scalar in the stream the parser
// sees. Rather than backpatch array indices (the teacher's approach in
// yaml_insert_token), this queue reserves a slot at the scalar's start
// position and resolves it later; inserting a token that must sort before
// an already-reserved slot is a plain heap push at the slot's own sortKey
// with a sequence number one below the slot's.
package queue

import (
	"container/heap"

	"github.com/dolysis/yary/internal/yamlh"
)

// seqStep spaces out sequence numbers so that InsertBefore always has at
// least a few free sequence values to slot into ahead of an existing
// entry, without ever renumbering the rest of the heap. original_source's
// queue.rs doc comment notes the access pattern this is tuned for:
// "mostly inserting in sorted order, ... never more than +-3 elements
// apart".
const seqStep = 4

// Mark is an opaque handle to a reserved, not-yet-resolved queue slot.
type Mark struct {
	entry *entry
}

// Valid reports whether the mark still refers to a live reservation.
func (m Mark) Valid() bool { return m.entry != nil }

type entry struct {
	sortKey  int
	seq      int64
	token    yamlh.Token
	resolved bool
}

// Queue is a stable min-heap of tokens ordered by (sortKey, seq).
type Queue struct {
	h      minHeap
	nextID int64
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

func (q *Queue) allocSeq() int64 {
	q.nextID += seqStep
	return q.nextID
}

// Push inserts an already-known token at sortKey, in arrival order
// relative to other tokens at the same sortKey.
func (q *Queue) Push(sortKey int, tok yamlh.Token) {
	e := &entry{sortKey: sortKey, seq: q.allocSeq(), token: tok, resolved: true}
	heap.Push(&q.h, e)
}

// Reserve allocates a slot at sortKey without a token yet, returning a
// Mark the caller resolves later via Resolve, or abandons via Cancel. This
// is spec.md §4.2's mark_token.
func (q *Queue) Reserve(sortKey int) Mark {
	e := &entry{sortKey: sortKey, seq: q.allocSeq(), resolved: false}
	heap.Push(&q.h, e)
	return Mark{entry: e}
}

// Resolve fills in a previously reserved slot. This is spec.md §4.2's
// resolve_mark. The slot's position in the total order does not change.
func (q *Queue) Resolve(m Mark, tok yamlh.Token) {
	m.entry.token = tok
	m.entry.resolved = true
}

// Cancel removes a reservation that turned out not to be needed (e.g. a
// simple-key candidate invalidated before it ever bound to a colon).
func (q *Queue) Cancel(m Mark) {
	for i, e := range q.h {
		if e == m.entry {
			heap.Remove(&q.h, i)
			return
		}
	}
}

// RemoveSeqAfter discards every entry allocated after threshold, undoing
// whatever a fetch step pushed before it had to suspend with ErrExtend.
// Reserved-but-unresolved marks held by the caller from that same step
// become invalid; the caller is responsible for not touching them again.
func (q *Queue) RemoveSeqAfter(threshold int64) {
	kept := q.h[:0]
	for _, e := range q.h {
		if e.seq <= threshold {
			kept = append(kept, e)
		}
	}
	q.h = kept
	heap.Init(&q.h)
}

// InsertBefore pushes a fully-resolved token that must sort strictly
// before an existing (possibly still-reserved) mark at the same logical
// position — e.g. a BlockMappingStart inserted ahead of the Key slot it
// introduces. It consumes one unit of the sequence headroom seqStep left
// around m's allocation.
func (q *Queue) InsertBefore(m Mark, tok yamlh.Token) {
	e := &entry{sortKey: m.entry.sortKey, seq: m.entry.seq - 1, token: tok, resolved: true}
	heap.Push(&q.h, e)
}

// PeekMin returns the minimum entry without removing it. ok is false if
// the queue is empty. resolved reports whether the front slot has a real
// token yet — the scanner must keep fetching while the front exists but is
// unresolved.
func (q *Queue) PeekMin() (tok yamlh.Token, resolved bool, ok bool) {
	if len(q.h) == 0 {
		return yamlh.Token{}, false, false
	}
	top := q.h[0]
	return top.token, top.resolved, true
}

// PopMin removes and returns the minimum entry. The caller must not call
// this when the front is unresolved.
func (q *Queue) PopMin() (yamlh.Token, bool) {
	if len(q.h) == 0 {
		return yamlh.Token{}, false
	}
	e := heap.Pop(&q.h).(*entry)
	return e.token, true
}

// Len returns the number of entries currently queued (resolved or not).
func (q *Queue) Len() int { return len(q.h) }

// HighWater returns the most recently allocated internal sequence number,
// for a caller that needs to later undo everything pushed after this point
// via RemoveSeqAfter. It is unrelated to the caller's own sortKey values.
func (q *Queue) HighWater() int64 { return q.nextID }

// minHeap implements container/heap.Interface over (sortKey, seq).
type minHeap []*entry

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	if h[i].sortKey != h[j].sortKey {
		return h[i].sortKey < h[j].sortKey
	}
	return h[i].seq < h[j].seq
}
func (h minHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x any) {
	*h = append(*h, x.(*entry))
}

func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
