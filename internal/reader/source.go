// Package reader turns a byte source into the sliding, line/column-tracked
// window the scanner drives: Peek/Advance over a retained buffer, with
// deferred scalars able to re-slice any byte range that hasn't been
// discarded yet.
//
// Three Source implementations are provided: FromBytes (a single
// in-memory slice, never extendable, mirroring original_source's
// BorrowReader), FromReader (chunks pulled from a blocking io.Reader, also
// never extendable), and Feed (chunks pushed in by the caller, extendable:
// when the scanner runs out of buffered input mid-token it returns
// ErrNeedMore/ErrExtend rather than blocking, and the caller feeds more
// bytes in before resuming).
package reader

import (
	"io"
)

// Status reports what happened on a Source.Fill call.
type Status int8

const (
	// StatusReady means at least one byte was appended to the buffer.
	StatusReady Status = iota
	// StatusEOF means the source is exhausted; no further Fill call will
	// ever produce more bytes.
	StatusEOF
	// StatusNeedMore means no bytes are available right now, but the
	// source is not at EOF either — e.g. a Feed-based incremental source
	// waiting on its next chunk. Only ever returned by extendable sources.
	StatusNeedMore
)

// Source supplies raw bytes on demand. Fill is called with the buffer to
// append into and should return the number of bytes appended.
type Source interface {
	// Fill appends up to len(p) bytes to the end of the caller's buffer,
	// returning how many bytes it wrote and the resulting status.
	Fill(p []byte) (n int, status Status, err error)

	// Extendable reports whether this source can ever return
	// StatusNeedMore — i.e. whether the scanner must be prepared to
	// suspend with ErrExtend instead of treating a short read as EOF.
	Extendable() bool
}

// sliceSource serves a single, already fully in-memory buffer. It is never
// extendable: a short read always means EOF, grounded on
// original_source's BorrowReader, which wraps a `&str` and removes
// O_EXTENDABLE unconditionally in drive().
type sliceSource struct {
	data []byte
	off  int
}

// FromBytes returns a Source over an already-resident byte slice, never
// extendable.
func FromBytes(data []byte) Source {
	return &sliceSource{data: data}
}

func (s *sliceSource) Fill(p []byte) (int, Status, error) {
	if s.off >= len(s.data) {
		return 0, StatusEOF, nil
	}
	n := copy(p, s.data[s.off:])
	s.off += n
	status := StatusReady
	if s.off >= len(s.data) {
		status = StatusEOF
	}
	return n, status, nil
}

func (s *sliceSource) Extendable() bool { return false }

// ioSource adapts an io.Reader into a Source, grounded on
// original_source's OwnedReader/Impl.refresh_buffer, which pulls
// DEFAULT_BUFFER_SIZE-sized chunks from the underlying io.Read. A plain
// io.Reader blocks inside Read rather than returning "not ready yet", so
// this adapter is non-extendable: a zero-byte, non-EOF read is treated as
// a transient retry, and only io.EOF ends the stream.
type ioSource struct {
	r io.Reader
}

// FromReader adapts an io.Reader into a Source. Reads block on r the way
// an ordinary io.Reader does; use NewFeed instead when the caller wants to
// push chunks in without blocking (e.g. reading off a network connection
// alongside other work).
func FromReader(r io.Reader) Source {
	return &ioSource{r: r}
}

func (s *ioSource) Fill(p []byte) (int, Status, error) {
	for {
		n, err := s.r.Read(p)
		switch {
		case err == io.EOF:
			return n, StatusEOF, nil
		case err != nil:
			return n, StatusEOF, err
		case n > 0:
			return n, StatusReady, nil
		}
	}
}

func (s *ioSource) Extendable() bool { return false }

// Feed is an extendable Source fed by explicit Write calls rather than by
// blocking reads, grounded on spec.md §4.3.8's incremental feeding
// protocol. The scanner sees StatusNeedMore instead of StatusEOF when the
// buffered chunks run dry and Close has not been called yet.
type Feed struct {
	chunks [][]byte
	closed bool
}

// NewFeed returns an empty, open Feed.
func NewFeed() *Feed {
	return &Feed{}
}

// Write appends a chunk of input to be consumed by the scanner on its next
// Fill call. It is an error to Write after Close.
func (f *Feed) Write(p []byte) (int, error) {
	if f.closed {
		return 0, io.ErrClosedPipe
	}
	if len(p) == 0 {
		return 0, nil
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	f.chunks = append(f.chunks, buf)
	return len(p), nil
}

// Close marks the feed as exhausted: once its buffered chunks are drained,
// Fill reports StatusEOF instead of StatusNeedMore.
func (f *Feed) Close() error {
	f.closed = true
	return nil
}

func (f *Feed) Fill(p []byte) (int, Status, error) {
	if len(f.chunks) == 0 {
		if f.closed {
			return 0, StatusEOF, nil
		}
		return 0, StatusNeedMore, nil
	}
	chunk := f.chunks[0]
	n := copy(p, chunk)
	if n == len(chunk) {
		f.chunks = f.chunks[1:]
	} else {
		f.chunks[0] = chunk[n:]
	}
	status := StatusReady
	if len(f.chunks) == 0 && f.closed {
		status = StatusEOF
	}
	return n, status, nil
}

func (f *Feed) Extendable() bool { return true }
