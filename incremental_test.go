package yary_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolysis/yary"
)

// TestStreamIncrementalFeedingMatchesOneShot drives the public Stream over
// a Feed one byte at a time, per spec.md §8 scenario 7: under
// Options.Extendable, a suspended scan step must resume exactly where it
// left off rather than losing or duplicating a token, so the resulting
// event sequence is indistinguishable from parsing the whole input at once.
func TestStreamIncrementalFeedingMatchesOneShot(t *testing.T) {
	input := []byte("a: [1, 2]\nb: *x\n")

	want := drain(t, yary.NewStream(yary.FromBytes(input), yary.Options{}))

	feed := yary.NewFeed()
	s := yary.NewStream(feed, yary.Options{Extendable: true})

	pos := 0
	var got []yary.Event
	for len(got) == 0 || got[len(got)-1].Type.String() != "StreamEnd" {
		ev, err := s.Next()
		if errors.Is(err, yary.ErrExtend) {
			if pos < len(input) {
				_, werr := feed.Write(input[pos : pos+1])
				require.NoError(t, werr)
				pos++
			} else {
				require.NoError(t, feed.Close())
			}
			continue
		}
		require.NoError(t, err)
		got = append(got, ev)
	}

	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].Type, got[i].Type, "event %d", i)
	}
}

// TestStreamExtendableResumesAfterEachChunk exercises the same scenario
// with larger, uneven chunks rather than single bytes, matching how a
// real network reader would hand data to a Feed.
func TestStreamExtendableResumesAfterEachChunk(t *testing.T) {
	chunks := [][]byte{
		[]byte("a: 1\n"),
		[]byte("b: "),
		[]byte("2\n"),
	}

	feed := yary.NewFeed()
	s := yary.NewStream(feed, yary.Options{Extendable: true})

	var got []yary.Event
	next := 0
	for len(got) == 0 || got[len(got)-1].Type.String() != "StreamEnd" {
		ev, err := s.Next()
		if errors.Is(err, yary.ErrExtend) {
			if next < len(chunks) {
				_, werr := feed.Write(chunks[next])
				require.NoError(t, werr)
				next++
			} else {
				require.NoError(t, feed.Close())
			}
			continue
		}
		require.NoError(t, err)
		got = append(got, ev)
	}

	want := drain(t, yary.NewStream(yary.FromBytes([]byte("a: 1\nb: 2\n")), yary.Options{}))
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].Type, got[i].Type, "event %d", i)
	}
}
