package yary_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolysis/yary"
)

func drain(t *testing.T, s *yary.Stream) []yary.Event {
	t.Helper()
	var events []yary.Event
	for {
		ev, err := s.Next()
		if errors.Is(err, yary.ErrStreamEnded) {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func TestStreamBasicMapping(t *testing.T) {
	s := yary.NewStream(yary.FromBytes([]byte("a: 1\nb: 2\n")), yary.Options{})
	events := drain(t, s)

	require.Len(t, events, 10)
	require.Equal(t, "a", string(mustMaterialize(t, events[3])))
	require.Equal(t, "1", string(mustMaterialize(t, events[4])))

	require.True(t, errors.Is(lastErr(t, s), io.EOF))
}

func lastErr(t *testing.T, s *yary.Stream) error {
	t.Helper()
	_, err := s.Next()
	return err
}

func mustMaterialize(t *testing.T, ev yary.Event) []byte {
	t.Helper()
	b, err := ev.Materialize()
	require.NoError(t, err)
	return b
}

func TestStreamEagerByDefault(t *testing.T) {
	s := yary.NewStream(yary.FromBytes([]byte("a: 1\n")), yary.Options{})
	events := drain(t, s)

	var sawScalar bool
	for _, ev := range events {
		if ev.Type.String() == "Scalar" {
			sawScalar = true
			require.NotNil(t, ev.Scalar.Eager)
			require.Nil(t, ev.Scalar.Deferred)
		}
	}
	require.True(t, sawScalar)
}

func TestStreamLazyDefersMaterialization(t *testing.T) {
	s := yary.NewStream(yary.FromBytes([]byte("a: 1\n")), yary.Options{Lazy: true})
	events := drain(t, s)

	var sawDeferred bool
	for _, ev := range events {
		if ev.Type.String() == "Scalar" {
			sawDeferred = true
			require.Nil(t, ev.Scalar.Eager)
			require.NotNil(t, ev.Scalar.Deferred)
			_, err := ev.Materialize()
			require.NoError(t, err)
		}
	}
	require.True(t, sawDeferred)
}

func TestStreamUTF8BOMIsSniffedAndStripped(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a: 1\n")...)
	s := yary.NewStream(yary.FromBytes(input), yary.Options{})
	events := drain(t, s)
	require.Equal(t, "a", string(mustMaterialize(t, events[3])))
}

func TestStreamFlowSequence(t *testing.T) {
	s := yary.NewStream(yary.FromBytes([]byte("[1, 2, 3]\n")), yary.Options{})
	events := drain(t, s)
	require.Equal(t, "1", string(mustMaterialize(t, events[3])))
	require.Equal(t, "2", string(mustMaterialize(t, events[4])))
	require.Equal(t, "3", string(mustMaterialize(t, events[5])))
}

func TestStreamEmptyInputIsJustStreamBoundaries(t *testing.T) {
	s := yary.NewStream(yary.FromBytes(nil), yary.Options{})
	events := drain(t, s)
	require.Len(t, events, 2)
	require.Equal(t, "StreamStart", events[0].Type.String())
	require.Equal(t, "StreamEnd", events[1].Type.String())
}

func TestStreamNonExtendableFeedSurfacesUnexpectedEOF(t *testing.T) {
	feed := yary.NewFeed()
	_, werr := feed.Write([]byte("a: 1\nb: "))
	require.NoError(t, werr)

	s := yary.NewStream(feed, yary.Options{}) // Extendable left off on purpose
	// StreamStart..Scalar("1"); scanning "b" already needs the scanner's
	// 4-byte lookahead, which the unclosed feed cannot supply.
	for i := 0; i < 5; i++ {
		_, err := s.Next()
		require.NoError(t, err)
	}

	_, err := s.Next()
	require.Error(t, err)
	require.False(t, errors.Is(err, yary.ErrExtend))
}
