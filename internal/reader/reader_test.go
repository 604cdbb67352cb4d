package reader_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolysis/yary/internal/reader"
)

func TestPeekPadsWithNulAtEOF(t *testing.T) {
	r := reader.New(reader.FromBytes([]byte("ab")))

	got, err := r.Peek(4)
	require.NoError(t, err)
	require.Equal(t, []byte{'a', 'b', 0, 0}, got)
}

func TestAdvanceTracksLineAndColumn(t *testing.T) {
	r := reader.New(reader.FromBytes([]byte("ab\ncd")))

	_, err := r.Peek(5)
	require.NoError(t, err)

	r.Advance(2)
	pos := r.Position()
	require.Equal(t, 0, pos.Line)
	require.Equal(t, 2, pos.Column)

	r.Advance(1) // consume the line break
	pos = r.Position()
	require.Equal(t, 1, pos.Line)
	require.Equal(t, 0, pos.Column)

	r.Advance(2)
	pos = r.Position()
	require.Equal(t, 1, pos.Line)
	require.Equal(t, 2, pos.Column)
}

func TestSliceAbsoluteRoundTrips(t *testing.T) {
	r := reader.New(reader.FromBytes([]byte("hello world")))

	_, err := r.Peek(11)
	require.NoError(t, err)

	got, err := r.SliceAbsolute(6, 11)
	require.NoError(t, err)
	require.Equal(t, "world", string(got))
}

func TestCommitDiscardsBelowWatermark(t *testing.T) {
	r := reader.New(reader.FromBytes([]byte("0123456789")))

	_, err := r.Peek(10)
	require.NoError(t, err)

	r.Pin(3)
	r.Advance(8)
	r.Commit()

	_, err = r.SliceAbsolute(0, 3)
	require.ErrorIs(t, err, reader.ErrDiscarded)

	got, err := r.SliceAbsolute(3, 8)
	require.NoError(t, err)
	require.Equal(t, "34567", string(got))
}

func TestFeedReturnsNeedMoreThenDrains(t *testing.T) {
	feed := reader.NewFeed()
	r := reader.New(feed)
	require.True(t, r.Extendable())

	_, err := r.Peek(1)
	require.ErrorIs(t, err, reader.ErrNeedMore)

	_, writeErr := feed.Write([]byte("x"))
	require.NoError(t, writeErr)

	got, err := r.Peek(1)
	require.NoError(t, err)
	require.Equal(t, []byte{'x'}, got)

	require.NoError(t, feed.Close())
}
