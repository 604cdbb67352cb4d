package queue_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolysis/yary/internal/queue"
	"github.com/dolysis/yary/internal/yamlh"
)

func tok(typ yamlh.TokenType) yamlh.Token { return yamlh.Token{Type: typ} }

func TestPushOrdersBySortKeyThenSequence(t *testing.T) {
	q := queue.New()
	q.Push(10, tok(yamlh.ScalarToken))
	q.Push(5, tok(yamlh.KeyToken))
	q.Push(5, tok(yamlh.ValueToken))

	first, resolved, ok := q.PeekMin()
	require.True(t, ok)
	require.True(t, resolved)
	require.Equal(t, yamlh.KeyToken, first.Type)

	got, ok := q.PopMin()
	require.True(t, ok)
	require.Equal(t, yamlh.KeyToken, got.Type)

	got, ok = q.PopMin()
	require.True(t, ok)
	require.Equal(t, yamlh.ValueToken, got.Type)

	got, ok = q.PopMin()
	require.True(t, ok)
	require.Equal(t, yamlh.ScalarToken, got.Type)
}

func TestReserveBlocksUntilResolved(t *testing.T) {
	q := queue.New()
	mark := q.Reserve(1)
	q.Push(2, tok(yamlh.BlockEndToken))

	_, resolved, ok := q.PeekMin()
	require.True(t, ok)
	require.False(t, resolved)

	q.Resolve(mark, tok(yamlh.KeyToken))
	got, resolved, ok := q.PeekMin()
	require.True(t, ok)
	require.True(t, resolved)
	require.Equal(t, yamlh.KeyToken, got.Type)
}

func TestCancelRemovesReservation(t *testing.T) {
	q := queue.New()
	mark := q.Reserve(1)
	q.Push(2, tok(yamlh.ScalarToken))

	q.Cancel(mark)

	got, resolved, ok := q.PeekMin()
	require.True(t, ok)
	require.True(t, resolved)
	require.Equal(t, yamlh.ScalarToken, got.Type)
	require.Equal(t, 1, q.Len())
}

func TestInsertBeforeSortsAheadOfItsMark(t *testing.T) {
	q := queue.New()
	mark := q.Reserve(8)
	q.InsertBefore(mark, tok(yamlh.BlockMappingStartToken))
	q.Resolve(mark, tok(yamlh.KeyToken))

	got, ok := q.PopMin()
	require.True(t, ok)
	require.Equal(t, yamlh.BlockMappingStartToken, got.Type)

	got, ok = q.PopMin()
	require.True(t, ok)
	require.Equal(t, yamlh.KeyToken, got.Type)
}

func TestRemoveSeqAfterUndoesLaterPushes(t *testing.T) {
	q := queue.New()
	q.Push(1, tok(yamlh.StreamStartToken))
	threshold := int64(4) // first allocated sequence number, per seqStep

	q.Push(2, tok(yamlh.BlockMappingStartToken))
	q.Push(3, tok(yamlh.KeyToken))
	require.Equal(t, 3, q.Len())

	q.RemoveSeqAfter(threshold)
	require.Equal(t, 1, q.Len())

	got, ok := q.PopMin()
	require.True(t, ok)
	require.Equal(t, yamlh.StreamStartToken, got.Type)
}
