package parser_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolysis/yary/internal/parser"
	"github.com/dolysis/yary/internal/reader"
	"github.com/dolysis/yary/internal/scanner"
	"github.com/dolysis/yary/internal/yamlh"
)

func drain(t *testing.T, p *parser.Parser) []yamlh.Event {
	t.Helper()
	var events []yamlh.Event
	for {
		ev, err := p.Next()
		require.NoError(t, err)
		if ev.Type == yamlh.NoEvent {
			return events
		}
		events = append(events, ev)
		if ev.Type == yamlh.StreamEndEvent {
			return events
		}
	}
}

func newParser(src string) *parser.Parser {
	s := scanner.New(reader.New(reader.FromBytes([]byte(src))), yamlh.UTF8Encoding)
	return parser.New(s)
}

func types(events []yamlh.Event) []yamlh.EventType {
	out := make([]yamlh.EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func materialize(t *testing.T, ev yamlh.Event) string {
	t.Helper()
	require.True(t, ev.Scalar.IsDeferred())
	got, err := scanner.Decode(ev.Scalar.Deferred)
	require.NoError(t, err)
	return string(got)
}

func TestParseBasicBlockMapping(t *testing.T) {
	events := drain(t, newParser("a: b\n"))

	require.Equal(t, []yamlh.EventType{
		yamlh.StreamStartEvent,
		yamlh.DocumentStartEvent,
		yamlh.MappingStartEvent,
		yamlh.ScalarEvent,
		yamlh.ScalarEvent,
		yamlh.MappingEndEvent,
		yamlh.DocumentEndEvent,
		yamlh.StreamEndEvent,
	}, types(events))

	require.True(t, events[1].Implicit)
	require.Equal(t, yamlh.BlockCollectionStyle, events[2].CollectionStyle)
	require.Equal(t, "a", materialize(t, events[3]))
	require.Equal(t, "b", materialize(t, events[4]))
	require.True(t, events[3].Implicit)
	require.True(t, events[6].Implicit)
}

func TestParseFlowSequence(t *testing.T) {
	events := drain(t, newParser("[1, 2]\n"))

	require.Equal(t, []yamlh.EventType{
		yamlh.StreamStartEvent,
		yamlh.DocumentStartEvent,
		yamlh.SequenceStartEvent,
		yamlh.ScalarEvent,
		yamlh.ScalarEvent,
		yamlh.SequenceEndEvent,
		yamlh.DocumentEndEvent,
		yamlh.StreamEndEvent,
	}, types(events))

	require.Equal(t, yamlh.FlowCollectionStyle, events[2].CollectionStyle)
	require.Equal(t, "1", materialize(t, events[3]))
	require.Equal(t, "2", materialize(t, events[4]))
}

func TestParseNestedBlockSequenceUnderKey(t *testing.T) {
	events := drain(t, newParser("a:\n  - 1\n  - 2\n"))

	require.Equal(t, []yamlh.EventType{
		yamlh.StreamStartEvent,
		yamlh.DocumentStartEvent,
		yamlh.MappingStartEvent,
		yamlh.ScalarEvent, // a
		yamlh.SequenceStartEvent,
		yamlh.ScalarEvent, // 1
		yamlh.ScalarEvent, // 2
		yamlh.SequenceEndEvent,
		yamlh.MappingEndEvent,
		yamlh.DocumentEndEvent,
		yamlh.StreamEndEvent,
	}, types(events))

	require.Equal(t, yamlh.BlockCollectionStyle, events[4].CollectionStyle)
}

func TestParseAnchorAndAlias(t *testing.T) {
	events := drain(t, newParser("a: &x 1\nb: *x\n"))

	require.Equal(t, []yamlh.EventType{
		yamlh.StreamStartEvent,
		yamlh.DocumentStartEvent,
		yamlh.MappingStartEvent,
		yamlh.ScalarEvent, // a
		yamlh.ScalarEvent, // 1, anchored "x"
		yamlh.ScalarEvent, // b
		yamlh.AliasEvent,  // *x
		yamlh.MappingEndEvent,
		yamlh.DocumentEndEvent,
		yamlh.StreamEndEvent,
	}, types(events))

	require.Equal(t, []byte("x"), events[4].Anchor)
	require.Equal(t, "1", materialize(t, events[4]))
	require.Equal(t, []byte("x"), events[6].Anchor)
}

func TestParseDefaultTagShorthandResolvesToCoreSchemaURI(t *testing.T) {
	events := drain(t, newParser("!!str abc\n"))

	require.Equal(t, []yamlh.EventType{
		yamlh.StreamStartEvent,
		yamlh.DocumentStartEvent,
		yamlh.ScalarEvent,
		yamlh.DocumentEndEvent,
		yamlh.StreamEndEvent,
	}, types(events))

	require.Equal(t, []byte("tag:yaml.org,2002:str"), events[2].Tag)
	require.False(t, events[2].Implicit)
}

func TestParseUndefinedTagHandleErrors(t *testing.T) {
	p := newParser("!x!str value\n")

	ev, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, yamlh.StreamStartEvent, ev.Type)

	ev, err = p.Next()
	require.NoError(t, err)
	require.Equal(t, yamlh.DocumentStartEvent, ev.Type)

	_, err = p.Next()
	require.Error(t, err)
	var yerr *yamlh.Error
	require.ErrorAs(t, err, &yerr)
	require.Equal(t, yamlh.InvalidTagHandleKind, yerr.Kind)
}

func TestParseMultiDocumentStream(t *testing.T) {
	events := drain(t, newParser("---\na\n...\n---\nb\n"))

	require.Equal(t, []yamlh.EventType{
		yamlh.StreamStartEvent,
		yamlh.DocumentStartEvent,
		yamlh.ScalarEvent,
		yamlh.DocumentEndEvent,
		yamlh.DocumentStartEvent,
		yamlh.ScalarEvent,
		yamlh.DocumentEndEvent,
		yamlh.StreamEndEvent,
	}, types(events))

	require.False(t, events[1].Implicit)
	require.False(t, events[3].Implicit) // explicit "..." terminator
	require.True(t, events[6].Implicit)  // stream ends without "..."
}

func TestIncrementalFeedingMatchesOneShot(t *testing.T) {
	want := drain(t, newParser("a: b\n"))

	feed := reader.NewFeed()
	s := scanner.New(reader.New(feed), yamlh.UTF8Encoding)
	p := parser.New(s)

	input := []byte("a: b\n")
	pos := 0
	var got []yamlh.Event
	for len(got) == 0 || got[len(got)-1].Type != yamlh.StreamEndEvent {
		ev, err := p.Next()
		if errors.Is(err, scanner.ErrExtend) {
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

	require.Equal(t, types(want), types(got))
}
