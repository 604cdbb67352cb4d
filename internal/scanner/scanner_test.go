package scanner_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolysis/yary/internal/reader"
	"github.com/dolysis/yary/internal/scanner"
	"github.com/dolysis/yary/internal/yamlh"
)

func drain(t *testing.T, s *scanner.Scanner) []yamlh.Token {
	t.Helper()
	var toks []yamlh.Token
	for {
		tok, err := s.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Type == yamlh.StreamEndToken {
			return toks
		}
	}
}

func types(toks []yamlh.Token) []yamlh.TokenType {
	out := make([]yamlh.TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func materialize(t *testing.T, tok yamlh.Token) string {
	t.Helper()
	require.True(t, tok.Scalar.IsDeferred())
	got, err := scanner.Decode(tok.Scalar.Deferred)
	require.NoError(t, err)
	return string(got)
}

func TestScanBasicBlockMapping(t *testing.T) {
	s := scanner.New(reader.New(reader.FromBytes([]byte("a: b\n"))), yamlh.UTF8Encoding)
	toks := drain(t, s)

	require.Equal(t, []yamlh.TokenType{
		yamlh.StreamStartToken,
		yamlh.BlockMappingStartToken,
		yamlh.KeyToken,
		yamlh.ScalarToken,
		yamlh.ValueToken,
		yamlh.ScalarToken,
		yamlh.BlockEndToken,
		yamlh.StreamEndToken,
	}, types(toks))

	require.Equal(t, "a", materialize(t, toks[3]))
	require.Equal(t, "b", materialize(t, toks[5]))
}

func TestScanNestedBlockSequenceUnderKey(t *testing.T) {
	s := scanner.New(reader.New(reader.FromBytes([]byte("a:\n  - 1\n  - 2\n"))), yamlh.UTF8Encoding)
	toks := drain(t, s)

	require.Equal(t, []yamlh.TokenType{
		yamlh.StreamStartToken,
		yamlh.BlockMappingStartToken,
		yamlh.KeyToken,
		yamlh.ScalarToken,
		yamlh.ValueToken,
		yamlh.BlockSequenceStartToken,
		yamlh.BlockEntryToken,
		yamlh.ScalarToken,
		yamlh.BlockEntryToken,
		yamlh.ScalarToken,
		yamlh.BlockEndToken,
		yamlh.BlockEndToken,
		yamlh.StreamEndToken,
	}, types(toks))
}

func TestScanFlowSequence(t *testing.T) {
	s := scanner.New(reader.New(reader.FromBytes([]byte("[1, 2]\n"))), yamlh.UTF8Encoding)
	toks := drain(t, s)

	require.Equal(t, []yamlh.TokenType{
		yamlh.StreamStartToken,
		yamlh.FlowSequenceStartToken,
		yamlh.ScalarToken,
		yamlh.FlowEntryToken,
		yamlh.ScalarToken,
		yamlh.FlowSequenceEndToken,
		yamlh.StreamEndToken,
	}, types(toks))

	require.Equal(t, "1", materialize(t, toks[2]))
	require.Equal(t, "2", materialize(t, toks[4]))
}

func TestScanFlowMapping(t *testing.T) {
	s := scanner.New(reader.New(reader.FromBytes([]byte("{a: 1, b: 2}\n"))), yamlh.UTF8Encoding)
	toks := drain(t, s)

	require.Equal(t, []yamlh.TokenType{
		yamlh.StreamStartToken,
		yamlh.FlowMappingStartToken,
		yamlh.KeyToken,
		yamlh.ScalarToken,
		yamlh.ValueToken,
		yamlh.ScalarToken,
		yamlh.FlowEntryToken,
		yamlh.KeyToken,
		yamlh.ScalarToken,
		yamlh.ValueToken,
		yamlh.ScalarToken,
		yamlh.FlowMappingEndToken,
		yamlh.StreamEndToken,
	}, types(toks))
}

func TestScanAnchorAndAlias(t *testing.T) {
	s := scanner.New(reader.New(reader.FromBytes([]byte("a: &x 1\nb: *x\n"))), yamlh.UTF8Encoding)
	toks := drain(t, s)

	require.Equal(t, []yamlh.TokenType{
		yamlh.StreamStartToken,
		yamlh.BlockMappingStartToken,
		yamlh.KeyToken,
		yamlh.ScalarToken,
		yamlh.ValueToken,
		yamlh.AnchorToken,
		yamlh.ScalarToken,
		yamlh.KeyToken,
		yamlh.ScalarToken,
		yamlh.ValueToken,
		yamlh.AliasToken,
		yamlh.BlockEndToken,
		yamlh.StreamEndToken,
	}, types(toks))

	require.Equal(t, []byte("x"), toks[5].Value)
	require.Equal(t, []byte("x"), toks[10].Value)
}

func TestScanDoubleQuotedScalarEscapes(t *testing.T) {
	s := scanner.New(reader.New(reader.FromBytes([]byte(`"a\tb\n"` + "\n"))), yamlh.UTF8Encoding)
	toks := drain(t, s)
	require.Equal(t, yamlh.ScalarToken, toks[1].Type)
	require.Equal(t, "a\tb\n", materialize(t, toks[1]))
}

func TestScanSingleQuotedScalarDoubledQuote(t *testing.T) {
	s := scanner.New(reader.New(reader.FromBytes([]byte(`'it''s'` + "\n"))), yamlh.UTF8Encoding)
	toks := drain(t, s)
	require.Equal(t, yamlh.ScalarToken, toks[1].Type)
	require.Equal(t, "it's", materialize(t, toks[1]))
}

func TestScanLiteralBlockScalarStripsNothingByDefault(t *testing.T) {
	s := scanner.New(reader.New(reader.FromBytes([]byte("|\n  line1\n  line2\n"))), yamlh.UTF8Encoding)
	toks := drain(t, s)
	require.Equal(t, yamlh.ScalarToken, toks[1].Type)
	require.Equal(t, "line1\nline2\n", materialize(t, toks[1]))
}

func TestScanLiteralBlockScalarStripChomping(t *testing.T) {
	s := scanner.New(reader.New(reader.FromBytes([]byte("|-\n  line1\n  line2\n"))), yamlh.UTF8Encoding)
	toks := drain(t, s)
	require.Equal(t, yamlh.ScalarToken, toks[1].Type)
	require.Equal(t, "line1\nline2", materialize(t, toks[1]))
}

func TestScanFoldedBlockScalarPreservesMoreIndentedLines(t *testing.T) {
	s := scanner.New(reader.New(reader.FromBytes([]byte(">\n  line1\n    more indented\n  line2\n"))), yamlh.UTF8Encoding)
	toks := drain(t, s)
	require.Equal(t, yamlh.ScalarToken, toks[1].Type)
	require.Equal(t, "line1\n  more indented\nline2\n", materialize(t, toks[1]))
}

func TestScanRequiredSimpleKeyWithoutColonErrors(t *testing.T) {
	// "c" starts at the same column as the open mapping's key indent, so
	// it is a *required* simple key; hitting stream end without a ':'
	// ever following it must surface MissingValueKind.
	s := scanner.New(reader.New(reader.FromBytes([]byte("a: b\nc\n"))), yamlh.UTF8Encoding)
	var err error
	for {
		var tok yamlh.Token
		tok, err = s.Next()
		if err != nil || (tok.Type == yamlh.ScalarToken && materialize(t, tok) == "c") {
			break
		}
	}
	require.NoError(t, err)

	_, err = s.Next()
	require.Error(t, err)
	var yerr *yamlh.Error
	require.ErrorAs(t, err, &yerr)
	require.Equal(t, yamlh.MissingValueKind, yerr.Kind)
}

func TestIncrementalFeedingMatchesOneShot(t *testing.T) {
	oneShot := scanner.New(reader.New(reader.FromBytes([]byte("a: [1, 2]\n"))), yamlh.UTF8Encoding)
	want := drain(t, oneShot)

	feed := reader.NewFeed()
	r := reader.New(feed)
	s := scanner.New(r, yamlh.UTF8Encoding)

	input := []byte("a: [1, 2]\n")
	pos := 0
	var got []yamlh.Token
	for len(got) == 0 || got[len(got)-1].Type != yamlh.StreamEndToken {
		tok, err := s.Next()
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
		got = append(got, tok)
	}

	require.Equal(t, types(want), types(got))
}
