package report

import (
	"bytes"
	"testing"

	"nat-flow-resolver/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matched(in, out string) model.Result {
	return model.Result{
		Endpoint: mustAddr(in),
		Output:   mustAddr(out),
		Matched:  true,
	}
}

func unmatched(in string) model.Result {
	return model.Result{Endpoint: mustAddr(in), RuleIndex: -1}
}

func mustAddr(raw string) model.Address {
	a, err := model.ParseAddress(raw)
	if err != nil {
		panic(err)
	}
	return a
}

func TestFormatResult(t *testing.T) {
	assert.Equal(t, "1.1.1.1:22 -> 9.9.9.9:1", FormatResult(matched("1.1.1.1:22", "9.9.9.9:1")))
	assert.Equal(t, "No NAT match for 3.3.3.3:44", FormatResult(unmatched("3.3.3.3:44")))
}

func TestWriterOrdersOutOfSequenceResults(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Write(2, unmatched("3.3.3.3:3")))
	require.NoError(t, w.Write(1, matched("2.2.2.2:2", "9.9.9.9:1")))
	assert.Equal(t, 2, w.Pending())

	require.NoError(t, w.Write(0, matched("1.1.1.1:1", "9.9.9.9:1")))
	assert.Equal(t, 0, w.Pending())
	require.NoError(t, w.Flush())

	assert.Equal(t,
		"1.1.1.1:1 -> 9.9.9.9:1\n"+
			"2.2.2.2:2 -> 9.9.9.9:1\n"+
			"No NAT match for 3.3.3.3:3\n",
		buf.String())
	assert.Equal(t, uint64(2), w.Matched())
	assert.Equal(t, uint64(1), w.Unmatched())
}

func TestWriterHoldsResultsAfterGap(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Write(0, unmatched("1.1.1.1:1")))
	require.NoError(t, w.Write(2, unmatched("3.3.3.3:3")))
	require.NoError(t, w.Flush())

	assert.Equal(t, "No NAT match for 1.1.1.1:1\n", buf.String())
	assert.Equal(t, 1, w.Pending())
}

func TestWriterRejectsReusedSequence(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})

	require.NoError(t, w.Write(0, unmatched("1.1.1.1:1")))
	assert.Error(t, w.Write(0, unmatched("1.1.1.1:1")))

	require.NoError(t, w.Write(5, unmatched("1.1.1.1:1")))
	assert.Error(t, w.Write(5, unmatched("1.1.1.1:1")))
}
