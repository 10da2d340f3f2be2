package storage

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReaderReportsMonotonicPercentages(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 1000)

	var reported []int
	reader := &progressReader{
		r:     bytes.NewReader(payload),
		total: int64(len(payload)),
		onProgress: func(pct int) {
			reported = append(reported, pct)
		},
	}

	buf := make([]byte, 64)
	_, err := io.CopyBuffer(io.Discard, reader, buf)
	require.NoError(t, err)

	require.NotEmpty(t, reported)
	for i := 1; i < len(reported); i++ {
		assert.Greater(t, reported[i], reported[i-1], "percentages must strictly increase")
	}
	for _, pct := range reported {
		assert.GreaterOrEqual(t, pct, 0)
		assert.LessOrEqual(t, pct, 100)
	}
	assert.Equal(t, 100, reported[len(reported)-1])
}

func TestProgressReaderCapsOverreportedTotals(t *testing.T) {
	// A source larger than the declared size must never report past 100.
	payload := bytes.Repeat([]byte("x"), 200)

	var last int
	reader := &progressReader{
		r:          bytes.NewReader(payload),
		total:      100,
		onProgress: func(pct int) { last = pct },
	}

	_, err := io.Copy(io.Discard, reader)
	require.NoError(t, err)
	assert.Equal(t, 100, last)
}

func TestProgressReaderWithoutCallbackStillReads(t *testing.T) {
	payload := []byte("hello")
	reader := &progressReader{r: bytes.NewReader(payload), total: int64(len(payload))}

	out, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}
