package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOption struct {
	Symbol string  `json:"symbol"`
	Strike float64 `json:"strike"`
}

func TestParseTradierResponse(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		body := []byte(`{"options":{"option":[{"symbol":"AAPL250321C00100000","strike":100},{"symbol":"AAPL250321P00100000","strike":100}]}}`)

		dtos, err := ParseTradierResponse[testOption](body)
		require.NoError(t, err)
		assert.Len(t, dtos, 2)
	})

	t.Run("single object", func(t *testing.T) {
		body := []byte(`{"options":{"option":{"symbol":"AAPL250321C00100000","strike":100}}}`)

		dtos, err := ParseTradierResponse[testOption](body)
		require.NoError(t, err)
		require.Len(t, dtos, 1)
		assert.Equal(t, 100.0, dtos[0].Strike)
	})

	t.Run("single string", func(t *testing.T) {
		dates, err := ParseTradierResponse[string]([]byte(`{"expirations":{"date":"2025-03-21"}}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"2025-03-21"}, dates)
	})

	t.Run("null", func(t *testing.T) {
		dtos, err := ParseTradierResponse[testOption]([]byte(`{"options":null}`))
		require.NoError(t, err)
		assert.Empty(t, dtos)

		dates, err := ParseTradierResponse[string]([]byte(`{"expirations":"null"}`))
		require.NoError(t, err)
		assert.Empty(t, dates)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseTradierResponse[testOption]([]byte(`{"a":1,"b":2}`))
		assert.Error(t, err)
	})
}
