package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchQuery_Normalized(t *testing.T) {
	q := SearchQuery{Text: "  attention mask  "}
	n := q.Normalized()

	assert.Equal(t, "attention mask", n.Text)
	assert.Equal(t, DefaultNumResults, n.NumResults)

	// Explicit values are left alone.
	q = SearchQuery{Text: "x", NumResults: 10}
	assert.Equal(t, 10, q.Normalized().NumResults)
}

func TestSearchQuery_Validate(t *testing.T) {
	cases := []struct {
		name    string
		query   SearchQuery
		wantErr bool
	}{
		{"valid", SearchQuery{Text: "tensors"}, false},
		{"valid with whitespace", SearchQuery{Text: "  tensors  "}, false},
		{"valid explicit bounds", SearchQuery{Text: "tensors", NumResults: MaxNumResults}, false},
		{"valid min", SearchQuery{Text: "tensors", NumResults: MinNumResults}, false},
		{"valid code filter", SearchQuery{Text: "tensors", Filter: FilterCode}, false},
		{"empty text", SearchQuery{Text: ""}, true},
		{"whitespace only", SearchQuery{Text: " \t\n "}, true},
		{"negative num_results", SearchQuery{Text: "tensors", NumResults: -5}, true},
		{"num_results above max", SearchQuery{Text: "tensors", NumResults: MaxNumResults + 1}, true},
		{"bad filter", SearchQuery{Text: "tensors", Filter: "prose"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.query.Validate()
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidQuery)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestChunkFilter_Matches(t *testing.T) {
	assert.True(t, FilterNone.Matches(ChunkTypeCode))
	assert.True(t, FilterNone.Matches(ChunkTypeText))
	assert.True(t, FilterCode.Matches(ChunkTypeCode))
	assert.False(t, FilterCode.Matches(ChunkTypeText))
	assert.True(t, FilterText.Matches(ChunkTypeText))
	assert.False(t, FilterText.Matches(ChunkTypeCode))
}
