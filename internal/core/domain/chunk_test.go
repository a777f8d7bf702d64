package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleFromSource(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{"tutorials/beginner/dataloader_tutorial.py", "dataloader tutorial"},
		{"docs/nn-functional.md", "nn functional"},
		{"autograd.md", "autograd"},
		{"README", "README"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, TitleFromSource(tc.source), "source %q", tc.source)
	}
}

func TestChunk_DisplayTitle(t *testing.T) {
	withTitle := Chunk{Title: "Autograd mechanics", Source: "docs/autograd.md"}
	assert.Equal(t, "Autograd mechanics", withTitle.DisplayTitle())

	withoutTitle := Chunk{Source: "tutorials/beginner/dataloader_tutorial.py"}
	assert.Equal(t, "dataloader tutorial", withoutTitle.DisplayTitle())
}
