package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"\uFEFFHello", "Hello"},
		{"it\u2019s \u201Cfine\u201D", "it's \"fine\""},
		{"wait\u2026", "wait..."},
		{"\uFF46\uFF55\uFF4C\uFF4C", "full"},
		{"a\u00A0b", "a b"},
		{"bell\a here", "bell here"},
		{"line one\nline\ttwo", "line one\nline\ttwo"},
		{"bad \xff byte", "bad \uFFFD byte"},
		{"How much does it cost?", "How much does it cost?"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CleanText(tc.in), "input %q", tc.in)
	}
}

func TestCleanFileContent(t *testing.T) {
	got, err := CleanFileContent([]byte("\xEF\xBB\xBFgreeting Hello \u2014 there"), "corpus.txt")
	require.NoError(t, err)
	assert.Equal(t, "greeting Hello -- there", got)
}

func TestIsLikelyBinary(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "a.txt")
	bin := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(text, []byte("greeting hi"), 0o644))
	require.NoError(t, os.WriteFile(bin, []byte{0x01, 0x00, 0x02}, 0o644))

	isBin, err := IsLikelyBinary(text)
	require.NoError(t, err)
	assert.False(t, isBin)

	isBin, err = IsLikelyBinary(bin)
	require.NoError(t, err)
	assert.True(t, isBin)

	_, err = IsLikelyBinary(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
