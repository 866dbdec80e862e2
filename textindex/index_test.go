package textindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIndex() *Index {
	ix := New()
	ix.Add(1, "jlpt1 verb")
	ix.Add(2, "jlpt2")
	ix.Add(3, "jlpt1 noun")
	return ix
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"jlpt1", "verb"}, Tokenize("  JLPT1   Verb "))
	assert.Empty(t, Tokenize("   "))
}

func TestMatch_Union(t *testing.T) {
	ix := buildIndex()

	// The compiler emits quoted terms joined by OR.
	got := ix.Match(`"jlpt1" OR "jlpt2"`)
	assert.Equal(t, []uint32{1, 2, 3}, got.ToArray())

	got = ix.Match("jlpt1")
	assert.Equal(t, []uint32{1, 3}, got.ToArray())

	assert.True(t, ix.Match(`"missing"`).IsEmpty())
	assert.True(t, ix.Match("").IsEmpty())
}

func TestMatchAll_Intersection(t *testing.T) {
	ix := buildIndex()

	got := ix.MatchAll(`"jlpt1" "verb"`)
	assert.Equal(t, []uint32{1}, got.ToArray())

	assert.True(t, ix.MatchAll(`"jlpt1" "missing"`).IsEmpty())
}

func TestMatch_CaseInsensitive(t *testing.T) {
	ix := New()
	ix.Add(7, "Verb")

	assert.Equal(t, []uint32{7}, ix.Match("VERB").ToArray())
}

func TestAdd_ReplacesPreviousDocument(t *testing.T) {
	ix := buildIndex()
	ix.Add(1, "adjective")

	assert.True(t, ix.Match("verb").IsEmpty())
	assert.Equal(t, []uint32{1}, ix.Match("adjective").ToArray())
	assert.Equal(t, 3, ix.Len())
}

func TestAdd_EmptyTextRemovesDocument(t *testing.T) {
	ix := buildIndex()
	ix.Add(2, "")

	assert.Equal(t, 2, ix.Len())
	assert.True(t, ix.Match("jlpt2").IsEmpty())
}

func TestDelete(t *testing.T) {
	ix := buildIndex()
	ix.Delete(1)

	require.Equal(t, 2, ix.Len())
	assert.Equal(t, []uint32{3}, ix.Match("jlpt1").ToArray())
	assert.True(t, ix.Match("verb").IsEmpty())

	// Deleting an unknown id is a no-op.
	ix.Delete(99)
	assert.Equal(t, 2, ix.Len())
}
