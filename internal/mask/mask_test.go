package mask

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskReplacesWholeWords(t *testing.T) {
	m := Build(NewSet("censurada"))
	require.NotNil(t, m)

	got := Mask("essa palavra é censurada", m)
	require.Equal(t, "essa palavra é ******", got)
}

func TestMaskCaseInsensitive(t *testing.T) {
	m := Build(NewSet("merda"))

	require.Equal(t, "que ******", Mask("que MERDA", m))
	require.Equal(t, "que ******", Mask("que Merda", m))
}

func TestMaskMultipleOccurrences(t *testing.T) {
	m := Build(NewSet("foo", "bar"))

	got := Mask("foo then bar then foo again", m)
	require.Equal(t, "****** then ****** then ****** again", got)
}

func TestMaskAccentedWholeWords(t *testing.T) {
	m := Build(NewSet("ódio", "irmã"))

	require.Equal(t, "que ****** total", Mask("que ódio total", m))
	require.Equal(t, "minha ****** chegou", Mask("minha irmã chegou", m))
	require.Equal(t, "****** ******", Mask("ódio irmã", m))
	require.Equal(t, "******!", Mask("ódio!", m))
	require.Equal(t, "que ******", Mask("que Ódio", m))

	// Accented words embedded in longer words stay untouched.
	require.Equal(t, "módio episódios", Mask("módio episódios", m))
	require.Equal(t, "irmãs", Mask("irmãs", m))
}

func TestMaskBoundaryNextToAccentedNeighbors(t *testing.T) {
	m := Build(NewSet("merda"))

	// An accented letter is still a word character, not a boundary.
	require.Equal(t, "merdaé", Mask("merdaé", m))
	require.Equal(t, "émerda", Mask("émerda", m))
}

func TestMaskEscapesMetacharacters(t *testing.T) {
	m := Build(NewSet("c.a"))

	require.Equal(t, "saw ****** here", Mask("saw c.a here", m))
	require.Equal(t, "saw cxa here", Mask("saw cxa here", m), "dot must not act as a wildcard")
}

func TestMaskStableWhenSetUnchanged(t *testing.T) {
	m := Build(NewSet("porra", "caralho"))
	text := "porra, que caralho é esse"

	once := Mask(text, m)
	require.Equal(t, once, Mask(once, m))
}

func TestBuildEmptySetReturnsNil(t *testing.T) {
	require.Nil(t, Build(nil))
	require.Nil(t, Build(NewSet()))
	require.Nil(t, Build(NewSet("", "   ")))
}

func TestMaskNilMatcherIsIdentity(t *testing.T) {
	require.Equal(t, "anything goes", Mask("anything goes", nil))
}

func TestSetDeduplicatesCaseInsensitively(t *testing.T) {
	s := NewSet("Merda", "merda", "MERDA", "porra")
	require.Equal(t, 2, s.Len())
	require.Equal(t, []string{"Merda", "porra"}, s.Words())
}

func TestSetAddRemove(t *testing.T) {
	s := NewSet("a")
	require.True(t, s.Add("b"))
	require.False(t, s.Add("B"))
	require.True(t, s.Contains("A"))

	require.True(t, s.Remove("a"))
	require.False(t, s.Remove("a"))
	require.Equal(t, []string{"b"}, s.Words())
}
