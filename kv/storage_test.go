package kv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newHeaders() *Storage {
	return New().
		Add("Foo", "bar").
		Add("Hello", "World").
		Add("hello", "Pavlo")
}

func TestStorageGet(t *testing.T) {
	s := newHeaders()

	v, found := s.Get("HELLO")
	require.True(t, found)
	require.Equal(t, "World", v, "Get returns the first-inserted value for a case-insensitive match")
}

func TestStorageValues(t *testing.T) {
	s := newHeaders()
	require.Equal(t, []string{"World", "Pavlo"}, s.Values("hello"))
	require.Nil(t, s.Values("absent"))
}

func TestStorageFusion(t *testing.T) {
	// S3/Invariant 8: duplicate headers are exposed joined with ", "
	s := newHeaders()
	values := s.Values("Hello")
	joined := ""
	for i, v := range values {
		if i > 0 {
			joined += ", "
		}
		joined += v
	}
	require.Equal(t, "World, Pavlo", joined)
}

func TestStorageSet(t *testing.T) {
	s := newHeaders().Set("HELLO", "only one")
	require.Equal(t, []string{"only one"}, s.Values("hello"))
	require.Equal(t, 2, s.Len())
}

func TestStorageSetNewKey(t *testing.T) {
	s := New().Set("X-New", "value")
	require.Equal(t, "value", s.Value("x-new"))
}

func TestStorageKeys(t *testing.T) {
	s := New().Add("Foo", "1").Add("foo", "2").Add("Bar", "3")
	require.ElementsMatch(t, []string{"Foo", "Bar"}, s.Keys())
}

func TestStorageHasAndEmpty(t *testing.T) {
	s := New()
	require.True(t, s.Empty())
	require.False(t, s.Has("anything"))

	s.Add("k", "v")
	require.False(t, s.Empty())
	require.True(t, s.Has("K"))
}

func TestStorageClone(t *testing.T) {
	s := newHeaders()
	clone := s.Clone()
	clone.Add("New", "entry")

	require.Equal(t, 3, s.Len())
	require.Equal(t, 4, clone.Len())
}

func TestStorageClear(t *testing.T) {
	s := newHeaders().Clear()
	require.True(t, s.Empty())
}
