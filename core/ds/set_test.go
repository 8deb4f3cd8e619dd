package ds

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet_Json(t *testing.T) {
	s := NewStringSet("hello", "world", "!")

	var data []byte

	data, _ = json.Marshal(&s)
	require.Equal(t, `["hello","world","!"]`, string(data))

	data, _ = json.Marshal(s)
	require.Equal(t, `["hello","world","!"]`, string(data))

	data, _ = json.Marshal(*s)
	require.Equal(t, `["hello","world","!"]`, string(data))
}

func TestSet_AddRemove(t *testing.T) {
	s := NewStringSet()
	require.True(t, s.IsEmpty())

	s.Add("hello")
	require.False(t, s.IsEmpty())
	require.True(t, s.Contains("hello"))

	s.Remove("hello")
	require.True(t, s.IsEmpty())
	require.False(t, s.Contains("hello"))
}

func TestSet_Add_Duplicate(t *testing.T) {
	s := NewStringSet("a", "b", "a")
	require.Equal(t, 2, s.Len())
	require.Equal(t, []string{"a", "b"}, s.Values())
}

func TestSet_Order_Preserved(t *testing.T) {
	s := NewSet[int]()
	for _, v := range []int{5, 3, 9, 1} {
		s.Add(v)
	}
	require.Equal(t, []int{5, 3, 9, 1}, s.Values())

	s.Remove(3)
	require.Equal(t, []int{5, 9, 1}, s.Values())

	// re-adding puts the element at the back
	s.Add(3)
	require.Equal(t, []int{5, 9, 1, 3}, s.Values())
}

func TestSet_ForEach(t *testing.T) {
	s := NewStringSet("x", "y", "z")

	var seen []string
	s.ForEach(func(v string) { seen = append(seen, v) })
	require.Equal(t, []string{"x", "y", "z"}, seen)
}

func TestSet_Copy_Independent(t *testing.T) {
	a := NewStringSet("a", "b")
	b := a.Copy()

	b.Add("c")
	require.Equal(t, 2, a.Len())
	require.Equal(t, 3, b.Len())
}

func TestSet_Clear(t *testing.T) {
	s := NewStringSet("a", "b")
	s.Clear()
	require.True(t, s.IsEmpty())
	require.Empty(t, s.Values())

	s.Add("again")
	require.Equal(t, []string{"again"}, s.Values())
}
