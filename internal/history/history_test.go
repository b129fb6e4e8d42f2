package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory(t *testing.T) {
	t.Run("starts empty without an initial fragment", func(t *testing.T) {
		m := NewMemory("")
		assert.Equal(t, 0, m.Len())
		assert.Equal(t, "", m.Fragment())
	})

	t.Run("initial fragment becomes the first entry", func(t *testing.T) {
		m := NewMemory("map=7/1.000/2.000")
		assert.Equal(t, 1, m.Len())
		assert.Equal(t, "map=7/1.000/2.000", m.Fragment())
	})

	t.Run("push adds entries", func(t *testing.T) {
		m := NewMemory("a=1")
		m.Push("a=2")
		m.Push("a=3")
		assert.Equal(t, []string{"a=1", "a=2", "a=3"}, m.Entries())
		assert.Equal(t, "a=3", m.Fragment())
	})

	t.Run("replace rewrites the current entry", func(t *testing.T) {
		m := NewMemory("a=1")
		m.Push("a=2")
		m.Replace("a=9")
		assert.Equal(t, []string{"a=1", "a=9"}, m.Entries())
	})

	t.Run("replace on an empty stack behaves like push", func(t *testing.T) {
		m := NewMemory("")
		m.Replace("a=1")
		assert.Equal(t, []string{"a=1"}, m.Entries())
	})
}
