package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, "sub-1"), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, "sub-1"), name)
	}
}

func TestEnabled_Percentages(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,broken=abc%")

	assert.True(t, m.Enabled("always", "sub-1"))
	assert.True(t, m.On("always"))
	assert.False(t, m.Enabled("never", "sub-1"))
	assert.False(t, m.Enabled("broken", "sub-1"))
	assert.False(t, m.On("canary"), "partial rollout needs a subject")

	first := m.Enabled("canary", "sub-42")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", "sub-42"))
	}
}

func TestEnabled_RolloutRoughlyMatchesPercentage(t *testing.T) {
	m := NewManager("canary=50%")

	on := 0
	for i := 0; i < 1000; i++ {
		if m.Enabled("canary", "subject-"+string(rune('a'+i%26))+string(rune('a'+i/26))) {
			on++
		}
	}
	assert.InDelta(t, 500, on, 150)
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,X=on, y = 20% ,z=off,=on")

	assert.Equal(t, []string{"x", "y", "z"}, m.Names())

	snap := m.Snapshot("")
	assert.Len(t, snap, 3)
	assert.True(t, snap["x"])
	assert.False(t, snap["y"])
	assert.False(t, snap["z"])
}

func TestNilManager(t *testing.T) {
	var m *Manager
	assert.False(t, m.On(GraphiQL))
	assert.Empty(t, m.Snapshot("sub"))
}
