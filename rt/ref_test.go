package rt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_ReleaseRunsOnceAfterLastHandle(t *testing.T) {
	released := 0
	r := NewRef(42, func() { released++ })

	clones := make([]Ref[int], 5)
	for i := range clones {
		clones[i] = r.Clone()
	}

	assert.Equal(t, 42, r.Get())
	assert.False(t, r.IsNull())

	// release in a different order to the one they were cloned
	r.Release()
	for i := len(clones) - 1; i >= 0; i-- {
		clones[i].Release()
	}

	require.Equal(t, 1, released)
}

func TestRef_NullRef(t *testing.T) {
	var r Ref[string]
	assert.True(t, r.IsNull())
	r.Release() // must not panic on a null ref
}

func TestRef_Equal(t *testing.T) {
	r := NewRef(1, nil)
	clone := r.Clone()
	other := NewRef(1, nil)

	assert.True(t, r.Equal(clone))
	assert.False(t, r.Equal(other))

	clone.Release()
	r.Release()
	other.Release()
}
