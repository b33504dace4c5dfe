package csp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainRemoveRestore(t *testing.T) {
	d := newDomain(130)
	for _, v := range []Value{0, 3, 63, 64, 129} {
		d.add(v)
	}
	assert.Equal(t, 5, d.size)

	t.Run("remove reports presence", func(t *testing.T) {
		assert.True(t, d.remove(64))
		assert.False(t, d.has(64))
		assert.False(t, d.remove(64))
		assert.Equal(t, 4, d.size)
	})

	t.Run("restore puts the candidate back", func(t *testing.T) {
		d.restore(64)
		assert.True(t, d.has(64))
		assert.Equal(t, 5, d.size)
	})

	t.Run("restoring a present candidate panics", func(t *testing.T) {
		assert.Panics(t, func() { d.restore(3) })
	})
}

func TestDomainValuesAscending(t *testing.T) {
	d := newDomain(200)
	for _, v := range []Value{199, 64, 0, 65, 31} {
		d.add(v)
	}

	assert.Equal(t, []Value{0, 31, 64, 65, 199}, d.values())
}

func TestDomainRemoveMasked(t *testing.T) {
	//** Arrange: candidates straddling a word boundary, mask covering some
	d := newDomain(130)
	for _, v := range []Value{1, 62, 63, 64, 100} {
		d.add(v)
	}
	mask := make([]uint64, 3)
	for _, v := range []Value{62, 63, 64, 90} {
		mask[int(v)/wordBits] |= 1 << (uint(v) % wordBits)
	}

	//** Act
	removed := make([]Value, 0)
	d.removeMasked(mask, func(v Value) { removed = append(removed, v) })

	//** Assert: only present candidates are recorded, ascending
	assert.Equal(t, []Value{62, 63, 64}, removed)
	assert.Equal(t, []Value{1, 100}, d.values())
	assert.Equal(t, 2, d.size)
}
