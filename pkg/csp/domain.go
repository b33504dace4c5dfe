package csp

import (
	"fmt"
	"math/bits"
)

const wordBits = 64

// domain is the mutable candidate set of a single variable, a bitset over
// Value codes. Propagation removes candidates one by one and backtracking
// restores them in reverse, so remove and restore are strict inverses.
type domain struct {
	words []uint64
	size  int
}

func newDomain(numValues int) *domain {
	return &domain{words: make([]uint64, (numValues+wordBits-1)/wordBits)}
}

func (d *domain) add(v Value) {
	i, mask := int(v)/wordBits, uint64(1)<<(uint(v)%wordBits)
	if d.words[i]&mask == 0 {
		d.words[i] |= mask
		d.size++
	}
}

func (d *domain) has(v Value) bool {
	return d.words[int(v)/wordBits]&(1<<(uint(v)%wordBits)) != 0
}

// remove clears v from the set and reports whether it was present.
func (d *domain) remove(v Value) bool {
	i, mask := int(v)/wordBits, uint64(1)<<(uint(v)%wordBits)
	if d.words[i]&mask == 0 {
		return false
	}
	d.words[i] &^= mask
	d.size--
	return true
}

// removeMasked clears every candidate that is set in mask, calling record for
// each value actually removed, in ascending order.
func (d *domain) removeMasked(mask []uint64, record func(Value)) {
	for i := range d.words {
		hits := d.words[i] & mask[i]
		if hits == 0 {
			continue
		}
		d.words[i] &^= hits
		d.size -= bits.OnesCount64(hits)
		for hits != 0 {
			b := bits.TrailingZeros64(hits)
			hits &= hits - 1
			record(Value(i*wordBits + b))
		}
	}
}

// restore puts a removed candidate back. Restoring a candidate that is still
// present means the undo log got out of sync with the domains, which is a bug,
// so it panics rather than mask it.
func (d *domain) restore(v Value) {
	i, mask := int(v)/wordBits, uint64(1)<<(uint(v)%wordBits)
	if d.words[i]&mask != 0 {
		panic(fmt.Sprintf("csp: restoring candidate %d that is still present", v))
	}
	d.words[i] |= mask
	d.size++
}

func (d *domain) empty() bool {
	return d.size == 0
}

// values lists the remaining candidates in ascending order.
func (d *domain) values() []Value {
	values := make([]Value, 0, d.size)
	for i, word := range d.words {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			word &= word - 1
			values = append(values, Value(i*wordBits+b))
		}
	}
	return values
}

func (d *domain) clone() *domain {
	words := make([]uint64, len(d.words))
	copy(words, d.words)
	return &domain{words: words, size: d.size}
}
