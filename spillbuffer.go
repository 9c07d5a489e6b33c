package pjson

// DefaultSpillBufferSize is the inline capacity a Tokenizer's spill buffer
// starts with. A token that straddles a Feed boundary is copied here so the
// Sink always sees one contiguous span, even when the token's bytes were
// spread across several chunks.
const DefaultSpillBufferSize = 256

// growSpill grows buf to hold at least required bytes, following a
// max(required, prev+prev/2) policy. Go's allocator does not report
// allocation failure the way C's malloc does, so there is no second attempt
// at exactly the required size.
func growSpill(buf []byte, required int) []byte {
	if cap(buf) >= required {
		return buf
	}

	target := cap(buf) + cap(buf)/2
	if target < required {
		target = required
	}

	grown := make([]byte, len(buf), target)
	copy(grown, buf)
	return grown
}

// appendSpill appends data to t.spill, growing it first if necessary, and
// reports whether the append succeeded (always true on the stdlib
// allocator; see growSpill).
func (t *Tokenizer) appendSpill(data []byte) bool {
	required := len(t.spill) + len(data)
	t.spill = growSpill(t.spill, required)
	t.spill = append(t.spill, data...)
	return true
}

// resetSpill truncates the spill buffer to zero length but keeps its
// capacity, per spec.md §4.1 rule 5.
func (t *Tokenizer) resetSpill() {
	t.spill = t.spill[:0]
}
