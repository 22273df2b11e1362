package msvc4

import "github.com/ausocean/msvc4/codec/msvc4/bits"

// vlcEntry is one codeword's payload in a flat table: the decoded value and
// the number of bits the codeword occupies. A zero-length entry marks a
// slot that no codeword maps to (§4.2: "fail closed" on no-match).
type vlcEntry struct {
	value int32
	len   uint8
}

// vlcTable is a flat, fixed-bit-width lookup table built once from a list
// of (codeword, length, value) triples and then probed by peeking the
// table's full width and masking down to each entry's actual length. This
// generalizes cavlc.go's formCoeffTokenMap/readCoeffToken bit-by-bit
// map walk: instead of matching a prefix one bit at a time against a
// map[string]coeffToken, every possible bit-width-many-bit suffix that
// extends a codeword is pre-filled with the same entry, so a lookup is one
// slice index instead of a bit-by-bit walk.
type vlcTable struct {
	width   uint // number of bits every entry maps to
	entries []vlcEntry
}

// vlcSpec describes one codeword to be installed into a vlcTable: code is
// left-justified within len bits (len <= width), value is the decoded
// symbol.
type vlcSpec struct {
	code  uint32
	len   uint8
	value int32
}

// buildVLCTable constructs a flat table of 1<<width entries from specs.
// Each spec's codeword is repeated across every suffix completion so a
// width-bit peek always lands on the right entry regardless of the bits
// following the codeword proper. buildVLCTable panics on a width or code
// overflow or on two specs colliding over the same prefix: both are
// programmer errors in the caller's static table data, never reachable
// from bitstream input (construction happens once under a sync.Once
// guard, §5).
func buildVLCTable(width uint, specs []vlcSpec) *vlcTable {
	if width == 0 || width > 32 {
		panic("msvc4: invalid vlc table width")
	}
	t := &vlcTable{width: width, entries: make([]vlcEntry, 1<<width)}
	for _, s := range specs {
		if s.len == 0 || uint(s.len) > width {
			panic("msvc4: invalid vlc spec length")
		}
		if s.code >= 1<<s.len {
			panic("msvc4: vlc code does not fit its length")
		}
		fill := width - uint(s.len)
		base := s.code << fill
		for suffix := uint32(0); suffix < 1<<fill; suffix++ {
			idx := base | suffix
			if t.entries[idx].len != 0 {
				panic("msvc4: vlc table entry collision")
			}
			t.entries[idx] = vlcEntry{value: s.value, len: s.len}
		}
	}
	return t
}

// lookup peeks w.width bits from br without consuming them, resolves the
// matching entry, and advances br by the entry's actual codeword length.
// It returns ErrInvalidVLC if the peeked bits hit an unfilled slot, or if
// br has fewer than width bits remaining and none of the reachable-length
// prefixes of what remains resolve to a filled entry.
func (t *vlcTable) lookup(br *bits.BitReader) (int, error) {
	avail := br.BitsRemaining()
	if avail == 0 {
		return 0, ErrBufferExhausted
	}
	peekWidth := t.width
	if uint(avail) < peekWidth {
		peekWidth = uint(avail)
	}
	bitsVal, err := br.PeekBits(int(peekWidth))
	if err != nil {
		return 0, err
	}
	idx := uint32(bitsVal) << (t.width - peekWidth)
	e := t.entries[idx]
	if e.len == 0 || uint(e.len) > peekWidth {
		return 0, ErrInvalidVLC
	}
	if err := br.SkipBits(int(e.len)); err != nil {
		return 0, err
	}
	return int(e.value), nil
}

// lookupWindow is the bits.Window equivalent of lookup, used inside the
// escape-ladder AC decode loop (§4.9) where the caller already holds an
// open cached-bit window and must not pay OpenWindow/Close's flush
// cost per coefficient.
func (t *vlcTable) lookupWindow(w *bits.Window) (int, error) {
	bitsVal := w.Peek(int(t.width))
	if err := w.Err(); err != nil {
		return 0, ErrBufferExhausted
	}
	e := t.entries[bitsVal]
	if e.len == 0 {
		return 0, ErrInvalidVLC
	}
	w.Skip(int(e.len))
	return int(e.value), nil
}
