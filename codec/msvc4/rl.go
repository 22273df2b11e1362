package msvc4

import "github.com/ausocean/msvc4/codec/msvc4/bits"

// rlTable holds one run-length table's (run, level) alphabet together with
// the max_level/max_run bounds the first-escape test uses (§4.9), and a
// dequantization-folded VLC variant per qscale the way
// msmpeg4_decode_init_static's INIT_FIRST_VLC_RL/VLC_INIT_RL builds
// rl->rl_vlc[0..31]: the encoder writes one flat (run,level) code per
// qscale, baking the multiply-by-qscale step into the table data so the
// block loop never does it at decode time.
type rlTable struct {
	// nCoeffs is the number of distinct (run, level) pairs the table's base
	// alphabet covers, before escape handling.
	nCoeffs int

	// maxLevel[run] and maxRun[level] bound what a first-escape coefficient
	// may legally encode without falling through to the second escape
	// (§4.9 "three-level escape").
	maxLevel [64]uint8
	maxRun   [64]uint8

	// vlcByQscale[q] is this table's codeword alphabet with every level
	// entry's sign-magnitude pair pre-multiplied by qscale q+1. lookup
	// indexes it by qscale-1, so qscale 1..31 (§3) reads slots 0..30; slot
	// 31 is built as well but no valid qscale selects it.
	vlcByQscale [32]*vlcTable
}

// rlCoeff is one entry of a run-length table's base alphabet: a codeword
// mapping to a specific (run, level, last) triple, flattened into a single
// vlcEntry value by packCoeff/unpackCoeff.
type rlCoeff struct {
	run, level int
	last       bool
}

// packCoeff and unpackCoeff fold a (run, level, last) triple into the
// int32 a vlcTable entry carries and back: the last flag in bit 0, run in
// the 6 bits above it, and level (already multiplied by qscale, so up to
// roughly 40*31) in the remaining high bits from bit 7.
func packCoeff(c rlCoeff) int32 {
	v := c.run<<1 | boolToInt(c.last)
	v |= c.level << 7
	return int32(v)
}

func unpackCoeff(v int32) rlCoeff {
	uv := int(v)
	return rlCoeff{
		run:   (uv >> 1) & 0x3f,
		last:  uv&1 != 0,
		level: uv >> 7,
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// buildRLTable constructs an rlTable from a base alphabet (one vlcSpec per
// (run, level, last) triple, value already packed with packCoeff) plus
// derived maxLevel/maxRun bounds, and then expands the per-qscale VLC
// variants (§4.9: "the encoder/decoder agree on a qscale-dependent level
// magnitude"). width is the base alphabet's flat table width (in bits);
// every qscale variant reuses the same width since multiplying level by
// qscale changes only the decoded value, never the codeword or its length.
func buildRLTable(width uint, specs []vlcSpec, maxLevel, maxRun [64]uint8) *rlTable {
	t := &rlTable{maxLevel: maxLevel, maxRun: maxRun, nCoeffs: len(specs)}
	for q := 0; q < 32; q++ {
		scaled := make([]vlcSpec, len(specs))
		for i, s := range specs {
			c := unpackCoeff(s.value)
			c.level *= q + 1
			scaled[i] = vlcSpec{code: s.code, len: s.len, value: packCoeff(c)}
		}
		t.vlcByQscale[q] = buildVLCTable(width, scaled)
	}
	return t
}

// lookup decodes one run-length-coded coefficient at the given qscale from
// w, returning its (run, level, last) triple. The sign bit that follows
// every run-length code in the bitstream (§4.9) is not consumed here; the
// block decoder reads it separately since zero-escape coefficients (level
// == escape sentinel) skip straight to the explicit escape path instead.
func (t *rlTable) lookup(w *bits.Window, qscale int) (rlCoeff, error) {
	v, err := t.vlcByQscale[qscale-1].lookupWindow(w)
	if err != nil {
		return rlCoeff{}, err
	}
	return unpackCoeff(int32(v)), nil
}
