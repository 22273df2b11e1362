package msvc4

import "github.com/ausocean/msvc4/codec/msvc4/bits"

// mvTablesNBElems is the escape sentinel decodeMotionV34 checks for: a
// decoded MV table code equal to the table's element count means "value
// not in the table, read it as a raw 6-bit field instead" (§4.7).
const mvTablesNBElems = 1 << 6

// decodeMotionV2 decodes one motion vector component for V1/V2 pictures
// (§4.7): an H.263-style MV VLC with a following sign bit and an
// f_code-dependent extra-bits field. A zero code returns pred unchanged;
// any other code is combined with pred and wrapped by wrapMV — not a true
// modulo, matching the original's explicit single add/subtract rather than
// a modulo operator.
func decodeMotionV2(br *bits.BitReader, pred, fCode int) (int, error) {
	code, err := mvVLCV2.lookup(br)
	if err != nil {
		return 0, err
	}
	if code == 0 {
		return pred, nil
	}

	sign, err := br.ReadBit()
	if err != nil {
		return 0, err
	}

	val := code
	shift := fCode - 1
	if shift > 0 {
		val = (val - 1) << uint(shift)
		extra, err := br.ReadBits(shift)
		if err != nil {
			return 0, err
		}
		val |= int(extra)
		val++
	}
	if sign {
		val = -val
	}

	val += pred
	return wrapMV(val), nil
}

// decodeMotionV34 decodes one motion vector component for V3/W1 pictures
// (§4.7): a table-indexed VLC (ctx.MVTableIndex selects which of the two
// tables) with a raw 6-bit escape for values the table doesn't carry,
// combined with pred the same way as decodeMotionV2 but without an
// explicit sign bit (the table's and escape's values are offset by 32 from
// the table's center). Each call reads its own code, so decodeMotionPair
// spends one code (and, on escape, one 6-bit field) per component; there
// is no joint code covering both components of a vector.
func decodeMotionV34(br *bits.BitReader, ctx *PictureContext, pred int) (int, error) {
	table := mvTablesV34[ctx.MVTableIndex]

	code, err := table.lookup(br)
	if err != nil {
		return 0, err
	}

	var val int
	if code == mvTablesNBElems {
		v, err := br.ReadBits(6)
		if err != nil {
			return 0, err
		}
		val = int(v)
	} else {
		val = mvTableValues[ctx.MVTableIndex][code]
	}

	val += pred - 32
	return wrapMV(val), nil
}

// wrapMV applies the single-step wraparound used by both motion decoders,
// mapping any input in (-128, 128) into (-64, 64) (64 and -64 both become
// 0): this is "not exactly modulo encoding" (the original's own
// comment) because a value more than 64 away from the valid range is never
// produced by a well-formed bitstream, so one conditional add/subtract
// suffices instead of a true modulo reduction.
func wrapMV(v int) int {
	switch {
	case v <= -64:
		return v + 64
	case v >= 64:
		return v - 64
	default:
		return v
	}
}

// decodeMotionPair reads both components of a macroblock's motion vector,
// dispatching to the V1/V2 or V3/W1 decoder per ctx.Version. fCode is
// always 1 for V1/V2: this family never carries H.263's extended motion
// range (§4.7).
func decodeMotionPair(br *bits.BitReader, ctx *PictureContext, predX, predY int) (mx, my int, err error) {
	if ctx.Version.atLeastV3() {
		mx, err = decodeMotionV34(br, ctx, predX)
		if err != nil {
			return 0, 0, err
		}
		my, err = decodeMotionV34(br, ctx, predY)
		if err != nil {
			return 0, 0, err
		}
		return mx, my, nil
	}

	mx, err = decodeMotionV2(br, predX, 1)
	if err != nil {
		return 0, 0, err
	}
	my, err = decodeMotionV2(br, predY, 1)
	if err != nil {
		return 0, 0, err
	}
	return mx, my, nil
}
