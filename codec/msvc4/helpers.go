package msvc4

import "github.com/ausocean/msvc4/codec/msvc4/bits"

// maxi, mini and absi are kept from the teacher's general-purpose int
// helpers; the block decoder's AC overflow check uses maxi to keep its
// qmul divisor nonzero.
func maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func mini(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func absi(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// decode012 reads the shared unary-style table-index primitive used
// throughout the picture header (§4.3): 0 -> 0, 10 -> 1, 11 -> 2.
func decode012(br *bits.BitReader) (int, error) {
	b, err := br.ReadBits(1)
	if err != nil {
		return 0, err
	}
	if b == 0 {
		return 0, nil
	}
	b, err = br.ReadBits(1)
	if err != nil {
		return 0, err
	}
	if b == 0 {
		return 1, nil
	}
	return 2, nil
}

// signExtend applies the XOR-trick sign flip: given a magnitude and a
// single sign bit (1 meaning negative), returns the signed value without a
// branch, mirroring
// `(level ^ SHOW_SBITS(re, 1)) - SHOW_SBITS(re, 1)` in msmpeg4dec.c, where
// SHOW_SBITS(1) sign-extends a single bit to all-zeros or all-ones. The
// block decoder's applySign and the motion decoders negate with a branch
// instead of calling it.
func signExtend(magnitude int, sign uint64) int {
	mask := -int(sign)
	return (magnitude ^ mask) - mask
}
