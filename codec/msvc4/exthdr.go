package msvc4

import "github.com/ausocean/msvc4/codec/msvc4/bits"

// extHeaderWindowBits is the fixed-size bit window the original decoder
// measures "left" against: (picture_type 2 + qscale 5 + slice_code 5 +
// ext_header 17 + 7 slack) bits, truncated to a whole byte count and
// multiplied back out, exactly as ff_msmpeg4_decode_ext_header's caller
// passes buf_size = (2+5+5+17+7)/8.
const extHeaderWindowBits = (2 + 5 + 5 + 17 + 7) / 8 * 8

// decodeExtHeader parses the W1/V3 extension header (§4.4): a 5-bit frame
// rate field (discarded), an 11-bit bit rate in 1024 bps units, and for V3
// and later a flipflop_rounding flag. bitsConsumed is the number of bits
// read from br since the start of the current picture header (picture_type
// through the I/P-specific slice/skip code), which the original decoder
// tracks via get_bits_count against a reader reset at each picture. A
// header that doesn't fit the expected window is a non-fatal anomaly
// logged as a warning, with flipflop_rounding cleared and decoding
// continuing from the current bit position.
func decodeExtHeader(br *bits.BitReader, ctx *PictureContext, bitsConsumed int) error {
	length := 16
	if ctx.Version.atLeastV3() {
		length = 17
	}

	leftBits := extHeaderWindowBits - bitsConsumed

	switch {
	case leftBits >= length && leftBits < length+8:
		if err := br.SkipBits(5); err != nil { // fps, unused
			return err
		}
		rate, err := br.ReadBits(11)
		if err != nil {
			return err
		}
		ctx.BitRate = int(rate) * 1024

		if ctx.Version.atLeastV3() {
			bit, err := br.ReadBit()
			if err != nil {
				return err
			}
			ctx.FlipflopRounding = bit
		} else {
			ctx.FlipflopRounding = false
		}

	case leftBits < length+8:
		ctx.FlipflopRounding = false
		if ctx.Version != V2 && Log != nil {
			Log.Warning("extension header missing", "left", leftBits)
		}

	default:
		if Log != nil {
			Log.Warning("picture too long, ignoring extension header", "left", leftBits)
		}
	}

	return nil
}
