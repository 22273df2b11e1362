package msvc4

import (
	"github.com/ausocean/msvc4/codec/msvc4/bits"
	"github.com/pkg/errors"
)

// mbacBitRate and iiBitRate are the two bit-rate thresholds W1 picture
// headers branch on (§4.3): above mbacBitRate a picture may carry a
// per-macroblock run-length table selector, and at or below iiBitRate (and
// a small enough frame) the decoder enables inter/intra prediction.
const (
	mbacBitRate = 19200
	iiBitRate   = 128 * 1024
)

// v1StartCode is the 32-bit marker every V1 picture begins with, ahead of
// the 5-bit frame number (§4.3).
const v1StartCode = 0x00000100

// decodePictureHeader parses one picture's header fields into ctx,
// consuming br up to (but not including) the first macroblock. The W1
// extension header's state (bit_rate, flipflop_rounding) arrives in ctx,
// seeded from the previous picture: a W1 I-picture reads fresh values from
// its extension header, while a P-picture reads no extension header and
// reuses the carried values (§4.3/§4.4).
func decodePictureHeader(br *bits.BitReader, ctx *PictureContext) error {
	mbArea := ctx.MBWidth * ctx.MBHeight
	if br.BitsRemaining()*8 < mbArea {
		return errors.Wrap(ErrBitstreamTooSmall, "decodePictureHeader")
	}

	pictureStartPos := br.BitPosition()

	if ctx.Version == V1 {
		start, err := br.ReadBits(32)
		if err != nil {
			return errors.Wrap(err, "decodePictureHeader: start code")
		}
		if start != v1StartCode {
			return errors.Wrap(ErrInvalidHeader, "decodePictureHeader: bad start code")
		}
		if err := br.SkipBits(5); err != nil { // frame number, unused
			return errors.Wrap(err, "decodePictureHeader: frame number")
		}
	}

	pt, err := br.ReadBits(2)
	if err != nil {
		return errors.Wrap(err, "decodePictureHeader: picture type")
	}
	switch pt + 1 {
	case 1:
		ctx.PictureType = PictureTypeI
	case 2:
		ctx.PictureType = PictureTypeP
	default:
		return errors.Wrap(ErrInvalidHeader, "decodePictureHeader: invalid picture type")
	}

	qscale, err := br.ReadBits(5)
	if err != nil {
		return errors.Wrap(err, "decodePictureHeader: qscale")
	}
	if qscale == 0 {
		return errors.Wrap(ErrInvalidHeader, "decodePictureHeader: zero qscale")
	}
	ctx.Qscale = int(qscale)

	if ctx.PictureType == PictureTypeI {
		if err := decodeIPictureHeader(br, ctx, pictureStartPos); err != nil {
			return err
		}
	} else {
		if err := decodePPictureHeader(br, ctx); err != nil {
			return err
		}
	}

	ctx.Esc3LevelLength = 0
	ctx.Esc3RunLength = 0

	logDebug("picture header decoded",
		"version", ctx.Version.String(),
		"type", ctx.PictureType.String(),
		"qscale", ctx.Qscale,
		"slice_height", ctx.SliceHeight,
		"rl", ctx.RLTableIndex,
		"rlc", ctx.RLChromaTableIndex,
		"dc", ctx.DCTableIndex,
		"mv", ctx.MVTableIndex,
		"mbrl", ctx.PerMBRLTable,
		"skip", ctx.UseSkipMBCode,
	)

	return nil
}

// decodeIPictureHeader handles the I-picture branch of §4.3: slice height,
// and the version-specific table-index selections.
func decodeIPictureHeader(br *bits.BitReader, ctx *PictureContext, pictureStartPos int) error {
	code, err := br.ReadBits(5)
	if err != nil {
		return errors.Wrap(err, "decodeIPictureHeader: slice code")
	}

	if ctx.Version == V1 {
		if code == 0 || int(code) > ctx.MBHeight {
			return errors.Wrap(ErrInvalidHeader, "decodeIPictureHeader: invalid slice height")
		}
		ctx.SliceHeight = int(code)
	} else {
		if code < 0x17 {
			return errors.Wrap(ErrInvalidHeader, "decodeIPictureHeader: invalid slice code")
		}
		ctx.SliceHeight = ctx.MBHeight / (int(code) - 0x16)
	}

	switch ctx.Version {
	case V1, V2:
		ctx.RLChromaTableIndex = 2
		ctx.RLTableIndex = 2
		ctx.DCTableIndex = 0

	case V3:
		v, err := decode012(br)
		if err != nil {
			return errors.Wrap(err, "decodeIPictureHeader: rl chroma index")
		}
		ctx.RLChromaTableIndex = v

		v, err = decode012(br)
		if err != nil {
			return errors.Wrap(err, "decodeIPictureHeader: rl index")
		}
		ctx.RLTableIndex = v

		bit, err := br.ReadBit()
		if err != nil {
			return errors.Wrap(err, "decodeIPictureHeader: dc index")
		}
		ctx.DCTableIndex = boolToInt(bit)

	case W1:
		if err := decodeExtHeader(br, ctx, br.BitPosition()-pictureStartPos); err != nil {
			return err
		}

		if ctx.BitRate > mbacBitRate {
			bit, err := br.ReadBit()
			if err != nil {
				return errors.Wrap(err, "decodeIPictureHeader: per-mb rl flag")
			}
			ctx.PerMBRLTable = bit
		} else {
			ctx.PerMBRLTable = false
		}

		if !ctx.PerMBRLTable {
			v, err := decode012(br)
			if err != nil {
				return errors.Wrap(err, "decodeIPictureHeader: rl chroma index")
			}
			ctx.RLChromaTableIndex = v

			v, err = decode012(br)
			if err != nil {
				return errors.Wrap(err, "decodeIPictureHeader: rl index")
			}
			ctx.RLTableIndex = v
		}

		bit, err := br.ReadBit()
		if err != nil {
			return errors.Wrap(err, "decodeIPictureHeader: dc index")
		}
		ctx.DCTableIndex = boolToInt(bit)
		ctx.InterIntraPred = false
	}

	ctx.NoRounding = true
	return nil
}

// decodePPictureHeader handles the P-picture branch of §4.3: skip-code and
// table-index selection, followed by the flipflop_rounding toggle.
func decodePPictureHeader(br *bits.BitReader, ctx *PictureContext) error {
	switch ctx.Version {
	case V1, V2:
		if ctx.Version == V1 {
			ctx.UseSkipMBCode = true
		} else {
			bit, err := br.ReadBit()
			if err != nil {
				return errors.Wrap(err, "decodePPictureHeader: skip mb flag")
			}
			ctx.UseSkipMBCode = bit
		}
		ctx.RLTableIndex = 2
		ctx.RLChromaTableIndex = ctx.RLTableIndex
		ctx.DCTableIndex = 0
		ctx.MVTableIndex = 0

	case V3:
		bit, err := br.ReadBit()
		if err != nil {
			return errors.Wrap(err, "decodePPictureHeader: skip mb flag")
		}
		ctx.UseSkipMBCode = bit

		v, err := decode012(br)
		if err != nil {
			return errors.Wrap(err, "decodePPictureHeader: rl index")
		}
		ctx.RLTableIndex = v
		ctx.RLChromaTableIndex = ctx.RLTableIndex

		bit, err = br.ReadBit()
		if err != nil {
			return errors.Wrap(err, "decodePPictureHeader: dc index")
		}
		ctx.DCTableIndex = boolToInt(bit)

		bit, err = br.ReadBit()
		if err != nil {
			return errors.Wrap(err, "decodePPictureHeader: mv index")
		}
		ctx.MVTableIndex = boolToInt(bit)

	case W1:
		bit, err := br.ReadBit()
		if err != nil {
			return errors.Wrap(err, "decodePPictureHeader: skip mb flag")
		}
		ctx.UseSkipMBCode = bit

		if ctx.BitRate > mbacBitRate {
			bit, err := br.ReadBit()
			if err != nil {
				return errors.Wrap(err, "decodePPictureHeader: per-mb rl flag")
			}
			ctx.PerMBRLTable = bit
		} else {
			ctx.PerMBRLTable = false
		}

		if !ctx.PerMBRLTable {
			v, err := decode012(br)
			if err != nil {
				return errors.Wrap(err, "decodePPictureHeader: rl index")
			}
			ctx.RLTableIndex = v
			ctx.RLChromaTableIndex = ctx.RLTableIndex
		}

		bit, err = br.ReadBit()
		if err != nil {
			return errors.Wrap(err, "decodePPictureHeader: dc index")
		}
		ctx.DCTableIndex = boolToInt(bit)

		bit, err = br.ReadBit()
		if err != nil {
			return errors.Wrap(err, "decodePPictureHeader: mv index")
		}
		ctx.MVTableIndex = boolToInt(bit)

		ctx.InterIntraPred = ctx.Width*ctx.Height < 320*240 && ctx.BitRate <= iiBitRate
	}

	if ctx.FlipflopRounding {
		ctx.NoRounding = !ctx.NoRounding
	} else {
		ctx.NoRounding = false
	}

	return nil
}
