package msvc4

import (
	"github.com/ausocean/msvc4/codec/msvc4/bits"
	"github.com/pkg/errors"
)

// decodeDC decodes block n's DC coefficient for an intra macroblock (§4.8).
// It returns the final, predictor-combined level; dcPredDir is -1 for V1
// (no spatial direction concept) and, for V2, V3 and W1, the 0 or 1 (left
// or top neighbor) direction reported by the spatial predictor, used
// afterward to pick the AC prediction scan table.
func decodeDC(br *bits.BitReader, ctx *PictureContext, n int) (level, dcPredDir int, err error) {
	if ctx.Version.atLeastV3() {
		return decodeDCV34(br, ctx, n)
	}
	return decodeDCV12(br, ctx, n)
}

// decodeDCV12 implements the V1/V2 DC path: a flat signed-residual VLC,
// with the V1 3-slot rotating predictor or the V2 external spatial
// predictor added in.
func decodeDCV12(br *bits.BitReader, ctx *PictureContext, n int) (int, int, error) {
	table := v2DCLumVLC
	if n >= 4 {
		table = v2DCChromaVLC
	}
	level, err := table.lookup(br)
	if err != nil {
		return 0, -1, errors.Wrap(err, "decodeDCV12")
	}

	if ctx.Version == V1 {
		pred := v1DCPredictor(ctx, n)
		final := level + pred
		v1SetDCPredictor(ctx, n, final)
		return final, -1, nil
	}

	pred, dir, slot := ctx.Neighbors.PredictDC(n)
	final := level + pred
	*slot = int16(final)
	return final, dir, nil
}

// decodeDCV34 implements the V3/W1 DC path: an escape-capable unsigned
// magnitude VLC (with a following sign bit for any nonzero or escaped
// value) plus the external spatial predictor, scaled by y_dc_scale or
// c_dc_scale when written back (§4.8).
func decodeDCV34(br *bits.BitReader, ctx *PictureContext, n int) (int, int, error) {
	lumaOrChroma := 0
	if n >= 4 {
		lumaOrChroma = 1
	}
	table := dcVLC[ctx.DCTableIndex][lumaOrChroma]

	level, err := table.lookup(br)
	if err != nil {
		return 0, -1, errors.Wrap(err, "decodeDCV34")
	}

	if level == dcMax {
		v, err := br.ReadBits(8)
		if err != nil {
			return 0, -1, err
		}
		level = int(v)
		sign, err := br.ReadBit()
		if err != nil {
			return 0, -1, err
		}
		if sign {
			level = -level
		}
	} else if level != 0 {
		sign, err := br.ReadBit()
		if err != nil {
			return 0, -1, err
		}
		if sign {
			level = -level
		}
	}

	pred, dir, slot := ctx.Neighbors.PredictDC(n)
	final := level + pred

	scale := yDCScale(ctx.Qscale)
	if n >= 4 {
		scale = cDCScale(ctx.Qscale)
	}
	*slot = int16(final * scale)

	return final, dir, nil
}

// v1Predictors holds the rotating last-DC slots the V1 path reads and
// writes, one per msmpeg4v1_pred_dc "i = n<4 ? 0 : n-3" bucket: all four
// luma blocks share slot 0 and the two chroma blocks use slots 1 and 2, so
// the six block indices address 3 distinct slots (§4.8).
type v1Predictors struct {
	last [3]int
}

func v1DCPredictor(ctx *PictureContext, n int) int {
	return ctx.v1Pred.last[v1PredSlot(n)]
}

func v1SetDCPredictor(ctx *PictureContext, n, level int) {
	ctx.v1Pred.last[v1PredSlot(n)] = level
}

func v1PredSlot(n int) int {
	if n < 4 {
		return 0
	}
	return n - 3
}

// yDCScale and cDCScale implement the MPEG-4 Part 2 DC dequantization
// scale formula (§4.8): a piecewise-linear function of qscale that grows
// faster than the AC scale at low qscale and converges to it at high
// qscale, shared by every version from V3 onward.
func yDCScale(qscale int) int {
	switch {
	case qscale < 5:
		return 8
	case qscale < 9:
		return 2 * qscale
	case qscale < 25:
		return qscale + 8
	default:
		return 2*qscale - 16
	}
}

func cDCScale(qscale int) int {
	switch {
	case qscale < 5:
		return 8
	case qscale < 25:
		return (qscale + 13) / 2
	default:
		return qscale - 6
	}
}
