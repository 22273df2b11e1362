package msvc4

import (
	"github.com/ausocean/msvc4/codec/msvc4/bits"
	"github.com/pkg/errors"
)

// decodeBlock decodes one 8x8 block (six per macroblock) into mb.DCT[n],
// covering both the intra and inter paths and the full three-level escape
// ladder of §4.9. coded reports whether this block's CBP bit was set; an
// uncoded inter block is left at all zeros with LastIndex -1, and an
// uncoded intra block still runs AC prediction over its (all-zero) AC
// coefficients.
func decodeBlock(br *bits.BitReader, ctx *PictureContext, mb *Macroblock, n int, coded bool) error {
	block := &mb.DCT[n]

	if mb.MBIntra {
		level, dcPredDir, err := decodeDC(br, ctx, n)
		if err != nil {
			if !errors.Is(err, ErrInvalidVLC) {
				return err
			}
			logError("illegal dc vlc", "block", n)
			if !ctx.InterIntraPred {
				return errors.Wrap(ErrDCOverflow, "decodeBlock")
			}
			level = 0
		}
		if n == 0 {
			mb.DCPredDir = dcPredDir
		}

		dcLimit := 256 * yDCScale(ctx.Qscale)
		if n >= 4 {
			dcLimit = 256 * cDCScale(ctx.Qscale)
		}
		if level > dcLimit {
			logError("dc overflow", "block", n, "qscale", ctx.Qscale)
			if !ctx.InterIntraPred {
				return errors.Wrap(ErrDCOverflow, "decodeBlock")
			}
		}
		block[0] = int16(level)

		if !coded {
			ctx.Neighbors.PredictAC(block, n, dcPredDir)
			last := int8(-1)
			if mb.ACPred {
				last = 63
			}
			mb.LastIndex[n] = last
			return nil
		}

		var scan *[64]int
		switch {
		case !mb.ACPred:
			scan = &intraScanTable
		case dcPredDir == 0:
			scan = &intraVScanTable
		default:
			scan = &intraHScanTable
		}

		rl := rlTables[ctx.RLTableIndex]
		if n >= 4 {
			rl = rlTables[3+ctx.RLChromaTableIndex]
		}

		last, err := decodeACLadder(br, ctx, rl, scan, block, 0, 1, 0, true)
		if err != nil {
			return err
		}

		ctx.Neighbors.PredictAC(block, n, dcPredDir)
		if mb.ACPred {
			last = 63
		}
		mb.LastIndex[n] = int8(last)
		return nil
	}

	if !coded {
		mb.LastIndex[n] = -1
		return nil
	}

	qmul := ctx.Qscale << 1
	qadd := (ctx.Qscale - 1) | 1
	rl := rlTables[3+ctx.RLTableIndex]

	last, err := decodeACLadder(br, ctx, rl, &interScanTable, block, -1, qmul, qadd, false)
	if err != nil {
		return err
	}
	mb.LastIndex[n] = int8(last)
	return nil
}

// decodeACLadder runs the shared three-level escape loop of §4.9 starting
// at coefficient index i0, writing decoded levels through scan into block.
// For an intra block qmul/qadd are 1/0 (no dequantization at this stage);
// for an inter block they carry the qscale-derived dequantization factors
// that the first- and third-escape tiers fold into their level arithmetic.
// It returns the index of the last coefficient written.
func decodeACLadder(br *bits.BitReader, ctx *PictureContext, rl *rlTable, scan *[64]int, block *[64]int16, i0, qmul, qadd int, intra bool) (int, error) {
	w := bits.OpenWindow(br)
	defer w.Close()

	runDiff := 0
	// lookupQscale selects which qscale-folded VLC variant the main
	// coefficient lookup uses: intra AC bypasses dequantization at this
	// stage (qmul==1, qadd==0 throughout), so it always reads the
	// qscale==1 (unscaled) variant, matching rl_vlc[0] in the original;
	// inter AC reads the variant already folded for the picture's qscale.
	lookupQscale := 1
	if intra {
		if ctx.Version == W1 {
			runDiff = 1
		}
	} else {
		if ctx.Version != V2 {
			runDiff = 1
		}
		lookupQscale = ctx.Qscale
	}

	i := i0
	for {
		coeff, err := rl.lookup(w, lookupQscale)
		if err != nil {
			return 0, err
		}

		var level, run int
		var last bool

		if coeff.level != 0 {
			level, run, last = coeff.level, coeff.run, coeff.last
			i += run
			level = applySign(level, w)
		} else if ctx.Version == V1 {
			// V1 has no escape-tier selector bits at all: every escape is
			// the third escape's fixed-field form (§4.9).
			level, run, last, err = decodeThirdEscape(w, ctx, qmul, qadd)
			if err != nil {
				return 0, err
			}
			i += run + 1
			if last {
				i += 192
			}
		} else {
			// Zero decodes the escape sentinel; the next two raw bits
			// (peeked together, not re-run through a VLC) select which
			// escape tier applies: 1x -> first (only the leading bit is
			// consumed as a selector), 01 -> second, 00 -> third (both
			// bits consumed as a selector in the latter two cases).
			sel := w.Peek(2)
			switch {
			case sel&0x2 != 0:
				w.Skip(1)
				level, run, err = decodeFirstEscape(w, rl, qmul, lookupQscale)
				if err != nil {
					return 0, err
				}
				i += run
				level = applySign(level, w)

			case sel&0x1 != 0:
				w.Skip(2)
				level, run, err = decodeSecondEscape(w, rl, qmul, runDiff, lookupQscale, &i)
				if err != nil {
					return 0, err
				}
				level = applySign(level, w)

			default:
				w.Skip(2)
				level, run, last, err = decodeThirdEscape(w, ctx, qmul, qadd)
				if err != nil {
					return 0, err
				}
				i += run + 1
				if last {
					i += 192
				}
			}
		}

		if err := w.Err(); err != nil {
			return 0, err
		}

		if i > 62 {
			i -= 192
			if i&^63 != 0 {
				left := br.BitsRemaining()
				if (i+192 == 64 && level/maxi(qmul, 1) == -1) || left < 0 {
					logError("ignoring ac overflow")
					i = 63
					block[scan[63]] = int16(level)
					return i, nil
				}
				return 0, errors.Wrap(ErrACOverflow, "decodeACLadder")
			}
			block[scan[i]] = int16(level)
			return i, nil
		}

		block[scan[i]] = int16(level)
		if last {
			return i, nil
		}
	}
}

// applySign reads the single bit that follows a non-escape or first/second
// escape coefficient and negates level accordingly (§4.9).
func applySign(level int, w *bits.Window) int {
	if w.Read(1) != 0 {
		return -level
	}
	return level
}

// decodeFirstEscape reads the run-length code used by the first escape
// tier: the base alphabet's (run, level=0, last) slot is reinterpreted as
// "run only", and the coefficient's magnitude comes from
// rl.maxLevel[run], scaled by qmul (§4.9). lookupQscale selects the same
// qscale-folded rl_vlc variant the main coefficient loop used (1 for intra,
// ctx.Qscale for inter): the escape tiers share that table with the main
// loop, they do not always read the unscaled variant.
func decodeFirstEscape(w *bits.Window, rl *rlTable, qmul, lookupQscale int) (level, run int, err error) {
	coeff, lerr := rl.lookup(w, lookupQscale)
	if lerr != nil {
		return 0, 0, lerr
	}
	run = coeff.run
	level = coeff.level + int(rl.maxLevel[run&63])*qmul
	return level, run, nil
}

// decodeSecondEscape reads the run-length code used by the second escape
// tier and folds its run into *i using rl.maxRun, following run_diff's
// version-dependent adjustment (§4.9). level/qmul, truncated toward zero,
// indexes rl.maxRun: the table is built over undequantized levels, so the
// already-dequantized level read here must be divided back down before use
// (mirroring GET_RL_VLC's own `level/qmul` in the original).
func decodeSecondEscape(w *bits.Window, rl *rlTable, qmul, runDiff, lookupQscale int, i *int) (level, run int, err error) {
	coeff, lerr := rl.lookup(w, lookupQscale)
	if lerr != nil {
		return 0, 0, lerr
	}
	run = coeff.run
	level = coeff.level
	*i += run + int(rl.maxRun[(level/qmul)&63]) + runDiff
	return level, run, nil
}

// decodeThirdEscape reads the third-escape fixed-field coefficient (§4.9):
// V1/V2/V3 use fixed 1/6/8-bit fields, W1 uses the qscale-dependent sticky
// esc3_level_length/esc3_run_length fields, read once per picture and
// reused by every subsequent third escape until the next picture header
// resets them.
func decodeThirdEscape(w *bits.Window, ctx *PictureContext, qmul, qadd int) (level, run int, last bool, err error) {
	last = w.Read(1) != 0

	if !ctx.Version.atLeastV3() || ctx.Version == V3 {
		run = int(w.Read(6))
		level = int(int8(w.Read(8)))
	} else {
		if ctx.Esc3LevelLength == 0 {
			var ll int
			if ctx.Qscale < 8 {
				ll = int(w.Read(3))
				if ll == 0 {
					ll = 8 + int(w.Read(1))
				}
			} else {
				ll = 2
				for ll < 8 && w.Peek(1) == 0 {
					ll++
					w.Skip(1)
				}
				if ll < 8 {
					w.Skip(1)
				}
			}
			ctx.Esc3LevelLength = ll
			ctx.Esc3RunLength = int(w.Read(2)) + 3
		}

		run = int(w.Read(ctx.Esc3RunLength))
		sign := w.Read(1)
		level = int(w.Read(ctx.Esc3LevelLength))
		if sign != 0 {
			level = -level
		}
	}

	if err := w.Err(); err != nil {
		return 0, 0, false, err
	}

	if level > 0 {
		level = level*qmul + qadd
	} else {
		level = level*qmul - qadd
	}
	return level, run, last, nil
}
