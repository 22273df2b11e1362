package msvc4

import (
	"github.com/ausocean/msvc4/codec/msvc4/bits"
	"github.com/pkg/errors"
)

// Decoder parses one version of the MSMPEG4 family's macroblock-level
// bitstream syntax, picture by picture, into Macroblock records. It owns
// no pixel buffers and performs no IDCT, dequantization, or motion
// compensation: those stages live behind the Config's NeighborPredictor
// collaborator and whatever frame-reconstruction layer an embedding
// application provides (§1, §6).
type Decoder struct {
	cfg   Config
	state carriedState
}

// NewDecoder validates cfg and returns a Decoder ready to parse pictures
// with it. It also triggers the package's one-shot VLC/run-length table
// construction (§5), the same role ff_msmpeg4_decode_init's
// ff_thread_once call plays in the original decoder.
func NewDecoder(cfg Config) (*Decoder, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("msvc4: width and height must be positive")
	}
	if cfg.Width*cfg.Height > maxPictureArea {
		return nil, errors.New("msvc4: picture area exceeds the configured limit")
	}
	if cfg.Neighbors == nil {
		return nil, errors.New("msvc4: Config.Neighbors must not be nil")
	}

	ensureTables()

	_, mbH := mbDimensions(cfg.Width, cfg.Height)
	return &Decoder{
		cfg: cfg,
		state: carriedState{
			sliceHeight: mbH, // matches s->slice_height = s->mb_height at open time
		},
	}, nil
}

// Picture is the decoded output of one DecodePicture call: the picture's
// type and every macroblock in raster order.
type Picture struct {
	Type        PictureType
	Macroblocks []*Macroblock
}

// DecodePicture parses exactly one picture from buf: its header, followed
// by MBWidth*MBHeight macroblocks in raster order. It is not safe to call
// concurrently on the same Decoder, since picture decode carries state
// (slice_height, bit_rate, flipflop_rounding) forward into the Decoder for
// the next call. The V1 DC predictor and the esc3 sticky fields live in the
// per-picture context and start from zero on every call.
func (d *Decoder) DecodePicture(buf []byte) (*Picture, error) {
	br := bits.NewBitReader(buf)

	ctx := newPictureContext(d.cfg, d.state)
	if err := decodePictureHeader(br, ctx); err != nil {
		return nil, errors.Wrap(err, "DecodePicture")
	}

	pic := &Picture{
		Type:        ctx.PictureType,
		Macroblocks: make([]*Macroblock, 0, ctx.MBWidth*ctx.MBHeight),
	}

	for y := 0; y < ctx.MBHeight; y++ {
		for x := 0; x < ctx.MBWidth; x++ {
			mb, err := decodeMacroblock(br, ctx)
			if err != nil {
				return nil, errors.Wrapf(err, "DecodePicture: macroblock (%d,%d)", x, y)
			}
			pic.Macroblocks = append(pic.Macroblocks, mb)
		}
	}

	d.state = carriedState{
		sliceHeight:      ctx.SliceHeight,
		bitRate:          ctx.BitRate,
		flipflopRounding: ctx.FlipflopRounding,
	}

	logDebug("picture decoded",
		"type", pic.Type.String(),
		"macroblocks", len(pic.Macroblocks),
	)

	return pic, nil
}
