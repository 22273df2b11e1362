package msvc4

import (
	"testing"

	"github.com/ausocean/msvc4/codec/msvc4/bits"
)

func newTestPictureContext(v Version) *PictureContext {
	ctx := newPictureContext(Config{Width: 176, Height: 144, Version: v, Neighbors: newFakeNeighbors()}, carriedState{})
	return ctx
}

func TestDecodePictureHeaderV1Intra(t *testing.T) {
	w := &testBitWriter{}
	w.writeBits(v1StartCode, 32)
	w.writeBits(0, 5)  // frame number
	w.writeBits(0, 2)  // picture_type - 1 == 0 -> I
	w.writeBits(5, 5)  // qscale
	w.writeBits(9, 5)  // slice height (<= MBHeight)

	ctx := newTestPictureContext(V1)
	br := bits.NewBitReader(w.bytes())
	if err := decodePictureHeader(br, ctx); err != nil {
		t.Fatalf("decodePictureHeader: %v", err)
	}
	if ctx.PictureType != PictureTypeI {
		t.Errorf("PictureType = %v, want I", ctx.PictureType)
	}
	if ctx.Qscale != 5 {
		t.Errorf("Qscale = %d, want 5", ctx.Qscale)
	}
	if ctx.SliceHeight != 9 {
		t.Errorf("SliceHeight = %d, want 9", ctx.SliceHeight)
	}
	if ctx.RLTableIndex != 2 || ctx.RLChromaTableIndex != 2 || ctx.DCTableIndex != 0 {
		t.Errorf("unexpected V1 I-picture table indices: rl=%d rlc=%d dc=%d",
			ctx.RLTableIndex, ctx.RLChromaTableIndex, ctx.DCTableIndex)
	}
	if !ctx.NoRounding {
		t.Error("NoRounding should be set true after an I-picture header")
	}
}

func TestDecodePictureHeaderV1BadStartCode(t *testing.T) {
	w := &testBitWriter{}
	w.writeBits(0x12345678, 32)
	ctx := newTestPictureContext(V1)
	br := bits.NewBitReader(w.bytes())
	if err := decodePictureHeader(br, ctx); err == nil {
		t.Fatal("expected error for bad start code")
	}
}

func TestDecodePictureHeaderV3Intra(t *testing.T) {
	w := &testBitWriter{}
	w.writeBits(0, 2) // I
	w.writeBits(7, 5) // qscale
	w.writeBits(0x17, 5) // slice code -> MBHeight/1
	w.writeBits(0b10, 2)  // rl chroma index decode012 -> 1
	w.writeBits(0b0, 1)   // rl index decode012 -> 0
	w.writeBits(1, 1)     // dc table index bit

	ctx := newTestPictureContext(V3)
	br := bits.NewBitReader(w.bytes())
	if err := decodePictureHeader(br, ctx); err != nil {
		t.Fatalf("decodePictureHeader: %v", err)
	}
	if ctx.RLChromaTableIndex != 1 {
		t.Errorf("RLChromaTableIndex = %d, want 1", ctx.RLChromaTableIndex)
	}
	if ctx.RLTableIndex != 0 {
		t.Errorf("RLTableIndex = %d, want 0", ctx.RLTableIndex)
	}
	if ctx.DCTableIndex != 1 {
		t.Errorf("DCTableIndex = %d, want 1", ctx.DCTableIndex)
	}
}

func TestDecodePictureHeaderV3Inter(t *testing.T) {
	w := &testBitWriter{}
	w.writeBits(1, 2) // P
	w.writeBits(3, 5) // qscale
	w.writeBits(1, 1) // skip mb flag
	w.writeBits(0, 1) // rl index decode012 -> 0
	w.writeBits(0, 1) // dc index bit
	w.writeBits(1, 1) // mv index bit

	ctx := newTestPictureContext(V3)
	br := bits.NewBitReader(w.bytes())
	if err := decodePictureHeader(br, ctx); err != nil {
		t.Fatalf("decodePictureHeader: %v", err)
	}
	if !ctx.UseSkipMBCode {
		t.Error("UseSkipMBCode should be true")
	}
	if ctx.MVTableIndex != 1 {
		t.Errorf("MVTableIndex = %d, want 1", ctx.MVTableIndex)
	}
	if ctx.NoRounding {
		t.Error("NoRounding should be false when FlipflopRounding is unset")
	}
}

// TestDecodePictureHeaderDensityCheckUsesBitsTimesEight pins the §4.3/§8
// density pre-check at its exact boundary: bits_remaining*8 compared
// against mb_width*mb_height, not bits_remaining alone. For a 176x144
// picture (mbArea = 11*9 = 99), a bitstream with only 8 bits remaining
// (8*8 = 64 < 99) must be rejected, while a fully decodable 16-bit V3
// I-picture header (16*8 = 128 >= 99) must not be rejected on density
// grounds — even though 16 < 99, which the old (missing ×8) check would
// have wrongly rejected.
func TestDecodePictureHeaderDensityCheckUsesBitsTimesEight(t *testing.T) {
	ctx := newTestPictureContext(V3)
	br := bits.NewBitReader(make([]byte, 1)) // 8 bits remaining: 8*8 = 64 < 99
	if err := decodePictureHeader(br, ctx); err == nil {
		t.Fatal("expected ErrBitstreamTooSmall for a genuinely too-small bitstream")
	}

	w := &testBitWriter{}
	w.writeBits(0, 2)    // I
	w.writeBits(7, 5)    // qscale
	w.writeBits(0x17, 5) // slice code -> MBHeight/1
	w.writeBits(0, 1)    // rl chroma index decode012 -> 0
	w.writeBits(0, 1)    // rl index decode012 -> 0
	w.writeBits(1, 1)    // dc table index bit
	buf := w.bytesExact()
	if got := len(buf) * 8; got >= 99 {
		t.Fatalf("test setup: %d bits is not < mbArea (99), rewrite the scenario", got)
	}

	ctx2 := newTestPictureContext(V3)
	br2 := bits.NewBitReader(buf)
	if err := decodePictureHeader(br2, ctx2); err != nil {
		t.Fatalf("decodePictureHeader wrongly rejected a short-but-sufficient bitstream: %v", err)
	}
}

func TestDecodePictureHeaderZeroQscaleRejected(t *testing.T) {
	w := &testBitWriter{}
	w.writeBits(0, 2) // I
	w.writeBits(0, 5) // qscale == 0
	ctx := newTestPictureContext(V3)
	br := bits.NewBitReader(w.bytes())
	if err := decodePictureHeader(br, ctx); err == nil {
		t.Fatal("expected error for zero qscale")
	}
}
