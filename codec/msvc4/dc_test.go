package msvc4

import (
	"testing"

	"github.com/ausocean/msvc4/codec/msvc4/bits"
)

func TestDecodeDCV1RotatingPredictor(t *testing.T) {
	ensureTables()
	ctx := &PictureContext{Version: V1}

	w := &testBitWriter{}
	w.writeVLC(v2DCLumVLC, 5)
	br := bits.NewBitReader(w.bytes())
	level, dir, err := decodeDC(br, ctx, 0)
	if err != nil {
		t.Fatalf("decodeDC: %v", err)
	}
	if level != 5 || dir != -1 {
		t.Errorf("first block: level=%d dir=%d, want 5,-1", level, dir)
	}

	// A second luma block (n=1) shares slot 0 with n=0, so its predictor is
	// now 5.
	w2 := &testBitWriter{}
	w2.writeVLC(v2DCLumVLC, 2)
	br2 := bits.NewBitReader(w2.bytes())
	level2, _, err := decodeDC(br2, ctx, 1)
	if err != nil {
		t.Fatalf("decodeDC: %v", err)
	}
	if level2 != 7 {
		t.Errorf("second block level = %d, want 7 (2+5 predictor)", level2)
	}
}

func TestDecodeDCV2UsesNeighborPredictor(t *testing.T) {
	ensureTables()
	neighbors := newFakeNeighbors()
	ctx := &PictureContext{Version: V2, Neighbors: neighbors}

	w := &testBitWriter{}
	w.writeVLC(v2DCLumVLC, 4)
	br := bits.NewBitReader(w.bytes())
	level, _, err := decodeDC(br, ctx, 2)
	if err != nil {
		t.Fatalf("decodeDC: %v", err)
	}
	if level != 4 {
		t.Errorf("level = %d, want 4 (fakeNeighbors predicts 0)", level)
	}
	if neighbors.dcSlots[2] != 4 {
		t.Errorf("dcSlots[2] = %d, want 4", neighbors.dcSlots[2])
	}
}

func TestDecodeDCV34EscapeReadsRawByte(t *testing.T) {
	ensureTables()
	neighbors := newFakeNeighbors()
	ctx := &PictureContext{Version: V3, Neighbors: neighbors, Qscale: 10, DCTableIndex: 0}

	w := &testBitWriter{}
	w.writeVLC(dcVLC[0][0], dcMax)
	w.writeBits(50, 8)
	w.writeBits(0, 1) // positive
	br := bits.NewBitReader(w.bytes())
	level, dir, err := decodeDC(br, ctx, 0)
	if err != nil {
		t.Fatalf("decodeDC: %v", err)
	}
	if level != 50 {
		t.Errorf("level = %d, want 50", level)
	}
	if dir != 0 {
		t.Errorf("dir = %d, want 0 (fakeNeighbors default)", dir)
	}
	wantScale := yDCScale(10)
	if int(neighbors.dcSlots[0]) != 50*wantScale {
		t.Errorf("dcSlots[0] = %d, want %d", neighbors.dcSlots[0], 50*wantScale)
	}
}

func TestYDCScaleCDCScalePiecewise(t *testing.T) {
	for _, tt := range []struct {
		q, wantY, wantC int
	}{
		{1, 8, 8},
		{5, 10, 9},
		{9, 17, 11},
		{25, 34, 19},
	} {
		if got := yDCScale(tt.q); got != tt.wantY {
			t.Errorf("yDCScale(%d) = %d, want %d", tt.q, got, tt.wantY)
		}
		if got := cDCScale(tt.q); got != tt.wantC {
			t.Errorf("cDCScale(%d) = %d, want %d", tt.q, got, tt.wantC)
		}
	}
}
