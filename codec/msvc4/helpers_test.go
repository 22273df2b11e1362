package msvc4

import (
	"testing"

	"github.com/ausocean/msvc4/codec/msvc4/bits"
)

func TestDecode012(t *testing.T) {
	for _, tt := range []struct {
		bitstring []byte
		nbits     int
		want      int
	}{
		{[]byte{0x00}, 1, 0},
		{[]byte{0x80}, 2, 1}, // 10
		{[]byte{0xc0}, 2, 2}, // 11
	} {
		br := bits.NewBitReader(tt.bitstring)
		got, err := decode012(br)
		if err != nil {
			t.Fatalf("decode012: unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("decode012(%08b) = %d, want %d", tt.bitstring[0], got, tt.want)
		}
	}
}

func TestSignExtend(t *testing.T) {
	if got := signExtend(5, 0); got != 5 {
		t.Errorf("signExtend(5, 0) = %d, want 5", got)
	}
	if got := signExtend(5, 1); got != -5 {
		t.Errorf("signExtend(5, 1) = %d, want -5", got)
	}
	if got := signExtend(0, 1); got != 0 {
		t.Errorf("signExtend(0, 1) = %d, want 0", got)
	}
}

func TestMinMaxAbs(t *testing.T) {
	if mini(3, 7) != 3 || mini(7, 3) != 3 {
		t.Error("mini broken")
	}
	if maxi(3, 7) != 7 || maxi(7, 3) != 7 {
		t.Error("maxi broken")
	}
	if absi(-4) != 4 || absi(4) != 4 {
		t.Error("absi broken")
	}
}
