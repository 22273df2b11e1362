package msvc4

import "errors"

// Error taxonomy for the decoder core (§7). All are fatal to the current
// frame unless noted; callers match them with errors.Is against the wrapped
// error returned by Decoder.DecodePicture.
var (
	// ErrInvalidHeader covers a wrong start code, invalid picture type, zero
	// qscale, or an out-of-range slice code.
	ErrInvalidHeader = errors.New("msvc4: invalid picture header")

	// ErrInvalidVLC is returned when a VLC lookup fails to match any
	// codeword in the table (a table lookup that "fails closed", §3).
	ErrInvalidVLC = errors.New("msvc4: invalid VLC codeword")

	// ErrCBPOutOfRange is returned when a decoded cbpc code exceeds its
	// valid domain (> 7 for P-pictures, > 3 for I-pictures).
	ErrCBPOutOfRange = errors.New("msvc4: coded block pattern out of range")

	// ErrDCOverflow is returned when a decoded DC residual is out of range
	// and not recoverable via inter_intra_pred.
	ErrDCOverflow = errors.New("msvc4: DC coefficient overflow")

	// ErrACOverflow is returned when the AC coefficient index escapes
	// [0, 63] outside the known-benign encoder pattern.
	ErrACOverflow = errors.New("msvc4: AC coefficient index overflow")

	// ErrBufferExhausted is returned when the bit reader is drained
	// mid-macroblock.
	ErrBufferExhausted = errors.New("msvc4: bitstream exhausted mid-macroblock")

	// ErrBitstreamTooSmall is returned by the picture header's density
	// pre-check, before any macroblock is touched.
	ErrBitstreamTooSmall = errors.New("msvc4: bitstream too small for picture dimensions")
)

// A missing or oversized extension header (the ExtHeaderAnomaly case of §7)
// is never returned as an error: decodeExtHeader logs it as a warning through
// Log and decoding continues with flipflop_rounding cleared.
