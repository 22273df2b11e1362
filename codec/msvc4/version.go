package msvc4

// Version selects which of the four closely related bitstream syntaxes a
// Decoder parses. It is set once at codec-open time (NewDecoder) and is
// immutable thereafter (§3).
type Version int

const (
	// V1 is msmpeg4v1: a 32-bit start code, a 5-bit frame number, and the
	// simplest of the four macroblock/escape paths.
	V1 Version = iota
	// V2 is msmpeg4v2: adds a V2-specific intra MB-type/cbpc VLC pair and a
	// 2-D DC predictor.
	V2
	// V3 is msmpeg4v3 (commonly known as "MP43"/early DivX): adds
	// per-picture rl/dc/mv table-index selection and the four-variant
	// non-intra MB VLC.
	V3
	// W1 is WMV1 (Windows Media Video 7): adds the extension header,
	// per-MB run-length table selection, inter/intra prediction direction,
	// and the qscale-dependent, per-picture sticky third-escape length code.
	W1
)

// String returns the version's short tag: "V1", "V2", "V3" or "W1", or
// "unknown" for any other value.
func (v Version) String() string {
	switch v {
	case V1:
		return "V1"
	case V2:
		return "V2"
	case V3:
		return "V3"
	case W1:
		return "W1"
	default:
		return "unknown"
	}
}

// atLeastV3 reports whether v uses the V3/W1 macroblock and DC paths rather
// than the V1/V2 ones.
func (v Version) atLeastV3() bool {
	return v == V3 || v == W1
}
