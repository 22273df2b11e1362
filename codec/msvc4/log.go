package msvc4

import "github.com/ausocean/utils/logging"

// Log is the package-level logger, following the same pattern as
// codec/jpeg's var Log logging.Logger: an embedding application assigns a
// concrete logging.Logger at startup, and decoding functions call through it
// directly rather than threading a logger through every function. Unlike
// codec/jpeg, call sites here go through logDebug/logError so the package
// stays usable when an application hasn't wired a logger in yet.
var Log logging.Logger

// logDebug logs per-picture/per-macroblock diagnostics (header fields,
// table selections) at debug level. A no-op until an application sets Log.
func logDebug(msg string, kv ...interface{}) {
	if Log == nil {
		return
	}
	Log.Debug(msg, kv...)
}

// logError logs a bitstream error at the point it is detected, mirroring
// the av_log(AV_LOG_ERROR, ...) calls in msmpeg4dec.c. Some call sites log
// a condition the decoder then recovers from (an illegal DC code under
// inter/intra prediction, a tolerated AC overflow) rather than return.
func logError(msg string, kv ...interface{}) {
	if Log == nil {
		return
	}
	Log.Error(msg, kv...)
}
