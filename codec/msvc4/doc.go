// Package msvc4 decodes the macroblock-level bitstream syntax shared by
// four closely related Microsoft video formats built on an MPEG-4 Part
// 2 / H.263 foundation: msmpeg4v1, msmpeg4v2, msmpeg4v3, and WMV1. It
// covers picture headers, motion vectors, DC/AC coefficient VLCs, and the
// three-level escape-coded run-length alphabet, returning decoded
// macroblock records for an embedding application to dequantize, inverse
// transform, and motion-compensate.
package msvc4
