// Package fwdio persists forward solutions.
//
// 🚀 Two on-disk formats share one contract:
//
//	• a tagged binary container (Write / Read), the compact native format
//	• a self-describing CBOR container (WriteCBOR / ReadCBOR) for
//	  interchange with other tooling
//
// Solutions are stored in their original orientation, never in a converted
// representation: writing a converted solution emits a CodeStoredOriginal
// advisory and the reader hands back the original state, so callers
// reconvert after loading. This keeps files canonical and conversion
// arithmetic out of the storage layer.
//
// Recognized filename extensions are "-fwd.fwd", ".fwd" (binary) and
// ".cbor" (interchange). Anything else emits a CodeBadExtension advisory
// and proceeds; the extension never changes what is written.
package fwdio
