// Package forward implements the forward-solution (leadfield) model: the
// Solution type and the operations the rest of a source-analysis pipeline
// needs from it.
//
// 🚀 What is a forward solution?
//
//	A gain matrix mapping hypothesized source currents to predicted sensor
//	measurements, together with the source-space geometry and orientation
//	metadata needed to interpret its columns. Package forward covers:
//	  • Convert  — free ↔ surface-aligned ↔ fixed orientation representations
//	  • Restrict — cut a solution down to labels or an estimate's vertices
//	  • Average  — weighted combination over identical geometry
//	  • Apply    — project source time courses into sensor space
//	  • Priors   — depth and orientation weighting for inverse solvers
//	  • Picking  — channel subsetting and cross-solution equalization
//
// Conversion is non-destructive: every Solution retains its original
// (pre-conversion) gain matrix, and each conversion recomputes from that
// original rather than rotating already-converted data. Converting twice
// with the same arguments is therefore a no-op, and any representation can
// be converted back to the original within floating tolerance.
//
// Operations are synchronous and single-threaded. A Solution is not safe
// for concurrent mutation: in-place conversion from multiple goroutines on
// one object is a data race the caller must avoid, by cloning or by giving
// each goroutine its own instance.
package forward
