// Package timing attributes wall-clock time to nested stages reported by the
// geometry engine.
//
// The engine reports through a single numeric channel plus a label: -1 enters
// a named stage, 101 leaves the innermost stage, and 0..100 is progress within
// it. Decode turns that encoding into an Event; Sink feeds events into a Clock,
// which keeps the stage stack and writes the timing lines.
//
// Callbacks may arrive from several engine worker goroutines at once. The
// stack is guarded by one mutex, so push and pop never interleave, but under
// parallel meshing the innermost stage is simply the most recently entered
// one, whichever worker entered it. Progress may therefore be attributed to
// a sibling worker's stage. That is accepted.
package timing
