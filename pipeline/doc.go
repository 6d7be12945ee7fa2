// Package pipeline holds the per-frame playback loop and the two pieces of
// logic it owns: the frame annotator and the pacer.
//
// Decoding, inference and display are reached through the Source, Detector
// and Sink interfaces, so the loop can be driven by synthetic frames in tests
// and by gocv adapters (package service) in the binary.
//
//	INIT → RUNNING → {DRAINED, QUIT, ERROR} → CLOSED
//
// Runner covers RUNNING and the terminal states; acquiring and releasing the
// handles (INIT and CLOSED) is the caller's job.
package pipeline
