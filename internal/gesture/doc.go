// Package gesture captures and compares accelerometer traces.
//
// A gesture is a short Sequence of 3-axis Samples taken at a fixed interval
// by a Recorder. Two gestures are compared by a Comparator, which normalises
// each trace by its own peak magnitude and reports the fraction of axis
// values that agree within a tolerance.
package gesture
