// Package build runs a complete documentation build: it discovers annotated
// source files, assembles one page per documented file, and writes the master
// bibliography of every cited source.
//
// All execution paths (the build command, watch mode, tests) route through
// Builder.Run. Every run is a fresh, full regeneration; nothing is carried over
// between runs.
package build
