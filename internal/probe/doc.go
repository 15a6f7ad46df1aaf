// Package probe extracts technical media attributes from local video files
// by shelling out to ffprobe and decoding its JSON output.
//
// Failures carry a closed Kind so callers can distinguish a broken tool
// invocation from a file that simply has no usable streams.
package probe
