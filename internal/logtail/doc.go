// Package logtail reads the tail of the shelf log file for the activity view.
//
// # Reading Log Files
//
// Read uses a ring buffer to keep the last maxLines of a file in one pass,
// using O(maxLines) memory regardless of file size. A missing file is not
// an error; it simply has no lines yet.
//
//	lines, err := logtail.Read(cfg.LogPath(), 200)
//
// # Parsing
//
// shelf writes zerolog JSON lines. ParseLine lifts time, level, component
// and message out of each line and keeps the remaining keys in Fields.
// Entry.Format turns an entry back into one compact, human-readable line.
// Lines that are not JSON pass through untouched.
package logtail
