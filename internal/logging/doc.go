// Package logging builds the zerolog logger shared by every shelf component.
//
// The terminal belongs to the UI, so logs are JSON lines appended to
// <data_dir>/shelf.log. Components receive the logger by injection and add
// their own "component" field.
package logging
