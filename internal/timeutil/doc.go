// Package timeutil normalizes the datetime text that calendar tools accept.
//
// Tool arguments arrive as strings that may be zone-qualified RFC3339
// instants, timezone-naive wall-clock times, or bare calendar dates for
// all-day events. This package converts between those shapes and the
// TimeSpec representation the Google Calendar API expects, resolving
// naive times against a fallback IANA zone.
package timeutil
