// Package conflict detects scheduling conflicts and likely duplicates
// for a candidate event across one or more calendars.
//
// The overlap helpers treat events as half-open intervals. The
// similarity scorer is a deterministic decision table rather than a
// weighted model, so its behavior is exhaustively table-testable. The
// service fetches existing events through a direct list call for a
// single calendar or one multipart batch exchange for several, and
// tolerates inaccessible calendars by skipping them.
package conflict
