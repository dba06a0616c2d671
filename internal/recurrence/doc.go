// Package recurrence provides pure helpers for editing recurring event
// series: instance identifier construction, UNTIL-based series
// truncation, duration-preserving moves, identity stripping for
// duplication, and sparse patch construction.
//
// All functions are side-effect free. Rule-line rewriting operates on
// the raw text lines the provider stores so that untouched lines stay
// byte-identical across an edit.
package recurrence
