// Package monitoring provides the diagnostic logger handed to components.
//
// There is no package-level logger: commands build a Logf once at start-up
// and pass it down, and tests pass Discard or a recording function.
package monitoring

import (
	"io"
	"log"
)

// Logf is a printf-style diagnostic sink.
type Logf func(format string, v ...interface{})

// New returns a Logf writing to w with the given prefix and standard flags.
// A nil writer yields Discard.
func New(w io.Writer, prefix string) Logf {
	if w == nil {
		return Discard
	}
	return log.New(w, prefix, log.LstdFlags).Printf
}

// Discard drops every message.
func Discard(string, ...interface{}) {}

// OrDiscard returns f, or Discard when f is nil, so components can accept an
// optional logger without nil checks at every call site.
func (f Logf) OrDiscard() Logf {
	if f == nil {
		return Discard
	}
	return f
}

// With returns a Logf that prefixes every message with tag.
func (f Logf) With(tag string) Logf {
	base := f.OrDiscard()
	return func(format string, v ...interface{}) {
		base("["+tag+"] "+format, v...)
	}
}
