// Package wifi drives a companion wifi module speaking an AT-command
// dialect over a serial link.
//
// A Driver owns the link and runs as a background task (Run). Each cycle
// executes queued setup commands, transmits queued messages and polls
// for unsolicited input. Inbound data frames ("+IPD,<len>:<bytes>") are
// recognized wherever they appear between response lines.
//
// Failures are reported once per cycle through the error handler, using
// the most specific ErrorKind. Handlers run on the driver's goroutine;
// callers integrating with an event kernel must marshal them onto the
// kernel's goroutine.
package wifi
