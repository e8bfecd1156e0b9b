// Package codec encodes application messages carried over the wifi link.
//
// A message is a list of tokens joined by single spaces and terminated by
// CRLF. Inside a token '%', space, CR and LF are percent-escaped.
package codec

import (
	"bytes"
	"strings"
)

// Separator joins tokens of a message line.
const Separator = " "

// LineEnd terminates a message line.
const LineEnd = "\r\n"

// Replacers run single-pass, so each '%' of the input is escaped exactly
// once and an escaped "%25" never re-matches another code.
var (
	escaper   = strings.NewReplacer("%", "%25", " ", "%20", "\r", "%0D", "\n", "%0A")
	unescaper = strings.NewReplacer("%20", " ", "%0D", "\r", "%0A", "\n", "%25", "%")
)

// Escape escapes a single token.
func Escape(token string) string {
	return escaper.Replace(token)
}

// Unescape reverses Escape.
func Unescape(token string) string {
	return unescaper.Replace(token)
}

// Encode escapes tokens into a single wire line, including LineEnd.
func Encode(tokens ...string) string {
	escaped := make([]string, len(tokens))
	for n, token := range tokens {
		escaped[n] = Escape(token)
	}
	return strings.Join(escaped, Separator) + LineEnd
}

// Decode splits a line (without LineEnd) into unescaped tokens.
func Decode(line string) []string {
	fields := strings.Split(line, Separator)
	for n, field := range fields {
		fields[n] = Unescape(field)
	}
	return fields
}

// Assembler reassembles message lines from payload chunks which may split
// or join lines arbitrarily.
type Assembler struct {
	buf []byte
}

// Feed appends data and returns the decoded messages of all lines
// completed by it. Empty lines are skipped.
func (a *Assembler) Feed(data []byte) (msgs [][]string) {
	a.buf = append(a.buf, data...)
	for {
		pos := bytes.Index(a.buf, []byte(LineEnd))
		if pos < 0 {
			break
		}
		line := string(a.buf[:pos])
		a.buf = a.buf[pos+len(LineEnd):]
		if line != "" {
			msgs = append(msgs, Decode(line))
		}
	}
	if len(a.buf) == 0 {
		a.buf = nil
	}
	return
}

// Pending returns the number of buffered bytes of an incomplete line.
func (a *Assembler) Pending() int {
	return len(a.buf)
}

// Reset discards any incomplete line.
func (a *Assembler) Reset() {
	a.buf = nil
}
