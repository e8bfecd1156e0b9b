package framework

import "strings"

// Errors aggregates multiple errors.
type Errors []error

// Error implements error.
func (e Errors) Error() string {
	switch len(e) {
	case 0:
		return ""
	case 1:
		return e[0].Error()
	}
	msg := make([]string, len(e)+1)
	msg[0] = "multiple errors:"
	for n, err := range e {
		msg[n+1] = "  " + err.Error()
	}
	return strings.Join(msg, "\n")
}

// Add adds errors to be aggregated. nil will be skipped.
func (e *Errors) Add(errs ...error) *Errors {
	for _, err := range errs {
		if err != nil {
			*e = append(*e, err)
		}
	}
	return e
}

// Aggregate returns nil if no error was added, the error itself if only
// one was added, or all of them otherwise.
func (e Errors) Aggregate() error {
	switch len(e) {
	case 0:
		return nil
	case 1:
		return e[0]
	}
	return append(Errors(nil), e...)
}
