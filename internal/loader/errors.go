package loader

import "errors"

// SourceReadError wraps a failure to read or interpret one of the three
// input files: missing path, unreadable content, or absent required
// columns. It is fatal at startup; the pipeline cannot proceed without all
// three sources.
type SourceReadError struct {
	Source string // "stations", "boundaries", or "residents"
	Err    error
}

func (e *SourceReadError) Error() string {
	return "load " + e.Source + ": " + e.Err.Error()
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}

// IsSourceRead returns true if the error chain contains a SourceReadError.
func IsSourceRead(err error) bool {
	var sre *SourceReadError
	return errors.As(err, &sre)
}

func sourceErr(source string, err error) error {
	return &SourceReadError{Source: source, Err: err}
}
