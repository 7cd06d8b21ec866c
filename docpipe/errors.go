package docpipe

import "errors"

// errMissingDocument is returned when an export request carries no document.
var errMissingDocument = errors.New("docpipe: missing document")
