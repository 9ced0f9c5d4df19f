package tabular

import "errors"

var (
	// ErrUnsupportedFormat indicates a file extension with no registered parser.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrParse indicates a file that cannot be decoded into a row/column grid.
	ErrParse = errors.New("failed to parse file")
)
