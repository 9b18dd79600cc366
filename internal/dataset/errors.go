package dataset

import "errors"

// Sentinel errors returned by the package. Callers should use errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrUnsupportedDType  = errors.New("unsupported element type")
	ErrEmpty             = errors.New("dataset has no samples")
	ErrExists            = errors.New("output file already exists")
	ErrClosed            = errors.New("dataset is closed")
	ErrCorrupt           = errors.New("corrupt dataset")
)
